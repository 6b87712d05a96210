// Package monitor runs one probe, parse, project and push cycle and archives
// its outcome.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fping-influx/internal/instrument"
	"fping-influx/internal/models"
)

// Stage names reported on failure
const (
	StageProbe = "probe"
	StageParse = "parse"
	StagePush  = "push"
)

// StageError tags a run failure with the stage that produced it
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// FailedStage returns the stage recorded in err, or "" when err carries none
func FailedStage(err error) string {
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return stageErr.Stage
	}
	return ""
}

// Job describes one run
type Job struct {
	Params      models.ProbeParams
	Host        string
	Measurement string
	// Timeout bounds the fping sweep; zero leaves it unbounded
	Timeout time.Duration
}

// Result is what a run produced, as far as it got
type Result struct {
	RunID      string
	Report     models.Report
	Points     []models.MetricPoint
	CapturedAt time.Time
}

// Monitor coordinates the stages of a run
type Monitor struct {
	prober models.Prober
	sink   models.Sink
	logger *zap.Logger

	history       models.History
	retentionDays int

	reports     models.ReportGenerator
	reportDir   string
	reportHours int

	instruments *instrument.Instruments

	now   func() time.Time
	newID func() string
}

// Option configures optional collaborators
type Option func(*Monitor)

// WithHistory archives every run and prunes entries older than retentionDays
func WithHistory(h models.History, retentionDays int) Option {
	return func(m *Monitor) {
		m.history = h
		m.retentionDays = retentionDays
	}
}

// WithReports renders a report into dir after each archived run
func WithReports(g models.ReportGenerator, dir string, hours int) Option {
	return func(m *Monitor) {
		m.reports = g
		m.reportDir = dir
		m.reportHours = hours
	}
}

// WithInstruments records self-metrics
func WithInstruments(i *instrument.Instruments) Option {
	return func(m *Monitor) {
		m.instruments = i
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) {
		m.now = now
	}
}

// New creates a new Monitor
func New(prober models.Prober, sink models.Sink, logger *zap.Logger, opts ...Option) *Monitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Monitor{
		prober: prober,
		sink:   sink,
		logger: logger,
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run performs one cycle. A failure in any stage aborts the later stages and
// is returned as a *StageError. The run is archived either way.
func (m *Monitor) Run(ctx context.Context, job Job) (Result, error) {
	run := models.Run{
		ID:        m.newID(),
		StartedAt: m.now().UTC(),
		Host:      job.Host,
		Params:    job.Params,
	}
	log := m.logger.With(zap.String("run_id", run.ID))
	log.Info("Starting run",
		zap.String("range_start", job.Params.RangeStart),
		zap.String("range_end", job.Params.RangeEnd),
		zap.String("host", job.Host))

	result, err := m.execute(ctx, log, job)
	result.RunID = run.ID

	run.FinishedAt = m.now().UTC()
	run.TargetCount = len(result.Report)
	if err != nil {
		run.Status = models.RunStatusFailed
		run.Stage = FailedStage(err)
		run.Error = err.Error()
		if m.instruments != nil {
			m.instruments.RunFailed(run.Stage)
		}
	} else {
		run.Status = models.RunStatusOK
		if m.instruments != nil {
			m.instruments.RunSucceeded(run.FinishedAt)
		}
	}

	// archiving must not be cut short by the signal that cancelled the run
	m.maintain(context.WithoutCancel(ctx), log, run, result)

	if err == nil {
		log.Info("Run complete",
			zap.Int("targets", len(result.Report)),
			zap.Int("points", len(result.Points)),
			zap.Duration("elapsed", run.FinishedAt.Sub(run.StartedAt)))
	}
	return result, err
}
