package monitor

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"fping-influx/internal/metrics"
	"fping-influx/internal/parser"
)

func (m *Monitor) execute(ctx context.Context, log *zap.Logger, job Job) (Result, error) {
	var result Result

	raw, err := m.probe(ctx, job)
	if err != nil {
		return result, &StageError{Stage: StageProbe, Err: err}
	}

	parsed, err := parser.ParseDetailed(strings.NewReader(raw))
	if err != nil {
		return result, &StageError{Stage: StageParse, Err: err}
	}
	for _, target := range parsed.Duplicates {
		log.Warn("Target reported more than once, keeping the last line", zap.String("target", target))
	}
	if len(parsed.Report) == 0 {
		log.Warn("fping reported no targets")
	}
	result.Report = parsed.Report
	if m.instruments != nil {
		m.instruments.ObserveReport(parsed.Report)
	}

	// one capture time for every point of the run
	result.CapturedAt = m.now().UTC()
	result.Points = metrics.Project(parsed.Report, metrics.RunContext{
		Host:        job.Host,
		Measurement: job.Measurement,
		CaptureTime: result.CapturedAt,
	})

	start := m.now()
	if err := m.sink.Write(ctx, result.Points); err != nil {
		return result, &StageError{Stage: StagePush, Err: err}
	}
	if m.instruments != nil {
		m.instruments.ObservePush(m.now().Sub(start), len(result.Points))
	}
	return result, nil
}

func (m *Monitor) probe(ctx context.Context, job Job) (string, error) {
	if job.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, job.Timeout)
		defer cancel()
	}

	start := m.now()
	raw, err := m.prober.Run(ctx, job.Params)
	if m.instruments != nil {
		m.instruments.ObserveProbe(m.now().Sub(start))
	}
	return raw, err
}
