// Package instrument keeps self-metrics about fping-influx runs in a
// private Prometheus registry. A one-shot process cannot be scraped, so the
// registry is written out for the node_exporter textfile collector.
package instrument

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"fping-influx/internal/models"
)

const namespace = "fping_influx"

// Instruments records the outcome of pipeline runs
type Instruments struct {
	registry *prometheus.Registry

	runs          *prometheus.CounterVec
	failures      *prometheus.CounterVec
	targets       prometheus.Gauge
	unreachable   prometheus.Gauge
	points        prometheus.Counter
	historyErrors prometheus.Counter
	lastSuccess   prometheus.Gauge

	probeDuration prometheus.Histogram
	pushDuration  prometheus.Histogram
}

// New creates Instruments backed by a fresh registry
func New() *Instruments {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Instruments{
		registry: reg,

		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Runs by final status",
		}, []string{"status"}),

		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "run_failures_total",
			Help:      "Failed runs by the stage that failed",
		}, []string{"stage"}),

		targets: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "targets",
			Help:      "Targets in the last parsed fping report",
		}),

		unreachable: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "targets_unreachable",
			Help:      "Targets in the last report that answered no probe",
		}),

		points: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "points_written_total",
			Help:      "Points accepted by InfluxDB",
		}),

		historyErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_errors_total",
			Help:      "Failures archiving runs to the SQLite history",
		}),

		lastSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last run whose points were pushed",
		}),

		probeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "probe_duration_seconds",
			Help:      "Wall time of the fping sweep",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),

		pushDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "push_duration_seconds",
			Help:      "Wall time of the InfluxDB batch write",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
		}),
	}
}

// Registry exposes the underlying registry
func (i *Instruments) Registry() *prometheus.Registry {
	return i.registry
}

// ObserveProbe records how long fping ran
func (i *Instruments) ObserveProbe(d time.Duration) {
	i.probeDuration.Observe(d.Seconds())
}

// ObserveReport records the shape of a parsed report
func (i *Instruments) ObserveReport(report models.Report) {
	unreachable := 0
	for _, stats := range report {
		if stats.Received == 0 {
			unreachable++
		}
	}
	i.targets.Set(float64(len(report)))
	i.unreachable.Set(float64(unreachable))
}

// ObservePush records a successful batch write
func (i *Instruments) ObservePush(d time.Duration, points int) {
	i.pushDuration.Observe(d.Seconds())
	i.points.Add(float64(points))
}

// RunSucceeded counts a run whose points were pushed at t
func (i *Instruments) RunSucceeded(t time.Time) {
	i.runs.WithLabelValues(models.RunStatusOK).Inc()
	i.lastSuccess.Set(float64(t.Unix()))
}

// RunFailed counts a run aborted in stage
func (i *Instruments) RunFailed(stage string) {
	i.runs.WithLabelValues(models.RunStatusFailed).Inc()
	i.failures.WithLabelValues(stage).Inc()
}

// HistoryFailed counts an archive failure
func (i *Instruments) HistoryFailed() {
	i.historyErrors.Inc()
}

// WriteTextfile atomically writes the registry in text exposition format
func (i *Instruments) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, i.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
