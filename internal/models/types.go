package models

import (
	"context"
	"time"
)

// Prober runs an fping sweep and returns its raw textual report
type Prober interface {
	Run(ctx context.Context, params ProbeParams) (string, error)
}

// Sink receives a run's metric points in one batch
type Sink interface {
	Write(ctx context.Context, points []MetricPoint) error
	Close() error
}

// History archives runs and their per-target statistics
type History interface {
	SaveRun(ctx context.Context, run Run, capturedAt time.Time, report Report) error
	Prune(ctx context.Context, retentionDays int) error
}

// ReportGenerator renders charts and summaries from the archived history
type ReportGenerator interface {
	GenerateReport(ctx context.Context, outputDir string, hours int) (string, error)
}
