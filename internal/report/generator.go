package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"fping-influx/internal/database"
)

// Generator renders charts and a text summary from the run history
type Generator struct {
	db     *database.DB
	logger *zap.Logger
	now    func() time.Time
}

// NewGenerator creates a new report generator
func NewGenerator(db *database.DB, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{db: db, logger: logger, now: time.Now}
}

// GenerateReport writes a timestamped report directory under outputDir
// covering the last hours of history and returns its path. Individual
// charts that fail are logged and skipped.
func (g *Generator) GenerateReport(ctx context.Context, outputDir string, hours int) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	now := g.now()
	reportDir := filepath.Join(outputDir, fmt.Sprintf("fping_report_%s", now.Format("2006-01-02_15-04-05")))
	if err := os.MkdirAll(reportDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	since := now.Add(-time.Duration(hours) * time.Hour)
	samples, err := g.db.TargetHistory(ctx, since)
	if err != nil {
		return "", fmt.Errorf("load history: %w", err)
	}
	series := groupByTarget(samples)

	if err := g.generateLossChart(reportDir, series); err != nil {
		g.logger.Warn("Failed to generate loss chart", zap.Error(err))
	}

	if err := g.generateLatencyCharts(reportDir, series); err != nil {
		g.logger.Warn("Failed to generate latency charts", zap.Error(err))
	}

	if err := g.generateTextReport(ctx, reportDir, since, hours); err != nil {
		return "", fmt.Errorf("text report: %w", err)
	}

	g.logger.Info("Report generated", zap.String("dir", reportDir), zap.Int("targets", len(series)))
	return reportDir, nil
}
