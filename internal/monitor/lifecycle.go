package monitor

import (
	"context"

	"go.uber.org/zap"

	"fping-influx/internal/models"
)

// maintain archives the run, prunes old history and renders the report.
// Failures here are logged and never change the run's outcome.
func (m *Monitor) maintain(ctx context.Context, log *zap.Logger, run models.Run, result Result) {
	if m.history == nil {
		return
	}

	capturedAt := result.CapturedAt
	if capturedAt.IsZero() {
		capturedAt = run.FinishedAt
	}
	if err := m.history.SaveRun(ctx, run, capturedAt, result.Report); err != nil {
		log.Error("Failed to archive run", zap.Error(err))
		m.historyFailed()
		return
	}

	if err := m.history.Prune(ctx, m.retentionDays); err != nil {
		log.Error("Failed to prune history", zap.Error(err))
		m.historyFailed()
	}

	if m.reports == nil {
		return
	}
	if _, err := m.reports.GenerateReport(ctx, m.reportDir, m.reportHours); err != nil {
		log.Error("Failed to generate report", zap.Error(err))
	}
}

func (m *Monitor) historyFailed() {
	if m.instruments != nil {
		m.instruments.HistoryFailed()
	}
}
