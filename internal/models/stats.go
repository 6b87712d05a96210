package models

import "time"

// TargetStats is the fping summary for a single target
type TargetStats struct {
	Target      string  `json:"target"`
	Transmitted int     `json:"transmitted"`
	Received    int     `json:"received"`
	LossPercent int     `json:"loss_percent"`
	MinMs       float64 `json:"min_ms"`
	AvgMs       float64 `json:"avg_ms"`
	MaxMs       float64 `json:"max_ms"`
}

// Report maps a target label to its statistics
type Report map[string]TargetStats

// TargetSummary aggregates archived statistics for one target over a period
type TargetSummary struct {
	Target         string  `json:"target"`
	Runs           int     `json:"runs"`
	Transmitted    int     `json:"transmitted"`
	Received       int     `json:"received"`
	AvgLossPercent float64 `json:"avg_loss_percent"`
	MinMs          float64 `json:"min_ms"`
	AvgMs          float64 `json:"avg_ms"`
	MaxMs          float64 `json:"max_ms"`
}

// TargetSample is one archived TargetStats with the run's capture time
type TargetSample struct {
	CapturedAt time.Time `json:"captured_at"`
	RunID      string    `json:"run_id"`
	TargetStats
}
