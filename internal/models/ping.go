package models

import "time"

// ProbeParams describes one fping sweep
type ProbeParams struct {
	RangeStart string `json:"range_start"`
	RangeEnd   string `json:"range_end"`
	PacketSize int    `json:"packet_size"`
	IntervalMs int    `json:"interval_ms"`
	Count      int    `json:"count"`
}

// Run status values
const (
	RunStatusOK     = "ok"
	RunStatusFailed = "failed"
)

// Run records the outcome of one probe-parse-push cycle
type Run struct {
	ID          string      `json:"id"`
	StartedAt   time.Time   `json:"started_at"`
	FinishedAt  time.Time   `json:"finished_at"`
	Host        string      `json:"host"`
	Params      ProbeParams `json:"params"`
	TargetCount int         `json:"target_count"`
	Status      string      `json:"status"`
	Stage       string      `json:"stage,omitempty"`
	Error       string      `json:"error,omitempty"`
}
