// Package metrics projects parsed fping statistics into time-series points.
package metrics

import (
	"time"

	"fping-influx/internal/models"
)

// DefaultMeasurement is the series family used when none is configured
const DefaultMeasurement = "fping"

// Tag and field keys written for every point
const (
	TagHost   = "host"
	TagTarget = "target"

	FieldTransmitted = "transmitted"
	FieldReceived    = "received"
	FieldLoss        = "loss"
	FieldMin         = "min"
	FieldAvg         = "avg"
	FieldMax         = "max"
)

// RunContext is what every point of one run shares
type RunContext struct {
	Host        string
	Measurement string
	// CaptureTime is taken once per run and stamped on every point
	CaptureTime time.Time
}

// Project builds one point per report entry. It performs no I/O and
// returns the points in map iteration order.
func Project(report models.Report, rc RunContext) []models.MetricPoint {
	measurement := rc.Measurement
	if measurement == "" {
		measurement = DefaultMeasurement
	}

	points := make([]models.MetricPoint, 0, len(report))
	for target, stats := range report {
		points = append(points, models.MetricPoint{
			Measurement: measurement,
			Tags: map[string]string{
				TagHost:   rc.Host,
				TagTarget: target,
			},
			Time:   rc.CaptureTime,
			Fields: fields(stats),
		})
	}
	return points
}

// Integer counters stay int64 so InfluxDB keeps them as integer fields
func fields(stats models.TargetStats) map[string]any {
	return map[string]any{
		FieldTransmitted: int64(stats.Transmitted),
		FieldReceived:    int64(stats.Received),
		FieldLoss:        int64(stats.LossPercent),
		FieldMin:         stats.MinMs,
		FieldAvg:         stats.AvgMs,
		FieldMax:         stats.MaxMs,
	}
}
