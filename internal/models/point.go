package models

import "time"

// MetricPoint is a single tagged time-series data point
type MetricPoint struct {
	Measurement string            `json:"measurement"`
	Tags        map[string]string `json:"tags"`
	Time        time.Time         `json:"time"`
	Fields      map[string]any    `json:"fields"`
}
