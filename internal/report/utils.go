package report

import (
	"sort"
	"strings"
	"time"

	"fping-influx/internal/models"
)

// sanitizeFilename replaces dots and special characters for safe filenames
func sanitizeFilename(s string) string {
	replacer := strings.NewReplacer(
		".", "_",
		":", "_",
		"/", "_",
		"\\", "_",
		" ", "_",
	)
	return replacer.Replace(s)
}

type targetSeries struct {
	target     string
	timestamps []time.Time
	loss       []float64
	avgMs      []float64
	// answered marks samples whose timing values are meaningful
	answered []bool
}

// groupByTarget splits time-ordered samples into per-target series,
// returned in target order
func groupByTarget(samples []models.TargetSample) []targetSeries {
	index := make(map[string]int)
	var out []targetSeries
	for _, s := range samples {
		i, ok := index[s.Target]
		if !ok {
			i = len(out)
			index[s.Target] = i
			out = append(out, targetSeries{target: s.Target})
		}
		ts := &out[i]
		ts.timestamps = append(ts.timestamps, s.CapturedAt)
		ts.loss = append(ts.loss, float64(s.LossPercent))
		ts.avgMs = append(ts.avgMs, s.AvgMs)
		ts.answered = append(ts.answered, s.Received > 0)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].target < out[j].target })
	return out
}
