package parser

import (
	"fmt"
	"strconv"
	"strings"

	"fping-influx/internal/models"
)

// FormatLine renders stats the way fping -q prints them. The timing segment
// is written when any probe was answered or any timing value is set.
func FormatLine(stats models.TargetStats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s%s%s = %d/%d/%d%%",
		stats.Target, labelSeparator, lossKey,
		stats.Transmitted, stats.Received, stats.LossPercent)

	if stats.Received > 0 || stats.MinMs != 0 || stats.AvgMs != 0 || stats.MaxMs != 0 {
		fmt.Fprintf(&b, ", %s = %s/%s/%s", timingKey,
			formatMillis(stats.MinMs), formatMillis(stats.AvgMs), formatMillis(stats.MaxMs))
	}
	return b.String()
}

func formatMillis(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
