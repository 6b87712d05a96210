package parser

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"fping-influx/internal/models"
)

// Segment keys as printed by fping
const (
	lossKey   = "xmt/rcv/%loss"
	timingKey = "min/avg/max"
	outageKey = "outage(ms)"
)

// labelSeparator is what fping prints between the padded target and its stats
const labelSeparator = " : "

type segment struct {
	key   string
	value string
}

func parseLine(line string) (models.TargetStats, error) {
	label, rest, ok := splitLabel(line)
	if !ok {
		return models.TargetStats{}, errors.New("missing ':' after target")
	}

	stats := models.TargetStats{Target: strings.TrimSpace(label)}
	if stats.Target == "" {
		return models.TargetStats{}, errors.New("empty target")
	}

	segments, err := splitSegments(rest)
	if err != nil {
		return models.TargetStats{}, err
	}

	if segments[0].key != lossKey {
		return models.TargetStats{}, fmt.Errorf("first segment is %q, want %q", segments[0].key, lossKey)
	}
	if err := parseCounts(segments[0].value, &stats); err != nil {
		return models.TargetStats{}, err
	}

	seen := make(map[string]bool, len(segments))
	for _, seg := range segments[1:] {
		if seen[seg.key] {
			return models.TargetStats{}, fmt.Errorf("segment %q repeated", seg.key)
		}
		seen[seg.key] = true

		switch seg.key {
		case timingKey:
			if err := parseTimings(seg.value, &stats); err != nil {
				return models.TargetStats{}, err
			}
		case outageKey:
			// printed under -o, not exported
			if _, err := parseMillis(outageKey, seg.value); err != nil {
				return models.TargetStats{}, err
			}
		default:
			return models.TargetStats{}, fmt.Errorf("unknown segment %q", seg.key)
		}
	}

	if stats.Received > 0 && !seen[timingKey] {
		return models.TargetStats{}, fmt.Errorf("%d replies but no %s segment", stats.Received, timingKey)
	}

	return stats, nil
}

// splitLabel separates the target from the stats. IPv6 labels contain
// colons, so fping's " : " separator is preferred over the first colon.
func splitLabel(line string) (string, string, bool) {
	if i := strings.Index(line, labelSeparator); i >= 0 {
		return line[:i], line[i+len(labelSeparator):], true
	}
	return strings.Cut(line, ":")
}

func splitSegments(rest string) ([]segment, error) {
	parts := strings.Split(rest, ",")
	segments := make([]segment, 0, len(parts))
	for _, part := range parts {
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("segment %q has no '='", strings.TrimSpace(part))
		}
		segments = append(segments, segment{
			key:   strings.TrimSpace(key),
			value: strings.TrimSpace(value),
		})
	}
	return segments, nil
}

func splitTriple(key, value string) ([3]string, error) {
	var triple [3]string
	parts := strings.Split(value, "/")
	if len(parts) != len(triple) {
		return triple, fmt.Errorf("%s value %q has %d fields, want 3", key, value, len(parts))
	}
	for i, p := range parts {
		triple[i] = strings.TrimSpace(p)
	}
	return triple, nil
}

func parseCounts(value string, stats *models.TargetStats) error {
	triple, err := splitTriple(lossKey, value)
	if err != nil {
		return err
	}

	if stats.Transmitted, err = parseCount("xmt", triple[0]); err != nil {
		return err
	}
	if stats.Received, err = parseCount("rcv", triple[1]); err != nil {
		return err
	}
	if stats.LossPercent, err = parseCount("%loss", strings.TrimSuffix(triple[2], "%")); err != nil {
		return err
	}
	if stats.LossPercent > 100 {
		return fmt.Errorf("%%loss %d is above 100", stats.LossPercent)
	}
	return nil
}

func parseCount(name, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s %q is not an integer", name, s)
	}
	if n < 0 {
		return 0, fmt.Errorf("%s %d is negative", name, n)
	}
	return n, nil
}

func parseTimings(value string, stats *models.TargetStats) error {
	triple, err := splitTriple(timingKey, value)
	if err != nil {
		return err
	}

	if stats.MinMs, err = parseMillis("min", triple[0]); err != nil {
		return err
	}
	if stats.AvgMs, err = parseMillis("avg", triple[1]); err != nil {
		return err
	}
	if stats.MaxMs, err = parseMillis("max", triple[2]); err != nil {
		return err
	}
	return nil
}

func parseMillis(name, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%s %q is not a number", name, s)
	}
	if v < 0 {
		return 0, fmt.Errorf("%s %v is negative", name, v)
	}
	return v, nil
}
