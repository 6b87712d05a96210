// Package parser turns fping's quiet-mode summary into per-target statistics.
//
// Each non-blank line has the form
//
//	<target> : xmt/rcv/%loss = <xmt>/<rcv>/<loss>%[, min/avg/max = <min>/<avg>/<max>]
//
// The timing segment appears exactly when at least one probe was answered.
// fping -o adds an "outage(ms) = <n>" segment, which is accepted and dropped.
// Any other segment is an error.
package parser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"fping-influx/internal/models"
)

// maxLineLength bounds a single report line. fping lines are far shorter;
// anything longer is not fping output.
const maxLineLength = 1 << 20

// Parsed is a report together with what the parse pass observed
type Parsed struct {
	Report models.Report
	// Lines is the number of non-blank lines consumed
	Lines int
	// Duplicates lists targets reported more than once; the last line won
	Duplicates []string
}

// Parse reads a full fping report and returns the target -> stats mapping
func Parse(r io.Reader) (models.Report, error) {
	parsed, err := ParseDetailed(r)
	if err != nil {
		return nil, err
	}
	return parsed.Report, nil
}

// ParseDetailed is Parse plus line and duplicate accounting
func ParseDetailed(r io.Reader) (Parsed, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return Parsed{}, &MalformedLineError{
				Line:   len(lines) + 1,
				Reason: fmt.Sprintf("line longer than %d bytes", maxLineLength),
			}
		}
		return Parsed{}, fmt.Errorf("read report: %w", err)
	}
	return parseLines(lines)
}

// ParseLines parses already split report lines
func ParseLines(lines []string) (models.Report, error) {
	parsed, err := parseLines(lines)
	if err != nil {
		return nil, err
	}
	return parsed.Report, nil
}

func parseLines(lines []string) (Parsed, error) {
	parsed := Parsed{Report: make(models.Report, len(lines))}
	seen := make(map[string]bool, len(lines))

	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}

		stats, err := parseLine(line)
		if err != nil {
			return Parsed{}, &MalformedLineError{
				Line:    i + 1,
				Content: line,
				Reason:  err.Error(),
			}
		}

		parsed.Lines++
		if seen[stats.Target] {
			parsed.Duplicates = append(parsed.Duplicates, stats.Target)
		}
		seen[stats.Target] = true
		parsed.Report[stats.Target] = stats
	}

	return parsed, nil
}
