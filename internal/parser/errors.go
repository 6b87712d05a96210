package parser

import (
	"errors"
	"fmt"
)

// ErrMalformedReportLine is matched by every MalformedLineError
var ErrMalformedReportLine = errors.New("malformed report line")

// MalformedLineError identifies a report line that does not follow the fping
// summary grammar. Line is 1-based and counts blank lines.
type MalformedLineError struct {
	Line    int
	Content string
	Reason  string
}

func (e *MalformedLineError) Error() string {
	return fmt.Sprintf("malformed report line %d: %s: %q", e.Line, e.Reason, e.Content)
}

// Unwrap lets errors.Is match ErrMalformedReportLine
func (e *MalformedLineError) Unwrap() error {
	return ErrMalformedReportLine
}
