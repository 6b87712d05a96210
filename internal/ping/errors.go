package ping

import (
	"errors"
	"fmt"
)

// ErrProbeExecution is matched by every ExecutionError
var ErrProbeExecution = errors.New("probe execution failed")

// ErrInvalidParams is returned before fping is started
var ErrInvalidParams = errors.New("invalid probe parameters")

// ExecutionError reports that fping could not produce a usable report:
// it failed to start, was killed, or exited with a fatal status.
type ExecutionError struct {
	Binary   string
	ExitCode int // -1 when the process never exited normally
	Output   string
	Err      error
}

func (e *ExecutionError) Error() string {
	if e.ExitCode >= 0 {
		return fmt.Sprintf("%s: %s exited with status %d: %v", ErrProbeExecution, e.Binary, e.ExitCode, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", ErrProbeExecution, e.Binary, e.Err)
}

func (e *ExecutionError) Unwrap() []error {
	return []error{ErrProbeExecution, e.Err}
}
