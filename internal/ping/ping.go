package ping

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"time"

	"go.uber.org/zap"

	"fping-influx/internal/models"
)

// DefaultBinary is where distributions install fping
const DefaultBinary = "/usr/bin/fping"

// fping exit statuses that still carry a complete report. 3 (invalid
// arguments) and 4 (system call failure) do not, see fping(8).
const (
	exitAllReachable    = 0
	exitSomeUnreachable = 1
	exitUnknownAddress  = 2
)

// waitDelay bounds how long output copying may outlive a killed fping
const waitDelay = 5 * time.Second

// Pinger runs fping range sweeps
type Pinger struct {
	binary string
	logger *zap.Logger
}

// New creates a Pinger for the given fping binary
func New(binary string, logger *zap.Logger) *Pinger {
	if binary == "" {
		binary = DefaultBinary
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pinger{binary: binary, logger: logger}
}

// BuildArgs returns the fping command line for a quiet range sweep
func BuildArgs(params models.ProbeParams) []string {
	return []string{
		"-b", strconv.Itoa(params.PacketSize),
		"-M",
		"-c", strconv.Itoa(params.Count),
		"-p", strconv.Itoa(params.IntervalMs),
		"-g", params.RangeStart, params.RangeEnd,
		"-q",
	}
}

// Validate checks params before anything is executed
func Validate(params models.ProbeParams) error {
	switch {
	case params.RangeStart == "" || params.RangeEnd == "":
		return fmt.Errorf("%w: range start and end are required", ErrInvalidParams)
	case params.PacketSize <= 0:
		return fmt.Errorf("%w: packet size must be positive", ErrInvalidParams)
	case params.IntervalMs <= 0:
		return fmt.Errorf("%w: interval must be positive", ErrInvalidParams)
	case params.Count <= 0:
		return fmt.Errorf("%w: count must be positive", ErrInvalidParams)
	}
	return nil
}

// Run executes the sweep and returns fping's combined stdout and stderr.
//
// fping exits 1 when any target lost packets and 2 when an address could not
// be resolved; both still produce a summary for every target, so they are
// not errors here. Loss is judged per target by the parser.
func (p *Pinger) Run(ctx context.Context, params models.ProbeParams) (string, error) {
	if err := Validate(params); err != nil {
		return "", err
	}

	args := BuildArgs(params)
	cmd := exec.CommandContext(ctx, p.binary, args...)
	cmd.WaitDelay = waitDelay

	p.logger.Info("Running fping",
		zap.String("range_start", params.RangeStart),
		zap.String("range_end", params.RangeEnd),
		zap.Strings("args", args),
	)

	start := time.Now()
	output, err := cmd.CombinedOutput()
	text := string(output)
	elapsed := time.Since(start)

	if err == nil {
		p.logger.Debug("fping finished", zap.Duration("elapsed", elapsed))
		return text, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return text, &ExecutionError{Binary: p.binary, ExitCode: -1, Output: text, Err: ctxErr}
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return text, &ExecutionError{Binary: p.binary, ExitCode: -1, Output: text, Err: err}
	}

	code := exitErr.ExitCode()
	if !expectedExit(code) {
		return text, &ExecutionError{Binary: p.binary, ExitCode: code, Output: text, Err: err}
	}

	p.logger.Info("fping reported unreachable targets",
		zap.Int("exit_code", code),
		zap.Duration("elapsed", elapsed),
	)
	return text, nil
}

func expectedExit(code int) bool {
	switch code {
	case exitAllReachable, exitSomeUnreachable, exitUnknownAddress:
		return true
	}
	return false
}
