// Package check provides the atomic verification unit and the ordered
// registry that executes checks and aggregates their outcomes.
//
// A Check wraps a Probe: a single external observation (HTTP heartbeat,
// file existence, subprocess liveness) classified as pass, warn, or fail.
// Probes translate expected absence into outcomes instead of errors; the
// only error a probe may surface is a broken execution environment, which
// aborts the entire run.
package check

import (
	"context"
	"fmt"
)

// Status classifies the outcome of a single check.
type Status int

const (
	// StatusPass indicates the check passed.
	StatusPass Status = iota
	// StatusWarn indicates a non-critical warning.
	StatusWarn
	// StatusFail indicates the check failed.
	StatusFail
)

// MarshalText renders the status as its string form in JSON output.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// String returns the string representation of a Status.
func (s Status) String() string {
	switch s {
	case StatusPass:
		return "PASS"
	case StatusWarn:
		return "WARN"
	case StatusFail:
		return "FAIL"
	default:
		return "UNKNOWN"
	}
}

// Outcome is the result of executing a probe. Immutable once produced.
// Err is set only when the probe's own execution environment is broken
// (e.g., subprocesses cannot be spawned at all); it aborts the run.
type Outcome struct {
	Status Status
	Detail string
	Err    error
}

// Pass returns a passing outcome.
func Pass() Outcome {
	return Outcome{Status: StatusPass}
}

// Passf returns a passing outcome with a formatted detail string.
func Passf(format string, args ...any) Outcome {
	return Outcome{Status: StatusPass, Detail: fmt.Sprintf(format, args...)}
}

// Warn returns a warning outcome with a reason.
func Warn(reason string) Outcome {
	return Outcome{Status: StatusWarn, Detail: reason}
}

// Warnf returns a warning outcome with a formatted reason.
func Warnf(format string, args ...any) Outcome {
	return Outcome{Status: StatusWarn, Detail: fmt.Sprintf(format, args...)}
}

// Fail returns a failing outcome with a reason.
func Fail(reason string) Outcome {
	return Outcome{Status: StatusFail, Detail: reason}
}

// Failf returns a failing outcome with a formatted reason.
func Failf(format string, args ...any) Outcome {
	return Outcome{Status: StatusFail, Detail: fmt.Sprintf(format, args...)}
}

// Fatal returns an outcome that aborts the entire run. Reserved for
// broken runner environments, never for the absence of the thing checked.
func Fatal(err error) Outcome {
	return Outcome{Status: StatusFail, Detail: err.Error(), Err: err}
}

// Probe performs one external observation and classifies it.
// Probes run exactly once per registry run, with no retries.
type Probe func(ctx context.Context) Outcome

// Check is a single named verification unit. Immutable once registered.
type Check struct {
	Name    string
	Section string
	Probe   Probe

	// Gate marks a check whose failure aborts the remaining checks in
	// its section, because they would be meaningless without it.
	Gate bool
}

// Result records the outcome of one executed check.
type Result struct {
	Name    string `json:"name"`
	Section string `json:"section"`
	Status  Status `json:"status"`
	Detail  string `json:"detail,omitempty"`
	Gate    bool   `json:"gate,omitempty"`
}

// StatusText returns the lowercase status for machine-readable output.
func (r Result) StatusText() string {
	switch r.Status {
	case StatusPass:
		return "pass"
	case StatusWarn:
		return "warn"
	default:
		return "fail"
	}
}

// Counters aggregates check outcomes for one registry run.
// Owned exclusively by that run; never shared.
type Counters struct {
	Passed uint `json:"passed"`
	Warned uint `json:"warned"`
	Failed uint `json:"failed"`
}

// Total returns the number of checks executed so far.
func (c Counters) Total() uint {
	return c.Passed + c.Warned + c.Failed
}

// record classifies one outcome into the counters.
func (c *Counters) record(s Status) {
	switch s {
	case StatusPass:
		c.Passed++
	case StatusWarn:
		c.Warned++
	case StatusFail:
		c.Failed++
	}
}
