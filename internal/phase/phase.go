// Package phase orchestrates ordered groups of checks into deployment
// milestones and combines their scores into one operational verdict.
//
// Phases run strictly in declared order. A phase marked critical gates
// the overall verdict; advisory phases contribute only to the summary.
// Between phases a confirmation pause may suspend the run until the
// operator resumes it.
package phase

import (
	"time"

	"github.com/kt2saint-sec/ragcheck/internal/check"
	"github.com/kt2saint-sec/ragcheck/internal/score"
)

// State is the runner's position in its lifecycle.
type State int

const (
	// StateNotStarted means Run has not been called.
	StateNotStarted State = iota
	// StateRunning means a phase's registry is executing.
	StateRunning
	// StatePaused means the runner is suspended awaiting operator
	// confirmation between phases.
	StatePaused
	// StateCompleted means every phase has been attempted.
	StateCompleted
)

// String returns the string representation of a State.
func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Phase is one named deployment milestone.
type Phase struct {
	// Label identifies the phase (e.g., "foundation").
	Label string

	// Critical marks phases whose failure blocks the overall verdict.
	Critical bool

	// Confirm requests an operator confirmation pause after this phase.
	Confirm bool

	// Thresholds are the phase's readiness cut-offs.
	Thresholds score.Thresholds

	// Build registers the phase's checks. A Build error means the phase
	// cannot execute at all and is recorded as a hard failure.
	Build func(r *check.Registry) error
}

// Result records one attempted phase.
type Result struct {
	Label    string         `json:"label"`
	Critical bool           `json:"critical"`
	Report   score.Report   `json:"report"`
	Checks   []check.Result `json:"checks,omitempty"`
	Duration time.Duration  `json:"duration_ms"`

	// BuildErr is set when the phase's registry could not execute.
	BuildErr string `json:"error,omitempty"`
}

// Ready reports whether the phase reached the Ready verdict.
func (r Result) Ready() bool {
	return r.BuildErr == "" && r.Report.Verdict == score.VerdictReady
}

// SuiteReport is the aggregate of one full run.
type SuiteReport struct {
	StartedAt   time.Time     `json:"started_at"`
	Duration    time.Duration `json:"duration_ms"`
	Phases      []Result      `json:"phases"`
	Operational bool          `json:"operational"`

	// Aborted is true when the operator declined to continue at a
	// confirmation pause; remaining phases were not attempted.
	Aborted bool `json:"aborted,omitempty"`
}

// computeOperational applies the critical-AND rule: the deployment is
// operational iff every critical phase independently reached Ready.
// Critical phases that never ran (operator abort) count as not ready.
func computeOperational(declared []*Phase, attempted []Result) bool {
	ready := make(map[string]bool, len(attempted))
	for _, r := range attempted {
		ready[r.Label] = r.Ready()
	}
	for _, p := range declared {
		if p.Critical && !ready[p.Label] {
			return false
		}
	}
	return true
}
