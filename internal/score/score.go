// Package score computes readiness scores from check counters.
//
// The readiness rate is passed/(passed+failed). Warnings are advisory and
// deliberately excluded from the denominator so they neither help nor hurt
// readiness. Thresholds are per-phase configuration, never engine constants.
package score

import (
	"github.com/kt2saint-sec/ragcheck/internal/check"
)

// Verdict is the tri-state readiness classification of a phase.
// Ordering is meaningful: Fail < Warn < Ready.
type Verdict int

const (
	// VerdictFail indicates the phase is not ready.
	VerdictFail Verdict = iota
	// VerdictWarn indicates degraded readiness.
	VerdictWarn
	// VerdictReady indicates the phase is ready.
	VerdictReady
)

// String returns the string representation of a Verdict.
func (v Verdict) String() string {
	switch v {
	case VerdictReady:
		return "READY"
	case VerdictWarn:
		return "WARN"
	default:
		return "FAIL"
	}
}

// MarshalText implements encoding.TextMarshaler for JSON output.
func (v Verdict) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// Thresholds are the per-phase readiness cut-offs, in percent.
// A phase is Ready at rate*100 >= Ready, Warn at >= Warn, else Fail.
type Thresholds struct {
	Ready float64 `yaml:"ready" json:"ready"`
	Warn  float64 `yaml:"warn" json:"warn"`
}

// Report is the derived, immutable score of one completed registry run.
type Report struct {
	Passed  uint    `json:"passed"`
	Warned  uint    `json:"warned"`
	Failed  uint    `json:"failed"`
	Rate    float64 `json:"rate"`
	Verdict Verdict `json:"verdict"`
}

// Compute derives a Report from counters and thresholds.
// With no scoring checks run (passed+failed == 0) the rate is 1.0:
// a phase of pure warnings does not block readiness.
func Compute(c check.Counters, t Thresholds) Report {
	rate := 1.0
	if c.Passed+c.Failed > 0 {
		rate = float64(c.Passed) / float64(c.Passed+c.Failed)
	}

	verdict := VerdictFail
	switch {
	case rate*100 >= t.Ready:
		verdict = VerdictReady
	case rate*100 >= t.Warn:
		verdict = VerdictWarn
	}

	return Report{
		Passed:  c.Passed,
		Warned:  c.Warned,
		Failed:  c.Failed,
		Rate:    rate,
		Verdict: verdict,
	}
}
