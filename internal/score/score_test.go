package score

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kt2saint-sec/ragcheck/internal/check"
)

func TestCompute_RateConventions(t *testing.T) {
	thresholds := Thresholds{Ready: 90, Warn: 70}

	tests := []struct {
		name     string
		counters check.Counters
		wantRate float64
	}{
		{"no scoring checks ran", check.Counters{}, 1.0},
		{"only warnings ran", check.Counters{Warned: 5}, 1.0},
		{"all passed", check.Counters{Passed: 10}, 1.0},
		{"all failed", check.Counters{Failed: 4}, 0.0},
		{"mixed", check.Counters{Passed: 3, Failed: 1}, 0.75},
		{"warnings excluded from denominator", check.Counters{Passed: 3, Failed: 1, Warned: 100}, 0.75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := Compute(tt.counters, thresholds)
			assert.InDelta(t, tt.wantRate, report.Rate, 1e-9)
		})
	}
}

func TestCompute_WorkedExample(t *testing.T) {
	// 17 passed, 3 failed, 2 warned at 90/70: 17/20 = 85% -> WARN.
	report := Compute(check.Counters{Passed: 17, Failed: 3, Warned: 2}, Thresholds{Ready: 90, Warn: 70})
	assert.InDelta(t, 0.85, report.Rate, 1e-9)
	assert.Equal(t, VerdictWarn, report.Verdict)
}

func TestCompute_PerfectScoreIsReady(t *testing.T) {
	report := Compute(check.Counters{Passed: 20}, Thresholds{Ready: 85, Warn: 65})
	assert.InDelta(t, 1.0, report.Rate, 1e-9)
	assert.Equal(t, VerdictReady, report.Verdict)
}

func TestCompute_VerdictBoundaries(t *testing.T) {
	thresholds := Thresholds{Ready: 90, Warn: 70}

	tests := []struct {
		name     string
		counters check.Counters
		want     Verdict
	}{
		{"exactly ready threshold", check.Counters{Passed: 9, Failed: 1}, VerdictReady},
		{"just below ready", check.Counters{Passed: 89, Failed: 11}, VerdictWarn},
		{"exactly warn threshold", check.Counters{Passed: 7, Failed: 3}, VerdictWarn},
		{"below warn", check.Counters{Passed: 6, Failed: 4}, VerdictFail},
		{"empty counters are ready", check.Counters{}, VerdictReady},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Compute(tt.counters, thresholds).Verdict)
		})
	}
}

func TestCompute_VerdictMonotonicInPassed(t *testing.T) {
	thresholds := Thresholds{Ready: 90, Warn: 70}

	prev := VerdictFail
	for passed := uint(0); passed <= 50; passed++ {
		v := Compute(check.Counters{Passed: passed, Failed: 5}, thresholds).Verdict
		assert.GreaterOrEqual(t, int(v), int(prev),
			"verdict must not regress as passed increases (passed=%d)", passed)
		prev = v
	}
	assert.Equal(t, VerdictReady, prev)
}

func TestVerdict_String(t *testing.T) {
	assert.Equal(t, "READY", VerdictReady.String())
	assert.Equal(t, "WARN", VerdictWarn.String())
	assert.Equal(t, "FAIL", VerdictFail.String())
}

func TestReport_JSONVerdictIsText(t *testing.T) {
	report := Compute(check.Counters{Passed: 1}, Thresholds{Ready: 90, Warn: 70})
	data, err := json.Marshal(report)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"verdict":"READY"`)
	assert.Contains(t, string(data), `"rate":1`)
}
