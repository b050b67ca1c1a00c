package check

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus_String(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusPass, "PASS"},
		{StatusWarn, "WARN"},
		{StatusFail, "FAIL"},
		{Status(42), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.String())
		})
	}
}

func TestOutcomeConstructors(t *testing.T) {
	assert.Equal(t, Outcome{Status: StatusPass}, Pass())
	assert.Equal(t, Outcome{Status: StatusPass, Detail: "3 collections"}, Passf("%d collections", 3))
	assert.Equal(t, Outcome{Status: StatusWarn, Detail: "slow"}, Warn("slow"))
	assert.Equal(t, Outcome{Status: StatusFail, Detail: "missing"}, Fail("missing"))
	assert.Equal(t, Outcome{Status: StatusFail, Detail: "port 8001 closed"}, Failf("port %d closed", 8001))
}

func TestFatal_CarriesError(t *testing.T) {
	err := assert.AnError
	o := Fatal(err)
	assert.Equal(t, StatusFail, o.Status)
	assert.Equal(t, err, o.Err)
}

func TestCounters_Record(t *testing.T) {
	var c Counters
	c.record(StatusPass)
	c.record(StatusPass)
	c.record(StatusWarn)
	c.record(StatusFail)

	assert.Equal(t, Counters{Passed: 2, Warned: 1, Failed: 1}, c)
	assert.Equal(t, uint(4), c.Total())
}

func TestResult_StatusText(t *testing.T) {
	assert.Equal(t, "pass", Result{Status: StatusPass}.StatusText())
	assert.Equal(t, "warn", Result{Status: StatusWarn}.StatusText())
	assert.Equal(t, "fail", Result{Status: StatusFail}.StatusText())
}
