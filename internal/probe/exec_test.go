package probe

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kt2saint-sec/ragcheck/internal/check"
)

func TestCommandSucceeds(t *testing.T) {
	t.Run("zero exit passes", func(t *testing.T) {
		outcome := CommandSucceeds(time.Second, "true")(context.Background())
		assert.Equal(t, check.StatusPass, outcome.Status)
	})

	t.Run("non-zero exit fails", func(t *testing.T) {
		outcome := CommandSucceeds(time.Second, "false")(context.Background())
		assert.Equal(t, check.StatusFail, outcome.Status)
		assert.Contains(t, outcome.Detail, "exited with 1")
	})

	t.Run("missing binary fails without aborting", func(t *testing.T) {
		outcome := CommandSucceeds(time.Second, "ragcheck-no-such-binary")(context.Background())
		assert.Equal(t, check.StatusFail, outcome.Status)
		assert.Nil(t, outcome.Err, "missing binary is expected absence, not an environment failure")
		assert.Contains(t, outcome.Detail, "not found")
	})

	t.Run("timeout resolves to fail", func(t *testing.T) {
		start := time.Now()
		outcome := CommandSucceeds(200*time.Millisecond, "sleep", "10")(context.Background())
		assert.Equal(t, check.StatusFail, outcome.Status)
		assert.Contains(t, outcome.Detail, "timed out")
		assert.Less(t, time.Since(start), 2*time.Second)
	})
}

func TestCommandOutputContains(t *testing.T) {
	t.Run("match passes", func(t *testing.T) {
		outcome := CommandOutputContains(time.Second, "hello", "echo", "hello world")(context.Background())
		assert.Equal(t, check.StatusPass, outcome.Status)
	})

	t.Run("no match fails", func(t *testing.T) {
		outcome := CommandOutputContains(time.Second, "absent", "echo", "hello")(context.Background())
		assert.Equal(t, check.StatusFail, outcome.Status)
		assert.Contains(t, outcome.Detail, "does not contain")
	})

	t.Run("command failure fails", func(t *testing.T) {
		outcome := CommandOutputContains(time.Second, "x", "false")(context.Background())
		assert.Equal(t, check.StatusFail, outcome.Status)
	})
}

func TestRunCommand_CapturesOutput(t *testing.T) {
	res := runCommand(context.Background(), time.Second, "echo", "heartbeat ok")
	assert.Equal(t, "heartbeat ok", res.output)
	assert.Nil(t, res.fatal)
	assert.False(t, res.notFound)
	assert.False(t, res.timedOut)
}

func TestCommandSucceeds_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcome := CommandSucceeds(time.Second, "sleep", "5")(ctx)
	assert.Equal(t, check.StatusFail, outcome.Status)
	assert.Nil(t, outcome.Err)

	// An interrupted run reports the cancellation, not a bogus exit status.
	assert.Equal(t, "cancelled", outcome.Detail)
	assert.NotContains(t, outcome.Detail, "exited with")
}
