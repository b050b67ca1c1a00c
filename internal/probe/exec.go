package probe

import (
	"context"
	stderrors "errors"
	"os/exec"
	"strings"
	"time"

	"github.com/kt2saint-sec/ragcheck/internal/check"
	"github.com/kt2saint-sec/ragcheck/internal/errors"
)

// commandResult holds the classified result of one external command.
type commandResult struct {
	output    string
	exitErr   *exec.ExitError
	notFound  bool
	timedOut  bool
	cancelled bool
	fatal     error
}

// runCommand executes a command with a bounded timeout and classifies
// the result. Missing binaries, non-zero exits, and timeouts are all
// expected conditions; only a broken execution environment is fatal.
func runCommand(ctx context.Context, timeout time.Duration, name string, args ...string) commandResult {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	res := commandResult{output: strings.TrimSpace(string(out))}

	if err == nil {
		return res
	}

	// Check the context before the exit status: a killed-by-deadline or
	// killed-by-signal process reports a meaningless exit code.
	if ctx.Err() != nil {
		if ctx.Err() == context.DeadlineExceeded {
			res.timedOut = true
		} else {
			res.cancelled = true
		}
		return res
	}

	var exitErr *exec.ExitError
	if stderrors.As(err, &exitErr) {
		res.exitErr = exitErr
		return res
	}

	if stderrors.Is(err, exec.ErrNotFound) {
		res.notFound = true
		return res
	}

	// Start itself failed for a reason other than a missing binary:
	// the runner cannot spawn subprocesses. Abort the whole run.
	res.fatal = errors.EnvironmentError("cannot execute "+name, err)
	return res
}

// CommandSucceeds passes when the command exits zero within the timeout.
func CommandSucceeds(timeout time.Duration, name string, args ...string) check.Probe {
	return func(ctx context.Context) check.Outcome {
		res := runCommand(ctx, timeout, name, args...)
		switch {
		case res.fatal != nil:
			return check.Fatal(res.fatal)
		case res.cancelled:
			return check.Fail("cancelled")
		case res.notFound:
			return check.Failf("%s not found in PATH", name)
		case res.timedOut:
			return check.Failf("%s timed out after %s", name, timeout)
		case res.exitErr != nil:
			return check.Failf("%s exited with %d", name, res.exitErr.ExitCode())
		}
		return check.Pass()
	}
}

// CommandOutputContains passes when the command exits zero and its
// combined output contains want.
func CommandOutputContains(timeout time.Duration, want string, name string, args ...string) check.Probe {
	return func(ctx context.Context) check.Outcome {
		res := runCommand(ctx, timeout, name, args...)
		switch {
		case res.fatal != nil:
			return check.Fatal(res.fatal)
		case res.cancelled:
			return check.Fail("cancelled")
		case res.notFound:
			return check.Failf("%s not found in PATH", name)
		case res.timedOut:
			return check.Failf("%s timed out after %s", name, timeout)
		case res.exitErr != nil:
			return check.Failf("%s exited with %d", name, res.exitErr.ExitCode())
		}
		if !strings.Contains(res.output, want) {
			return check.Failf("output does not contain %q", want)
		}
		return check.Pass()
	}
}
