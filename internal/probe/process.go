package probe

import (
	"context"
	stderrors "errors"
	"os/exec"
	"time"

	"github.com/kt2saint-sec/ragcheck/internal/check"
	"github.com/kt2saint-sec/ragcheck/internal/errors"
)

// StaysAlive starts a command, waits for the given settle period, and
// passes only if the process is still running. A process that exits
// immediately fails. The spawned process is terminated on every exit
// path so no background process leaks across runs.
func StaysAlive(argv []string, settle time.Duration) check.Probe {
	return func(ctx context.Context) check.Outcome {
		if len(argv) == 0 {
			return check.Fail("no command configured")
		}
		if settle <= 0 {
			settle = 3 * time.Second
		}

		cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
		if err := cmd.Start(); err != nil {
			if stderrors.Is(err, exec.ErrNotFound) {
				return check.Failf("%s not found in PATH", argv[0])
			}
			return check.Fatal(errors.EnvironmentError("cannot spawn "+argv[0], err))
		}

		// Guarantee termination: kill then reap, on every path out.
		done := make(chan error, 1)
		go func() { done <- cmd.Wait() }()
		defer func() {
			_ = cmd.Process.Kill()
			<-done
		}()

		select {
		case err := <-done:
			// Exited before the settle period: report and re-arm the
			// channel so the deferred reap does not block.
			done <- err
			if err != nil {
				return check.Failf("exited immediately: %v", err)
			}
			return check.Failf("exited immediately (within %s)", settle)
		case <-time.After(settle):
			return check.Passf("alive after %s", settle)
		case <-ctx.Done():
			return check.Fail("cancelled while waiting for process")
		}
	}
}

// ProcessListening starts nothing; it passes when pgrep finds a process
// whose command line matches pattern. Used for services managed outside
// the checker (e.g., an already-deployed integration server).
func ProcessListening(pattern string, timeout time.Duration) check.Probe {
	return func(ctx context.Context) check.Outcome {
		res := runCommand(ctx, timeout, "pgrep", "-f", pattern)
		switch {
		case res.fatal != nil:
			return check.Fatal(res.fatal)
		case res.cancelled:
			return check.Fail("cancelled")
		case res.notFound:
			return check.Warn("pgrep not available, cannot verify process")
		case res.timedOut:
			return check.Failf("pgrep timed out after %s", timeout)
		case res.exitErr != nil:
			return check.Failf("no process matching %q", pattern)
		}
		return check.Pass()
	}
}
