package probe

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/kt2saint-sec/ragcheck/internal/check"
)

// EnvEquals passes when the named variable in the checker's own
// environment equals want.
func EnvEquals(name, want string) check.Probe {
	return func(context.Context) check.Outcome {
		got, ok := os.LookupEnv(name)
		if !ok {
			return check.Failf("%s is not set", name)
		}
		if got != want {
			return check.Failf("%s=%s, want %s", name, got, want)
		}
		return check.Pass()
	}
}

// ContainerRunning passes when docker reports the named container as
// running.
func ContainerRunning(name string, timeout time.Duration) check.Probe {
	return func(ctx context.Context) check.Outcome {
		res := runCommand(ctx, timeout, "docker", "inspect", "-f", "{{.State.Running}}", name)
		switch {
		case res.fatal != nil:
			return check.Fatal(res.fatal)
		case res.cancelled:
			return check.Fail("cancelled")
		case res.notFound:
			return check.Fail("docker not found in PATH")
		case res.timedOut:
			return check.Failf("docker inspect timed out after %s", timeout)
		case res.exitErr != nil:
			return check.Failf("container %s not found", name)
		}
		if res.output != "true" {
			return check.Failf("container %s is not running", name)
		}
		return check.Pass()
	}
}

// ContainerEnvEquals passes when the named variable inside a running
// container equals want, read via docker exec printenv.
func ContainerEnvEquals(container, name, want string, timeout time.Duration) check.Probe {
	return func(ctx context.Context) check.Outcome {
		res := runCommand(ctx, timeout, "docker", "exec", container, "printenv", name)
		switch {
		case res.fatal != nil:
			return check.Fatal(res.fatal)
		case res.cancelled:
			return check.Fail("cancelled")
		case res.notFound:
			return check.Fail("docker not found in PATH")
		case res.timedOut:
			return check.Failf("docker exec timed out after %s", timeout)
		case res.exitErr != nil:
			return check.Failf("%s is not set in container %s", name, container)
		}
		if res.output != want {
			return check.Failf("%s=%s in %s, want %s", name, res.output, container, want)
		}
		return check.Pass()
	}
}

// ContainerRestartPolicy passes when docker reports the named container
// configured with the wanted restart policy.
func ContainerRestartPolicy(name, want string, timeout time.Duration) check.Probe {
	return func(ctx context.Context) check.Outcome {
		res := runCommand(ctx, timeout, "docker", "inspect", "-f", "{{.HostConfig.RestartPolicy.Name}}", name)
		switch {
		case res.fatal != nil:
			return check.Fatal(res.fatal)
		case res.cancelled:
			return check.Fail("cancelled")
		case res.notFound:
			return check.Fail("docker not found in PATH")
		case res.timedOut:
			return check.Failf("docker inspect timed out after %s", timeout)
		case res.exitErr != nil:
			return check.Failf("container %s not found", name)
		}
		if res.output != want {
			return check.Failf("restart policy is %q, want %q", res.output, want)
		}
		return check.Pass()
	}
}

// PipPackagePresent passes when the package manager of the given Python
// interpreter reports the package installed.
func PipPackagePresent(interpreter, pkg string, timeout time.Duration) check.Probe {
	return func(ctx context.Context) check.Outcome {
		res := runCommand(ctx, timeout, interpreter, "-m", "pip", "show", pkg)
		switch {
		case res.fatal != nil:
			return check.Fatal(res.fatal)
		case res.cancelled:
			return check.Fail("cancelled")
		case res.notFound:
			return check.Failf("%s not found in PATH", interpreter)
		case res.timedOut:
			return check.Failf("pip show timed out after %s", timeout)
		case res.exitErr != nil:
			return check.Failf("package %s not installed", pkg)
		}
		if v := pipField(res.output, "Version"); v != "" {
			return check.Passf("version %s", v)
		}
		return check.Pass()
	}
}

// pipField extracts a header-style field from pip show output.
func pipField(output, field string) string {
	for _, line := range strings.Split(output, "\n") {
		if rest, ok := strings.CutPrefix(line, field+":"); ok {
			return strings.TrimSpace(rest)
		}
	}
	return ""
}

// CronEntryContains inspects the invoking user's crontab for an entry
// containing marker. Requires crontab access, so absence of the tool
// degrades to Warn rather than Fail.
func CronEntryContains(marker string, timeout time.Duration) check.Probe {
	return func(ctx context.Context) check.Outcome {
		res := runCommand(ctx, timeout, "crontab", "-l")
		switch {
		case res.fatal != nil:
			return check.Fatal(res.fatal)
		case res.cancelled:
			return check.Fail("cancelled")
		case res.notFound:
			return check.Warn("crontab not available, cannot inspect schedule")
		case res.timedOut:
			return check.Failf("crontab -l timed out after %s", timeout)
		case res.exitErr != nil:
			return check.Fail("no crontab for current user")
		}

		for _, line := range strings.Split(res.output, "\n") {
			line = strings.TrimSpace(line)
			if strings.HasPrefix(line, "#") {
				continue
			}
			if strings.Contains(line, marker) {
				return check.Pass()
			}
		}
		return check.Failf("no cron entry containing %q", marker)
	}
}

// GPUVisible passes when a GPU management tool reports at least one
// device. Tool may be "rocm-smi", "nvidia-smi", or "auto" to try both.
// A host without any GPU tooling degrades to Warn: GPU acceleration is
// advisory, not required for correctness.
func GPUVisible(tool string, timeout time.Duration) check.Probe {
	return func(ctx context.Context) check.Outcome {
		tools := []string{tool}
		if tool == "" || tool == "auto" {
			tools = []string{"rocm-smi", "nvidia-smi"}
		}

		sawTool := false
		for _, t := range tools {
			res := runCommand(ctx, timeout, t)
			switch {
			case res.fatal != nil:
				return check.Fatal(res.fatal)
			case res.cancelled:
				return check.Fail("cancelled")
			case res.notFound:
				continue
			case res.timedOut:
				return check.Failf("%s timed out after %s", t, timeout)
			}
			sawTool = true
			if res.exitErr == nil {
				return check.Passf("%s reports a device", t)
			}
		}

		if !sawTool {
			return check.Warn("no GPU management tool found")
		}
		return check.Fail("GPU tool present but reports no usable device")
	}
}
