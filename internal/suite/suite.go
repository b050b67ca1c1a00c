// Package suite assembles the deployment verification phases from
// configuration. Each phase's Build function registers the concrete
// probes for one deployment milestone; the phase runner executes them.
package suite

import (
	"fmt"
	"sort"

	"github.com/kt2saint-sec/ragcheck/internal/check"
	"github.com/kt2saint-sec/ragcheck/internal/config"
	"github.com/kt2saint-sec/ragcheck/internal/phase"
	"github.com/kt2saint-sec/ragcheck/internal/probe"
)

// Minimum free space for the data directory. Embedding models and
// vector indexes grow fast; below this the stack degrades silently.
const minDataDirBytes = 1 << 30 // 1 GiB

// Build constructs the full phase list in declared run order.
func Build(cfg *config.Config) ([]*phase.Phase, error) {
	builders := map[string]func(*config.Config, *check.Registry) error{
		config.PhaseFoundation:   buildFoundation,
		config.PhaseIntegration:  buildIntegration,
		config.PhaseOptimization: buildOptimization,
		config.PhaseBackup:       buildBackup,
		config.PhaseHardening:    buildHardening,
	}

	phases := make([]*phase.Phase, 0, len(config.PhaseOrder))
	for _, label := range config.PhaseOrder {
		pc, ok := cfg.Phases[label]
		if !ok {
			return nil, fmt.Errorf("phase %q missing from configuration", label)
		}
		build := builders[label]
		phases = append(phases, &phase.Phase{
			Label:      label,
			Critical:   pc.Critical,
			Confirm:    pc.Confirm,
			Thresholds: pc.Thresholds,
			Build: func(r *check.Registry) error {
				return build(cfg, r)
			},
		})
	}
	return phases, nil
}

// buildFoundation verifies the vector database and the Python runtime
// it depends on. The container check gates the section: probing a dead
// database's heartbeat only produces noise.
func buildFoundation(cfg *config.Config, r *check.Registry) error {
	timeout := cfg.Timeout.Std()

	r.RegisterGate("vector database", "container running",
		probe.ContainerRunning(cfg.VectorDB.Container, timeout))
	r.Register("vector database", "heartbeat",
		probe.Heartbeat(cfg.VectorDB.HeartbeatURL(), timeout))
	r.Register("vector database", "collection config valid",
		probe.JSONFileValid(cfg.VectorDB.CollectionConfig))

	r.Register("storage", "data directory writable",
		probe.DirWritable(cfg.DataDir))
	r.Register("storage", "disk space",
		probe.DiskSpace(cfg.DataDir, minDataDirBytes))

	r.RegisterGate("python runtime", "interpreter present",
		probe.CommandSucceeds(timeout, cfg.Python.Interpreter, "--version"))
	for _, pkg := range cfg.Python.Packages {
		r.Register("python runtime", fmt.Sprintf("package %s installed", pkg),
			probe.PipPackagePresent(cfg.Python.Interpreter, pkg, timeout))
	}
	return nil
}

// buildIntegration verifies the RAG server end to end: the process
// stays alive past startup, listens where expected, answers its health
// endpoint, and sees the environment it was configured with.
func buildIntegration(cfg *config.Config, r *check.Registry) error {
	timeout := cfg.Timeout.Std()

	// The server is only as healthy as the database behind it.
	r.RegisterGate("prerequisites", "vector database reachable",
		probe.Heartbeat(cfg.VectorDB.HeartbeatURL(), timeout))

	if len(cfg.Server.Command) > 0 {
		r.RegisterGate("server process", "survives startup",
			probe.StaysAlive(cfg.Server.Command, cfg.Server.StartupWait.Std()))
	}
	if cfg.Server.Pattern != "" {
		r.Register("server process", "listening",
			probe.ProcessListening(cfg.Server.Pattern, timeout))
	}
	r.Register("server endpoint", "health endpoint",
		probe.Heartbeat(cfg.Server.HeartbeatURL(), timeout))

	for _, kv := range sortedEnv(cfg.Server.Env) {
		r.Register("server environment", fmt.Sprintf("%s set", kv.name),
			probe.EnvEquals(kv.name, kv.want))
	}
	return nil
}

// buildOptimization verifies GPU acceleration and the embedding cache.
// Everything here is advisory: the stack works on CPU, just slower.
func buildOptimization(cfg *config.Config, r *check.Registry) error {
	timeout := cfg.Timeout.Std()

	r.Register("acceleration", "GPU visible",
		probe.GPUVisible(cfg.GPU.Tool, timeout))
	r.Register("embedding cache", "cache directory writable",
		probe.DirWritable(cfg.GPU.CacheDir))
	r.Register("embedding cache", "cache disk space",
		probe.DiskSpace(cfg.GPU.CacheDir, minDataDirBytes))
	return nil
}

// buildBackup verifies the scheduled backup job: the script itself,
// its cron registration, and that a sufficiently recent archive exists.
func buildBackup(cfg *config.Config, r *check.Registry) error {
	timeout := cfg.Timeout.Std()

	r.RegisterGate("backup job", "script present",
		probe.FileExists(cfg.Backup.Script))
	r.Register("backup job", "script executable",
		probe.FileExecutable(cfg.Backup.Script))
	r.Register("backup job", "cron entry installed",
		probe.CronEntryContains(cfg.Backup.CronMarker, timeout))
	r.Register("backup artifacts", "recent archive",
		probe.FileFresh(cfg.Backup.Glob, cfg.Backup.MaxAge.Std()))
	return nil
}

// buildHardening verifies production-hardening posture: log rotation,
// telemetry settings, the health monitor cron job, and the container
// restart policy.
func buildHardening(cfg *config.Config, r *check.Registry) error {
	timeout := cfg.Timeout.Std()

	r.Register("log management", "logrotate config present",
		probe.FileExists(cfg.Hardening.LogrotateConfig))
	r.Register("telemetry", "telemetry config valid",
		probe.YAMLFileValid(cfg.Hardening.TelemetryConfig))
	r.Register("telemetry", "anonymized telemetry disabled",
		probe.ContainerEnvEquals(cfg.VectorDB.Container, "ANONYMIZED_TELEMETRY", "False", timeout))
	r.Register("monitoring", "health monitor scheduled",
		probe.CronEntryContains(cfg.Hardening.MonitorMarker, timeout))
	r.Register("resilience", "container restart policy",
		probe.ContainerRestartPolicy(cfg.VectorDB.Container, cfg.Hardening.RestartPolicy, timeout))
	return nil
}

type envPair struct {
	name string
	want string
}

// sortedEnv returns map entries in a stable order so check output is
// deterministic across runs.
func sortedEnv(env map[string]string) []envPair {
	pairs := make([]envPair, 0, len(env))
	for name, want := range env {
		pairs = append(pairs, envPair{name: name, want: want})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].name < pairs[j].name })
	return pairs
}
