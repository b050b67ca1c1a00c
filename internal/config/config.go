// Package config loads and validates the ragcheck suite configuration.
//
// Configuration precedence, lowest to highest:
//  1. Hardcoded defaults (NewConfig)
//  2. Project config (.ragcheck.yaml in the working directory)
//  3. Environment variables (RAGCHECK_*)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kt2saint-sec/ragcheck/internal/errors"
	"github.com/kt2saint-sec/ragcheck/internal/score"
)

// Duration wraps time.Duration with YAML support for strings like "10s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the complete ragcheck configuration.
type Config struct {
	Version   int               `yaml:"version"`
	DataDir   string            `yaml:"data_dir"`
	Timeout   Duration          `yaml:"timeout"`
	LogLevel  string            `yaml:"log_level"`
	VectorDB  VectorDBConfig    `yaml:"vector_db"`
	Server    ServerConfig      `yaml:"server"`
	Python    PythonConfig      `yaml:"python"`
	GPU       GPUConfig         `yaml:"gpu"`
	Backup    BackupConfig      `yaml:"backup"`
	Hardening HardeningConfig   `yaml:"hardening"`
	Phases    map[string]*Phase `yaml:"phases"`
	History   HistoryConfig     `yaml:"history"`
}

// VectorDBConfig describes the vector database under test.
type VectorDBConfig struct {
	Host             string `yaml:"host"`
	Port             int    `yaml:"port"`
	HeartbeatPath    string `yaml:"heartbeat_path"`
	Container        string `yaml:"container"`
	CollectionConfig string `yaml:"collection_config"`
}

// HeartbeatURL returns the full heartbeat endpoint URL.
func (v VectorDBConfig) HeartbeatURL() string {
	return fmt.Sprintf("http://%s:%d%s", v.Host, v.Port, v.HeartbeatPath)
}

// ServerConfig describes the integration server under test.
type ServerConfig struct {
	Host          string            `yaml:"host"`
	Port          int               `yaml:"port"`
	HeartbeatPath string            `yaml:"heartbeat_path"`
	Command       []string          `yaml:"command"`
	StartupWait   Duration          `yaml:"startup_wait"`
	Pattern       string            `yaml:"pattern"`
	Env           map[string]string `yaml:"env"`
}

// HeartbeatURL returns the full heartbeat endpoint URL.
func (s ServerConfig) HeartbeatURL() string {
	return fmt.Sprintf("http://%s:%d%s", s.Host, s.Port, s.HeartbeatPath)
}

// PythonConfig describes the Python runtime the stack depends on.
type PythonConfig struct {
	Interpreter string   `yaml:"interpreter"`
	Packages    []string `yaml:"packages"`
}

// GPUConfig describes GPU acceleration expectations.
type GPUConfig struct {
	// Tool is the GPU management tool: rocm-smi, nvidia-smi, or auto.
	Tool     string `yaml:"tool"`
	CacheDir string `yaml:"cache_dir"`
}

// BackupConfig describes the scheduled backup job.
type BackupConfig struct {
	Script     string   `yaml:"script"`
	CronMarker string   `yaml:"cron_marker"`
	Glob       string   `yaml:"glob"`
	MaxAge     Duration `yaml:"max_age"`
}

// HardeningConfig describes production-hardening expectations.
type HardeningConfig struct {
	LogrotateConfig string `yaml:"logrotate_config"`
	TelemetryConfig string `yaml:"telemetry_config"`
	MonitorMarker   string `yaml:"monitor_marker"`
	RestartPolicy   string `yaml:"restart_policy"`
}

// Phase holds the per-phase scoring and orchestration settings.
type Phase struct {
	Thresholds score.Thresholds `yaml:",inline"`
	Critical   bool             `yaml:"critical"`
	Confirm    bool             `yaml:"confirm"`
}

// HistoryConfig configures the run-history store.
type HistoryConfig struct {
	Path string `yaml:"path"`
}

// Phase labels in declared run order.
const (
	PhaseFoundation   = "foundation"
	PhaseIntegration  = "integration"
	PhaseOptimization = "optimization"
	PhaseBackup       = "backup"
	PhaseHardening    = "hardening"
)

// PhaseOrder is the declared execution order of the suite.
var PhaseOrder = []string{
	PhaseFoundation,
	PhaseIntegration,
	PhaseOptimization,
	PhaseBackup,
	PhaseHardening,
}

// ConfigFileName is the project configuration file name.
const ConfigFileName = ".ragcheck.yaml"

// NewConfig returns a Config populated with defaults.
func NewConfig() *Config {
	return &Config{
		Version:  1,
		DataDir:  "./data",
		Timeout:  Duration(10 * time.Second),
		LogLevel: "info",
		VectorDB: VectorDBConfig{
			Host:             "localhost",
			Port:             8001,
			HeartbeatPath:    "/api/v1/heartbeat",
			Container:        "chromadb",
			CollectionConfig: "./config/collections.json",
		},
		Server: ServerConfig{
			Host:          "localhost",
			Port:          8080,
			HeartbeatPath: "/health",
			StartupWait:   Duration(5 * time.Second),
			Pattern:       "rag_server",
			Env:           map[string]string{},
		},
		Python: PythonConfig{
			Interpreter: "python3",
			Packages:    []string{"chromadb", "sentence-transformers"},
		},
		GPU: GPUConfig{
			Tool:     "auto",
			CacheDir: "./cache",
		},
		Backup: BackupConfig{
			Script:     "./scripts/backup.sh",
			CronMarker: "backup.sh",
			Glob:       "./backups/*.tar.gz",
			MaxAge:     Duration(48 * time.Hour),
		},
		Hardening: HardeningConfig{
			LogrotateConfig: "./config/logrotate.conf",
			TelemetryConfig: "./config/telemetry.yaml",
			MonitorMarker:   "health_check",
			RestartPolicy:   "unless-stopped",
		},
		Phases: map[string]*Phase{
			PhaseFoundation:   {Thresholds: score.Thresholds{Ready: 90, Warn: 70}, Critical: true, Confirm: true},
			PhaseIntegration:  {Thresholds: score.Thresholds{Ready: 85, Warn: 65}, Critical: true},
			PhaseOptimization: {Thresholds: score.Thresholds{Ready: 80, Warn: 60}},
			PhaseBackup:       {Thresholds: score.Thresholds{Ready: 80, Warn: 60}},
			PhaseHardening:    {Thresholds: score.Thresholds{Ready: 75, Warn: 55}},
		},
		History: HistoryConfig{
			Path: defaultHistoryPath(),
		},
	}
}

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".ragcheck", "history.db")
	}
	return filepath.Join(home, ".ragcheck", "history.db")
}

// Load builds the effective configuration for the given directory:
// defaults, overlaid by .ragcheck.yaml if present, overlaid by
// RAGCHECK_* environment variables, then validated.
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile overlays values from .ragcheck.yaml or .ragcheck.yml.
// A missing file is fine; defaults apply.
func (c *Config) loadFromFile(dir string) error {
	for _, name := range []string{ConfigFileName, ".ragcheck.yml"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return errors.Wrap(errors.ErrCodeConfigNotFound, err)
		}

		// yaml replaces map entries wholesale, so a file tuning one
		// phase field would wipe that phase's other defaults. Snapshot
		// the defaults and re-apply phase settings as patches.
		defaults := make(map[string]*Phase, len(c.Phases))
		for label, p := range c.Phases {
			cp := *p
			defaults[label] = &cp
		}

		if err := yaml.Unmarshal(data, c); err != nil {
			return errors.ConfigError(fmt.Sprintf("failed to parse %s", path), err).
				WithSuggestion("run: ragcheck config validate")
		}

		var overlay struct {
			Phases map[string]*phasePatch `yaml:"phases"`
		}
		if err := yaml.Unmarshal(data, &overlay); err != nil {
			return errors.ConfigError(fmt.Sprintf("failed to parse %s", path), err).
				WithSuggestion("run: ragcheck config validate")
		}
		c.Phases = mergePhases(defaults, overlay.Phases)
		return nil
	}
	return nil
}

// phasePatch distinguishes "field absent" from zero values so partial
// phase entries only override what they name.
type phasePatch struct {
	Ready    *float64 `yaml:"ready"`
	Warn     *float64 `yaml:"warn"`
	Critical *bool    `yaml:"critical"`
	Confirm  *bool    `yaml:"confirm"`
}

// mergePhases applies per-field patches onto the default phases.
// Unpatched phases and unpatched fields keep their defaults.
func mergePhases(defaults map[string]*Phase, patches map[string]*phasePatch) map[string]*Phase {
	merged := defaults
	for label, patch := range patches {
		base, ok := merged[label]
		if !ok {
			base = &Phase{}
			merged[label] = base
		}
		if patch == nil {
			continue
		}
		if patch.Ready != nil {
			base.Thresholds.Ready = *patch.Ready
		}
		if patch.Warn != nil {
			base.Thresholds.Warn = *patch.Warn
		}
		if patch.Critical != nil {
			base.Critical = *patch.Critical
		}
		if patch.Confirm != nil {
			base.Confirm = *patch.Confirm
		}
	}
	return merged
}

// applyEnvOverrides applies RAGCHECK_* environment variables.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("RAGCHECK_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("RAGCHECK_VECTOR_HOST"); v != "" {
		c.VectorDB.Host = v
	}
	if v := os.Getenv("RAGCHECK_VECTOR_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.VectorDB.Port = port
		}
	}
	if v := os.Getenv("RAGCHECK_SERVER_HOST"); v != "" {
		c.Server.Host = v
	}
	if v := os.Getenv("RAGCHECK_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("RAGCHECK_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Timeout = Duration(d)
		}
	}
	if v := os.Getenv("RAGCHECK_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.VectorDB.Port <= 0 || c.VectorDB.Port > 65535 {
		return errors.ConfigError(fmt.Sprintf("vector_db.port %d out of range", c.VectorDB.Port), nil)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.ConfigError(fmt.Sprintf("server.port %d out of range", c.Server.Port), nil)
	}
	if c.Timeout.Std() <= 0 {
		return errors.ConfigError("timeout must be positive", nil)
	}

	for _, label := range PhaseOrder {
		p, ok := c.Phases[label]
		if !ok {
			return errors.ConfigError(fmt.Sprintf("phase %q missing from configuration", label), nil)
		}
		if p.Thresholds.Ready < 0 || p.Thresholds.Ready > 100 ||
			p.Thresholds.Warn < 0 || p.Thresholds.Warn > 100 {
			return errors.ConfigError(fmt.Sprintf("phase %q thresholds must be percentages", label), nil)
		}
		if p.Thresholds.Ready < p.Thresholds.Warn {
			return errors.ConfigError(fmt.Sprintf("phase %q ready threshold below warn threshold", label), nil).
				WithSuggestion("ready must be >= warn")
		}
	}
	return nil
}

// ResolvePaths anchors relative file paths to the deployment root so
// probes behave the same regardless of the process working directory.
func (c *Config) ResolvePaths(root string) {
	c.DataDir = resolvePath(root, c.DataDir)
	c.VectorDB.CollectionConfig = resolvePath(root, c.VectorDB.CollectionConfig)
	c.GPU.CacheDir = resolvePath(root, c.GPU.CacheDir)
	c.Backup.Script = resolvePath(root, c.Backup.Script)
	c.Backup.Glob = resolvePath(root, c.Backup.Glob)
	c.Hardening.LogrotateConfig = resolvePath(root, c.Hardening.LogrotateConfig)
	c.Hardening.TelemetryConfig = resolvePath(root, c.Hardening.TelemetryConfig)
	c.History.Path = resolvePath(root, c.History.Path)
}

func resolvePath(root, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

// Save writes the configuration to .ragcheck.yaml in dir.
func (c *Config) Save(dir string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err)
	}
	path := filepath.Join(dir, ConfigFileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeFilePermission, err)
	}
	return nil
}
