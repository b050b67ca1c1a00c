package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, 1, cfg.Version)
	assert.Equal(t, 10*time.Second, cfg.Timeout.Std())
	assert.Equal(t, "localhost", cfg.VectorDB.Host)
	assert.Equal(t, 8001, cfg.VectorDB.Port)
	assert.Equal(t, "chromadb", cfg.VectorDB.Container)
	assert.Equal(t, "python3", cfg.Python.Interpreter)

	require.Contains(t, cfg.Phases, PhaseFoundation)
	assert.Equal(t, 90.0, cfg.Phases[PhaseFoundation].Thresholds.Ready)
	assert.Equal(t, 70.0, cfg.Phases[PhaseFoundation].Thresholds.Warn)
	assert.True(t, cfg.Phases[PhaseFoundation].Critical)
	assert.True(t, cfg.Phases[PhaseFoundation].Confirm)

	require.Contains(t, cfg.Phases, PhaseIntegration)
	assert.Equal(t, 85.0, cfg.Phases[PhaseIntegration].Thresholds.Ready)
	assert.True(t, cfg.Phases[PhaseIntegration].Critical)

	assert.False(t, cfg.Phases[PhaseOptimization].Critical)
	assert.False(t, cfg.Phases[PhaseBackup].Critical)
	assert.False(t, cfg.Phases[PhaseHardening].Critical)
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 8001, cfg.VectorDB.Port)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	content := `
data_dir: /srv/rag/data
timeout: 3s
vector_db:
  host: vectors.internal
  port: 9001
server:
  port: 9090
  command: ["python3", "server.py"]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "/srv/rag/data", cfg.DataDir)
	assert.Equal(t, 3*time.Second, cfg.Timeout.Std())
	assert.Equal(t, "vectors.internal", cfg.VectorDB.Host)
	assert.Equal(t, 9001, cfg.VectorDB.Port)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"python3", "server.py"}, cfg.Server.Command)
	// Untouched sections keep defaults.
	assert.Equal(t, "python3", cfg.Python.Interpreter)
}

func TestLoad_InvalidYAMLFails(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("vector_db: ["), 0o644))

	_, err := Load(dir)
	require.Error(t, err)
}

func TestLoad_EnvOverridesWin(t *testing.T) {
	dir := t.TempDir()
	content := "vector_db:\n  host: from-file\n  port: 9001\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0o644))

	t.Setenv("RAGCHECK_VECTOR_HOST", "from-env")
	t.Setenv("RAGCHECK_VECTOR_PORT", "9002")
	t.Setenv("RAGCHECK_TIMEOUT", "30s")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.VectorDB.Host)
	assert.Equal(t, 9002, cfg.VectorDB.Port)
	assert.Equal(t, 30*time.Second, cfg.Timeout.Std())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid defaults", func(*Config) {}, ""},
		{"bad vector port", func(c *Config) { c.VectorDB.Port = 0 }, "out of range"},
		{"bad server port", func(c *Config) { c.Server.Port = 70000 }, "out of range"},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, "timeout"},
		{"missing phase", func(c *Config) { delete(c.Phases, PhaseBackup) }, "missing"},
		{"threshold above 100", func(c *Config) { c.Phases[PhaseFoundation].Thresholds.Ready = 150 }, "percentages"},
		{"ready below warn", func(c *Config) {
			c.Phases[PhaseFoundation].Thresholds.Ready = 50
			c.Phases[PhaseFoundation].Thresholds.Warn = 70
		}, "below warn"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSaveAndReload(t *testing.T) {
	dir := t.TempDir()
	cfg := NewConfig()
	cfg.VectorDB.Port = 9100

	require.NoError(t, cfg.Save(dir))

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 9100, loaded.VectorDB.Port)
	assert.Equal(t, cfg.Timeout.Std(), loaded.Timeout.Std())
}

func TestHeartbeatURLs(t *testing.T) {
	cfg := NewConfig()
	assert.Equal(t, "http://localhost:8001/api/v1/heartbeat", cfg.VectorDB.HeartbeatURL())
	assert.Equal(t, "http://localhost:8080/health", cfg.Server.HeartbeatURL())
}

func TestDuration_YAMLRoundTrip(t *testing.T) {
	d := Duration(90 * time.Second)
	out, err := d.MarshalYAML()
	require.NoError(t, err)
	assert.Equal(t, "1m30s", out)
}

func TestResolvePaths(t *testing.T) {
	cfg := NewConfig()
	cfg.History.Path = "/var/lib/ragcheck/history.db"
	cfg.ResolvePaths("/srv/rag")

	assert.Equal(t, "/srv/rag/data", cfg.DataDir)
	assert.Equal(t, "/srv/rag/config/collections.json", cfg.VectorDB.CollectionConfig)
	assert.Equal(t, "/srv/rag/scripts/backup.sh", cfg.Backup.Script)
	assert.Equal(t, "/srv/rag/backups/*.tar.gz", cfg.Backup.Glob)

	// Absolute paths are left alone.
	assert.Equal(t, "/var/lib/ragcheck/history.db", cfg.History.Path)
}

func TestLoad_PartialPhaseOverrideKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	partial := "phases:\n  foundation:\n    ready: 95\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(partial), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	// Only the named field changes; the phase's other settings survive.
	foundation := cfg.Phases[PhaseFoundation]
	assert.Equal(t, 95.0, foundation.Thresholds.Ready)
	assert.Equal(t, 70.0, foundation.Thresholds.Warn)
	assert.True(t, foundation.Critical)
	assert.True(t, foundation.Confirm)

	// Phases the file never mentions keep their defaults too.
	integration := cfg.Phases[PhaseIntegration]
	assert.True(t, integration.Critical)
	assert.Equal(t, 85.0, integration.Thresholds.Ready)
}

func TestLoad_PhaseOverrideAllFields(t *testing.T) {
	dir := t.TempDir()
	full := "phases:\n  hardening:\n    ready: 99\n    warn: 80\n    critical: true\n    confirm: true\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(full), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	hardening := cfg.Phases[PhaseHardening]
	assert.Equal(t, 99.0, hardening.Thresholds.Ready)
	assert.Equal(t, 80.0, hardening.Thresholds.Warn)
	assert.True(t, hardening.Critical)
	assert.True(t, hardening.Confirm)
}

func TestLoad_CriticalFalseOverrideIsHonored(t *testing.T) {
	dir := t.TempDir()
	partial := "phases:\n  integration:\n    critical: false\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(partial), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	// An explicit false is an override, not an absent field.
	integration := cfg.Phases[PhaseIntegration]
	assert.False(t, integration.Critical)
	assert.Equal(t, 85.0, integration.Thresholds.Ready)
}
