package suite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kt2saint-sec/ragcheck/internal/check"
	"github.com/kt2saint-sec/ragcheck/internal/config"
)

func TestBuildDeclaredOrder(t *testing.T) {
	phases, err := Build(config.NewConfig())
	require.NoError(t, err)
	require.Len(t, phases, len(config.PhaseOrder))
	for i, label := range config.PhaseOrder {
		assert.Equal(t, label, phases[i].Label)
	}
}

func TestBuildCarriesPhaseSettings(t *testing.T) {
	cfg := config.NewConfig()
	phases, err := Build(cfg)
	require.NoError(t, err)

	byLabel := map[string]int{}
	for i, p := range phases {
		byLabel[p.Label] = i
	}

	foundation := phases[byLabel[config.PhaseFoundation]]
	assert.True(t, foundation.Critical)
	assert.True(t, foundation.Confirm)
	assert.Equal(t, 90.0, foundation.Thresholds.Ready)

	hardening := phases[byLabel[config.PhaseHardening]]
	assert.False(t, hardening.Critical)
	assert.Equal(t, 75.0, hardening.Thresholds.Ready)
}

func TestBuildMissingPhaseConfig(t *testing.T) {
	cfg := config.NewConfig()
	delete(cfg.Phases, config.PhaseBackup)

	_, err := Build(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backup")
}

func TestEachPhaseRegistersChecks(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Server.Command = []string{"python3", "server.py"}
	cfg.Server.Env = map[string]string{"RAG_ENV": "production"}

	phases, err := Build(cfg)
	require.NoError(t, err)

	for _, p := range phases {
		r := check.NewRegistry()
		require.NoError(t, p.Build(r), "phase %s", p.Label)
		assert.Greater(t, r.Len(), 0, "phase %s registered no checks", p.Label)
	}
}

func TestIntegrationSkipsUnconfiguredProbes(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Server.Command = nil
	cfg.Server.Pattern = ""
	cfg.Server.Env = nil

	full := config.NewConfig()
	full.Server.Command = []string{"python3", "server.py"}
	full.Server.Env = map[string]string{"RAG_ENV": "production"}

	lean := check.NewRegistry()
	require.NoError(t, buildIntegration(cfg, lean))
	rich := check.NewRegistry()
	require.NoError(t, buildIntegration(full, rich))

	assert.Less(t, lean.Len(), rich.Len())
	// Only the database gate and the health endpoint remain.
	assert.Equal(t, 2, lean.Len())
}

func TestSortedEnvStable(t *testing.T) {
	env := map[string]string{"ZED": "1", "ALPHA": "2", "MID": "3"}
	pairs := sortedEnv(env)
	require.Len(t, pairs, 3)
	assert.Equal(t, "ALPHA", pairs[0].name)
	assert.Equal(t, "MID", pairs[1].name)
	assert.Equal(t, "ZED", pairs[2].name)
}
