package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kt2saint-sec/ragcheck/internal/config"
)

func TestConfigInit_CreatesFile(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, "-C", dir, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, config.ConfigFileName)

	data, err := os.ReadFile(filepath.Join(dir, config.ConfigFileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "vector_db:")
	assert.Contains(t, string(data), "phases:")
}

func TestConfigInit_RefusesOverwrite(t *testing.T) {
	dir := t.TempDir()

	_, err := execute(t, "-C", dir, "config", "init")
	require.NoError(t, err)

	_, err = execute(t, "-C", dir, "config", "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = execute(t, "-C", dir, "config", "init", "--force")
	assert.NoError(t, err)
}

func TestConfigInit_TemplateIsLoadable(t *testing.T) {
	dir := t.TempDir()

	_, err := execute(t, "-C", dir, "config", "init")
	require.NoError(t, err)

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "chromadb", cfg.VectorDB.Container)
	assert.True(t, cfg.Phases[config.PhaseFoundation].Critical)
}

func TestConfigShow_Defaults(t *testing.T) {
	out, err := execute(t, "-C", t.TempDir(), "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "vector_db:")
	assert.Contains(t, out, "foundation:")
}

func TestConfigValidate(t *testing.T) {
	out, err := execute(t, "-C", t.TempDir(), "config", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "configuration OK")
}

func TestConfigValidate_BadConfig(t *testing.T) {
	dir := t.TempDir()
	bad := "version: 1\nvector_db:\n  port: 99999\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.ConfigFileName), []byte(bad), 0o644))

	_, err := execute(t, "-C", dir, "config", "validate")
	assert.Error(t, err)
}

func TestConfigPath(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, "-C", dir, "config", "path")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(dir, config.ConfigFileName))
}
