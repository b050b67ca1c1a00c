package cmd

import (
	"path/filepath"
	"testing"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"

	"github.com/kt2saint-sec/ragcheck/internal/config"
)

func TestRelevantEvent_MatchesProbedFiles(t *testing.T) {
	cfg := config.NewConfig()
	cfg.VectorDB.CollectionConfig = "/srv/rag/config/collections.json"

	ev := fsnotify.Event{Name: "/srv/rag/config/collections.json", Op: fsnotify.Write}
	assert.True(t, relevantEvent(cfg, ev))

	ev = fsnotify.Event{Name: "/srv/rag/config/unrelated.txt", Op: fsnotify.Write}
	assert.False(t, relevantEvent(cfg, ev))

	// chmod alone never triggers a re-verify.
	ev = fsnotify.Event{Name: "/srv/rag/config/collections.json", Op: fsnotify.Chmod}
	assert.False(t, relevantEvent(cfg, ev))
}

func TestRelevantEvent_FollowsReloadedConfig(t *testing.T) {
	old := config.NewConfig()
	old.VectorDB.CollectionConfig = "/srv/rag/old/collections.json"
	holder := &configHolder{cfg: old}

	moved := fsnotify.Event{Name: "/srv/rag/new/collections.json", Op: fsnotify.Write}
	assert.False(t, relevantEvent(holder.get(), moved))

	// A reload that points the probe at a new file must retarget the
	// filter, or edits there are never noticed.
	fresh := config.NewConfig()
	fresh.VectorDB.CollectionConfig = "/srv/rag/new/collections.json"
	holder.set(fresh)

	assert.True(t, relevantEvent(holder.get(), moved))
	assert.False(t, relevantEvent(holder.get(),
		fsnotify.Event{Name: "/srv/rag/old/collections.json", Op: fsnotify.Write}))
}

func TestWatchDirs_DerivedFromConfig(t *testing.T) {
	cfg := config.NewConfig()
	cfg.VectorDB.CollectionConfig = "/srv/rag/config/collections.json"
	cfg.Backup.Script = "/srv/rag/scripts/backup.sh"

	dirs := watchDirs(cfg)
	assert.Contains(t, dirs, "/srv/rag/config")
	assert.Contains(t, dirs, "/srv/rag/scripts")
	assert.Contains(t, dirs, deployDir)
}

func TestAddWatchDirs_Reentrant(t *testing.T) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		t.Skipf("fsnotify unavailable: %v", err)
	}
	defer watcher.Close()

	dir := t.TempDir()
	cfg := config.NewConfig()
	cfg.ResolvePaths(dir)
	cfg.VectorDB.CollectionConfig = filepath.Join(dir, "collections.json")
	cfg.Hardening.TelemetryConfig = filepath.Join(dir, "telemetry.yaml")
	cfg.Backup.Script = filepath.Join(dir, "backup.sh")

	// Called after every reload; repeating must not fail or leak.
	addWatchDirs(watcher, cfg)
	addWatchDirs(watcher, cfg)
}
