package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kt2saint-sec/ragcheck/internal/config"
	"github.com/kt2saint-sec/ragcheck/internal/phase"
	"github.com/kt2saint-sec/ragcheck/internal/suite"
	"github.com/kt2saint-sec/ragcheck/internal/ui"
)

func newWatchCmd() *cobra.Command {
	var (
		debounce time.Duration
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-run critical phases when deployment files change",
		Long: `Watch the deployment configuration and re-verify the critical
phases whenever it changes, and periodically on an interval.

Only critical phases run in watch mode; confirmation pauses are
skipped. Intended for long-lived terminals during deployment work, not
as a monitoring daemon.`,
		Example: `  ragcheck watch
  ragcheck watch --debounce 2s --interval 10m`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd, debounce, interval)
		},
	}

	cmd.Flags().DurationVar(&debounce, "debounce", 2*time.Second, "Quiet period after a change before re-verifying")
	cmd.Flags().DurationVar(&interval, "interval", 15*time.Minute, "Periodic re-verify interval (0 disables)")

	return cmd
}

// configHolder shares the most recently loaded config between the
// event-filtering goroutine and the verify loop that reloads it.
type configHolder struct {
	mu  sync.Mutex
	cfg *config.Config
}

func (h *configHolder) get() *config.Config {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cfg
}

func (h *configHolder) set(cfg *config.Config) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cfg = cfg
}

func runWatch(cmd *cobra.Command, debounce, interval time.Duration) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(deployDir)
	if err != nil {
		return err
	}
	cfg.ResolvePaths(deployDir)
	holder := &configHolder{cfg: cfg}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	addWatchDirs(watcher, cfg)

	out := cmd.OutOrStdout()
	trigger := make(chan string, 1)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case ev, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if !relevantEvent(holder.get(), ev) {
					continue
				}
				select {
				case trigger <- ev.Name:
				default:
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				slog.Warn("watcher error", "error", err)
			}
		}
	})

	g.Go(func() error {
		var tick <-chan time.Time
		if interval > 0 {
			t := time.NewTicker(interval)
			defer t.Stop()
			tick = t.C
		}

		// Initial verification before settling into the loop.
		if err := watchVerify(ctx, cmd, holder, watcher); err != nil {
			return err
		}

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-tick:
				if err := watchVerify(ctx, cmd, holder, watcher); err != nil {
					return err
				}
			case path := <-trigger:
				// Debounce: wait for the change burst to settle,
				// swallowing triggers that arrive meanwhile.
				timer := time.NewTimer(debounce)
			settle:
				for {
					select {
					case <-ctx.Done():
						timer.Stop()
						return nil
					case <-trigger:
						if !timer.Stop() {
							<-timer.C
						}
						timer.Reset(debounce)
					case <-timer.C:
						break settle
					}
				}
				fmt.Fprintf(out, "\nchange detected: %s\n", path)
				if err := watchVerify(ctx, cmd, holder, watcher); err != nil {
					return err
				}
			}
		}
	})

	return g.Wait()
}

// watchVerify reloads the config, rebinds the watch set and filter to
// it, and runs the critical phases once. Non-operational results are
// reported but keep the watch alive; only a broken runner environment
// ends it.
func watchVerify(ctx context.Context, cmd *cobra.Command, holder *configHolder, watcher *fsnotify.Watcher) error {
	cfg, err := config.Load(deployDir)
	if err != nil {
		slog.Warn("configuration invalid, skipping verification", "error", err)
		return nil
	}
	cfg.ResolvePaths(deployDir)

	// The reloaded config may point probes at new files; the event
	// filter and watch set must follow it or edits there go unseen.
	holder.set(cfg)
	addWatchDirs(watcher, cfg)

	all, err := suite.Build(cfg)
	if err != nil {
		slog.Warn("cannot build phases", "error", err)
		return nil
	}
	var critical []*phase.Phase
	for _, p := range all {
		if p.Critical {
			p.Confirm = false
			critical = append(critical, p)
		}
	}

	out := cmd.OutOrStdout()
	runner := phase.NewRunner(critical,
		phase.WithOutput(out),
		phase.WithStyles(ui.StylesFor(out, noColor)),
		phase.WithLogger(slog.Default()),
	)

	_, runErr := runner.Run(ctx)
	return runErr
}

// addWatchDirs watches the directories holding the config's probed
// files. Directories, not files: editors replace files on save and a
// file watch dies with the old inode. Re-adding a watched directory is
// a no-op, so this is safe to call after every reload.
func addWatchDirs(watcher *fsnotify.Watcher, cfg *config.Config) {
	for _, dir := range watchDirs(cfg) {
		if err := watcher.Add(dir); err != nil {
			slog.Warn("cannot watch directory", "dir", dir, "error", err)
		}
	}
}

func watchDirs(cfg *config.Config) []string {
	dirs := map[string]struct{}{
		deployDir: {},
	}
	for _, p := range []string{cfg.VectorDB.CollectionConfig, cfg.Hardening.TelemetryConfig, cfg.Backup.Script} {
		if p != "" {
			dirs[filepath.Dir(p)] = struct{}{}
		}
	}

	out := make([]string, 0, len(dirs))
	for d := range dirs {
		out = append(out, d)
	}
	return out
}

// relevantEvent filters the change stream down to the files that can
// alter a verification outcome.
func relevantEvent(cfg *config.Config, ev fsnotify.Event) bool {
	if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}

	switch ev.Name {
	case filepath.Join(deployDir, config.ConfigFileName),
		cfg.VectorDB.CollectionConfig,
		cfg.Hardening.TelemetryConfig,
		cfg.Backup.Script:
		return true
	}
	return false
}
