package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kt2saint-sec/ragcheck/internal/config"
	"github.com/kt2saint-sec/ragcheck/internal/errors"
	"github.com/kt2saint-sec/ragcheck/internal/history"
)

func newHistoryCmd() *cobra.Command {
	var (
		limit      int
		jsonOutput bool
		prune      time.Duration
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past verification runs",
		Long: `List recent verification runs from the local history database,
newest first, with per-phase verdicts.`,
		Example: `  # Last 10 runs
  ragcheck history

  # Last 50 runs as JSON
  ragcheck history --limit 50 --json

  # Drop runs older than 30 days
  ragcheck history --prune 720h`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistory(cmd, limit, jsonOutput, prune)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum number of runs to show")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().DurationVar(&prune, "prune", 0, "Delete runs older than this before listing")

	return cmd
}

func runHistory(cmd *cobra.Command, limit int, jsonOutput bool, prune time.Duration) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(deployDir)
	if err != nil {
		return err
	}
	cfg.ResolvePaths(deployDir)

	if cfg.History.Path == "" {
		return errors.New(errors.ErrCodeHistoryStore, "history is disabled", nil).
			WithSuggestion("set history.path in .ragcheck.yaml")
	}

	store, err := history.Open(cfg.History.Path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if prune > 0 {
		n, err := store.Prune(ctx, time.Now().Add(-prune))
		if err != nil {
			return err
		}
		if n > 0 && !jsonOutput {
			fmt.Fprintf(cmd.OutOrStdout(), "pruned %d run(s)\n", n)
		}
	}

	runs, err := store.RecentRuns(ctx, limit)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no verification runs recorded")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tDURATION\tVERDICT\tPHASES")
	for _, run := range runs {
		verdict := "NOT OPERATIONAL"
		if run.Operational {
			verdict = "OPERATIONAL"
		}
		if run.Aborted {
			verdict += " (aborted)"
		}

		summary := ""
		for i, p := range run.Phases {
			if i > 0 {
				summary += " "
			}
			summary += fmt.Sprintf("%s:%s", p.Label, p.Verdict)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			run.StartedAt.Local().Format("2006-01-02 15:04"),
			run.Duration.Round(time.Millisecond), verdict, summary)
	}
	return w.Flush()
}
