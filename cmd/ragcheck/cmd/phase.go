package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kt2saint-sec/ragcheck/internal/config"
	"github.com/kt2saint-sec/ragcheck/internal/phase"
	"github.com/kt2saint-sec/ragcheck/internal/suite"
	"github.com/kt2saint-sec/ragcheck/internal/ui"
)

func newPhaseCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "phase <label>",
		Short: "Run a single verification phase",
		Long: `Run one phase by label without touching the others.

Useful when iterating on a fix: re-run just the phase that failed
instead of the whole suite. The operational marker is not updated by
single-phase runs.`,
		Example: `  ragcheck phase foundation
  ragcheck phase backup --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSinglePhase(cmd, args[0], jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the report as JSON")

	return cmd
}

func runSinglePhase(cmd *cobra.Command, label string, jsonOutput bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(deployDir)
	if err != nil {
		return err
	}
	cfg.ResolvePaths(deployDir)

	phases, err := suite.Build(cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	runnerOut := out
	if jsonOutput {
		runnerOut = io.Discard
	}

	runner := phase.NewRunner(phases,
		phase.WithOutput(runnerOut),
		phase.WithStyles(ui.StylesFor(runnerOut, noColor)),
		phase.WithLogger(slog.Default()),
	)

	report, runErr := runner.RunPhase(ctx, strings.ToLower(label))
	if runErr != nil {
		return runErr
	}

	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	}

	if !report.Operational {
		return notOperationalError()
	}
	return nil
}

func newPhasesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "phases",
		Short: "List the verification phases in run order",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(deployDir)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PHASE\tCRITICAL\tCONFIRM\tREADY\tWARN")
			for _, label := range config.PhaseOrder {
				p := cfg.Phases[label]
				fmt.Fprintf(w, "%s\t%s\t%s\t%.0f%%\t%.0f%%\n",
					label, yesNo(p.Critical), yesNo(p.Confirm),
					p.Thresholds.Ready, p.Thresholds.Warn)
			}
			return w.Flush()
		},
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
