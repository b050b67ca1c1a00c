package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kt2saint-sec/ragcheck/internal/config"
	"github.com/kt2saint-sec/ragcheck/internal/errors"
	"github.com/kt2saint-sec/ragcheck/internal/history"
	"github.com/kt2saint-sec/ragcheck/internal/phase"
	"github.com/kt2saint-sec/ragcheck/internal/runlock"
	"github.com/kt2saint-sec/ragcheck/internal/suite"
	"github.com/kt2saint-sec/ragcheck/internal/ui"
)

func newVerifyCmd() *cobra.Command {
	var (
		jsonOutput bool
		yes        bool
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Run every verification phase and report the overall verdict",
		Long: `Run all five phases in order and score the deployment.

Every phase is always attempted; failures in one phase never skip its
siblings. Phases configured with confirm pause for operator
acknowledgement before continuing.

Exit status:
  0  all critical phases READY (deployment operational)
  1  one or more critical phases not READY
  2  the verification runner itself is broken (cannot spawn processes, etc.)`,
		Example: `  # Full verification with confirmation pauses
  ragcheck verify

  # Unattended run (CI, cron)
  ragcheck verify --yes

  # Machine-readable report
  ragcheck verify --yes --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runVerify(cmd, jsonOutput, yes)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the report as JSON")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation pauses")

	return cmd
}

func runVerify(cmd *cobra.Command, jsonOutput, yes bool) error {
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

	lock := runlock.New(cfg.DataDir)
	if err := lock.Acquire(); err != nil {
		return err
	}
	defer func() { _ = lock.Release() }()

	out := cmd.OutOrStdout()
	runnerOut := out
	if jsonOutput {
		// JSON mode keeps stdout clean for the report.
		runnerOut = io.Discard
	}

	if !phase.NeedsVerify(cfg.DataDir) {
		if age := phase.MarkerAge(cfg.DataDir); age > 0 {
			fmt.Fprintf(runnerOut, "last verified operational %s ago\n", age.Round(time.Minute))
		}
	}

	var confirmer phase.Confirmer = phase.AutoConfirmer{}
	if !yes && !jsonOutput && ui.IsTerminal(out) {
		confirmer = phase.PromptConfirmer{}
	}

	runner := phase.NewRunner(phases,
		phase.WithOutput(runnerOut),
		phase.WithStyles(ui.StylesFor(runnerOut, noColor)),
		phase.WithConfirmer(confirmer),
		phase.WithLogger(slog.Default()),
	)

	report, runErr := runner.Run(ctx)
	saveHistory(ctx, cfg, report)

	if runErr != nil {
		return runErr
	}

	if report.Operational {
		if err := phase.MarkOperational(cfg.DataDir); err != nil {
			slog.Warn("could not write operational marker", "error", err)
		}
	} else if err := phase.ClearMarker(cfg.DataDir); err != nil {
		slog.Warn("could not clear operational marker", "error", err)
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

// saveHistory persists the run best-effort: a broken history database
// must never mask the verification verdict.
func saveHistory(ctx context.Context, cfg *config.Config, report *phase.SuiteReport) {
	if report == nil || cfg.History.Path == "" {
		return
	}
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		slog.Warn("could not open history store",
			"category", errors.GetCategory(err), "error", err)
		return
	}
	defer func() { _ = store.Close() }()

	if _, err := store.SaveRun(ctx, report); err != nil {
		slog.Warn("could not save run history", "error", err)
	}
}

func notOperationalError() error {
	return errors.New(errors.ErrCodeProbeFailed, "deployment is not operational", nil).
		WithSuggestion("review the failing checks above, or re-run one phase with: ragcheck phase <label>")
}
