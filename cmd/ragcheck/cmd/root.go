// Package cmd provides the CLI commands for ragcheck.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/kt2saint-sec/ragcheck/internal/logging"
	"github.com/kt2saint-sec/ragcheck/pkg/version"
)

var (
	debugMode bool
	noColor   bool
	deployDir string

	loggingCleanup func()
)

// NewRootCmd creates the root command for the ragcheck CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ragcheck",
		Short: "Deployment verification for local RAG stacks",
		Long: `ragcheck probes a deployed RAG stack (vector database, Python
runtime, server, backups, hardening) and scores its readiness.

Checks run in five phases: foundation, integration, optimization,
backup, and hardening. Each phase earns a READY, WARN, or FAIL verdict
against its configured thresholds; the deployment is operational only
when every critical phase is READY.

Run 'ragcheck verify' in your deployment directory to get started.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("ragcheck version {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.ragcheck/logs/")
	cmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	cmd.PersistentFlags().StringVarP(&deployDir, "dir", "C", ".", "Deployment root directory")

	cmd.PersistentPreRunE = startLogging
	cmd.PersistentPostRunE = stopLogging

	cmd.AddCommand(newVerifyCmd())
	cmd.AddCommand(newPhaseCmd())
	cmd.AddCommand(newPhasesCmd())
	cmd.AddCommand(newHistoryCmd())
	cmd.AddCommand(newWatchCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// startLogging sets up debug logging if the flag is set.
func startLogging(_ *cobra.Command, _ []string) error {
	if !debugMode {
		return nil
	}

	cleanup, err := logging.SetupDefault(logging.DebugConfig())
	if err != nil {
		return fmt.Errorf("failed to setup debug logging: %w", err)
	}
	loggingCleanup = cleanup
	slog.Info("Debug logging enabled",
		slog.String("log_file", logging.DefaultLogPath()),
		slog.String("version", version.Version))
	return nil
}

// stopLogging closes the debug log file.
func stopLogging(_ *cobra.Command, _ []string) error {
	if loggingCleanup != nil {
		loggingCleanup()
		loggingCleanup = nil
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
