package phase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/kt2saint-sec/ragcheck/internal/check"
	"github.com/kt2saint-sec/ragcheck/internal/errors"
	"github.com/kt2saint-sec/ragcheck/internal/score"
	"github.com/kt2saint-sec/ragcheck/internal/ui"
)

// Confirmer resumes a paused run. Implementations block until the
// operator answers; there is deliberately no timeout on the pause.
type Confirmer interface {
	Confirm(prompt string) (bool, error)
}

// Runner executes phases in declared order.
type Runner struct {
	phases    []*Phase
	confirmer Confirmer
	output    io.Writer
	styles    ui.Styles
	logger    *slog.Logger

	state State
}

// Option configures a Runner.
type Option func(*Runner)

// WithConfirmer sets the operator confirmation mechanism.
func WithConfirmer(c Confirmer) Option {
	return func(r *Runner) {
		r.confirmer = c
	}
}

// WithOutput sets the writer for phase banners and summaries.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) {
		r.output = w
	}
}

// WithStyles sets the terminal styles.
func WithStyles(s ui.Styles) Option {
	return func(r *Runner) {
		r.styles = s
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = l
	}
}

// NewRunner creates a runner over the given phases.
func NewRunner(phases []*Phase, opts ...Option) *Runner {
	r := &Runner{
		phases:    phases,
		confirmer: AutoConfirmer{},
		output:    os.Stdout,
		styles:    ui.NoColorStyles(),
		logger:    slog.Default(),
		state:     StateNotStarted,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// State returns the runner's current lifecycle state.
func (r *Runner) State() State {
	return r.state
}

// Run attempts every phase in order and combines their verdicts.
// Failures inside a phase never abort siblings; the summary is always
// printed for maximal diagnostic output. The returned error is non-nil
// only for a broken runner environment.
func (r *Runner) Run(ctx context.Context) (*SuiteReport, error) {
	report := &SuiteReport{StartedAt: time.Now()}
	defer func() {
		report.Duration = time.Since(report.StartedAt)
		report.Operational = computeOperational(r.phases, report.Phases)
		r.state = StateCompleted
		r.printSummary(report)
	}()

	for i, p := range r.phases {
		r.state = StateRunning

		res, err := r.runPhase(ctx, p)
		if err != nil {
			// Environment failure: the run itself cannot continue.
			report.Phases = append(report.Phases, res)
			return report, err
		}
		report.Phases = append(report.Phases, res)

		if p.Confirm && i < len(r.phases)-1 {
			r.state = StatePaused
			ok, err := r.confirmer.Confirm(fmt.Sprintf("Phase %q complete (%s). Continue?",
				p.Label, res.Report.Verdict))
			if err != nil {
				return report, errors.New(errors.ErrCodeConfirmFailed, "confirmation prompt failed", err)
			}
			if !ok {
				r.logger.Info("run aborted by operator", "after_phase", p.Label)
				report.Aborted = true
				return report, nil
			}
		}
	}

	return report, nil
}

// RunPhase executes a single phase by label.
func (r *Runner) RunPhase(ctx context.Context, label string) (*SuiteReport, error) {
	for _, p := range r.phases {
		if p.Label != label {
			continue
		}
		report := &SuiteReport{StartedAt: time.Now()}
		r.state = StateRunning
		res, err := r.runPhase(ctx, p)
		report.Phases = append(report.Phases, res)
		report.Duration = time.Since(report.StartedAt)
		report.Operational = computeOperational([]*Phase{p}, report.Phases)
		r.state = StateCompleted
		r.printSummary(report)
		return report, err
	}
	return nil, errors.New(errors.ErrCodeUnknownPhase, fmt.Sprintf("unknown phase %q", label), nil).
		WithSuggestion("run: ragcheck phases")
}

// Labels returns the declared phase labels in run order.
func (r *Runner) Labels() []string {
	labels := make([]string, len(r.phases))
	for i, p := range r.phases {
		labels[i] = p.Label
	}
	return labels
}

func (r *Runner) runPhase(ctx context.Context, p *Phase) (Result, error) {
	started := time.Now()
	res := Result{Label: p.Label, Critical: p.Critical}

	fmt.Fprintf(r.output, "\n%s\n", r.styles.Banner.Render(fmt.Sprintf("=== Phase: %s ===", p.Label)))

	reg := check.NewRegistry(
		check.WithOutput(r.output),
		check.WithStyles(r.styles),
		check.WithLogger(r.logger),
	)
	if err := p.Build(reg); err != nil {
		// The registry cannot execute at all: hard failure for this
		// phase, siblings still run.
		res.BuildErr = err.Error()
		res.Report = score.Report{Verdict: score.VerdictFail}
		res.Duration = time.Since(started)
		fmt.Fprintf(r.output, "  %s %s\n", r.styles.Fail.Render("[FAIL]"), err.Error())
		r.logger.Error("phase cannot execute", "phase", p.Label, "error", err)
		return res, nil
	}

	sum, err := reg.Run(ctx)
	res.Checks = sum.Results
	res.Report = score.Compute(sum.Counters, p.Thresholds)
	res.Duration = time.Since(started)

	if err != nil {
		res.BuildErr = err.Error()
		return res, err
	}

	r.printPhaseScore(p, res)
	r.logger.Info("phase complete", "phase", p.Label,
		"verdict", res.Report.Verdict.String(), "rate", res.Report.Rate)
	return res, nil
}

func (r *Runner) printPhaseScore(p *Phase, res Result) {
	fmt.Fprintf(r.output, "  %s\n", r.styles.Dim.Render(strings.Repeat("-", 40)))
	fmt.Fprintf(r.output, "  Score: %.0f%% (%d passed, %d failed, %d warned) -> %s\n",
		res.Report.Rate*100, res.Report.Passed, res.Report.Failed, res.Report.Warned,
		r.renderVerdict(res.Report.Verdict))
}

func (r *Runner) printSummary(report *SuiteReport) {
	fmt.Fprintf(r.output, "\n%s\n", r.styles.Banner.Render("=== Summary ==="))
	for _, res := range report.Phases {
		marker := " "
		if res.Critical {
			marker = "*"
		}
		fmt.Fprintf(r.output, "  %s %-14s %s\n", marker, res.Label, r.renderVerdict(res.Report.Verdict))
	}
	if report.Aborted {
		fmt.Fprintf(r.output, "  %s\n", r.styles.Warn.Render("run aborted by operator"))
	}

	verdict := "NOT OPERATIONAL"
	style := r.styles.Fail
	if report.Operational {
		verdict = "OPERATIONAL"
		style = r.styles.Pass
	}
	fmt.Fprintf(r.output, "\n  Overall: %s  (* = critical phase)\n", style.Render(verdict))
}

func (r *Runner) renderVerdict(v score.Verdict) string {
	switch v {
	case score.VerdictReady:
		return r.styles.Pass.Render("READY")
	case score.VerdictWarn:
		return r.styles.Warn.Render("WARN")
	default:
		return r.styles.Fail.Render("FAIL")
	}
}
