package check

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/kt2saint-sec/ragcheck/internal/errors"
	"github.com/kt2saint-sec/ragcheck/internal/ui"
)

// Section is an ordered, named grouping of checks. Purely organizational.
type Section struct {
	Label  string
	Checks []Check
}

// Registry owns an ordered sequence of sections. It is mutable only
// during registration; Run treats it as read-only.
type Registry struct {
	sections []*Section
	output   io.Writer
	styles   ui.Styles
	logger   *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithOutput sets the writer check lines are printed to.
func WithOutput(w io.Writer) Option {
	return func(r *Registry) {
		r.output = w
	}
}

// WithStyles sets the terminal styles for check lines.
func WithStyles(s ui.Styles) Option {
	return func(r *Registry) {
		r.styles = s
	}
}

// WithLogger sets the structured logger for check events.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = l
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		output: os.Stdout,
		styles: ui.NoColorStyles(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register appends a check under the named section, preserving insertion
// order. Order is meaningful: output follows it, and later checks may
// assume earlier ones passed.
func (r *Registry) Register(section, name string, probe Probe) {
	r.add(Check{Name: name, Section: section, Probe: probe})
}

// RegisterGate appends a gating check: if it fails, the remaining checks
// in its section are skipped.
func (r *Registry) RegisterGate(section, name string, probe Probe) {
	r.add(Check{Name: name, Section: section, Probe: probe, Gate: true})
}

func (r *Registry) add(c Check) {
	for _, s := range r.sections {
		if s.Label == c.Section {
			s.Checks = append(s.Checks, c)
			return
		}
	}
	r.sections = append(r.sections, &Section{Label: c.Section, Checks: []Check{c}})
}

// Len returns the number of registered checks.
func (r *Registry) Len() int {
	n := 0
	for _, s := range r.sections {
		n += len(s.Checks)
	}
	return n
}

// Summary is the aggregate result of one registry run.
type Summary struct {
	Counters Counters
	Results  []Result
}

// Run executes every check in insertion order, synchronously, printing
// one line per check as it completes. A failing gate check aborts the
// remaining checks in its section. Each probe runs exactly once.
//
// The returned error is non-nil only for a broken runner environment;
// everything the probes observe is reported through the summary.
func (r *Registry) Run(ctx context.Context) (Summary, error) {
	var sum Summary

	for _, section := range r.sections {
		if section.Label != "" {
			fmt.Fprintf(r.output, "%s\n", r.styles.Section.Render(section.Label))
		}

		for i, c := range section.Checks {
			outcome := c.Probe(ctx)
			if outcome.Err != nil {
				r.logger.Error("run aborted by environment failure",
					"check", c.Name, "code", errors.GetCode(outcome.Err), "error", outcome.Err)
				return sum, outcome.Err
			}

			res := Result{
				Name:    c.Name,
				Section: section.Label,
				Status:  outcome.Status,
				Detail:  outcome.Detail,
				Gate:    c.Gate,
			}
			sum.Counters.record(res.Status)
			sum.Results = append(sum.Results, res)
			r.printLine(res)
			r.logger.Debug("check complete",
				"section", section.Label, "check", c.Name, "status", res.StatusText())

			if c.Gate && outcome.Status == StatusFail {
				skipped := len(section.Checks) - i - 1
				if skipped > 0 {
					fmt.Fprintf(r.output, "  %s\n", r.styles.Dim.Render(
						fmt.Sprintf("gate failed, skipping %d remaining check(s) in section", skipped)))
				}
				break
			}
		}
	}

	return sum, nil
}

// printLine emits one unbuffered line per completed check so operators
// watching a slow run see progress.
func (r *Registry) printLine(res Result) {
	var glyph string
	switch res.Status {
	case StatusPass:
		glyph = r.styles.Pass.Render("[PASS]")
	case StatusWarn:
		glyph = r.styles.Warn.Render("[WARN]")
	default:
		glyph = r.styles.Fail.Render("[FAIL]")
	}

	if res.Detail != "" {
		fmt.Fprintf(r.output, "  %s %s: %s\n", glyph, res.Name, r.styles.Detail.Render(res.Detail))
		return
	}
	fmt.Fprintf(r.output, "  %s %s\n", glyph, res.Name)
}
