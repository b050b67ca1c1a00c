// Package ui provides terminal styling for ragcheck output.
package ui

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Color palette - single lime accent for a distinctive look.
const (
	ColorLime     = "154" // Pass, ready verdicts
	ColorLimeDim  = "106" // Section headers
	ColorWhite    = "255" // Phase banners
	ColorGray     = "245" // Details, secondary text
	ColorDarkGray = "238" // Separators
	ColorRed      = "196" // Fail
	ColorYellow   = "220" // Warn
)

// Styles holds the styles used when rendering check output.
type Styles struct {
	Banner  lipgloss.Style
	Section lipgloss.Style
	Pass    lipgloss.Style
	Warn    lipgloss.Style
	Fail    lipgloss.Style
	Detail  lipgloss.Style
	Dim     lipgloss.Style
}

// DefaultStyles returns styled components for TTY output.
func DefaultStyles() Styles {
	return Styles{
		Banner:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorWhite)),
		Section: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorLimeDim)),
		Pass:    lipgloss.NewStyle().Foreground(lipgloss.Color(ColorLime)),
		Warn:    lipgloss.NewStyle().Foreground(lipgloss.Color(ColorYellow)),
		Fail:    lipgloss.NewStyle().Foreground(lipgloss.Color(ColorRed)),
		Detail:  lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGray)),
		Dim:     lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDarkGray)),
	}
}

// NoColorStyles returns unstyled components for plain mode (CI/pipes).
func NoColorStyles() Styles {
	return Styles{
		Banner:  lipgloss.NewStyle(),
		Section: lipgloss.NewStyle(),
		Pass:    lipgloss.NewStyle(),
		Warn:    lipgloss.NewStyle(),
		Fail:    lipgloss.NewStyle(),
		Detail:  lipgloss.NewStyle(),
		Dim:     lipgloss.NewStyle(),
	}
}

// GetStyles returns the appropriate styles based on color preference.
func GetStyles(noColor bool) Styles {
	if noColor {
		return NoColorStyles()
	}
	return DefaultStyles()
}

// IsTerminal reports whether w is an interactive terminal.
// Used to pick plain output for pipes and CI, styled output otherwise.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// StylesFor selects styles for the given writer, honoring an explicit
// no-color request and the NO_COLOR convention.
func StylesFor(w io.Writer, noColor bool) Styles {
	return GetStyles(noColor || os.Getenv("NO_COLOR") != "" || !IsTerminal(w))
}
