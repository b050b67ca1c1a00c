package phase

import (
	"github.com/charmbracelet/huh"
)

// AutoConfirmer resumes immediately without asking. Used for --yes runs
// and non-interactive environments (CI, pipes).
type AutoConfirmer struct{}

// Confirm implements Confirmer.
func (AutoConfirmer) Confirm(string) (bool, error) {
	return true, nil
}

// PromptConfirmer blocks on an interactive terminal prompt until the
// operator answers. Only process termination interrupts the wait.
type PromptConfirmer struct{}

// Confirm implements Confirmer.
func (PromptConfirmer) Confirm(prompt string) (bool, error) {
	proceed := true
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(prompt).
				Affirmative("Continue").
				Negative("Stop").
				Value(&proceed),
		),
	).Run()
	if err != nil {
		return false, err
	}
	return proceed, nil
}
