package app

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
)

// Prompter asks the user yes/no questions.
type Prompter interface {
	Confirm(title, description string) (bool, error)
}

// HuhPrompter asks with an interactive huh confirm form. Aborting the
// form (Ctrl+C / Esc) counts as "no".
type HuhPrompter struct{}

// Confirm shows a single confirm field and returns the answer.
func (HuhPrompter) Confirm(title, description string) (bool, error) {
	var ok bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Yes").
				Negative("No").
				Value(&ok),
		),
	).Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("prompting: %w", err)
	}
	return ok, nil
}

// FixedPrompter answers every question with the same value. It backs the
// --yes flag and non-interactive runs.
type FixedPrompter bool

// Confirm returns the fixed answer.
func (p FixedPrompter) Confirm(string, string) (bool, error) {
	return bool(p), nil
}
