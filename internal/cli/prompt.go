package cli

import (
	"fmt"

	"github.com/charmbracelet/huh"
)

// Prompter asks the user for input the flags did not provide.
type Prompter interface {
	Input(title string, value *string) error
	Password(title string, value *string) error
	Confirm(title string, value *bool) error
}

// HuhPrompter prompts with interactive terminal forms.
type HuhPrompter struct{}

var _ Prompter = HuhPrompter{}

func (HuhPrompter) Input(title string, value *string) error {
	if err := huh.NewInput().Title(title).Value(value).Run(); err != nil {
		return fmt.Errorf("prompt %s: %w", title, err)
	}

	return nil
}

func (HuhPrompter) Password(title string, value *string) error {
	err := huh.NewInput().
		Title(title).
		EchoMode(huh.EchoModePassword).
		Value(value).
		Run()
	if err != nil {
		return fmt.Errorf("prompt %s: %w", title, err)
	}

	return nil
}

func (HuhPrompter) Confirm(title string, value *bool) error {
	if err := huh.NewConfirm().Title(title).Value(value).Run(); err != nil {
		return fmt.Errorf("prompt %s: %w", title, err)
	}

	return nil
}

// ask prompts for value unless it is already set.
func ask(prompt func(string, *string) error, title string, value *string) error {
	if *value != "" {
		return nil
	}

	return prompt(title, value)
}
