package classify

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
)

// TerminalProvider asks the user on the terminal, one form per question.
type TerminalProvider struct{}

func (TerminalProvider) AskIgnore(source, key, detail string) (bool, error) {
	var ignore bool
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(fmt.Sprintf("Ignore %q?", key)).
			Description(detail).
			Affirmative("Ignore").
			Negative("Keep").
			Value(&ignore),
	))
	if err := form.Run(); err != nil {
		return false, fmt.Errorf("ignore prompt for %s %q: %w", source, key, err)
	}
	return ignore, nil
}

func (TerminalProvider) AskInvoiceName(source, key, defaultName string) (string, error) {
	name := defaultName
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title(fmt.Sprintf("Invoice project for %q", key)).
			Description("Enter *GCAL on a timesheet project to split its hours across all-day calendar events.").
			Value(&name),
	))
	if err := form.Run(); err != nil {
		return "", fmt.Errorf("invoice-name prompt for %s %q: %w", source, key, err)
	}
	if strings.TrimSpace(name) == "" {
		return defaultName, nil
	}
	return name, nil
}

// DefaultsProvider answers without prompting: nothing is ignored and keys
// invoice under their own name. Used for non-interactive runs.
type DefaultsProvider struct{}

func (DefaultsProvider) AskIgnore(source, key, detail string) (bool, error) {
	return false, nil
}

func (DefaultsProvider) AskInvoiceName(source, key, defaultName string) (string, error) {
	return defaultName, nil
}
