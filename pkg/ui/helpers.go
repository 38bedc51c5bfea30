// SPDX-License-Identifier: Apache-2.0
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/Work-Fort/Intake/pkg/config"
)

// RenderCenteredModal draws content in a bordered box centered in the terminal
func RenderCenteredModal(content string, width, height int, borderColor lipgloss.Color, modalWidth int) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(1, 2).
		Width(modalWidth).
		Render(content)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color("0")),
	)
}

// ProgressStatus is the inline notice shown under the step while a
// submission is in flight
type ProgressStatus struct {
	Title     string
	Indicator string // spinner view
	Help      string // defaults to "You can keep editing; changes are not part of this submission"
}

// Render draws the notice on a single line followed by the help text
func (p ProgressStatus) Render() string {
	theme := config.CurrentTheme
	muted := lipgloss.NewStyle().Foreground(theme.GetMutedColor())

	title := lipgloss.NewStyle().Foreground(theme.GetPrimaryColor()).Bold(true).Render(p.Title + "...")
	if p.Indicator != "" {
		title = p.Indicator + " " + title
	}
	help := p.Help
	if help == "" {
		help = "You can keep editing; changes are not part of this submission"
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, muted.Render(help))
}

// ConfirmResult is the state of a ConfirmationForm after an update
type ConfirmResult int

const (
	ConfirmPending ConfirmResult = iota
	ConfirmAccepted
	ConfirmDeclined
	ConfirmCancelled
)

// ConfirmationForm is an embeddable yes/no prompt. y and n answer directly,
// esc cancels.
type ConfirmationForm struct {
	form *huh.Form
	key  string
}

// NewConfirmationForm builds the prompt; key names the huh field holding the answer
func NewConfirmationForm(key, title, description, affirmative, negative string) *ConfirmationForm {
	return &ConfirmationForm{
		key: key,
		form: huh.NewForm(huh.NewGroup(
			huh.NewConfirm().
				Key(key).
				Title(title).
				Description(description).
				Affirmative(affirmative).
				Negative(negative),
		)),
	}
}

// Init implements the embedded form's startup
func (cf *ConfirmationForm) Init() tea.Cmd {
	return cf.form.Init()
}

// Update feeds msg to the form and reports whether the user has decided
func (cf *ConfirmationForm) Update(msg tea.Msg) (ConfirmResult, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "y", "Y":
			return ConfirmAccepted, nil
		case "n", "N":
			return ConfirmDeclined, nil
		case "esc":
			return ConfirmCancelled, nil
		}
	}

	model, cmd := cf.form.Update(msg)
	cf.form = model.(*huh.Form)

	switch cf.form.State {
	case huh.StateCompleted:
		if cf.form.GetBool(cf.key) {
			return ConfirmAccepted, cmd
		}
		return ConfirmDeclined, cmd
	case huh.StateAborted:
		return ConfirmCancelled, cmd
	}
	return ConfirmPending, cmd
}

// View renders the prompt
func (cf *ConfirmationForm) View() string {
	return cf.form.View()
}
