// SPDX-License-Identifier: Apache-2.0
package ui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/Work-Fort/Intake/pkg/config"
	"github.com/Work-Fort/Intake/pkg/form"
	"github.com/Work-Fort/Intake/pkg/wizard"
)

const (
	confirmKey      = "confirm"
	modalWidth      = 56
	chromeLines     = 6 // header, tabs (3), footer, toast gap
	minContentLines = 8
)

// SubmittedMsg carries the outcome of a submission back to the model
type SubmittedMsg struct {
	Receipt wizard.Receipt
	Err     error
}

// focusTarget is one focusable element of the active step. Collection
// fields contribute one target per option.
type focusTarget struct {
	key    string
	option string
}

// StepWizard renders a wizard.Controller as a tabbed Bubble Tea program
type StepWizard struct {
	ctx     context.Context
	ctrl    *wizard.Controller
	toasts  *Toasts
	section string
	label   string
	fields  map[string]form.Field

	width, height int
	spinner       spinner.Model
	inputs        map[string]*textinput.Model
	targets       []focusTarget
	focus         int

	confirm  *ConfirmationForm
	pending  wizard.Action
	failed   bool
	quitting bool
	receipt  *wizard.Receipt
	err      error
	fatal    error
}

// NewStepWizard creates the model. toasts must be the controller's notifier
// (or part of it) for notices to appear on screen.
func NewStepWizard(ctx context.Context, ctrl *wizard.Controller, toasts *Toasts, section, label string) *StepWizard {
	m := &StepWizard{
		ctx:     ctx,
		ctrl:    ctrl,
		toasts:  toasts,
		section: section,
		label:   label,
		fields:  make(map[string]form.Field),
		spinner: NewSpinner(),
		inputs:  make(map[string]*textinput.Model),
	}
	if m.toasts == nil {
		m.toasts = NewToasts(0)
	}

	model := ctrl.Model()
	for _, f := range ctrl.Flow().Fields {
		m.fields[f.Key] = f
		if f.Kind != form.Scalar || f.ReadOnly {
			continue
		}
		in := textinput.New()
		in.Prompt = "› "
		in.Placeholder = f.Placeholder
		in.CharLimit = 256
		if f.Secret {
			in.EchoMode = textinput.EchoPassword
			in.EchoCharacter = '•'
		}
		in.SetValue(model.Get(f.Key).String())
		m.inputs[f.Key] = &in
	}
	m.resetFocus()
	return m
}

// Init implements tea.Model
func (m *StepWizard) Init() tea.Cmd {
	return textinput.Blink
}

// Receipt returns the successful submission receipt, if any
func (m *StepWizard) Receipt() (wizard.Receipt, bool) {
	if m.receipt == nil {
		return wizard.Receipt{}, false
	}
	return *m.receipt, true
}

// Err returns the invariant violation that ended the program, if any
func (m *StepWizard) Err() error {
	return m.fatal
}

// Quitting reports whether the user asked to leave
func (m *StepWizard) Quitting() bool {
	return m.quitting
}

// Update implements tea.Model
func (m *StepWizard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		for _, in := range m.inputs {
			in.Width = max(msg.Width-16, 10)
		}
		return m, nil

	case spinner.TickMsg:
		if !m.ctrl.Submitting() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case SubmittedMsg:
		log.Debugf("stepwizard: submitted err=%v done=%v", msg.Err, m.ctrl.Done())
		if wizard.IsInvariant(msg.Err) {
			return m, m.abort("finish", msg.Err)
		}
		if msg.Err != nil || !m.ctrl.Done() {
			m.failed = true
			m.resetFocus()
			return m, m.focusCmd()
		}
		receipt := msg.Receipt
		m.receipt = &receipt
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.confirm != nil {
		_, cmd := m.confirm.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *StepWizard) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	if m.confirm != nil {
		result, cmd := m.confirm.Update(msg)
		if result == ConfirmPending {
			return m, cmd
		}
		action := m.pending
		m.confirm = nil
		m.pending = wizard.ActionNone
		if result == ConfirmAccepted {
			return m, m.perform(action)
		}
		return m, m.focusCmd()
	}

	if m.ctrl.Done() {
		if key == "enter" || key == "q" {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	// Navigation waits for the submission; editing does not
	submitting := m.ctrl.Submitting()
	switch {
	case submitting && (key == "enter" || key == "ctrl+s" || BackKeys().Contains(key) != nil):
		return m, nil
	case key == "enter":
		return m, m.request(m.ctrl.DefaultAction())
	case key == "ctrl+s":
		if m.ctrl.CanSkip() {
			return m, m.request(wizard.ActionSkip)
		}
		return m, nil
	case BackKeys().Contains(key) != nil:
		if m.ctrl.CanRetreat() {
			m.blurCurrent()
			err := m.ctrl.Retreat()
			if wizard.IsInvariant(err) {
				return m, m.abort("retreat", err)
			}
			m.err = err
			m.resetFocus()
			return m, m.focusCmd()
		}
		return m, nil
	}

	if b := FocusKeyBindings().Contains(key); b != nil {
		switch b.Key {
		case "TAB":
			return m, m.moveFocus(1)
		case "S-TAB":
			return m, m.moveFocus(-1)
		case "SPACE":
			// Space is typed into text inputs
			if t, ok := m.target(); ok && t.option != "" {
				m.toggle(t)
				return m, nil
			}
		}
	}

	return m, m.updateInput(msg)
}

// request runs action, asking for confirmation first on the final step
func (m *StepWizard) request(action wizard.Action) tea.Cmd {
	if action == wizard.ActionNone {
		m.ctrl.TouchStep()
		m.err = m.ctrl.Incomplete()
		return nil
	}
	if m.ctrl.IsLast() {
		m.blurCurrent()
		m.pending = action
		m.confirm = NewConfirmationForm(
			confirmKey,
			"Submit "+m.ctrl.Flow().Name+"?",
			"Your answers will be saved.",
			"Submit",
			"Back",
		)
		return m.confirm.Init()
	}
	return m.perform(action)
}

func (m *StepWizard) perform(action wizard.Action) tea.Cmd {
	m.blurCurrent()
	sub, err := m.ctrl.Perform(action)
	if wizard.IsInvariant(err) {
		return m.abort(action.String(), err)
	}
	if err != nil {
		m.err = err
		return nil
	}
	m.err = nil
	m.failed = false
	if sub == nil {
		m.resetFocus()
		return m.focusCmd()
	}

	ctx, ctrl := m.ctx, m.ctrl
	return tea.Batch(m.spinner.Tick, m.focusCmd(), func() tea.Msg {
		receipt, err := ctrl.Complete(ctx, sub)
		return SubmittedMsg{Receipt: receipt, Err: err}
	})
}

// abort ends the program on a wiring bug; the caller reads it from Err
func (m *StepWizard) abort(op string, err error) tea.Cmd {
	log.Error("stepwizard: invariant", "op", op, "err", err)
	m.fatal = err
	m.quitting = true
	return tea.Quit
}

func (m *StepWizard) target() (focusTarget, bool) {
	if m.focus < 0 || m.focus >= len(m.targets) {
		return focusTarget{}, false
	}
	return m.targets[m.focus], true
}

// resetFocus rebuilds the focus ring for the active step
func (m *StepWizard) resetFocus() {
	m.targets = m.targets[:0]
	for _, key := range m.ctrl.Step().Fields {
		f := m.fields[key]
		if f.ReadOnly {
			continue
		}
		if f.Kind == form.Collection {
			for _, opt := range f.Options {
				m.targets = append(m.targets, focusTarget{key: key, option: opt.Value})
			}
			continue
		}
		m.targets = append(m.targets, focusTarget{key: key})
	}
	m.focus = 0
	for _, in := range m.inputs {
		in.Blur()
	}
	if t, ok := m.target(); ok && t.option == "" {
		if in, ok := m.inputs[t.key]; ok {
			in.Focus()
		}
	}
}

func (m *StepWizard) focusCmd() tea.Cmd {
	t, ok := m.target()
	if !ok || t.option != "" {
		return nil
	}
	if in, ok := m.inputs[t.key]; ok {
		return in.Focus()
	}
	return nil
}

// blurCurrent marks the focused field as touched
func (m *StepWizard) blurCurrent() {
	t, ok := m.target()
	if !ok {
		return
	}
	m.ctrl.Blur(t.key)
	if in, ok := m.inputs[t.key]; ok {
		in.Blur()
	}
}

func (m *StepWizard) moveFocus(delta int) tea.Cmd {
	n := len(m.targets)
	if n == 0 {
		return nil
	}
	from := m.targets[m.focus]
	m.focus = ((m.focus+delta)%n + n) % n
	if m.targets[m.focus].key != from.key {
		m.blurCurrentKey(from.key)
	}
	return m.focusCmd()
}

func (m *StepWizard) blurCurrentKey(key string) {
	m.ctrl.Blur(key)
	if in, ok := m.inputs[key]; ok {
		in.Blur()
	}
}

func (m *StepWizard) toggle(t focusTarget) {
	if err := m.ctrl.Toggle(t.key, t.option); err != nil {
		m.err = err
		return
	}
	m.ctrl.Blur(t.key)
	m.failed = false
	m.clearIncomplete()
}

func (m *StepWizard) updateInput(msg tea.KeyMsg) tea.Cmd {
	t, ok := m.target()
	if !ok || t.option != "" {
		return nil
	}
	in, ok := m.inputs[t.key]
	if !ok {
		return nil
	}
	updated, cmd := in.Update(msg)
	*in = updated
	if err := m.ctrl.SetText(t.key, in.Value()); err != nil {
		m.err = err
		return cmd
	}
	m.failed = false
	m.clearIncomplete()
	return cmd
}

// clearIncomplete drops a stale gate message once the step can advance
func (m *StepWizard) clearIncomplete() {
	var incomplete *wizard.IncompleteError
	if errors.As(m.err, &incomplete) && m.ctrl.CanAdvance() {
		m.err = nil
	}
}

func (m *StepWizard) buildTabs() []Tab {
	steps := m.ctrl.Flow().Steps
	current := m.ctrl.Current()
	tabs := make([]Tab, len(steps))
	for i, step := range steps {
		tabs[i] = Tab{Title: step.Label, Spinner: m.spinner}
		switch m.ctrl.Status(i) {
		case wizard.StepActive:
			tabs[i].State = TabActive
			tabs[i].Busy = m.ctrl.Submitting()
		case wizard.StepComplete:
			tabs[i].State = TabComplete
		case wizard.StepSkipped:
			tabs[i].State = TabSkipped
		default:
			tabs[i].State = TabPending
		}
		if m.failed && i == current {
			tabs[i].State = TabError
		}
	}
	if m.ctrl.Done() {
		for i := range tabs {
			if tabs[i].State != TabSkipped {
				tabs[i].State = TabComplete
			}
		}
	}
	return tabs
}

// primaryLabel names the action bound to enter
func (m *StepWizard) primaryLabel() string {
	switch m.ctrl.DefaultAction() {
	case wizard.ActionAdvance:
		if m.ctrl.IsLast() {
			return "Submit"
		}
		return "Next"
	case wizard.ActionSkip:
		if m.ctrl.IsLast() {
			return "Skip & Submit"
		}
		return "Skip"
	default:
		return ""
	}
}

// View implements tea.Model
func (m *StepWizard) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}
	theme := config.CurrentTheme

	if m.confirm != nil {
		return RenderCenteredModal(m.confirm.View(), m.width, m.height, theme.GetPrimaryColor(), modalWidth)
	}

	header := theme.RenderHeader(m.width, m.section, m.label)
	tabsView := RenderTabs(m.buildTabs(), TabsConfig{ActiveIndex: m.ctrl.Current(), Width: m.width})

	var body string
	var hints KeyBindingSet
	if m.ctrl.Submitting() {
		body = lipgloss.JoinVertical(lipgloss.Left, m.stepView(), "",
			ProgressStatus{Title: "Submitting " + m.ctrl.Flow().Name, Indicator: m.spinner.View()}.Render())
		hints = FocusKeyBindings()
	} else if m.ctrl.Done() {
		body = m.doneView()
		hints = KeyBindingSet{Bindings: []KeyBinding{{Key: "ENTER", Keys: []string{"enter", "q"}, Description: "Exit"}}}
	} else {
		body = m.stepView()
		hints = StepKeyBindings(m.primaryLabel(), m.ctrl.CanSkip(), m.ctrl.CanRetreat())
	}

	toasts := m.toasts.Render()
	contentHeight := max(m.height-chromeLines-lipgloss.Height(toasts), minContentLines)
	content := RenderTabContent(body, m.width-2, contentHeight)
	footer := theme.RenderFooter(m.width, hints.RenderInline(lipgloss.NewStyle()))

	return lipgloss.JoinVertical(lipgloss.Left, header, tabsView, content, toasts, footer)
}

func (m *StepWizard) stepView() string {
	theme := config.CurrentTheme
	step := m.ctrl.Step()
	model := m.ctrl.Model()
	focused, _ := m.target()

	title := lipgloss.NewStyle().Bold(true).Foreground(theme.GetPrimaryColor()).Render(step.Label)
	lines := []string{title}
	if step.Optional {
		lines = append(lines, theme.SubtleStyle().Render("Optional"))
	}

	for _, key := range step.Fields {
		f := m.fields[key]
		lines = append(lines, "", lipgloss.NewStyle().Bold(true).Render(f.Label))

		switch {
		case f.ReadOnly:
			lines = append(lines, theme.SubtleStyle().Render(model.Get(key).String()))
		case f.Kind == form.Collection:
			value := model.Get(key)
			for _, opt := range f.Options {
				cursor := "  "
				if focused.key == key && focused.option == opt.Value {
					cursor = theme.InfoStyle().Render("› ")
				}
				lines = append(lines, cursor+theme.Checkbox(value.Contains(opt.Value))+" "+opt.Label)
			}
		default:
			lines = append(lines, m.inputs[key].View())
		}

		if msg := m.ctrl.FieldError(key); msg != "" {
			lines = append(lines, theme.ErrorStyle().Render(msg))
		}
	}

	if m.err != nil {
		var incomplete *wizard.IncompleteError
		if errors.As(m.err, &incomplete) {
			lines = append(lines, "", theme.WarningMessage("Please complete this step first"))
		} else {
			lines = append(lines, "", theme.ErrorMessage(m.err.Error()))
		}
	}

	return strings.Join(lines, "\n")
}

func (m *StepWizard) doneView() string {
	theme := config.CurrentTheme
	message := wizard.DefaultSuccessMessage
	if m.receipt != nil && m.receipt.Message != "" {
		message = m.receipt.Message
	}
	return lipgloss.JoinVertical(
		lipgloss.Left,
		"",
		theme.SuccessMessage(message),
		"",
		theme.SubtleStyle().Render("Press Enter or q to exit"),
	)
}
