// Package console is the terminal surface: the yes/no confirmation prompt,
// tables and notification lines.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type confirmKeys struct {
	Yes    key.Binding
	No     key.Binding
	Submit key.Binding
	Quit   key.Binding
}

var defaultConfirmKeys = confirmKeys{
	Yes:    key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "yes")),
	No:     key.NewBinding(key.WithKeys("n", "N", "esc"), key.WithHelp("n", "no")),
	Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "default (no)")),
	Quit:   key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "cancel")),
}

// ConfirmModel is a one-question bubbletea program. Anything but an explicit
// yes declines.
type ConfirmModel struct {
	prompt   string
	keys     confirmKeys
	answered bool
	answer   bool
	style    lipgloss.Style
	hint     lipgloss.Style
}

func NewConfirmModel(prompt string) ConfirmModel {
	return ConfirmModel{
		prompt: prompt,
		keys:   defaultConfirmKeys,
		style:  lipgloss.NewStyle().Bold(true),
		hint:   lipgloss.NewStyle().Faint(true),
	}
}

func (m ConfirmModel) Init() tea.Cmd { return nil }

func (m ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, m.keys.Yes):
		m.answered, m.answer = true, true
	case key.Matches(keyMsg, m.keys.No), key.Matches(keyMsg, m.keys.Submit), key.Matches(keyMsg, m.keys.Quit):
		m.answered, m.answer = true, false
	default:
		return m, nil
	}
	return m, tea.Quit
}

func (m ConfirmModel) View() string {
	if m.answered {
		choice := "no"
		if m.answer {
			choice = "yes"
		}
		return m.style.Render(m.prompt) + " " + choice + "\n"
	}
	return m.style.Render(m.prompt) + " " + m.hint.Render("[y/N]") + " "
}

// Answer returns the choice and whether one was made.
func (m ConfirmModel) Answer() (bool, bool) {
	return m.answer, m.answered
}

// Prompter asks confirmation questions on a terminal.
type Prompter struct {
	in  io.Reader
	out io.Writer
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: in, out: out}
}

// Confirm runs the prompt until the operator answers or ctx ends.
func (p *Prompter) Confirm(ctx context.Context, prompt string) (bool, error) {
	program := tea.NewProgram(
		NewConfirmModel(prompt),
		tea.WithContext(ctx),
		tea.WithInput(p.in),
		tea.WithOutput(p.out),
		tea.WithoutSignalHandler(),
	)
	final, err := program.Run()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, ctxErr
		}
		if errors.Is(err, tea.ErrProgramKilled) {
			return false, nil
		}
		return false, fmt.Errorf("confirmation prompt: %w", err)
	}
	model, ok := final.(ConfirmModel)
	if !ok {
		return false, nil
	}
	answer, _ := model.Answer()
	return answer, nil
}

// AlwaysYes confirms without asking; used by --yes.
type AlwaysYes struct{}

func (AlwaysYes) Confirm(context.Context, string) (bool, error) { return true, nil }
