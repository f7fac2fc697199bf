// Package tui implements the interactive adder.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/skim-satellite/adder/internal/adder"
	"github.com/skim-satellite/adder/internal/styles"
)

const (
	fieldA = iota
	fieldB
	fieldCount
)

// Model is the bubbletea model for the interactive adder.
type Model struct {
	inputs []textinput.Model
	focus  int
	width  int

	result adder.Result
	err    error
	valid  bool
}

// New returns a model with the first operand focused.
func New() Model {
	inputs := make([]textinput.Model, fieldCount)
	for i := range inputs {
		in := textinput.New()
		in.CharLimit = 11 // len("-2147483648")
		in.Placeholder = "0"
		in.Width = 14
		inputs[i] = in
	}
	inputs[fieldA].Prompt = "a: "
	inputs[fieldB].Prompt = "b: "
	inputs[fieldA].Focus()

	m := Model{inputs: inputs}
	m.recompute()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "tab", "down", "enter":
			return m, m.setFocus((m.focus + 1) % fieldCount)
		case "shift+tab", "up":
			return m, m.setFocus((m.focus + fieldCount - 1) % fieldCount)
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	m.recompute()
	return m, cmd
}

func (m *Model) setFocus(i int) tea.Cmd {
	m.inputs[m.focus].Blur()
	m.focus = i
	return m.inputs[m.focus].Focus()
}

// operand treats an empty field as zero so the sum shows while typing.
func operand(in textinput.Model) (int32, error) {
	v := strings.TrimSpace(in.Value())
	if v == "" || v == "-" || v == "+" {
		return 0, nil
	}
	return adder.ParseOperand(v)
}

func (m *Model) recompute() {
	a, err := operand(m.inputs[fieldA])
	if err != nil {
		m.err = fmt.Errorf("a: %w", err)
		m.valid = false
		return
	}
	b, err := operand(m.inputs[fieldB])
	if err != nil {
		m.err = fmt.Errorf("b: %w", err)
		m.valid = false
		return
	}
	m.result = adder.Eval(a, b)
	m.err = nil
	m.valid = true
}

// Result returns the current sum and whether both operands parse.
func (m Model) Result() (adder.Result, bool) {
	return m.result, m.valid
}

// View implements tea.Model.
func (m Model) View() string {
	var lines []string
	lines = append(lines, styles.RenderLabel("adder"), "")
	for _, in := range m.inputs {
		lines = append(lines, in.View())
	}
	lines = append(lines, "")

	if m.err != nil {
		lines = append(lines, styles.RenderError(m.err.Error()))
	} else {
		sum := styles.RenderSum(fmt.Sprintf("= %d", m.result.Sum))
		if m.result.Overflow {
			sum += " " + styles.RenderWarning("(wrapped)")
		}
		lines = append(lines, sum)
	}

	lines = append(lines, "", styles.RenderDim("tab: next field • esc: quit"))

	if m.width > 0 {
		for i, line := range lines {
			lines[i] = ansi.Truncate(line, m.width, "…")
		}
	}
	return strings.Join(lines, "\n") + "\n"
}

// Run starts the interactive adder on the terminal.
func Run() error {
	_, err := tea.NewProgram(New()).Run()
	return err
}
