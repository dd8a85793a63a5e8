package components

import (
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/utntracker/internal/ui/theme"
)

// GradeInput wraps bubbles/textinput for a single grade. Only digits and a
// decimal separator are accepted.
type GradeInput struct {
	Model textinput.Model
	Label string
	Hint  string
}

// NewGradeInput creates an input labelled label with value v.
func NewGradeInput(label, v string) GradeInput {
	ti := textinput.New()
	ti.Placeholder = "-"
	ti.CharLimit = 5
	ti.SetWidth(6)
	ti.SetValue(v)
	return GradeInput{Model: ti, Label: label}
}

// Focus focuses the input.
func (g *GradeInput) Focus() tea.Cmd {
	return g.Model.Focus()
}

// Blur removes focus from the input.
func (g *GradeInput) Blur() {
	g.Model.Blur()
}

// Update handles messages. Keys that cannot be part of a grade are dropped.
func (g GradeInput) Update(msg tea.Msg) (GradeInput, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		key := kmsg.String()
		if len(key) == 1 && !isGradeRune(key[0]) {
			return g, nil
		}
	}

	var cmd tea.Cmd
	g.Model, cmd = g.Model.Update(msg)
	return g, cmd
}

func isGradeRune(c byte) bool {
	return (c >= '0' && c <= '9') || c == ',' || c == '.'
}

// View renders the label, the input and the hint placeholder.
func (g GradeInput) View(focused bool) string {
	label := lipgloss.NewStyle().Foreground(theme.TextDim).Width(12).Render(g.Label)
	if focused {
		label = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Width(12).Render(g.Label)
	}
	view := label + g.Model.View()
	if g.Hint != "" && g.Model.Value() == "" {
		view += "  " + theme.Hint.Render(g.Hint)
	}
	return view
}

// Value returns the current input value.
func (g GradeInput) Value() string {
	return g.Model.Value()
}
