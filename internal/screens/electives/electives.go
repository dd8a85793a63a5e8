// Package electives lets the student place electives from the catalogue on
// a board column, or take them off.
package electives

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/utntracker/internal/board"
	"github.com/abhisek/utntracker/internal/plan"
	"github.com/abhisek/utntracker/internal/screen"
	"github.com/abhisek/utntracker/internal/tracker"
	"github.com/abhisek/utntracker/internal/ui/layout"
	"github.com/abhisek/utntracker/internal/ui/theme"
)

type electivesLoadedMsg struct {
	State *board.State
	Err   error
}

type changedMsg struct {
	Result *tracker.Result
	Err    error
}

// Screen lists the elective catalogue.
type Screen struct {
	svc       *tracker.Service
	catalogue []plan.Subject
	state     *board.State
	columns   []string

	selected     int
	column       int
	scrollOffset int
	loaded       bool
	errMsg       string
	flash        string
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)

// New creates the electives screen.
func New(svc *tracker.Service) *Screen {
	return &Screen{
		svc:       svc,
		catalogue: svc.Plan().Electives(),
	}
}

func (s *Screen) Init() tea.Cmd {
	return s.load()
}

func (s *Screen) load() tea.Cmd {
	svc := s.svc
	return func() tea.Msg {
		st, err := svc.Load(context.Background())
		return electivesLoadedMsg{State: st, Err: err}
	}
}

func (s *Screen) Title() string {
	return "Electivas"
}

func (s *Screen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navegar"},
		{Key: "←→", Description: "Módulo"},
		{Key: "Enter", Description: "Agregar"},
		{Key: "f", Description: "Forzar"},
		{Key: "x", Description: "Quitar"},
		{Key: "Esc", Description: "Volver"},
	}
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case electivesLoadedMsg:
		s.loaded = true
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.state = msg.State
		s.columns = s.columns[:0]
		for _, col := range msg.State.Columns() {
			s.columns = append(s.columns, col.Module.Name)
		}
		s.column = min(s.column, max(len(s.columns)-1, 0))
		return s, nil

	case changedMsg:
		if msg.Err != nil {
			s.flash = msg.Err.Error()
			return s, nil
		}
		s.flash = msg.Result.Transition.String()
		if msg.Result.Warning != "" {
			s.flash = msg.Result.Warning
		}
		return s, s.load()

	case tea.KeyMsg:
		if !s.loaded || len(s.catalogue) == 0 {
			return s, nil
		}
		switch msg.String() {
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.catalogue)-1 {
				s.selected++
			}
		case "left", "h":
			if s.column > 0 {
				s.column--
			}
		case "right", "l":
			if s.column < len(s.columns)-1 {
				s.column++
			}
		case "enter":
			return s, s.place(false)
		case "f":
			return s, s.place(true)
		case "x":
			return s, s.remove()
		}
	}
	return s, nil
}

func (s *Screen) place(force bool) tea.Cmd {
	svc := s.svc
	code := s.catalogue[s.selected].Code
	col := s.column
	return func() tea.Msg {
		res, err := svc.PlaceElective(context.Background(), code, col, force)
		return changedMsg{Result: res, Err: err}
	}
}

func (s *Screen) remove() tea.Cmd {
	svc := s.svc
	code := s.catalogue[s.selected].Code
	return func() tea.Msg {
		res, err := svc.RemoveElective(context.Background(), code)
		return changedMsg{Result: res, Err: err}
	}
}

// placedOn returns the column name an elective sits on.
func (s *Screen) placedOn(code string) (string, bool) {
	if s.state == nil {
		return "", false
	}
	for _, p := range s.state.Placements() {
		if p.Code == code {
			i := min(max(p.Column, 0), len(s.columns)-1)
			if i < 0 {
				return "", true
			}
			return s.columns[i], true
		}
	}
	return "", false
}

func (s *Screen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Cargando electivas...")
	}
	if len(s.catalogue) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  Este plan no tiene electivas.")
	}

	var b strings.Builder
	b.WriteString("\n")

	target := "-"
	if len(s.columns) > 0 {
		target = s.columns[s.column]
	}
	b.WriteString("  " + theme.Hint.Render("Agregar en: ") + theme.Selected.Render("‹ "+target+" ›") + "\n")
	if s.flash != "" {
		b.WriteString("  " + theme.Warning.Render(s.flash) + "\n")
	}
	b.WriteString("\n")

	listHeight := max(height-lipgloss.Height(b.String())-1, 1)
	if s.selected < s.scrollOffset {
		s.scrollOffset = s.selected
	}
	if s.selected >= s.scrollOffset+listHeight {
		s.scrollOffset = s.selected - listHeight + 1
	}

	end := min(s.scrollOffset+listHeight, len(s.catalogue))
	for i := s.scrollOffset; i < end; i++ {
		e := s.catalogue[i]
		cursor := "  "
		nameStyle := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			cursor = "▸ "
			nameStyle = theme.Selected
		}
		where := ""
		if col, ok := s.placedOn(e.Code); ok {
			where = lipgloss.NewStyle().Foreground(theme.Success).Render("en " + col)
		} else if missing := s.missing(e); missing != "" {
			where = lipgloss.NewStyle().Foreground(theme.TextDim).Render("falta " + missing)
		}
		b.WriteString(fmt.Sprintf("  %s%-6s %s  %s\n", cursor, e.Code, nameStyle.Render(e.Name), where))
	}

	return b.String()
}

// missing lists the unmet cursar requirements of an unplaced elective.
func (s *Screen) missing(e plan.Subject) string {
	if s.state == nil {
		return ""
	}
	var ids []string
	for _, r := range board.MissingCursarRequirements(e, s.state.Lookup().Effective()) {
		ids = append(ids, r.ID)
	}
	return strings.Join(ids, ", ")
}
