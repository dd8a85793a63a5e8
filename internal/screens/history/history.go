// Package history shows the log of status changes, newest first.
package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/utntracker/internal/plan"
	"github.com/abhisek/utntracker/internal/router"
	"github.com/abhisek/utntracker/internal/screen"
	"github.com/abhisek/utntracker/internal/status"
	"github.com/abhisek/utntracker/internal/store"
	"github.com/abhisek/utntracker/internal/ui/layout"
	"github.com/abhisek/utntracker/internal/ui/theme"
)

// Limit is the number of events loaded.
const Limit = 100

// EventSource is the query side of the event log.
type EventSource interface {
	QueryStatusEvents(ctx context.Context, opts store.QueryOpts) ([]store.StatusEvent, error)
}

type historyLoadedMsg struct {
	Events []store.StatusEvent
	Err    error
}

// HistoryScreen displays past status changes.
type HistoryScreen struct {
	source   EventSource
	plan     *plan.Plan
	events   []store.StatusEvent
	selected int
	expanded map[int]bool
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen. p resolves subject names.
func New(source EventSource, p *plan.Plan) *HistoryScreen {
	return &HistoryScreen{
		source:   source,
		plan:     p,
		expanded: make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	source := s.source
	return func() tea.Msg {
		events, err := source.QueryStatusEvents(context.Background(), store.QueryOpts{Limit: Limit})
		return historyLoadedMsg{Events: events, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "Historial"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Detalle"},
		{Key: "↑↓", Description: "Navegar"},
		{Key: "Esc", Description: "Volver"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.events = msg.Events
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < len(s.events)-1 {
				s.selected++
			}
			return s, nil
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
			return s, nil
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Cargando historial...")
	}
	if len(s.events) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  Sin cambios todavía. Empezá una materia desde el tablero.")
	}

	var lines []string
	selLine := 0
	for i, ev := range s.events {
		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}

		to := status.Tag(ev.To)
		line := fmt.Sprintf("%s%s  %-28s %s → %s  (%s)",
			prefix,
			ev.Timestamp.Local().Format("02/01/2006 15:04"),
			s.name(ev.SubjectCode),
			status.Tag(ev.From).Label(),
			to.Label(),
			ev.Trigger,
		)

		style := lipgloss.NewStyle().Foreground(theme.StatusColor(to))
		if i == s.selected {
			style = style.Bold(true)
			selLine = len(lines)
		}
		lines = append(lines, style.Render(line))

		if s.expanded[i] {
			detail := "    No habilitó materias"
			if len(ev.Unlocked) > 0 {
				names := make([]string, 0, len(ev.Unlocked))
				for _, code := range ev.Unlocked {
					names = append(names, s.name(code))
				}
				detail = "    Habilitó: " + strings.Join(names, ", ")
			}
			lines = append(lines, lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).Render(detail))
		}
	}

	// Keep the selected event on screen.
	visible := max(height-1, 1)
	start := max(selLine-visible+1, 0)
	lines = lines[start:min(start+visible, len(lines))]
	return "\n" + strings.Join(lines, "\n")
}

func (s *HistoryScreen) name(code string) string {
	if s.plan != nil {
		if subj, ok := s.plan.Subject(code); ok {
			return subj.Name
		}
	}
	return code
}
