// Package welcome is the opening screen: the UTN banner over a per-module
// progress ladder of the current plan, revealed one module per tick.
package welcome

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/utntracker/internal/board"
	"github.com/abhisek/utntracker/internal/plan"
	"github.com/abhisek/utntracker/internal/router"
	"github.com/abhisek/utntracker/internal/screen"
	"github.com/abhisek/utntracker/internal/stats"
	"github.com/abhisek/utntracker/internal/ui/components"
	"github.com/abhisek/utntracker/internal/ui/theme"
)

const tickInterval = 120 * time.Millisecond

// Source provides the plan and the saved board.
type Source interface {
	Plan() *plan.Plan
	Load(ctx context.Context) (*board.State, error)
}

type tickMsg time.Time

type progressMsg struct {
	modules []board.ModuleProgress
	report  stats.Report
	err     error
}

// WelcomeScreen shows the banner and the saved progress before the board.
type WelcomeScreen struct {
	source       Source
	boardFactory func() screen.Screen

	modules  []board.ModuleProgress
	report   stats.Report
	loaded   bool
	errMsg   string
	revealed int

	transitioned bool
}

var _ screen.Screen = (*WelcomeScreen)(nil)

// New creates a WelcomeScreen that replaces itself with the screen produced
// by boardFactory on the first keypress.
func New(source Source, boardFactory func() screen.Screen) *WelcomeScreen {
	return &WelcomeScreen{
		source:       source,
		boardFactory: boardFactory,
	}
}

func (w *WelcomeScreen) Title() string {
	return ""
}

func (w *WelcomeScreen) Init() tea.Cmd {
	return tea.Batch(w.load, tick())
}

func (w *WelcomeScreen) load() tea.Msg {
	st, err := w.source.Load(context.Background())
	if err != nil {
		return progressMsg{err: err}
	}
	return progressMsg{modules: st.Progress(), report: stats.ForBoard(st)}
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case progressMsg:
		w.loaded = true
		if msg.err != nil {
			w.errMsg = msg.err.Error()
			return w, nil
		}
		w.modules = msg.modules
		w.report = msg.report
		return w, nil

	case tickMsg:
		// Ticks stop once every module is on screen.
		if w.loaded && w.revealed >= len(w.modules) {
			return w, nil
		}
		if w.revealed < len(w.modules) {
			w.revealed++
		}
		return w, tick()

	case tea.KeyPressMsg:
		return w, w.transition()
	}

	return w, nil
}

func (w *WelcomeScreen) transition() tea.Cmd {
	if w.transitioned {
		return nil
	}
	w.transitioned = true
	next := w.boardFactory()
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: next}
	}
}

// done reports whether the ladder is fully revealed.
func (w *WelcomeScreen) done() bool {
	return w.loaded && w.revealed >= len(w.modules)
}

func (w *WelcomeScreen) View(width, height int) string {
	var sections []string

	sections = append(sections, RenderBanner(width), "")
	sections = append(sections, lipgloss.NewStyle().
		Foreground(theme.Text).
		Bold(true).
		Render("Tu carrera, materia por materia"))
	if p := w.source.Plan(); p != nil {
		sections = append(sections, theme.Subtitle.Render(p.Title))
	}
	sections = append(sections, "")

	switch {
	case w.errMsg != "":
		sections = append(sections, theme.Danger.Render("No se pudo leer tu progreso: "+w.errMsg))
	case !w.loaded:
		sections = append(sections, theme.Hint.Render("Cargando tu progreso..."))
	default:
		sections = append(sections, w.renderLadder(min(max(width-8, 30), 60))...)
	}

	if w.done() || w.errMsg != "" {
		sections = append(sections, "", lipgloss.NewStyle().
			Foreground(theme.TextDim).
			Italic(true).
			Render("presioná cualquier tecla para continuar"))
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		strings.Join(sections, "\n"))
}

func (w *WelcomeScreen) renderLadder(width int) []string {
	nameWidth := 0
	for _, m := range w.modules {
		nameWidth = max(nameWidth, lipgloss.Width(m.Module.Name))
	}

	var lines []string
	for _, m := range w.modules[:w.revealed] {
		pct := 0
		if m.Total > 0 {
			pct = m.Approved * 100 / m.Total
		}
		label := fmt.Sprintf("%-*s", nameWidth, m.Module.Name)
		bar := components.NewProgressBar(label, pct, false, width-8).View()
		count := fmt.Sprintf(" %2d/%-2d", m.Approved, m.Total)
		if m.Done() {
			count = lipgloss.NewStyle().Foreground(theme.Success).Render(count + " ✓")
		} else {
			count = theme.Hint.Render(count)
		}
		lines = append(lines, bar+count)
	}

	if !w.done() {
		return lines
	}

	r := w.report
	var summary string
	if r.ApprovedSubjects == 0 && r.InProgressSubjects == 0 {
		summary = fmt.Sprintf("Todo por empezar: %d materias disponibles", r.AvailableSubjects)
	} else {
		summary = fmt.Sprintf("%d de %d aprobadas · %d cursando · %d disponibles",
			r.ApprovedSubjects, r.TotalSubjects, r.InProgressSubjects, r.AvailableSubjects)
	}
	return append(lines, "", lipgloss.NewStyle().Foreground(theme.Accent).Render(summary))
}
