// Package summary shows the aggregate progress of the board: counts per
// status tier, weekly load, average grade and per-module completion.
package summary

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/utntracker/internal/board"
	"github.com/abhisek/utntracker/internal/router"
	"github.com/abhisek/utntracker/internal/screen"
	"github.com/abhisek/utntracker/internal/stats"
	"github.com/abhisek/utntracker/internal/status"
	"github.com/abhisek/utntracker/internal/ui/components"
	"github.com/abhisek/utntracker/internal/ui/layout"
	"github.com/abhisek/utntracker/internal/ui/theme"
)

// SummaryScreen displays the progress summary.
type SummaryScreen struct {
	report stats.Report
	state  *board.State
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a new SummaryScreen. st may be nil, which hides the module
// breakdown.
func New(report stats.Report, st *board.State) *SummaryScreen {
	return &SummaryScreen{report: report, state: st}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Resumen"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Volver"},
		{Key: "Esc", Description: "Tablero"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter", "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	r := s.report
	var b strings.Builder

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Primary).
		Bold(true).
		Render(fmt.Sprintf("%d de %d materias aprobadas", r.ApprovedSubjects, r.TotalSubjects)))
	b.WriteString("\n\n")

	bar := components.NewProgressBar("", r.ProgressPercent, true, min(width-8, 60))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))
	b.WriteString("\n\n")

	line := fmt.Sprintf("Horas semanales: %d        Promedio: %s        Con nota: %d",
		r.WeeklyHours, r.AverageLabel(), r.GradedSubjects)
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Render(line))
	b.WriteString("\n\n")

	divider := lipgloss.NewStyle().Foreground(theme.Border).Render(
		strings.Repeat("─", min(width-8, 60)))

	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.TextDim).Render("Estados")))
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, divider))
	b.WriteString("\n\n")

	tiers := []struct {
		tag   status.Tag
		count int
	}{
		{status.Promocionada, r.PromotedSubjects},
		{status.Aprobada, r.ApprovedSubjects - r.PromotedSubjects},
		{status.Regularizada, r.RegularizedSubjects},
		{status.FaltanNotas, r.InProgressSubjects},
	}
	for _, t := range tiers {
		line := fmt.Sprintf("%s %-16s %3d", t.tag.Icon(), t.tag.Label(), t.count)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.StatusColor(t.tag)).Render(line)))
		b.WriteString("\n")
	}
	avail := fmt.Sprintf("  %-16s %3d", "Disponibles", r.AvailableSubjects)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.Secondary).Render(avail)))
	b.WriteString("\n")

	if s.state != nil {
		b.WriteString("\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.TextDim).Render("Módulos")))
		b.WriteString("\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, divider))
		b.WriteString("\n\n")

		for _, m := range s.state.Progress() {
			line := fmt.Sprintf("%-24s %2d/%-2d", m.Module.Name, m.Approved, m.Total)
			style := lipgloss.NewStyle().Foreground(theme.Text)
			if m.Done() {
				style = style.Foreground(theme.Success)
			}
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
			b.WriteString("\n")
		}
	}

	return b.String()
}
