// Package curriculum is the main board screen: the plan's modules with the
// status of every subject, overall progress and the subjects a change
// unlocked.
package curriculum

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/utntracker/internal/board"
	"github.com/abhisek/utntracker/internal/plan"
	"github.com/abhisek/utntracker/internal/router"
	"github.com/abhisek/utntracker/internal/screen"
	"github.com/abhisek/utntracker/internal/screens/electives"
	"github.com/abhisek/utntracker/internal/screens/history"
	"github.com/abhisek/utntracker/internal/screens/subject"
	"github.com/abhisek/utntracker/internal/screens/summary"
	"github.com/abhisek/utntracker/internal/stats"
	"github.com/abhisek/utntracker/internal/tracker"
	"github.com/abhisek/utntracker/internal/ui/components"
	"github.com/abhisek/utntracker/internal/ui/layout"
	"github.com/abhisek/utntracker/internal/ui/theme"
)

type rowKind int

const (
	rowModuleHeader rowKind = iota
	rowSubject
)

type row struct {
	kind    rowKind
	module  int
	title   string
	subject plan.Subject
}

type boardLoadedMsg struct {
	State  *board.State
	Report stats.Report
	Err    error
}

type startedMsg struct {
	Result *tracker.Result
	Err    error
}

// Screen displays the board grouped by module.
type Screen struct {
	svc    *tracker.Service
	events history.EventSource

	state  *board.State
	report stats.Report
	rows   []row

	cursor       int
	scrollOffset int
	loaded       bool
	errMsg       string
	flash        string
	unlocked     []string
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)
var _ screen.Resumer = (*Screen)(nil)
var _ screen.SummaryProvider = (*Screen)(nil)

// New creates the board screen. events may be nil, which disables the
// history view.
func New(svc *tracker.Service, events history.EventSource) *Screen {
	return &Screen{svc: svc, events: events}
}

func (s *Screen) Init() tea.Cmd {
	return s.load()
}

// Resume reloads the board when a pushed screen is closed.
func (s *Screen) Resume() tea.Cmd {
	return s.load()
}

func (s *Screen) load() tea.Cmd {
	svc := s.svc
	return func() tea.Msg {
		st, err := svc.Load(context.Background())
		if err != nil {
			return boardLoadedMsg{Err: err}
		}
		return boardLoadedMsg{State: st, Report: stats.ForBoard(st)}
	}
}

func (s *Screen) Title() string {
	return s.svc.Plan().Title
}

// Summary renders the header summary.
func (s *Screen) Summary() string {
	if !s.loaded {
		return ""
	}
	return fmt.Sprintf("%d/%d aprobadas  ", s.report.ApprovedSubjects, s.report.TotalSubjects)
}

func (s *Screen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{
		{Key: "↑↓", Description: "Navegar"},
		{Key: "Tab", Description: "Módulo"},
		{Key: "Enter", Description: "Abrir"},
		{Key: "e", Description: "Electivas"},
		{Key: "s", Description: "Resumen"},
	}
	if s.events != nil {
		hints = append(hints, layout.KeyHint{Key: "h", Description: "Historial"})
	}
	return append(hints, layout.KeyHint{Key: "q", Description: "Salir"})
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case boardLoadedMsg:
		s.loaded = true
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.errMsg = ""
		s.setState(msg.State, msg.Report)
		return s, nil

	case startedMsg:
		if msg.Err != nil {
			s.flash = msg.Err.Error()
			return s, nil
		}
		s.unlocked = msg.Result.Unlocked
		s.flash = msg.Result.Transition.String()
		return s, s.load()

	case subject.SavedMsg:
		s.unlocked = msg.Result.Unlocked
		s.flash = msg.Result.Transition.String()
		return s, nil

	case tea.KeyMsg:
		if !s.loaded || len(s.rows) == 0 {
			if msg.String() == "q" {
				return s, tea.Quit
			}
			return s, nil
		}
		switch msg.String() {
		case "up", "k":
			s.moveCursor(-1)
		case "down", "j":
			s.moveCursor(1)
		case "tab":
			s.jumpModule(1)
		case "shift+tab":
			s.jumpModule(-1)
		case "enter":
			return s, s.selectSubject()
		case "e":
			return s, func() tea.Msg {
				return router.PushScreenMsg{Screen: electives.New(s.svc)}
			}
		case "s":
			sum := summary.New(s.report, s.state)
			return s, func() tea.Msg { return router.PushScreenMsg{Screen: sum} }
		case "h":
			if s.events == nil {
				return s, nil
			}
			events := s.events
			return s, func() tea.Msg {
				return router.PushScreenMsg{Screen: history.New(events, s.svc.Plan())}
			}
		case "q":
			return s, tea.Quit
		}
	}
	return s, nil
}

// setState rebuilds the rows keeping the cursor on the same subject.
func (s *Screen) setState(st *board.State, report stats.Report) {
	current := s.currentCode()
	s.state = st
	s.report = report

	s.rows = s.rows[:0]
	for i, col := range st.Columns() {
		s.rows = append(s.rows, row{kind: rowModuleHeader, module: i, title: col.Module.Name})
		for _, subj := range col.Subjects {
			s.rows = append(s.rows, row{kind: rowSubject, module: i, subject: subj})
		}
	}

	s.cursor = 0
	for i, r := range s.rows {
		if r.kind != rowSubject {
			continue
		}
		if current == "" || r.subject.Code == current {
			s.cursor = i
			return
		}
	}
	s.moveCursor(1)
}

func (s *Screen) currentCode() string {
	if s.cursor < 0 || s.cursor >= len(s.rows) || s.rows[s.cursor].kind != rowSubject {
		return ""
	}
	return s.rows[s.cursor].subject.Code
}

// moveCursor moves the cursor by delta, skipping module headers.
func (s *Screen) moveCursor(delta int) {
	next := s.cursor + delta
	for next >= 0 && next < len(s.rows) {
		if s.rows[next].kind == rowSubject {
			s.cursor = next
			return
		}
		next += delta
	}
}

// jumpModule moves the cursor to the first subject of the next or previous
// module.
func (s *Screen) jumpModule(dir int) {
	target := s.rows[s.cursor].module + dir
	for i, r := range s.rows {
		if r.kind == rowSubject && r.module == target {
			s.cursor = i
			return
		}
	}
}

// adjustScroll keeps the cursor and its module header in view.
func (s *Screen) adjustScroll(height int) {
	if height <= 0 {
		return
	}
	headerRow := s.cursor
	for headerRow > 0 && s.rows[headerRow-1].kind == rowModuleHeader {
		headerRow--
	}
	if headerRow < s.scrollOffset {
		s.scrollOffset = headerRow
	}
	if s.cursor >= s.scrollOffset+height {
		s.scrollOffset = s.cursor - height + 1
	}
}

// selectSubject starts an available subject, opens a started one and
// explains what a locked one is missing.
func (s *Screen) selectSubject() tea.Cmd {
	r := s.rows[s.cursor]
	if r.kind != rowSubject {
		return nil
	}
	code := r.subject.Code
	s.flash = ""
	s.unlocked = nil

	switch s.state.Classify(code) {
	case board.Available:
		svc := s.svc
		return func() tea.Msg {
			res, err := svc.Start(context.Background(), code)
			return startedMsg{Result: res, Err: err}
		}
	case board.Started:
		rec, _ := s.state.Record(code)
		detail := subject.New(s.svc, s.state, r.subject, rec)
		return func() tea.Msg { return router.PushScreenMsg{Screen: detail} }
	default:
		s.flash = "Falta: " + s.missingList(code)
		return nil
	}
}

func (s *Screen) missingList(code string) string {
	var parts []string
	for _, req := range s.state.MissingRequirements(code) {
		name := req.ID
		if subj, ok := s.state.Subject(req.ID); ok {
			name = subj.Name
		}
		parts = append(parts, fmt.Sprintf("%s (%s)", name, req.Type))
	}
	return strings.Join(parts, ", ")
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
			Render("\n\n  Cargando plan...")
	}

	top := s.renderSummary(width)
	listHeight := max(height-lipgloss.Height(top)-1, 0)

	s.adjustScroll(listHeight)

	var lines []string
	for i, r := range s.rows {
		if i < s.scrollOffset {
			continue
		}
		if len(lines) >= listHeight {
			break
		}
		switch r.kind {
		case rowModuleHeader:
			lines = append(lines, s.renderModuleHeader(r.title, width))
		case rowSubject:
			lines = append(lines, s.renderSubjectRow(r, i == s.cursor, width))
		}
	}

	return top + "\n" + strings.Join(lines, "\n")
}

func (s *Screen) renderSummary(width int) string {
	bar := components.NewProgressBar("Progreso", s.report.ProgressPercent, true, min(width-4, 60))
	info := fmt.Sprintf("Promocionadas %d  Regularizadas %d  Cursando %d  Horas semanales %d  Promedio %s",
		s.report.PromotedSubjects,
		s.report.RegularizedSubjects,
		s.report.InProgressSubjects,
		s.report.WeeklyHours,
		s.report.AverageLabel(),
	)

	var b strings.Builder
	b.WriteString("  " + bar.View() + "\n")
	b.WriteString("  " + theme.Hint.Render(info))
	if s.flash != "" {
		b.WriteString("\n  " + theme.Warning.Render(s.flash))
	}
	if len(s.unlocked) > 0 {
		b.WriteString("\n  " + lipgloss.NewStyle().Foreground(theme.Success).
			Render("Nuevas disponibles: "+strings.Join(s.unlocked, ", ")))
	}
	return b.String()
}

func (s *Screen) renderModuleHeader(title string, width int) string {
	return theme.Section.
		Width(width).
		Padding(1, 0, 0, 2).
		Render(strings.ToUpper(title))
}

func (s *Screen) renderSubjectRow(r row, selected bool, width int) string {
	code := r.subject.Code
	avail := s.state.Classify(code)
	tag, _ := s.state.Effective(code)

	label := "Bloqueada"
	switch avail {
	case board.Available:
		label = "Disponible"
	case board.Started:
		label = tag.Label()
	}

	padding := 4
	iconWidth := 3
	codeWidth := 6
	labelWidth := 16
	spacing := 4
	nameWidth := max(width-padding-iconWidth-codeWidth-labelWidth-spacing, 10)

	name := r.subject.Name
	if r.subject.Elective {
		name += " (E)"
	}
	if len([]rune(name)) > nameWidth {
		name = string([]rune(name)[:nameWidth-1]) + "…"
	}

	var nameStyle, labelStyle lipgloss.Style
	switch {
	case selected:
		nameStyle = theme.Selected
		labelStyle = lipgloss.NewStyle().Foreground(theme.Primary)
	case avail == board.Started:
		nameStyle = lipgloss.NewStyle().Foreground(theme.Text)
		labelStyle = lipgloss.NewStyle().Foreground(theme.StatusColor(tag))
	case avail == board.Available:
		nameStyle = lipgloss.NewStyle().Foreground(theme.Text)
		labelStyle = lipgloss.NewStyle().Foreground(theme.Secondary)
	default:
		nameStyle = lipgloss.NewStyle().Foreground(theme.TextDim)
		labelStyle = lipgloss.NewStyle().Foreground(theme.TextDim)
	}

	cursor := "  "
	if selected {
		cursor = "▸ "
	}
	icon := tag.Icon()
	if avail == board.Locked {
		icon = "·"
	}

	return fmt.Sprintf("  %s%s %s %s  %s",
		cursor,
		icon,
		lipgloss.NewStyle().Foreground(theme.TextDim).Render(fmt.Sprintf("%-*s", codeWidth, code)),
		nameStyle.Render(fmt.Sprintf("%-*s", nameWidth, name)),
		labelStyle.Render(fmt.Sprintf("%*s", labelWidth, label)),
	)
}
