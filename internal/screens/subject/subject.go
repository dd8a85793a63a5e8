// Package subject is the editor of one started subject: its attempt grades,
// the status they compute, a manual override and the withdraw action.
package subject

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/utntracker/internal/board"
	"github.com/abhisek/utntracker/internal/plan"
	"github.com/abhisek/utntracker/internal/record"
	"github.com/abhisek/utntracker/internal/router"
	"github.com/abhisek/utntracker/internal/screen"
	"github.com/abhisek/utntracker/internal/status"
	"github.com/abhisek/utntracker/internal/tracker"
	"github.com/abhisek/utntracker/internal/ui/components"
	"github.com/abhisek/utntracker/internal/ui/layout"
	"github.com/abhisek/utntracker/internal/ui/theme"
)

// SavedMsg is delivered to the screen underneath when the editor closes
// after a change.
type SavedMsg struct {
	Result *tracker.Result
}

type savedMsg struct {
	Result *tracker.Result
	Err    error
}

// field addresses one attempt input.
type field struct {
	parcial status.Parcial // 0 for finals
	index   int
}

// Screen edits the record of a started subject.
type Screen struct {
	svc     *tracker.Service
	state   *board.State
	subject plan.Subject
	rec     record.Record

	inputs   map[field]*components.GradeInput
	focus    field
	override *status.Tag
	saving   bool
	errMsg   string
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)

// New creates the editor for subj with its current record.
func New(svc *tracker.Service, st *board.State, subj plan.Subject, rec record.Record) *Screen {
	s := &Screen{
		svc:     svc,
		state:   st,
		subject: subj,
		rec:     rec,
		inputs:  make(map[field]*components.GradeInput),
		focus:   field{parcial: status.Parcial1},
	}
	if rec.Override != nil {
		t := *rec.Override
		s.override = &t
	}
	for _, p := range []status.Parcial{status.Parcial1, status.Parcial2} {
		for i := 0; i < status.ParcialAttempts; i++ {
			in := components.NewGradeInput(attemptLabel(p, i), rec.Attempts.Parcial(p, i))
			s.inputs[field{parcial: p, index: i}] = &in
		}
	}
	for i := 0; i < status.FinalAttempts; i++ {
		in := components.NewGradeInput(fmt.Sprintf("Final %d", i+1), rec.Attempts.Final(i))
		s.inputs[field{index: i}] = &in
	}
	return s
}

func attemptLabel(p status.Parcial, i int) string {
	if i == 0 {
		return fmt.Sprintf("Parcial %d", p)
	}
	return fmt.Sprintf("Recup. %d.%d", p, i)
}

func (s *Screen) Init() tea.Cmd {
	return s.focusCurrent()
}

func (s *Screen) Title() string {
	return s.subject.Name
}

func (s *Screen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Campo"},
		{Key: "Ctrl+S", Description: "Guardar"},
		{Key: "Ctrl+O", Description: "Forzar estado"},
		{Key: "Ctrl+D", Description: "Dar de baja"},
		{Key: "Esc", Description: "Volver"},
	}
}

// Attempts returns the values currently typed.
func (s *Screen) Attempts() status.AttemptSet {
	var a status.AttemptSet
	for f, in := range s.inputs {
		v := strings.TrimSpace(in.Value())
		if f.parcial == 0 {
			a.Finals[f.index] = v
		} else {
			a.SetParcial(f.parcial, f.index, v)
		}
	}
	return a
}

// visibleFields lists the inputs the status engine reveals for the current
// values, in display order.
func (s *Screen) visibleFields(v status.View) []field {
	var out []field
	for _, p := range []status.Parcial{status.Parcial1, status.Parcial2} {
		for i := 0; i < v.Visible.Parcial(p); i++ {
			out = append(out, field{parcial: p, index: i})
		}
	}
	for i := 0; i < v.Visible.Finals; i++ {
		out = append(out, field{index: i})
	}
	return out
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case savedMsg:
		s.saving = false
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		res := msg.Result
		return s, func() tea.Msg {
			return router.PopScreenMsg{Result: SavedMsg{Result: res}}
		}

	case tea.KeyMsg:
		if s.saving {
			return s, nil
		}
		switch msg.String() {
		case "up", "shift+tab":
			return s, s.moveFocus(-1)
		case "down", "tab", "enter":
			return s, s.moveFocus(1)
		case "ctrl+s":
			return s, s.save()
		case "ctrl+d":
			return s, s.withdraw()
		case "ctrl+o":
			s.cycleOverride()
			return s, nil
		}
	}

	in := s.inputs[s.focus]
	updated, cmd := in.Update(msg)
	*in = updated
	s.errMsg = ""
	return s, cmd
}

func (s *Screen) moveFocus(delta int) tea.Cmd {
	fields := s.visibleFields(status.Compute(s.Attempts()))
	i := indexOf(fields, s.focus)
	s.inputs[s.focus].Blur()
	s.focus = fields[(i+delta+len(fields))%len(fields)]
	return s.inputs[s.focus].Focus()
}

func (s *Screen) focusCurrent() tea.Cmd {
	fields := s.visibleFields(status.Compute(s.Attempts()))
	if indexOf(fields, s.focus) < 0 {
		s.focus = fields[0]
	}
	return s.inputs[s.focus].Focus()
}

// indexOf returns the position of f in fields, or -1.
func indexOf(fields []field, f field) int {
	for i, x := range fields {
		if x == f {
			return i
		}
	}
	return -1
}

// cycleOverride steps the pending override through every status and back
// to none.
func (s *Screen) cycleOverride() {
	tags := status.AllTags()
	if s.override == nil {
		t := tags[0]
		s.override = &t
		return
	}
	for i, t := range tags {
		if t == *s.override && i+1 < len(tags) {
			next := tags[i+1]
			s.override = &next
			return
		}
	}
	s.override = nil
}

func (s *Screen) overrideChanged() bool {
	switch {
	case s.override == nil && s.rec.Override == nil:
		return false
	case s.override == nil || s.rec.Override == nil:
		return true
	}
	return *s.override != *s.rec.Override
}

// save writes the grades when they changed, then applies the pending
// override. Saving grades clears any stored override.
func (s *Screen) save() tea.Cmd {
	svc := s.svc
	code := s.subject.Code
	attempts := s.Attempts()
	gradesChanged := attempts != s.rec.Attempts
	overrideChanged := s.overrideChanged()
	var override *status.Tag
	if s.override != nil {
		t := *s.override
		override = &t
	}
	hadOverride := s.rec.Override != nil

	if !gradesChanged && !overrideChanged {
		return func() tea.Msg { return router.PopScreenMsg{} }
	}

	s.saving = true
	return func() tea.Msg {
		ctx := context.Background()
		var res *tracker.Result
		if gradesChanged {
			r, err := svc.SaveGrades(ctx, code, attempts)
			if err != nil {
				return savedMsg{Err: err}
			}
			res = r
		}
		switch {
		case override != nil && (gradesChanged || overrideChanged):
			r, err := svc.SetOverride(ctx, code, *override)
			if err != nil {
				return savedMsg{Err: err}
			}
			res = mergeResults(res, r)
		case override == nil && hadOverride && !gradesChanged:
			r, err := svc.ClearOverride(ctx, code)
			if err != nil {
				return savedMsg{Err: err}
			}
			res = mergeResults(res, r)
		}
		return savedMsg{Result: res}
	}
}

// mergeResults folds two consecutive results into one spanning both.
func mergeResults(first, second *tracker.Result) *tracker.Result {
	if first == nil {
		return second
	}
	out := *second
	out.Transition.From = first.Transition.From
	seen := make(map[string]bool)
	out.Unlocked = nil
	for _, code := range append(first.Unlocked, second.Unlocked...) {
		if !seen[code] {
			seen[code] = true
			out.Unlocked = append(out.Unlocked, code)
		}
	}
	return &out
}

func (s *Screen) withdraw() tea.Cmd {
	svc := s.svc
	code := s.subject.Code
	s.saving = true
	return func() tea.Msg {
		res, err := svc.Withdraw(context.Background(), code)
		return savedMsg{Result: res, Err: err}
	}
}

func (s *Screen) View(width, height int) string {
	view := status.Compute(s.Attempts())
	effective := view.Status
	if s.override != nil {
		effective = *s.override
	}

	var b strings.Builder
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)

	b.WriteString(lipgloss.NewStyle().
		Foreground(theme.StatusColor(effective)).
		Bold(true).
		Render(fmt.Sprintf("  %s  %s", effective.Icon(), effective.Label())))
	if s.override != nil {
		b.WriteString(dim.Render(fmt.Sprintf("   forzado (calculado: %s)", view.Status.Label())))
	}
	b.WriteString("\n")
	b.WriteString(dim.Render(fmt.Sprintf("  %s · %d hs semanales", s.subject.Code, s.subject.WeekHours)))
	b.WriteString("\n\n")

	fields := s.visibleFields(view)
	for i, f := range fields {
		in := s.inputs[f]
		in.Hint = ""
		if f.parcial != 0 && f.index == 1 {
			in.Hint = string(view.Hint(f.parcial))
		}
		if i > 0 && f.parcial != fields[i-1].parcial {
			b.WriteString("\n")
		}
		b.WriteString("  " + in.View(f == s.focus) + "\n")
	}
	b.WriteString("\n")

	if s.errMsg != "" {
		b.WriteString("  " + theme.Danger.Render(s.errMsg) + "\n\n")
	}
	if s.saving {
		b.WriteString("  " + theme.Hint.Render("Guardando...") + "\n\n")
	}

	s.renderRequirements(&b, "Para cursar", s.subject.Requirements.Cursar)
	s.renderRequirements(&b, "Para aprobar", s.subject.Requirements.Aprobar)

	if deps := s.state.Dependents(s.subject.Code); len(deps) > 0 {
		b.WriteString(theme.Section.Render("  Habilita"))
		b.WriteString("\n")
		for _, d := range deps {
			name := d.DependentID
			if subj, ok := s.state.Subject(d.DependentID); ok {
				name = subj.Name
			}
			b.WriteString(dim.Render(fmt.Sprintf("  → %s (%s, %s)", name, d.Relation, d.Type)))
			b.WriteString("\n")
		}
	}

	return lipgloss.Place(width, height, lipgloss.Left, lipgloss.Top, "\n"+b.String())
}

func (s *Screen) renderRequirements(b *strings.Builder, title string, reqs []plan.Requirement) {
	if len(reqs) == 0 {
		return
	}
	lookup := s.state.Lookup().Effective()
	b.WriteString(theme.Section.Render("  " + title))
	b.WriteString("\n")
	for _, r := range reqs {
		name := r.ID
		if subj, ok := s.state.Subject(r.ID); ok {
			name = subj.Name
		}
		icon := "○"
		style := lipgloss.NewStyle().Foreground(theme.TextDim)
		if board.Satisfies(r, lookup) {
			icon = "●"
			style = lipgloss.NewStyle().Foreground(theme.Success)
		}
		b.WriteString(style.Render(fmt.Sprintf("  %s %s (%s)", icon, name, r.Type)))
		b.WriteString("\n")
	}
	b.WriteString("\n")
}
