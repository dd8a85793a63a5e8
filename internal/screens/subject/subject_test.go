package subject

import (
	"context"
	"fmt"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/utntracker/internal/plan"
	"github.com/abhisek/utntracker/internal/record"
	"github.com/abhisek/utntracker/internal/router"
	"github.com/abhisek/utntracker/internal/status"
	"github.com/abhisek/utntracker/internal/tracker"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func ctrlKey(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Mod: tea.ModCtrl}
}

type fixture struct {
	svc     *tracker.Service
	records *record.MemoryStore
}

func newFixture(t *testing.T, started ...string) *fixture {
	t.Helper()
	p, err := plan.Builtin("k23")
	if err != nil {
		t.Fatalf("Builtin: %v", err)
	}
	f := &fixture{records: record.NewMemoryStore(nil)}
	f.svc = tracker.NewService(p, f.records, tracker.Options{})
	for _, code := range started {
		if _, err := f.svc.Start(context.Background(), code); err != nil {
			t.Fatalf("Start %s: %v", code, err)
		}
	}
	return f
}

func (f *fixture) open(t *testing.T, code string) *Screen {
	t.Helper()
	st, err := f.svc.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	subj, _ := st.Subject(code)
	rec, _ := st.Record(code)
	s := New(f.svc, st, subj, rec)
	s.Init()
	return s
}

func typeText(s *Screen, text string) {
	for _, r := range text {
		s.Update(keyPress(r))
	}
}

func press(s *Screen, msg tea.Msg) tea.Cmd {
	_, cmd := s.Update(msg)
	return cmd
}

// finish runs a save command through the screen and returns the pop request
// it ends with.
func finish(t *testing.T, s *Screen, cmd tea.Cmd) router.PopScreenMsg {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	msg := cmd()
	if saved, ok := msg.(savedMsg); ok {
		if saved.Err != nil {
			t.Fatalf("save failed: %v", saved.Err)
		}
		next := press(s, msg)
		if next == nil {
			t.Fatal("expected a pop after saving")
		}
		msg = next()
	}
	pop, ok := msg.(router.PopScreenMsg)
	if !ok {
		t.Fatalf("got %T, want PopScreenMsg", msg)
	}
	return pop
}

func TestSubject_Title(t *testing.T) {
	f := newFixture(t, "AM1")
	s := f.open(t, "AM1")
	if s.Title() != "Análisis Matemático I" {
		t.Errorf("Title = %q", s.Title())
	}
}

func TestSubject_RevealsFieldsFromStatus(t *testing.T) {
	f := newFixture(t, "AM1")
	s := f.open(t, "AM1")

	if got := len(s.visibleFields(status.Compute(s.Attempts()))); got != 2 {
		t.Fatalf("visible fields = %d, want both first parciales", got)
	}

	typeText(s, "4")
	s.Update(specialKey(tea.KeyTab))
	if want := (field{parcial: status.Parcial1, index: 1}); s.focus != want {
		t.Fatalf("focus = %+v, want the revealed recovery %+v", s.focus, want)
	}
	s.Update(specialKey(tea.KeyTab))
	if want := (field{parcial: status.Parcial2, index: 0}); s.focus != want {
		t.Fatalf("focus = %+v, want %+v", s.focus, want)
	}
	typeText(s, "7")

	a := s.Attempts()
	if a.Parcial(status.Parcial1, 0) != "4" || a.Parcial(status.Parcial2, 0) != "7" {
		t.Fatalf("attempts = %+v", a)
	}
	view := status.Compute(a)
	if view.Visible.Parcial1 < 2 {
		t.Errorf("failing parcial 1 should reveal its recovery, visible %+v", view.Visible)
	}
	if !strings.Contains(s.View(100, 40), string(status.HintMustRecover)) {
		t.Error("expected the recovery hint in view")
	}
}

func TestSubject_FiltersNonGradeKeys(t *testing.T) {
	f := newFixture(t, "AM1")
	s := f.open(t, "AM1")

	typeText(s, "7x,5")
	if got := s.Attempts().Parcial(status.Parcial1, 0); got != "7,5" {
		t.Errorf("value = %q, want 7,5", got)
	}
}

func TestSubject_SaveGrades(t *testing.T) {
	f := newFixture(t, "AM1", "AGA")
	s := f.open(t, "AGA")

	typeText(s, "9")
	s.Update(specialKey(tea.KeyDown))
	typeText(s, "8")

	pop := finish(t, s, press(s, ctrlKey('s')))
	saved, ok := pop.Result.(SavedMsg)
	if !ok {
		t.Fatalf("pop result %T, want SavedMsg", pop.Result)
	}
	if saved.Result.Transition.To != status.Promocionada {
		t.Errorf("To = %q, want Promocionada", saved.Result.Transition.To)
	}

	rec, err := f.records.Get(context.Background(), "AGA")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.Status != status.Promocionada {
		t.Errorf("stored status = %q", rec.Status)
	}
}

func TestSubject_SaveWithoutChangesPops(t *testing.T) {
	f := newFixture(t, "AM1")
	s := f.open(t, "AM1")

	pop := finish(t, s, press(s, ctrlKey('s')))
	if pop.Result != nil {
		t.Errorf("unchanged editor should pop without a result, got %T", pop.Result)
	}
}

func TestSubject_Override(t *testing.T) {
	f := newFixture(t, "AM1")
	s := f.open(t, "AM1")

	s.Update(ctrlKey('o'))
	if s.override == nil || *s.override != status.AllTags()[0] {
		t.Fatalf("override = %v, want first status", s.override)
	}
	if !strings.Contains(s.View(100, 40), "forzado") {
		t.Error("expected override marker in view")
	}

	finish(t, s, press(s, ctrlKey('s')))
	rec, _ := f.records.Get(context.Background(), "AM1")
	if rec.Override == nil || *rec.Override != status.AllTags()[0] {
		t.Errorf("stored override = %v", rec.Override)
	}
}

func TestSubject_OverrideCycleClears(t *testing.T) {
	f := newFixture(t, "AM1")
	s := f.open(t, "AM1")

	for range status.AllTags() {
		s.cycleOverride()
	}
	if s.override == nil {
		t.Fatal("override should still hold the last status")
	}
	s.cycleOverride()
	if s.override != nil {
		t.Errorf("override = %v after full cycle, want none", *s.override)
	}
}

func TestSubject_Withdraw(t *testing.T) {
	f := newFixture(t, "AM1")
	s := f.open(t, "AM1")

	pop := finish(t, s, press(s, ctrlKey('d')))
	if _, ok := pop.Result.(SavedMsg); !ok {
		t.Errorf("pop result %T, want SavedMsg", pop.Result)
	}
	if _, err := f.records.Get(context.Background(), "AM1"); err == nil {
		t.Error("record should be removed")
	}
}

func TestSubject_SaveError(t *testing.T) {
	f := newFixture(t, "AM1")
	s := f.open(t, "AM1")
	if err := f.records.Remove(context.Background(), "AM1"); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	typeText(s, "7")
	cmd := press(s, ctrlKey('s'))
	press(s, cmd())
	if !strings.Contains(s.errMsg, "not started") {
		t.Errorf("errMsg = %q", s.errMsg)
	}
	if s.saving {
		t.Error("saving flag should reset on error")
	}
}

func TestSubject_ShowsRequirementsAndDependents(t *testing.T) {
	f := newFixture(t, "AM1")
	s := f.open(t, "AM1")

	view := s.View(120, 60)
	if !strings.Contains(view, "Habilita") {
		t.Error("expected dependents section")
	}
	if !strings.Contains(view, "Análisis Matemático II") {
		t.Error("expected AM2 among the dependents")
	}
}

func TestMergeResults(t *testing.T) {
	first := &tracker.Result{
		Transition: tracker.Transition{From: status.FaltanNotas, To: status.Regularizada},
		Unlocked:   []string{"AM2"},
	}
	second := &tracker.Result{
		Transition: tracker.Transition{From: status.Regularizada, To: status.Aprobada},
		Unlocked:   []string{"AM2", "PYE"},
	}
	got := mergeResults(first, second)
	if got.Transition.From != status.FaltanNotas || got.Transition.To != status.Aprobada {
		t.Errorf("transition = %+v", got.Transition)
	}
	if fmt.Sprint(got.Unlocked) != "[AM2 PYE]" {
		t.Errorf("unlocked = %v", got.Unlocked)
	}
	if mergeResults(nil, second) != second {
		t.Error("nil first should return second")
	}
}
