package summary

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/utntracker/internal/board"
	"github.com/abhisek/utntracker/internal/plan"
	"github.com/abhisek/utntracker/internal/record"
	"github.com/abhisek/utntracker/internal/stats"
	"github.com/abhisek/utntracker/internal/status"
)

func testState(t *testing.T) *board.State {
	t.Helper()
	p, err := plan.Builtin("k23")
	if err != nil {
		t.Fatalf("Builtin: %v", err)
	}
	return board.FromPlan(p, nil, map[string]record.Record{
		"AM1": {Status: status.Promocionada},
		"AGA": {Status: status.Regularizada},
	})
}

func TestSummaryScreen_Title(t *testing.T) {
	s := New(stats.Report{}, nil)
	if s.Title() != "Resumen" {
		t.Errorf("Title = %q, want %q", s.Title(), "Resumen")
	}
}

func TestSummaryScreen_Display(t *testing.T) {
	st := testState(t)
	s := New(stats.ForBoard(st), st)
	view := s.View(100, 40)
	if !strings.Contains(view, "1 de 41 materias aprobadas") {
		t.Errorf("expected approved count in view:\n%s", view)
	}
	if !strings.Contains(view, "Módulos") {
		t.Error("expected module breakdown")
	}
}

func TestSummaryScreen_NoBoard(t *testing.T) {
	s := New(stats.Report{TotalSubjects: 3}, nil)
	view := s.View(80, 24)
	if strings.Contains(view, "Módulos") {
		t.Error("module breakdown needs a board")
	}
}

func TestSummaryScreen_Navigation_Enter(t *testing.T) {
	s := New(stats.Report{}, nil)
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Error("expected a command on Enter (pop)")
	}
}

func TestSummaryScreen_Navigation_Esc(t *testing.T) {
	s := New(stats.Report{}, nil)
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if cmd == nil {
		t.Error("expected a command on Esc (pop)")
	}
}

func TestSummaryScreen_KeyHints(t *testing.T) {
	s := New(stats.Report{}, nil)
	hints := s.KeyHints()
	if len(hints) != 2 {
		t.Errorf("KeyHints length = %d, want 2", len(hints))
	}
}
