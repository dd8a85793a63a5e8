package board

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/utntracker/internal/plan"
	"github.com/abhisek/utntracker/internal/record"
	"github.com/abhisek/utntracker/internal/status"
)

func reg(id string) plan.Requirement { return plan.Requirement{ID: id, Type: plan.ReqRegularizada} }
func apr(id string) plan.Requirement { return plan.Requirement{ID: id, Type: plan.ReqAprobada} }

func rec(tag status.Tag) record.Record {
	return record.Record{Status: tag, SavedAt: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)}
}

func tagPtr(t status.Tag) *status.Tag { return &t }

func testSubjects() []plan.Subject {
	return []plan.Subject{
		{Code: "AM1", WeekHours: 5},
		{Code: "AGA", WeekHours: 5},
		{Code: "AM2", WeekHours: 5, Requirements: plan.Requirements{Cursar: []plan.Requirement{reg("AM1"), reg("AGA")}}},
		{Code: "ANN", WeekHours: 3, Requirements: plan.Requirements{
			Cursar:  []plan.Requirement{reg("AM2"), apr("AM1")},
			Aprobar: []plan.Requirement{apr("AM2")},
		}},
	}
}

func TestSatisfies(t *testing.T) {
	lookup := record.MapLookup(map[string]record.Record{
		"REG": rec(status.Regularizada),
		"APR": rec(status.Aprobada),
		"PRO": rec(status.Promocionada),
		"DES": rec(status.Desaprobada),
		"FAL": rec(status.FaltanNotas),
	}).Effective()

	tests := []struct {
		req  plan.Requirement
		want bool
	}{
		{reg("REG"), true},
		{reg("APR"), true},
		{reg("PRO"), true},
		{reg("DES"), false},
		{reg("FAL"), false},
		{reg("NONE"), false},
		{apr("REG"), false},
		{apr("APR"), true},
		{apr("PRO"), true},
		{apr("DES"), false},
		{plan.Requirement{Type: plan.ReqAprobada}, false},
	}
	for _, tt := range tests {
		if got := Satisfies(tt.req, lookup); got != tt.want {
			t.Errorf("Satisfies(%+v) = %v, want %v", tt.req, got, tt.want)
		}
	}
	if Satisfies(reg("REG"), nil) {
		t.Error("nil lookup should never satisfy")
	}
}

func TestMeetsCursarRequirements(t *testing.T) {
	subjects := testSubjects()
	am2 := subjects[2]

	empty := record.MapLookup(nil).Effective()
	assert.True(t, MeetsCursarRequirements(subjects[0], empty), "no requirements is always met")
	assert.False(t, MeetsCursarRequirements(am2, empty))

	partial := record.MapLookup(map[string]record.Record{"AM1": rec(status.Regularizada)}).Effective()
	assert.False(t, MeetsCursarRequirements(am2, partial))

	both := record.MapLookup(map[string]record.Record{
		"AM1": rec(status.Regularizada),
		"AGA": rec(status.Promocionada),
	}).Effective()
	assert.True(t, MeetsCursarRequirements(am2, both))

	self := plan.Subject{Code: "X", Requirements: plan.Requirements{Cursar: []plan.Requirement{reg("X")}}}
	selfLookup := record.MapLookup(map[string]record.Record{"X": rec(status.Aprobada)}).Effective()
	assert.False(t, MeetsCursarRequirements(self, selfLookup))
}

func TestMeetsCursarRequirements_Override(t *testing.T) {
	am2 := testSubjects()[2]
	records := map[string]record.Record{
		"AM1": rec(status.Desaprobada),
		"AGA": rec(status.Regularizada),
	}
	assert.False(t, MeetsCursarRequirements(am2, record.MapLookup(records).Effective()))

	overridden := records["AM1"]
	overridden.Override = tagPtr(status.Regularizada)
	records["AM1"] = overridden
	assert.True(t, MeetsCursarRequirements(am2, record.MapLookup(records).Effective()))

	// Saving grades clears the override and the computed status wins again.
	records["AM1"] = overridden.WithAttempts(status.AttemptSet{}, time.Now())
	assert.False(t, MeetsCursarRequirements(am2, record.MapLookup(records).Effective()))
}

func TestBuildDependentsIndex(t *testing.T) {
	idx := BuildDependentsIndex(testSubjects())

	assert.Equal(t, []Dependent{
		{DependentID: "AM2", Relation: RelationCursar, Type: plan.ReqRegularizada},
		{DependentID: "ANN", Relation: RelationCursar, Type: plan.ReqAprobada},
	}, idx["AM1"])
	assert.Equal(t, []Dependent{
		{DependentID: "ANN", Relation: RelationCursar, Type: plan.ReqRegularizada},
		{DependentID: "ANN", Relation: RelationAprobar, Type: plan.ReqAprobada},
	}, idx["AM2"])
	assert.Empty(t, idx["ANN"])
}

func TestClassify(t *testing.T) {
	st := New(testSubjects(), map[string]record.Record{
		"AM1": rec(status.Regularizada),
	})

	assert.Equal(t, Started, st.Classify("AM1"))
	assert.Equal(t, Available, st.Classify("AGA"))
	assert.Equal(t, Locked, st.Classify("AM2"))
	assert.Equal(t, Locked, st.Classify("NOPE"))
	assert.Equal(t, []string{"AGA"}, st.Available())
	assert.Equal(t, "locked", Locked.String())
}

func TestState_NewlyUnlocked(t *testing.T) {
	st := New(testSubjects(), map[string]record.Record{
		"AM1": rec(status.Regularizada),
		"AGA": rec(status.FaltanNotas),
	})
	before := st.Available()
	assert.Empty(t, before)

	next := st.WithRecord("AGA", rec(status.Regularizada))
	assert.Equal(t, []string{"AM2"}, NewlyUnlocked(before, next.Available()))

	// The original state is untouched.
	tag, ok := st.Effective("AGA")
	require.True(t, ok)
	assert.Equal(t, status.FaltanNotas, tag)

	back := next.WithoutRecord("AGA")
	assert.Equal(t, []string{"AGA"}, back.Available())
}

func TestNewlyUnlocked(t *testing.T) {
	assert.Equal(t, []string{"B", "D"}, NewlyUnlocked([]string{"A", "C"}, []string{"D", "A", "B", "B"}))
	assert.Empty(t, NewlyUnlocked([]string{"A"}, []string{"A"}))
	assert.Empty(t, NewlyUnlocked([]string{"A"}, nil))
}

func TestState_MissingRequirements(t *testing.T) {
	st := New(testSubjects(), map[string]record.Record{
		"AM1": rec(status.Regularizada),
		"AM2": rec(status.Regularizada),
	})
	assert.Equal(t, []plan.Requirement{reg("AGA")}, st.MissingRequirements("AM2"))
	assert.Equal(t, []plan.Requirement{apr("AM1")}, st.MissingRequirements("ANN"))
	assert.Nil(t, st.MissingRequirements("AM1"))
}

func TestFromPlan_Electives(t *testing.T) {
	p, err := plan.Builtin("k23")
	require.NoError(t, err)

	st := FromPlan(p, []Placement{
		{Code: "CSH", Column: 2},
		{Code: "UXD", Column: 99},
		{Code: "AM1", Column: 0},  // not an elective
		{Code: "NOPE", Column: 0}, // unknown
		{Code: "CSH", Column: 3},  // already placed
	}, nil)

	assert.Len(t, st.Subjects(), len(p.Subjects())+2)
	assert.Equal(t, []Placement{{Code: "CSH", Column: 2}, {Code: "UXD", Column: 99}}, st.Placements())
	assert.Equal(t, Available, st.Classify("CSH"))
	assert.Equal(t, Locked, st.Classify("UXD"))

	cols := st.Columns()
	require.Len(t, cols, 5)
	assert.Equal(t, "CSH", cols[2].Subjects[len(cols[2].Subjects)-1].Code)
	assert.Equal(t, "UXD", cols[4].Subjects[len(cols[4].Subjects)-1].Code)

	// DIS is required by the placed UXD elective.
	var found bool
	for _, d := range st.Dependents("DIS") {
		if d.DependentID == "UXD" {
			found = true
		}
	}
	assert.True(t, found)

	cleared := st.WithPlacements(nil)
	assert.Len(t, cleared.Subjects(), len(p.Subjects()))
}

func TestState_Progress(t *testing.T) {
	p, err := plan.Builtin("k23")
	require.NoError(t, err)

	st := FromPlan(p, []Placement{{Code: "CSH", Column: 0}}, map[string]record.Record{
		"AM1": rec(status.Promocionada),
		"AGA": rec(status.Regularizada),
		"CSH": rec(status.Aprobada),
	})

	prog := st.Progress()
	require.Len(t, prog, len(st.Columns()))
	assert.Equal(t, "Primer año", prog[0].Module.Name)
	assert.Equal(t, 9, prog[0].Total, "placed elective joins its column")
	assert.Equal(t, 2, prog[0].Approved)
	assert.False(t, prog[0].Done())
	assert.Zero(t, prog[1].Approved)

	assert.True(t, ModuleProgress{Approved: 3, Total: 3}.Done())
	assert.False(t, ModuleProgress{}.Done())
}
