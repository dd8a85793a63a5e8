// Package board evaluates the prerequisite graph of a plan against a
// student's records: which subjects are locked, available or started, and
// what each one unlocks.
package board

import (
	"maps"
	"slices"

	"github.com/abhisek/utntracker/internal/plan"
	"github.com/abhisek/utntracker/internal/record"
	"github.com/abhisek/utntracker/internal/status"
)

// Placement puts an elective from the catalogue on a board column.
type Placement struct {
	Code   string `json:"code"`
	Column int    `json:"colIndex"`
}

// Column is one rendered module with the electives placed on it.
type Column struct {
	Module   plan.Module
	Subjects []plan.Subject
}

// State is an immutable snapshot of the board: the subjects on it, the
// records of started subjects and the derived dependents index. Mutations
// return a new State.
type State struct {
	plan       *plan.Plan
	placements []Placement
	subjects   []plan.Subject
	byCode     map[string]plan.Subject
	records    map[string]record.Record
	dependents map[string][]Dependent
}

// New builds a state over an explicit subject list.
func New(subjects []plan.Subject, records map[string]record.Record) *State {
	st := &State{
		subjects: slices.Clone(subjects),
		byCode:   make(map[string]plan.Subject, len(subjects)),
		records:  maps.Clone(records),
	}
	if st.records == nil {
		st.records = make(map[string]record.Record)
	}
	for _, s := range st.subjects {
		st.byCode[s.Code] = s
	}
	st.dependents = BuildDependentsIndex(st.subjects)
	return st
}

// FromPlan builds a state over the plan's visible subjects plus the placed
// electives. Placements naming unknown electives are dropped.
func FromPlan(p *plan.Plan, placements []Placement, records map[string]record.Record) *State {
	subjects := p.Subjects()
	catalogue := make(map[string]plan.Subject)
	for _, e := range p.Electives() {
		catalogue[e.Code] = e
	}
	var kept []Placement
	onBoard := make(map[string]bool, len(subjects))
	for _, s := range subjects {
		onBoard[s.Code] = true
	}
	for _, pl := range placements {
		e, ok := catalogue[pl.Code]
		if !ok || onBoard[pl.Code] {
			continue
		}
		onBoard[pl.Code] = true
		subjects = append(subjects, e)
		kept = append(kept, pl)
	}
	st := New(subjects, records)
	st.plan = p
	st.placements = kept
	return st
}

// Plan returns the plan the state was built from, or nil.
func (st *State) Plan() *plan.Plan { return st.plan }

// Placements returns the electives placed on the board.
func (st *State) Placements() []Placement { return slices.Clone(st.placements) }

// Subjects returns the board subjects in board order.
func (st *State) Subjects() []plan.Subject { return slices.Clone(st.subjects) }

// Subject returns the board subject with the given code.
func (st *State) Subject(code string) (plan.Subject, bool) {
	s, ok := st.byCode[code]
	return s, ok
}

// Records returns a copy of the records on the board.
func (st *State) Records() map[string]record.Record { return maps.Clone(st.records) }

// Record returns the record of code, if started.
func (st *State) Record(code string) (record.Record, bool) {
	r, ok := st.records[code]
	return r, ok
}

// Lookup returns a record lookup over this state.
func (st *State) Lookup() record.Lookup {
	return st.Record
}

// Effective returns the effective status of code, if started.
func (st *State) Effective(code string) (status.Tag, bool) {
	return effectiveOf(st.Lookup(), code)
}

// Classify returns the availability of code. Unknown codes are locked.
func (st *State) Classify(code string) Availability {
	s, ok := st.byCode[code]
	if !ok {
		return Locked
	}
	return Classify(s, st.Lookup())
}

// MeetsCursar reports whether code's cursar requirements are met.
func (st *State) MeetsCursar(code string) bool {
	s, ok := st.byCode[code]
	if !ok {
		return false
	}
	return MeetsCursarRequirements(s, st.Lookup().Effective())
}

// Available returns the codes of available subjects in board order.
func (st *State) Available() []string {
	var out []string
	for _, s := range st.subjects {
		if Classify(s, st.Lookup()) == Available {
			out = append(out, s.Code)
		}
	}
	return out
}

// MissingRequirements returns the unmet cursar requirements of code.
func (st *State) MissingRequirements(code string) []plan.Requirement {
	s, ok := st.byCode[code]
	if !ok {
		return nil
	}
	return MissingCursarRequirements(s, st.Lookup().Effective())
}

// Dependents returns the subjects that list code as a requirement.
func (st *State) Dependents(code string) []Dependent {
	return slices.Clone(st.dependents[code])
}

// WithRecord returns a copy of the state with code's record replaced.
func (st *State) WithRecord(code string, r record.Record) *State {
	next := st.clone()
	next.records[code] = r
	return next
}

// WithoutRecord returns a copy of the state with code's record removed.
func (st *State) WithoutRecord(code string) *State {
	next := st.clone()
	delete(next.records, code)
	return next
}

// WithPlacements rebuilds the state with a new set of placed electives.
// It needs a plan-backed state.
func (st *State) WithPlacements(placements []Placement) *State {
	if st.plan == nil {
		return st
	}
	return FromPlan(st.plan, placements, st.records)
}

// Columns groups the board subjects by rendered module, appending each
// placed elective to its column. Out-of-range columns go to the last one.
func (st *State) Columns() []Column {
	if st.plan == nil {
		return []Column{{Module: plan.Module{ID: "all", Render: true}, Subjects: st.Subjects()}}
	}
	mods := st.plan.VisibleModules()
	cols := make([]Column, len(mods))
	for i, m := range mods {
		cols[i] = Column{Module: m, Subjects: slices.Clone(m.Subjects)}
	}
	if len(cols) == 0 {
		return cols
	}
	for _, pl := range st.placements {
		e, ok := st.byCode[pl.Code]
		if !ok {
			continue
		}
		i := min(max(pl.Column, 0), len(cols)-1)
		cols[i].Subjects = append(cols[i].Subjects, e)
	}
	return cols
}

// ModuleProgress is the approved count of one rendered column.
type ModuleProgress struct {
	Module   plan.Module
	Approved int
	Total    int
}

// Done reports whether every subject of the column is approved.
func (m ModuleProgress) Done() bool {
	return m.Total > 0 && m.Approved == m.Total
}

// Progress counts approved subjects per column, in column order.
func (st *State) Progress() []ModuleProgress {
	cols := st.Columns()
	out := make([]ModuleProgress, len(cols))
	for i, col := range cols {
		out[i] = ModuleProgress{Module: col.Module, Total: len(col.Subjects)}
		for _, s := range col.Subjects {
			if tag, ok := st.Effective(s.Code); ok && tag.Approved() {
				out[i].Approved++
			}
		}
	}
	return out
}

func (st *State) clone() *State {
	next := *st
	next.records = maps.Clone(st.records)
	return &next
}
