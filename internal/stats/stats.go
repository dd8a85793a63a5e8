// Package stats aggregates a student's progress over a board: counts per
// status tier, weekly load, average grade and completion percentage.
package stats

import (
	"math"

	"github.com/abhisek/utntracker/internal/board"
	"github.com/abhisek/utntracker/internal/grade"
	"github.com/abhisek/utntracker/internal/plan"
	"github.com/abhisek/utntracker/internal/record"
	"github.com/abhisek/utntracker/internal/status"
)

// Report is the aggregate view of a board.
type Report struct {
	TotalSubjects       int     `json:"totalSubjects"`
	ApprovedSubjects    int     `json:"approvedSubjects"`
	PromotedSubjects    int     `json:"promotedSubjects"`
	RegularizedSubjects int     `json:"regularizedSubjects"`
	InProgressSubjects  int     `json:"inProgressSubjects"`
	WeeklyHours         int     `json:"weeklyHours"`
	AverageGrade        float64 `json:"averageGrade"`
	GradedSubjects      int     `json:"gradedSubjects"`
	ProgressPercent     int     `json:"progressPercent"`
	AvailableSubjects   int     `json:"availableSubjects"`
}

// AverageLabel renders the average grade, or a dash when nothing is graded.
func (r Report) AverageLabel() string {
	if r.GradedSubjects == 0 {
		return grade.Format(math.NaN())
	}
	return grade.Format(r.AverageGrade)
}

// Input is what Compute aggregates over.
type Input struct {
	// Subjects are counted in the total.
	Subjects []plan.Subject
	// Extra subjects (placed electives) count toward progress but not the
	// total; ElectiveSlots stands in for them.
	Extra         []plan.Subject
	ElectiveSlots int
	Lookup        record.Lookup
}

// Compute aggregates in. Effective statuses are used throughout.
func Compute(in Input) Report {
	rep := Report{TotalSubjects: len(in.Subjects) + max(in.ElectiveSlots, 0)}

	var gradeSum float64
	all := make([]plan.Subject, 0, len(in.Subjects)+len(in.Extra))
	all = append(all, in.Subjects...)
	all = append(all, in.Extra...)

	if in.Lookup == nil {
		in.Lookup = record.MapLookup(nil)
	}
	for _, s := range all {
		if board.Classify(s, in.Lookup) == board.Available {
			rep.AvailableSubjects++
		}
		r, ok := in.Lookup(s.Code)
		if !ok {
			continue
		}
		tag := r.Effective()
		switch {
		case tag.Approved():
			rep.ApprovedSubjects++
			if tag == status.Promocionada {
				rep.PromotedSubjects++
			}
			if g, ok := Grade(r); ok {
				gradeSum += g
				rep.GradedSubjects++
			}
		case tag == status.Regularizada:
			rep.RegularizedSubjects++
		}
		if !tag.Terminal() {
			rep.InProgressSubjects++
			rep.WeeklyHours += s.WeekHours
		}
	}

	if rep.GradedSubjects > 0 {
		rep.AverageGrade = grade.Round2(gradeSum / float64(rep.GradedSubjects))
	}
	if rep.TotalSubjects > 0 {
		p := (float64(rep.ApprovedSubjects) + float64(rep.RegularizedSubjects)/2) / float64(rep.TotalSubjects) * 100
		rep.ProgressPercent = int(grade.RoundHalfUp(p))
	}
	return rep
}

// ForBoard aggregates a plan-backed board, counting placed electives
// against the plan's elective slots.
func ForBoard(st *board.State) Report {
	in := Input{Lookup: st.Lookup()}
	p := st.Plan()
	if p == nil {
		in.Subjects = st.Subjects()
		return Compute(in)
	}
	in.Subjects = p.Subjects()
	in.ElectiveSlots = p.ElectiveSlots()
	for _, pl := range st.Placements() {
		if s, ok := st.Subject(pl.Code); ok {
			in.Extra = append(in.Extra, s)
		}
	}
	return Compute(in)
}

// Grade extracts the grade a completed subject contributes to the average:
// the first passing final for Aprobada, the rounded mean of the last partial
// grades for Promocionada.
func Grade(r record.Record) (float64, bool) {
	switch r.Effective() {
	case status.Aprobada:
		for i := 0; i < status.FinalAttempts; i++ {
			if v := grade.Parse(r.Attempts.Final(i)); !math.IsNaN(v) && v >= status.DefaultThresholds.Pass {
				return v, true
			}
		}
	case status.Promocionada:
		p1, i1 := r.Attempts.LastParcial(status.Parcial1)
		p2, i2 := r.Attempts.LastParcial(status.Parcial2)
		if i1 > 0 && i2 > 0 {
			return grade.RoundHalfUp((p1 + p2) / 2), true
		}
	}
	return 0, false
}
