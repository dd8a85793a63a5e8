// Package status derives a subject's status from the grades of its partial
// and final exams, and decides which attempt fields the student should see.
package status

import (
	"math"

	"github.com/abhisek/utntracker/internal/grade"
)

// Hint is the placeholder shown on a revealed recovery attempt.
type Hint string

const (
	HintNone        Hint = ""
	HintMayPromote  Hint = "Puede promocionar"
	HintMustRecover Hint = "Debe Recuperar"
)

// Thresholds are the grade cut-offs used by the engine.
type Thresholds struct {
	Promote float64 // promotion tier
	Pass    float64 // regularize / pass tier
}

// DefaultThresholds are the university-wide cut-offs.
var DefaultThresholds = Thresholds{Promote: 8, Pass: 6}

// Visibility says how many attempt fields of each kind are shown.
type Visibility struct {
	Parcial1 int // 1..3
	Parcial2 int // 1..3
	Finals   int // 0..4
}

// Parcial returns the visible attempt count of track p.
func (v Visibility) Parcial(p Parcial) int {
	if p == Parcial1 {
		return v.Parcial1
	}
	return v.Parcial2
}

// View is the outcome of a status computation.
type View struct {
	Status  Tag
	Visible Visibility
	// Hints holds the placeholder of each track's second attempt when revealed.
	Hints [2]Hint
}

// Hint returns the placeholder of track p's revealed recovery attempt.
func (v View) Hint(p Parcial) Hint {
	return v.Hints[p-1]
}

// Compute evaluates a with the default thresholds.
func Compute(a AttemptSet) View {
	return DefaultThresholds.Compute(a)
}

// Compute derives the status of a and the attempt fields to show. It is pure
// and total: any string in any slot yields exactly one status.
//
// When a parcial has no grade at all the result is FaltanNotas, but recovery
// fields of the other parcial are still revealed so the student can keep
// typing.
func (t Thresholds) Compute(a AttemptSet) View {
	v := View{Visible: Visibility{Parcial1: 1, Parcial2: 1}}

	first1 := grade.Parse(a.Parcial(Parcial1, 0))
	first2 := grade.Parse(a.Parcial(Parcial2, 0))

	if !math.IsNaN(first1) && !math.IsNaN(first2) && first1 >= t.Promote && first2 >= t.Promote {
		v.Status = Promocionada
		return v
	}

	faltan := !a.hasNumber(Parcial1) || !a.hasNumber(Parcial2)

	// One parcial promoted on the first try: the other may still promote
	// with its first recovery.
	var candidate Parcial
	if !math.IsNaN(first1) && !math.IsNaN(first2) {
		switch {
		case first1 >= t.Promote && first2 < t.Promote:
			candidate = Parcial2
		case first2 >= t.Promote && first1 < t.Promote:
			candidate = Parcial1
		}
	}
	if candidate != 0 {
		v.reveal(candidate, 2, HintMayPromote)
		if second := grade.Parse(a.Parcial(candidate, 1)); !math.IsNaN(second) && second >= t.Promote {
			v.Status = Promocionada
			return v
		}
	}

	for _, p := range []Parcial{Parcial1, Parcial2} {
		first := grade.Parse(a.Parcial(p, 0))
		if math.IsNaN(first) || first >= t.Pass {
			continue
		}
		hint := HintMustRecover
		if p == candidate {
			hint = HintMayPromote
		}
		v.reveal(p, 2, hint)
		if second := grade.Parse(a.Parcial(p, 1)); !math.IsNaN(second) && second < t.Pass {
			v.reveal(p, 3, hint)
		}
	}

	last1, idx1 := a.LastParcial(Parcial1)
	last2, idx2 := a.LastParcial(Parcial2)

	if idx1 > 0 && idx2 > 0 && last1 >= t.Pass && last2 >= t.Pass {
		show := 1
		for i := 0; i < FinalAttempts; i++ {
			f := grade.Parse(a.Final(i))
			if math.IsNaN(f) {
				break
			}
			if f >= t.Pass {
				v.Status = Aprobada
				v.Visible.Finals = i + 1
				return v
			}
			show = i + 2
		}
		v.Visible.Finals = min(show, FinalAttempts)
		v.Status = Regularizada
		return v
	}

	if (idx1 == ParcialAttempts && last1 < t.Pass) || (idx2 == ParcialAttempts && last2 < t.Pass) {
		if faltan {
			v.Status = FaltanNotas
		} else {
			v.Status = Desaprobada
		}
		return v
	}

	switch {
	case faltan:
		v.Status = FaltanNotas
	case a.anyEmpty():
		v.Status = NoRegularizada
	default:
		v.Status = Desaprobada
	}
	return v
}

func (v *View) reveal(p Parcial, n int, h Hint) {
	if p == Parcial1 {
		v.Visible.Parcial1 = max(v.Visible.Parcial1, n)
	} else {
		v.Visible.Parcial2 = max(v.Visible.Parcial2, n)
	}
	v.Hints[p-1] = h
}
