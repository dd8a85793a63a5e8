package status

import (
	"testing"
)

func attempts(p1, p2 []string, finals ...string) AttemptSet {
	var a AttemptSet
	for i, v := range p1 {
		a.SetParcial(Parcial1, i, v)
	}
	for i, v := range p2 {
		a.SetParcial(Parcial2, i, v)
	}
	for i, v := range finals {
		a.Finals[i] = v
	}
	return a
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name    string
		in      AttemptSet
		status  Tag
		visible Visibility
		hint1   Hint
		hint2   Hint
	}{
		{
			name:    "both firsts promote",
			in:      attempts([]string{"9"}, []string{"9"}),
			status:  Promocionada,
			visible: Visibility{1, 1, 0},
		},
		{
			name:    "both firsts promote ignores finals",
			in:      attempts([]string{"8"}, []string{"10"}, "2", "3"),
			status:  Promocionada,
			visible: Visibility{1, 1, 0},
		},
		{
			name:    "promotion candidate revealed",
			in:      attempts([]string{"9"}, []string{"5"}),
			status:  NoRegularizada,
			visible: Visibility{1, 2, 0},
			hint2:   HintMayPromote,
		},
		{
			name:    "promotion through single recovery",
			in:      attempts([]string{"9"}, []string{"5", "8"}),
			status:  Promocionada,
			visible: Visibility{1, 2, 0},
			hint2:   HintMayPromote,
		},
		{
			name:    "candidate at seven regularizes",
			in:      attempts([]string{"9"}, []string{"7"}),
			status:  Regularizada,
			visible: Visibility{1, 2, 1},
			hint2:   HintMayPromote,
		},
		{
			name:    "candidate recovery below promotion regularizes",
			in:      attempts([]string{"5", "7"}, []string{"8"}),
			status:  Regularizada,
			visible: Visibility{2, 1, 1},
			hint1:   HintMayPromote,
		},
		{
			name:    "candidate second recovery revealed",
			in:      attempts([]string{"4", "5"}, []string{"9"}),
			status:  NoRegularizada,
			visible: Visibility{3, 1, 0},
			hint1:   HintMayPromote,
		},
		{
			name:    "approved on second final",
			in:      attempts([]string{"7"}, []string{"6"}, "5", "7"),
			status:  Aprobada,
			visible: Visibility{1, 1, 2},
		},
		{
			name:    "approved on first final",
			in:      attempts([]string{"6,5"}, []string{"7"}, "6"),
			status:  Aprobada,
			visible: Visibility{1, 1, 1},
		},
		{
			name:    "regularized waiting for finals",
			in:      attempts([]string{"7"}, []string{"6"}),
			status:  Regularizada,
			visible: Visibility{1, 1, 1},
		},
		{
			name:    "regularized after failed finals",
			in:      attempts([]string{"7"}, []string{"6"}, "2", "4"),
			status:  Regularizada,
			visible: Visibility{1, 1, 3},
		},
		{
			name:    "four failed finals stays regularized",
			in:      attempts([]string{"7"}, []string{"6"}, "2", "4", "3", "5"),
			status:  Regularizada,
			visible: Visibility{1, 1, 4},
		},
		{
			name:    "gap in finals stops the walk",
			in:      attempts([]string{"7"}, []string{"6"}, "", "9"),
			status:  Regularizada,
			visible: Visibility{1, 1, 1},
		},
		{
			name:    "regularized through recovery",
			in:      attempts([]string{"4", "6"}, []string{"7"}),
			status:  Regularizada,
			visible: Visibility{2, 1, 1},
			hint1:   HintMustRecover,
		},
		{
			name:    "exhausted attempts fail",
			in:      attempts([]string{"4", "3", "2"}, []string{"7"}),
			status:  Desaprobada,
			visible: Visibility{3, 1, 0},
			hint1:   HintMustRecover,
		},
		{
			name:    "exhausted attempts with missing parcial",
			in:      attempts([]string{"4", "3", "2"}, nil),
			status:  FaltanNotas,
			visible: Visibility{3, 1, 0},
			hint1:   HintMustRecover,
		},
		{
			name:    "no grades at all",
			in:      AttemptSet{},
			status:  FaltanNotas,
			visible: Visibility{1, 1, 0},
		},
		{
			name:    "missing parcial still reveals recovery",
			in:      attempts([]string{"3"}, nil),
			status:  FaltanNotas,
			visible: Visibility{2, 1, 0},
			hint1:   HintMustRecover,
		},
		{
			name:    "garbage counts as missing",
			in:      attempts([]string{"abc"}, []string{"7"}),
			status:  FaltanNotas,
			visible: Visibility{1, 1, 0},
		},
		{
			name:    "pending recovery",
			in:      attempts([]string{"5"}, []string{"7"}),
			status:  NoRegularizada,
			visible: Visibility{2, 1, 0},
			hint1:   HintMustRecover,
		},
		{
			name:    "every slot filled without a match",
			in:      attempts([]string{"4", "x", "y"}, []string{"5", "z", "w"}, "a", "b", "c", "d"),
			status:  Desaprobada,
			visible: Visibility{2, 2, 0},
			hint1:   HintMustRecover,
			hint2:   HintMustRecover,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(tt.in)
			if got.Status != tt.status {
				t.Errorf("status = %q, want %q", got.Status, tt.status)
			}
			if got.Visible != tt.visible {
				t.Errorf("visible = %+v, want %+v", got.Visible, tt.visible)
			}
			if got.Hint(Parcial1) != tt.hint1 {
				t.Errorf("parcial1 hint = %q, want %q", got.Hint(Parcial1), tt.hint1)
			}
			if got.Hint(Parcial2) != tt.hint2 {
				t.Errorf("parcial2 hint = %q, want %q", got.Hint(Parcial2), tt.hint2)
			}
		})
	}
}

func TestCompute_Idempotent(t *testing.T) {
	in := attempts([]string{"4", "6"}, []string{"9"}, "5")
	before := in
	first := Compute(in)
	second := Compute(in)
	if first != second {
		t.Errorf("Compute not idempotent: %+v vs %+v", first, second)
	}
	if in != before {
		t.Error("Compute mutated its input")
	}
}

func TestCompute_AlwaysValid(t *testing.T) {
	values := []string{"", "0", "5", "5,9", "6", "7.5", "8", "10", "x", "-3"}
	// Walk a deterministic sample of combinations across all ten slots.
	for i := 0; i < 5000; i++ {
		var a AttemptSet
		n := i
		for p := 0; p < 2; p++ {
			for k := 0; k < ParcialAttempts; k++ {
				a.Parciales[p][k] = values[n%len(values)]
				n = n/len(values) + i*7
			}
		}
		for k := 0; k < FinalAttempts; k++ {
			a.Finals[k] = values[(n+k*3)%len(values)]
		}
		v := Compute(a)
		if !v.Status.Valid() {
			t.Fatalf("invalid status %q for %+v", v.Status, a)
		}
		if v.Visible.Parcial1 < 1 || v.Visible.Parcial1 > 3 || v.Visible.Parcial2 < 1 || v.Visible.Parcial2 > 3 {
			t.Fatalf("parcial visibility out of range: %+v", v.Visible)
		}
		if v.Visible.Finals < 0 || v.Visible.Finals > FinalAttempts {
			t.Fatalf("finals visibility out of range: %+v", v.Visible)
		}
		if v.Status != Aprobada && v.Status != Regularizada && v.Visible.Finals != 0 {
			t.Fatalf("finals shown for %q", v.Status)
		}
	}
}

func TestThresholds_Custom(t *testing.T) {
	th := Thresholds{Promote: 9, Pass: 4}
	got := th.Compute(attempts([]string{"8"}, []string{"8"}))
	if got.Status != Regularizada {
		t.Errorf("status = %q, want %q", got.Status, Regularizada)
	}
}
