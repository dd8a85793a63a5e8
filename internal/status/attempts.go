package status

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/abhisek/utntracker/internal/grade"
)

const (
	// ParcialAttempts is the number of tries per partial exam (first + two recoveries).
	ParcialAttempts = 3
	// FinalAttempts is the number of final exam tries.
	FinalAttempts = 4
)

// Parcial identifies one of the two partial-exam tracks.
type Parcial int

const (
	Parcial1 Parcial = 1
	Parcial2 Parcial = 2
)

// Other returns the opposite track.
func (p Parcial) Other() Parcial {
	if p == Parcial1 {
		return Parcial2
	}
	return Parcial1
}

// AttemptSet holds the raw values typed for each attempt. Index 0 is the
// first try. Empty strings are unrecorded attempts.
type AttemptSet struct {
	Parciales [2][ParcialAttempts]string
	Finals    [FinalAttempts]string
}

// Parcial returns the raw value of attempt i (0-based) of track p.
func (a AttemptSet) Parcial(p Parcial, i int) string {
	if p != Parcial1 && p != Parcial2 || i < 0 || i >= ParcialAttempts {
		return ""
	}
	return a.Parciales[p-1][i]
}

// SetParcial sets attempt i (0-based) of track p.
func (a *AttemptSet) SetParcial(p Parcial, i int, v string) {
	if p != Parcial1 && p != Parcial2 || i < 0 || i >= ParcialAttempts {
		return
	}
	a.Parciales[p-1][i] = v
}

// Final returns the raw value of final attempt i (0-based).
func (a AttemptSet) Final(i int) string {
	if i < 0 || i >= FinalAttempts {
		return ""
	}
	return a.Finals[i]
}

// IsEmpty reports whether no attempt has any value.
func (a AttemptSet) IsEmpty() bool {
	for _, track := range a.Parciales {
		for _, v := range track {
			if v != "" {
				return false
			}
		}
	}
	for _, v := range a.Finals {
		if v != "" {
			return false
		}
	}
	return true
}

// LastParcial returns the value and 1-based index of the highest attempt of
// track p holding a number. Index is 0 and value NaN when none does.
func (a AttemptSet) LastParcial(p Parcial) (float64, int) {
	for i := ParcialAttempts - 1; i >= 0; i-- {
		if v := grade.Parse(a.Parcial(p, i)); !math.IsNaN(v) {
			return v, i + 1
		}
	}
	return math.NaN(), 0
}

// hasNumber reports whether any attempt of track p parses as a number.
func (a AttemptSet) hasNumber(p Parcial) bool {
	_, idx := a.LastParcial(p)
	return idx > 0
}

// anyEmpty reports whether any of the ten slots is still blank.
func (a AttemptSet) anyEmpty() bool {
	for _, track := range a.Parciales {
		for _, v := range track {
			if v == "" {
				return true
			}
		}
	}
	for _, v := range a.Finals {
		if v == "" {
			return true
		}
	}
	return false
}

// FieldID returns the stable storage key of a partial attempt ("parcial1_2").
func FieldID(p Parcial, i int) string {
	return "parcial" + strconv.Itoa(int(p)) + "_" + strconv.Itoa(i+1)
}

// FinalFieldID returns the storage key of a final attempt ("final3").
func FinalFieldID(i int) string {
	return "final" + strconv.Itoa(i+1)
}

// Values flattens the set into the stored field map. Blank slots are omitted.
func (a AttemptSet) Values() map[string]string {
	out := make(map[string]string)
	for _, p := range []Parcial{Parcial1, Parcial2} {
		for i := 0; i < ParcialAttempts; i++ {
			if v := a.Parcial(p, i); v != "" {
				out[FieldID(p, i)] = v
			}
		}
	}
	for i, v := range a.Finals {
		if v != "" {
			out[FinalFieldID(i)] = v
		}
	}
	return out
}

// Set assigns a value by storage key.
func (a *AttemptSet) Set(field, v string) error {
	switch {
	case strings.HasPrefix(field, "parcial"):
		rest := strings.TrimPrefix(field, "parcial")
		track, attempt, ok := strings.Cut(rest, "_")
		if !ok {
			return fmt.Errorf("unknown attempt field %q", field)
		}
		p, err1 := strconv.Atoi(track)
		i, err2 := strconv.Atoi(attempt)
		if err1 != nil || err2 != nil || (p != 1 && p != 2) || i < 1 || i > ParcialAttempts {
			return fmt.Errorf("unknown attempt field %q", field)
		}
		a.Parciales[p-1][i-1] = v
	case strings.HasPrefix(field, "final"):
		i, err := strconv.Atoi(strings.TrimPrefix(field, "final"))
		if err != nil || i < 1 || i > FinalAttempts {
			return fmt.Errorf("unknown attempt field %q", field)
		}
		a.Finals[i-1] = v
	default:
		return fmt.Errorf("unknown attempt field %q", field)
	}
	return nil
}

// FromValues builds an AttemptSet from a stored field map. Unknown keys are
// ignored.
func FromValues(values map[string]string) AttemptSet {
	var a AttemptSet
	for k, v := range values {
		_ = a.Set(k, v)
	}
	return a
}

// MarshalJSON encodes the set as its field map.
func (a AttemptSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Values())
}

// UnmarshalJSON accepts a field map whose values may be strings, numbers or null.
func (a *AttemptSet) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*a = AttemptSet{}
	for k, v := range raw {
		var s string
		switch x := v.(type) {
		case nil:
		case string:
			s = x
		case float64:
			s = strconv.FormatFloat(x, 'f', -1, 64)
		default:
			continue
		}
		_ = a.Set(k, s)
	}
	return nil
}
