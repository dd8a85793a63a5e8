// Package record defines the per-subject state a student saves and the
// store interface the rest of the tracker reads it through.
package record

import (
	"context"
	"errors"
	"time"

	"github.com/abhisek/utntracker/internal/status"
)

var (
	// ErrNotFound is returned by Get when no record exists for a code.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned by a compare-and-swap write that lost a race.
	ErrConflict = errors.New("record was modified concurrently")
)

// Record is the mutable state of one started subject.
type Record struct {
	Attempts status.AttemptSet `json:"values"`
	Status   status.Tag        `json:"status"`
	Override *status.Tag       `json:"overrideStatus,omitempty"`
	SavedAt  time.Time         `json:"savedAt"`
}

// Effective returns the override when present, else the computed status.
func (r Record) Effective() status.Tag {
	if r.Override != nil && *r.Override != "" {
		return *r.Override
	}
	return r.Status
}

// New returns the record of a freshly started subject.
func New(now time.Time) Record {
	return Record{Status: status.FaltanNotas, SavedAt: now}
}

// WithAttempts returns r with new grades, the status they compute and no
// override.
func (r Record) WithAttempts(a status.AttemptSet, now time.Time) Record {
	return Record{
		Attempts: a,
		Status:   status.Compute(a).Status,
		SavedAt:  now,
	}
}

// WithOverride returns r with a manual status. A nil tag clears it.
func (r Record) WithOverride(tag *status.Tag, now time.Time) Record {
	out := r
	if tag != nil {
		t := *tag
		out.Override = &t
	} else {
		out.Override = nil
	}
	out.SavedAt = now
	return out
}

// Store persists records by subject code.
type Store interface {
	Get(ctx context.Context, code string) (Record, error)
	Set(ctx context.Context, code string, r Record) error
	Remove(ctx context.Context, code string) error
	All(ctx context.Context) (map[string]Record, error)
}

// CASStore is implemented by stores that can reject writes made against a
// stale read. prev is the SavedAt of the record the caller read; the zero
// time means the caller expects no record.
type CASStore interface {
	Store
	CompareAndSet(ctx context.Context, code string, prev time.Time, r Record) error
}

// Lookup resolves a subject code to its record.
type Lookup func(code string) (Record, bool)

// EffectiveLookup resolves a subject code to its effective status.
type EffectiveLookup func(code string) (status.Tag, bool)

// MapLookup adapts a record map.
func MapLookup(m map[string]Record) Lookup {
	return func(code string) (Record, bool) {
		r, ok := m[code]
		return r, ok
	}
}

// Effective adapts a record lookup into an effective-status lookup.
func (l Lookup) Effective() EffectiveLookup {
	return func(code string) (status.Tag, bool) {
		if l == nil {
			return "", false
		}
		r, ok := l(code)
		if !ok {
			return "", false
		}
		return r.Effective(), true
	}
}
