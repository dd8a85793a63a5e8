package record

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/utntracker/internal/status"
)

func tagPtr(t status.Tag) *status.Tag { return &t }

func TestRecord_Effective(t *testing.T) {
	r := Record{Status: status.Regularizada}
	assert.Equal(t, status.Regularizada, r.Effective())

	r.Override = tagPtr(status.Aprobada)
	assert.Equal(t, status.Aprobada, r.Effective())

	r.Override = tagPtr("")
	assert.Equal(t, status.Regularizada, r.Effective())
}

func TestRecord_WithAttemptsClearsOverride(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	r := New(now).WithOverride(tagPtr(status.Promocionada), now)
	require.Equal(t, status.Promocionada, r.Effective())

	var a status.AttemptSet
	a.SetParcial(status.Parcial1, 0, "7")
	a.SetParcial(status.Parcial2, 0, "6")
	r = r.WithAttempts(a, now.Add(time.Hour))

	assert.Nil(t, r.Override)
	assert.Equal(t, status.Regularizada, r.Status)
	assert.Equal(t, status.Regularizada, r.Effective())
	assert.Equal(t, now.Add(time.Hour), r.SavedAt)
}

func TestRecord_JSON(t *testing.T) {
	raw := `{"values":{"parcial1_1":"9","parcial2_1":"8"},"status":"Promocionada","overrideStatus":"Aprobada","savedAt":"2025-11-02T14:03:00.000Z"}`
	var r Record
	require.NoError(t, json.Unmarshal([]byte(raw), &r))
	assert.Equal(t, "9", r.Attempts.Parcial(status.Parcial1, 0))
	assert.Equal(t, status.Aprobada, r.Effective())
	assert.Equal(t, 2025, r.SavedAt.Year())

	var started Record
	require.NoError(t, json.Unmarshal([]byte(`{"values":{},"status":"Faltan examenes","savedAt":"2025-03-10T12:00:00Z"}`), &started))
	assert.Equal(t, status.FaltanNotas, started.Status)
	assert.True(t, started.Attempts.IsEmpty())
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(nil)

	_, err := s.Get(ctx, "AM1")
	assert.ErrorIs(t, err, ErrNotFound)

	now := time.Now()
	require.NoError(t, s.Set(ctx, "AM1", New(now)))
	got, err := s.Get(ctx, "AM1")
	require.NoError(t, err)
	assert.Equal(t, status.FaltanNotas, got.Status)

	all, err := s.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, s.Remove(ctx, "AM1"))
	_, err = s.Get(ctx, "AM1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_CompareAndSet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(nil)
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.CompareAndSet(ctx, "AED", time.Time{}, New(t0)))
	assert.ErrorIs(t, s.CompareAndSet(ctx, "AED", time.Time{}, New(t0)), ErrConflict)

	t1 := t0.Add(time.Minute)
	require.NoError(t, s.CompareAndSet(ctx, "AED", t0, New(t1)))
	assert.ErrorIs(t, s.CompareAndSet(ctx, "AED", t0, New(t1)), ErrConflict)
	assert.ErrorIs(t, s.CompareAndSet(ctx, "LED", t0, New(t1)), ErrConflict)
}

func TestLookup_Effective(t *testing.T) {
	l := MapLookup(map[string]Record{
		"AM1": {Status: status.Regularizada, Override: tagPtr(status.Aprobada)},
	})
	eff := l.Effective()
	tag, ok := eff("AM1")
	assert.True(t, ok)
	assert.Equal(t, status.Aprobada, tag)
	_, ok = eff("AGA")
	assert.False(t, ok)
}
