package profile

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/utntracker/internal/board"
	"github.com/abhisek/utntracker/internal/plan"
	"github.com/abhisek/utntracker/internal/record"
	"github.com/abhisek/utntracker/internal/status"
)

const sampleDoc = `{
  "plan": "k23",
  "yearStarted": 2023,
  "public": true,
  "subjectData": {
    "AM1": {"values": {"parcial1_1": "9", "parcial2_1": 8}, "status": "Promocionada", "savedAt": 1712345678901},
    "AGA": {"values": {}, "status": "Faltan examenes"},
    "FIS1": {"values": {}, "status": "Regularizada", "overrideStatus": "Aprobada"},
    "LED": "garbage",
    "ACO": null
  },
  "electives": {"GDI": {"colIndex": 3}, "CSH": {"colIndex": 1}},
  "selectedStats": ["approvedSubjects", "averageGrade"]
}`

func TestValidUID(t *testing.T) {
	tests := map[string]bool{
		"abc_DEF-123": true,
		"":            false,
		"../etc":      false,
		"a b":         false,
		"x.json":      false,
	}
	for uid, want := range tests {
		assert.Equal(t, want, ValidUID(uid), uid)
	}
	assert.True(t, ValidUID(NewUID()))
}

func TestProfile_Records(t *testing.T) {
	var p Profile
	require.NoError(t, json.Unmarshal([]byte(sampleDoc), &p))

	recs := p.Records()
	assert.Len(t, recs, 3, "garbage and null entries are skipped")
	assert.Equal(t, status.Promocionada, recs["AM1"].Effective())
	assert.Equal(t, "8", recs["AM1"].Attempts.Parcial(status.Parcial2, 0))
	assert.Equal(t, status.FaltanNotas, recs["AGA"].Status)
	assert.Equal(t, status.Aprobada, recs["FIS1"].Effective())

	assert.Equal(t, []board.Placement{{Code: "CSH", Column: 1}, {Code: "GDI", Column: 3}}, p.Placements())
	assert.JSONEq(t, `["approvedSubjects", "averageGrade"]`, string(p.SelectedStats))
	require.NotNil(t, p.YearStarted)
	assert.Equal(t, 2023, *p.YearStarted)
}

func TestFromBoard(t *testing.T) {
	k23, err := plan.Builtin("k23")
	require.NoError(t, err)
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	var a status.AttemptSet
	a.SetParcial(status.Parcial1, 0, "7")
	st := board.FromPlan(k23, []board.Placement{{Code: "CSH", Column: 2}}, map[string]record.Record{
		"AM1": record.New(now).WithAttempts(a, now),
	})

	p, err := FromBoard("u1", "k23", st)
	require.NoError(t, err)
	assert.Equal(t, map[string]Placement{"CSH": {ColIndex: 2}}, p.Electives)
	assert.False(t, p.Public)

	recs := p.Records()
	assert.Equal(t, "7", recs["AM1"].Attempts.Parcial(status.Parcial1, 0))
	assert.Equal(t, status.FaltanNotas, recs["AM1"].Status)
}

func TestFileRepo(t *testing.T) {
	dir := t.TempDir()
	repo := NewFileRepo(dir)
	ctx := context.Background()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "alice.json"), []byte(sampleDoc), 0o644))

	p, err := repo.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", p.UID)
	assert.True(t, p.Public)

	_, err = repo.Get(ctx, "bob")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.Get(ctx, "../alice")
	assert.ErrorIs(t, err, ErrInvalidUID)

	p.UID = "bob"
	p.Public = false
	require.NoError(t, repo.Put(ctx, p))
	got, err := repo.Get(ctx, "bob")
	require.NoError(t, err)
	assert.False(t, got.Public)
	assert.Len(t, got.SubjectData, len(p.SubjectData))

	assert.ErrorIs(t, repo.Put(ctx, &Profile{UID: "no/slash"}), ErrInvalidUID)
}

func TestFileRepo_BadJSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0o644))
	_, err := NewFileRepo(dir).Get(context.Background(), "broken")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestProfile_Stats(t *testing.T) {
	var p Profile
	require.NoError(t, json.Unmarshal([]byte(sampleDoc), &p))

	rep := p.Stats()
	assert.Equal(t, 41, rep.TotalSubjects)
	assert.Equal(t, 2, rep.ApprovedSubjects)
	assert.Equal(t, 1, rep.PromotedSubjects)
	assert.Equal(t, 1, rep.InProgressSubjects)
	assert.Equal(t, 5, rep.WeeklyHours)
	assert.InDelta(t, 9.0, rep.AverageGrade, 0.001)
	assert.Equal(t, 1, rep.GradedSubjects)
	assert.Equal(t, 5, rep.ProgressPercent)

	p.Plan = "k99"
	rep = p.Stats()
	assert.Equal(t, 0, rep.TotalSubjects)
	assert.Equal(t, 2, rep.ApprovedSubjects)
	assert.Equal(t, 0, rep.WeeklyHours)
	assert.Equal(t, 0, rep.ProgressPercent)
}
