// Package profile holds shared student profiles: the document a student
// publishes so others can see their progress, and the repositories that
// serve them.
package profile

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"regexp"
	"sort"

	"github.com/google/uuid"

	"github.com/abhisek/utntracker/internal/board"
	"github.com/abhisek/utntracker/internal/plan"
	"github.com/abhisek/utntracker/internal/record"
	"github.com/abhisek/utntracker/internal/stats"
	"github.com/abhisek/utntracker/internal/status"
)

var (
	ErrNotFound   = errors.New("profile not found")
	ErrPrivate    = errors.New("profile is not public")
	ErrInvalidUID = errors.New("invalid profile uid")
)

var uidPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidUID reports whether uid is safe to use as a key or file name.
func ValidUID(uid string) bool {
	return uidPattern.MatchString(uid)
}

// NewUID returns a fresh share id.
func NewUID() string {
	return uuid.NewString()
}

// Placement is the stored position of an elective on the board.
type Placement struct {
	ColIndex int `json:"colIndex"`
}

// Profile is a published student board. Subject data is kept as raw JSON
// so documents written by other clients round-trip untouched.
type Profile struct {
	UID           string                     `json:"uid,omitempty"`
	Plan          string                     `json:"plan,omitempty"`
	YearStarted   *int                       `json:"yearStarted,omitempty"`
	Public        bool                       `json:"public"`
	SubjectData   map[string]json.RawMessage `json:"subjectData"`
	Electives     map[string]Placement       `json:"electives"`
	SelectedStats json.RawMessage            `json:"selectedStats,omitempty"`
}

// Repo reads and writes profiles by uid.
type Repo interface {
	Get(ctx context.Context, uid string) (*Profile, error)
	Put(ctx context.Context, p *Profile) error
}

// subjectDoc is the part of a stored subject the stats need. Timestamps are
// ignored because clients write them in different shapes.
type subjectDoc struct {
	Values   status.AttemptSet `json:"values"`
	Status   status.Tag        `json:"status"`
	Override *status.Tag       `json:"overrideStatus"`
}

// Records decodes the subject data. Entries that fail to decode are logged
// and skipped.
func (p *Profile) Records() map[string]record.Record {
	out := make(map[string]record.Record, len(p.SubjectData))
	for code, raw := range p.SubjectData {
		if len(raw) == 0 || string(raw) == "null" {
			continue
		}
		var doc subjectDoc
		if err := json.Unmarshal(raw, &doc); err != nil {
			slog.Warn("skipping unreadable subject", "uid", p.UID, "code", code, "error", err)
			continue
		}
		out[code] = record.Record{Attempts: doc.Values, Status: doc.Status, Override: doc.Override}
	}
	return out
}

// Placements returns the elective placements in code order.
func (p *Profile) Placements() []board.Placement {
	out := make([]board.Placement, 0, len(p.Electives))
	for code, pl := range p.Electives {
		out = append(out, board.Placement{Code: code, Column: pl.ColIndex})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// FromBoard builds a profile document from a local board.
func FromBoard(uid, planName string, st *board.State) (*Profile, error) {
	p := &Profile{
		UID:         uid,
		Plan:        planName,
		SubjectData: make(map[string]json.RawMessage),
		Electives:   make(map[string]Placement),
	}
	for code, rec := range st.Records() {
		raw, err := json.Marshal(rec)
		if err != nil {
			return nil, err
		}
		p.SubjectData[code] = raw
	}
	for _, pl := range st.Placements() {
		p.Electives[pl.Code] = Placement{ColIndex: pl.Column}
	}
	return p, nil
}

// Stats aggregates the profile. Only built-in plans are resolved; for any
// other plan name the stats come from the records alone and the total is 0.
func (p *Profile) Stats() stats.Report {
	records := p.Records()
	if pl, err := plan.Builtin(p.Plan); err == nil {
		return stats.ForBoard(board.FromPlan(pl, p.Placements(), records))
	}

	codes := make([]string, 0, len(records))
	for code := range records {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	subjects := make([]plan.Subject, len(codes))
	for i, code := range codes {
		subjects[i] = plan.Subject{Code: code}
	}
	return stats.Compute(stats.Input{Extra: subjects, Lookup: record.MapLookup(records)})
}
