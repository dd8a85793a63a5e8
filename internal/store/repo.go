package store

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/utntracker/internal/board"
	"github.com/abhisek/utntracker/internal/stats"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	After   int64     // sequence > After
	Before  int64     // sequence < Before
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
	Subject string    // only events of this subject code
}

// SnapshotData captures the aggregate progress at a point in time.
type SnapshotData struct {
	Version int          `json:"version"`
	Plan    string       `json:"plan"`
	Stats   stats.Report `json:"stats"`
}

// Snapshot represents a point-in-time capture of board progress.
type Snapshot struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	Data      SnapshotData
}

// SnapshotRepo manages progress snapshots.
type SnapshotRepo interface {
	// Save stores a new snapshot.
	Save(ctx context.Context, snap *Snapshot) error

	// Latest returns the most recent snapshot, or nil if none exist.
	Latest(ctx context.Context) (*Snapshot, error)

	// List returns up to limit snapshots, newest first (0 = all).
	List(ctx context.Context, limit int) ([]Snapshot, error)

	// Prune deletes all but the N most recent snapshots.
	Prune(ctx context.Context, keep int) error
}

// StatusEventData captures a subject status transition.
type StatusEventData struct {
	SubjectCode string
	From        string
	To          string
	Trigger     string
	Unlocked    []string
}

// StatusEvent is a stored StatusEventData with its ordering metadata.
type StatusEvent struct {
	StatusEventData
	Sequence  int64
	Timestamp time.Time
}

// EventRepo provides append and query access to status events.
type EventRepo interface {
	// AppendStatusEvent records a status transition.
	AppendStatusEvent(ctx context.Context, data StatusEventData) error

	// QueryStatusEvents returns events newest first.
	QueryStatusEvents(ctx context.Context, opts QueryOpts) ([]StatusEvent, error)

	// LatestSequence returns the highest assigned event sequence, or 0.
	LatestSequence(ctx context.Context) (int64, error)
}

// ElectiveRepo persists elective placements.
type ElectiveRepo interface {
	Placements(ctx context.Context) ([]board.Placement, error)
	Place(ctx context.Context, p board.Placement) error
	Unplace(ctx context.Context, code string) error
}

// timeValue scans SQLite datetime columns, which the driver may hand back
// as time.Time, text or unix seconds depending on how they were written.
type timeValue struct {
	t time.Time
}

var timeLayouts = []string{
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
}

func (v *timeValue) Scan(src any) error {
	switch x := src.(type) {
	case nil:
		v.t = time.Time{}
	case time.Time:
		v.t = x.UTC()
	case int64:
		v.t = time.Unix(x, 0).UTC()
	case []byte:
		return v.Scan(string(x))
	case string:
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, x); err == nil {
				v.t = t.UTC()
				return nil
			}
		}
		return fmt.Errorf("parse time %q", x)
	default:
		return fmt.Errorf("unsupported time value %T", src)
	}
	return nil
}
