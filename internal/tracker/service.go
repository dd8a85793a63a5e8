// Package tracker runs the subject lifecycle on top of a record store:
// starting subjects, saving grades, manual overrides, withdrawals and
// elective placement. Every mutation is logged as a status event and
// followed by a progress snapshot.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/abhisek/utntracker/internal/board"
	"github.com/abhisek/utntracker/internal/plan"
	"github.com/abhisek/utntracker/internal/record"
	"github.com/abhisek/utntracker/internal/stats"
	"github.com/abhisek/utntracker/internal/status"
	"github.com/abhisek/utntracker/internal/store"
)

// KeepSnapshots is how many progress snapshots survive pruning.
const KeepSnapshots = 50

var (
	ErrUnknownSubject = errors.New("unknown subject")
	ErrLocked         = errors.New("subject requirements not met")
	ErrNotStarted     = errors.New("subject not started")
	ErrStarted        = errors.New("subject already started")
	ErrPlaced         = errors.New("elective already on the board")
	ErrNotPlaced      = errors.New("elective not on the board")
	ErrNoElectives    = errors.New("elective placements are not persisted")
)

// EventLog receives status transitions.
type EventLog interface {
	AppendStatusEvent(ctx context.Context, data store.StatusEventData) error
	LatestSequence(ctx context.Context) (int64, error)
}

// SnapshotLog receives progress snapshots.
type SnapshotLog interface {
	Save(ctx context.Context, snap *store.Snapshot) error
	Prune(ctx context.Context, keep int) error
}

// Options wires the optional collaborators of a Service.
type Options struct {
	Events    EventLog
	Snapshots SnapshotLog
	Electives store.ElectiveRepo
	Now       func() time.Time
}

// Service applies lifecycle operations to one student's board.
type Service struct {
	plan      *plan.Plan
	records   record.Store
	events    EventLog
	snapshots SnapshotLog
	electives store.ElectiveRepo
	now       func() time.Time
}

// NewService creates a tracker over p and records.
func NewService(p *plan.Plan, records record.Store, opts Options) *Service {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		plan:      p,
		records:   records,
		events:    opts.Events,
		snapshots: opts.Snapshots,
		electives: opts.Electives,
		now:       now,
	}
}

// ForStore wires a tracker to every repository of a sqlite store.
func ForStore(p *plan.Plan, s *store.Store) *Service {
	return NewService(p, s.Records(), Options{
		Events:    s.EventRepo(),
		Snapshots: s.SnapshotRepo(),
		Electives: s.ElectiveRepo(),
	})
}

// Plan returns the plan the tracker evaluates against.
func (s *Service) Plan() *plan.Plan { return s.plan }

// Load reads the records and placements into a board state.
func (s *Service) Load(ctx context.Context) (*board.State, error) {
	records, err := s.records.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	var placements []board.Placement
	if s.electives != nil {
		placements, err = s.electives.Placements(ctx)
		if err != nil {
			return nil, fmt.Errorf("load electives: %w", err)
		}
	}
	return board.FromPlan(s.plan, placements, records), nil
}

// Stats loads the board and aggregates it.
func (s *Service) Stats(ctx context.Context) (stats.Report, error) {
	st, err := s.Load(ctx)
	if err != nil {
		return stats.Report{}, err
	}
	return stats.ForBoard(st), nil
}

// Start creates the record of an available subject.
func (s *Service) Start(ctx context.Context, code string) (*Result, error) {
	st, subj, err := s.subject(ctx, code)
	if err != nil {
		return nil, err
	}
	switch st.Classify(code) {
	case board.Started:
		return nil, fmt.Errorf("start %s: %w", code, ErrStarted)
	case board.Locked:
		return nil, fmt.Errorf("start %s: %w", code, ErrLocked)
	}

	rec := record.New(s.now())
	write := func() error { return s.write(ctx, code, time.Time{}, rec) }
	// A stored row the board could not read is replaced, not conflicted on.
	if _, err := s.records.Get(ctx, code); err != nil && !errors.Is(err, record.ErrNotFound) {
		slog.Warn("replacing unreadable record", "code", code, "error", err)
		write = func() error { return s.records.Set(ctx, code, rec) }
	}
	if err := write(); err != nil {
		return nil, fmt.Errorf("start %s: %w", code, err)
	}
	return s.finish(ctx, st, st.WithRecord(code, rec), subj, TriggerStart), nil
}

// SaveGrades stores new attempt values and the status they compute.
// Any override is cleared.
func (s *Service) SaveGrades(ctx context.Context, code string, a status.AttemptSet) (*Result, error) {
	st, subj, rec, err := s.started(ctx, code)
	if err != nil {
		return nil, err
	}
	next := rec.WithAttempts(a, s.now())
	if err := s.write(ctx, code, rec.SavedAt, next); err != nil {
		return nil, fmt.Errorf("save grades %s: %w", code, err)
	}
	return s.finish(ctx, st, st.WithRecord(code, next), subj, TriggerGrades), nil
}

// SetOverride forces the effective status of a started subject.
func (s *Service) SetOverride(ctx context.Context, code string, tag status.Tag) (*Result, error) {
	if !tag.Valid() {
		return nil, fmt.Errorf("override %s: invalid status %q", code, tag)
	}
	return s.override(ctx, code, &tag, TriggerOverride)
}

// ClearOverride drops the manual status, falling back to the computed one.
func (s *Service) ClearOverride(ctx context.Context, code string) (*Result, error) {
	return s.override(ctx, code, nil, TriggerClearOverride)
}

func (s *Service) override(ctx context.Context, code string, tag *status.Tag, trigger Trigger) (*Result, error) {
	st, subj, rec, err := s.started(ctx, code)
	if err != nil {
		return nil, err
	}
	next := rec.WithOverride(tag, s.now())
	if err := s.write(ctx, code, rec.SavedAt, next); err != nil {
		return nil, fmt.Errorf("%s %s: %w", trigger, code, err)
	}
	return s.finish(ctx, st, st.WithRecord(code, next), subj, trigger), nil
}

// Withdraw removes the record of a started subject, either to retake a
// failed subject or to drop one in progress. A stored record that cannot be
// read is removed too.
func (s *Service) Withdraw(ctx context.Context, code string) (*Result, error) {
	st, subj, err := s.subject(ctx, code)
	if err != nil {
		return nil, err
	}
	trigger := TriggerWithdraw
	rec, err := s.records.Get(ctx, code)
	switch {
	case errors.Is(err, record.ErrNotFound):
		return nil, fmt.Errorf("%s: %w", code, ErrNotStarted)
	case err != nil:
		slog.Warn("removing unreadable record", "code", code, "error", err)
	case rec.Effective() == status.Desaprobada:
		trigger = TriggerRecursar
	}
	if err := s.records.Remove(ctx, code); err != nil {
		return nil, fmt.Errorf("withdraw %s: %w", code, err)
	}
	return s.finish(ctx, st, st.WithoutRecord(code), subj, trigger), nil
}

// PlaceElective puts an elective from the catalogue on a board column.
// An elective whose cursar requirements are unmet needs force, and the
// result then carries a warning.
func (s *Service) PlaceElective(ctx context.Context, code string, col int, force bool) (*Result, error) {
	if s.electives == nil {
		return nil, ErrNoElectives
	}
	subj, ok := s.elective(code)
	if !ok {
		return nil, fmt.Errorf("place %s: %w", code, ErrUnknownSubject)
	}
	st, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	if _, on := st.Subject(code); on {
		return nil, fmt.Errorf("place %s: %w", code, ErrPlaced)
	}

	placements := append(st.Placements(), board.Placement{Code: code, Column: max(col, 0)})
	after := st.WithPlacements(placements)

	var warning string
	if !after.MeetsCursar(code) {
		if !force {
			return nil, fmt.Errorf("place %s: %w", code, ErrLocked)
		}
		warning = fmt.Sprintf("%s added without its requirements: %s", code, requirementList(after.MissingRequirements(code)))
	}

	if err := s.electives.Place(ctx, board.Placement{Code: code, Column: max(col, 0)}); err != nil {
		return nil, err
	}
	res := s.finish(ctx, st, after, subj, TriggerElectiveAdd)
	res.Warning = warning
	return res, nil
}

// RemoveElective takes an elective off the board. Its record is kept.
func (s *Service) RemoveElective(ctx context.Context, code string) (*Result, error) {
	if s.electives == nil {
		return nil, ErrNoElectives
	}
	subj, ok := s.elective(code)
	if !ok {
		return nil, fmt.Errorf("remove %s: %w", code, ErrUnknownSubject)
	}
	st, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	placements := slices.DeleteFunc(st.Placements(), func(p board.Placement) bool { return p.Code == code })
	if len(placements) == len(st.Placements()) {
		return nil, fmt.Errorf("remove %s: %w", code, ErrNotPlaced)
	}
	if err := s.electives.Unplace(ctx, code); err != nil {
		return nil, err
	}
	return s.finish(ctx, st, st.WithPlacements(placements), subj, TriggerElectiveRemove), nil
}

// subject loads the board and resolves code on it.
func (s *Service) subject(ctx context.Context, code string) (*board.State, plan.Subject, error) {
	st, err := s.Load(ctx)
	if err != nil {
		return nil, plan.Subject{}, err
	}
	subj, ok := st.Subject(code)
	if !ok {
		return nil, plan.Subject{}, fmt.Errorf("%s: %w", code, ErrUnknownSubject)
	}
	return st, subj, nil
}

// started resolves code and its record, read fresh from the store.
func (s *Service) started(ctx context.Context, code string) (*board.State, plan.Subject, record.Record, error) {
	st, subj, err := s.subject(ctx, code)
	if err != nil {
		return nil, plan.Subject{}, record.Record{}, err
	}
	rec, ok := s.get(ctx, code)
	if !ok {
		return nil, plan.Subject{}, record.Record{}, fmt.Errorf("%s: %w", code, ErrNotStarted)
	}
	return st, subj, rec, nil
}

// get reads one record. Read failures count as no record.
func (s *Service) get(ctx context.Context, code string) (record.Record, bool) {
	rec, err := s.records.Get(ctx, code)
	if errors.Is(err, record.ErrNotFound) {
		return record.Record{}, false
	}
	if err != nil {
		slog.Warn("read record failed", "code", code, "error", err)
		return record.Record{}, false
	}
	return rec, true
}

func (s *Service) write(ctx context.Context, code string, prev time.Time, rec record.Record) error {
	if cas, ok := s.records.(record.CASStore); ok {
		return cas.CompareAndSet(ctx, code, prev, rec)
	}
	return s.records.Set(ctx, code, rec)
}

func (s *Service) elective(code string) (plan.Subject, bool) {
	for _, e := range s.plan.Electives() {
		if e.Code == code {
			return e, true
		}
	}
	return plan.Subject{}, false
}

// finish computes the transition and the newly unlocked subjects, then logs
// the event and a snapshot. Logging failures do not undo the mutation.
func (s *Service) finish(ctx context.Context, before, after *board.State, subj plan.Subject, trigger Trigger) *Result {
	from, _ := before.Effective(subj.Code)
	to, _ := after.Effective(subj.Code)
	res := &Result{
		Transition: Transition{
			Code:    subj.Code,
			Name:    subj.Name,
			From:    from,
			To:      to,
			Trigger: trigger,
		},
		Unlocked: board.NewlyUnlocked(before.Available(), after.Available()),
	}

	if s.events != nil {
		err := s.events.AppendStatusEvent(ctx, store.StatusEventData{
			SubjectCode: subj.Code,
			From:        string(from),
			To:          string(to),
			Trigger:     string(trigger),
			Unlocked:    res.Unlocked,
		})
		if err != nil {
			slog.Warn("append status event failed", "code", subj.Code, "error", err)
		}
	}
	s.snapshot(ctx, after)
	return res
}

func (s *Service) snapshot(ctx context.Context, st *board.State) {
	if s.snapshots == nil {
		return
	}
	var seq int64
	if s.events != nil {
		if n, err := s.events.LatestSequence(ctx); err == nil {
			seq = n
		}
	}
	snap := &store.Snapshot{
		Sequence:  seq,
		Timestamp: s.now().UTC(),
		Data: store.SnapshotData{
			Version: 1,
			Plan:    s.plan.Name,
			Stats:   stats.ForBoard(st),
		},
	}
	if err := s.snapshots.Save(ctx, snap); err != nil {
		slog.Warn("save snapshot failed", "error", err)
		return
	}
	if err := s.snapshots.Prune(ctx, KeepSnapshots); err != nil {
		slog.Warn("prune snapshots failed", "error", err)
	}
}

func requirementList(reqs []plan.Requirement) string {
	parts := make([]string, len(reqs))
	for i, r := range reqs {
		parts[i] = fmt.Sprintf("%s (%s)", r.ID, r.Type)
	}
	return strings.Join(parts, ", ")
}
