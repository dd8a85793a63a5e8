package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/utntracker/internal/record"
	"github.com/abhisek/utntracker/internal/status"
)

var recordColumns = []string{"code", "attempts", "status", "override_status", "revision"}

// RecordRepo stores subject records. It implements record.CASStore.
type RecordRepo struct {
	db *sql.DB
}

var _ record.CASStore = (*RecordRepo)(nil)

func (r *RecordRepo) Get(ctx context.Context, code string) (record.Record, error) {
	query, args := builder().
		Select(recordColumns...).
		From(entsql.Table(tableRecords)).
		Where(entsql.EQ("code", code)).
		Query()

	rec, _, err := scanRecord(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return record.Record{}, record.ErrNotFound
	}
	if err != nil {
		return record.Record{}, fmt.Errorf("get record %s: %w", code, err)
	}
	return rec, nil
}

func (r *RecordRepo) Set(ctx context.Context, code string, rec record.Record) error {
	values, err := recordValues(code, rec)
	if err != nil {
		return err
	}
	query, args := builder().
		Insert(tableRecords).
		Columns("code", "attempts", "status", "override_status", "saved_at", "revision").
		Values(values...).
		OnConflict(entsql.ConflictColumns("code"), entsql.ResolveWithNewValues()).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save record %s: %w", code, err)
	}
	return nil
}

// CompareAndSet writes rec only if the stored revision still matches prev.
func (r *RecordRepo) CompareAndSet(ctx context.Context, code string, prev time.Time, rec record.Record) error {
	values, err := recordValues(code, rec)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	query, args := builder().
		Select("revision").
		From(entsql.Table(tableRecords)).
		Where(entsql.EQ("code", code)).
		Query()
	var current int64
	err = tx.QueryRowContext(ctx, query, args...).Scan(&current)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if !prev.IsZero() {
			return record.ErrConflict
		}
		query, args = builder().
			Insert(tableRecords).
			Columns("code", "attempts", "status", "override_status", "saved_at", "revision").
			Values(values...).
			Query()
	case err != nil:
		return fmt.Errorf("read revision %s: %w", code, err)
	case prev.IsZero() || current != prev.UnixNano():
		return record.ErrConflict
	default:
		query, args = builder().
			Update(tableRecords).
			Set("attempts", values[1]).
			Set("status", values[2]).
			Set("override_status", values[3]).
			Set("saved_at", values[4]).
			Set("revision", values[5]).
			Where(entsql.And(entsql.EQ("code", code), entsql.EQ("revision", current))).
			Query()
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save record %s: %w", code, err)
	}
	return tx.Commit()
}

func (r *RecordRepo) Remove(ctx context.Context, code string) error {
	query, args := builder().
		Delete(tableRecords).
		Where(entsql.EQ("code", code)).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("remove record %s: %w", code, err)
	}
	return nil
}

// All returns every readable record. Rows that fail to decode are logged
// and skipped.
func (r *RecordRepo) All(ctx context.Context) (map[string]record.Record, error) {
	query, args := builder().
		Select(recordColumns...).
		From(entsql.Table(tableRecords)).
		OrderBy("code").
		Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	out := make(map[string]record.Record)
	for rows.Next() {
		rec, code, err := scanRecord(rows)
		if err != nil {
			slog.Warn("skipping unreadable record", "code", code, "error", err)
			continue
		}
		out[code] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (record.Record, string, error) {
	var (
		code     string
		attempts []byte
		tag      string
		override sql.NullString
		revision int64
	)
	if err := row.Scan(&code, &attempts, &tag, &override, &revision); err != nil {
		return record.Record{}, code, err
	}
	rec := record.Record{SavedAt: time.Unix(0, revision).UTC()}
	if len(attempts) > 0 {
		if err := json.Unmarshal(attempts, &rec.Attempts); err != nil {
			return record.Record{}, code, fmt.Errorf("decode attempts: %w", err)
		}
	}
	if err := rec.Status.UnmarshalText([]byte(tag)); err != nil {
		return record.Record{}, code, err
	}
	if override.Valid && override.String != "" {
		var o status.Tag
		if err := o.UnmarshalText([]byte(override.String)); err != nil {
			return record.Record{}, code, err
		}
		rec.Override = &o
	}
	return rec, code, nil
}

func recordValues(code string, rec record.Record) ([]any, error) {
	attempts, err := json.Marshal(rec.Attempts)
	if err != nil {
		return nil, fmt.Errorf("encode attempts: %w", err)
	}
	var override any
	if rec.Override != nil {
		override = string(*rec.Override)
	}
	savedAt := rec.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now()
	}
	return []any{code, string(attempts), string(rec.Status), override, savedAt.UTC(), savedAt.UnixNano()}, nil
}
