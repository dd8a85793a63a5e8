package store

import (
	"context"
	"database/sql"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/utntracker/internal/board"
)

type electiveRepo struct {
	db *sql.DB
}

func (r *electiveRepo) Placements(ctx context.Context) ([]board.Placement, error) {
	query, args := builder().
		Select("code", "col_index").
		From(entsql.Table(tablePlacements)).
		OrderBy("id").
		Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query placements: %w", err)
	}
	defer rows.Close()

	var out []board.Placement
	for rows.Next() {
		var p board.Placement
		if err := rows.Scan(&p.Code, &p.Column); err != nil {
			return nil, fmt.Errorf("scan placement: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *electiveRepo) Place(ctx context.Context, p board.Placement) error {
	query, args := builder().
		Insert(tablePlacements).
		Columns("code", "col_index").
		Values(p.Code, max(p.Column, 0)).
		OnConflict(entsql.ConflictColumns("code"), entsql.ResolveWithNewValues()).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("place elective %s: %w", p.Code, err)
	}
	return nil
}

func (r *electiveRepo) Unplace(ctx context.Context, code string) error {
	query, args := builder().
		Delete(tablePlacements).
		Where(entsql.EQ("code", code)).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("remove elective %s: %w", code, err)
	}
	return nil
}
