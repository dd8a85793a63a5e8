package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const dbTimeout = 5 * time.Second

const createProfilesTable = `CREATE TABLE IF NOT EXISTS profiles (
	uid        TEXT PRIMARY KEY,
	doc        JSONB NOT NULL,
	public     BOOLEAN NOT NULL DEFAULT FALSE,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresRepo stores profiles as JSONB documents.
type PostgresRepo struct {
	pool *pgxpool.Pool
}

// NewPostgresRepo creates the profiles table if needed.
func NewPostgresRepo(ctx context.Context, pool *pgxpool.Pool) (*PostgresRepo, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()
	if _, err := pool.Exec(ctx, createProfilesTable); err != nil {
		return nil, fmt.Errorf("create profiles table: %w", err)
	}
	return &PostgresRepo{pool: pool}, nil
}

func (r *PostgresRepo) Get(ctx context.Context, uid string) (*Profile, error) {
	if !ValidUID(uid) {
		return nil, ErrInvalidUID
	}
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var doc []byte
	err := r.pool.QueryRow(ctx, `SELECT doc FROM profiles WHERE uid = $1`, uid).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile %s: %w", uid, err)
	}

	var p Profile
	if err := json.Unmarshal(doc, &p); err != nil {
		return nil, fmt.Errorf("decode profile %s: %w", uid, err)
	}
	p.UID = uid
	return &p, nil
}

func (r *PostgresRepo) Put(ctx context.Context, p *Profile) error {
	if !ValidUID(p.UID) {
		return ErrInvalidUID
	}
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode profile %s: %w", p.UID, err)
	}
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	_, err = r.pool.Exec(ctx,
		`INSERT INTO profiles (uid, doc, public, updated_at)
		 VALUES ($1, $2, $3, now())
		 ON CONFLICT (uid) DO UPDATE
		 SET doc = EXCLUDED.doc, public = EXCLUDED.public, updated_at = now()`,
		p.UID, doc, p.Public,
	)
	if err != nil {
		return fmt.Errorf("put profile %s: %w", p.UID, err)
	}
	return nil
}
