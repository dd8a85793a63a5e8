package cmd

import (
	"context"
	"fmt"

	"github.com/abhisek/utntracker/internal/platform/cache"
	"github.com/abhisek/utntracker/internal/platform/config"
	"github.com/abhisek/utntracker/internal/platform/database"
	"github.com/abhisek/utntracker/internal/profile"
	"github.com/abhisek/utntracker/internal/server"
)

// backends holds the shared-profile backends selected by config.
type backends struct {
	repo   profile.Repo
	db     *database.DB
	cache  *cache.Cache
	checks map[string]server.Checker
}

func (b *backends) Close() {
	if b.cache != nil {
		b.cache.Close()
	}
	if b.db != nil {
		b.db.Close()
	}
}

// openBackends connects the profile repository and, when configured, the
// response cache.
func openBackends(ctx context.Context, c *config.Config) (*backends, error) {
	b := &backends{checks: make(map[string]server.Checker)}

	switch c.Profiles.Source {
	case config.SourcePostgres:
		db, err := database.New(ctx, c.Database.URL, c.Database.MaxConns, c.Database.MinConns)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		b.db = db
		b.checks["database"] = db
		repo, err := profile.NewPostgresRepo(ctx, db.Pool)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("prepare profiles table: %w", err)
		}
		b.repo = repo
	default:
		b.repo = profile.NewFileRepo(c.Profiles.Dir)
	}

	if c.Cache.URL != "" {
		rc, err := cache.New(ctx, c.Cache.URL)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("connect cache: %w", err)
		}
		b.cache = rc
		b.checks["cache"] = rc
	}
	return b, nil
}
