package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/fieldlink/internal/model"
)

// pgxPool is the subset of pgxpool.Pool the cache uses; pgxmock satisfies it
// in tests.
type pgxPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Close()
}

// PostgresCache reads the link cache from postgres.
type PostgresCache struct {
	pool pgxPool
}

const projectLinksSQL = `
SELECT project_id, job_id, title, status, category_id, scheduled_start, scheduled_end, linked_at
FROM job_links
WHERE $1 = '' OR category_id = $1
ORDER BY linked_at DESC`

// NewPostgresCache connects a pooled postgres-backed cache.
func NewPostgresCache(ctx context.Context, connString string) (*PostgresCache, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "store: parse postgres config")
	}
	pgxCfg.MaxConns = 4
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "store: connect postgres")
	}
	return &PostgresCache{pool: pool}, nil
}

// NewPostgresCacheFromPool wraps an existing pool; used by tests.
func NewPostgresCacheFromPool(pool pgxPool) *PostgresCache {
	return &PostgresCache{pool: pool}
}

// ProjectLinks implements LinkCache.
func (p *PostgresCache) ProjectLinks(ctx context.Context, categoryID string) ([]model.CacheEntry, error) {
	rows, err := p.pool.Query(ctx, projectLinksSQL, categoryID)
	if err != nil {
		return nil, eris.Wrap(err, "store: query job_links")
	}
	defer rows.Close()

	var entries []model.CacheEntry
	for rows.Next() {
		var e model.CacheEntry
		if err := rows.Scan(&e.ProjectID, &e.JobID, &e.Title, &e.Status, &e.CategoryID,
			&e.ScheduledStart, &e.ScheduledEnd, &e.LinkedAt); err != nil {
			return nil, eris.Wrap(err, "store: scan job_links row")
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "store: iterate job_links rows")
	}
	return entries, nil
}

// Close releases the pool.
func (p *PostgresCache) Close() error {
	p.pool.Close()
	return nil
}
