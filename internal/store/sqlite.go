package store

import (
	"context"
	"database/sql"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/fieldlink/internal/model"
)

// SQLiteCache reads the link cache from an embedded sqlite database, for
// single-binary deployments without a postgres dependency.
type SQLiteCache struct {
	db *sql.DB
}

// NewSQLiteCache opens the sqlite database and ensures the schema exists.
func NewSQLiteCache(dsn string) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "store: open sqlite")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck,gosec
			return nil, eris.Wrapf(err, "store: exec %s", pragma)
		}
	}

	c := &SQLiteCache{db: db}
	if err := c.migrate(); err != nil {
		db.Close() //nolint:errcheck,gosec
		return nil, err
	}
	return c, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS job_links (
	project_id      TEXT NOT NULL,
	job_id          TEXT NOT NULL,
	title           TEXT NOT NULL DEFAULT '',
	status          TEXT NOT NULL DEFAULT '',
	category_id     TEXT NOT NULL DEFAULT '',
	scheduled_start DATETIME,
	scheduled_end   DATETIME,
	linked_at       DATETIME NOT NULL DEFAULT (datetime('now')),
	PRIMARY KEY (project_id, job_id)
);

CREATE INDEX IF NOT EXISTS idx_job_links_category ON job_links(category_id);
`

func (c *SQLiteCache) migrate() error {
	if _, err := c.db.Exec(sqliteMigration); err != nil {
		return eris.Wrap(err, "store: migrate sqlite")
	}
	return nil
}

// ProjectLinks implements LinkCache.
func (c *SQLiteCache) ProjectLinks(ctx context.Context, categoryID string) ([]model.CacheEntry, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT project_id, job_id, title, status, category_id, scheduled_start, scheduled_end, linked_at
		 FROM job_links
		 WHERE ? = '' OR category_id = ?
		 ORDER BY linked_at DESC`,
		categoryID, categoryID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "store: query job_links")
	}
	defer rows.Close() //nolint:errcheck

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

// Close closes the database.
func (c *SQLiteCache) Close() error {
	return c.db.Close()
}
