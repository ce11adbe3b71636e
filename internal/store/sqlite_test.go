package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) *SQLiteCache {
	t.Helper()
	cache, err := NewSQLiteCache(filepath.Join(t.TempDir(), "links.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })
	return cache
}

func TestSQLiteCache_EmptyAfterMigrate(t *testing.T) {
	cache := newTestSQLite(t)
	entries, err := cache.ProjectLinks(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSQLiteCache_CategoryFilter(t *testing.T) {
	cache := newTestSQLite(t)

	start := time.Date(2026, 2, 3, 8, 0, 0, 0, time.UTC)
	_, err := cache.db.Exec(
		`INSERT INTO job_links (project_id, job_id, title, status, category_id, scheduled_start) VALUES
		 ('p1', 'j1', 'Install', 'Scheduled', 'electrical', ?),
		 ('p2', 'j2', 'Repair', 'Completed', 'plumbing', NULL)`,
		start,
	)
	require.NoError(t, err)

	all, err := cache.ProjectLinks(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	electrical, err := cache.ProjectLinks(context.Background(), "electrical")
	require.NoError(t, err)
	require.Len(t, electrical, 1)
	assert.Equal(t, "p1", electrical[0].ProjectID)
	require.NotNil(t, electrical[0].ScheduledStart)
	assert.Nil(t, electrical[0].ScheduledEnd)
}

func TestOpen_UnconfiguredReturnsNil(t *testing.T) {
	cache, err := Open(context.Background(), Config{})
	require.NoError(t, err)
	assert.Nil(t, cache)
}

func TestOpen_SQLite(t *testing.T) {
	cache, err := Open(context.Background(), Config{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "links.db"),
	})
	require.NoError(t, err)
	require.NotNil(t, cache)
	_ = cache.Close()
}
