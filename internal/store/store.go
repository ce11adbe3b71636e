// Package store provides read access to the persisted link cache: job-deal
// links established by the external scheduling subsystem. The engine never
// writes here; entries are eventually consistent and a concurrent writer
// updating the cache mid-pass is tolerated.
package store

import (
	"context"

	"github.com/sells-group/fieldlink/internal/model"
)

// LinkCache is the read-only repository of previously established links.
type LinkCache interface {
	// ProjectLinks returns the cached links, optionally filtered by
	// category. An empty categoryID returns everything.
	ProjectLinks(ctx context.Context, categoryID string) ([]model.CacheEntry, error)
	Close() error
}

// Config selects and configures the cache backend.
type Config struct {
	// Driver is "postgres" or "sqlite". Empty disables the cache signal.
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	// Path is the sqlite database file.
	Path string `yaml:"path" mapstructure:"path"`
}

// Open creates the configured backend. A nil LinkCache with a nil error means
// no cache is configured, which is a valid (cache-less) setup.
func Open(ctx context.Context, cfg Config) (LinkCache, error) {
	switch cfg.Driver {
	case "postgres":
		return NewPostgresCache(ctx, cfg.DatabaseURL)
	case "sqlite":
		return NewSQLiteCache(cfg.Path)
	default:
		return nil, nil
	}
}
