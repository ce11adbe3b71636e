// Package engine orchestrates one resolution pass: fetch jobs, collect link
// candidates, resolve one link per project.
package engine

import (
	"context"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/fieldlink/internal/fieldservice"
	"github.com/sells-group/fieldlink/internal/linkage"
	"github.com/sells-group/fieldlink/internal/model"
	"github.com/sells-group/fieldlink/internal/store"
)

// ErrNotConfigured mirrors the field-service sentinel so callers can
// distinguish "integration missing" from "no matches found".
var ErrNotConfigured = fieldservice.ErrNotConfigured

// JobFetcher is the fetch surface the engine depends on.
type JobFetcher interface {
	FetchAll(ctx context.Context, categoryID string, window *fieldservice.DateWindow) ([]model.JobRecord, error)
}

// Engine runs resolution passes. It holds no mutable state between passes;
// every pass owns its own candidate list.
type Engine struct {
	fetcher    JobFetcher
	cache      store.LinkCache
	collector  *linkage.Collector
	categoryID string
}

// New creates an Engine. cache may be nil (cache signal disabled).
func New(fetcher JobFetcher, cache store.LinkCache, collector *linkage.Collector, categoryID string) *Engine {
	return &Engine{
		fetcher:    fetcher,
		cache:      cache,
		collector:  collector,
		categoryID: categoryID,
	}
}

// PassResult is one resolution pass's output.
type PassResult struct {
	PassID     string                        `json:"pass_id"`
	Jobs       int                           `json:"jobs"`
	Candidates int                           `json:"candidates"`
	Links      map[string]model.ResolvedLink `json:"links"`
}

// Run executes one pass over the given projects. A missing field-service
// integration returns ErrNotConfigured; a failing cache degrades the pass to
// live-only signals with a warning.
func (e *Engine) Run(ctx context.Context, projects []model.ProjectRecord, window *fieldservice.DateWindow) (*PassResult, error) {
	if e.fetcher == nil {
		return nil, ErrNotConfigured
	}

	passID := uuid.NewString()
	log := zap.L().With(zap.String("component", "engine"), zap.String("pass_id", passID))

	jobs, err := e.fetcher.FetchAll(ctx, e.categoryID, window)
	if err != nil {
		if eris.Is(err, fieldservice.ErrNotConfigured) {
			return nil, ErrNotConfigured
		}
		return nil, eris.Wrap(err, "engine: fetch jobs")
	}

	var cacheEntries []model.CacheEntry
	if e.cache != nil {
		cacheEntries, err = e.cache.ProjectLinks(ctx, e.categoryID)
		if err != nil {
			// Degrade to live-only signals; a stale or unreachable cache
			// must not fail the pass.
			log.Warn("link cache read failed, continuing with live signals only", zap.Error(err))
			cacheEntries = nil
		}
	}

	candidates := e.collector.Collect(jobs, projects, cacheEntries)
	links := linkage.Resolve(candidates)

	log.Info("resolution pass complete",
		zap.Int("jobs", len(jobs)),
		zap.Int("projects", len(projects)),
		zap.Int("candidates", len(candidates)),
		zap.Int("links", len(links)),
	)

	return &PassResult{
		PassID:     passID,
		Jobs:       len(jobs),
		Candidates: len(candidates),
		Links:      links,
	}, nil
}
