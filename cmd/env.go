package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/fieldlink/internal/crm"
	"github.com/sells-group/fieldlink/internal/engine"
	"github.com/sells-group/fieldlink/internal/fieldservice"
	"github.com/sells-group/fieldlink/internal/linkage"
	"github.com/sells-group/fieldlink/internal/model"
	"github.com/sells-group/fieldlink/internal/store"
)

// appEnv wires the engine and its collaborators from config.
type appEnv struct {
	Engine *engine.Engine
	CRM    crm.Client
	cache  store.LinkCache
}

// initEnv builds the engine from config. A missing field-service integration
// leaves the fetcher nil so the engine surfaces ErrNotConfigured on use; a
// cache open failure degrades to a cache-less engine with a warning.
func initEnv(ctx context.Context) (*appEnv, error) {
	var fetcher engine.JobFetcher
	client, err := fieldservice.NewClient(cfg.FieldService.ClientConfig)
	switch {
	case err == nil:
		fetcher = fieldservice.NewFetcher(client, cfg.FieldService.FetcherConfig)
	case eris.Is(err, fieldservice.ErrNotConfigured):
		zap.L().Warn("fieldservice integration not configured")
	default:
		return nil, eris.Wrap(err, "init fieldservice client")
	}

	cache, err := store.Open(ctx, cfg.Cache)
	if err != nil {
		zap.L().Warn("link cache unavailable, cache signal disabled", zap.Error(err))
		cache = nil
	}

	collector := linkage.NewCollector(linkage.CollectorConfig{
		TagPrefix:  cfg.Linkage.TagPrefix,
		CategoryID: cfg.Linkage.CategoryID,
		Sources:    linkage.AllSources(),
	})

	env := &appEnv{
		Engine: engine.New(fetcher, cache, collector, cfg.Linkage.CategoryID),
		cache:  cache,
	}
	if cfg.CRM.Configured() {
		env.CRM = crm.NewClient(cfg.CRM)
	}
	return env, nil
}

// Close releases held resources.
func (e *appEnv) Close() {
	if e.cache != nil {
		_ = e.cache.Close()
	}
}

// loadProjects turns deal ids into project records. With a configured CRM the
// display label and amount come from the deal; otherwise bare-id projects are
// used, which still supports the direct-id and encoded-tag signals.
func (e *appEnv) loadProjects(ctx context.Context, ids []string) ([]model.ProjectRecord, map[string]crm.Deal, error) {
	deals := map[string]crm.Deal{}
	if e.CRM != nil {
		fetched, err := e.CRM.BatchGetDeals(ctx, ids)
		if err != nil {
			return nil, nil, eris.Wrap(err, "load deals")
		}
		deals = fetched
	}

	projects := make([]model.ProjectRecord, 0, len(ids))
	for _, id := range ids {
		p := model.ProjectRecord{ID: id}
		if deal, ok := deals[id]; ok {
			p.DisplayName = deal.Name
			p.Amount = deal.Amount
		}
		projects = append(projects, p)
	}
	return projects, deals, nil
}
