package fieldservice

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/fieldlink/internal/model"
)

const (
	// defaultPageSize matches the remote API's page size.
	defaultPageSize = 100
	// defaultMaxPages bounds worst-case cost against an unbounded remote
	// result set. Hitting it degrades the result and is logged, never silent.
	defaultMaxPages = 25
	// pageConcurrency limits parallel page requests after page 1.
	pageConcurrency = 5
)

// DateWindow bounds a fetch pass to jobs scheduled inside [From, To].
type DateWindow struct {
	From time.Time
	To   time.Time
}

// FetcherConfig tunes the paginated fetcher.
type FetcherConfig struct {
	PageSize int `yaml:"page_size" mapstructure:"page_size"`
	MaxPages int `yaml:"max_pages" mapstructure:"max_pages"`
	// IncludeUnscheduled adds an unbounded pass so jobs without a schedule
	// still enter the union when a date window is given.
	IncludeUnscheduled bool `yaml:"include_unscheduled" mapstructure:"include_unscheduled"`
}

// Fetcher retrieves the full de-duplicated job set for a category, merging a
// date-bounded pass with an unbounded one.
type Fetcher struct {
	client   Client
	pageSize int
	maxPages int
	unsch    bool
}

// NewFetcher creates a Fetcher over the given client.
func NewFetcher(client Client, cfg FetcherConfig) *Fetcher {
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	maxPages := cfg.MaxPages
	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}
	return &Fetcher{
		client:   client,
		pageSize: pageSize,
		maxPages: maxPages,
		unsch:    cfg.IncludeUnscheduled,
	}
}

// FetchAll returns the union of all job pages for the category. With a window
// and IncludeUnscheduled set, a second unbounded pass catches unscheduled
// jobs; results are unioned by job id, never replaced.
//
// Individual page failures are logged and dropped — the fetch only fails when
// no page of any pass succeeded.
func (f *Fetcher) FetchAll(ctx context.Context, categoryID string, window *DateWindow) ([]model.JobRecord, error) {
	log := zap.L().With(zap.String("component", "job_fetcher"), zap.String("category_id", categoryID))

	passes := []*DateWindow{window}
	if window != nil && f.unsch {
		passes = append(passes, nil)
	}

	seen := make(map[string]bool)
	var jobs []model.JobRecord
	var firstErr error
	succeeded := false

	for _, w := range passes {
		passJobs, err := f.fetchPass(ctx, log, categoryID, w)
		if err != nil {
			log.Warn("fetch pass failed", zap.Bool("bounded", w != nil), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		succeeded = true
		for _, j := range passJobs {
			if seen[j.ID] {
				continue
			}
			seen[j.ID] = true
			jobs = append(jobs, j)
		}
	}

	if !succeeded {
		return nil, eris.Wrap(firstErr, "fieldservice: all fetch passes failed")
	}

	log.Info("job fetch complete", zap.Int("jobs", len(jobs)))
	return jobs, nil
}

// fetchPass fetches every page of one pass. Page 1 establishes the total;
// remaining pages are fetched in parallel up to the page cap. A failed page
// beyond the first is dropped with a warning.
func (f *Fetcher) fetchPass(ctx context.Context, log *zap.Logger, categoryID string, window *DateWindow) ([]model.JobRecord, error) {
	req := SearchRequest{
		CategoryID: categoryID,
		Page:       1,
		PageSize:   f.pageSize,
	}
	if window != nil {
		req.From = &window.From
		req.To = &window.To
	}

	first, err := f.client.SearchJobs(ctx, req)
	if err != nil {
		return nil, eris.Wrap(err, "fieldservice: fetch page 1")
	}

	jobs := first.Jobs
	numPages := (first.Total + f.pageSize - 1) / f.pageSize
	if numPages <= 1 {
		return jobs, nil
	}
	if numPages > f.maxPages {
		log.Warn("page cap reached, results degraded",
			zap.Int("total_pages", numPages),
			zap.Int("max_pages", f.maxPages),
			zap.Int("total_records", first.Total),
		)
		numPages = f.maxPages
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(pageConcurrency)

	for page := 2; page <= numPages; page++ {
		g.Go(func() error {
			pageReq := req
			pageReq.Page = page
			result, err := f.client.SearchJobs(gctx, pageReq)
			if err != nil {
				// Soft failure: the page is absent from the union. No retry,
				// to keep worst-case latency bounded.
				log.Warn("page fetch failed, dropping page",
					zap.Int("page", page),
					zap.Error(err),
				)
				return nil
			}
			mu.Lock()
			jobs = append(jobs, result.Jobs...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "fieldservice: parallel page fetch")
	}

	return jobs, nil
}
