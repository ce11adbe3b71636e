package fieldservice

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/fieldlink/internal/model"
)

// fakeClient serves canned pages keyed by (bounded, page).
type fakeClient struct {
	mu       sync.Mutex
	requests []SearchRequest
	pages    map[bool]map[int]*SearchPage
	fail     map[bool]map[int]bool
}

func (f *fakeClient) SearchJobs(_ context.Context, req SearchRequest) (*SearchPage, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	bounded := req.From != nil
	if f.fail[bounded][req.Page] {
		return nil, eris.New("boom")
	}
	page, ok := f.pages[bounded][req.Page]
	if !ok {
		return &SearchPage{}, nil
	}
	return page, nil
}

func jobsNamed(ids ...string) []model.JobRecord {
	out := make([]model.JobRecord, len(ids))
	for i, id := range ids {
		out[i] = model.JobRecord{ID: id}
	}
	return out
}

func window() *DateWindow {
	return &DateWindow{
		From: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC),
	}
}

func TestFetchAll_SinglePage(t *testing.T) {
	client := &fakeClient{pages: map[bool]map[int]*SearchPage{
		true: {1: {Jobs: jobsNamed("a", "b"), Total: 2}},
	}}
	f := NewFetcher(client, FetcherConfig{PageSize: 10})

	jobs, err := f.FetchAll(context.Background(), "cat", window())
	require.NoError(t, err)
	assert.Len(t, jobs, 2)
}

func TestFetchAll_ParallelPagesDeduplicated(t *testing.T) {
	client := &fakeClient{pages: map[bool]map[int]*SearchPage{
		true: {
			1: {Jobs: jobsNamed("a", "b"), Total: 6},
			2: {Jobs: jobsNamed("c", "b"), Total: 6}, // "b" repeats across pages
			3: {Jobs: jobsNamed("d", "e"), Total: 6},
		},
	}}
	f := NewFetcher(client, FetcherConfig{PageSize: 2})

	jobs, err := f.FetchAll(context.Background(), "cat", window())
	require.NoError(t, err)

	ids := map[string]bool{}
	for _, j := range jobs {
		ids[j.ID] = true
	}
	assert.Len(t, jobs, 5)
	assert.Equal(t, map[string]bool{"a": true, "b": true, "c": true, "d": true, "e": true}, ids)
}

func TestFetchAll_PageCapBoundsRequests(t *testing.T) {
	pages := map[int]*SearchPage{1: {Jobs: jobsNamed("a"), Total: 1000}}
	for p := 2; p <= 10; p++ {
		pages[p] = &SearchPage{Jobs: jobsNamed("x"), Total: 1000}
	}
	client := &fakeClient{pages: map[bool]map[int]*SearchPage{true: pages}}
	f := NewFetcher(client, FetcherConfig{PageSize: 1, MaxPages: 3})

	_, err := f.FetchAll(context.Background(), "cat", window())
	require.NoError(t, err)

	// Page 1 plus at most MaxPages-1 parallel pages.
	assert.LessOrEqual(t, len(client.requests), 3)
}

func TestFetchAll_FailedPageDroppedSoftly(t *testing.T) {
	client := &fakeClient{
		pages: map[bool]map[int]*SearchPage{
			true: {
				1: {Jobs: jobsNamed("a"), Total: 6},
				3: {Jobs: jobsNamed("c"), Total: 6},
			},
		},
		fail: map[bool]map[int]bool{true: {2: true}},
	}
	f := NewFetcher(client, FetcherConfig{PageSize: 2})

	jobs, err := f.FetchAll(context.Background(), "cat", window())
	require.NoError(t, err)

	// Page 2 is simply absent from the union.
	assert.Len(t, jobs, 2)
}

func TestFetchAll_UnscheduledPassUnioned(t *testing.T) {
	client := &fakeClient{pages: map[bool]map[int]*SearchPage{
		true:  {1: {Jobs: jobsNamed("a", "b"), Total: 2}},
		false: {1: {Jobs: jobsNamed("b", "unscheduled"), Total: 2}},
	}}
	f := NewFetcher(client, FetcherConfig{PageSize: 10, IncludeUnscheduled: true})

	jobs, err := f.FetchAll(context.Background(), "cat", window())
	require.NoError(t, err)
	assert.Len(t, jobs, 3) // union, not replacement; "b" deduplicated
}

func TestFetchAll_BoundedPassFailureStillSucceedsViaUnboundedPass(t *testing.T) {
	client := &fakeClient{
		pages: map[bool]map[int]*SearchPage{
			false: {1: {Jobs: jobsNamed("x"), Total: 1}},
		},
		fail: map[bool]map[int]bool{true: {1: true}},
	}
	f := NewFetcher(client, FetcherConfig{PageSize: 10, IncludeUnscheduled: true})

	jobs, err := f.FetchAll(context.Background(), "cat", window())
	require.NoError(t, err)
	assert.Len(t, jobs, 1)
}

func TestFetchAll_AllPassesFailed(t *testing.T) {
	client := &fakeClient{
		fail: map[bool]map[int]bool{true: {1: true}, false: {1: true}},
	}
	f := NewFetcher(client, FetcherConfig{PageSize: 10, IncludeUnscheduled: true})

	_, err := f.FetchAll(context.Background(), "cat", window())
	assert.Error(t, err)
}

func TestFetchAll_NoWindowSinglePass(t *testing.T) {
	client := &fakeClient{pages: map[bool]map[int]*SearchPage{
		false: {1: {Jobs: jobsNamed("a"), Total: 1}},
	}}
	f := NewFetcher(client, FetcherConfig{PageSize: 10, IncludeUnscheduled: true})

	jobs, err := f.FetchAll(context.Background(), "cat", nil)
	require.NoError(t, err)
	assert.Len(t, jobs, 1)
	assert.Len(t, client.requests, 1)
}
