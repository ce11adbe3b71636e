package linkage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/fieldlink/internal/model"
)

func TestResolve_CacheAndLiveMergeKeepsCacheScoreLiveFields(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	cands := []model.LinkCandidate{
		{
			JobID: "j1", ProjectID: "p1",
			Method: model.MethodCacheHit, MethodScore: MethodScoreCache,
			Title: "Stale title", Status: "Scheduled", StatusScore: StatusScoreActive,
			FromCache: true,
		},
		{
			JobID: "j1", ProjectID: "p1",
			Method: model.MethodDirectID, MethodScore: MethodScoreDirectID,
			Title: "Live title", Status: "In Progress", StatusScore: StatusScoreActive,
			ScheduledStart: &start,
		},
	}

	links := Resolve(cands)
	require.Contains(t, links, "p1")
	link := links["p1"]

	// Reliability tier from the cache, data from the live API.
	assert.Equal(t, MethodScoreCache, link.MethodScore)
	assert.Equal(t, model.MethodCacheHit, link.Method)
	assert.Equal(t, "Live title", link.Title)
	assert.Equal(t, "In Progress", link.Status)
	require.NotNil(t, link.ScheduledStart)
	assert.Equal(t, start, *link.ScheduledStart)
}

func TestResolve_DirectBeatsLowerTiersRegardlessOfStatus(t *testing.T) {
	cands := []model.LinkCandidate{
		// Name candidate with the best possible status and context.
		{JobID: "j2", ProjectID: "p1", Method: model.MethodNameMatch,
			MethodScore: MethodScoreNameWithNumber, StatusScore: StatusScoreActive, ContextScore: 20},
		// Direct candidate on a terminal job.
		{JobID: "j1", ProjectID: "p1", Method: model.MethodDirectID,
			MethodScore: MethodScoreDirectID, StatusScore: StatusScoreTerminal},
	}

	links := Resolve(cands)
	assert.Equal(t, "j1", links["p1"].JobID)
	assert.Equal(t, model.MethodDirectID, links["p1"].Method)
}

func TestResolve_StatusThenContextBreakTies(t *testing.T) {
	cands := []model.LinkCandidate{
		{JobID: "j1", ProjectID: "p1", Method: model.MethodNameMatch, MethodScore: 10, StatusScore: 0, ContextScore: 20},
		{JobID: "j2", ProjectID: "p1", Method: model.MethodNameMatch, MethodScore: 10, StatusScore: 20, ContextScore: 0},
		{JobID: "j3", ProjectID: "p1", Method: model.MethodNameMatch, MethodScore: 10, StatusScore: 20, ContextScore: 10},
	}

	links := Resolve(cands)
	assert.Equal(t, "j3", links["p1"].JobID)
}

func TestResolve_RankMonotonicInStatusAndContext(t *testing.T) {
	base := model.LinkCandidate{JobID: "base", ProjectID: "p1", Method: model.MethodNameMatch, MethodScore: 10, StatusScore: 10, ContextScore: 5}
	rival := model.LinkCandidate{JobID: "rival", ProjectID: "p1", Method: model.MethodNameMatch, MethodScore: 10, StatusScore: 10, ContextScore: 4}

	// base already wins; raising its scores must never change that.
	for _, status := range []int{10, 15, 20} {
		for _, context := range []int{5, 10, 20} {
			improved := base
			improved.StatusScore = status
			improved.ContextScore = context
			links := Resolve([]model.LinkCandidate{improved, rival})
			assert.Equal(t, "base", links["p1"].JobID)
		}
	}
}

func TestResolve_FullTieFirstSeenWins(t *testing.T) {
	cands := []model.LinkCandidate{
		{JobID: "j1", ProjectID: "p1", Method: model.MethodNameMatch, MethodScore: 10, StatusScore: 10, ContextScore: 0},
		{JobID: "j2", ProjectID: "p1", Method: model.MethodNameMatch, MethodScore: 10, StatusScore: 10, ContextScore: 0},
	}
	links := Resolve(cands)
	assert.Equal(t, "j1", links["p1"].JobID)
}

func TestResolve_Idempotent(t *testing.T) {
	cands := []model.LinkCandidate{
		{JobID: "j1", ProjectID: "p1", Method: model.MethodTagID, MethodScore: 50, StatusScore: 20},
		{JobID: "j2", ProjectID: "p1", Method: model.MethodNameMatch, MethodScore: 30, StatusScore: 20},
		{JobID: "j1", ProjectID: "p2", Method: model.MethodNameMatch, MethodScore: 10, StatusScore: 15},
	}

	first := Resolve(cands)
	second := Resolve(cands)
	assert.Equal(t, first, second)
}

func TestResolve_JobMayResolveToMultipleProjects(t *testing.T) {
	// Greedy per-project selection: genuine ambiguity is accepted, not an error.
	cands := []model.LinkCandidate{
		{JobID: "j1", ProjectID: "p1", Method: model.MethodNameMatch, MethodScore: 10},
		{JobID: "j1", ProjectID: "p2", Method: model.MethodNameMatch, MethodScore: 10},
	}
	links := Resolve(cands)
	assert.Equal(t, "j1", links["p1"].JobID)
	assert.Equal(t, "j1", links["p2"].JobID)
}

func TestResolve_SameJobMultipleLiveSignalsKeepsStrongest(t *testing.T) {
	cands := []model.LinkCandidate{
		{JobID: "j1", ProjectID: "p1", Method: model.MethodNameMatch, MethodScore: 10},
		{JobID: "j1", ProjectID: "p1", Method: model.MethodTagID, MethodScore: 50},
	}
	links := Resolve(cands)
	assert.Equal(t, model.MethodTagID, links["p1"].Method)
	assert.Equal(t, 50, links["p1"].MethodScore)
}

func TestResolve_SkipsCandidatesMissingIDs(t *testing.T) {
	cands := []model.LinkCandidate{
		{JobID: "", ProjectID: "p1", MethodScore: 100},
		{JobID: "j1", ProjectID: "", MethodScore: 100},
	}
	assert.Empty(t, Resolve(cands))
}

func TestResolve_CacheOnlyGroupKeepsCacheFields(t *testing.T) {
	cands := []model.LinkCandidate{
		{JobID: "j1", ProjectID: "p1", Method: model.MethodCacheHit, MethodScore: MethodScoreCache,
			Title: "Cached", Status: "Scheduled", FromCache: true},
	}
	links := Resolve(cands)
	assert.Equal(t, "Cached", links["p1"].Title)
	assert.Equal(t, model.MethodCacheHit, links["p1"].Method)
}
