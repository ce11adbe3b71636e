package linkage

import (
	"sort"

	"github.com/sells-group/fieldlink/internal/model"
)

// Resolve collapses candidates into at most one ResolvedLink per project.
//
// Per project: candidates are grouped by job id; a group reached via both the
// cache and a live signal keeps the live candidate's fields under the cache's
// method score (the persisted link is the more reliable identity even when
// its data is stale). The deduplicated candidates are then stable-sorted by
// (methodScore, statusScore, contextScore) descending and the first wins.
//
// Ties that survive the full ordering are broken by input order — first seen
// wins. That is an accepted ambiguity, not an error. Selection is greedy and
// independent per project, so a genuinely ambiguous job may resolve to more
// than one project.
func Resolve(candidates []model.LinkCandidate) map[string]model.ResolvedLink {
	byProject := make(map[string][]model.LinkCandidate)
	var projectOrder []string
	for _, c := range candidates {
		if c.ProjectID == "" || c.JobID == "" {
			continue
		}
		if _, ok := byProject[c.ProjectID]; !ok {
			projectOrder = append(projectOrder, c.ProjectID)
		}
		byProject[c.ProjectID] = append(byProject[c.ProjectID], c)
	}

	out := make(map[string]model.ResolvedLink, len(byProject))
	for _, projectID := range projectOrder {
		deduped := dedupeByJob(byProject[projectID])

		sort.SliceStable(deduped, func(i, j int) bool {
			a, b := deduped[i], deduped[j]
			if a.MethodScore != b.MethodScore {
				return a.MethodScore > b.MethodScore
			}
			if a.StatusScore != b.StatusScore {
				return a.StatusScore > b.StatusScore
			}
			return a.ContextScore > b.ContextScore
		})

		best := deduped[0]
		out[projectID] = model.ResolvedLink{
			ProjectID:      projectID,
			JobID:          best.JobID,
			Title:          best.Title,
			Status:         best.Status,
			ScheduledStart: best.ScheduledStart,
			ScheduledEnd:   best.ScheduledEnd,
			Method:         best.Method,
			MethodScore:    best.MethodScore,
			StatusScore:    best.StatusScore,
			ContextScore:   best.ContextScore,
		}
	}
	return out
}

// dedupeByJob keeps one representative per job id, in first-seen job order.
func dedupeByJob(candidates []model.LinkCandidate) []model.LinkCandidate {
	byJob := make(map[string][]model.LinkCandidate)
	var jobOrder []string
	for _, c := range candidates {
		if _, ok := byJob[c.JobID]; !ok {
			jobOrder = append(jobOrder, c.JobID)
		}
		byJob[c.JobID] = append(byJob[c.JobID], c)
	}

	out := make([]model.LinkCandidate, 0, len(jobOrder))
	for _, jobID := range jobOrder {
		out = append(out, mergeGroup(byJob[jobID]))
	}
	return out
}

// mergeGroup picks the representative for one job reached via multiple
// signals. Cache + live merges take the live fields with the cache's method
// score and tier; otherwise the highest-method-score candidate wins, first
// seen on ties.
func mergeGroup(group []model.LinkCandidate) model.LinkCandidate {
	if len(group) == 1 {
		return group[0]
	}

	var cached *model.LinkCandidate
	var bestLive *model.LinkCandidate
	for i := range group {
		c := &group[i]
		if c.FromCache {
			if cached == nil {
				cached = c
			}
			continue
		}
		if bestLive == nil || c.MethodScore > bestLive.MethodScore {
			bestLive = c
		}
	}

	if cached != nil && bestLive != nil {
		merged := *bestLive
		merged.Method = cached.Method
		merged.MethodScore = cached.MethodScore
		merged.FromCache = true
		return merged
	}
	if cached != nil {
		return *cached
	}
	return *bestLive
}
