package model

import "time"

// MatchMethod identifies the signal source that produced a link candidate.
type MatchMethod string

const (
	// MethodCacheHit is a previously persisted link from the scheduling
	// system of record.
	MethodCacheHit MatchMethod = "cache_hit"
	// MethodDirectID is a deal identifier found in a job custom field.
	MethodDirectID MatchMethod = "direct_id"
	// MethodTagID is a deal identifier or project number encoded as a job tag.
	MethodTagID MatchMethod = "tag_id"
	// MethodNameMatch is a fuzzy customer-name/address match on the job title.
	MethodNameMatch MatchMethod = "name_match"
)

// LinkCandidate is a hypothesized link between one job and one project,
// backed by a single matching signal. Candidates exist only within one
// resolution pass.
type LinkCandidate struct {
	JobID     string      `json:"job_id"`
	ProjectID string      `json:"project_id"`
	Method    MatchMethod `json:"method"`

	// MethodScore is the fixed reliability weight of the signal source and
	// the primary sort key. StatusScore and ContextScore break ties in order.
	MethodScore  int `json:"method_score"`
	StatusScore  int `json:"status_score"`
	ContextScore int `json:"context_score"`

	// Job field snapshot carried for the resolved output. Cache-sourced
	// candidates carry the cache's (possibly stale) copy.
	Title          string     `json:"title"`
	Status         string     `json:"status"`
	ScheduledStart *time.Time `json:"scheduled_start,omitempty"`
	ScheduledEnd   *time.Time `json:"scheduled_end,omitempty"`

	// FromCache marks candidates sourced from the persisted link cache.
	FromCache bool `json:"from_cache,omitempty"`
}

// ResolvedLink is the single candidate surviving scoring and dedup for one
// project in one resolution pass.
type ResolvedLink struct {
	ProjectID      string      `json:"project_id"`
	JobID          string      `json:"job_id"`
	Title          string      `json:"title"`
	Status         string      `json:"status"`
	ScheduledStart *time.Time  `json:"scheduled_start,omitempty"`
	ScheduledEnd   *time.Time  `json:"scheduled_end,omitempty"`
	Method         MatchMethod `json:"method"`
	MethodScore    int         `json:"method_score"`
	StatusScore    int         `json:"status_score"`
	ContextScore   int         `json:"context_score"`
}

// CacheEntry is a durable job-project link established by a prior scheduling
// action in the external system of record. The engine only ever reads these.
type CacheEntry struct {
	ProjectID      string     `json:"project_id"`
	JobID          string     `json:"job_id"`
	Title          string     `json:"title"`
	Status         string     `json:"status"`
	CategoryID     string     `json:"category_id,omitempty"`
	ScheduledStart *time.Time `json:"scheduled_start,omitempty"`
	ScheduledEnd   *time.Time `json:"scheduled_end,omitempty"`
	LinkedAt       *time.Time `json:"linked_at,omitempty"`
}
