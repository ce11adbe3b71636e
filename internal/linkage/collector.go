package linkage

import (
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/fieldlink/internal/model"
)

// Method reliability scores. These form a strict preference order: a cache or
// direct-identifier candidate always outranks tag and name candidates no
// matter how fresh or corroborated the weaker signal is.
const (
	MethodScoreCache          = 200
	MethodScoreDirectID       = 100
	MethodScoreTagDeal        = 50
	MethodScoreTagNumber      = 45
	MethodScoreNameWithNumber = 30
	MethodScoreNamePlain      = 10
)

// Context corroboration bonuses, additive and capped.
const (
	contextNumberBonus  = 10
	contextAddressBonus = 6
	contextStreetBonus  = 4
	contextScoreCap     = 20
)

// minNameLen is the shortest customer/last name usable on its own. Shorter
// names ("Ng", "Li") hit too many unrelated titles.
const minNameLen = 3

// Sources toggles individual candidate signal sources. The zero value
// disables everything; use AllSources for the default.
type Sources struct {
	Cache    bool
	DirectID bool
	Tag      bool
	Name     bool
}

// AllSources enables every signal source.
func AllSources() Sources {
	return Sources{Cache: true, DirectID: true, Tag: true, Name: true}
}

// CollectorConfig configures a Collector.
type CollectorConfig struct {
	// TagPrefix is the prefix of deal-id encoded tags ("deal" matches
	// "deal-12345"). Empty disables the encoded-tag check.
	TagPrefix string
	// CategoryID, when set, re-filters jobs by category. The search API may
	// return jobs outside the requested category.
	CategoryID string
	Sources    Sources
}

// Collector emits link candidates from the configured signal sources. It is
// stateless across passes; the cache is an input, not owned state.
type Collector struct {
	cfg CollectorConfig
}

// NewCollector creates a Collector.
func NewCollector(cfg CollectorConfig) *Collector {
	return &Collector{cfg: cfg}
}

// Collect runs every enabled signal source over the inputs and returns all
// candidates. A job may emit candidates toward multiple projects and via
// multiple methods; the resolver sorts that out.
func (c *Collector) Collect(jobs []model.JobRecord, projects []model.ProjectRecord, cache []model.CacheEntry) []model.LinkCandidate {
	var out []model.LinkCandidate

	if c.cfg.Sources.Cache {
		out = append(out, c.collectCache(cache)...)
	}

	// Decode each project label once.
	decoded := make([]model.DecodedLabel, len(projects))
	for i, p := range projects {
		decoded[i] = p.DecodeLabel()
	}

	for _, job := range jobs {
		if job.ID == "" {
			// Malformed upstream record; skipped, not an error.
			zap.L().Debug("collector: dropping job without id", zap.String("title", job.Title))
			continue
		}
		if c.cfg.CategoryID != "" && job.CategoryID != "" && job.CategoryID != c.cfg.CategoryID {
			continue
		}

		if c.cfg.Sources.DirectID {
			out = append(out, c.collectDirect(job, projects, decoded)...)
		}
		if c.cfg.Sources.Tag {
			out = append(out, c.collectTags(job, projects, decoded)...)
		}
		if c.cfg.Sources.Name {
			out = append(out, c.collectNames(job, projects, decoded)...)
		}
	}

	return out
}

// collectCache turns every persisted link into a candidate, independent of
// the live fetch. The cache's fields may be stale; the resolver swaps in live
// fields when the same job also arrives via a live signal.
func (c *Collector) collectCache(cache []model.CacheEntry) []model.LinkCandidate {
	var out []model.LinkCandidate
	for _, entry := range cache {
		if entry.ProjectID == "" || entry.JobID == "" {
			continue
		}
		out = append(out, model.LinkCandidate{
			JobID:          entry.JobID,
			ProjectID:      entry.ProjectID,
			Method:         model.MethodCacheHit,
			MethodScore:    MethodScoreCache,
			StatusScore:    StatusScore(entry.Status),
			Title:          entry.Title,
			Status:         entry.Status,
			ScheduledStart: entry.ScheduledStart,
			ScheduledEnd:   entry.ScheduledEnd,
			FromCache:      true,
		})
	}
	return out
}

// collectDirect matches deal identifiers from job custom fields against
// project ids.
func (c *Collector) collectDirect(job model.JobRecord, projects []model.ProjectRecord, decoded []model.DecodedLabel) []model.LinkCandidate {
	ids := job.DealIDs()
	if len(ids) == 0 {
		return nil
	}
	var out []model.LinkCandidate
	for i, p := range projects {
		for _, id := range ids {
			if id != p.ID {
				continue
			}
			cand := liveCandidate(job, p.ID, model.MethodDirectID, MethodScoreDirectID)
			cand.ContextScore = contextBonus(job.Title, decoded[i])
			out = append(out, cand)
			break
		}
	}
	return out
}

// collectTags checks for an encoded "<prefix>-<projectID>" tag and for the
// project's human-readable number as a literal tag. The encoded tag is the
// more deliberate signal and scores higher.
func (c *Collector) collectTags(job model.JobRecord, projects []model.ProjectRecord, decoded []model.DecodedLabel) []model.LinkCandidate {
	if len(job.Tags) == 0 {
		return nil
	}
	var out []model.LinkCandidate
	for i, p := range projects {
		if c.cfg.TagPrefix != "" && job.HasTag(c.cfg.TagPrefix+"-"+p.ID) {
			cand := liveCandidate(job, p.ID, model.MethodTagID, MethodScoreTagDeal)
			cand.ContextScore = contextBonus(job.Title, decoded[i])
			out = append(out, cand)
			continue
		}
		if num := decoded[i].Number; num != "" && job.HasTag(num) {
			cand := liveCandidate(job, p.ID, model.MethodTagID, MethodScoreTagNumber)
			cand.ContextScore = contextBonus(job.Title, decoded[i])
			out = append(out, cand)
		}
	}
	return out
}

// collectNames matches the decoded project label against the job title.
// The check order is deliberate and encodes accumulated tie-break behavior:
// project-number containment first (tracked separately with a higher method
// score), then full-name containment, then the guarded last-name forms.
func (c *Collector) collectNames(job model.JobRecord, projects []model.ProjectRecord, decoded []model.DecodedLabel) []model.LinkCandidate {
	title := strings.ToLower(job.Title)
	if title == "" {
		return nil
	}
	var out []model.LinkCandidate
	for i, p := range projects {
		d := decoded[i]
		numberHit := d.Number != "" && strings.Contains(title, strings.ToLower(d.Number))
		nameHit := nameMatches(title, d)

		if !numberHit && !nameHit {
			continue
		}

		score := MethodScoreNamePlain
		if numberHit {
			score = MethodScoreNameWithNumber
		}
		cand := liveCandidate(job, p.ID, model.MethodNameMatch, score)
		cand.ContextScore = contextBonus(job.Title, d)
		out = append(out, cand)
	}
	return out
}

// nameMatches applies the customer-name containment rules: the full name in
// either "Last, First" or "First Last" order qualifies; the last name alone
// only when followed by a comma or as the title prefix, and never when
// shorter than minNameLen.
func nameMatches(lowerTitle string, d model.DecodedLabel) bool {
	last := strings.ToLower(d.LastName)
	first := strings.ToLower(d.FirstName)

	if last != "" && first != "" {
		if strings.Contains(lowerTitle, last+", "+first) || strings.Contains(lowerTitle, first+" "+last) {
			return true
		}
	}
	if len(last) < minNameLen {
		return false
	}
	if strings.Contains(lowerTitle, last+",") {
		return true
	}
	return strings.HasPrefix(lowerTitle, last)
}

// contextBonus computes the address/identifier corroboration score for a
// live candidate: project number in the title, full address containment, and
// a leading street-number hit each add independently, capped additively.
func contextBonus(title string, d model.DecodedLabel) int {
	lower := strings.ToLower(title)
	bonus := 0

	if d.Number != "" && strings.Contains(lower, strings.ToLower(d.Number)) {
		bonus += contextNumberBonus
	}
	if d.Address != "" && strings.Contains(lower, strings.ToLower(d.Address)) {
		bonus += contextAddressBonus
	}
	if d.StreetNumber != "" && containsWord(lower, d.StreetNumber) {
		bonus += contextStreetBonus
	}

	if bonus > contextScoreCap {
		bonus = contextScoreCap
	}
	return bonus
}

// liveCandidate snapshots the job's live fields into a candidate.
func liveCandidate(job model.JobRecord, projectID string, method model.MatchMethod, score int) model.LinkCandidate {
	return model.LinkCandidate{
		JobID:          job.ID,
		ProjectID:      projectID,
		Method:         method,
		MethodScore:    score,
		StatusScore:    StatusScore(job.Status),
		Title:          job.Title,
		Status:         job.Status,
		ScheduledStart: job.ScheduledStart,
		ScheduledEnd:   job.ScheduledEnd,
	}
}

// containsWord reports whether text contains needle bounded by
// non-alphanumeric characters or string boundaries.
func containsWord(text, needle string) bool {
	if needle == "" || text == "" {
		return false
	}
	start := 0
	for {
		idx := strings.Index(text[start:], needle)
		if idx < 0 {
			return false
		}
		absIdx := start + idx
		endIdx := absIdx + len(needle)

		leftOK := absIdx == 0 || !isAlphaNum(text[absIdx-1])
		rightOK := endIdx == len(text) || !isAlphaNum(text[endIdx])
		if leftOK && rightOK {
			return true
		}
		start = absIdx + 1
	}
}

func isAlphaNum(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
