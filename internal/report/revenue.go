package report

import (
	"sort"
	"time"

	"github.com/sells-group/fieldlink/internal/crm"
	"github.com/sells-group/fieldlink/internal/linkage"
	"github.com/sells-group/fieldlink/internal/model"
)

// ProjectRevenue is one project's per-day allocation inside the window.
type ProjectRevenue struct {
	ProjectID string             `json:"project_id"`
	DealName  string             `json:"deal_name,omitempty"`
	JobID     string             `json:"job_id"`
	Amount    float64            `json:"amount"`
	Days      linkage.Allocation `json:"days"`
}

// RevenueCalendar buckets allocated deal value per day across all links.
type RevenueCalendar struct {
	From     string             `json:"from"`
	To       string             `json:"to"`
	Days     linkage.Allocation `json:"days"`
	Projects []ProjectRevenue   `json:"projects"`
}

// BuildRevenue allocates each linked deal's amount across its job's business
// days and slices the result to [from, to]. Per-day shares stay computed
// against the job's full span; the window is a subset, not a re-normalization.
// Links without an amount or a schedule start are skipped.
func BuildRevenue(links map[string]model.ResolvedLink, deals map[string]crm.Deal, from, to time.Time) *RevenueCalendar {
	cal := &RevenueCalendar{
		From: from.UTC().Format("2006-01-02"),
		To:   to.UTC().Format("2006-01-02"),
		Days: make(linkage.Allocation),
	}

	for projectID, link := range links {
		deal, ok := deals[projectID]
		if !ok || deal.Amount == nil || link.ScheduledStart == nil {
			continue
		}
		start := *link.ScheduledStart
		end := start
		if link.ScheduledEnd != nil {
			end = *link.ScheduledEnd
		}

		alloc := linkage.AllocateSpan(*deal.Amount, start, end).Window(from, to)
		if len(alloc) == 0 {
			continue
		}

		for day, value := range alloc {
			cal.Days[day] += value
		}
		cal.Projects = append(cal.Projects, ProjectRevenue{
			ProjectID: projectID,
			DealName:  deal.Name,
			JobID:     link.JobID,
			Amount:    *deal.Amount,
			Days:      alloc,
		})
	}

	sort.Slice(cal.Projects, func(i, j int) bool { return cal.Projects[i].ProjectID < cal.Projects[j].ProjectID })
	return cal
}
