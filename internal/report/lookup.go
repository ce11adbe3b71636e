// Package report projects resolved links into the consumer-facing shapes:
// a lookup table, a status reconciliation report, and a revenue calendar.
package report

import (
	"sort"
	"time"

	"github.com/sells-group/fieldlink/internal/crm"
	"github.com/sells-group/fieldlink/internal/linkage"
	"github.com/sells-group/fieldlink/internal/model"
)

// LinkRow is one project's resolved link, enriched with deal metadata.
type LinkRow struct {
	ProjectID      string              `json:"project_id"`
	DealName       string              `json:"deal_name,omitempty"`
	JobID          string              `json:"job_id"`
	Title          string              `json:"title"`
	Status         string              `json:"status"`
	StatusClass    linkage.StatusClass `json:"status_class"`
	ScheduledStart *time.Time          `json:"scheduled_start,omitempty"`
	ScheduledEnd   *time.Time          `json:"scheduled_end,omitempty"`
	Method         model.MatchMethod   `json:"method"`
	MethodScore    int                 `json:"method_score"`
	StatusScore    int                 `json:"status_score"`
	ContextScore   int                 `json:"context_score"`
}

// BuildLookup flattens resolved links into rows sorted by project id.
// Deals are enrichment only; a missing deal leaves the name empty.
func BuildLookup(links map[string]model.ResolvedLink, deals map[string]crm.Deal) []LinkRow {
	rows := make([]LinkRow, 0, len(links))
	for projectID, link := range links {
		row := LinkRow{
			ProjectID:      projectID,
			JobID:          link.JobID,
			Title:          link.Title,
			Status:         link.Status,
			StatusClass:    linkage.ClassifyStatus(link.Status),
			ScheduledStart: link.ScheduledStart,
			ScheduledEnd:   link.ScheduledEnd,
			Method:         link.Method,
			MethodScore:    link.MethodScore,
			StatusScore:    link.StatusScore,
			ContextScore:   link.ContextScore,
		}
		if deal, ok := deals[projectID]; ok {
			row.DealName = deal.Name
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ProjectID < rows[j].ProjectID })
	return rows
}
