package report

import (
	"sort"
	"strings"

	"github.com/sells-group/fieldlink/internal/crm"
	"github.com/sells-group/fieldlink/internal/linkage"
	"github.com/sells-group/fieldlink/internal/model"
)

// Mismatch reasons.
const (
	ReasonNoJobLinked     = "no_job_linked"
	ReasonWonNotComplete  = "deal_won_job_not_complete"
	ReasonJobDoneDealOpen = "job_complete_deal_open"
)

// Mismatch is one disagreement between a deal's CRM stage and its linked
// job's status.
type Mismatch struct {
	ProjectID   string              `json:"project_id"`
	DealName    string              `json:"deal_name,omitempty"`
	DealStage   string              `json:"deal_stage"`
	JobID       string              `json:"job_id,omitempty"`
	JobStatus   string              `json:"job_status,omitempty"`
	StatusClass linkage.StatusClass `json:"status_class,omitempty"`
	Reason      string              `json:"reason"`
}

// BuildReconcile compares each deal's stage against its resolved job's status
// class. Missing links and ambiguous states are report rows, never errors.
func BuildReconcile(links map[string]model.ResolvedLink, deals map[string]crm.Deal) []Mismatch {
	var out []Mismatch
	for projectID, deal := range deals {
		link, linked := links[projectID]
		if !linked {
			out = append(out, Mismatch{
				ProjectID: projectID,
				DealName:  deal.Name,
				DealStage: deal.Stage,
				Reason:    ReasonNoJobLinked,
			})
			continue
		}

		class := linkage.ClassifyStatus(link.Status)
		switch {
		case stageWon(deal.Stage) && class != linkage.StatusTerminal:
			out = append(out, Mismatch{
				ProjectID:   projectID,
				DealName:    deal.Name,
				DealStage:   deal.Stage,
				JobID:       link.JobID,
				JobStatus:   link.Status,
				StatusClass: class,
				Reason:      ReasonWonNotComplete,
			})
		case !stageClosed(deal.Stage) && class == linkage.StatusTerminal:
			out = append(out, Mismatch{
				ProjectID:   projectID,
				DealName:    deal.Name,
				DealStage:   deal.Stage,
				JobID:       link.JobID,
				JobStatus:   link.Status,
				StatusClass: class,
				Reason:      ReasonJobDoneDealOpen,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProjectID < out[j].ProjectID })
	return out
}

func stageWon(stage string) bool {
	s := strings.ToLower(stage)
	return strings.Contains(s, "won")
}

func stageClosed(stage string) bool {
	s := strings.ToLower(stage)
	return strings.Contains(s, "closed") || strings.Contains(s, "won") || strings.Contains(s, "lost")
}
