// Package linkage implements the entity resolution engine: candidate
// collection from independent weak-identity signals, status scoring,
// per-project resolution, and business-day value allocation.
package linkage

import "strings"

// Status tier scores. Primary ordering between candidates always comes from
// the method score; status breaks ties between equally reliable signals.
const (
	StatusScoreTerminal = 0
	StatusScoreActive   = 20
	StatusScoreNew      = 15
	StatusScoreDefault  = 10
)

// StatusClass buckets a free-text job status.
type StatusClass string

const (
	StatusTerminal StatusClass = "terminal"
	StatusActive   StatusClass = "active"
	StatusNew      StatusClass = "new"
	StatusUnknown  StatusClass = "unknown"
)

// statusClasses maps exact normalized statuses to their class. Free-text
// statuses not listed here fall through to stem matching, then to unknown —
// an unrecognized status is never an error.
var statusClasses = map[string]StatusClass{
	"completed":        StatusTerminal,
	"complete":         StatusTerminal,
	"job completed":    StatusTerminal,
	"done":             StatusTerminal,
	"closed":           StatusTerminal,
	"closed out":       StatusTerminal,
	"cancelled":        StatusTerminal,
	"canceled":         StatusTerminal,
	"invoiced":         StatusTerminal,
	"paid":             StatusTerminal,
	"scheduled":        StatusActive,
	"in progress":      StatusActive,
	"in-progress":      StatusActive,
	"dispatched":       StatusActive,
	"en route":         StatusActive,
	"started":          StatusActive,
	"on site":          StatusActive,
	"active":           StatusActive,
	"new":              StatusNew,
	"unassigned":       StatusNew,
	"unscheduled":      StatusNew,
	"pending":          StatusNew,
	"needs scheduling": StatusNew,
}

// terminalStems catch producer-specific completion labels like
// "Completed - Paid" or "Auto-Cancelled".
var terminalStems = []string{"complet", "cancel", "closed", "invoic"}

var newStems = []string{"unschedul", "unassign", "needs schedul"}

// ClassifyStatus maps a free-text job status to its class.
func ClassifyStatus(status string) StatusClass {
	s := strings.ToLower(strings.TrimSpace(status))
	if s == "" {
		return StatusUnknown
	}
	if class, ok := statusClasses[s]; ok {
		return class
	}
	for _, stem := range terminalStems {
		if strings.Contains(s, stem) {
			return StatusTerminal
		}
	}
	for _, stem := range newStems {
		if strings.Contains(s, stem) {
			return StatusNew
		}
	}
	return StatusUnknown
}

// StatusScore derives the freshness score for a free-text job status.
// Terminal jobs score lowest so a finished job never outranks a live one
// within the same signal tier.
func StatusScore(status string) int {
	switch ClassifyStatus(status) {
	case StatusTerminal:
		return StatusScoreTerminal
	case StatusActive:
		return StatusScoreActive
	case StatusNew:
		return StatusScoreNew
	default:
		return StatusScoreDefault
	}
}
