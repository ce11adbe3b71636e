// Package model defines the record types exchanged between the field-service
// and CRM boundaries and the entity resolution engine.
package model

import (
	"regexp"
	"strings"
	"time"
)

// CustomField is a single label/value pair on a job. Upstream producers are
// inconsistent about label naming and casing, so labels are always compared
// through NormalizeFieldLabel.
type CustomField struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// JobRecord is an immutable snapshot of a job in the field-service system,
// taken at fetch time. Jobs have no local identity or persistence.
type JobRecord struct {
	ID             string        `json:"id"`
	Title          string        `json:"title"`
	CategoryID     string        `json:"category_id"`
	ScheduledStart *time.Time    `json:"scheduled_start,omitempty"`
	ScheduledEnd   *time.Time    `json:"scheduled_end,omitempty"`
	Status         string        `json:"status"`
	Tags           []string      `json:"tags,omitempty"`
	CustomFields   []CustomField `json:"custom_fields,omitempty"`
	AssignedUsers  []string      `json:"assigned_users,omitempty"`
}

var multiSpaceRe = regexp.MustCompile(`\s{2,}`)

// NormalizeFieldLabel standardizes a custom-field label for comparison:
// lowercase, underscores to spaces, collapsed whitespace. Producers disagree
// on "HubSpot Deal ID" vs "hubspot_deal_id" vs "Hubspot Deal Id".
func NormalizeFieldLabel(label string) string {
	label = strings.ToLower(strings.TrimSpace(label))
	label = strings.ReplaceAll(label, "_", " ")
	label = multiSpaceRe.ReplaceAllString(label, " ")
	return label
}

// dealIDLabels lists normalized labels recognized as a direct deal identifier.
var dealIDLabels = map[string]bool{
	"hubspot deal id": true,
	"hubspot deal":    true,
	"hubspot id":      true,
	"deal id":         true,
	"crm deal id":     true,
}

// dealURLRe extracts a deal identifier from a CRM record URL. Both the
// legacy /deal/<id> and the object-typed /record/0-3/<id> paths occur.
var dealURLRe = regexp.MustCompile(`/(?:deal|record/0-3)/(\d+)`)

// DealIDs returns every deal identifier found on the job's custom fields:
// values of identifier-labelled fields, plus identifiers parsed out of
// URL-shaped values on any field.
func (j JobRecord) DealIDs() []string {
	var ids []string
	seen := map[string]bool{}
	add := func(id string) {
		id = strings.TrimSpace(id)
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	for _, f := range j.CustomFields {
		value := strings.TrimSpace(f.Value)
		if value == "" {
			continue
		}
		if dealIDLabels[NormalizeFieldLabel(f.Label)] {
			if strings.HasPrefix(value, "http") {
				if m := dealURLRe.FindStringSubmatch(value); m != nil {
					add(m[1])
				}
				continue
			}
			add(value)
			continue
		}
		// Secondary path: a URL pasted into any field still identifies the deal.
		if strings.HasPrefix(value, "http") {
			if m := dealURLRe.FindStringSubmatch(value); m != nil {
				add(m[1])
			}
		}
	}
	return ids
}

// HasTag reports whether the job carries the given tag, case-insensitively.
func (j JobRecord) HasTag(tag string) bool {
	for _, t := range j.Tags {
		if strings.EqualFold(strings.TrimSpace(t), tag) {
			return true
		}
	}
	return false
}
