package model

import (
	"net/url"
	"strings"
)

// ProjectRecord is a CRM-side deal/project the engine tries to link a job to.
// DisplayName is the CRM's delimited label, e.g.
// "PROJ-7700 | Smith, Victor | 100 Main St".
type ProjectRecord struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"display_name"`
	Amount      *float64 `json:"amount,omitempty"`
}

// DecodedLabel is the result of decoding a project's display label into its
// matchable components. Any component may be empty.
type DecodedLabel struct {
	Number       string `json:"number,omitempty"`
	CustomerName string `json:"customer_name,omitempty"`
	LastName     string `json:"last_name,omitempty"`
	FirstName    string `json:"first_name,omitempty"`
	Address      string `json:"address,omitempty"`
	StreetNumber string `json:"street_number,omitempty"`
}

// DecodeLabel URL-decodes and splits the display label on "|". The expected
// shape is number | customer | address, but labels with fewer segments occur;
// a two-segment label is treated as customer | address, a single segment as
// customer only.
func (p ProjectRecord) DecodeLabel() DecodedLabel {
	raw := p.DisplayName
	if decoded, err := url.QueryUnescape(raw); err == nil {
		raw = decoded
	}

	parts := strings.Split(raw, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	var d DecodedLabel
	switch len(parts) {
	case 0:
	case 1:
		d.CustomerName = parts[0]
	case 2:
		d.CustomerName = parts[0]
		d.Address = parts[1]
	default:
		d.Number = parts[0]
		d.CustomerName = parts[1]
		d.Address = parts[2]
	}

	if d.CustomerName != "" {
		// Customer labels are "Last, First"; a name without a comma is kept
		// whole as the last name.
		if last, first, ok := strings.Cut(d.CustomerName, ","); ok {
			d.LastName = strings.TrimSpace(last)
			d.FirstName = strings.TrimSpace(first)
		} else {
			d.LastName = strings.TrimSpace(d.CustomerName)
		}
	}

	if d.Address != "" {
		d.StreetNumber = leadingDigits(d.Address)
	}
	return d
}

// leadingDigits returns the digit prefix of s, if any.
func leadingDigits(s string) string {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	return s[:end]
}
