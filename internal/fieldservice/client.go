// Package fieldservice talks to the field-service management API: a
// rate-limited search client plus a paginated fetcher that assembles the
// full de-duplicated job set for a resolution pass.
package fieldservice

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/fieldlink/internal/model"
)

// ErrNotConfigured signals that the field-service integration has no base URL
// or API key. Callers must surface this distinctly from an empty result set.
var ErrNotConfigured = eris.New("fieldservice: integration not configured")

// SearchRequest describes one page of a job search.
type SearchRequest struct {
	CategoryID string
	From       *time.Time
	To         *time.Time
	Page       int
	PageSize   int
}

// SearchPage is one page of search results along with the remote total.
type SearchPage struct {
	Jobs  []model.JobRecord
	Total int
}

// Client is the job-search API surface the fetcher depends on.
type Client interface {
	SearchJobs(ctx context.Context, req SearchRequest) (*SearchPage, error)
}

// ClientConfig configures the HTTP client.
type ClientConfig struct {
	BaseURL string  `yaml:"base_url" mapstructure:"base_url"`
	APIKey  string  `yaml:"api_key" mapstructure:"api_key"`
	RPS     float64 `yaml:"rps" mapstructure:"rps"`
}

// Configured reports whether the integration has the minimum settings.
func (c ClientConfig) Configured() bool {
	return c.BaseURL != "" && c.APIKey != ""
}

type httpClient struct {
	baseURL string
	apiKey  string
	hc      *http.Client
	limiter *rate.Limiter
}

// NewClient creates the HTTP search client. Returns ErrNotConfigured when the
// base URL or API key is missing.
func NewClient(cfg ClientConfig) (Client, error) {
	if !cfg.Configured() {
		return nil, ErrNotConfigured
	}
	rps := cfg.RPS
	if rps <= 0 {
		rps = 5
	}
	return &httpClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		hc:      &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(rps), max(int(rps), 1)),
	}, nil
}

// searchPayload is the wire request body.
type searchPayload struct {
	CategoryID string `json:"category_id,omitempty"`
	From       string `json:"from,omitempty"`
	To         string `json:"to,omitempty"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
}

// searchResponse is the wire response. Jobs stay in their raw shape until
// normalization.
type searchResponse struct {
	Jobs  []rawJob `json:"jobs"`
	Total int      `json:"total"`
}

func (c *httpClient) SearchJobs(ctx context.Context, req SearchRequest) (*SearchPage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "fieldservice: rate limit")
	}

	payload := searchPayload{
		CategoryID: req.CategoryID,
		Page:       req.Page,
		PageSize:   req.PageSize,
	}
	if req.From != nil {
		payload.From = req.From.UTC().Format("2006-01-02")
	}
	if req.To != nil {
		payload.To = req.To.UTC().Format("2006-01-02")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, eris.Wrap(err, "fieldservice: marshal search request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/jobs/search", bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "fieldservice: create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.hc.Do(httpReq)
	if err != nil {
		return nil, eris.Wrap(err, "fieldservice: search jobs")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("fieldservice: search jobs: unexpected status %d", resp.StatusCode)
	}

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, eris.Wrap(err, "fieldservice: decode search response")
	}

	page := &SearchPage{Total: decoded.Total}
	for _, raw := range decoded.Jobs {
		job, ok := raw.normalize()
		if !ok {
			zap.L().Debug("fieldservice: skipping malformed job record",
				zap.String("title", raw.Title),
			)
			continue
		}
		page.Jobs = append(page.Jobs, job)
	}
	return page, nil
}

// rawJob is the upstream job shape. Producers are inconsistent: ids arrive as
// "id" or "uuid", custom-field labels as "label" or "name", and timestamps in
// several layouts. All of that tolerance lives here, at the boundary.
type rawJob struct {
	ID           string        `json:"id"`
	UUID         string        `json:"uuid"`
	Title        string        `json:"title"`
	CategoryID   jsonString    `json:"category_id"`
	Start        string        `json:"scheduled_start"`
	End          string        `json:"scheduled_end"`
	Status       string        `json:"status"`
	Tags         []string      `json:"tags"`
	CustomFields []rawField    `json:"custom_fields"`
	Assigned     []rawAssignee `json:"assigned_users"`
}

type rawField struct {
	Label string `json:"label"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

type rawAssignee struct {
	Name string `json:"name"`
}

// jsonString tolerates numeric or string encodings of the same field.
type jsonString string

func (s *jsonString) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		*s = ""
		return nil
	}
	if data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = jsonString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	*s = jsonString(num.String())
	return nil
}

// jobTimeLayouts lists the timestamp layouts seen from upstream.
var jobTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseJobTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range jobTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

// normalize converts the raw upstream shape into a JobRecord. A job without
// any identifier is unusable and reported as not-ok; unparseable timestamps
// degrade to nil rather than failing the record.
func (r rawJob) normalize() (model.JobRecord, bool) {
	id := r.ID
	if id == "" {
		id = r.UUID
	}
	if id == "" {
		return model.JobRecord{}, false
	}

	job := model.JobRecord{
		ID:             id,
		Title:          r.Title,
		CategoryID:     string(r.CategoryID),
		ScheduledStart: parseJobTime(r.Start),
		ScheduledEnd:   parseJobTime(r.End),
		Status:         r.Status,
		Tags:           r.Tags,
	}
	for _, f := range r.CustomFields {
		label := f.Label
		if label == "" {
			label = f.Name
		}
		job.CustomFields = append(job.CustomFields, model.CustomField{Label: label, Value: f.Value})
	}
	for _, a := range r.Assigned {
		if a.Name != "" {
			job.AssignedUsers = append(job.AssignedUsers, a.Name)
		}
	}
	return job, true
}
