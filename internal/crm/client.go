// Package crm provides read access to the CRM's deal records. Deals enrich
// resolved links with names and amounts; matching itself never consults the
// CRM beyond the project identifiers it already holds.
package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// batchLimit is the CRM's maximum batch-read size.
const batchLimit = 100

// Deal is a CRM deal/project record.
type Deal struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Stage  string   `json:"stage"`
	Amount *float64 `json:"amount,omitempty"`
}

// Client is the deal-lookup surface the reports depend on.
type Client interface {
	BatchGetDeals(ctx context.Context, ids []string) (map[string]Deal, error)
}

// ClientConfig configures the HTTP client.
type ClientConfig struct {
	BaseURL string  `yaml:"base_url" mapstructure:"base_url"`
	Token   string  `yaml:"token" mapstructure:"token"`
	RPS     float64 `yaml:"rps" mapstructure:"rps"`
}

// Configured reports whether the integration has the minimum settings.
func (c ClientConfig) Configured() bool {
	return c.BaseURL != "" && c.Token != ""
}

type httpClient struct {
	baseURL string
	token   string
	hc      *http.Client
	limiter *rate.Limiter
}

// NewClient creates the CRM client.
func NewClient(cfg ClientConfig) Client {
	rps := cfg.RPS
	if rps <= 0 {
		rps = 8
	}
	return &httpClient{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		hc:      &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(rps), max(int(rps), 1)),
	}
}

type batchReadRequest struct {
	Inputs     []batchInput `json:"inputs"`
	Properties []string     `json:"properties"`
}

type batchInput struct {
	ID string `json:"id"`
}

type batchReadResponse struct {
	Results []struct {
		ID         string `json:"id"`
		Properties struct {
			DealName  string `json:"dealname"`
			DealStage string `json:"dealstage"`
			Amount    string `json:"amount"`
		} `json:"properties"`
	} `json:"results"`
}

// BatchGetDeals fetches deals by id, chunked to the CRM's batch limit.
// Unknown ids are simply absent from the result map.
func (c *httpClient) BatchGetDeals(ctx context.Context, ids []string) (map[string]Deal, error) {
	out := make(map[string]Deal, len(ids))
	for start := 0; start < len(ids); start += batchLimit {
		end := min(start+batchLimit, len(ids))
		if err := c.readBatch(ctx, ids[start:end], out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (c *httpClient) readBatch(ctx context.Context, ids []string, out map[string]Deal) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return eris.Wrap(err, "crm: rate limit")
	}

	reqBody := batchReadRequest{
		Properties: []string{"dealname", "dealstage", "amount"},
	}
	for _, id := range ids {
		reqBody.Inputs = append(reqBody.Inputs, batchInput{ID: id})
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return eris.Wrap(err, "crm: marshal batch read")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/crm/v3/objects/deals/batch/read", bytes.NewReader(body))
	if err != nil {
		return eris.Wrap(err, "crm: create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.hc.Do(httpReq)
	if err != nil {
		return eris.Wrap(err, "crm: batch read deals")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusMultiStatus {
		return eris.Errorf("crm: batch read deals: unexpected status %d", resp.StatusCode)
	}

	var decoded batchReadResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return eris.Wrap(err, "crm: decode batch read response")
	}

	for _, r := range decoded.Results {
		deal := Deal{
			ID:    r.ID,
			Name:  r.Properties.DealName,
			Stage: r.Properties.DealStage,
		}
		if r.Properties.Amount != "" {
			amount, err := strconv.ParseFloat(r.Properties.Amount, 64)
			if err != nil {
				zap.L().Debug("crm: unparseable deal amount",
					zap.String("deal_id", r.ID),
					zap.String("amount", r.Properties.Amount),
				)
			} else {
				deal.Amount = &amount
			}
		}
		out[r.ID] = deal
	}
	return nil
}
