package leadgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/dennisdiepolder/monti/leadqueue/internal/types"
)

// Client talks to the lead queue server's HTTP API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new client pointing at the given server base URL
// (e.g. "http://localhost:8080").
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// CreateLead posts a lead to /internal/leads
func (c *Client) CreateLead(ctx context.Context, lead types.Lead) error {
	return c.do(ctx, http.MethodPost, "/internal/leads", lead, nil)
}

// Queue returns the ranked queue in the requested order
func (c *Client) Queue(ctx context.Context, sort string) ([]types.ScoredLead, error) {
	var resp struct {
		Leads []types.ScoredLead `json:"leads"`
	}
	path := "/api/queue?sort=" + url.QueryEscape(sort)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Leads, nil
}

// RouteLead hands a queued lead to an agent
func (c *Client) RouteLead(ctx context.Context, leadID, agentID string) error {
	body := map[string]string{"agentId": agentID}
	return c.do(ctx, http.MethodPost, "/api/leads/"+url.PathEscape(leadID)+"/route", body, nil)
}

// AbandonLead removes a queued lead without routing it
func (c *Client) AbandonLead(ctx context.Context, leadID string) error {
	return c.do(ctx, http.MethodDelete, "/api/leads/"+url.PathEscape(leadID), nil, nil)
}

// WipeLeads clears the server's queue
func (c *Client) WipeLeads(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/admin/leads", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	target := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&apiErr)
		if apiErr.Error != "" {
			return fmt.Errorf("%s %s returned status %d: %s", method, target, resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("%s %s returned status %d", method, target, resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
