// Package lookup wraps the historical-context lookup collaborator.
//
// The lookup service answers free-text questions about past incidents
// from the yard's mail archive. Its retrieval pipeline is not our
// concern; crisisd only speaks its small JSON query API and degrades
// gracefully when the service is slow, empty, or down.
package lookup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// QueryRequest asks the lookup service a question.
type QueryRequest struct {
	Message string `json:"message"`
	TopK    int    `json:"top_k"`
}

// Source is one supporting record behind an answer.
type Source struct {
	Sender     string `json:"sender"`
	SenderRole string `json:"sender_role"`
	Subject    string `json:"subject"`
	Vessel     string `json:"vessel_involved"`
}

// QueryResponse is the lookup service's answer.
type QueryResponse struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
}

// Client queries the lookup service.
type Client interface {
	Query(ctx context.Context, req QueryRequest) (*QueryResponse, error)
}

// HTTPConfig configures the HTTP lookup client.
type HTTPConfig struct {
	// BaseURL is the lookup service root, e.g. http://localhost:8471.
	BaseURL string

	// Timeout bounds each query (default: 10s).
	Timeout time.Duration
}

// HTTPClient is a Client over the lookup service's JSON API.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

// NewHTTPClient creates an HTTP lookup client.
func NewHTTPClient(cfg HTTPConfig) (*HTTPClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("lookup: base URL is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &HTTPClient{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Query posts the request to the service's query endpoint.
func (c *HTTPClient) Query(ctx context.Context, req QueryRequest) (*QueryResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("lookup: encoding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/v1/query", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("lookup: building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("lookup: query failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("lookup: reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("lookup: service returned %d", resp.StatusCode)
	}

	var out QueryResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("lookup: decoding response: %w", err)
	}
	return &out, nil
}
