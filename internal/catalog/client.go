package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// =============================================================================
// REMOTE CATALOG CLIENT
// =============================================================================

// DefaultPath is the endpoint serving the variable list.
const DefaultPath = "/autocomplete"

// DefaultTimeout bounds a single catalog request.
const DefaultTimeout = 120 * time.Second

// Fetcher retrieves the full variable list.
type Fetcher interface {
	Fetch(ctx context.Context) ([]Variable, error)
}

// Client fetches the catalog from the autocomplete service.
type Client struct {
	baseURL string
	path    string
	client  *http.Client
}

// NewClient creates a client for baseURL. An empty path uses DefaultPath and
// a non-positive timeout uses DefaultTimeout.
func NewClient(baseURL, path string, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("catalog base URL required")
	}
	if path == "" {
		path = DefaultPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		path:    path,
		client: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// URL returns the full endpoint address.
func (c *Client) URL() string {
	return c.baseURL + c.path
}

// Fetch performs GET on the catalog endpoint and decodes the variable list.
func (c *Client) Fetch(ctx context.Context) ([]Variable, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("catalog returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(bodyBytes)))
	}

	var vars []Variable
	if err := json.NewDecoder(resp.Body).Decode(&vars); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	return vars, nil
}
