package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// HTTPClient talks to the backend relationship-discovery service.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient creates a client for the discovery service at baseURL.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// DiscoverRelationships fetches the relationship graph around one resource.
func (c *HTTPClient) DiscoverRelationships(ctx context.Context, resourceType, resourceID string, opts Options) (*Response, error) {
	if resourceType == "" || resourceID == "" {
		return nil, Validationf("discovery: resource type and id are required")
	}
	q := url.Values{}
	if opts.Depth > 0 {
		q.Set("depth", fmt.Sprintf("%d", opts.Depth))
	}
	if opts.IncludeCounts {
		q.Set("includeCounts", "true")
	}
	u := fmt.Sprintf("%s/relationships/%s/%s", c.baseURL,
		url.PathEscape(resourceType), url.PathEscape(resourceID))
	if enc := q.Encode(); enc != "" {
		u += "?" + enc
	}

	var resp Response
	if err := c.getJSON(ctx, u, &resp); err != nil {
		return nil, err
	}
	if resp.Nodes == nil {
		return nil, Validationf("discovery: response for %s/%s has no node list", resourceType, resourceID)
	}
	return &resp, nil
}

// FindRelationshipPaths delegates path discovery to the backend.
func (c *HTTPClient) FindRelationshipPaths(ctx context.Context, sourceType, sourceID, targetType, targetID string, maxDepth int) (*PathsResponse, error) {
	u := fmt.Sprintf("%s/relationships/paths?source=%s/%s&target=%s/%s&maxDepth=%d",
		c.baseURL,
		url.QueryEscape(sourceType), url.QueryEscape(sourceID),
		url.QueryEscape(targetType), url.QueryEscape(targetID), maxDepth)

	var resp PathsResponse
	if err := c.getJSON(ctx, u, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetStatistics fetches display-only relationship statistics.
func (c *HTTPClient) GetStatistics(ctx context.Context) (*Statistics, error) {
	var stats Statistics
	if err := c.getJSON(ctx, c.baseURL+"/relationships/statistics", &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *HTTPClient) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Validationf("discovery: build request: %s", err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("discovery: %w", err)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode >= 500:
		return fmt.Errorf("discovery: server error %d", res.StatusCode)
	case res.StatusCode >= 400:
		return Validationf("discovery: request rejected with status %d", res.StatusCode)
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return Validationf("discovery: decode response: %s", err)
	}
	return nil
}
