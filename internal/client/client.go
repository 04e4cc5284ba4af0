// Package client is the outbound HTTP client the web UI uses to talk to the
// generation API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"examprep/internal/models"
)

// DefaultBaseURL is used when API_BASE_URL is not set.
const DefaultBaseURL = "http://127.0.0.1:8000"

// maxPoints is sent on every points request; it is not user-configurable.
const maxPoints = 8

// Query carries the user's form input.
type Query struct {
	Topic string
	Count int
}

// RequestError is a non-2xx response from the API, carrying the status code
// and the raw response body.
type RequestError struct {
	Status int
	Body   string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("API error %d: %s", e.Status, e.Body)
}

// Client calls the generation API. Each call is a single attempt with no
// retry and no client-side timeout; cancellation comes from the caller's
// context.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client using API_BASE_URL, falling back to DefaultBaseURL.
func New() *Client {
	base := os.Getenv("API_BASE_URL")
	if base == "" {
		base = DefaultBaseURL
	}
	return NewWithBaseURL(base)
}

// NewWithBaseURL creates a Client against an explicit base URL.
func NewWithBaseURL(base string) *Client {
	return &Client{
		baseURL:    base,
		httpClient: &http.Client{},
	}
}

// GenerateMCQs requests multiple-choice questions for the query.
func (c *Client) GenerateMCQs(ctx context.Context, q Query) (*models.MCQResponse, error) {
	payload := map[string]interface{}{
		"topic": q.Topic,
		"count": q.Count,
	}

	var resp models.MCQResponse
	if err := c.post(ctx, "/generate/mcq", payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GeneratePoints requests study points for the query's topic.
func (c *Client) GeneratePoints(ctx context.Context, q Query) (*models.PointsResponse, error) {
	payload := map[string]interface{}{
		"topic":      q.Topic,
		"max_points": maxPoints,
	}

	var resp models.PointsResponse
	if err := c.post(ctx, "/generate/points", payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// post sends one JSON request and decodes the JSON response into out. A
// non-2xx status becomes a *RequestError with the raw body text.
func (c *Client) post(ctx context.Context, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RequestError{Status: resp.StatusCode, Body: string(respBody)}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
