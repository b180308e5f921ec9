// Package intel fetches simulated intel from an external
// JSONPlaceholder-style feed. The feed's posts stand in for intel
// reports and its users for external contact records.
package intel

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DefaultBaseURL is the public simulated feed.
const DefaultBaseURL = "https://jsonplaceholder.typicode.com"

// Report is one upstream post, read as an intel report.
type Report struct {
	UserID int    `json:"userId"`
	ID     int    `json:"id"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

// Contact is one upstream user record.
type Contact struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Website  string `json:"website"`
}

// Client talks to the intel feed.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the HTTP timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient replaces the underlying HTTP client. Tests use this to
// point at an httptest server transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// New creates an intel feed client. An empty baseURL selects the public
// feed.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Reports fetches up to limit reports, optionally filtered to one
// upstream user. A nil userID fetches across all users.
func (c *Client) Reports(ctx context.Context, limit int, userID *int) ([]Report, error) {
	params := url.Values{}
	params.Set("_limit", strconv.Itoa(limit))
	if userID != nil {
		params.Set("userId", strconv.Itoa(*userID))
	}

	resp, err := c.get(ctx, "/posts?"+params.Encode())
	if err != nil {
		return nil, &UnavailableError{Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &UpstreamError{Status: resp.StatusCode}
	}

	var reports []Report
	if err := json.NewDecoder(resp.Body).Decode(&reports); err != nil {
		return nil, fmt.Errorf("failed to decode reports: %w", err)
	}
	return reports, nil
}

// Contact fetches one upstream contact record. ErrNotFound is returned
// when the feed has no record for the id.
func (c *Client) Contact(ctx context.Context, id int) (*Contact, error) {
	resp, err := c.get(ctx, fmt.Sprintf("/users/%d", id))
	if err != nil {
		return nil, &UnavailableError{Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, &UpstreamError{Status: resp.StatusCode}
	}

	var contact Contact
	if err := json.NewDecoder(resp.Body).Decode(&contact); err != nil {
		return nil, fmt.Errorf("failed to decode contact: %w", err)
	}
	return &contact, nil
}

func (c *Client) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return c.httpClient.Do(req)
}
