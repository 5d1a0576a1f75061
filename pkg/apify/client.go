// Package apify is a minimal client for Apify's synchronous actor runs.
package apify

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://api.apify.com"

// Client runs Apify actors synchronously and returns their dataset items.
type Client interface {
	// RunSync POSTs payload to the actor's run-sync-get-dataset-items
	// endpoint authenticated with token. It returns the raw response body
	// and HTTP status; the caller classifies non-2xx statuses. An error is
	// returned only for transport-level failures (including timeouts).
	RunSync(ctx context.Context, token, actorID string, payload any) (json.RawMessage, int, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithTimeout sets the per-run timeout. Synchronous actor runs block until
// the actor finishes, so this is minutes rather than seconds.
func WithTimeout(d time.Duration) Option {
	return func(c *httpClient) {
		c.http.Timeout = d
	}
}

type httpClient struct {
	baseURL string
	http    *http.Client
}

// NewClient creates an Apify client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) RunSync(ctx context.Context, token, actorID string, payload any) (json.RawMessage, int, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, eris.Wrap(err, "apify: marshal payload")
	}

	url := c.baseURL + "/v2/acts/" + actorID + "/run-sync-get-dataset-items"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, 0, eris.Wrap(err, "apify: create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, eris.Wrap(err, "apify: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, eris.Wrap(err, "apify: read response")
	}

	return respBody, resp.StatusCode, nil
}
