// Package googlesearch is a minimal client for the Google Custom Search
// JSON API.
package googlesearch

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://www.googleapis.com/customsearch/v1"

// ErrQuotaExceeded is returned when the API reports a 403, which for
// Custom Search almost always means the daily quota is spent.
var ErrQuotaExceeded = errors.New("googlesearch: daily quota exceeded")

// Item is one organic search result.
type Item struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// Client performs Custom Search queries.
type Client interface {
	Search(ctx context.Context, query string, num int) ([]Item, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	cseID   string
	baseURL string
	http    *http.Client
}

// NewClient creates a Custom Search client for the given API key and
// search engine id.
func NewClient(apiKey, cseID string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		cseID:   cseID,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type searchResponse struct {
	Items []Item `json:"items"`
}

func (c *httpClient) Search(ctx context.Context, query string, num int) ([]Item, error) {
	if num <= 0 || num > 10 {
		num = 10 // API maximum per request
	}

	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("cx", c.cseID)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(num))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "googlesearch: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "googlesearch: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "googlesearch: read response")
	}

	if resp.StatusCode == http.StatusForbidden {
		return nil, ErrQuotaExceeded
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("googlesearch: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var result searchResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "googlesearch: unmarshal response")
	}

	return result.Items, nil
}
