package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
)

const (
	defaultTimeout = 3 * time.Second
)

// Client talks to a quill instance's REST surface.
type Client struct {
	client    *http.Client
	cache     *cache.Cache
	baseURL   string
	apiKey    string
	userAgent string
}

func New(baseURL string, apiKey string) *Client {
	httpClient := http.Client{
		Timeout: defaultTimeout,
	}

	c := &Client{
		client:    &httpClient,
		cache:     cache.New(10*time.Minute, 15*time.Minute),
		baseURL:   baseURL,
		apiKey:    apiKey,
		userAgent: "quill-client",
	}
	httpClient.Transport = c
	return c
}

func (c *Client) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", c.userAgent)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	return http.DefaultTransport.RoundTrip(req)
}

// DuplicateOptions tune a duplicate call. Draft nil leaves the server
// default (draft on) in place.
type DuplicateOptions struct {
	Locale string
	Depth  int
	Draft  *bool
}

// Duplicate copies an existing document into a new one and returns the
// post-processed result.
func (c *Client) Duplicate(ctx context.Context, collection string, id string, opts DuplicateOptions) (map[string]any, error) {
	endpoint := fmt.Sprintf("%s/collections/%s/%s/duplicate", c.baseURL, url.PathEscape(collection), url.PathEscape(id))

	query := url.Values{}
	if opts.Locale != "" {
		query.Set("locale", opts.Locale)
	}
	if opts.Depth > 0 {
		query.Set("depth", strconv.Itoa(opts.Depth))
	}
	if opts.Draft != nil {
		query.Set("draft", strconv.FormatBool(*opts.Draft))
	}
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return nil, err
	}

	return c.do(req)
}

// Get fetches one document shaped for the given locale. Results are
// cached briefly per collection/id/locale.
func (c *Client) Get(ctx context.Context, collection string, id string, locale string) (map[string]any, error) {
	cacheKey := fmt.Sprintf("%s/%s/%s", collection, id, locale)
	if cached, found := c.cache.Get(cacheKey); found {
		return cached.(map[string]any), nil
	}

	endpoint := fmt.Sprintf("%s/collections/%s/%s", c.baseURL, url.PathEscape(collection), url.PathEscape(id))
	if locale != "" {
		endpoint += "?locale=" + url.QueryEscape(locale)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	result, err := c.do(req)
	if err != nil {
		return nil, err
	}

	c.cache.Set(cacheKey, result, cache.DefaultExpiration)
	return result, nil
}

func (c *Client) do(req *http.Request) (map[string]any, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		var errResp struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
			return nil, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, errResp.Error)
		}
		return nil, fmt.Errorf("request failed with status %d", resp.StatusCode)
	}

	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, err
	}

	return result, nil
}
