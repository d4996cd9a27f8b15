// Package beatport implements the search-provider and page-parser
// collaborators against an online DJ catalog.
package beatport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/calliope-labs/cratematch/internal/core/ports"
)

const (
	defaultAPIBaseURL  = "https://api.beatport.com/v4"
	defaultSiteBaseURL = "https://www.beatport.com"
	defaultPerPage     = 5
)

// Client talks to the catalog's search API and its public track pages.
type Client struct {
	httpClient  *http.Client
	apiBaseURL  string
	siteBaseURL string
	maxRetries  int
	baseBackoff time.Duration
}

// compile-time interface assertions
var (
	_ ports.SearchProvider = (*Client)(nil)
	_ ports.PageParser     = (*Client)(nil)
)

// NewClient constructs a catalog client. Empty base URLs fall back to
// the public catalog endpoints.
func NewClient(httpClient *http.Client, apiBaseURL, siteBaseURL string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if apiBaseURL == "" {
		apiBaseURL = defaultAPIBaseURL
	}
	if siteBaseURL == "" {
		siteBaseURL = defaultSiteBaseURL
	}
	return &Client{
		httpClient:  httpClient,
		apiBaseURL:  strings.TrimRight(apiBaseURL, "/"),
		siteBaseURL: strings.TrimRight(siteBaseURL, "/"),
	}
}

// NewAuthenticatedClient constructs a client whose API requests carry a
// client-credentials bearer token.
func NewAuthenticatedClient(ctx context.Context, clientID, clientSecret, apiBaseURL, siteBaseURL string) *Client {
	if apiBaseURL == "" {
		apiBaseURL = defaultAPIBaseURL
	}
	conf := clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     strings.TrimRight(apiBaseURL, "/") + "/auth/o/token/",
	}
	return NewClient(conf.Client(ctx), apiBaseURL, siteBaseURL)
}

// Search returns candidate track page URLs for a query, at most
// maxResults of them. No results is an empty slice, not an error.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]string, error) {
	if maxResults <= 0 {
		maxResults = defaultPerPage
	}

	searchURL, err := url.Parse(c.apiBaseURL + "/catalog/search")
	if err != nil {
		return nil, fmt.Errorf("beatport adapter: invalid search url: %w", err)
	}
	q := searchURL.Query()
	q.Set("q", query)
	q.Set("type", "tracks")
	q.Set("per_page", strconv.Itoa(maxResults))
	searchURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("beatport adapter: failed to create search request: %w", err)
	}

	resp, err := c.doRequestWithRetry(req)
	if err != nil {
		return nil, fmt.Errorf("beatport adapter: search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("beatport adapter: search status %d", resp.StatusCode)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("beatport adapter: search decode error: %w", err)
	}

	urls := make([]string, 0, len(body.Tracks))
	for _, t := range body.Tracks {
		if t.Slug == "" || t.ID == 0 {
			continue
		}
		urls = append(urls, fmt.Sprintf("%s/track/%s/%d", c.siteBaseURL, t.Slug, t.ID))
		if len(urls) == maxResults {
			break
		}
	}
	return urls, nil
}
