// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package s2 is the Semantic Scholar Graph API client: paper resolution
// by title or identifier, and paginated citation/reference listing with
// rate-limit backoff.
package s2

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/Ayden-Zhou/Scholar-Tool/internal/httputil"
	"github.com/Ayden-Zhou/Scholar-Tool/pkg/types"
)

// defaultBaseURL is the Semantic Scholar Graph API paper endpoint.
const defaultBaseURL = "https://api.semanticscholar.org/graph/v1/paper"

// paperFields lists the fields requested for every paper record.
const paperFields = "paperId,title,year,citationCount,authors"

// Sentinel errors surfaced to callers for the failure modes they must
// distinguish: a query that matches nothing versus an API that refused to
// answer within the retry budget.
var (
	ErrNotFound    = errors.New("paper not found")
	ErrRateLimited = errors.New("rate limit exceeded")
)

// Client is an explicit API session passed to every call. There is no
// package-level singleton: concurrent builds get independent clients so
// no hidden backoff or credential state is shared.
type Client struct {
	// HTTP is the underlying HTTP client. Required.
	HTTP *http.Client

	// BaseURL overrides the API endpoint; tests point it at an
	// httptest server. Empty means the production endpoint.
	BaseURL string

	// APIKey is an optional Semantic Scholar API key for higher rate limits.
	APIKey string

	// UserAgent is sent with every request.
	UserAgent string

	// MaxRetries bounds backoff attempts per request (0 = library default).
	MaxRetries int

	// MinSimilarity is the resolution threshold for title matches
	// (0 = default 0.5).
	MinSimilarity float64
}

// NewClient returns a Client with a timeout-bounded HTTP client.
func NewClient(cfg types.HTTPConfig, apiKey string) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		HTTP:      &http.Client{Timeout: timeout},
		APIKey:    apiKey,
		UserAgent: cfg.UserAgent,
	}
}

func (c *Client) baseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return defaultBaseURL
}

// get issues one API GET with retry/backoff and decodes the JSON body
// into out. HTTP 429 after exhausted retries maps to ErrRateLimited and
// HTTP 404 to ErrNotFound so callers can classify failures with errors.Is.
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	reqURL := c.baseURL() + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.UserAgent)
	if c.APIKey != "" {
		req.Header.Set("x-api-key", c.APIKey)
	}

	resp, err := httputil.DoWithRetry(ctx, c.HTTP, req, c.MaxRetries)
	if err != nil {
		return fmt.Errorf("Semantic Scholar API request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusTooManyRequests:
		return fmt.Errorf("%s: %w", path, ErrRateLimited)
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w", path, ErrNotFound)
	default:
		return fmt.Errorf("Semantic Scholar API returned HTTP %d for %s", resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing Semantic Scholar response: %w", err)
	}
	return nil
}

// Semantic Scholar API JSON structures.

type apiPaper struct {
	PaperID       string      `json:"paperId"`
	Title         string      `json:"title"`
	Year          int         `json:"year"`
	CitationCount int         `json:"citationCount"`
	Authors       []apiAuthor `json:"authors"`
}

type apiAuthor struct {
	AuthorID string `json:"authorId"`
	Name     string `json:"name"`
}

// toNode converts an API paper record to a PaperNode. Records with
// missing metadata keep zero values; connectivity matters more than
// completeness for display.
func (p apiPaper) toNode() types.PaperNode {
	node := types.PaperNode{
		PaperID:       p.PaperID,
		Title:         p.Title,
		Year:          p.Year,
		CitationCount: p.CitationCount,
	}
	for _, a := range p.Authors {
		if a.Name != "" {
			node.Authors = append(node.Authors, a.Name)
		}
	}
	return node
}
