// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package s2

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"github.com/Ayden-Zhou/Scholar-Tool/pkg/types"
)

// defaultMinSimilarity is the lowest title similarity accepted when
// resolving free text. Below this the resolver reports ErrNotFound
// rather than guessing.
const defaultMinSimilarity = 0.5

// searchCandidates is how many search hits are scored per resolution.
const searchCandidates = 10

// Resolve turns a loose query into one canonical paper record. Strict
// identifiers (paper SHA, arXiv ID, DOI, CorpusId) go straight to the
// lookup endpoint; anything else is resolved as a title against the
// search endpoint with explicit similarity scoring. Idempotent for the
// same query against unchanged API state.
func (c *Client) Resolve(ctx context.Context, query string) (*types.PaperNode, error) {
	if id, ok := ClassifyIdentifier(query); ok {
		return c.Lookup(ctx, id)
	}
	return c.ResolveTitle(ctx, query)
}

// Lookup fetches a paper record by strict identifier.
func (c *Client) Lookup(ctx context.Context, id string) (*types.PaperNode, error) {
	var p apiPaper
	params := url.Values{"fields": {paperFields}}
	if err := c.get(ctx, "/"+url.PathEscape(id), params, &p); err != nil {
		return nil, err
	}
	if p.PaperID == "" {
		return nil, fmt.Errorf("lookup %q: %w", id, ErrNotFound)
	}
	node := p.toNode()
	return &node, nil
}

type searchResponse struct {
	Total int        `json:"total"`
	Data  []apiPaper `json:"data"`
}

// ResolveTitle searches by title and picks the single best candidate.
// Candidates are scored by token overlap between normalized titles; ties
// break by citation count, then by API return order, so resolution is
// deterministic. A best score below the similarity threshold fails with
// ErrNotFound instead of silently returning a wrong paper.
func (c *Client) ResolveTitle(ctx context.Context, title string) (*types.PaperNode, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("empty title query")
	}

	params := url.Values{
		"query":  {title},
		"limit":  {fmt.Sprintf("%d", searchCandidates)},
		"fields": {paperFields},
	}

	var sr searchResponse
	if err := c.get(ctx, "/search", params, &sr); err != nil {
		return nil, err
	}
	if len(sr.Data) == 0 {
		return nil, fmt.Errorf("no results for %q: %w", title, ErrNotFound)
	}

	threshold := c.MinSimilarity
	if threshold <= 0 {
		threshold = defaultMinSimilarity
	}

	best := -1
	bestScore := -1.0
	for i, cand := range sr.Data {
		if cand.PaperID == "" {
			continue
		}
		score := TitleSimilarity(title, cand.Title)
		switch {
		case score > bestScore:
			best, bestScore = i, score
		case score == bestScore && best >= 0 &&
			cand.CitationCount > sr.Data[best].CitationCount:
			best = i
		}
	}

	if best < 0 || bestScore < threshold {
		return nil, fmt.Errorf("no candidate for %q cleared similarity %.2f (best %.2f): %w",
			title, threshold, bestScore, ErrNotFound)
	}

	node := sr.Data[best].toNode()
	return &node, nil
}

// TitleSimilarity scores two titles in [0,1] by token overlap (Jaccard
// over normalized words). Deterministic by construction.
func TitleSimilarity(a, b string) float64 {
	ta := titleTokens(a)
	tb := titleTokens(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	inter := 0
	for tok := range ta {
		if tb[tok] {
			inter++
		}
	}
	union := len(ta) + len(tb) - inter
	return float64(inter) / float64(union)
}

// titleTokens returns the set of lowercased alphanumeric words in a title.
func titleTokens(title string) map[string]bool {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	tokens := make(map[string]bool)
	for _, tok := range strings.Fields(b.String()) {
		tokens[tok] = true
	}
	return tokens
}
