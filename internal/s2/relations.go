// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package s2

import (
	"context"
	"fmt"
	"net/url"
	"sort"

	"github.com/Ayden-Zhou/Scholar-Tool/pkg/types"
)

// relationPageSize is the batch size requested per page, the maximum the
// relation endpoints accept.
const relationPageSize = 1000

// defaultFetchLimit caps how many relation entries one listing pulls when
// the caller sets no limit.
const defaultFetchLimit = 10000

// SortStrategy selects the primary dimension for ordering relation
// entries. The remaining dimensions (citation count, influence, year)
// stay as secondary keys so ordering is total and deterministic.
type SortStrategy string

const (
	SortCitation    SortStrategy = "citation"
	SortYear        SortStrategy = "year"
	SortInfluential SortStrategy = "influential"
)

// Valid reports whether s names a known strategy.
func (s SortStrategy) Valid() bool {
	return s == SortCitation || s == SortYear || s == SortInfluential
}

// Page is one batch of relation entries plus the continuation state.
type Page struct {
	Entries []types.RelationEntry

	// NextOffset is where the following page starts. Meaningless when
	// Done is true.
	NextOffset int

	// Done reports that the API has no further pages.
	Done bool
}

type relationResponse struct {
	Offset int             `json:"offset"`
	Next   int             `json:"next"`
	Data   []relationDatum `json:"data"`
}

type relationDatum struct {
	IsInfluential bool      `json:"isInfluential"`
	CitingPaper   *apiPaper `json:"citingPaper"`
	CitedPaper    *apiPaper `json:"citedPaper"`
}

// relationFields returns the fields parameter for the given relation
// kind; the neighbor record sits under citingPaper or citedPaper.
func relationFields(kind types.RelationKind) string {
	key := "citedPaper"
	if kind == types.RelationCitations {
		key = "citingPaper"
	}
	return fmt.Sprintf("isInfluential,%s.paperId,%s.title,%s.year,%s.citationCount,%s.authors",
		key, key, key, key, key)
}

// FetchPage retrieves one page of neighbors for (paperID, kind) starting
// at offset. Partial neighbor records are kept with zero fields; records
// with no paperId at all are dropped since they cannot be deduplicated.
func (c *Client) FetchPage(ctx context.Context, paperID string, kind types.RelationKind, offset int) (Page, error) {
	if !kind.Valid() {
		return Page{}, fmt.Errorf("invalid relation kind %q", kind)
	}

	params := url.Values{
		"fields": {relationFields(kind)},
		"offset": {fmt.Sprintf("%d", offset)},
		"limit":  {fmt.Sprintf("%d", relationPageSize)},
	}

	var rr relationResponse
	path := "/" + url.PathEscape(paperID) + "/" + string(kind)
	if err := c.get(ctx, path, params, &rr); err != nil {
		return Page{}, err
	}

	page := Page{NextOffset: offset + len(rr.Data)}
	for _, d := range rr.Data {
		paper := d.CitedPaper
		if kind == types.RelationCitations {
			paper = d.CitingPaper
		}
		if paper == nil || paper.PaperID == "" {
			continue
		}
		page.Entries = append(page.Entries, types.RelationEntry{
			Paper:       paper.toNode(),
			Influential: d.IsInfluential,
		})
	}

	if len(rr.Data) < relationPageSize {
		page.Done = true
	}
	return page, nil
}

// Relations pages through the complete neighbor set for (paperID, kind),
// applies the filter, and returns entries sorted by citation count. The
// union of pages is the full neighbor set as known by the API at call
// time; only the filter's FetchLimit truncates it.
func (c *Client) Relations(ctx context.Context, paperID string, kind types.RelationKind, filter types.RelationFilter) ([]types.RelationEntry, error) {
	limit := filter.FetchLimit
	if limit <= 0 {
		limit = defaultFetchLimit
	}

	var entries []types.RelationEntry
	offset := 0
	for len(entries) < limit {
		page, err := c.FetchPage(ctx, paperID, kind, offset)
		if err != nil {
			return nil, err
		}
		entries = append(entries, page.Entries...)
		if page.Done {
			break
		}
		offset = page.NextOffset
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}

	entries = FilterEntries(entries, filter)
	SortEntries(entries, SortCitation)
	return entries, nil
}

// FilterEntries drops entries excluded by the influence flag or year
// bounds. Entries with unknown year fail any year bound, matching the
// behavior of the year filters elsewhere in the tool.
func FilterEntries(entries []types.RelationEntry, filter types.RelationFilter) []types.RelationEntry {
	if !filter.InfluentialOnly && filter.SinceYear == 0 && filter.UntilYear == 0 {
		return entries
	}

	kept := entries[:0]
	for _, e := range entries {
		if filter.InfluentialOnly && !e.Influential {
			continue
		}
		if filter.SinceYear > 0 && (e.Paper.Year == 0 || e.Paper.Year < filter.SinceYear) {
			continue
		}
		if filter.UntilYear > 0 && (e.Paper.Year == 0 || e.Paper.Year > filter.UntilYear) {
			continue
		}
		kept = append(kept, e)
	}
	return kept
}

// SortEntries orders entries descending by the chosen strategy, with the
// other dimensions as tie-breaks and PaperID as the final key so equal
// papers always land in the same order.
func SortEntries(entries []types.RelationEntry, strategy SortStrategy) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		for _, dim := range sortOrder(strategy) {
			switch dim {
			case SortCitation:
				if a.Paper.CitationCount != b.Paper.CitationCount {
					return a.Paper.CitationCount > b.Paper.CitationCount
				}
			case SortInfluential:
				if a.Influential != b.Influential {
					return a.Influential
				}
			case SortYear:
				if a.Paper.Year != b.Paper.Year {
					return a.Paper.Year > b.Paper.Year
				}
			}
		}
		return a.Paper.PaperID < b.Paper.PaperID
	})
}

// sortOrder promotes the chosen strategy to the front of the default
// citation > influential > year dimension order.
func sortOrder(strategy SortStrategy) []SortStrategy {
	order := []SortStrategy{SortCitation, SortInfluential, SortYear}
	if !strategy.Valid() || strategy == SortCitation {
		return order
	}
	result := []SortStrategy{strategy}
	for _, dim := range order {
		if dim != strategy {
			result = append(result, dim)
		}
	}
	return result
}
