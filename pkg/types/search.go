// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// SearchResult is one paper returned by a search backend, normalized to
// a common shape before dedup and ranking.
type SearchResult struct {
	// Identifier is the best available stable ID: arXiv ID, bare DOI, or
	// the backend's native paper ID, in that preference order.
	Identifier string `json:"identifier"`

	Title    string   `json:"title"`
	Authors  []string `json:"authors,omitempty"`
	Abstract string   `json:"abstract,omitempty"`

	// Year is the publication year (0 = unknown).
	Year int `json:"year"`

	// CitationCount is the backend's citation count. Backends without
	// citation data report 0; dedup merging fills it from a duplicate
	// found by a backend that has it.
	CitationCount int `json:"citation_count"`

	// CitationsPerYear is the ranking score computed at sort time.
	CitationsPerYear float64 `json:"citations_per_year"`

	// Source names the backends that returned this result, comma-joined
	// after dedup merging.
	Source string `json:"source"`
}
