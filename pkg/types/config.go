package types

import (
	"fmt"
	"time"
)

// HTTPConfig holds shared HTTP settings used by commands that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "scholar/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// RelationFilter restricts and orders fetched relation entries. The zero
// value keeps every entry in API order after the default citation sort.
type RelationFilter struct {
	// InfluentialOnly keeps only entries the API flags as influential.
	InfluentialOnly bool `json:"influential_only" yaml:"influential_only"`

	// SinceYear drops entries published before this year (0 = no bound).
	SinceYear int `json:"since_year" yaml:"since_year"`

	// UntilYear drops entries published after this year (0 = no bound).
	UntilYear int `json:"until_year" yaml:"until_year"`

	// FetchLimit caps the total entries pulled from the API per relation
	// listing (0 = default 10000).
	FetchLimit int `json:"fetch_limit" yaml:"fetch_limit"`
}

// FilterKey returns a stable string identifying the filter parameters,
// used as part of cache keys so differently filtered fetches never alias.
func (f RelationFilter) FilterKey() string {
	return fmt.Sprintf("inf=%t:%d-%d:limit=%d",
		f.InfluentialOnly, f.SinceYear, f.UntilYear, f.FetchLimit)
}

// GraphConfig holds settings for a citation graph build.
type GraphConfig struct {
	// MaxDepth bounds the BFS: nodes at MaxDepth are never expanded.
	MaxDepth int `json:"max_depth" yaml:"max_depth"`

	// Widths caps the neighbors recorded per node at each level. Widths[0]
	// applies to seed expansion; the last value repeats for deeper levels.
	// Empty means no cap.
	Widths []int `json:"widths,omitempty" yaml:"widths,omitempty"`

	// Relations lists the directions each frontier node expands along.
	// One entry for a plain references or citations walk, both for the
	// bidirectional mode.
	Relations []RelationKind `json:"relations" yaml:"relations"`

	// Filter applies to every relation fetch during the build.
	Filter RelationFilter `json:"filter" yaml:"filter"`

	// Densify adds edges between already-discovered nodes from cached
	// reference lists after the BFS completes.
	Densify bool `json:"densify" yaml:"densify"`

	// Parallelism bounds concurrent fetches within one BFS level.
	// Values below 2 keep the build fully sequential.
	Parallelism int `json:"parallelism" yaml:"parallelism"`
}

// WidthAt returns the fan-out cap for expansions from the given depth,
// or 0 when fan-out is uncapped.
func (c GraphConfig) WidthAt(depth int) int {
	if len(c.Widths) == 0 {
		return 0
	}
	if depth >= len(c.Widths) {
		return c.Widths[len(c.Widths)-1]
	}
	return c.Widths[depth]
}

// SearchConfig holds settings for the keyword search command.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxResults is the maximum number of ranked results to return (default 10).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// FetchLimit is the number of candidates requested from each backend
	// before ranking (default 100).
	FetchLimit int `json:"fetch_limit" yaml:"fetch_limit"`

	// EnableArxiv controls whether the arXiv backend is queried.
	EnableArxiv bool `json:"enable_arxiv" yaml:"enable_arxiv"`

	// EnableSemanticScholar controls whether the Semantic Scholar backend is queried.
	EnableSemanticScholar bool `json:"enable_semantic_scholar" yaml:"enable_semantic_scholar"`

	// EnableOpenAlex controls whether the OpenAlex backend is queried.
	EnableOpenAlex bool `json:"enable_openalex" yaml:"enable_openalex"`

	// SemanticScholarAPIKey is an optional API key for higher rate limits.
	SemanticScholarAPIKey string `json:"semantic_scholar_api_key,omitempty" yaml:"semantic_scholar_api_key,omitempty"`

	// OpenAlexEmail is sent as the mailto parameter for polite pool access.
	OpenAlexEmail string `json:"openalex_email,omitempty" yaml:"openalex_email,omitempty"`

	// SinceYear / UntilYear bound publication years (0 = unbounded).
	SinceYear int `json:"since_year" yaml:"since_year"`
	UntilYear int `json:"until_year" yaml:"until_year"`
}

// CacheConfig holds settings for the on-disk relation cache.
type CacheConfig struct {
	// Dir is the cache directory (default "cache"). The SQLite database
	// lives at Dir/scholar.db.
	Dir string `json:"dir" yaml:"dir"`

	// Disabled bypasses the cache entirely.
	Disabled bool `json:"disabled" yaml:"disabled"`
}
