// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Ayden-Zhou/Scholar-Tool/pkg/types"
)

func TestOpenAlexSearch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("search"); got != "graph neural networks" {
			t.Errorf("search param = %q", got)
		}
		if got := r.URL.Query().Get("mailto"); got != "user@example.com" {
			t.Errorf("mailto param = %q", got)
		}
		fmt.Fprint(w, `{
			"meta": {"count": 1, "per_page": 100, "page": 1},
			"results": [
				{"id": "https://openalex.org/W123",
				 "title": "Graph Neural Networks: A Review",
				 "doi": "https://doi.org/10.1000/gnn",
				 "publication_year": 2019,
				 "cited_by_count": 4200,
				 "authorships": [{"author": {"id": "A1", "display_name": "Jie Zhou"}}],
				 "abstract_inverted_index": {"networks": [2], "Graph": [0], "neural": [1]}}
			]
		}`)
	}))
	defer ts.Close()

	orig := openAlexSearchBase
	openAlexSearchBase = ts.URL
	defer func() { openAlexSearchBase = orig }()

	b := &OpenAlexBackend{Client: ts.Client(), Email: "user@example.com"}
	results, err := b.Search(context.Background(), "graph neural networks", types.SearchConfig{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results", len(results))
	}

	r := results[0]
	if r.Identifier != "10.1000/gnn" {
		t.Errorf("Identifier = %q, want the bare DOI", r.Identifier)
	}
	if r.CitationCount != 4200 {
		t.Errorf("CitationCount = %d", r.CitationCount)
	}
	if r.Abstract != "Graph neural networks" {
		t.Errorf("Abstract = %q, inverted index not reconstructed", r.Abstract)
	}
}

func TestOpenAlexYearFilterParam(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("filter"); got != "from_publication_date:2020-01-01,to_publication_date:2023-12-31" {
			t.Errorf("filter param = %q", got)
		}
		fmt.Fprint(w, `{"meta": {"count": 0}, "results": []}`)
	}))
	defer ts.Close()

	orig := openAlexSearchBase
	openAlexSearchBase = ts.URL
	defer func() { openAlexSearchBase = orig }()

	b := &OpenAlexBackend{Client: ts.Client()}
	if _, err := b.Search(context.Background(), "anything", types.SearchConfig{SinceYear: 2020, UntilYear: 2023}); err != nil {
		t.Fatalf("Search: %v", err)
	}
}

func TestReconstructAbstract(t *testing.T) {
	got := reconstructAbstract(map[string][]int{
		"the": {0, 3}, "quick": {1}, "fox": {2}, "jumps": {4},
	})
	if got != "the quick fox the jumps" {
		t.Errorf("reconstructAbstract = %q", got)
	}
	if reconstructAbstract(nil) != "" {
		t.Error("nil index should reconstruct to empty string")
	}
}
