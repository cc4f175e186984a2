// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package s2

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testClient(ts *httptest.Server) *Client {
	return &Client{
		HTTP:      ts.Client(),
		BaseURL:   ts.URL,
		UserAgent: "scholar-test/0.1",
	}
}

// --- Identifier classification ---

func TestClassifyIdentifier(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		strict bool
	}{
		{"649def34f8be52c8b66281af98ae884c09aef38b", "649def34f8be52c8b66281af98ae884c09aef38b", true},
		{"1706.03762", "ARXIV:1706.03762", true},
		{"1706.03762v5", "ARXIV:1706.03762v5", true},
		{"arXiv:1706.03762", "ARXIV:1706.03762", true},
		{"10.1145/3297280.3297641", "DOI:10.1145/3297280.3297641", true},
		{"CorpusId:13756489", "CorpusId:13756489", true},
		{"corpusid:13756489", "CorpusId:13756489", true},
		{"ARXIV:2301.07041", "ARXIV:2301.07041", true},
		{"PMID:19872477", "PMID:19872477", true},
		{"Attention Is All You Need", "Attention Is All You Need", false},
		{"deep learning", "deep learning", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, strict := ClassifyIdentifier(tt.in)
			if strict != tt.strict {
				t.Fatalf("ClassifyIdentifier(%q) strict = %v, want %v", tt.in, strict, tt.strict)
			}
			if got != tt.want {
				t.Errorf("ClassifyIdentifier(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// --- Similarity scoring ---

func TestTitleSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "Attention Is All You Need", "Attention Is All You Need", 1.0},
		{"case and punctuation ignored", "attention is all you need!", "Attention Is All You Need", 1.0},
		{"disjoint", "graph neural networks", "protein folding", 0.0},
		{"empty query", "", "anything", 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TitleSimilarity(tt.a, tt.b); got != tt.want {
				t.Errorf("TitleSimilarity = %v, want %v", got, tt.want)
			}
		})
	}

	// Partial overlap lands strictly between the extremes.
	got := TitleSimilarity("attention is all you need", "attention is not enough")
	if got <= 0 || got >= 1 {
		t.Errorf("partial overlap similarity = %v, want in (0,1)", got)
	}
}

// --- Title resolution ---

func searchBody(papers ...string) string {
	out := `{"total":` + fmt.Sprint(len(papers)) + `,"data":[`
	for i, p := range papers {
		if i > 0 {
			out += ","
		}
		out += p
	}
	return out + `]}`
}

func TestResolveTitlePicksBestMatch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("query"); got != "Attention Is All You Need" {
			t.Errorf("query param = %q", got)
		}
		fmt.Fprint(w, searchBody(
			`{"paperId":"weak","title":"Attention Mechanisms: A Survey","year":2021,"citationCount":500}`,
			`{"paperId":"exact","title":"Attention Is All You Need","year":2017,"citationCount":90000}`,
		))
	}))
	defer ts.Close()

	node, err := testClient(ts).ResolveTitle(context.Background(), "Attention Is All You Need")
	if err != nil {
		t.Fatalf("ResolveTitle: %v", err)
	}
	if node.PaperID != "exact" {
		t.Errorf("resolved %q, want %q", node.PaperID, "exact")
	}
	if node.Year != 2017 || node.CitationCount != 90000 {
		t.Errorf("node metadata not carried: %+v", node)
	}
}

func TestResolveTitleTieBreaksByCitations(t *testing.T) {
	// Two candidates with identical titles: the more-cited one wins.
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, searchBody(
			`{"paperId":"low","title":"Deep Residual Learning","citationCount":10}`,
			`{"paperId":"high","title":"Deep Residual Learning","citationCount":100000}`,
		))
	}))
	defer ts.Close()

	node, err := testClient(ts).ResolveTitle(context.Background(), "Deep Residual Learning")
	if err != nil {
		t.Fatalf("ResolveTitle: %v", err)
	}
	if node.PaperID != "high" {
		t.Errorf("resolved %q, want the higher-cited candidate", node.PaperID)
	}
}

func TestResolveTitleNoResults(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"total":0,"data":[]}`)
	}))
	defer ts.Close()

	_, err := testClient(ts).ResolveTitle(context.Background(), "no such paper xyz")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestResolveTitleBelowThreshold(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, searchBody(
			`{"paperId":"unrelated","title":"Completely Different Topic Entirely","citationCount":5}`,
		))
	}))
	defer ts.Close()

	_, err := testClient(ts).ResolveTitle(context.Background(), "quantum chromodynamics lattice")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound for sub-threshold match", err)
	}
}

func TestResolveEmptyTitle(t *testing.T) {
	c := &Client{HTTP: http.DefaultClient}
	if _, err := c.ResolveTitle(context.Background(), "   "); err == nil {
		t.Error("expected error for empty title")
	}
}

// --- Identifier lookup ---

func TestResolveRoutesIdentifiersToLookup(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ARXIV:1706.03762" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"paperId":"abc123","title":"Attention Is All You Need","year":2017,"citationCount":90000,"authors":[{"authorId":"1","name":"Ashish Vaswani"}]}`)
	}))
	defer ts.Close()

	node, err := testClient(ts).Resolve(context.Background(), "1706.03762")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if node.PaperID != "abc123" {
		t.Errorf("PaperID = %q", node.PaperID)
	}
	if len(node.Authors) != 1 || node.Authors[0] != "Ashish Vaswani" {
		t.Errorf("Authors = %v", node.Authors)
	}
}

func TestLookupNotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	_, err := testClient(ts).Lookup(context.Background(), "ARXIV:0000.00000")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestResolveIdempotent(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, searchBody(
			`{"paperId":"stable","title":"Stable Paper Title","citationCount":42}`,
		))
	}))
	defer ts.Close()

	c := testClient(ts)
	first, err := c.Resolve(context.Background(), "Stable Paper Title")
	if err != nil {
		t.Fatalf("first Resolve: %v", err)
	}
	second, err := c.Resolve(context.Background(), "Stable Paper Title")
	if err != nil {
		t.Fatalf("second Resolve: %v", err)
	}
	if first.PaperID != second.PaperID {
		t.Errorf("resolution not idempotent: %q vs %q", first.PaperID, second.PaperID)
	}
}
