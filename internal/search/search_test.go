// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Ayden-Zhou/Scholar-Tool/pkg/types"
)

type fakeBackend struct {
	name    string
	results []types.SearchResult
	err     error
}

func (b *fakeBackend) Name() string { return b.name }

func (b *fakeBackend) Search(_ context.Context, _ string, _ types.SearchConfig) ([]types.SearchResult, error) {
	return b.results, b.err
}

func result(id, title string, year, citations int, source string) types.SearchResult {
	return types.SearchResult{
		Identifier:    id,
		Title:         title,
		Year:          year,
		CitationCount: citations,
		Source:        source,
	}
}

func resultIDs(results []types.SearchResult) []string {
	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.Identifier
	}
	return ids
}

// --- Ranking ---

func TestRankByCitations(t *testing.T) {
	results := []types.SearchResult{
		result("mid", "B", 2020, 500, "s"),
		result("top", "A", 2015, 9000, "s"),
		result("low", "C", 2023, 40, "s"),
	}
	Rank(results, SortCitations)

	want := []string{"top", "mid", "low"}
	if got := resultIDs(results); fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("order %v, want %v", got, want)
	}
}

func TestRankByCitPerYear(t *testing.T) {
	thisYear := time.Now().Year()
	results := []types.SearchResult{
		// Old classic: huge count, low velocity.
		result("classic", "A", thisYear-20, 2100, "s"),
		// Fresh paper: smaller count, higher velocity.
		result("fresh", "B", thisYear-1, 400, "s"),
	}
	Rank(results, SortCitPerYear)

	if results[0].Identifier != "fresh" {
		t.Errorf("first = %q, want the higher-velocity paper", results[0].Identifier)
	}
	if results[0].CitationsPerYear != 200 {
		t.Errorf("CitationsPerYear = %v, want 200", results[0].CitationsPerYear)
	}
}

func TestRankUnknownYearScoresZero(t *testing.T) {
	results := []types.SearchResult{
		result("undated", "A", 0, 1000000, "s"),
		result("dated", "B", time.Now().Year(), 1, "s"),
	}
	Rank(results, SortCitPerYear)

	if results[0].Identifier != "dated" {
		t.Error("undated record outranked a dated one on the per-year axis")
	}
	if results[1].CitationsPerYear != 0 {
		t.Errorf("undated CitationsPerYear = %v, want 0", results[1].CitationsPerYear)
	}
}

func TestRankIdentifierTieBreak(t *testing.T) {
	results := []types.SearchResult{
		result("zzz", "A", 2020, 10, "s"),
		result("aaa", "B", 2020, 10, "s"),
	}
	Rank(results, SortCitations)
	if results[0].Identifier != "aaa" {
		t.Errorf("equal results not ordered by identifier: %v", resultIDs(results))
	}
}

func TestSortByValid(t *testing.T) {
	if !SortCitations.Valid() || !SortCitPerYear.Valid() {
		t.Error("built-in sorts should be valid")
	}
	if SortBy("relevance").Valid() {
		t.Error("unknown sort should be invalid")
	}
}

// --- Dedup and merge ---

func TestDeduplicateByIdentifier(t *testing.T) {
	// arXiv knows the ID and year; Semantic Scholar adds the count.
	arxivResult := result("1706.03762", "Attention Is All You Need", 2017, 0, "arxiv")
	s2Result := result("1706.03762", "Attention Is All You Need", 2017, 90000, "semantic_scholar")

	deduped, removed := deduplicate([]types.SearchResult{arxivResult, s2Result})
	if len(deduped) != 1 || removed != 1 {
		t.Fatalf("got %d results, %d removed", len(deduped), removed)
	}
	merged := deduped[0]
	if merged.CitationCount != 90000 {
		t.Errorf("citation count not merged: %d", merged.CitationCount)
	}
	if merged.Source != "arxiv,semantic_scholar" {
		t.Errorf("Source = %q", merged.Source)
	}
}

func TestDeduplicateByNormalizedTitle(t *testing.T) {
	a := result("10.1000/x", "Deep Residual Learning for Image Recognition", 2016, 100, "openalex")
	b := result("s2native", "Deep Residual Learning for Image Recognition!", 2016, 120, "semantic_scholar")

	deduped, removed := deduplicate([]types.SearchResult{a, b})
	if len(deduped) != 1 || removed != 1 {
		t.Fatalf("got %d results, %d removed", len(deduped), removed)
	}
	if deduped[0].CitationCount != 120 {
		t.Errorf("merge kept lower citation count: %d", deduped[0].CitationCount)
	}
}

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Attention Is All You Need", "attention is all you need"},
		{"  Attention,   Is All -- You Need!  ", "attention is all you need"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := normalizeTitle(tt.in); got != tt.want {
			t.Errorf("normalizeTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// --- Fan-out ---

func TestRunMergesBackends(t *testing.T) {
	backends := []Backend{
		&fakeBackend{name: "one", results: []types.SearchResult{result("a", "A", 2020, 100, "one")}},
		&fakeBackend{name: "two", results: []types.SearchResult{result("b", "B", 2021, 200, "two")}},
	}

	var log bytes.Buffer
	out, err := Run(context.Background(), "query", backends, types.SearchConfig{MaxResults: 10}, SortCitations, &log)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(out.Results) != 2 {
		t.Fatalf("got %d results", len(out.Results))
	}
	if out.Results[0].Identifier != "b" {
		t.Errorf("first = %q, want the higher-cited result", out.Results[0].Identifier)
	}
}

func TestRunBackendFailureIsSoft(t *testing.T) {
	backends := []Backend{
		&fakeBackend{name: "broken", err: errors.New("HTTP 500")},
		&fakeBackend{name: "ok", results: []types.SearchResult{result("a", "A", 2020, 1, "ok")}},
	}

	var log bytes.Buffer
	out, err := Run(context.Background(), "query", backends, types.SearchConfig{}, SortCitations, &log)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(out.Results) != 1 {
		t.Errorf("got %d results, want the healthy backend's", len(out.Results))
	}
	if len(out.BackendErrors) != 1 {
		t.Errorf("BackendErrors = %v", out.BackendErrors)
	}
	if !strings.Contains(log.String(), "broken") {
		t.Errorf("failure not reported: %q", log.String())
	}
}

func TestRunAllBackendsFailed(t *testing.T) {
	backends := []Backend{
		&fakeBackend{name: "one", err: errors.New("down")},
		&fakeBackend{name: "two", err: errors.New("down")},
	}
	var log bytes.Buffer
	if _, err := Run(context.Background(), "query", backends, types.SearchConfig{}, SortCitations, &log); err == nil {
		t.Error("expected error when every backend fails")
	}
}

func TestRunEmptyQuery(t *testing.T) {
	var log bytes.Buffer
	backends := []Backend{&fakeBackend{name: "one"}}
	if _, err := Run(context.Background(), "   ", backends, types.SearchConfig{}, SortCitations, &log); err == nil {
		t.Error("expected error for empty query")
	}
}

func TestRunTruncatesToMaxResults(t *testing.T) {
	var results []types.SearchResult
	for i := 0; i < 30; i++ {
		results = append(results, result(fmt.Sprintf("p%02d", i), fmt.Sprintf("Title %d", i), 2020, 30-i, "one"))
	}
	backends := []Backend{&fakeBackend{name: "one", results: results}}

	var log bytes.Buffer
	out, err := Run(context.Background(), "query", backends, types.SearchConfig{MaxResults: 5}, SortCitations, &log)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(out.Results) != 5 {
		t.Errorf("got %d results, want 5", len(out.Results))
	}
	if out.Results[0].Identifier != "p00" {
		t.Errorf("truncation did not keep the top-ranked results")
	}
}

// --- Output ---

func TestFormatTable(t *testing.T) {
	out := Output{
		Results: []types.SearchResult{result("a", "Some Paper", 2020, 42, "arxiv")},
	}
	var buf bytes.Buffer
	FormatTable(out, &buf)
	for _, want := range []string{"Some Paper", "2020", "42", "arxiv"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("table missing %q:\n%s", want, buf.String())
		}
	}
}

func TestFormatTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	FormatTable(Output{}, &buf)
	if !strings.Contains(buf.String(), "No results") {
		t.Errorf("empty output = %q", buf.String())
	}
}

func TestSaveCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	results := []types.SearchResult{
		{Identifier: "a", Title: "First", Authors: []string{"X", "Y"}, Year: 2020, CitationCount: 10, Source: "arxiv"},
		{Identifier: "b", Title: "Second, with comma", Year: 2021, CitationCount: 5, Source: "openalex"},
	}
	if err := SaveCSV(results, path); err != nil {
		t.Fatalf("SaveCSV: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening CSV: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("reading CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header + 2", len(rows))
	}
	if rows[1][2] != "First" || rows[1][3] != "X; Y" {
		t.Errorf("row 1 = %v", rows[1])
	}
	if rows[2][2] != "Second, with comma" {
		t.Errorf("comma in title not preserved: %v", rows[2])
	}
}
