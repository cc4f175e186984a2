// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search queries academic APIs by keyword and returns unified,
// deduplicated results ranked by citation impact.
package search

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/Ayden-Zhou/Scholar-Tool/pkg/types"
)

// Backend searches a single academic API.
type Backend interface {
	Name() string
	Search(ctx context.Context, query string, cfg types.SearchConfig) ([]types.SearchResult, error)
}

// SortBy selects the ranking dimension for merged results.
type SortBy string

const (
	// SortCitations ranks by raw citation count.
	SortCitations SortBy = "citations"

	// SortCitPerYear ranks by citations per year since publication, which
	// surfaces recent high-impact work that raw counts bury.
	SortCitPerYear SortBy = "cit_year"
)

// Valid reports whether s names a known ranking.
func (s SortBy) Valid() bool {
	return s == SortCitations || s == SortCitPerYear
}

// Output holds the ranked results and merge statistics.
type Output struct {
	Results       []types.SearchResult
	DupsRemoved   int
	BackendErrors []string
}

// Run fans the query out to all backends concurrently, deduplicates the
// union, ranks it, and returns the top MaxResults. A backend failure is
// soft: it is reported on w and in Output.BackendErrors, and the
// remaining backends' results still rank. Only all backends failing is
// an error.
func Run(ctx context.Context, query string, backends []Backend, cfg types.SearchConfig, sortBy SortBy, w io.Writer) (Output, error) {
	if strings.TrimSpace(query) == "" {
		return Output{}, fmt.Errorf("empty query: provide search keywords")
	}
	if len(backends) == 0 {
		return Output{}, fmt.Errorf("no search backends enabled")
	}
	if !sortBy.Valid() {
		return Output{}, fmt.Errorf("unknown sort %q (want %s or %s)", sortBy, SortCitations, SortCitPerYear)
	}

	type backendResult struct {
		name    string
		results []types.SearchResult
		err     error
	}

	ch := make(chan backendResult, len(backends))
	var wg sync.WaitGroup
	for _, b := range backends {
		wg.Add(1)
		go func(b Backend) {
			defer wg.Done()
			results, err := b.Search(ctx, query, cfg)
			ch <- backendResult{name: b.Name(), results: results, err: err}
		}(b)
	}
	go func() {
		wg.Wait()
		close(ch)
	}()

	var all []types.SearchResult
	var backendErrors []string
	for br := range ch {
		if br.err != nil {
			backendErrors = append(backendErrors, fmt.Sprintf("%s: %v", br.name, br.err))
			fmt.Fprintf(w, "warning: backend %s failed: %v\n", br.name, br.err)
			continue
		}
		all = append(all, br.results...)
	}
	if len(backendErrors) == len(backends) {
		return Output{}, fmt.Errorf("all search backends failed: %s", strings.Join(backendErrors, "; "))
	}

	deduped, removed := deduplicate(all)
	Rank(deduped, sortBy)

	max := cfg.MaxResults
	if max <= 0 {
		max = 10
	}
	if len(deduped) > max {
		deduped = deduped[:max]
	}

	return Output{
		Results:       deduped,
		DupsRemoved:   removed,
		BackendErrors: backendErrors,
	}, nil
}

// Rank computes CitationsPerYear for every result and sorts descending
// by the chosen dimension, with the other dimension, year, and
// identifier as tie-breaks so the order is total.
func Rank(results []types.SearchResult, sortBy SortBy) {
	thisYear := time.Now().Year()
	for i := range results {
		results[i].CitationsPerYear = citPerYear(results[i], thisYear)
	}

	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if sortBy == SortCitPerYear && a.CitationsPerYear != b.CitationsPerYear {
			return a.CitationsPerYear > b.CitationsPerYear
		}
		if a.CitationCount != b.CitationCount {
			return a.CitationCount > b.CitationCount
		}
		if a.CitationsPerYear != b.CitationsPerYear {
			return a.CitationsPerYear > b.CitationsPerYear
		}
		if a.Year != b.Year {
			return a.Year > b.Year
		}
		return a.Identifier < b.Identifier
	})
}

// citPerYear divides citations over the years since publication,
// counting the publication year itself. Unknown years score zero so
// undated records never outrank dated ones on the per-year axis.
func citPerYear(r types.SearchResult, thisYear int) float64 {
	if r.Year <= 0 || r.Year > thisYear {
		return 0
	}
	age := thisYear - r.Year + 1
	return float64(r.CitationCount) / float64(age)
}

// deduplicate merges results that share an identifier or normalized title.
func deduplicate(results []types.SearchResult) ([]types.SearchResult, int) {
	seen := make(map[string]int) // dedup key → index in deduped
	var deduped []types.SearchResult
	removed := 0

	for _, r := range results {
		idKey := ""
		if r.Identifier != "" {
			idKey = "id:" + r.Identifier
		}
		titleKey := "title:" + normalizeTitle(r.Title)

		if idx, ok := seen[idKey]; ok && idKey != "" {
			mergeInto(&deduped[idx], r)
			removed++
			continue
		}
		if idx, ok := seen[titleKey]; ok && titleKey != "title:" {
			mergeInto(&deduped[idx], r)
			removed++
			continue
		}

		idx := len(deduped)
		deduped = append(deduped, r)
		if idKey != "" {
			seen[idKey] = idx
		}
		if titleKey != "title:" {
			seen[titleKey] = idx
		}
	}
	return deduped, removed
}

// mergeInto fills empty fields of dst from src and keeps the higher
// citation count. Different backends see different slices of the record;
// the merge is their union.
func mergeInto(dst *types.SearchResult, src types.SearchResult) {
	if dst.Title == "" && src.Title != "" {
		dst.Title = src.Title
	}
	if len(dst.Authors) == 0 && len(src.Authors) > 0 {
		dst.Authors = src.Authors
	}
	if dst.Abstract == "" && src.Abstract != "" {
		dst.Abstract = src.Abstract
	}
	if dst.Year == 0 && src.Year != 0 {
		dst.Year = src.Year
	}
	if src.CitationCount > dst.CitationCount {
		dst.CitationCount = src.CitationCount
	}
	// Prefer an arXiv ID or DOI over a backend-native ID.
	if dst.Identifier == "" || (strings.Contains(src.Identifier, ".") && !strings.Contains(dst.Identifier, ".")) {
		if src.Identifier != "" {
			dst.Identifier = src.Identifier
		}
	}
	if dst.Source != src.Source && !strings.Contains(dst.Source, src.Source) {
		dst.Source = dst.Source + "," + src.Source
	}
}

// normalizeTitle returns a lowercased, punctuation-stripped version of
// the title for dedup keys.
func normalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// FormatTable writes results as a human-readable table to w.
func FormatTable(out Output, w io.Writer) {
	if len(out.Results) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-60s  %-20s  %-4s  %-8s  %-8s  %s\n",
		"Rank", "Title", "Authors", "Year", "Cit", "Cit/Year", "Source")
	fmt.Fprintln(w, strings.Repeat("-", 120))

	for i, r := range out.Results {
		title := r.Title
		if len(title) > 60 {
			title = title[:57] + "..."
		}
		year := ""
		if r.Year > 0 {
			year = strconv.Itoa(r.Year)
		}
		fmt.Fprintf(w, "%-4d  %-60s  %-20s  %-4s  %-8d  %-8.1f  %s\n",
			i+1, title, formatAuthors(r.Authors), year, r.CitationCount, r.CitationsPerYear, r.Source)
	}

	fmt.Fprintf(w, "\n%d results", len(out.Results))
	if out.DupsRemoved > 0 {
		fmt.Fprintf(w, " (%d duplicates merged)", out.DupsRemoved)
	}
	fmt.Fprintln(w)
}

// FormatJSON writes results as indented JSON to w.
func FormatJSON(out Output, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out.Results)
}

// SaveCSV writes results to path with a header row.
func SaveCSV(results []types.SearchResult, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write([]string{"rank", "identifier", "title", "authors", "year", "citations", "cit_per_year", "source"}); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for i, r := range results {
		row := []string{
			strconv.Itoa(i + 1),
			r.Identifier,
			r.Title,
			strings.Join(r.Authors, "; "),
			strconv.Itoa(r.Year),
			strconv.Itoa(r.CitationCount),
			strconv.FormatFloat(r.CitationsPerYear, 'f', 2, 64),
			r.Source,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing CSV: %w", err)
	}
	return nil
}

func formatAuthors(authors []string) string {
	switch len(authors) {
	case 0:
		return ""
	case 1:
		return truncate(authors[0], 20)
	default:
		return truncate(authors[0], 14) + " et al."
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
