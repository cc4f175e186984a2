// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Ayden-Zhou/Scholar-Tool/internal/s2"
	"github.com/Ayden-Zhou/Scholar-Tool/pkg/types"
)

var relationCmd = &cobra.Command{
	Use:   "relation",
	Short: "List what a paper cites or is cited by",
	Long: `Relation resolves a paper by title or identifier and lists its references
(what it cites) or its citations (what cites it), sorted and filtered.

The complete neighbor set is paged from the API; --fetch-limit caps how many
entries are pulled before filtering.`,
	RunE: runRelation,
}

func init() {
	relationCmd.Flags().String("title", "", "resolve the paper by title")
	relationCmd.Flags().String("id", "", "resolve the paper by identifier (S2 ID, ARXIV:..., DOI:...)")
	relationCmd.Flags().String("find", "reference", "relation to list: reference or citation")
	relationCmd.Flags().Int("num-results", 10, "maximum entries to display (0 = all)")
	relationCmd.Flags().Int("fetch-limit", 0, "cap on entries pulled from the API (0 = default 10000)")
	relationCmd.Flags().String("sort-by", "citation", "ordering: citation, year, or influential")
	relationCmd.Flags().Bool("influential-only", false, "keep only entries the API flags as influential")
	relationCmd.Flags().Int("since-year", 0, "drop entries published before this year")
	relationCmd.Flags().Int("until-year", 0, "drop entries published after this year")
	relationCmd.Flags().Bool("json", false, "output entries as JSON")
	relationCmd.Flags().String("save-csv", "", "also write entries to a CSV file")

	rootCmd.AddCommand(relationCmd)
}

// relationKindFromFlag maps the --find value to a relation kind. The
// flag speaks the singular the way a user would; the API speaks plural.
func relationKindFromFlag(find string) (types.RelationKind, error) {
	switch find {
	case "reference", "references":
		return types.RelationReferences, nil
	case "citation", "citations":
		return types.RelationCitations, nil
	default:
		return "", fmt.Errorf("unknown relation %q (want reference or citation)", find)
	}
}

func runRelation(cmd *cobra.Command, args []string) error {
	find, _ := cmd.Flags().GetString("find")
	kind, err := relationKindFromFlag(find)
	if err != nil {
		return err
	}

	sortBy, _ := cmd.Flags().GetString("sort-by")
	strategy := s2.SortStrategy(sortBy)
	if !strategy.Valid() {
		return fmt.Errorf("unknown sort %q (want citation, year, or influential)", sortBy)
	}

	seed, err := resolveSeed(cmd)
	if err != nil {
		return err
	}

	client := newAPIClient(cmd)
	entries, err := client.Relations(cmd.Context(), seed.PaperID, kind, relationFilterFromFlags(cmd))
	if err != nil {
		return fmt.Errorf("listing %s of %s: %w", kind, seed.PaperID, err)
	}
	s2.SortEntries(entries, strategy)

	if path, _ := cmd.Flags().GetString("save-csv"); path != "" {
		if err := saveRelationCSV(entries, path); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Saved %d entries to %s\n", len(entries), path)
	}

	numResults, _ := cmd.Flags().GetInt("num-results")
	if numResults > 0 && len(entries) > numResults {
		entries = entries[:numResults]
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	formatRelationTable(seed, kind, entries, os.Stdout)
	return nil
}

func formatRelationTable(seed types.PaperNode, kind types.RelationKind, entries []types.RelationEntry, w io.Writer) {
	verb := "cites"
	if kind == types.RelationCitations {
		verb = "is cited by"
	}
	fmt.Fprintf(w, "%s %s %d papers shown:\n\n", seed.Title, verb, len(entries))

	if len(entries) == 0 {
		fmt.Fprintln(w, "No entries.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-60s  %-4s  %-8s  %s\n", "Rank", "Title", "Year", "Cit", "Influential")
	fmt.Fprintln(w, strings.Repeat("-", 95))
	for i, e := range entries {
		title := e.Paper.Title
		if title == "" {
			title = e.Paper.PaperID
		}
		if len(title) > 60 {
			title = title[:57] + "..."
		}
		year := ""
		if e.Paper.Year > 0 {
			year = strconv.Itoa(e.Paper.Year)
		}
		influential := ""
		if e.Influential {
			influential = "yes"
		}
		fmt.Fprintf(w, "%-4d  %-60s  %-4s  %-8d  %s\n",
			i+1, title, year, e.Paper.CitationCount, influential)
	}
}

func saveRelationCSV(entries []types.RelationEntry, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write([]string{"rank", "paper_id", "title", "authors", "year", "citations", "influential"}); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for i, e := range entries {
		row := []string{
			strconv.Itoa(i + 1),
			e.Paper.PaperID,
			e.Paper.Title,
			strings.Join(e.Paper.Authors, "; "),
			strconv.Itoa(e.Paper.Year),
			strconv.Itoa(e.Paper.CitationCount),
			strconv.FormatBool(e.Influential),
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
