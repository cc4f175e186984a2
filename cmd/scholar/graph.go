// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Ayden-Zhou/Scholar-Tool/internal/cache"
	"github.com/Ayden-Zhou/Scholar-Tool/internal/graph"
	"github.com/Ayden-Zhou/Scholar-Tool/internal/render"
	"github.com/Ayden-Zhou/Scholar-Tool/pkg/types"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Build a bounded citation graph around a seed paper",
	Long: `Graph resolves a seed paper and walks its citation neighborhood breadth-first
to a bounded depth, recording papers as nodes and citation links as directed
edges (citing paper -> cited paper).

Per-node failures (rate limits, network errors after retries) are soft: the
node stays in the graph flagged as failed and the walk continues. The graph
exports to JSON or YAML and renders to an interactive HTML page.`,
	RunE: runGraph,
}

func init() {
	graphCmd.Flags().String("title", "", "resolve the seed by title")
	graphCmd.Flags().String("id", "", "resolve the seed by identifier (S2 ID, ARXIV:..., DOI:...)")
	graphCmd.Flags().String("mode", "references", "walk direction: references, citations, or all")
	graphCmd.Flags().Int("depth", 1, "maximum BFS depth")
	graphCmd.Flags().String("width", "", "per-level fan-out caps, comma-separated (e.g. 4,2); empty = uncapped")
	graphCmd.Flags().Bool("influential-only", false, "expand only along influential citations")
	graphCmd.Flags().Int("since-year", 0, "drop neighbors published before this year")
	graphCmd.Flags().Int("until-year", 0, "drop neighbors published after this year")
	graphCmd.Flags().Int("fetch-limit", 0, "cap on entries pulled per relation listing (0 = default 10000)")
	graphCmd.Flags().Bool("densify", false, "add edges between already-discovered nodes after the walk")
	graphCmd.Flags().Int("parallel", 1, "concurrent fetches within one BFS level")
	graphCmd.Flags().String("out", "", "write an interactive HTML page to this path")
	graphCmd.Flags().String("export", "", "write the graph to this path (.json or .yaml)")
	graphCmd.Flags().Bool("no-cache", false, "bypass the relation cache")

	rootCmd.AddCommand(graphCmd)
}

// parseWidths turns "4,2" into []int{4, 2}.
func parseWidths(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	widths := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid width %q: want positive integers", p)
		}
		widths = append(widths, n)
	}
	return widths, nil
}

// relationsForMode maps the --mode value to walk directions.
func relationsForMode(mode string) ([]types.RelationKind, error) {
	switch mode {
	case "references":
		return []types.RelationKind{types.RelationReferences}, nil
	case "citations":
		return []types.RelationKind{types.RelationCitations}, nil
	case "all":
		return []types.RelationKind{types.RelationReferences, types.RelationCitations}, nil
	default:
		return nil, fmt.Errorf("unknown mode %q (want references, citations, or all)", mode)
	}
}

func runGraph(cmd *cobra.Command, args []string) error {
	mode, _ := cmd.Flags().GetString("mode")
	relations, err := relationsForMode(mode)
	if err != nil {
		return err
	}

	widthFlag, _ := cmd.Flags().GetString("width")
	widths, err := parseWidths(widthFlag)
	if err != nil {
		return err
	}

	depth, _ := cmd.Flags().GetInt("depth")
	densify, _ := cmd.Flags().GetBool("densify")
	parallel, _ := cmd.Flags().GetInt("parallel")

	cfg := types.GraphConfig{
		MaxDepth:    depth,
		Widths:      widths,
		Relations:   relations,
		Filter:      relationFilterFromFlags(cmd),
		Densify:     densify,
		Parallelism: parallel,
	}

	seed, err := resolveSeed(cmd)
	if err != nil {
		return err
	}

	client := newAPIClient(cmd)
	var fetcher graph.Fetcher = client

	noCache, _ := cmd.Flags().GetBool("no-cache")
	if !noCache && !viper.GetBool("cache.disabled") {
		store, err := cache.NewStore(types.CacheConfig{Dir: viper.GetString("cache.dir")})
		if err != nil {
			return err
		}
		defer store.Close()
		fetcher = &cache.Fetcher{Source: client, Store: store, Log: os.Stderr}
	}

	builder := &graph.Builder{Fetcher: fetcher, Config: cfg, Progress: os.Stderr}
	g, err := builder.Build(cmd.Context(), seed)
	if err != nil {
		return fmt.Errorf("building graph: %w", err)
	}

	eg := graph.Export(g)
	fmt.Fprintf(os.Stderr, "Graph: %d papers, %d edges", len(eg.Nodes), len(eg.Edges))
	if len(eg.Failures) > 0 {
		fmt.Fprintf(os.Stderr, ", %d expansions failed", len(eg.Failures))
	}
	fmt.Fprintln(os.Stderr)

	exportPath, _ := cmd.Flags().GetString("export")
	outPath, _ := cmd.Flags().GetString("out")

	if exportPath != "" {
		if err := writeExport(eg, exportPath); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Exported graph to %s\n", exportPath)
	}
	if outPath != "" {
		if err := writeHTML(eg, seed, outPath); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Rendered graph to %s\n", outPath)
	}
	if exportPath == "" && outPath == "" {
		// No destination: print the JSON export to stdout.
		if err := eg.WriteJSON(os.Stdout); err != nil {
			return err
		}
	}
	return nil
}

func writeExport(eg graph.ExportedGraph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	switch ext := filepath.Ext(path); ext {
	case ".json":
		return eg.WriteJSON(f)
	case ".yaml", ".yml":
		return eg.WriteYAML(f)
	default:
		return fmt.Errorf("unknown export format %q (want .json or .yaml)", ext)
	}
}

func writeHTML(eg graph.ExportedGraph, seed types.PaperNode, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	title := seed.Title
	if title == "" {
		title = seed.PaperID
	}
	return render.Render(f, eg, "Citation graph: "+title)
}
