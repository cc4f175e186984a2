// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/Ayden-Zhou/Scholar-Tool/pkg/types"
)

// Fetcher lists the neighbors of one paper along one relation. The
// Semantic Scholar client implements it directly; the cache package
// wraps it with an on-disk layer.
type Fetcher interface {
	Relations(ctx context.Context, paperID string, kind types.RelationKind, filter types.RelationFilter) ([]types.RelationEntry, error)
}

// Builder runs one bounded breadth-first traversal and owns the
// resulting Graph until Build returns.
type Builder struct {
	Fetcher Fetcher
	Config  types.GraphConfig

	// Progress receives human-readable traversal updates. Nil discards.
	Progress io.Writer
}

type fetchResult struct {
	entries []types.RelationEntry
	err     error
}

// Build expands the seed's neighborhood level by level up to MaxDepth.
// Per-node fetch failures are soft: the node is marked failed and the
// traversal continues. Build fails outright only when the seed itself
// cannot be expanded at all (the result would be an empty neighborhood)
// or when the context is cancelled; a cancelled build still returns the
// graph in a valid partial state.
func (b *Builder) Build(ctx context.Context, seed types.PaperNode) (*Graph, error) {
	if seed.PaperID == "" {
		return nil, fmt.Errorf("seed paper has no ID")
	}

	relations := b.Config.Relations
	if len(relations) == 0 {
		relations = []types.RelationKind{types.RelationReferences}
	}

	g := New()
	g.AddNode(seed, 0)

	frontier := []string{seed.PaperID}
	for depth := 0; depth < b.Config.MaxDepth && len(frontier) > 0; depth++ {
		b.logf("expanding level %d (%d nodes)\n", depth, len(frontier))
		results := b.fetchLevel(ctx, frontier, relations)

		var next []string
		var seedErr error
		seedFailures := 0

		for i, id := range frontier {
			// Cancellation takes effect at frontier-node boundaries;
			// the graph stays valid for export.
			if err := ctx.Err(); err != nil {
				return g, err
			}

			for j, kind := range relations {
				res := results[i*len(relations)+j]
				if res.err != nil {
					g.RecordFailure(ExpansionFailure{
						PaperID: id,
						Kind:    kind,
						Depth:   depth,
						Reason:  res.err.Error(),
					})
					if depth == 0 {
						seedFailures++
						seedErr = res.err
					}
					b.logf("  skipping %s [%s]: %v\n", shortID(id), kind, res.err)
					continue
				}

				entries := res.entries
				if width := b.Config.WidthAt(depth); width > 0 && len(entries) > width {
					entries = entries[:width]
					g.MarkTruncated(id)
				}

				for _, e := range entries {
					isNew := g.AddNode(e.Paper, depth+1)
					g.AddEdge(edgeFor(id, e, kind, depth+1))
					if isNew && depth+1 < b.Config.MaxDepth {
						next = append(next, e.Paper.PaperID)
					}
				}
			}
		}

		if depth == 0 && seedFailures == len(relations) && g.Len() == 1 {
			return g, fmt.Errorf("expanding seed %s: %w", seed.PaperID, seedErr)
		}

		frontier = next
	}

	if b.Config.Densify {
		b.densify(ctx, g)
	}

	b.logf("graph complete: %d nodes, %d edges\n", g.Len(), g.EdgeCount())
	return g, nil
}

// fetchLevel retrieves relation listings for every (node, kind) pair of
// one level. With Parallelism ≥ 2 fetches run concurrently under a
// semaphore, but results land in a position-indexed slice and are applied
// in frontier order, so the node ordering of the finished graph does not
// depend on fetch timing.
func (b *Builder) fetchLevel(ctx context.Context, frontier []string, kinds []types.RelationKind) []fetchResult {
	results := make([]fetchResult, len(frontier)*len(kinds))

	fetch := func(idx int, id string, kind types.RelationKind) {
		if err := ctx.Err(); err != nil {
			results[idx] = fetchResult{err: err}
			return
		}
		entries, err := b.Fetcher.Relations(ctx, id, kind, b.Config.Filter)
		results[idx] = fetchResult{entries: entries, err: err}
	}

	if b.Config.Parallelism < 2 {
		for i, id := range frontier {
			for j, kind := range kinds {
				fetch(i*len(kinds)+j, id, kind)
			}
		}
		return results
	}

	sem := make(chan struct{}, b.Config.Parallelism)
	var wg sync.WaitGroup
	for i, id := range frontier {
		for j, kind := range kinds {
			wg.Add(1)
			go func(idx int, id string, kind types.RelationKind) {
				defer wg.Done()
				sem <- struct{}{}
				defer func() { <-sem }()
				fetch(idx, id, kind)
			}(i*len(kinds)+j, id, kind)
		}
	}
	wg.Wait()
	return results
}

// densify re-walks each node's reference list and records every edge
// between papers already in the graph, completing intra-graph citation
// structure the BFS alone would miss. A caching fetcher makes this pass
// cheap for nodes whose references were already pulled. Fetch failures
// here only skip the node; the BFS result is already complete.
func (b *Builder) densify(ctx context.Context, g *Graph) {
	b.logf("densifying internal edges\n")
	for _, n := range g.Nodes() {
		if ctx.Err() != nil {
			return
		}
		entries, err := b.Fetcher.Relations(ctx, n.Paper.PaperID, types.RelationReferences, b.Config.Filter)
		if err != nil {
			b.logf("  densify skip %s: %v\n", shortID(n.Paper.PaperID), err)
			continue
		}
		for _, e := range entries {
			if e.Paper.PaperID == n.Paper.PaperID || !g.Has(e.Paper.PaperID) {
				continue
			}
			depth := n.Depth
			if t, ok := g.Node(e.Paper.PaperID); ok && t.Depth > depth {
				depth = t.Depth
			}
			g.AddEdge(types.Edge{
				Source:      n.Paper.PaperID,
				Target:      e.Paper.PaperID,
				Kind:        types.EdgeCites,
				Depth:       depth,
				Influential: e.Influential,
			})
		}
	}
}

// edgeFor orients a discovered edge citing→cited. Following references,
// the expanding node cites the neighbor; following citations, the
// neighbor cites the expanding node.
func edgeFor(expandedID string, e types.RelationEntry, kind types.RelationKind, depth int) types.Edge {
	if kind == types.RelationCitations {
		return types.Edge{
			Source:      e.Paper.PaperID,
			Target:      expandedID,
			Kind:        types.EdgeCitedBy,
			Depth:       depth,
			Influential: e.Influential,
		}
	}
	return types.Edge{
		Source:      expandedID,
		Target:      e.Paper.PaperID,
		Kind:        types.EdgeCites,
		Depth:       depth,
		Influential: e.Influential,
	}
}

func (b *Builder) logf(format string, args ...any) {
	if b.Progress != nil {
		fmt.Fprintf(b.Progress, format, args...)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
