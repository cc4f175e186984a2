// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import (
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/Ayden-Zhou/Scholar-Tool/pkg/types"
)

// ExportedNode is one paper in the renderer-neutral schema.
type ExportedNode struct {
	ID            string   `json:"id" yaml:"id"`
	Title         string   `json:"title" yaml:"title"`
	Year          int      `json:"year" yaml:"year"`
	Authors       []string `json:"authors,omitempty" yaml:"authors,omitempty"`
	CitationCount int      `json:"citation_count" yaml:"citation_count"`
	Depth         int      `json:"depth" yaml:"depth"`
	Truncated     bool     `json:"truncated,omitempty" yaml:"truncated,omitempty"`
	Failed        bool     `json:"failed,omitempty" yaml:"failed,omitempty"`
}

// ExportedEdge is one citation in the renderer-neutral schema. Source
// cites Target.
type ExportedEdge struct {
	Source      string         `json:"source" yaml:"source"`
	Target      string         `json:"target" yaml:"target"`
	Kind        types.EdgeKind `json:"kind" yaml:"kind"`
	Depth       int            `json:"depth" yaml:"depth"`
	Influential bool           `json:"influential,omitempty" yaml:"influential,omitempty"`
}

// ExportedGraph is the schema handed to renderers. Node order is the
// graph's first-seen BFS order and edge order is insertion order, so two
// runs over unchanged API state produce byte-identical output.
type ExportedGraph struct {
	Nodes    []ExportedNode     `json:"nodes" yaml:"nodes"`
	Edges    []ExportedEdge     `json:"edges" yaml:"edges"`
	Failures []ExpansionFailure `json:"failures,omitempty" yaml:"failures,omitempty"`
}

// Export serializes a finished graph. Pure transformation: no network, no
// traversal, always succeeds for a graph produced by a Builder.
func Export(g *Graph) ExportedGraph {
	nodes := g.Nodes()
	edges := g.Edges()

	out := ExportedGraph{
		Nodes:    make([]ExportedNode, len(nodes)),
		Edges:    make([]ExportedEdge, len(edges)),
		Failures: g.Failures(),
	}

	for i, n := range nodes {
		out.Nodes[i] = ExportedNode{
			ID:            n.Paper.PaperID,
			Title:         n.Paper.Title,
			Year:          n.Paper.Year,
			Authors:       n.Paper.Authors,
			CitationCount: n.Paper.CitationCount,
			Depth:         n.Depth,
			Truncated:     n.Truncated,
			Failed:        n.Failed,
		}
	}

	for i, e := range edges {
		out.Edges[i] = ExportedEdge{
			Source:      e.Source,
			Target:      e.Target,
			Kind:        e.Kind,
			Depth:       e.Depth,
			Influential: e.Influential,
		}
	}

	return out
}

// WriteJSON writes the export as indented JSON.
func (eg ExportedGraph) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(eg); err != nil {
		return fmt.Errorf("encoding graph JSON: %w", err)
	}
	return nil
}

// WriteYAML writes the export as YAML.
func (eg ExportedGraph) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	if err := enc.Encode(eg); err != nil {
		return fmt.Errorf("encoding graph YAML: %w", err)
	}
	return nil
}
