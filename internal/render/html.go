// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render writes a citation graph as a self-contained interactive
// HTML page using the vis-network library from CDN.
package render

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"math"
	"strings"

	"github.com/Ayden-Zhou/Scholar-Tool/internal/graph"
)

// visNode is one node in vis-network's input format.
type visNode struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Title string `json:"title"`
	Size  int    `json:"size"`
	Color string `json:"color,omitempty"`
	Shape string `json:"shape"`
}

// visEdge is one edge in vis-network's input format.
type visEdge struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Arrows string `json:"arrows"`
	Width  int    `json:"width"`
	Color  string `json:"color,omitempty"`
}

const (
	seedColor      = "#d62728"
	defaultColor   = "#1f77b4"
	failedColor    = "#7f7f7f"
	influentialClr = "#ff7f0e"
)

// Render writes the graph as an HTML page to w. Node size scales with
// the logarithm of the citation count so a 90000-citation seed does not
// dwarf the page; influential edges draw wider and colored.
func Render(w io.Writer, eg graph.ExportedGraph, pageTitle string) error {
	nodes := make([]visNode, 0, len(eg.Nodes))
	for _, n := range eg.Nodes {
		nodes = append(nodes, toVisNode(n))
	}
	edges := make([]visEdge, 0, len(eg.Edges))
	for _, e := range eg.Edges {
		edges = append(edges, toVisEdge(e))
	}

	nodesJSON, err := json.Marshal(nodes)
	if err != nil {
		return fmt.Errorf("encoding nodes: %w", err)
	}
	edgesJSON, err := json.Marshal(edges)
	if err != nil {
		return fmt.Errorf("encoding edges: %w", err)
	}

	data := struct {
		PageTitle string
		Nodes     template.JS
		Edges     template.JS
		NodeCount int
		EdgeCount int
		Failures  int
	}{
		PageTitle: pageTitle,
		Nodes:     template.JS(nodesJSON),
		Edges:     template.JS(edgesJSON),
		NodeCount: len(eg.Nodes),
		EdgeCount: len(eg.Edges),
		Failures:  len(eg.Failures),
	}

	if err := pageTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("rendering graph page: %w", err)
	}
	return nil
}

func toVisNode(n graph.ExportedNode) visNode {
	label := n.Title
	if label == "" {
		label = n.ID
	}
	if len(label) > 40 {
		label = label[:37] + "..."
	}

	var notes []string
	if n.Year > 0 {
		notes = append(notes, fmt.Sprintf("%d", n.Year))
	}
	notes = append(notes, fmt.Sprintf("%d citations", n.CitationCount))
	notes = append(notes, fmt.Sprintf("depth %d", n.Depth))
	if n.Truncated {
		notes = append(notes, "neighbors truncated")
	}
	if n.Failed {
		notes = append(notes, "expansion failed")
	}

	v := visNode{
		ID:    n.ID,
		Label: label,
		Title: n.Title + " (" + strings.Join(notes, ", ") + ")",
		Size:  nodeSize(n.CitationCount),
		Shape: "dot",
	}
	switch {
	case n.Depth == 0:
		v.Color = seedColor
	case n.Failed:
		v.Color = failedColor
	default:
		v.Color = defaultColor
	}
	return v
}

func toVisEdge(e graph.ExportedEdge) visEdge {
	v := visEdge{
		From:   e.Source,
		To:     e.Target,
		Arrows: "to",
		Width:  1,
	}
	if e.Influential {
		v.Width = 3
		v.Color = influentialClr
	}
	return v
}

// nodeSize maps citation counts to dot sizes on a log scale, clamped to
// a readable range.
func nodeSize(citations int) int {
	if citations < 0 {
		citations = 0
	}
	size := 10 + int(6*math.Log10(float64(1+citations)))
	if size > 50 {
		size = 50
	}
	return size
}

var pageTemplate = template.Must(template.New("graph").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.PageTitle}}</title>
<script src="https://unpkg.com/vis-network/standalone/umd/vis-network.min.js"></script>
<style>
  body { font-family: sans-serif; margin: 0; }
  #header { padding: 8px 16px; background: #f5f5f5; border-bottom: 1px solid #ddd; }
  #network { width: 100vw; height: calc(100vh - 48px); }
</style>
</head>
<body>
<div id="header">
  <strong>{{.PageTitle}}</strong>
  &mdash; {{.NodeCount}} papers, {{.EdgeCount}} citations{{if .Failures}}, {{.Failures}} expansions failed{{end}}
</div>
<div id="network"></div>
<script>
  var nodes = new vis.DataSet({{.Nodes}});
  var edges = new vis.DataSet({{.Edges}});
  var container = document.getElementById("network");
  var options = {
    physics: { solver: "forceAtlas2Based", stabilization: { iterations: 150 } },
    interaction: { hover: true, tooltipDelay: 120 }
  };
  new vis.Network(container, { nodes: nodes, edges: edges }, options);
</script>
</body>
</html>
`))
