// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package graph builds bounded citation neighborhoods around a seed
// paper: breadth-first traversal with first-seen deduplication, fan-out
// caps, soft per-node failure handling, and a renderer-neutral export.
package graph

import (
	"sync"

	"github.com/Ayden-Zhou/Scholar-Tool/pkg/types"
)

// NodeInfo is a paper in the graph together with its traversal state.
type NodeInfo struct {
	Paper types.PaperNode

	// Depth is the BFS level at which the paper was first discovered.
	// The seed is depth 0.
	Depth int

	// Truncated marks nodes whose recorded neighbors were capped by the
	// per-level width, so renderers can flag an incomplete fan-out.
	Truncated bool

	// Failed marks nodes whose expansion was abandoned (rate limit or
	// network failure after retries).
	Failed bool
}

// ExpansionFailure records one abandoned node expansion.
type ExpansionFailure struct {
	PaperID string             `json:"paper_id" yaml:"paper_id"`
	Kind    types.RelationKind `json:"kind" yaml:"kind"`
	Depth   int                `json:"depth" yaml:"depth"`
	Reason  string             `json:"reason" yaml:"reason"`
}

type edgeKey struct {
	source, target string
}

// Graph owns the node registry and edge list for one build. The registry
// enforces at most one node per PaperID no matter how many expansions
// race to insert it; all mutation goes through the mutex so a parallel
// builder keeps the same invariants as a sequential one. A Graph is
// owned by a single build and read-only once the build returns.
type Graph struct {
	mu       sync.Mutex
	nodes    map[string]*NodeInfo
	order    []string
	edges    []types.Edge
	edgeSeen map[edgeKey]bool
	failures []ExpansionFailure
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		nodes:    make(map[string]*NodeInfo),
		edgeSeen: make(map[edgeKey]bool),
	}
}

// AddNode registers a paper at the given depth. The first discovery of a
// PaperID wins permanently: later discoveries change nothing and return
// false, contributing only whatever edge the caller records.
func (g *Graph) AddNode(paper types.PaperNode, depth int) bool {
	if paper.PaperID == "" {
		return false
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.nodes[paper.PaperID]; ok {
		return false
	}
	g.nodes[paper.PaperID] = &NodeInfo{Paper: paper, Depth: depth}
	g.order = append(g.order, paper.PaperID)
	return true
}

// AddEdge records a directed edge. Edges whose endpoints are not both in
// the graph are rejected, which keeps referential completeness a
// structural property rather than an exporter fix-up. A second edge over
// the same (source, target) pair collapses to the first recording: the
// same citation rediscovered from the other direction is not a new fact.
// Self-loops are rejected; a paper does not cite itself.
func (g *Graph) AddEdge(e types.Edge) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if e.Source == e.Target {
		return false
	}
	if _, ok := g.nodes[e.Source]; !ok {
		return false
	}
	if _, ok := g.nodes[e.Target]; !ok {
		return false
	}
	key := edgeKey{e.Source, e.Target}
	if g.edgeSeen[key] {
		return false
	}
	g.edgeSeen[key] = true
	g.edges = append(g.edges, e)
	return true
}

// Has reports whether a PaperID is already in the graph.
func (g *Graph) Has(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.nodes[id]
	return ok
}

// MarkTruncated flags a node whose fan-out was capped.
func (g *Graph) MarkTruncated(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if n, ok := g.nodes[id]; ok {
		n.Truncated = true
	}
}

// RecordFailure flags a node as expansion-failed and appends the reason
// to the failure list.
func (g *Graph) RecordFailure(f ExpansionFailure) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if n, ok := g.nodes[f.PaperID]; ok {
		n.Failed = true
	}
	g.failures = append(g.failures, f)
}

// Nodes returns node info in first-seen (BFS) order.
func (g *Graph) Nodes() []NodeInfo {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]NodeInfo, len(g.order))
	for i, id := range g.order {
		out[i] = *g.nodes[id]
	}
	return out
}

// Node returns the info for one PaperID.
func (g *Graph) Node(id string) (NodeInfo, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, ok := g.nodes[id]
	if !ok {
		return NodeInfo{}, false
	}
	return *n, true
}

// Edges returns edges in insertion order.
func (g *Graph) Edges() []types.Edge {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]types.Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// Failures returns the recorded expansion failures in order.
func (g *Graph) Failures() []ExpansionFailure {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]ExpansionFailure, len(g.failures))
	copy(out, g.failures)
	return out
}

// Len returns the node count.
func (g *Graph) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.order)
}

// EdgeCount returns the edge count.
func (g *Graph) EdgeCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.edges)
}
