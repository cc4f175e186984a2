// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the scholar CLI:
// paper records returned by the Semantic Scholar Graph API, citation
// graph nodes and edges, and per-command configuration.
package types

// RelationKind selects which side of the citation relation a query follows.
type RelationKind string

const (
	// RelationReferences follows outgoing citations: the papers a work cites.
	RelationReferences RelationKind = "references"

	// RelationCitations follows incoming citations: the papers citing a work.
	RelationCitations RelationKind = "citations"
)

// Valid reports whether k is one of the two supported relation kinds.
func (k RelationKind) Valid() bool {
	return k == RelationReferences || k == RelationCitations
}

// EdgeKind labels a graph edge with the relation that discovered it.
type EdgeKind string

const (
	EdgeCites   EdgeKind = "cites"
	EdgeCitedBy EdgeKind = "cited_by"
)

// PaperNode is one distinct paper in a citation graph. The API-assigned
// PaperID is the sole identity; titles are ambiguous and never used as keys.
// A graph holds at most one PaperNode per PaperID (first seen wins).
type PaperNode struct {
	// PaperID is the stable Semantic Scholar paper identifier (40-hex SHA).
	PaperID string `json:"paper_id" yaml:"paper_id"`

	// Title is the paper title. Empty when the API record was partial;
	// such nodes are kept to preserve graph connectivity.
	Title string `json:"title" yaml:"title"`

	// Year is the publication year, 0 when unknown.
	Year int `json:"year" yaml:"year"`

	// Authors lists author names in source order.
	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`

	// CitationCount is the total citation count reported by the API.
	CitationCount int `json:"citation_count" yaml:"citation_count"`
}

// Edge is a directed citation between two PaperNodes. Edges always point
// citing→cited: Source cites Target, no matter which direction the
// traversal that discovered the edge was walking.
type Edge struct {
	// Source is the PaperID of the citing paper.
	Source string `json:"source" yaml:"source"`

	// Target is the PaperID of the cited paper.
	Target string `json:"target" yaml:"target"`

	// Kind records the relation that discovered the edge: "cites" when
	// the traversal followed references, "cited_by" when it followed
	// citations.
	Kind EdgeKind `json:"kind" yaml:"kind"`

	// Depth is the traversal level at which the edge was discovered.
	// Seed expansion produces depth-1 edges.
	Depth int `json:"depth" yaml:"depth"`

	// Influential marks edges the API classifies as highly influential
	// citations.
	Influential bool `json:"influential,omitempty" yaml:"influential,omitempty"`
}

// RelationEntry is one neighbor returned by a citations or references
// listing: the neighbor paper plus the influence flag the API attaches to
// the citation itself.
type RelationEntry struct {
	Paper       PaperNode `json:"paper" yaml:"paper"`
	Influential bool      `json:"influential" yaml:"influential"`
}
