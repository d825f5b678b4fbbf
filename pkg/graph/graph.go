// Package graph provides the directed PEP citation graph.
//
// Nodes are PEP numbers. Edges are de-duplicated (citing, cited) pairs; the
// occurrence count of each pair is kept as an edge weight for weight-aware
// consumers, while topology-level operations treat the graph as simple.
// The graph carries optional document-level provenance (fetch timestamp and
// source URL).
package graph

import (
	"slices"

	"golang.org/x/exp/maps"

	"github.com/pepgraph/pepgraph/pkg/errors"
)

// Provenance records where and when the source snapshot was obtained.
type Provenance struct {
	FetchedAt string `json:"fetched_at,omitempty"` // ISO-8601 timestamp
	SourceURL string `json:"source_url,omitempty"`
}

// Edge is a directed citation with its per-document occurrence count.
type Edge struct {
	Citing int `json:"citing"`
	Cited  int `json:"cited"`
	Count  int `json:"count"`
}

// Directed is a directed graph over PEP numbers.
//
// The zero value is not usable - use New. Directed is not safe for concurrent
// mutation; once built it is treated as immutable.
type Directed struct {
	nodes    map[int]struct{}
	outgoing map[int]map[int]int // citing -> cited -> count
	incoming map[int]map[int]int // cited -> citing -> count
	prov     Provenance
}

// New creates an empty directed graph with the given provenance.
func New(prov Provenance) *Directed {
	return &Directed{
		nodes:    make(map[int]struct{}),
		outgoing: make(map[int]map[int]int),
		incoming: make(map[int]map[int]int),
		prov:     prov,
	}
}

// Provenance returns the graph-level provenance attributes.
func (g *Directed) Provenance() Provenance { return g.prov }

// AddNode adds a node. Adding an existing node is a no-op.
func (g *Directed) AddNode(n int) {
	g.nodes[n] = struct{}{}
}

// AddEdge adds a directed edge with the given occurrence count, creating the
// endpoint nodes as needed. Counts for repeated (citing, cited) pairs are
// summed, never kept as parallel edges. Self-loops are rejected with a
// GRAPH_CONSISTENCY error; the builder must have filtered them already.
func (g *Directed) AddEdge(citing, cited, count int) error {
	if citing == cited {
		return errors.New(errors.ErrCodeGraphConsistency, "self-loop on node %d", citing)
	}
	g.AddNode(citing)
	g.AddNode(cited)

	if g.outgoing[citing] == nil {
		g.outgoing[citing] = make(map[int]int)
	}
	if g.incoming[cited] == nil {
		g.incoming[cited] = make(map[int]int)
	}
	g.outgoing[citing][cited] += count
	g.incoming[cited][citing] += count
	return nil
}

// HasNode reports whether n is in the node set.
func (g *Directed) HasNode(n int) bool {
	_, ok := g.nodes[n]
	return ok
}

// Nodes returns all nodes in ascending order.
func (g *Directed) Nodes() []int {
	nodes := maps.Keys(g.nodes)
	slices.Sort(nodes)
	return nodes
}

// Edges returns all edges sorted by (citing, cited).
func (g *Directed) Edges() []Edge {
	edges := make([]Edge, 0, g.EdgeCount())
	citings := maps.Keys(g.outgoing)
	slices.Sort(citings)
	for _, citing := range citings {
		citeds := maps.Keys(g.outgoing[citing])
		slices.Sort(citeds)
		for _, cited := range citeds {
			edges = append(edges, Edge{Citing: citing, Cited: cited, Count: g.outgoing[citing][cited]})
		}
	}
	return edges
}

// NodeCount returns the number of nodes.
func (g *Directed) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of unique directed edges.
func (g *Directed) EdgeCount() int {
	count := 0
	for _, targets := range g.outgoing {
		count += len(targets)
	}
	return count
}

// OutDegree returns the number of unique nodes cited by n.
func (g *Directed) OutDegree(n int) int { return len(g.outgoing[n]) }

// InDegree returns the number of unique nodes citing n.
func (g *Directed) InDegree(n int) int { return len(g.incoming[n]) }

// Degree returns the combined unique-neighbor degree of n.
func (g *Directed) Degree(n int) int { return g.InDegree(n) + g.OutDegree(n) }

// Cites returns the nodes cited by n, ascending.
func (g *Directed) Cites(n int) []int {
	cited := maps.Keys(g.outgoing[n])
	slices.Sort(cited)
	return cited
}

// CitedBy returns the nodes citing n, ascending.
func (g *Directed) CitedBy(n int) []int {
	citing := maps.Keys(g.incoming[n])
	slices.Sort(citing)
	return citing
}

// Weight returns the occurrence count of the (citing, cited) edge, or 0 when
// the edge does not exist.
func (g *Directed) Weight(citing, cited int) int {
	return g.outgoing[citing][cited]
}

// Validate checks that every edge endpoint is in the node set and that no
// self-loops exist. A failure indicates a builder bug, not bad input.
func (g *Directed) Validate() error {
	for citing, targets := range g.outgoing {
		if !g.HasNode(citing) {
			return errors.New(errors.ErrCodeGraphConsistency, "edge source %d not in node set", citing)
		}
		for cited := range targets {
			if !g.HasNode(cited) {
				return errors.New(errors.ErrCodeGraphConsistency, "edge target %d not in node set", cited)
			}
			if citing == cited {
				return errors.New(errors.ErrCodeGraphConsistency, "self-loop on node %d", citing)
			}
		}
	}
	return nil
}
