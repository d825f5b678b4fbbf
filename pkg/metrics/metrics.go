// Package metrics computes per-node degree and PageRank metrics over the
// citation graph.
package metrics

import "github.com/pepgraph/pepgraph/pkg/graph"

// NodeMetrics holds the computed metrics for one PEP.
//
// Degrees are unique-neighbor counts: repeated citations between the same
// ordered pair count once. Degree is always InDegree + OutDegree. PageRank
// values sum to 1 over all nodes.
type NodeMetrics struct {
	PepNumber int     `json:"pep_number"`
	InDegree  int     `json:"in_degree"`
	OutDegree int     `json:"out_degree"`
	Degree    int     `json:"degree"`
	PageRank  float64 `json:"pagerank"`
}

// Options tunes the PageRank computation.
type Options struct {
	Damping       float64 // teleport damping factor
	Tolerance     float64 // per-node L1 convergence tolerance
	MaxIterations int     // safety bound; hitting it is not an error
}

// DefaultOptions are the standard PageRank parameters.
func DefaultOptions() Options {
	return Options{
		Damping:       0.85,
		Tolerance:     1e-6,
		MaxIterations: 100,
	}
}

// Compute calculates degree and PageRank metrics for every node of g.
// A graph with zero edges yields uniform PageRank 1/N and zero degrees.
func Compute(g *graph.Directed, opts Options) map[int]NodeMetrics {
	ranks := pageRank(g, opts)

	out := make(map[int]NodeMetrics, g.NodeCount())
	for _, n := range g.Nodes() {
		in, outDeg := g.InDegree(n), g.OutDegree(n)
		out[n] = NodeMetrics{
			PepNumber: n,
			InDegree:  in,
			OutDegree: outDeg,
			Degree:    in + outDeg,
			PageRank:  ranks[n],
		}
	}
	return out
}
