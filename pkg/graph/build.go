package graph

import "github.com/pepgraph/pepgraph/pkg/citation"

// BuildOptions controls graph construction.
type BuildOptions struct {
	// ValidNumbers, when non-nil, switches the builder to filtered mode:
	// rows with either endpoint outside the set are dropped and every member
	// of the set becomes a node even without surviving edges. When nil
	// (permissive mode) the node set is exactly the surviving endpoints.
	ValidNumbers map[int]bool

	// Provenance is attached to the graph when available.
	Provenance Provenance
}

// Build constructs the canonical citation graph from aggregated rows.
//
// Processing order, each step strictly filtering the previous one:
//  1. drop rows where citing == cited
//  2. in filtered mode, drop rows with an endpoint outside ValidNumbers
//  3. build edges from the survivors; in filtered mode add every valid
//     number as a node (isolated-node preservation)
//  4. attach provenance
//
// Malformed rows must have been rejected upstream; Build performs no I/O and
// returns errors only for internal invariant violations.
func Build(rows []citation.Row, opts BuildOptions) (*Directed, error) {
	g := New(opts.Provenance)

	for _, row := range rows {
		if row.Citing == row.Cited {
			continue
		}
		if opts.ValidNumbers != nil &&
			(!opts.ValidNumbers[row.Citing] || !opts.ValidNumbers[row.Cited]) {
			continue
		}
		if err := g.AddEdge(row.Citing, row.Cited, row.Count); err != nil {
			return nil, err
		}
	}

	if opts.ValidNumbers != nil {
		for n := range opts.ValidNumbers {
			g.AddNode(n)
		}
	}

	return g, nil
}
