package metrics

import "math"

// graphView is the subset of the graph API PageRank needs.
type graphView interface {
	Nodes() []int
	Cites(n int) []int
	OutDegree(n int) int
}

// pageRank runs the standard damped power iteration over the simple directed
// graph. Dangling mass (rank held by nodes with no outgoing edges) is
// redistributed uniformly. Iteration stops when the L1 change drops below
// N*tolerance, or at MaxIterations as a best-effort bound; non-convergence
// is not an error.
func pageRank(g graphView, opts Options) map[int]float64 {
	nodes := g.Nodes()
	n := len(nodes)
	if n == 0 {
		return map[int]float64{}
	}

	ranks := make(map[int]float64, n)
	uniform := 1.0 / float64(n)
	for _, node := range nodes {
		ranks[node] = uniform
	}

	teleport := (1.0 - opts.Damping) / float64(n)

	for iter := 0; iter < opts.MaxIterations; iter++ {
		next := make(map[int]float64, n)

		dangling := 0.0
		for _, node := range nodes {
			if g.OutDegree(node) == 0 {
				dangling += ranks[node]
			}
		}
		danglingShare := opts.Damping * dangling / float64(n)

		for _, node := range nodes {
			next[node] = teleport + danglingShare
		}
		for _, node := range nodes {
			out := g.Cites(node)
			if len(out) == 0 {
				continue
			}
			share := opts.Damping * ranks[node] / float64(len(out))
			for _, target := range out {
				next[target] += share
			}
		}

		delta := 0.0
		for _, node := range nodes {
			delta += math.Abs(next[node] - ranks[node])
		}
		ranks = next

		if delta < float64(n)*opts.Tolerance {
			break
		}
	}

	return ranks
}
