package layout

import (
	"math"
	"math/rand"

	"github.com/pepgraph/pepgraph/pkg/graph"
)

// springLayout places the connected nodes with the Fruchterman–Reingold
// algorithm: attraction along edges, repulsion between all pairs, linear
// cooling. Initial positions come from a seeded generator in ascending node
// order, so the result is reproducible. The final cluster is centered on the
// origin and scaled to ±opts.Spread.
func springLayout(g *graph.Directed, connected []int, opts Options) map[int]Position {
	positions := make(map[int]Position, g.NodeCount())
	n := len(connected)
	if n == 0 {
		return positions
	}

	rng := rand.New(rand.NewSource(opts.Seed))

	xs := make([]float64, n)
	ys := make([]float64, n)
	for i := range connected {
		xs[i] = rng.Float64()*2 - 1
		ys[i] = rng.Float64()*2 - 1
	}

	index := make(map[int]int, n)
	for i, node := range connected {
		index[node] = i
	}

	// Undirected edges of the induced subgraph, de-duplicated.
	type pair struct{ a, b int }
	seen := make(map[pair]bool)
	var edges []pair
	for _, node := range connected {
		for _, target := range g.Cites(node) {
			a, b := index[node], index[target]
			if a > b {
				a, b = b, a
			}
			if a == b || seen[pair{a, b}] {
				continue
			}
			seen[pair{a, b}] = true
			edges = append(edges, pair{a, b})
		}
	}

	// Optimal pair distance for a unit layout area, scaled by the repulsion
	// multiplier.
	k := opts.Repulsion * math.Sqrt(4.0/float64(n))

	temp := 0.1
	cool := temp / float64(opts.Iterations+1)

	dx := make([]float64, n)
	dy := make([]float64, n)

	for iter := 0; iter < opts.Iterations; iter++ {
		for i := range dx {
			dx[i], dy[i] = 0, 0
		}

		// Repulsion between all pairs.
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				ddx, ddy := xs[i]-xs[j], ys[i]-ys[j]
				dist := math.Hypot(ddx, ddy)
				if dist < 1e-9 {
					dist = 1e-9
				}
				force := k * k / dist
				fx, fy := ddx/dist*force, ddy/dist*force
				dx[i] += fx
				dy[i] += fy
				dx[j] -= fx
				dy[j] -= fy
			}
		}

		// Attraction along edges.
		for _, e := range edges {
			ddx, ddy := xs[e.a]-xs[e.b], ys[e.a]-ys[e.b]
			dist := math.Hypot(ddx, ddy)
			if dist < 1e-9 {
				dist = 1e-9
			}
			force := dist * dist / k
			fx, fy := ddx/dist*force, ddy/dist*force
			dx[e.a] -= fx
			dy[e.a] -= fy
			dx[e.b] += fx
			dy[e.b] += fy
		}

		// Displace, capped by the current temperature.
		for i := 0; i < n; i++ {
			disp := math.Hypot(dx[i], dy[i])
			if disp < 1e-9 {
				continue
			}
			limited := math.Min(disp, temp)
			xs[i] += dx[i] / disp * limited
			ys[i] += dy[i] / disp * limited
		}

		temp -= cool
	}

	center(xs)
	center(ys)
	rescale(xs, ys, opts.Spread)

	for i, node := range connected {
		positions[node] = Position{X: xs[i], Y: ys[i]}
	}
	return positions
}

// center shifts values so their mean is zero.
func center(vs []float64) {
	sum := 0.0
	for _, v := range vs {
		sum += v
	}
	mean := sum / float64(len(vs))
	for i := range vs {
		vs[i] -= mean
	}
}

// rescale scales coordinates uniformly so the largest absolute coordinate
// equals spread.
func rescale(xs, ys []float64, spread float64) {
	maxAbs := 0.0
	for i := range xs {
		maxAbs = math.Max(maxAbs, math.Max(math.Abs(xs[i]), math.Abs(ys[i])))
	}
	if maxAbs < 1e-9 {
		return
	}
	scale := spread / maxAbs
	for i := range xs {
		xs[i] *= scale
		ys[i] *= scale
	}
}
