// Package layout computes deterministic 2-D coordinates for citation graphs.
//
// Nodes with at least one edge are placed by a seeded Fruchterman–Reingold
// force simulation; isolated nodes are packed into a fixed-column grid to the
// left of the connected cluster. Given the same graph and options the output
// is identical on every call, which is what allows positions to be cached
// instead of recomputed per request.
package layout

import (
	"math"

	"github.com/pepgraph/pepgraph/pkg/graph"
)

// Position is a 2-D node coordinate.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Options controls the layout computation. The algorithm and every parameter
// are explicit; nothing is auto-selected from graph size.
type Options struct {
	Seed       int64   // random seed for initial placement
	Iterations int     // force simulation steps
	Spread     float64 // connected cluster is scaled to roughly ±Spread units
	Repulsion  float64 // multiplier on the optimal pair distance; larger spreads nodes further
	Columns    int     // isolated-node grid columns
	Margin     float64 // gap between the grid and the connected cluster
}

// DefaultOptions are the standard layout parameters.
func DefaultOptions() Options {
	return Options{
		Seed:       42,
		Iterations: 100,
		Spread:     1000,
		Repulsion:  1.0,
		Columns:    3,
		Margin:     200,
	}
}

// Compute returns coordinates for every node of g.
func Compute(g *graph.Directed, opts Options) map[int]Position {
	connected, isolated := partition(g)

	positions := springLayout(g, connected, opts)

	// Observed extent of the connected cluster; isolated nodes are placed
	// relative to it. With no connected nodes the y-range falls back to a
	// fixed interval.
	minX := 0.0
	yMin, yMax := -opts.Spread, opts.Spread
	if len(connected) > 0 {
		minX, yMin, yMax = math.Inf(1), math.Inf(1), math.Inf(-1)
		for _, n := range connected {
			p := positions[n]
			minX = math.Min(minX, p.X)
			yMin = math.Min(yMin, p.Y)
			yMax = math.Max(yMax, p.Y)
		}
	}

	gridLayout(isolated, positions, minX, yMin, yMax, opts)
	return positions
}

// partition splits nodes into connected (undirected degree >= 1) and
// isolated (degree 0) subsets, each in ascending order.
func partition(g *graph.Directed) (connected, isolated []int) {
	for _, n := range g.Nodes() {
		if g.Degree(n) > 0 {
			connected = append(connected, n)
		} else {
			isolated = append(isolated, n)
		}
	}
	return connected, isolated
}

// gridLayout packs isolated nodes into opts.Columns columns to the left of
// the connected cluster. Nodes fill each column top to bottom before moving
// to the next: column = i / rowsPerColumn, row = i % rowsPerColumn. Rows are
// spaced evenly across the connected cluster's y-range.
func gridLayout(isolated []int, positions map[int]Position, minX, yMin, yMax float64, opts Options) {
	if len(isolated) == 0 {
		return
	}

	rowsPerColumn := (len(isolated) + opts.Columns - 1) / opts.Columns

	for i, n := range isolated {
		col := i / rowsPerColumn
		row := i % rowsPerColumn

		x := minX - opts.Margin*float64(col+1)
		y := (yMin + yMax) / 2
		if rowsPerColumn > 1 {
			y = yMin + (yMax-yMin)*float64(row)/float64(rowsPerColumn-1)
		}
		positions[n] = Position{X: x, Y: y}
	}
}
