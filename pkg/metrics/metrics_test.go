package metrics

import (
	"math"
	"testing"

	"github.com/pepgraph/pepgraph/pkg/graph"
)

func mustGraph(t *testing.T, edges [][3]int, extraNodes ...int) *graph.Directed {
	t.Helper()
	g := graph.New(graph.Provenance{})
	for _, e := range edges {
		if err := g.AddEdge(e[0], e[1], e[2]); err != nil {
			t.Fatal(err)
		}
	}
	for _, n := range extraNodes {
		g.AddNode(n)
	}
	return g
}

func pagerankSum(m map[int]NodeMetrics) float64 {
	sum := 0.0
	for _, nm := range m {
		sum += nm.PageRank
	}
	return sum
}

func TestComputeDegrees(t *testing.T) {
	// 1→2, 2→3 with isolated node 4 (spec scenario).
	g := mustGraph(t, [][3]int{{1, 2, 1}, {2, 3, 1}}, 4)

	m := Compute(g, DefaultOptions())

	tests := []struct {
		node               int
		in, out, combined  int
	}{
		{1, 0, 1, 1},
		{2, 1, 1, 2},
		{3, 1, 0, 1},
		{4, 0, 0, 0},
	}
	for _, tt := range tests {
		nm := m[tt.node]
		if nm.InDegree != tt.in || nm.OutDegree != tt.out || nm.Degree != tt.combined {
			t.Errorf("node %d: in=%d out=%d degree=%d, want %d/%d/%d",
				tt.node, nm.InDegree, nm.OutDegree, nm.Degree, tt.in, tt.out, tt.combined)
		}
	}
}

func TestDegreeConsistency(t *testing.T) {
	g := mustGraph(t, [][3]int{{1, 2, 1}, {2, 1, 1}, {1, 3, 2}, {3, 2, 1}, {4, 1, 1}}, 9)

	m := Compute(g, DefaultOptions())

	sumIn, sumOut := 0, 0
	for _, nm := range m {
		if nm.Degree != nm.InDegree+nm.OutDegree {
			t.Errorf("node %d: degree %d != in %d + out %d",
				nm.PepNumber, nm.Degree, nm.InDegree, nm.OutDegree)
		}
		sumIn += nm.InDegree
		sumOut += nm.OutDegree
	}
	if sumIn != g.EdgeCount() || sumOut != g.EdgeCount() {
		t.Errorf("sum(in)=%d sum(out)=%d, want both %d", sumIn, sumOut, g.EdgeCount())
	}
}

func TestWeightsDoNotInflateDegree(t *testing.T) {
	g := mustGraph(t, [][3]int{{1, 2, 7}})

	m := Compute(g, DefaultOptions())
	if m[1].OutDegree != 1 || m[2].InDegree != 1 {
		t.Errorf("degree must count unique neighbors: out=%d in=%d", m[1].OutDegree, m[2].InDegree)
	}
}

func TestPageRankNormalization(t *testing.T) {
	tests := []struct {
		name  string
		build func(t *testing.T) *graph.Directed
	}{
		{"Chain", func(t *testing.T) *graph.Directed {
			return mustGraph(t, [][3]int{{1, 2, 1}, {2, 3, 1}})
		}},
		{"Cycle", func(t *testing.T) *graph.Directed {
			return mustGraph(t, [][3]int{{1, 2, 1}, {2, 3, 1}, {3, 1, 1}})
		}},
		{"WithIsolated", func(t *testing.T) *graph.Directed {
			return mustGraph(t, [][3]int{{1, 2, 1}}, 5, 6, 7)
		}},
		{"AllDangling", func(t *testing.T) *graph.Directed {
			return mustGraph(t, nil, 1, 2, 3)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Compute(tt.build(t), DefaultOptions())
			if got := pagerankSum(m); math.Abs(got-1.0) > 1e-6 {
				t.Errorf("sum(pagerank) = %v, want 1.0", got)
			}
		})
	}
}

func TestPageRankEdgelessUniform(t *testing.T) {
	g := mustGraph(t, nil, 1, 2, 3, 4)

	m := Compute(g, DefaultOptions())
	for n, nm := range m {
		if math.Abs(nm.PageRank-0.25) > 1e-9 {
			t.Errorf("node %d: pagerank = %v, want 0.25", n, nm.PageRank)
		}
		if nm.InDegree != 0 || nm.OutDegree != 0 {
			t.Errorf("node %d: degrees must be zero", n)
		}
	}
}

func TestPageRankOrdering(t *testing.T) {
	// Node 1 is cited by everyone and cites nobody: it must rank highest.
	g := mustGraph(t, [][3]int{{2, 1, 1}, {3, 1, 1}, {4, 1, 1}, {2, 3, 1}})

	m := Compute(g, DefaultOptions())
	for _, n := range []int{2, 3, 4} {
		if m[1].PageRank <= m[n].PageRank {
			t.Errorf("pagerank(1)=%v should exceed pagerank(%d)=%v",
				m[1].PageRank, n, m[n].PageRank)
		}
	}
}

func TestPageRankEmptyGraph(t *testing.T) {
	g := graph.New(graph.Provenance{})
	m := Compute(g, DefaultOptions())
	if len(m) != 0 {
		t.Errorf("metrics for empty graph = %v, want empty", m)
	}
}
