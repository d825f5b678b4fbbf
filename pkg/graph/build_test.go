package graph

import (
	"reflect"
	"testing"

	"github.com/pepgraph/pepgraph/pkg/citation"
)

func TestBuildDropsSelfLoops(t *testing.T) {
	// Spec scenario: (1,2),(2,1),(1,1) → self-loop dropped, 2 nodes, 2 edges.
	rows := []citation.Row{
		{Citing: 1, Cited: 2, Count: 1},
		{Citing: 2, Cited: 1, Count: 1},
		{Citing: 1, Cited: 1, Count: 3},
	}

	g, err := Build(rows, BuildOptions{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if got := g.Nodes(); !reflect.DeepEqual(got, []int{1, 2}) {
		t.Errorf("nodes = %v, want [1 2]", got)
	}
	if g.EdgeCount() != 2 {
		t.Errorf("edges = %d, want 2", g.EdgeCount())
	}
	if g.InDegree(1) != 1 || g.OutDegree(1) != 1 || g.InDegree(2) != 1 || g.OutDegree(2) != 1 {
		t.Errorf("degrees: in1=%d out1=%d in2=%d out2=%d, want all 1",
			g.InDegree(1), g.OutDegree(1), g.InDegree(2), g.OutDegree(2))
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestBuildFilteredMode(t *testing.T) {
	rows := []citation.Row{
		{Citing: 1, Cited: 2, Count: 1},
		{Citing: 2, Cited: 3, Count: 1},
		{Citing: 3, Cited: 999, Count: 1}, // 999 not valid, dropped
	}
	valid := map[int]bool{1: true, 2: true, 3: true, 4: true}

	g, err := Build(rows, BuildOptions{ValidNumbers: valid})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	// Isolated node 4 preserved, invalid endpoint row dropped.
	if got := g.Nodes(); !reflect.DeepEqual(got, []int{1, 2, 3, 4}) {
		t.Errorf("nodes = %v, want [1 2 3 4]", got)
	}
	if g.EdgeCount() != 2 {
		t.Errorf("edges = %d, want 2", g.EdgeCount())
	}
	if g.Degree(4) != 0 {
		t.Errorf("degree(4) = %d, want 0", g.Degree(4))
	}
	if g.HasNode(999) {
		t.Error("invalid node 999 should not be present")
	}
}

func TestBuildPermissiveMode(t *testing.T) {
	rows := []citation.Row{{Citing: 1, Cited: 2, Count: 1}}

	g, err := Build(rows, BuildOptions{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	// Permissive mode: node set is exactly the surviving endpoints.
	if got := g.Nodes(); !reflect.DeepEqual(got, []int{1, 2}) {
		t.Errorf("nodes = %v, want [1 2]", got)
	}
}

func TestBuildSumsDuplicatePairs(t *testing.T) {
	rows := []citation.Row{
		{Citing: 1, Cited: 2, Count: 2},
		{Citing: 1, Cited: 2, Count: 3},
	}

	g, err := Build(rows, BuildOptions{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if g.EdgeCount() != 1 {
		t.Errorf("edges = %d, want 1 (pairs merged)", g.EdgeCount())
	}
	if got := g.Weight(1, 2); got != 5 {
		t.Errorf("weight = %d, want 5", got)
	}
	// Degree counts unique neighbors, not edge weight.
	if g.OutDegree(1) != 1 {
		t.Errorf("out-degree = %d, want 1", g.OutDegree(1))
	}
}

func TestBuildProvenance(t *testing.T) {
	prov := Provenance{FetchedAt: "2026-08-01T00:00:00Z", SourceURL: "https://example.com/peps.zip"}
	g, err := Build(nil, BuildOptions{Provenance: prov})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if g.Provenance() != prov {
		t.Errorf("provenance = %+v, want %+v", g.Provenance(), prov)
	}
}
