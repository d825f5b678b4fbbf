package graph

import (
	"bytes"
	"reflect"
	"testing"
)

func TestGraphRoundTrip(t *testing.T) {
	g := New(Provenance{FetchedAt: "2026-08-01T00:00:00Z", SourceURL: "https://example.com"})
	g.AddNode(4)
	if err := g.AddEdge(1, 2, 2); err != nil {
		t.Fatal(err)
	}
	if err := g.AddEdge(2, 3, 1); err != nil {
		t.Fatal(err)
	}

	data, err := Marshal(g)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	decoded, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if !reflect.DeepEqual(decoded.Nodes(), g.Nodes()) {
		t.Errorf("nodes = %v, want %v", decoded.Nodes(), g.Nodes())
	}
	if !reflect.DeepEqual(decoded.Edges(), g.Edges()) {
		t.Errorf("edges = %v, want %v", decoded.Edges(), g.Edges())
	}
	if decoded.Provenance() != g.Provenance() {
		t.Errorf("provenance = %+v, want %+v", decoded.Provenance(), g.Provenance())
	}
}

func TestMarshalDeterministic(t *testing.T) {
	// Serialized bytes must be stable so they can be content-hashed.
	build := func() *Directed {
		g := New(Provenance{})
		g.AddEdge(3, 1, 1)
		g.AddEdge(1, 2, 1)
		g.AddNode(9)
		return g
	}

	a, err := Marshal(build())
	if err != nil {
		t.Fatal(err)
	}
	b, err := Marshal(build())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Error("marshaled bytes differ between identical graphs")
	}
}

func TestUnmarshalRejectsSelfLoop(t *testing.T) {
	data := []byte(`{"nodes":[1],"edges":[{"citing":1,"cited":1,"count":1}]}`)
	if _, err := Unmarshal(data); err == nil {
		t.Fatal("expected self-loop to be rejected")
	}
}
