package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// document is the canonical serialization format for citation graphs.
// Nodes and edges are sorted for deterministic output so serialized graphs
// can be content-hashed for caching.
type document struct {
	Nodes     []int  `json:"nodes"`
	Edges     []Edge `json:"edges"`
	FetchedAt string `json:"fetched_at,omitempty"`
	SourceURL string `json:"source_url,omitempty"`
}

// Marshal converts a graph to JSON bytes.
func Marshal(g *Directed) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write writes a graph as indented JSON to w.
func Write(g *Directed, w io.Writer) error {
	out := document{
		Nodes:     g.Nodes(),
		Edges:     g.Edges(),
		FetchedAt: g.prov.FetchedAt,
		SourceURL: g.prov.SourceURL,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Read decodes a JSON graph from r. The decoded graph is validated before it
// is returned.
func Read(r io.Reader) (*Directed, error) {
	var data document
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	g := New(Provenance{FetchedAt: data.FetchedAt, SourceURL: data.SourceURL})
	for _, n := range data.Nodes {
		g.AddNode(n)
	}
	for _, e := range data.Edges {
		if err := g.AddEdge(e.Citing, e.Cited, e.Count); err != nil {
			return nil, fmt.Errorf("add edge %d→%d: %w", e.Citing, e.Cited, err)
		}
	}

	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// Unmarshal decodes JSON bytes to a graph.
func Unmarshal(data []byte) (*Directed, error) {
	return Read(bytes.NewReader(data))
}
