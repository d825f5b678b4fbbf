// Package export writes pipeline results to CSV and JSON artifacts.
//
// List-valued record fields (authors, topics, requires, replaces) are joined
// with semicolons inside a single CSV cell. All writers emit rows in
// ascending PEP-number order so repeated exports of the same snapshot are
// byte-identical.
package export

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/exp/maps"

	"github.com/pepgraph/pepgraph/pkg/citation"
	"github.com/pepgraph/pepgraph/pkg/graph"
	"github.com/pepgraph/pepgraph/pkg/layout"
	"github.com/pepgraph/pepgraph/pkg/metrics"
	"github.com/pepgraph/pepgraph/pkg/pep"
	"github.com/pepgraph/pepgraph/pkg/pipeline"
)

// Default artifact filenames used by WriteAll.
const (
	FileRecords   = "peps.csv"
	FileCitations = "citations.csv"
	FileMetrics   = "metrics.csv"
	FilePositions = "positions.csv"
	FileGraph     = "graph.json"
)

// WriteRecords writes parsed records as CSV, sorted by PEP number.
func WriteRecords(w io.Writer, records []pep.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"pep_number", "title", "status", "type", "created", "authors", "topic", "requires", "replaces"}); err != nil {
		return err
	}

	sorted := slices.Clone(records)
	slices.SortFunc(sorted, func(a, b pep.Record) int { return a.Number - b.Number })

	for _, r := range sorted {
		row := []string{
			strconv.Itoa(r.Number),
			r.Title,
			r.Status,
			r.Type,
			r.Created,
			strings.Join(r.Authors, ";"),
			strings.Join(r.Topic, ";"),
			joinInts(r.Requires),
			joinInts(r.Replaces),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCitations writes citation rows as CSV. Rows keep their input order,
// which the extractor already sorts by (citing, cited).
func WriteCitations(w io.Writer, rows []citation.Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"citing", "cited", "count"}); err != nil {
		return err
	}
	for _, r := range rows {
		row := []string{strconv.Itoa(r.Citing), strconv.Itoa(r.Cited), strconv.Itoa(r.Count)}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteMetrics writes node metrics as CSV, sorted by PEP number.
func WriteMetrics(w io.Writer, m map[int]metrics.NodeMetrics) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"pep_number", "in_degree", "out_degree", "degree", "pagerank"}); err != nil {
		return err
	}
	nums := maps.Keys(m)
	slices.Sort(nums)
	for _, n := range nums {
		nm := m[n]
		row := []string{
			strconv.Itoa(n),
			strconv.Itoa(nm.InDegree),
			strconv.Itoa(nm.OutDegree),
			strconv.Itoa(nm.Degree),
			strconv.FormatFloat(nm.PageRank, 'g', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WritePositions writes layout coordinates as CSV, sorted by PEP number.
func WritePositions(w io.Writer, positions map[int]layout.Position) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"pep_number", "x", "y"}); err != nil {
		return err
	}
	nums := maps.Keys(positions)
	slices.Sort(nums)
	for _, n := range nums {
		p := positions[n]
		row := []string{
			strconv.Itoa(n),
			strconv.FormatFloat(p.X, 'g', -1, 64),
			strconv.FormatFloat(p.Y, 'g', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteAll writes every artifact of a pipeline result into dir, creating it
// if needed. Filenames are the File* constants.
func WriteAll(dir string, result *pipeline.Result) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	writers := []struct {
		name  string
		write func(io.Writer) error
	}{
		{FileRecords, func(w io.Writer) error { return WriteRecords(w, result.Records) }},
		{FileCitations, func(w io.Writer) error { return WriteCitations(w, result.Rows) }},
		{FileMetrics, func(w io.Writer) error { return WriteMetrics(w, result.Metrics) }},
		{FilePositions, func(w io.Writer) error { return WritePositions(w, result.Positions) }},
		{FileGraph, func(w io.Writer) error { return graph.Write(result.Graph, w) }},
	}

	for _, art := range writers {
		f, err := os.Create(filepath.Join(dir, art.name))
		if err != nil {
			return err
		}
		if err := art.write(f); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ";")
}
