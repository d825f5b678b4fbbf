// Package citation extracts PEP-to-PEP citations from document text.
//
// Five notations are recognized:
//
//	:pep:`N`                            role citation
//	:pep:`text <N>` / :pep:`t <N#a>`    role citation with display text
//	PEP N                               plain-text mention (case-insensitive)
//	https://peps.python.org/pep-0N      canonical URL
//	Requires: / Replaces:               header-field lists
//
// Plain-text mentions inside a role citation's backticks would double-count
// the role notations, so role-citation spans are collected first and plain
// matches overlapping any of them are discarded.
package citation

import (
	"sort"

	"github.com/charmbracelet/log"

	"github.com/pepgraph/pepgraph/pkg/pep"
)

// Row is one directed citation aggregated per document: Citing referenced
// Cited Count times (Count >= 1). There is one row per distinct ordered pair
// per document, never one per occurrence.
type Row struct {
	Citing int `json:"citing"`
	Cited  int `json:"cited"`
	Count  int `json:"count"`
}

// Extract returns the multiset of PEP numbers cited by the document, across
// all five notations. When excludeSelf is true every occurrence of the
// document's own number is removed; the document must then carry a valid
// "PEP:" field, and its parse error is returned otherwise.
//
// Emission order is not meaningful; only multiplicities are.
func Extract(text string, excludeSelf bool) ([]int, error) {
	citations := matchPatterns(text)

	for _, field := range []string{"Requires", "Replaces"} {
		value, ok := pep.ParseField(text, field)
		if !ok {
			continue
		}
		numbers, err := pep.ParseNumberList(value, field)
		if err != nil {
			return nil, err
		}
		citations = append(citations, numbers...)
	}

	if excludeSelf {
		self, err := pep.ExtractNumber(text)
		if err != nil {
			return nil, err
		}
		citations = removeAll(citations, self)
	}

	return citations, nil
}

// Count reduces the citation multiset to a target → occurrence-count map.
// This mapping is the weight source for citation rows.
func Count(text string, excludeSelf bool) (map[int]int, error) {
	citations, err := Extract(text, excludeSelf)
	if err != nil {
		return nil, err
	}

	counts := make(map[int]int, len(citations))
	for _, n := range citations {
		counts[n]++
	}
	return counts, nil
}

// ExtractAll flattens per-document citation counts into rows, one per
// distinct (citing, cited) pair per document. Documents that fail extraction
// are logged and skipped, mirroring the batch parser's isolation policy.
// Rows are sorted by (citing, cited) for deterministic output.
func ExtractAll(docs []pep.Document, excludeSelf bool, logger *log.Logger) []Row {
	var rows []Row

	for _, doc := range docs {
		source, err := pep.ExtractNumber(doc.Text)
		if err != nil {
			if logger != nil {
				logger.Error("failed to extract citations", "name", doc.Name, "err", err)
			}
			continue
		}
		counts, err := Count(doc.Text, excludeSelf)
		if err != nil {
			if logger != nil {
				logger.Error("failed to extract citations", "name", doc.Name, "err", err)
			}
			continue
		}
		for target, count := range counts {
			rows = append(rows, Row{Citing: source, Cited: target, Count: count})
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Citing != rows[j].Citing {
			return rows[i].Citing < rows[j].Citing
		}
		return rows[i].Cited < rows[j].Cited
	})
	return rows
}

// removeAll drops every occurrence of n, not merely the first.
func removeAll(citations []int, n int) []int {
	out := citations[:0]
	for _, c := range citations {
		if c != n {
			out = append(out, c)
		}
	}
	return out
}
