package pep

import (
	"sort"

	"github.com/charmbracelet/log"
)

// BatchResult reports the outcome of parsing a batch of documents.
type BatchResult struct {
	Records []Record
	Failed  int
}

// ParseDocuments parses a batch of documents with per-document error
// isolation: a document that fails to parse is logged and skipped, never
// fatal to the batch. Records are returned sorted by PEP number.
//
// A nil logger discards failure details but still counts them.
func ParseDocuments(docs []Document, logger *log.Logger) BatchResult {
	var result BatchResult

	for _, doc := range docs {
		rec, err := ParseDocument(doc.Text)
		if err != nil {
			result.Failed++
			if logger != nil {
				logger.Error("failed to parse document", "name", doc.Name, "err", err)
			}
			continue
		}
		result.Records = append(result.Records, rec)
	}

	sort.Slice(result.Records, func(i, j int) bool {
		return result.Records[i].Number < result.Records[j].Number
	})

	if logger != nil {
		logger.Info("parsed documents", "ok", len(result.Records), "failed", result.Failed)
	}
	return result
}

// NumberSet returns the set of PEP numbers present in records. This is the
// valid-number filter handed to the graph builder.
func NumberSet(records []Record) map[int]bool {
	set := make(map[int]bool, len(records))
	for _, r := range records {
		set[r.Number] = true
	}
	return set
}
