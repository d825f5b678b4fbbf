// Package pep parses PEP documents into typed records.
//
// A PEP document starts with a semi-structured header block of "Name: value"
// fields. Field values may continue on following lines when those lines begin
// with whitespace. This package extracts the header fields, validates the
// required ones, and assembles a Record per document.
//
// The document's identity is always taken from its own "PEP:" field. File
// names are not renumbering-safe and are treated as untrusted metadata only.
package pep

// Record is the typed metadata extracted from one PEP document.
// Records are derived once per ingestion run and are immutable thereafter.
type Record struct {
	Number  int      `json:"pep_number"`
	Title   string   `json:"title"`
	Status  string   `json:"status"`
	Type    string   `json:"type"`
	Created string   `json:"created,omitempty"` // calendar date as written, empty if absent
	Authors []string `json:"authors"`           // display names, emails stripped
	Topic   []string `json:"topic,omitempty"`
	// Requires and Replaces list PEP numbers this document depends on or
	// supersedes. Both are nil when the field is absent or empty.
	Requires []int `json:"requires,omitempty"`
	Replaces []int `json:"replaces,omitempty"`
}

// Document pairs raw PEP text with an opaque name used only for logging.
// The name never contributes to the record's identity.
type Document struct {
	Name string
	Text string
}
