package pep

import (
	"io"
	"reflect"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/pepgraph/pepgraph/pkg/errors"
)

const sampleDoc = `PEP: 8
Title: Style Guide for Python Code
Author: Guido van Rossum <guido@python.org>,
        Barry Warsaw <barry@python.org>
Status: Active
Type: Process
Created: 05-Jul-2001

This document gives coding conventions.
`

func TestParseField(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		field  string
		want   string
		wantOK bool
	}{
		{
			name:   "SingleLine",
			text:   "Title: Style Guide\nStatus: Active\n",
			field:  "Title",
			want:   "Style Guide",
			wantOK: true,
		},
		{
			name:   "CaseInsensitive",
			text:   "title: Style Guide\n",
			field:  "Title",
			want:   "Style Guide",
			wantOK: true,
		},
		{
			name:   "Continuation",
			text:   "Author: Guido van Rossum,\n        Barry Warsaw\nStatus: Active\n",
			field:  "Author",
			want:   "Guido van Rossum, Barry Warsaw",
			wantOK: true,
		},
		{
			name:   "TabContinuation",
			text:   "Author: Guido,\n\tBarry\n",
			field:  "Author",
			want:   "Guido, Barry",
			wantOK: true,
		},
		{
			name:   "StopsAtNonIndented",
			text:   "Title: First\nStatus: Active\n  trailing\n",
			field:  "Title",
			want:   "First",
			wantOK: true,
		},
		{
			name:   "Absent",
			text:   "Title: First\n",
			field:  "Topic",
			wantOK: false,
		},
		{
			name:   "EmptyValue",
			text:   "Created:\nStatus: Active\n",
			field:  "Created",
			want:   "",
			wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseField(tt.text, tt.field)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("value = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractNumber(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		want     int
		wantCode errors.Code
	}{
		{"Valid", "PEP: 8\nTitle: x\n", 8, ""},
		{"Missing", "Title: x\n", 0, errors.ErrCodeMissingField},
		{"Empty", "PEP:\nTitle: x\n", 0, errors.ErrCodeMissingField},
		{"NotANumber", "PEP: eight\n", 0, errors.ErrCodeInvalidValue},
		{"Negative", "PEP: -3\n", 0, errors.ErrCodeInvalidValue},
		{"Zero", "PEP: 0\n", 0, errors.ErrCodeInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractNumber(tt.text)
			if tt.wantCode != "" {
				if !errors.Is(err, tt.wantCode) {
					t.Fatalf("err = %v, want code %s", err, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("number = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestParseAuthors(t *testing.T) {
	got := ParseAuthors("Barry Warsaw <barry@python.org>, Jeremy Hylton <jeremy@alum.mit.edu>")
	want := []string{"Barry Warsaw", "Jeremy Hylton"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("authors = %v, want %v", got, want)
	}
}

func TestParseNumberList(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    []int
		wantErr bool
	}{
		{"Single", "234", []int{234}, false},
		{"Multiple", "440, 508, 518", []int{440, 508, 518}, false},
		{"Empty", "", nil, false},
		{"TrailingComma", "12, ", []int{12}, false},
		{"NonInteger", "12, abc", nil, true},
		{"NonPositive", "12, 0", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseNumberList(tt.value, "Requires")
			if tt.wantErr {
				if !errors.Is(err, errors.ErrCodeInvalidValue) {
					t.Fatalf("err = %v, want INVALID_VALUE", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("numbers = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseDocument(t *testing.T) {
	rec, err := ParseDocument(sampleDoc)
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}

	if rec.Number != 8 {
		t.Errorf("Number = %d, want 8", rec.Number)
	}
	if rec.Title != "Style Guide for Python Code" {
		t.Errorf("Title = %q", rec.Title)
	}
	if rec.Status != "Active" || rec.Type != "Process" {
		t.Errorf("Status/Type = %q/%q", rec.Status, rec.Type)
	}
	if rec.Created != "05-Jul-2001" {
		t.Errorf("Created = %q", rec.Created)
	}
	want := []string{"Guido van Rossum", "Barry Warsaw"}
	if !reflect.DeepEqual(rec.Authors, want) {
		t.Errorf("Authors = %v, want %v", rec.Authors, want)
	}
	if rec.Topic != nil || rec.Requires != nil || rec.Replaces != nil {
		t.Errorf("optional fields should be nil when absent: %+v", rec)
	}
}

func TestParseDocumentOptionalFields(t *testing.T) {
	doc := `PEP: 517
Title: A build-system independent format
Author: Nathaniel Smith
Status: Final
Type: Standards Track
Topic: Packaging
Requires: 508, 518
Replaces: 426
Created:
`
	rec, err := ParseDocument(doc)
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}

	if rec.Created != "" {
		t.Errorf("blank Created should normalize to empty, got %q", rec.Created)
	}
	if !reflect.DeepEqual(rec.Topic, []string{"Packaging"}) {
		t.Errorf("Topic = %v", rec.Topic)
	}
	if !reflect.DeepEqual(rec.Requires, []int{508, 518}) {
		t.Errorf("Requires = %v", rec.Requires)
	}
	if !reflect.DeepEqual(rec.Replaces, []int{426}) {
		t.Errorf("Replaces = %v", rec.Replaces)
	}
}

func TestParseDocumentRequiredFields(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"MissingTitle", "PEP: 1\nStatus: Active\nType: Process\nAuthor: A\n"},
		{"MissingStatus", "PEP: 1\nTitle: T\nType: Process\nAuthor: A\n"},
		{"MissingType", "PEP: 1\nTitle: T\nStatus: Active\nAuthor: A\n"},
		{"MissingAuthor", "PEP: 1\nTitle: T\nStatus: Active\nType: Process\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDocument(tt.text)
			if !errors.Is(err, errors.ErrCodeMissingField) {
				t.Fatalf("err = %v, want MISSING_FIELD", err)
			}
		})
	}
}

func TestParseDocumentBadRequires(t *testing.T) {
	doc := "PEP: 1\nTitle: T\nStatus: Active\nType: Process\nAuthor: A\nRequires: 3, x\n"
	_, err := ParseDocument(doc)
	if !errors.Is(err, errors.ErrCodeInvalidValue) {
		t.Fatalf("err = %v, want INVALID_VALUE", err)
	}
}

func TestParseDocumentsIsolation(t *testing.T) {
	docs := []Document{
		{Name: "pep-0008.rst", Text: sampleDoc},
		{Name: "broken.rst", Text: "Title: no identity\n"},
		{Name: "pep-0001.rst", Text: "PEP: 1\nTitle: T\nStatus: Active\nType: Process\nAuthor: A\n"},
	}

	logger := log.NewWithOptions(io.Discard, log.Options{})
	result := ParseDocuments(docs, logger)

	if len(result.Records) != 2 {
		t.Fatalf("records = %d, want 2", len(result.Records))
	}
	if result.Failed != 1 {
		t.Errorf("failed = %d, want 1", result.Failed)
	}
	// Sorted by number.
	if result.Records[0].Number != 1 || result.Records[1].Number != 8 {
		t.Errorf("records not sorted: %d, %d", result.Records[0].Number, result.Records[1].Number)
	}
}

func TestNumberSet(t *testing.T) {
	set := NumberSet([]Record{{Number: 1}, {Number: 8}})
	if len(set) != 2 || !set[1] || !set[8] {
		t.Errorf("set = %v", set)
	}
}
