package pep

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pepgraph/pepgraph/pkg/errors"
)

var emailPattern = regexp.MustCompile(`<[^>]+>`)

// ParseField extracts a named header field from document text.
//
// A field starts on a line matching "Name: value" (case-insensitive) and its
// value continues across immediately following lines that begin with
// whitespace. Continuation lines are joined with single spaces. Parsing stops
// at the first non-indented line after the field starts.
//
// The second return value is false when the field is absent.
func ParseField(text, name string) (string, bool) {
	pattern := regexp.MustCompile(`(?i)^` + regexp.QuoteMeta(name) + `:\s*(.*)$`)

	var parts []string
	inField := false
	for _, line := range strings.Split(text, "\n") {
		if m := pattern.FindStringSubmatch(line); m != nil {
			inField = true
			if v := strings.TrimSpace(m[1]); v != "" {
				parts = append(parts, v)
			}
			continue
		}
		if inField {
			if line != "" && (line[0] == ' ' || line[0] == '\t') {
				parts = append(parts, strings.TrimSpace(line))
				continue
			}
			break
		}
	}

	if !inField {
		return "", false
	}
	return strings.Join(parts, " "), true
}

// ExtractNumber reads the document's own PEP number from the "PEP:" header
// field. This field is the authoritative source of document identity.
//
// Returns ErrCodeMissingField when the field is absent or empty and
// ErrCodeInvalidValue when the value is not a positive integer.
func ExtractNumber(text string) (int, error) {
	value, ok := ParseField(text, "PEP")
	if !ok || strings.TrimSpace(value) == "" {
		return 0, errors.New(errors.ErrCodeMissingField, "missing or empty 'PEP:' field in document")
	}

	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n <= 0 {
		return 0, errors.New(errors.ErrCodeInvalidValue,
			"could not parse PEP number from 'PEP:' field (got %q)", value)
	}
	return n, nil
}

// ParseAuthors splits an Author field value into display names.
// Bracketed email addresses are stripped before splitting on commas.
//
//	"Barry Warsaw <barry@python.org>, Jeremy Hylton" → ["Barry Warsaw", "Jeremy Hylton"]
func ParseAuthors(value string) []string {
	return splitList(emailPattern.ReplaceAllString(value, ""))
}

// ParseTopics splits a Topic field value into topic labels.
func ParseTopics(value string) []string {
	return splitList(value)
}

// ParseNumberList parses a comma-separated list of PEP numbers, as found in
// the Requires and Replaces fields. Any segment that is not a positive
// integer fails with an ErrCodeInvalidValue error naming the field and the
// offending token.
func ParseNumberList(value, field string) ([]int, error) {
	segments := splitList(value)
	if len(segments) == 0 {
		return nil, nil
	}

	numbers := make([]int, 0, len(segments))
	for _, seg := range segments {
		n, err := strconv.Atoi(seg)
		if err != nil || n <= 0 {
			return nil, errors.New(errors.ErrCodeInvalidValue,
				"invalid PEP number in %s field: %q (must be a positive integer)", field, seg)
		}
		numbers = append(numbers, n)
	}
	return numbers, nil
}

// ParseDocument parses one PEP document into a Record.
//
// Title, Status, Type, and Author are required and must be non-empty; the
// first missing one fails the document. Created is normalized to empty when
// present but blank. Topic, Requires, and Replaces are nil rather than empty
// collections when absent or empty after parsing.
func ParseDocument(text string) (Record, error) {
	number, err := ExtractNumber(text)
	if err != nil {
		return Record{}, err
	}

	rec := Record{Number: number}

	required := []struct {
		field string
		dst   *string
	}{
		{"Title", &rec.Title},
		{"Status", &rec.Status},
		{"Type", &rec.Type},
	}
	for _, f := range required {
		value, ok := ParseField(text, f.field)
		if !ok || value == "" {
			return Record{}, errors.New(errors.ErrCodeMissingField,
				"missing required field %q in PEP %d", f.field, number)
		}
		*f.dst = value
	}

	authorValue, ok := ParseField(text, "Author")
	if !ok || authorValue == "" {
		return Record{}, errors.New(errors.ErrCodeMissingField,
			"missing required field %q in PEP %d", "Author", number)
	}
	rec.Authors = ParseAuthors(authorValue)

	if created, ok := ParseField(text, "Created"); ok {
		rec.Created = strings.TrimSpace(created)
	}

	if topic, ok := ParseField(text, "Topic"); ok {
		if labels := ParseTopics(topic); len(labels) > 0 {
			rec.Topic = labels
		}
	}

	for _, f := range []struct {
		field string
		dst   *[]int
	}{
		{"Requires", &rec.Requires},
		{"Replaces", &rec.Replaces},
	} {
		value, ok := ParseField(text, f.field)
		if !ok {
			continue
		}
		numbers, err := ParseNumberList(value, f.field)
		if err != nil {
			return Record{}, errors.Wrap(errors.ErrCodeInvalidValue, err,
				"parse %s field in PEP %d", f.field, number)
		}
		if len(numbers) > 0 {
			*f.dst = numbers
		}
	}

	return rec, nil
}

// splitList splits on commas, trims whitespace, and drops empty segments.
func splitList(value string) []string {
	var out []string
	for _, seg := range strings.Split(value, ",") {
		if seg = strings.TrimSpace(seg); seg != "" {
			out = append(out, seg)
		}
	}
	return out
}
