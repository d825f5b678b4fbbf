package citation

import (
	"regexp"
	"strconv"
)

var (
	// :pep:`8`
	rolePattern = regexp.MustCompile(":pep:`(\\d+)`")

	// :pep:`the style guide <8>` or :pep:`the style guide <8#indentation>`
	roleTextPattern = regexp.MustCompile(":pep:`[^`]*<(\\d+)(?:#[^>]*)?>`")

	// PEP 8 (case-insensitive). Matches inside role citations are filtered
	// out by span overlap afterwards; RE2 has no lookbehind.
	plainPattern = regexp.MustCompile(`(?i)PEP\s+(\d+)`)

	// https://peps.python.org/pep-0008 with optional trailing / and #anchor.
	// The greedy 0* strips leading zeros before the capture.
	urlPattern = regexp.MustCompile(`https://peps\.python\.org/pep-0*(\d+)`)
)

// span is a half-open [start, end) byte range of a role-citation match.
type span struct{ start, end int }

// matchPatterns runs the four textual notations over text and returns the
// multiset of captured PEP numbers. Plain-text matches that overlap a role
// citation are discarded so role citations are not counted twice.
func matchPatterns(text string) []int {
	var citations []int
	var roleSpans []span

	for _, p := range []*regexp.Regexp{rolePattern, roleTextPattern} {
		for _, m := range p.FindAllStringSubmatchIndex(text, -1) {
			roleSpans = append(roleSpans, span{m[0], m[1]})
			citations = append(citations, capturedInt(text, m))
		}
	}

	for _, m := range plainPattern.FindAllStringSubmatchIndex(text, -1) {
		if overlapsAny(roleSpans, m[0], m[1]) {
			continue
		}
		citations = append(citations, capturedInt(text, m))
	}

	for _, m := range urlPattern.FindAllStringSubmatchIndex(text, -1) {
		citations = append(citations, capturedInt(text, m))
	}

	return citations
}

func capturedInt(text string, m []int) int {
	// Capture group 1 is all digits; Atoi cannot fail here.
	n, _ := strconv.Atoi(text[m[2]:m[3]])
	return n
}

func overlapsAny(spans []span, start, end int) bool {
	for _, s := range spans {
		if start < s.end && end > s.start {
			return true
		}
	}
	return false
}
