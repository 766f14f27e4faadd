package ledger

import (
	"regexp"
	"strings"
)

// valuePattern follows a label: separators, an optional stray digit group
// (line numbers the OCR places between label and value), then the amount with
// its optional unit marker.
const valuePattern = `[.:\s\p{Zs}]*(?:\d+[\s\p{Zs}]+)?(\d+(?:[,.]\d+)*\.?\d*` + UnitMarker + `?)`

// Matcher locates the value that follows one label in normalized text.
type Matcher struct {
	re *regexp.Regexp
}

// NewMatcher compiles the case-insensitive pattern for label.
func NewMatcher(label string) *Matcher {
	return &Matcher{
		re: regexp.MustCompile(`(?i)` + regexp.QuoteMeta(label) + valuePattern),
	}
}

// Find returns the trimmed value of the first occurrence of the label, or ""
// when the label never appears with a value. Later occurrences are ignored.
func (m *Matcher) Find(text string) string {
	matches := m.re.FindStringSubmatch(text)
	if len(matches) < 2 {
		return ""
	}
	return strings.TrimSpace(matches[1])
}

// Extract is the one-shot form of NewMatcher(label).Find(text).
func Extract(text, label string) string {
	return NewMatcher(label).Find(text)
}
