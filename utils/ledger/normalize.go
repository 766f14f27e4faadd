package ledger

import (
	"regexp"
	"strings"
	"unicode"
)

// noiseLineRegex matches lines holding only two bare integers, which Tesseract
// emits for ruled-paper coordinates and column markers.
var noiseLineRegex = regexp.MustCompile(`^\d+[\s\p{Zs}]+\d+$`)

// Normalize cleans raw OCR output into trimmed, non-empty lines joined by "\n".
// Noise lines are dropped. Label search runs over the joined string, so a label
// and its value split across consecutive lines stay discoverable.
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSpace(strings.Map(foldSpace, line))
		if line == "" {
			continue
		}
		if noiseLineRegex.MatchString(line) {
			continue
		}
		out = append(out, line)
	}

	return strings.Join(out, "\n")
}

// foldSpace turns Unicode space separators (NBSP from PDF text layers, thin
// spaces) into a plain space.
func foldSpace(r rune) rune {
	if r != ' ' && unicode.Is(unicode.Zs, r) {
		return ' '
	}
	return r
}
