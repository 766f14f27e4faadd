package ledger

import (
	"regexp"
	"strings"
)

// UnitMarker is the currency symbol written after amounts on the ledger.
const UnitMarker = "đ"

var amountRunRegex = regexp.MustCompile(`[\d,.]+(?:\.\d+)?`)

// ExtractAmount keeps the first run of digits and separators from raw and drops
// anything the label pattern over-captured. The result is not validated as a
// number: OCR keeps separators inconsistently.
func ExtractAmount(raw string) string {
	if raw == "" {
		return ""
	}

	match := amountRunRegex.FindString(raw)
	if match == "" {
		return ""
	}

	return strings.TrimSpace(strings.ReplaceAll(match, UnitMarker, ""))
}

// CleanCurrency removes every unit marker and trims surrounding whitespace.
func CleanCurrency(value string) string {
	if value == "" {
		return ""
	}
	return strings.TrimSpace(strings.ReplaceAll(value, UnitMarker, ""))
}
