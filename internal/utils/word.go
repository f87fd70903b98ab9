package utils

import (
	"strings"
	"unicode"
)

// IsWordRune reports whether r can appear inside a word token:
// letters, digits, hyphen and apostrophe. Hyphens and apostrophes are
// only valid between alphanumerics; callers trim them from the edges
// with TrimWordEdges.
func IsWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '\''
}

// TrimWordEdges strips leading and trailing hyphens/apostrophes from a
// scanned token so only internal ones survive. Returns the number of
// runes trimmed from the front and the trimmed token.
func TrimWordEdges(runes []rune) (int, []rune) {
	start := 0
	end := len(runes)
	for start < end && !isAlnum(runes[start]) {
		start++
	}
	for end > start && !isAlnum(runes[end-1]) {
		end--
	}
	return start, runes[start:end]
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// NormalizeWord case-folds a word to its canonical dictionary key form.
// Every key is normalized with this before storage and before lookup.
func NormalizeWord(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}

// CapitalPositions records which rune positions of the typed prefix are
// uppercase, so suggestions can be echoed back in the user's casing.
func CapitalPositions(prefix string) []bool {
	runes := []rune(prefix)
	positions := make([]bool, len(runes))
	hasUpper := false
	for i, r := range runes {
		if unicode.IsUpper(r) {
			positions[i] = true
			hasUpper = true
		}
	}
	if !hasUpper {
		return nil
	}
	return positions
}

// ApplyCapitalization re-applies the recorded capitalization pattern to a
// lowercase suggestion.
func ApplyCapitalization(word string, positions []bool) string {
	if len(positions) == 0 {
		return word
	}
	runes := []rune(word)
	for i := 0; i < len(runes) && i < len(positions); i++ {
		if positions[i] {
			runes[i] = unicode.ToUpper(runes[i])
		}
	}
	return string(runes)
}
