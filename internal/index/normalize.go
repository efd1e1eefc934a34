package index

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold strips diacritics: "Å" -> "A", "é" -> "e". Transformers are stateful,
// so a fresh chain is built per call to stay safe under concurrent queries.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// FoldLower case-folds and strips diacritics without splitting.
func FoldLower(s string) string {
	return strings.ToLower(Fold(s))
}

// Tokenize produces the normalized token sequence for a text value:
// case-folded, diacritic-stripped, split on any non-alphanumeric rune.
func Tokenize(s string) []string {
	return strings.FieldsFunc(FoldLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
