package catalog

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Keeps letters with their combining marks so Indic scripts survive cleaning.
var nonWordPunct = regexp.MustCompile(`[^\p{L}\p{M}\p{N}_\s,.]`)

// NormalizeText lowercases text, replaces anything other than word
// characters, whitespace, commas and periods with a space, collapses
// whitespace and drops tokens of two runes or fewer except "i" and "a".
// Symptom input and catalog keywords both pass through it, so a keyword
// can only match text normalized the same way.
func NormalizeText(text string) string {
	t := cases.Lower(language.Und).String(strings.TrimSpace(text))
	t = norm.NFC.String(t)
	t = nonWordPunct.ReplaceAllString(t, " ")

	words := strings.Fields(t)
	kept := words[:0]
	for _, w := range words {
		if utf8.RuneCountInString(w) > 2 || w == "i" || w == "a" {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

// collapse lowercases and squeezes whitespace without dropping anything
func collapse(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(cases.Lower(language.Und).String(s))), " ")
}
