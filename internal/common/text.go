package common

import (
	"strings"
	"unicode"
)

// MaxTextLength bounds strings fed to edit-distance scoring.
const MaxTextLength = 100

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "at": {}, "by": {}, "for": {}, "from": {},
	"in": {}, "inc": {}, "llc": {}, "ltd": {}, "of": {}, "on": {}, "or": {},
	"pos": {}, "purchase": {}, "payment": {}, "the": {}, "to": {}, "via": {},
	"with": {}, "www": {}, "com": {}, "debit": {}, "credit": {}, "card": {},
	"transaction": {}, "ref": {}, "store": {},
}

// NormalizeText lowercases, collapses whitespace and truncates to MaxTextLength runes.
func NormalizeText(s string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(s)), " ")
	runes := []rune(normalized)
	if len(runes) > MaxTextLength {
		normalized = strings.TrimSpace(string(runes[:MaxTextLength]))
	}
	return normalized
}

// Tokenize splits text into lowercase alphanumeric tokens.
func Tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// IsStopword reports whether a token carries no categorization signal.
func IsStopword(token string) bool {
	_, ok := stopwords[token]
	return ok
}

// Keywords extracts up to limit distinct, non-stopword, non-numeric tokens
// of at least three characters, in order of first appearance.
func Keywords(s string, limit int) []string {
	var out []string
	seen := make(map[string]bool)
	for _, token := range Tokenize(s) {
		if len(out) >= limit {
			break
		}
		if len(token) < 3 || IsStopword(token) || isNumeric(token) || seen[token] {
			continue
		}
		seen[token] = true
		out = append(out, token)
	}
	return out
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}
