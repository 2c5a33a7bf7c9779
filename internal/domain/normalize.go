package domain

import (
	"regexp"
	"strings"
)

// The upstream exports are hand-edited spreadsheets: separators drift
// between "1-Critical", "1 -Critical" and "1 - Critical", and sometimes
// the separator between a number and a word is dropped entirely
// ("3Medium"). NormalizeLabel repairs all of these so that a data-export
// label and a mapping-table label compare equal.

var (
	reWhitespace  = regexp.MustCompile(`\s+`)
	reHyphen      = regexp.MustCompile(`\s*-\s*`)
	reDigitLetter = regexp.MustCompile(`(\d)([A-Za-z])`)
	reNonDigit    = regexp.MustCompile(`([^\d\s])(\d)`)
)

// NormalizeLabel canonicalizes a criticality or severity label: trims,
// collapses whitespace runs, forces every hyphen to " - " and inserts a
// boundary space between adjacent digits and letters. It is idempotent:
// normalizing an already-normalized label changes nothing. Missing
// markers ("nan", "none") normalize to the empty string.
func NormalizeLabel(s string) string {
	s = strings.TrimSpace(s)
	if isMissingCell(s) {
		return ""
	}
	s = reWhitespace.ReplaceAllString(s, " ")
	s = reHyphen.ReplaceAllString(s, " - ")
	s = reDigitLetter.ReplaceAllString(s, "$1 $2")
	s = reNonDigit.ReplaceAllString(s, "$1 $2")
	s = reWhitespace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// CriticalityKey joins a business-criticality label and a severity label
// into the canonical lookup key, e.g. "1 - Critical - 2 - Medium".
// Either side may be absent; both absent yields the empty key.
func CriticalityKey(criticality, severity string) string {
	c := NormalizeLabel(criticality)
	s := NormalizeLabel(severity)
	switch {
	case c == "" && s == "":
		return ""
	case c == "":
		return s
	case s == "":
		return c
	}
	return c + " - " + s
}

// NormalizeText lower-cases and trims free text for the external mapping
// lookups (item titles, severity labels). Unlike NormalizeLabel it does
// not touch separators: the mapping tables are keyed by full phrases.
func NormalizeText(s string) string {
	s = strings.TrimSpace(s)
	if isMissingCell(s) {
		return ""
	}
	return strings.ToLower(s)
}

// isMissingCell reports whether a cell value is a spreadsheet
// missing-marker rather than real text.
func isMissingCell(s string) bool {
	switch strings.ToLower(s) {
	case "", "nan", "none", "null", "n/a":
		return true
	}
	return false
}
