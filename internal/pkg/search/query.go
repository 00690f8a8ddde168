// Package search implements the catalog search language shared by every
// storage backend.
//
// A search string is a sequence of words and double-quoted phrases. A word is
// a run of two or more word characters (Unicode letters, Unicode numbers and
// '_'); shorter runs and punctuation are ignored, so "a #definitive
// @JAVASCRIPT" searches for "definitive" and "javascript", and "Gödel" stays
// one word. A leading '-' (at the start of the string or after whitespace)
// excludes the following word or phrase. All remaining words and phrases are
// required. Matching is case-insensitive and whole-word; diacritics are
// significant.
//
// A book is searched as two fields, its title and its author list. A phrase
// must lie inside one field: it may run from one author name into the next
// but never from the title into the authors.
package search

import (
	"slices"
	"strings"
	"unicode"
)

// Query is a parsed search string.
type Query struct {
	Terms           []string
	Phrases         [][]string
	Excluded        []string
	ExcludedPhrases [][]string
}

// HasPositive reports whether the query requires anything. A query made only
// of exclusions can match nothing useful and is answered with no results.
func (q Query) HasPositive() bool {
	return len(q.Terms) > 0 || len(q.Phrases) > 0
}

// Parse parses s. It never fails; unusable input yields an empty Query.
// Every word is kept, however long the query.
func Parse(s string) Query {
	var q Query
	add := func(words []string, negated bool) {
		switch {
		case len(words) == 1 && negated:
			if !slices.Contains(q.Excluded, words[0]) {
				q.Excluded = append(q.Excluded, words[0])
			}
		case len(words) == 1:
			if !slices.Contains(q.Terms, words[0]) {
				q.Terms = append(q.Terms, words[0])
			}
		case negated:
			q.ExcludedPhrases = append(q.ExcludedPhrases, words)
		default:
			q.Phrases = append(q.Phrases, words)
		}
	}

	rs := []rune(s)
	negated := false
	for i := 0; i < len(rs); {
		c := rs[i]
		switch {
		case c == '-' && (i == 0 || unicode.IsSpace(rs[i-1])):
			negated = true
			i++
		case c == '"':
			end := slices.Index(rs[i+1:], '"')
			var body string
			if end < 0 {
				body, i = string(rs[i+1:]), len(rs)
			} else {
				body, i = string(rs[i+1:i+1+end]), i+end+2
			}
			words := Tokenize(body)
			if len(words) == 1 && len([]rune(words[0])) < 2 {
				words = nil
			}
			if len(words) > 0 {
				add(words, negated)
			}
			negated = false
		case IsWordRune(c):
			j := i
			for j < len(rs) && IsWordRune(rs[j]) {
				j++
			}
			if j-i >= 2 {
				add([]string{strings.ToLower(string(rs[i:j]))}, negated)
			}
			negated = false
			i = j
		default:
			negated = false
			i++
		}
	}
	return q
}

// Tokenize splits text into lower-case words of any length.
func Tokenize(text string) []string {
	words := strings.FieldsFunc(text, func(r rune) bool { return !IsWordRune(r) })
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	return words
}

// IsWordRune reports whether r belongs to a word. The SQLite index is built
// with the same character classes.
func IsWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}
