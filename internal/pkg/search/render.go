package search

import (
	"slices"
	"strconv"
	"strings"
)

// ToTSQuery renders q as a PostgreSQL tsquery literal, to be cast with
// ::tsquery. Lexemes are quoted so PostgreSQL applies no parsing of its own;
// words contain only word characters, so quoting needs no escapes.
func (q Query) ToTSQuery() string {
	parts := make([]string, 0, len(q.Terms)+len(q.Phrases)+len(q.Excluded)+len(q.ExcludedPhrases))
	for _, t := range q.Terms {
		parts = append(parts, lexeme(t))
	}
	for _, p := range q.Phrases {
		parts = append(parts, "("+tsPhrase(p)+")")
	}
	for _, t := range q.Excluded {
		parts = append(parts, "!"+lexeme(t))
	}
	for _, p := range q.ExcludedPhrases {
		parts = append(parts, "!("+tsPhrase(p)+")")
	}
	return strings.Join(parts, " & ")
}

// ToTSVector renders fields as a PostgreSQL tsvector literal, tokenized the
// same way as queries. Positions skip one between fields so a phrase cannot
// run from one field into the next.
func ToTSVector(fields ...string) string {
	var b strings.Builder
	pos := 0
	for i, f := range fields {
		if i > 0 {
			pos++
		}
		for _, w := range Tokenize(f) {
			pos++
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(lexeme(w))
			b.WriteByte(':')
			b.WriteString(strconv.Itoa(min(pos, maxTSPosition)))
		}
	}
	return b.String()
}

// maxTSPosition is the largest position PostgreSQL stores in a tsvector.
const maxTSPosition = 16383

func lexeme(w string) string { return "'" + w + "'" }

func tsPhrase(words []string) string {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = lexeme(w)
	}
	return strings.Join(quoted, " <-> ")
}

// ToFTS5 renders q as an SQLite FTS5 MATCH expression.
func (q Query) ToFTS5() string {
	var b strings.Builder
	pos := make([]string, 0, len(q.Terms)+len(q.Phrases))
	for _, t := range q.Terms {
		pos = append(pos, `"`+t+`"`)
	}
	for _, p := range q.Phrases {
		pos = append(pos, `"`+strings.Join(p, " ")+`"`)
	}
	b.WriteString(strings.Join(pos, " AND "))
	for _, t := range q.Excluded {
		b.WriteString(` NOT "` + t + `"`)
	}
	for _, p := range q.ExcludedPhrases {
		b.WriteString(` NOT "` + strings.Join(p, " ") + `"`)
	}
	return b.String()
}

// Match evaluates q against the searchable fields of a record.
// Words and phrases may be found in any field; a phrase never spans two fields.
func (q Query) Match(fields ...string) bool {
	if !q.HasPositive() {
		return false
	}
	tokens := make([][]string, 0, len(fields))
	for _, f := range fields {
		tokens = append(tokens, Tokenize(f))
	}
	has := func(words []string) bool {
		for _, ts := range tokens {
			if containsRun(ts, words) {
				return true
			}
		}
		return false
	}
	for _, t := range q.Terms {
		if !has([]string{t}) {
			return false
		}
	}
	for _, p := range q.Phrases {
		if !has(p) {
			return false
		}
	}
	for _, t := range q.Excluded {
		if has([]string{t}) {
			return false
		}
	}
	for _, p := range q.ExcludedPhrases {
		if has(p) {
			return false
		}
	}
	return true
}

func containsRun(tokens, words []string) bool {
	if len(words) == 0 {
		return true
	}
	for i := 0; i+len(words) <= len(tokens); i++ {
		if slices.Equal(tokens[i:i+len(words)], words) {
			return true
		}
	}
	return false
}
