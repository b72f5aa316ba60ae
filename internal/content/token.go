package content

import (
	"strconv"
	"strings"
)

// The persisted token grammar is a backend-visible data format and must stay
// bit-exact: a literal "[IMG:", one or more ASCII digits, a literal "]".
const (
	tokenOpen  = "[IMG:"
	tokenClose = "]"
)

// Token renders the placeholder token for an image id.
func Token(id int64) string {
	return tokenOpen + strconv.FormatInt(id, 10) + tokenClose
}

type tokenMatch struct {
	start int
	end   int
	id    int64
}

// scanTokens finds every well-formed token in text, left to right. Bracket
// sequences that merely resemble a token (missing digits, stray whitespace)
// are left alone.
func scanTokens(text string) []tokenMatch {
	var out []tokenMatch
	offset := 0
	for {
		idx := strings.Index(text[offset:], tokenOpen)
		if idx == -1 {
			break
		}
		start := offset + idx
		cursor := start + len(tokenOpen)
		end := cursor
		for end < len(text) && text[end] >= '0' && text[end] <= '9' {
			end++
		}
		if end == cursor || end >= len(text) || text[end] != ']' {
			offset = cursor
			continue
		}
		id, err := strconv.ParseInt(text[cursor:end], 10, 64)
		if err != nil {
			offset = cursor
			continue
		}
		out = append(out, tokenMatch{start: start, end: end + 1, id: id})
		offset = end + 1
	}
	return out
}
