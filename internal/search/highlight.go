package search

import (
	"strings"
	"unicode/utf8"
)

// Span is a half-open byte range [Start, End) into the highlighted text.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Highlight returns the non-overlapping spans of text that match query
// case-insensitively, left to right. A leading "#" is ignored so tag-shorthand
// queries highlight the same way as plain ones.
//
// Spans are computed rune by rune so they stay aligned with the original text
// even when lowercasing changes a rune's byte width.
func Highlight(text, query string) []Span {
	q := strings.ToLower(strings.TrimSpace(query))
	q = strings.TrimPrefix(q, TagPrefix)
	if q == "" || text == "" {
		return nil
	}

	var spans []Span
	for start := 0; start < len(text); {
		if end, ok := matchAt(text, start, q); ok {
			spans = append(spans, Span{Start: start, End: end})
			start = end
			continue
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		start += size
	}
	return spans
}

// matchAt reports whether the lowercase query matches text at byte offset i,
// returning the end offset in text.
func matchAt(text string, i int, q string) (int, bool) {
	j := 0
	for j < len(q) {
		if i >= len(text) {
			return 0, false
		}
		tr, tsize := utf8.DecodeRuneInString(text[i:])
		lower := strings.ToLower(string(tr))
		if !strings.HasPrefix(q[j:], lower) {
			return 0, false
		}
		i += tsize
		j += len(lower)
	}
	return i, true
}
