// Package search matches links against a free-text query.
//
// Matching is binary per field: a field either contains the query (case-insensitive
// substring) or it does not. There is no scoring and results keep input order.
package search

import (
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/linkbox/internal/domain"
)

// Field names a link field that can match a query.
type Field string

const (
	FieldTitle Field = "title"
	FieldTag   Field = "tag"
	FieldMemo  Field = "memo"
)

// Filter restricts which fields a general search looks at.
type Filter string

const (
	FilterAll   Filter = "all"
	FilterTitle Filter = "title"
	FilterTag   Filter = "tag"
	FilterMemo  Filter = "memo"
)

// TagPrefix turns a query into a tag-only search regardless of the filter.
const TagPrefix = "#"

// ParseFilter converts user input into a Filter. Empty input means FilterAll.
func ParseFilter(raw string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(raw))); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterTitle, FilterTag, FilterMemo:
		return f, nil
	default:
		return "", fmt.Errorf("unknown search filter %q: %w", raw, domain.ErrInvalidInput)
	}
}

func (f Filter) includes(field Field) bool {
	return f == FilterAll || string(f) == string(field)
}

// Result is one matching link.
type Result struct {
	Link domain.Link `json:"link"`

	// MatchedIn lists the fields that matched, in title, tag, memo order.
	// It is empty (not nil) when the query was blank.
	MatchedIn []Field `json:"matchedIn"`

	// MatchedTags holds the matching tags verbatim (original case).
	MatchedTags []string `json:"matchedTags,omitempty"`
}

// Search returns the links matching query under filter, in input order.
//
// A blank query returns every link unfiltered with an empty MatchedIn.
// A query starting with "#" searches tags only, using the rest of the query.
func Search(links []domain.Link, query string, filter Filter) []Result {
	if strings.TrimSpace(query) == "" {
		results := make([]Result, 0, len(links))
		for _, link := range links {
			results = append(results, Result{Link: link, MatchedIn: []Field{}})
		}
		return results
	}

	q := strings.ToLower(strings.TrimSpace(query))
	if strings.HasPrefix(q, TagPrefix) {
		return searchTags(links, strings.TrimPrefix(q, TagPrefix))
	}

	results := make([]Result, 0)
	for _, link := range links {
		if r, ok := matchLink(link, q, filter); ok {
			results = append(results, r)
		}
	}
	return results
}

// matchLink tests each field allowed by filter against the lowercased query.
func matchLink(link domain.Link, q string, filter Filter) (Result, bool) {
	r := Result{Link: link}

	if filter.includes(FieldTitle) && contains(link.Title, q) {
		r.MatchedIn = append(r.MatchedIn, FieldTitle)
	}

	if filter.includes(FieldTag) {
		if tags := matchTags(link.Tags, q); len(tags) > 0 {
			r.MatchedIn = append(r.MatchedIn, FieldTag)
			r.MatchedTags = tags
		}
	}

	if filter.includes(FieldMemo) && link.Memo != "" && contains(link.Memo, q) {
		r.MatchedIn = append(r.MatchedIn, FieldMemo)
	}

	return r, len(r.MatchedIn) > 0
}

// searchTags is the "#tag" shorthand: links without a matching tag are dropped.
func searchTags(links []domain.Link, q string) []Result {
	results := make([]Result, 0)
	for _, link := range links {
		tags := matchTags(link.Tags, q)
		if len(tags) == 0 {
			continue
		}
		results = append(results, Result{
			Link:        link,
			MatchedIn:   []Field{FieldTag},
			MatchedTags: tags,
		})
	}
	return results
}

func matchTags(tags []string, q string) []string {
	var matched []string
	for _, tag := range tags {
		if contains(tag, q) {
			matched = append(matched, tag)
		}
	}
	return matched
}

// contains is an unanchored substring test on the lowercased text.
// q must already be lowercase.
func contains(text, q string) bool {
	return strings.Contains(strings.ToLower(text), q)
}
