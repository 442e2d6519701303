package search

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/linkbox/internal/domain"
)

func sampleLinks() []domain.Link {
	return []domain.Link{
		{ID: "1", Title: "Weekly Report", Tags: []string{"weekly", "Work"}, Memo: "no match here"},
		{ID: "2", Title: "Go generics", Tags: []string{"golang"}, Memo: "read at work"},
		{ID: "3", Title: "Cooking", Tags: nil},
		{ID: "4", Title: "Homework", Tags: []string{"school", "HOMEWORK"}, Memo: ""},
	}
}

func ids(results []Result) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.Link.ID)
	}
	return out
}

func TestSearch_EmptyQueryReturnsAll(t *testing.T) {
	links := sampleLinks()

	for _, q := range []string{"", "   ", "\t"} {
		results := Search(links, q, FilterAll)
		require.Len(t, results, len(links))
		assert.Equal(t, []string{"1", "2", "3", "4"}, ids(results))
		for _, r := range results {
			assert.NotNil(t, r.MatchedIn)
			assert.Empty(t, r.MatchedIn)
		}
	}
}

func TestSearch_TagShorthand(t *testing.T) {
	results := Search(sampleLinks(), "#work", FilterAll)

	assert.Equal(t, []string{"1", "4"}, ids(results))
	assert.Equal(t, []Field{FieldTag}, results[0].MatchedIn)
	assert.Equal(t, []string{"Work"}, results[0].MatchedTags)
	assert.Equal(t, []string{"HOMEWORK"}, results[1].MatchedTags)
}

func TestSearch_TagShorthandIgnoresFilter(t *testing.T) {
	results := Search(sampleLinks(), "  #GOLANG ", FilterTitle)

	require.Len(t, results, 1)
	assert.Equal(t, "2", results[0].Link.ID)
	assert.Equal(t, []Field{FieldTag}, results[0].MatchedIn)
}

func TestSearch_FieldIsolation(t *testing.T) {
	link := domain.Link{ID: "w", Title: "Weekly Report", Tags: []string{"weekly"}, Memo: "no match here"}

	title := Search([]domain.Link{link}, "weekly", FilterTitle)
	require.Len(t, title, 1)
	assert.Equal(t, []Field{FieldTitle}, title[0].MatchedIn)
	assert.Empty(t, title[0].MatchedTags)

	all := Search([]domain.Link{link}, "weekly", FilterAll)
	require.Len(t, all, 1)
	assert.Equal(t, []Field{FieldTitle, FieldTag}, all[0].MatchedIn)
	assert.Equal(t, []string{"weekly"}, all[0].MatchedTags)

	memo := Search([]domain.Link{link}, "weekly", FilterMemo)
	assert.Empty(t, memo)
}

func TestSearch_Filters(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		filter Filter
		want   []string
	}{
		{"all fields", "work", FilterAll, []string{"1", "2", "4"}},
		{"title only", "work", FilterTitle, []string{"4"}},
		{"tag only", "work", FilterTag, []string{"1", "4"}},
		{"memo only", "work", FilterMemo, []string{"2"}},
		{"case insensitive", "GENERICS", FilterAll, []string{"2"}},
		{"unanchored", "ook", FilterAll, []string{"3"}},
		{"internal whitespace kept", "weekly  report", FilterAll, []string{}},
		{"no match", "zzz", FilterAll, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Search(sampleLinks(), tt.query, tt.filter)))
		})
	}
}

func TestSearch_TagMatchedOnce(t *testing.T) {
	link := domain.Link{ID: "t", Title: "x", Tags: []string{"go", "golang", "gopher"}}

	results := Search([]domain.Link{link}, "go", FilterAll)

	require.Len(t, results, 1)
	assert.Equal(t, []Field{FieldTag}, results[0].MatchedIn)
	assert.Equal(t, []string{"go", "golang", "gopher"}, results[0].MatchedTags)
}

func TestParseFilter(t *testing.T) {
	f, err := ParseFilter("")
	require.NoError(t, err)
	assert.Equal(t, FilterAll, f)

	f, err = ParseFilter(" Memo ")
	require.NoError(t, err)
	assert.Equal(t, FilterMemo, f)

	_, err = ParseFilter("url")
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestHighlight(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		query string
		want  []Span
	}{
		{"single", "Weekly Report", "report", []Span{{7, 13}}},
		{"repeated", "go go", "GO", []Span{{0, 2}, {3, 5}}},
		{"tag prefix stripped", "golang", "#lang", []Span{{2, 6}}},
		{"non overlapping", "aaaa", "aa", []Span{{0, 2}, {2, 4}}},
		{"multibyte", "Ünïcode", "ïc", []Span{{3, 6}}},
		{"blank query", "anything", "  ", nil},
		{"no match", "abc", "x", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Highlight(tt.text, tt.query))
		})
	}
}
