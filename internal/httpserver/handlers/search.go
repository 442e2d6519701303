package handlers

import (
	"net/http"
	"slices"

	"github.com/MrSnakeDoc/linkbox/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkbox/internal/logger"
	"github.com/MrSnakeDoc/linkbox/internal/search"
)

type searchHit struct {
	search.Result
	TitleSpans []search.Span `json:"titleSpans,omitempty"`
}

type searchResponse struct {
	Query   string      `json:"query"`
	Filter  string      `json:"filter"`
	Results []searchHit `json:"results"`
	Count   int         `json:"count"`
}

// Search runs ?q= over visible links. ?filter= is one of all, title, tag, memo.
func Search(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("q")
		filter := r.URL.Query().Get("filter")

		results, err := d.Service.Search(query, filter)
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		d.Logger.Debug("search", logger.String("query", query), logger.Int("hits", len(results)))

		hits := make([]searchHit, 0, len(results))
		for _, res := range results {
			hit := searchHit{Result: res}
			if slices.Contains(res.MatchedIn, search.FieldTitle) {
				hit.TitleSpans = search.Highlight(res.Link.Title, query)
			}
			hits = append(hits, hit)
		}
		if filter == "" {
			filter = string(search.FilterAll)
		}
		writeJSON(w, http.StatusOK, searchResponse{Query: query, Filter: filter, Results: hits, Count: len(hits)})
	}
}
