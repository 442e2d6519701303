package handlers

import (
	"net/http"
	"strconv"

	"github.com/MrSnakeDoc/linkbox/internal/httpserver/deps"
)

type tagsResponse struct {
	Tags   []string       `json:"tags"`
	Counts map[string]int `json:"counts,omitempty"`
}

// Tags lists distinct tags in sorted order. ?counts=true adds per-tag usage.
func Tags(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tags, err := d.Service.Tags(r.Context())
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		resp := tagsResponse{Tags: tags}

		if withCounts, _ := strconv.ParseBool(r.URL.Query().Get("counts")); withCounts {
			if resp.Counts, err = d.Service.TagCounts(r.Context()); err != nil {
				writeError(w, r, d.Logger, err)
				return
			}
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
