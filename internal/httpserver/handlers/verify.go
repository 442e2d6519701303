package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/linkbox/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkbox/internal/logger"
	"github.com/MrSnakeDoc/linkbox/internal/repository"
)

type verifyResponse struct {
	Consistent bool              `json:"consistent"`
	Report     repository.Report `json:"report"`
}

// Verify reports folder membership drift without changing anything.
func Verify(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := d.Service.Verify(r.Context())
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, verifyResponse{Consistent: report.Consistent(), Report: report})
	}
}

// Repair fixes drift and returns what was found before fixing.
func Repair(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := d.Service.Repair(r.Context())
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		if !report.Consistent() {
			d.Logger.Warn("membership repaired",
				logger.Int("folders", len(report.Folders)),
				logger.Int("orphans", len(report.Orphans)))
		}
		writeJSON(w, http.StatusOK, verifyResponse{Consistent: report.Consistent(), Report: report})
	}
}
