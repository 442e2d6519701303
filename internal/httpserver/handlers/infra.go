package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/linkbox/internal/httpserver/deps"
)

type componentStatus struct {
	OK         bool   `json:"ok"`
	Backend    string `json:"backend,omitempty"`
	State      string `json:"state,omitempty"`
	Links      *int   `json:"links,omitempty"`
	Folders    *int   `json:"folders,omitempty"`
	LastReload string `json:"last_reload,omitempty"`
	Error      string `json:"error,omitempty"`
}

type infraResponse struct {
	Mode       string                     `json:"mode"`
	Components map[string]componentStatus `json:"components"`
}

// Infra describes the index, the store and the import job for operators.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		idx := d.Service.Index()
		links, folders := idx.Count(), idx.FolderCount()
		lastReload := "never"
		if t := idx.GetLastReload(); !t.IsZero() {
			lastReload = t.Format("2006-01-02 15:04:05")
		}

		store := componentStatus{OK: true, Backend: d.Backend}
		if err := pingStore(r.Context(), d); err != nil {
			store.OK = false
			store.Error = err.Error()
		}

		components := map[string]componentStatus{
			"index": {
				OK:         lastReload != "never",
				Links:      &links,
				Folders:    &folders,
				LastReload: lastReload,
			},
			"store":  store,
			"import": {OK: true, State: importState(d)},
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Mode:       determineMode(components),
			Components: components,
		})
	}
}

func importState(d deps.Deps) string {
	if d.ReloadTrigger == nil {
		return "disabled"
	}
	return "enabled"
}

// determineMode: an unreachable store is critical, an unloaded index is degraded.
func determineMode(components map[string]componentStatus) string {
	if !components["store"].OK {
		return "critical"
	}
	if !components["index"].OK {
		return "degraded"
	}
	return "normal"
}
