package mw

import (
	"encoding/json"
	"net/http"
)

// deny writes the API error envelope for requests rejected before routing.
func deny(w http.ResponseWriter, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": http.StatusText(status)})
}
