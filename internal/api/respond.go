package api

import (
	"encoding/json"
	"net/http"
)

// Bundle is the paginated response envelope shared by list endpoints.
type Bundle[T any] struct {
	Entries []T `json:"entries"`
	Total   int `json:"total"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
