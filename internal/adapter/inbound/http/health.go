package http

import (
	"encoding/json"
	"net/http"

	"github.com/npmgate/npmgate/internal/domain/session"
)

// HealthResponse is the JSON response from the /health endpoint.
type HealthResponse struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
}

// healthHandler reports liveness and the current session count.
func healthHandler(registry *session.Registry) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(HealthResponse{
			Status:   "ok",
			Sessions: registry.Len(),
		})
	})
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
