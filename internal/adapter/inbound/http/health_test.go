package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/npmgate/npmgate/internal/domain/session"
)

func TestHealthHandler_ReportsSessionCount(t *testing.T) {
	t.Parallel()

	registry := session.NewRegistry(nil)
	noop := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	registry.Insert(session.New("a", noop))
	registry.Insert(session.New("b", noop))

	w := httptest.NewRecorder()
	healthHandler(registry).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("status = %q, want ok", resp.Status)
	}
	if resp.Sessions != 2 {
		t.Errorf("sessions = %d, want 2", resp.Sessions)
	}
}
