package oauth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/npmgate/npmgate/internal/domain/token"
)

func gateRequest(t *testing.T, mw func(http.Handler) http.Handler, authHeader string) *httptest.ResponseRecorder {
	t.Helper()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r := httptest.NewRequest(http.MethodPost, "/mcp", nil)
	if authHeader != "" {
		r.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	mw(next).ServeHTTP(w, r)
	return w
}

// TestRequireAuth_OpenMode verifies requests pass untouched when neither the
// api key nor oauth is configured.
func TestRequireAuth_OpenMode(t *testing.T) {
	t.Parallel()

	mw := RequireAuth("", false, token.NewTokenStore(nil), nil)
	if w := gateRequest(t, mw, ""); w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want pass-through 204", w.Code)
	}
}

func TestRequireAuth_MissingToken(t *testing.T) {
	t.Parallel()

	mw := RequireAuth("secret-key", false, token.NewTokenStore(nil), nil)

	for _, header := range []string{"", "Basic Zm9v", "bearer lowercase"} {
		w := gateRequest(t, mw, header)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("header %q: status = %d, want 401", header, w.Code)
		}
		if !strings.Contains(w.Body.String(), FailureMissingToken) {
			t.Errorf("header %q: body = %q, want missing_token", header, w.Body.String())
		}
	}
}

func TestRequireAuth_SharedSecret(t *testing.T) {
	t.Parallel()

	mw := RequireAuth("secret-key", false, token.NewTokenStore(nil), nil)

	if w := gateRequest(t, mw, "Bearer secret-key"); w.Code != http.StatusNoContent {
		t.Errorf("matching key: status = %d, want 204", w.Code)
	}
	w := gateRequest(t, mw, "Bearer wrong-key")
	if w.Code != http.StatusUnauthorized || !strings.Contains(w.Body.String(), FailureInvalidToken) {
		t.Errorf("wrong key = %d %q, want 401 invalid_token", w.Code, w.Body.String())
	}
}

// TestRequireAuth_MintedToken verifies minted tokens pass while expired ones
// are rejected even before the sweeper removes them.
func TestRequireAuth_MintedToken(t *testing.T) {
	t.Parallel()

	tokens := token.NewTokenStore(nil)
	tokens.Insert(token.AccessToken{Token: "live", ExpiresAt: time.Now().UTC().Add(time.Hour)})
	tokens.Insert(token.AccessToken{Token: "stale", ExpiresAt: time.Now().UTC().Add(-time.Second)})

	mw := RequireAuth("", true, tokens, nil)

	if w := gateRequest(t, mw, "Bearer live"); w.Code != http.StatusNoContent {
		t.Errorf("live token: status = %d, want 204", w.Code)
	}
	if w := gateRequest(t, mw, "Bearer stale"); w.Code != http.StatusUnauthorized {
		t.Errorf("expired token: status = %d, want 401", w.Code)
	}
}

// TestRequireAuth_BothModes verifies the shared secret and minted tokens are
// both accepted when both mechanisms are configured.
func TestRequireAuth_BothModes(t *testing.T) {
	t.Parallel()

	tokens := token.NewTokenStore(nil)
	tokens.Insert(token.AccessToken{Token: "minted", ExpiresAt: time.Now().UTC().Add(time.Hour)})

	mw := RequireAuth("secret-key", true, tokens, nil)

	if w := gateRequest(t, mw, "Bearer secret-key"); w.Code != http.StatusNoContent {
		t.Errorf("api key: status = %d, want 204", w.Code)
	}
	if w := gateRequest(t, mw, "Bearer minted"); w.Code != http.StatusNoContent {
		t.Errorf("minted token: status = %d, want 204", w.Code)
	}
}

func TestRequireAuth_FailureHook(t *testing.T) {
	t.Parallel()

	var reasons []string
	mw := RequireAuth("secret-key", false, token.NewTokenStore(nil), func(reason string) {
		reasons = append(reasons, reason)
	})

	gateRequest(t, mw, "")
	gateRequest(t, mw, "Bearer nope")

	want := []string{FailureMissingToken, FailureInvalidToken}
	if len(reasons) != len(want) {
		t.Fatalf("hook reasons = %v, want %v", reasons, want)
	}
	for i := range want {
		if reasons[i] != want[i] {
			t.Errorf("reasons[%d] = %q, want %q", i, reasons[i], want[i])
		}
	}
}
