package oauth

import (
	"net/http"
	"strings"

	"github.com/npmgate/npmgate/internal/domain/token"
)

// Auth failure reasons, used for logging and metrics labels.
const (
	FailureMissingToken = "missing_token"
	FailureInvalidToken = "invalid_token"
)

// RequireAuth gates a handler behind bearer authentication. A request passes
// when its token equals the static apiKey or is a live minted access token.
//
// When apiKey is empty and oauthEnabled is false the gate is open: every
// request passes untouched. This is the documented insecure default for
// local single-user deployments.
//
// onFailure, when non-nil, is called with the failure reason before the 401
// is written.
func RequireAuth(apiKey string, oauthEnabled bool, tokens *token.TokenStore, onFailure func(reason string)) func(http.Handler) http.Handler {
	open := apiKey == "" && !oauthEnabled

	reject := func(w http.ResponseWriter, reason string) {
		if onFailure != nil {
			onFailure(reason)
		}
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": reason})
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if open {
				next.ServeHTTP(w, r)
				return
			}

			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				reject(w, FailureMissingToken)
				return
			}
			bearer := strings.TrimPrefix(auth, "Bearer ")

			if apiKey != "" && bearer == apiKey {
				next.ServeHTTP(w, r)
				return
			}
			if tokens.Valid(bearer) {
				next.ServeHTTP(w, r)
				return
			}

			reject(w, FailureInvalidToken)
		})
	}
}
