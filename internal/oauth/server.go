// Package oauth implements the embedded OAuth 2.0 authorization server and
// the bearer-token authentication gate for the MCP endpoint.
//
// The server supports the authorization_code and client_credentials grants
// against a single statically configured client. Codes and tokens live in
// expiring in-memory stores; nothing survives a restart.
package oauth

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/npmgate/npmgate/internal/domain/token"
)

const (
	codeLifetime  = 5 * time.Minute
	tokenLifetime = time.Hour
)

// Server handles the OAuth authorization endpoints.
type Server struct {
	clientID     string
	clientSecret string
	codes        *token.CodeStore
	tokens       *token.TokenStore
	logger       *slog.Logger

	// onTokenIssued, when set, is called with the grant type after every
	// successful token issuance.
	onTokenIssued func(grantType string)
}

// ServerOption is a functional option for configuring Server.
type ServerOption func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithTokenIssuedHook sets a callback invoked after each issued token.
func WithTokenIssuedHook(hook func(grantType string)) ServerOption {
	return func(s *Server) {
		s.onTokenIssued = hook
	}
}

// NewServer creates an authorization server for the single configured client.
// An empty clientID disables both grants: every authorization attempt is
// rejected rather than matched against the empty string.
func NewServer(clientID, clientSecret string, codes *token.CodeStore, tokens *token.TokenStore, opts ...ServerOption) *Server {
	s := &Server{
		clientID:     clientID,
		clientSecret: clientSecret,
		codes:        codes,
		tokens:       tokens,
		logger:       slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// metadata is the RFC 8414 authorization server metadata document.
type metadata struct {
	Issuer                            string   `json:"issuer"`
	AuthorizationEndpoint             string   `json:"authorization_endpoint"`
	TokenEndpoint                     string   `json:"token_endpoint"`
	ResponseTypesSupported            []string `json:"response_types_supported"`
	GrantTypesSupported               []string `json:"grant_types_supported"`
	TokenEndpointAuthMethodsSupported []string `json:"token_endpoint_auth_methods_supported"`
	CodeChallengeMethodsSupported     []string `json:"code_challenge_methods_supported"`
}

// HandleMetadata serves GET /.well-known/oauth-authorization-server. All
// endpoint URLs are derived from the request host so the document is correct
// behind a reverse proxy.
func (s *Server) HandleMetadata(w http.ResponseWriter, r *http.Request) {
	base := baseURL(r)
	writeJSON(w, http.StatusOK, metadata{
		Issuer:                            base,
		AuthorizationEndpoint:             base + "/authorize",
		TokenEndpoint:                     base + "/oauth/token",
		ResponseTypesSupported:            []string{"code"},
		GrantTypesSupported:               []string{"authorization_code", "client_credentials"},
		TokenEndpointAuthMethodsSupported: []string{"client_secret_post"},
		CodeChallengeMethodsSupported:     []string{"S256"},
	})
}

// HandleAuthorize serves GET /authorize: validates the client id, mints a
// single-use authorization code and redirects back to the client.
func (s *Server) HandleAuthorize(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	clientID := q.Get("client_id")
	redirectURI := q.Get("redirect_uri")
	state := q.Get("state")

	if !s.clientIDMatches(clientID) {
		s.logger.Warn("authorization rejected", "reason", "invalid_client")
		writeOAuthError(w, http.StatusBadRequest, "invalid_client")
		return
	}

	target, err := url.Parse(redirectURI)
	if err != nil || redirectURI == "" {
		writeOAuthError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	code := uuid.NewString()
	s.codes.Insert(token.AuthCode{
		Code:        code,
		ClientID:    clientID,
		RedirectURI: redirectURI,
		ExpiresAt:   time.Now().UTC().Add(codeLifetime),
	})

	values := target.Query()
	values.Set("code", code)
	if state != "" {
		values.Set("state", state)
	}
	target.RawQuery = values.Encode()

	s.logger.Debug("authorization code issued", "client_id", clientID)
	http.Redirect(w, r, target.String(), http.StatusFound)
}

// tokenRequest is the body of POST /oauth/token, accepted either
// form-encoded or as JSON.
type tokenRequest struct {
	GrantType    string `json:"grant_type"`
	Code         string `json:"code"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	RedirectURI  string `json:"redirect_uri"`
}

// HandleToken serves POST /oauth/token for the authorization_code and
// client_credentials grants.
func (s *Server) HandleToken(w http.ResponseWriter, r *http.Request) {
	req, err := parseTokenRequest(r)
	if err != nil {
		writeOAuthError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	switch req.GrantType {
	case "authorization_code":
		s.handleAuthorizationCodeGrant(w, req)
	case "client_credentials":
		s.handleClientCredentialsGrant(w, req)
	default:
		writeOAuthError(w, http.StatusBadRequest, "unsupported_grant_type")
	}
}

// handleAuthorizationCodeGrant exchanges a single-use code for a token. The
// code is consumed before the client secret is checked, so a failed exchange
// burns it.
func (s *Server) handleAuthorizationCodeGrant(w http.ResponseWriter, req tokenRequest) {
	stored, ok := s.codes.Consume(req.Code)
	if !ok || stored.ClientID != req.ClientID || stored.RedirectURI != req.RedirectURI {
		s.logger.Warn("token exchange rejected", "grant_type", "authorization_code", "reason", "invalid_grant")
		writeOAuthError(w, http.StatusBadRequest, "invalid_grant")
		return
	}

	if !s.clientSecretMatches(req.ClientSecret) {
		s.logger.Warn("token exchange rejected", "grant_type", "authorization_code", "reason", "invalid_client")
		writeOAuthError(w, http.StatusUnauthorized, "invalid_client")
		return
	}

	s.issueToken(w, "authorization_code")
}

// handleClientCredentialsGrant authenticates the client directly.
func (s *Server) handleClientCredentialsGrant(w http.ResponseWriter, req tokenRequest) {
	if !s.clientIDMatches(req.ClientID) || !s.clientSecretMatches(req.ClientSecret) {
		s.logger.Warn("token exchange rejected", "grant_type", "client_credentials", "reason", "invalid_client")
		writeOAuthError(w, http.StatusUnauthorized, "invalid_client")
		return
	}

	s.issueToken(w, "client_credentials")
}

func (s *Server) issueToken(w http.ResponseWriter, grantType string) {
	tok := uuid.NewString()
	s.tokens.Insert(token.AccessToken{
		Token:     tok,
		ExpiresAt: time.Now().UTC().Add(tokenLifetime),
	})

	if s.onTokenIssued != nil {
		s.onTokenIssued(grantType)
	}
	s.logger.Info("access token issued", "grant_type", grantType)

	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": tok,
		"token_type":   "Bearer",
		"expires_in":   int(tokenLifetime.Seconds()),
	})
}

// clientIDMatches compares in constant time. An unconfigured client id never
// matches anything, including the empty string.
func (s *Server) clientIDMatches(clientID string) bool {
	if s.clientID == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(clientID), []byte(s.clientID)) == 1
}

func (s *Server) clientSecretMatches(secret string) bool {
	if s.clientSecret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(secret), []byte(s.clientSecret)) == 1
}

// parseTokenRequest reads the token request from a form-encoded or JSON body.
func parseTokenRequest(r *http.Request) (tokenRequest, error) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/json") {
		var req tokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return tokenRequest{}, fmt.Errorf("failed to decode token request: %w", err)
		}
		return req, nil
	}

	if err := r.ParseForm(); err != nil {
		return tokenRequest{}, fmt.Errorf("failed to parse token request form: %w", err)
	}
	return tokenRequest{
		GrantType:    r.PostFormValue("grant_type"),
		Code:         r.PostFormValue("code"),
		ClientID:     r.PostFormValue("client_id"),
		ClientSecret: r.PostFormValue("client_secret"),
		RedirectURI:  r.PostFormValue("redirect_uri"),
	}, nil
}

// baseURL reconstructs the externally visible scheme://host of the request.
func baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeOAuthError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
