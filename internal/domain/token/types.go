// Package token contains the domain types and stores for OAuth credentials.
package token

import (
	"time"
)

// AuthCode is a short-lived, single-use authorization code minted by the
// /authorize endpoint and exchanged for an access token at /oauth/token.
type AuthCode struct {
	// Code is the opaque code value, also the store key.
	Code string
	// ClientID is the client the code was issued to.
	ClientID string
	// RedirectURI is the redirect target the code is bound to.
	RedirectURI string
	// ExpiresAt is the absolute expiry (UTC).
	ExpiresAt time.Time
}

// IsExpired returns true if the code's expiry has passed.
func (c *AuthCode) IsExpired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// AccessToken is a bearer credential granting transport access until expiry.
// No client or scope association is retained: any caller holding the token
// is trusted for its lifetime.
type AccessToken struct {
	// Token is the opaque bearer string, also the store key.
	Token string
	// ExpiresAt is the absolute expiry (UTC).
	ExpiresAt time.Time
}

// IsExpired returns true if the token's expiry has passed.
func (t *AccessToken) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
