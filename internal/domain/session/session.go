// Package session contains the domain types for transport sessions.
//
// A Session binds an opaque identifier to the HTTP handler that exclusively
// owns the underlying protocol transport. The Registry is the single owner of
// the identifier-to-session mapping; transports signal their own closure
// through a callback that removes the entry, never by touching the map.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrSessionNotFound is returned when a session id maps to no live session.
var ErrSessionNotFound = errors.New("session not found")

// Session is a live transport session.
type Session struct {
	// ID is the opaque session identifier (64 hex chars, crypto random).
	ID string
	// Handler serves all requests bearing this session's id. It is owned
	// exclusively by this session.
	Handler http.Handler
	// CreatedAt is when the session was established (UTC).
	CreatedAt time.Time
}

// New creates a session owning the given handler.
func New(id string, handler http.Handler) *Session {
	return &Session{
		ID:        id,
		Handler:   handler,
		CreatedAt: time.Now().UTC(),
	}
}

// GenerateID creates a cryptographically random session identifier.
// Returns 64 hex characters (32 bytes); collisions are not a practical
// concern, so ids are never reused within a process lifetime.
func GenerateID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}
