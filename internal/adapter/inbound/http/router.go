package http

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/mark3labs/mcp-go/server"

	"github.com/npmgate/npmgate/internal/domain/session"
)

// sessionIDHeader is the MCP streamable transport session header.
const sessionIDHeader = "Mcp-Session-Id"

// MCPServerFactory builds a fully configured MCP server for one session.
// Each session gets its own server instance and its own upstream client.
type MCPServerFactory func() *server.MCPServer

// Router multiplexes the /mcp endpoint across independent MCP sessions.
//
// Requests carrying a recognized Mcp-Session-Id header are forwarded to the
// transport handler owned by that session. A POST without a recognized id
// creates a new session; a GET without one is an error. DELETE terminates
// the addressed session and is idempotent.
type Router struct {
	registry *session.Registry
	factory  MCPServerFactory
	logger   *slog.Logger
}

// NewRouter creates a session router backed by the given registry.
func NewRouter(registry *session.Registry, factory MCPServerFactory, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		registry: registry,
		factory:  factory,
		logger:   logger,
	}
}

// ServeHTTP implements the session routing rules.
func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sid := r.Header.Get(sessionIDHeader)

	if sid != "" {
		if sess, err := rt.registry.Lookup(sid); err == nil {
			switch r.Method {
			case http.MethodGet, http.MethodPost:
				sess.Handler.ServeHTTP(w, r)
				return
			case http.MethodDelete:
				// The transport terminates the session and answers the
				// request; removal happens through the id adapter. The
				// extra Remove covers a transport that failed mid-flight.
				sess.Handler.ServeHTTP(w, r)
				rt.registry.Remove(sid)
				return
			}
		}
	}

	switch r.Method {
	case http.MethodPost:
		rt.createSession(w, r)
	case http.MethodGet:
		writeJSONError(w, http.StatusBadRequest, "Session not found")
	case http.MethodDelete:
		// Deleting an unknown or already-closed session succeeds.
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// createSession builds a new MCP server with its own transport and forwards
// the initiating request to it. The session becomes addressable as soon as
// the transport asks the id adapter for an identifier.
func (rt *Router) createSession(w http.ResponseWriter, r *http.Request) {
	adapter := newSessionIDAdapter(rt.registry, rt.logger)
	streamable := server.NewStreamableHTTPServer(
		rt.factory(),
		server.WithEndpointPath("/mcp"),
		server.WithSessionIdManager(adapter),
	)
	adapter.bind(streamable)

	// A stale id from a previous process would make the fresh transport
	// reject the request instead of initializing a new session.
	r.Header.Del(sessionIDHeader)

	streamable.ServeHTTP(w, r)
}

// sessionIDAdapter implements mcp-go's SessionIdManager for exactly one
// session. Generating an id registers the session; terminating it removes
// the registry entry. The streamable transport drives all three calls.
type sessionIDAdapter struct {
	registry *session.Registry
	logger   *slog.Logger

	mu         sync.Mutex
	handler    http.Handler
	sessionID  string
	terminated bool
}

func newSessionIDAdapter(registry *session.Registry, logger *slog.Logger) *sessionIDAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &sessionIDAdapter{
		registry: registry,
		logger:   logger,
	}
}

// bind attaches the transport handler subsequent requests are routed to.
// Must be called before the transport serves its first request.
func (a *sessionIDAdapter) bind(handler http.Handler) {
	a.mu.Lock()
	a.handler = handler
	a.mu.Unlock()
}

// Generate mints the session identifier and registers the session. An empty
// return is the sentinel for a failed id generation; the transport then
// leaves the session header unset and the client's next request fails
// validation cleanly.
func (a *sessionIDAdapter) Generate() string {
	id, err := session.GenerateID()
	if err != nil {
		a.logger.Error("failed to generate session id", "error", err)
		return ""
	}

	a.mu.Lock()
	a.sessionID = id
	handler := a.handler
	a.mu.Unlock()

	a.registry.Insert(session.New(id, handler))
	a.logger.Info("session created", "session_id", id)
	return id
}

// Validate reports whether the id addresses this adapter's live session.
func (a *sessionIDAdapter) Validate(sessionID string) (isTerminated bool, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.sessionID == "" || sessionID != a.sessionID {
		return false, session.ErrSessionNotFound
	}
	if a.terminated {
		return true, nil
	}
	return false, nil
}

// Terminate marks the session terminated and removes it from the registry.
// Terminating an already-terminated session is not an error.
func (a *sessionIDAdapter) Terminate(sessionID string) (isNotAllowed bool, err error) {
	a.mu.Lock()
	if a.sessionID == "" || sessionID != a.sessionID {
		a.mu.Unlock()
		return false, nil
	}
	a.terminated = true
	a.mu.Unlock()

	if a.registry.Remove(sessionID) {
		a.logger.Info("session terminated", "session_id", sessionID)
	}
	return false, nil
}
