// Package http provides the inbound HTTP transport: the OAuth endpoints, the
// authenticated multi-session /mcp endpoint, and the health and metrics
// surfaces.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/npmgate/npmgate/internal/domain/session"
	"github.com/npmgate/npmgate/internal/domain/token"
	"github.com/npmgate/npmgate/internal/oauth"
)

// Transport is the inbound adapter binding everything to one listen address.
type Transport struct {
	addr         string
	apiKey       string
	clientID     string
	clientSecret string
	logger       *slog.Logger

	codes   *token.CodeStore
	tokens  *token.TokenStore
	factory MCPServerFactory

	server   *http.Server
	registry *session.Registry
	metrics  *Metrics
}

// Option is a functional option for configuring Transport.
type Option func(*Transport)

// WithAddr sets the listen address. Default is ":3000".
func WithAddr(addr string) Option {
	return func(t *Transport) {
		t.addr = addr
	}
}

// WithAPIKey sets the static shared secret accepted as a bearer token.
// Empty disables the static key.
func WithAPIKey(apiKey string) Option {
	return func(t *Transport) {
		t.apiKey = apiKey
	}
}

// WithOAuthClient sets the single OAuth client credential pair. An empty id
// disables the OAuth grants.
func WithOAuthClient(clientID, clientSecret string) Option {
	return func(t *Transport) {
		t.clientID = clientID
		t.clientSecret = clientSecret
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Transport) {
		t.logger = logger
	}
}

// NewTransport creates the HTTP transport. The stores back the embedded
// authorization server; the factory builds one MCP server per session.
func NewTransport(codes *token.CodeStore, tokens *token.TokenStore, factory MCPServerFactory, opts ...Option) *Transport {
	t := &Transport{
		addr:    ":3000",
		codes:   codes,
		tokens:  tokens,
		factory: factory,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Start begins accepting HTTP connections. It blocks until the context is
// cancelled or the listener fails.
func (t *Transport) Start(ctx context.Context) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	t.metrics = NewMetrics(reg)

	t.registry = session.NewRegistry(func(count int) {
		t.metrics.ActiveSessions.Set(float64(count))
	})

	oauthServer := oauth.NewServer(t.clientID, t.clientSecret, t.codes, t.tokens,
		oauth.WithLogger(t.logger),
		oauth.WithTokenIssuedHook(func(grantType string) {
			t.metrics.OAuthTokensIssued.WithLabelValues(grantType).Inc()
		}),
	)

	// Middleware chain for /mcp (outermost first):
	// 1. MetricsMiddleware - duration and status for every MCP request
	// 2. RequestIDMiddleware - request id + enriched logger in context
	// 3. RequireAuth - bearer gate (static key or minted token)
	// 4. Router - session multiplexing
	oauthEnabled := t.clientID != ""
	var mcpHandler http.Handler = NewRouter(t.registry, t.factory, t.logger)
	mcpHandler = oauth.RequireAuth(t.apiKey, oauthEnabled, t.tokens, func(reason string) {
		t.metrics.AuthFailures.WithLabelValues(reason).Inc()
	})(mcpHandler)
	mcpHandler = RequestIDMiddleware(t.logger)(mcpHandler)
	mcpHandler = MetricsMiddleware(t.metrics)(mcpHandler)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /.well-known/oauth-authorization-server", oauthServer.HandleMetadata)
	mux.HandleFunc("GET /authorize", oauthServer.HandleAuthorize)
	mux.HandleFunc("POST /oauth/token", oauthServer.HandleToken)
	mux.Handle("GET /health", healthHandler(t.registry))
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{
		Registry: reg,
	}))
	mux.Handle("/mcp", mcpHandler)

	t.server = &http.Server{
		Addr:    t.addr,
		Handler: mux,
	}

	errCh := make(chan error, 1)
	go func() {
		t.logger.Info("starting HTTP server", "addr", t.addr)
		if err := t.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		t.logger.Info("context cancelled, shutting down HTTP server")
		return t.shutdown()
	case err := <-errCh:
		return err
	}
}

// shutdown performs graceful shutdown of the HTTP server.
func (t *Transport) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Drop sessions first so late requests get a clean "not found" instead
	// of hitting a transport mid-teardown.
	t.registry.Clear()

	if err := t.server.Shutdown(ctx); err != nil {
		t.logger.Error("error during server shutdown", "error", err)
		return err
	}

	t.logger.Info("HTTP server shutdown complete")
	return nil
}
