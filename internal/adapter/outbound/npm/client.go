// Package npm provides the outbound client for the Nginx Proxy Manager
// admin REST API. The client logs in with the configured identity, caches
// the bearer token it receives, and refreshes it shortly before expiry.
package npm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	// maxResponseBodySize is the maximum response body size read from
	// upstream. Prevents OOM from an unbounded response.
	maxResponseBodySize = 10 * 1024 * 1024 // 10MB

	// tokenRefreshMargin is how long before expiry a cached token is
	// considered stale and refreshed.
	tokenRefreshMargin = 60 * time.Second
)

// APIError is a non-2xx response from the upstream API. Status and body are
// carried intact so callers can surface them verbatim.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("npm api error: status %d: %s", e.Status, e.Body)
}

// Client is an authenticated Nginx Proxy Manager API client.
// It is safe for concurrent use.
type Client struct {
	baseURL    string
	email      string
	password   string
	httpClient *http.Client
	logger     *slog.Logger

	mu           sync.Mutex
	token        string
	tokenExpires time.Time
}

// ClientOption is a functional option for configuring Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the request timeout for the HTTP client.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if c.httpClient != nil {
			c.httpClient.Timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a client for the Nginx Proxy Manager instance at baseURL.
// The email/password pair is used to mint API tokens on demand.
func NewClient(baseURL, email, password string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		email:    email,
		password: password,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// tokenResponse is the body of POST /api/tokens.
type tokenResponse struct {
	Token   string `json:"token"`
	Expires string `json:"expires"`
}

// ensureToken makes sure a usable token is cached, logging in when there is
// none or the cached one expires within tokenRefreshMargin.
func (c *Client) ensureToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now().UTC()
	if c.token != "" && now.Before(c.tokenExpires.Add(-tokenRefreshMargin)) {
		return c.token, nil
	}

	body, err := json.Marshal(map[string]string{
		"identity": c.email,
		"secret":   c.password,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/tokens", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("login request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return "", fmt.Errorf("failed to read login response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &APIError{Status: resp.StatusCode, Body: string(respBody)}
	}

	var tr tokenResponse
	if err := json.Unmarshal(respBody, &tr); err != nil {
		return "", fmt.Errorf("failed to decode login response: %w", err)
	}
	if tr.Token == "" {
		return "", fmt.Errorf("login response contained no token")
	}

	expires, err := time.Parse(time.RFC3339, tr.Expires)
	if err != nil {
		// Upstream sometimes returns a duration-less payload; fall back to
		// a conservative lifetime rather than failing the call.
		expires = now.Add(time.Hour)
	}

	c.token = tr.Token
	c.tokenExpires = expires
	c.logger.Debug("refreshed upstream api token", "expires", expires)

	return c.token, nil
}

// do performs an authenticated request against the upstream API and returns
// the raw response body. Non-2xx responses become *APIError.
func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{Status: resp.StatusCode, Body: string(respBody)}
	}

	return respBody, nil
}

// Health checks upstream reachability via the unauthenticated GET /api
// endpoint. It never touches the token cache.
func (c *Client) Health(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{Status: resp.StatusCode, Body: string(respBody)}
	}

	return respBody, nil
}

// ---- Proxy hosts ----

// ListProxyHosts returns all proxy hosts with owner, access list and
// certificate relations expanded.
func (c *Client) ListProxyHosts(ctx context.Context) ([]byte, error) {
	return c.do(ctx, http.MethodGet, "/api/nginx/proxy-hosts?expand=owner,certificate,access_list", nil)
}

// GetProxyHost returns a single proxy host by id.
func (c *Client) GetProxyHost(ctx context.Context, id int) ([]byte, error) {
	return c.do(ctx, http.MethodGet, fmt.Sprintf("/api/nginx/proxy-hosts/%d?expand=owner,certificate,access_list", id), nil)
}

// CreateProxyHost creates a proxy host.
func (c *Client) CreateProxyHost(ctx context.Context, data CreateProxyHostData) ([]byte, error) {
	return c.do(ctx, http.MethodPost, "/api/nginx/proxy-hosts", data)
}

// UpdateProxyHost applies a partial update to a proxy host.
func (c *Client) UpdateProxyHost(ctx context.Context, id int, data UpdateProxyHostData) ([]byte, error) {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/api/nginx/proxy-hosts/%d", id), data)
}

// DeleteProxyHost deletes a proxy host.
func (c *Client) DeleteProxyHost(ctx context.Context, id int) ([]byte, error) {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/nginx/proxy-hosts/%d", id), nil)
}

// ---- Generic hosts (all four collections) ----

// ListHosts returns all hosts of the given type.
func (c *Client) ListHosts(ctx context.Context, hostType HostType) ([]byte, error) {
	return c.do(ctx, http.MethodGet, fmt.Sprintf("/api/nginx/%s?expand=owner,certificate", hostType), nil)
}

// GetHost returns a single host of the given type by id.
func (c *Client) GetHost(ctx context.Context, hostType HostType, id int) ([]byte, error) {
	return c.do(ctx, http.MethodGet, fmt.Sprintf("/api/nginx/%s/%d?expand=owner,certificate", hostType, id), nil)
}

// CreateHost creates a host of the given type from a raw payload. The
// payload shape differs per collection, so it is passed through as-is.
func (c *Client) CreateHost(ctx context.Context, hostType HostType, data map[string]any) ([]byte, error) {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/api/nginx/%s", hostType), data)
}

// DeleteHost deletes a host of the given type.
func (c *Client) DeleteHost(ctx context.Context, hostType HostType, id int) ([]byte, error) {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/nginx/%s/%d", hostType, id), nil)
}

// EnableHost enables a host of the given type.
func (c *Client) EnableHost(ctx context.Context, hostType HostType, id int) ([]byte, error) {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/api/nginx/%s/%d/enable", hostType, id), nil)
}

// DisableHost disables a host of the given type.
func (c *Client) DisableHost(ctx context.Context, hostType HostType, id int) ([]byte, error) {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/api/nginx/%s/%d/disable", hostType, id), nil)
}

// ---- Certificates ----

// ListCertificates returns all certificates with owner expanded.
func (c *Client) ListCertificates(ctx context.Context) ([]byte, error) {
	return c.do(ctx, http.MethodGet, "/api/nginx/certificates?expand=owner", nil)
}

// CreateCertificate requests a new certificate.
func (c *Client) CreateCertificate(ctx context.Context, data CreateCertificateData) ([]byte, error) {
	return c.do(ctx, http.MethodPost, "/api/nginx/certificates", data)
}

// DeleteCertificate deletes a certificate.
func (c *Client) DeleteCertificate(ctx context.Context, id int) ([]byte, error) {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/nginx/certificates/%d", id), nil)
}

// RenewCertificate triggers renewal of a certificate.
func (c *Client) RenewCertificate(ctx context.Context, id int) ([]byte, error) {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/api/nginx/certificates/%d/renew", id), nil)
}

// ---- Access lists ----

// ListAccessLists returns all access lists with owner, items and clients
// expanded.
func (c *Client) ListAccessLists(ctx context.Context) ([]byte, error) {
	return c.do(ctx, http.MethodGet, "/api/nginx/access-lists?expand=owner,items,clients,proxy_hosts", nil)
}

// CreateAccessList creates an access list.
func (c *Client) CreateAccessList(ctx context.Context, data CreateAccessListData) ([]byte, error) {
	return c.do(ctx, http.MethodPost, "/api/nginx/access-lists", data)
}

// DeleteAccessList deletes an access list.
func (c *Client) DeleteAccessList(ctx context.Context, id int) ([]byte, error) {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/nginx/access-lists/%d", id), nil)
}

// ---- Reports and audit ----

// HostsReport returns per-type host counts.
func (c *Client) HostsReport(ctx context.Context) ([]byte, error) {
	return c.do(ctx, http.MethodGet, "/api/reports/hosts", nil)
}

// AuditLog returns the audit log with user relations expanded, optionally
// limited to the most recent entries.
func (c *Client) AuditLog(ctx context.Context, limit int) ([]byte, error) {
	q := url.Values{}
	q.Set("expand", "user")
	if limit > 0 {
		q.Set("limit", fmt.Sprintf("%d", limit))
	}
	return c.do(ctx, http.MethodGet, "/api/audit-log?"+q.Encode(), nil)
}
