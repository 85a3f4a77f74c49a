package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/npmgate/npmgate/internal/adapter/outbound/npm"
)

// resultText extracts the text of the first content item.
func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()

	if len(res.Content) == 0 {
		t.Fatal("result has no content")
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content[0] is %T, want mcp.TextContent", res.Content[0])
	}
	return tc.Text
}

func TestJSONResult_PrettyPrintsUpstreamBody(t *testing.T) {
	t.Parallel()

	res := jsonResult([]byte(`{"id":1,"domain_names":["a.example.com"]}`))
	if res.IsError {
		t.Error("jsonResult() marked result as error")
	}
	text := resultText(t, res)
	if !strings.Contains(text, "\n  \"id\": 1") {
		t.Errorf("jsonResult() did not indent output:\n%s", text)
	}
}

func TestJSONResult_NonJSONPassedThrough(t *testing.T) {
	t.Parallel()

	res := jsonResult([]byte("plain text"))
	if got := resultText(t, res); got != "plain text" {
		t.Errorf("jsonResult() = %q, want body unchanged", got)
	}
}

// TestUpstreamError_KeepsStatusAndBody verifies upstream failures surface
// with the original status code and body.
func TestUpstreamError_KeepsStatusAndBody(t *testing.T) {
	t.Parallel()

	res := upstreamError(&npm.APIError{Status: http.StatusForbidden, Body: `{"error":"nope"}`})
	if !res.IsError {
		t.Error("upstreamError() result not marked as error")
	}
	text := resultText(t, res)
	if !strings.Contains(text, "403") || !strings.Contains(text, `{"error":"nope"}`) {
		t.Errorf("upstreamError() = %q, want status and body", text)
	}
}

func TestValidateCreateProxyHost(t *testing.T) {
	t.Parallel()

	valid := npm.CreateProxyHostData{
		DomainNames:   []string{"app.example.com"},
		ForwardScheme: "http",
		ForwardHost:   "10.0.0.5",
		ForwardPort:   8080,
	}
	if err := validateCreateProxyHost(valid); err != nil {
		t.Errorf("validateCreateProxyHost(valid) = %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*npm.CreateProxyHostData)
	}{
		{"no domains", func(d *npm.CreateProxyHostData) { d.DomainNames = nil }},
		{"bad scheme", func(d *npm.CreateProxyHostData) { d.ForwardScheme = "ftp" }},
		{"no host", func(d *npm.CreateProxyHostData) { d.ForwardHost = "" }},
		{"port zero", func(d *npm.CreateProxyHostData) { d.ForwardPort = 0 }},
		{"port too large", func(d *npm.CreateProxyHostData) { d.ForwardPort = 70000 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			data := valid
			tc.mutate(&data)
			if err := validateCreateProxyHost(data); err == nil {
				t.Error("validateCreateProxyHost() = nil, want error")
			}
		})
	}
}

func TestRequireHostType(t *testing.T) {
	t.Parallel()

	req := mcp.CallToolRequest{}

	req.Params.Arguments = map[string]any{"type": "redirection-hosts"}
	if ht, err := requireHostType(req, false); err != nil || ht != npm.HostTypeRedirection {
		t.Errorf("requireHostType() = (%q, %v), want redirection-hosts", ht, err)
	}

	// proxy-hosts is only valid when explicitly allowed.
	req.Params.Arguments = map[string]any{"type": "proxy-hosts"}
	if _, err := requireHostType(req, false); err == nil {
		t.Error("requireHostType(proxy-hosts, allowProxy=false) = nil, want error")
	}
	if ht, err := requireHostType(req, true); err != nil || ht != npm.HostTypeProxy {
		t.Errorf("requireHostType(proxy-hosts, allowProxy=true) = (%q, %v), want proxy-hosts", ht, err)
	}

	req.Params.Arguments = map[string]any{"type": "load-balancers"}
	if _, err := requireHostType(req, true); err == nil {
		t.Error("requireHostType(load-balancers) = nil, want error")
	}

	req.Params.Arguments = map[string]any{}
	if _, err := requireHostType(req, false); err == nil {
		t.Error("requireHostType(missing) = nil, want error")
	}
}

// TestRegisterAll_ExposesAllTools verifies every tool is registered under its
// public name.
func TestRegisterAll_ExposesAllTools(t *testing.T) {
	t.Parallel()

	s := server.NewMCPServer("npmgate-test", "0.0.1", server.WithToolCapabilities(true))
	RegisterAll(s, npm.NewClient("http://127.0.0.1:1", "admin@example.com", "changeme"))

	resp := s.HandleMessage(context.Background(), json.RawMessage(
		`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	raw, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("failed to marshal tools/list response: %v", err)
	}

	want := []string{
		"npm_list_proxy_hosts", "npm_get_proxy_host", "npm_create_proxy_host",
		"npm_update_proxy_host", "npm_delete_proxy_host",
		"npm_list_hosts", "npm_get_host", "npm_create_host", "npm_delete_host",
		"npm_host_action",
		"npm_list_certificates", "npm_create_certificate", "npm_delete_certificate",
		"npm_renew_certificate",
		"npm_list_access_lists", "npm_create_access_list", "npm_delete_access_list",
		"npm_get_health", "npm_get_hosts_report", "npm_list_audit_log",
	}
	for _, name := range want {
		if !strings.Contains(string(raw), `"`+name+`"`) {
			t.Errorf("tools/list response missing %q", name)
		}
	}
}

// TestCallTool_ValidationRejectedBeforeUpstream verifies an invalid argument
// produces a tool error without contacting the upstream. The client points at
// an unroutable address, so any upstream attempt would fail differently.
func TestCallTool_ValidationRejectedBeforeUpstream(t *testing.T) {
	t.Parallel()

	s := server.NewMCPServer("npmgate-test", "0.0.1", server.WithToolCapabilities(true))
	RegisterAll(s, npm.NewClient("http://127.0.0.1:1", "admin@example.com", "changeme"))

	resp := s.HandleMessage(context.Background(), json.RawMessage(
		`{"jsonrpc":"2.0","id":2,"method":"tools/call",`+
			`"params":{"name":"npm_create_proxy_host","arguments":`+
			`{"domain_names":["a.example.com"],"forward_scheme":"http",`+
			`"forward_host":"10.0.0.5","forward_port":"not-a-number"}}}`))
	raw, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("failed to marshal tools/call response: %v", err)
	}

	if !strings.Contains(string(raw), `"isError":true`) {
		t.Errorf("tools/call response not an error result: %s", raw)
	}
	if strings.Contains(string(raw), "connection refused") {
		t.Errorf("validation failure reached the upstream: %s", raw)
	}
}
