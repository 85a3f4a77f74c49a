// Package tools registers the MCP tools that expose the Nginx Proxy Manager
// admin API. Every tool validates its arguments before any upstream call and
// returns upstream JSON pretty-printed as text content.
package tools

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/npmgate/npmgate/internal/adapter/outbound/npm"
)

// RegisterAll adds all Nginx Proxy Manager tools to the given MCP server.
// The client is owned by the session the server serves.
func RegisterAll(s *server.MCPServer, client *npm.Client) {
	registerProxyHostTools(s, client)
	registerHostTools(s, client)
	registerCertificateTools(s, client)
	registerAccessListTools(s, client)
	registerSystemTools(s, client)
}

// jsonResult pretty-prints an upstream JSON body as a text result.
func jsonResult(body []byte) *mcp.CallToolResult {
	var out bytes.Buffer
	if err := json.Indent(&out, body, "", "  "); err != nil {
		// Not JSON; return it as-is rather than failing the call.
		return mcp.NewToolResultText(string(body))
	}
	return mcp.NewToolResultText(out.String())
}

// upstreamError converts a client error into a tool error result. Upstream
// API errors keep their status and body; everything else is reported as a
// plain message.
func upstreamError(err error) *mcp.CallToolResult {
	var apiErr *npm.APIError
	if errors.As(err, &apiErr) {
		return mcp.NewToolResultError(fmt.Sprintf("upstream error (status %d): %s", apiErr.Status, apiErr.Body))
	}
	return mcp.NewToolResultError(err.Error())
}
