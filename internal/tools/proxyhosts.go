package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/npmgate/npmgate/internal/adapter/outbound/npm"
)

func registerProxyHostTools(s *server.MCPServer, client *npm.Client) {
	s.AddTool(mcp.NewTool("npm_list_proxy_hosts",
		mcp.WithDescription("List all proxy hosts configured in Nginx Proxy Manager."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		body, err := client.ListProxyHosts(ctx)
		if err != nil {
			return upstreamError(err), nil
		}
		return jsonResult(body), nil
	})

	s.AddTool(mcp.NewTool("npm_get_proxy_host",
		mcp.WithDescription("Get detailed information about a specific proxy host."),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Proxy host ID"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireInt("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		body, err := client.GetProxyHost(ctx, id)
		if err != nil {
			return upstreamError(err), nil
		}
		return jsonResult(body), nil
	})

	s.AddTool(mcp.NewTool("npm_create_proxy_host",
		mcp.WithDescription("Create a new proxy host. Required: domain_names, forward_scheme, forward_host, forward_port."),
		mcp.WithArray("domain_names",
			mcp.Required(),
			mcp.Description(`Domain names (e.g. ["app.example.com"])`),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithString("forward_scheme",
			mcp.Required(),
			mcp.Description("Forward scheme"),
			mcp.Enum("http", "https"),
		),
		mcp.WithString("forward_host",
			mcp.Required(),
			mcp.Description("Forward host (IP or hostname)"),
		),
		mcp.WithNumber("forward_port",
			mcp.Required(),
			mcp.Description("Forward port"),
		),
		mcp.WithNumber("certificate_id", mcp.Description("SSL certificate ID (0 for none)")),
		mcp.WithBoolean("ssl_forced", mcp.Description("Force SSL")),
		mcp.WithBoolean("hsts_enabled", mcp.Description("Enable HSTS")),
		mcp.WithBoolean("http2_support", mcp.Description("Enable HTTP/2")),
		mcp.WithBoolean("block_exploits", mcp.Description("Block common exploits")),
		mcp.WithBoolean("caching_enabled", mcp.Description("Enable caching")),
		mcp.WithBoolean("allow_websocket_upgrade", mcp.Description("Allow WebSocket upgrade")),
		mcp.WithNumber("access_list_id", mcp.Description("Access list ID (0 for none)")),
		mcp.WithString("advanced_config", mcp.Description("Custom Nginx configuration")),
		mcp.WithOpenWorldHintAnnotation(true),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var data npm.CreateProxyHostData
		if err := request.BindArguments(&data); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		if err := validateCreateProxyHost(data); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		body, err := client.CreateProxyHost(ctx, data)
		if err != nil {
			return upstreamError(err), nil
		}
		return jsonResult(body), nil
	})

	s.AddTool(mcp.NewTool("npm_update_proxy_host",
		mcp.WithDescription("Update an existing proxy host."),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Proxy host ID"),
		),
		mcp.WithArray("domain_names",
			mcp.Description("Domain names"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithString("forward_scheme",
			mcp.Description("Forward scheme"),
			mcp.Enum("http", "https"),
		),
		mcp.WithString("forward_host", mcp.Description("Forward host")),
		mcp.WithNumber("forward_port", mcp.Description("Forward port")),
		mcp.WithNumber("certificate_id", mcp.Description("SSL certificate ID")),
		mcp.WithBoolean("ssl_forced", mcp.Description("Force SSL")),
		mcp.WithBoolean("hsts_enabled", mcp.Description("Enable HSTS")),
		mcp.WithBoolean("http2_support", mcp.Description("Enable HTTP/2")),
		mcp.WithBoolean("block_exploits", mcp.Description("Block common exploits")),
		mcp.WithBoolean("caching_enabled", mcp.Description("Enable caching")),
		mcp.WithBoolean("allow_websocket_upgrade", mcp.Description("Allow WebSocket upgrade")),
		mcp.WithNumber("access_list_id", mcp.Description("Access list ID")),
		mcp.WithString("advanced_config", mcp.Description("Custom Nginx configuration")),
		mcp.WithOpenWorldHintAnnotation(true),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireInt("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		var data npm.UpdateProxyHostData
		if err := request.BindArguments(&data); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		body, err := client.UpdateProxyHost(ctx, id, data)
		if err != nil {
			return upstreamError(err), nil
		}
		return jsonResult(body), nil
	})

	s.AddTool(mcp.NewTool("npm_delete_proxy_host",
		mcp.WithDescription("Delete a proxy host."),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Proxy host ID to delete"),
		),
		mcp.WithDestructiveHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireInt("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if _, err := client.DeleteProxyHost(ctx, id); err != nil {
			return upstreamError(err), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Proxy host %d deleted successfully.", id)), nil
	})
}

// validateCreateProxyHost enforces the required creation fields before any
// upstream request is made.
func validateCreateProxyHost(data npm.CreateProxyHostData) error {
	if len(data.DomainNames) == 0 {
		return fmt.Errorf("domain_names is required and must not be empty")
	}
	if data.ForwardScheme != "http" && data.ForwardScheme != "https" {
		return fmt.Errorf("forward_scheme must be %q or %q", "http", "https")
	}
	if data.ForwardHost == "" {
		return fmt.Errorf("forward_host is required")
	}
	if data.ForwardPort < 1 || data.ForwardPort > 65535 {
		return fmt.Errorf("forward_port must be between 1 and 65535")
	}
	return nil
}
