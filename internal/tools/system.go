package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/npmgate/npmgate/internal/adapter/outbound/npm"
)

func registerSystemTools(s *server.MCPServer, client *npm.Client) {
	s.AddTool(mcp.NewTool("npm_get_health",
		mcp.WithDescription("Get Nginx Proxy Manager health status and version information."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		body, err := client.Health(ctx)
		if err != nil {
			return upstreamError(err), nil
		}
		return jsonResult(body), nil
	})

	s.AddTool(mcp.NewTool("npm_get_hosts_report",
		mcp.WithDescription("Get hosts statistics report (counts of proxy, redirection, stream, and dead hosts)."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		body, err := client.HostsReport(ctx)
		if err != nil {
			return upstreamError(err), nil
		}
		return jsonResult(body), nil
	})

	s.AddTool(mcp.NewTool("npm_list_audit_log",
		mcp.WithDescription("List audit log entries showing recent actions performed in Nginx Proxy Manager."),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of entries to return (default: all)"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		limit := request.GetInt("limit", 0)
		if limit < 0 {
			return mcp.NewToolResultError("limit must not be negative"), nil
		}
		body, err := client.AuditLog(ctx, limit)
		if err != nil {
			return upstreamError(err), nil
		}
		return jsonResult(body), nil
	})
}
