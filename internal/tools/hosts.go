package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/npmgate/npmgate/internal/adapter/outbound/npm"
)

// requireHostType reads and validates the "type" argument. allowProxy widens
// the accepted set to include proxy-hosts (enable/disable works on all four
// collections, the other host tools do not cover proxy hosts).
func requireHostType(request mcp.CallToolRequest, allowProxy bool) (npm.HostType, error) {
	raw, err := request.RequireString("type")
	if err != nil {
		return "", err
	}
	ht := npm.HostType(raw)
	if !ht.IsValid() || (!allowProxy && ht == npm.HostTypeProxy) {
		if allowProxy {
			return "", fmt.Errorf("type must be one of proxy-hosts, redirection-hosts, dead-hosts, streams")
		}
		return "", fmt.Errorf("type must be one of redirection-hosts, dead-hosts, streams")
	}
	return ht, nil
}

func registerHostTools(s *server.MCPServer, client *npm.Client) {
	s.AddTool(mcp.NewTool("npm_list_hosts",
		mcp.WithDescription("List hosts by type (redirection-hosts, dead-hosts, or streams)."),
		mcp.WithString("type",
			mcp.Required(),
			mcp.Description("Host type: redirection-hosts, dead-hosts, or streams"),
			mcp.Enum("redirection-hosts", "dead-hosts", "streams"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		hostType, err := requireHostType(request, false)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		body, err := client.ListHosts(ctx, hostType)
		if err != nil {
			return upstreamError(err), nil
		}
		return jsonResult(body), nil
	})

	s.AddTool(mcp.NewTool("npm_get_host",
		mcp.WithDescription("Get detailed information about a specific host (redirection, dead, or stream)."),
		mcp.WithString("type",
			mcp.Required(),
			mcp.Description("Host type: redirection-hosts, dead-hosts, or streams"),
			mcp.Enum("redirection-hosts", "dead-hosts", "streams"),
		),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Host ID"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		hostType, err := requireHostType(request, false)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		id, err := request.RequireInt("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		body, err := client.GetHost(ctx, hostType, id)
		if err != nil {
			return upstreamError(err), nil
		}
		return jsonResult(body), nil
	})

	s.AddTool(mcp.NewTool("npm_create_host",
		mcp.WithDescription("Create a new host (redirection, dead, or stream). Fields vary by type:\n"+
			"- redirection-hosts: domain_names, forward_http_code, forward_scheme, forward_domain_name\n"+
			"- dead-hosts: domain_names\n"+
			"- streams: incoming_port, forwarding_host, forwarding_port"),
		mcp.WithString("type",
			mcp.Required(),
			mcp.Description("Host type: redirection-hosts, dead-hosts, or streams"),
			mcp.Enum("redirection-hosts", "dead-hosts", "streams"),
		),
		mcp.WithObject("data",
			mcp.Required(),
			mcp.Description("Host creation data (fields depend on type)"),
		),
		mcp.WithOpenWorldHintAnnotation(true),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		hostType, err := requireHostType(request, false)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		data, ok := request.GetArguments()["data"].(map[string]any)
		if !ok || len(data) == 0 {
			return mcp.NewToolResultError("data is required and must be a non-empty object"), nil
		}
		body, err := client.CreateHost(ctx, hostType, data)
		if err != nil {
			return upstreamError(err), nil
		}
		return jsonResult(body), nil
	})

	s.AddTool(mcp.NewTool("npm_delete_host",
		mcp.WithDescription("Delete a host (redirection, dead, or stream)."),
		mcp.WithString("type",
			mcp.Required(),
			mcp.Description("Host type: redirection-hosts, dead-hosts, or streams"),
			mcp.Enum("redirection-hosts", "dead-hosts", "streams"),
		),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Host ID to delete"),
		),
		mcp.WithDestructiveHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		hostType, err := requireHostType(request, false)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		id, err := request.RequireInt("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if _, err := client.DeleteHost(ctx, hostType, id); err != nil {
			return upstreamError(err), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("%s host %d deleted successfully.", hostType, id)), nil
	})

	s.AddTool(mcp.NewTool("npm_host_action",
		mcp.WithDescription("Enable or disable a host (any type including proxy-hosts)."),
		mcp.WithString("type",
			mcp.Required(),
			mcp.Description("Host type (all types including proxy-hosts)"),
			mcp.Enum("proxy-hosts", "redirection-hosts", "dead-hosts", "streams"),
		),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Host ID"),
		),
		mcp.WithString("action",
			mcp.Required(),
			mcp.Description("Action to perform"),
			mcp.Enum("enable", "disable"),
		),
		mcp.WithDestructiveHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		hostType, err := requireHostType(request, true)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		id, err := request.RequireInt("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		action, err := request.RequireString("action")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		switch action {
		case "enable":
			_, err = client.EnableHost(ctx, hostType, id)
		case "disable":
			_, err = client.DisableHost(ctx, hostType, id)
		default:
			return mcp.NewToolResultError(`action must be "enable" or "disable"`), nil
		}
		if err != nil {
			return upstreamError(err), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("%s host %d %sd successfully.", hostType, id, action)), nil
	})
}
