package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/npmgate/npmgate/internal/adapter/outbound/npm"
)

func registerAccessListTools(s *server.MCPServer, client *npm.Client) {
	s.AddTool(mcp.NewTool("npm_list_access_lists",
		mcp.WithDescription("List all access control lists."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		body, err := client.ListAccessLists(ctx)
		if err != nil {
			return upstreamError(err), nil
		}
		return jsonResult(body), nil
	})

	s.AddTool(mcp.NewTool("npm_create_access_list",
		mcp.WithDescription("Create a new access control list with optional username/password items and IP-based client rules."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Access list name"),
		),
		mcp.WithBoolean("satisfy_any", mcp.Description("Allow access if ANY rule matches (default: all must match)")),
		mcp.WithBoolean("pass_auth", mcp.Description("Pass basic auth to upstream server")),
		mcp.WithArray("items",
			mcp.Description("Username/password credentials"),
			mcp.Items(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"username": map[string]any{"type": "string", "description": "Username"},
					"password": map[string]any{"type": "string", "description": "Password"},
				},
				"required": []string{"username", "password"},
			}),
		),
		mcp.WithArray("clients",
			mcp.Description("IP-based access rules"),
			mcp.Items(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"address":   map[string]any{"type": "string", "description": "IP address or CIDR"},
					"directive": map[string]any{"type": "string", "enum": []string{"allow", "deny"}, "description": "Allow or deny"},
				},
				"required": []string{"address", "directive"},
			}),
		),
		mcp.WithOpenWorldHintAnnotation(true),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var data npm.CreateAccessListData
		if err := request.BindArguments(&data); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		if data.Name == "" {
			return mcp.NewToolResultError("name is required"), nil
		}
		for i, cl := range data.Clients {
			if cl.Directive != "allow" && cl.Directive != "deny" {
				return mcp.NewToolResultError(fmt.Sprintf(`clients[%d].directive must be "allow" or "deny"`, i)), nil
			}
		}

		body, err := client.CreateAccessList(ctx, data)
		if err != nil {
			return upstreamError(err), nil
		}
		return jsonResult(body), nil
	})

	s.AddTool(mcp.NewTool("npm_delete_access_list",
		mcp.WithDescription("Delete an access control list."),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Access list ID to delete"),
		),
		mcp.WithDestructiveHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireInt("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if _, err := client.DeleteAccessList(ctx, id); err != nil {
			return upstreamError(err), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Access list %d deleted successfully.", id)), nil
	})
}
