package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/npmgate/npmgate/internal/adapter/outbound/npm"
)

func registerCertificateTools(s *server.MCPServer, client *npm.Client) {
	s.AddTool(mcp.NewTool("npm_list_certificates",
		mcp.WithDescription("List all SSL certificates managed by Nginx Proxy Manager."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		body, err := client.ListCertificates(ctx)
		if err != nil {
			return upstreamError(err), nil
		}
		return jsonResult(body), nil
	})

	s.AddTool(mcp.NewTool("npm_create_certificate",
		mcp.WithDescription("Request a new Let's Encrypt SSL certificate or add a custom certificate."),
		mcp.WithString("provider",
			mcp.Required(),
			mcp.Description("Certificate provider"),
			mcp.Enum("letsencrypt", "other"),
		),
		mcp.WithString("nice_name",
			mcp.Required(),
			mcp.Description("Friendly name for the certificate"),
		),
		mcp.WithArray("domain_names",
			mcp.Required(),
			mcp.Description("Domain names to include"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithString("letsencrypt_email", mcp.Description("Email for Let's Encrypt notifications")),
		mcp.WithBoolean("letsencrypt_agree", mcp.Description("Agree to Let's Encrypt ToS (required for letsencrypt)")),
		mcp.WithBoolean("dns_challenge", mcp.Description("Use DNS challenge instead of HTTP")),
		mcp.WithString("dns_provider", mcp.Description("DNS provider (if dns_challenge is true)")),
		mcp.WithString("dns_provider_credentials", mcp.Description("DNS provider credentials")),
		mcp.WithOpenWorldHintAnnotation(true),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			npm.CertificateMeta
			Provider    string   `json:"provider"`
			NiceName    string   `json:"nice_name"`
			DomainNames []string `json:"domain_names"`
		}
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		if args.Provider != "letsencrypt" && args.Provider != "other" {
			return mcp.NewToolResultError(`provider must be "letsencrypt" or "other"`), nil
		}
		if args.NiceName == "" {
			return mcp.NewToolResultError("nice_name is required"), nil
		}
		if len(args.DomainNames) == 0 {
			return mcp.NewToolResultError("domain_names is required and must not be empty"), nil
		}

		data := npm.CreateCertificateData{
			Provider:    args.Provider,
			NiceName:    args.NiceName,
			DomainNames: args.DomainNames,
		}
		if !args.CertificateMeta.IsZero() {
			meta := args.CertificateMeta
			data.Meta = &meta
		}

		body, err := client.CreateCertificate(ctx, data)
		if err != nil {
			return upstreamError(err), nil
		}
		return jsonResult(body), nil
	})

	s.AddTool(mcp.NewTool("npm_delete_certificate",
		mcp.WithDescription("Delete an SSL certificate."),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Certificate ID to delete"),
		),
		mcp.WithDestructiveHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireInt("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if _, err := client.DeleteCertificate(ctx, id); err != nil {
			return upstreamError(err), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Certificate %d deleted successfully.", id)), nil
	})

	s.AddTool(mcp.NewTool("npm_renew_certificate",
		mcp.WithDescription("Renew a Let's Encrypt SSL certificate."),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Certificate ID to renew"),
		),
		mcp.WithDestructiveHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireInt("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		body, err := client.RenewCertificate(ctx, id)
		if err != nil {
			return upstreamError(err), nil
		}
		return jsonResult(body), nil
	})
}
