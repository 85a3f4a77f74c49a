package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	httptransport "github.com/npmgate/npmgate/internal/adapter/inbound/http"
	"github.com/npmgate/npmgate/internal/adapter/outbound/npm"
	"github.com/npmgate/npmgate/internal/config"
	"github.com/npmgate/npmgate/internal/domain/token"
	"github.com/npmgate/npmgate/internal/tools"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP gateway server",
	Long: `Start the npmgate server.

The server exposes:
  /mcp                                     MCP streamable HTTP endpoint
  /.well-known/oauth-authorization-server  OAuth metadata
  /authorize, /oauth/token                 OAuth endpoints
  /health, /metrics                        operational endpoints

Each MCP session gets its own tool server and its own upstream API client.

Examples:
  # Start with config file settings
  npmgate serve

  # Start against a specific Nginx Proxy Manager instance
  NPMGATE_NPM_URL=http://10.0.0.2:81 NPMGATE_NPM_PASSWORD=secret npmgate serve

  # Start with a specific config file
  npmgate --config /path/to/npmgate.yaml serve`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// stop() restores default signal handling so a second Ctrl+C does a
	// hard kill.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		stop()
	}()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Server.LogLevel),
	}))

	if configFile := config.ConfigFileUsed(); configFile != "" {
		logger.Info("loaded config", "file", configFile)
	}
	if cfg.OpenMode() {
		logger.Warn("no api key or oauth client configured, MCP endpoint is unauthenticated")
	}

	// Expired codes and tokens are purged in the background for the whole
	// server lifetime.
	codes := token.NewCodeStoreWithInterval(cfg.SweepInterval(), logger)
	tokens := token.NewTokenStoreWithInterval(cfg.SweepInterval(), logger)
	codes.StartSweep(ctx)
	tokens.StartSweep(ctx)
	defer codes.Stop()
	defer tokens.Stop()

	// Each session gets its own MCP server and its own upstream client, so
	// upstream token caches are never shared between clients.
	factory := func() *server.MCPServer {
		client := npm.NewClient(cfg.NPM.URL, cfg.NPM.Email, cfg.NPM.Password,
			npm.WithLogger(logger))
		s := server.NewMCPServer("npmgate", Version,
			server.WithToolCapabilities(true),
		)
		tools.RegisterAll(s, client)
		return s
	}

	transport := httptransport.NewTransport(codes, tokens, factory,
		httptransport.WithAddr(cfg.Server.HTTPAddr),
		httptransport.WithAPIKey(cfg.Auth.APIKey),
		httptransport.WithOAuthClient(cfg.Auth.OAuthClientID, cfg.Auth.OAuthClientSecret),
		httptransport.WithLogger(logger),
	)

	logger.Info("starting npmgate",
		"addr", cfg.Server.HTTPAddr,
		"npm_url", cfg.NPM.URL,
		"oauth_enabled", cfg.OAuthEnabled(),
	)

	if err := transport.Start(ctx); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	logger.Info("npmgate stopped")
	return nil
}

// parseLogLevel maps the configured level string to a slog level.
// Unknown values fall back to info.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
