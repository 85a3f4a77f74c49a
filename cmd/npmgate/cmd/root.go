// Package cmd provides the CLI commands for npmgate.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/npmgate/npmgate/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "npmgate",
	Short: "npmgate - MCP gateway for Nginx Proxy Manager",
	Long: `npmgate exposes the Nginx Proxy Manager admin API as MCP tools.

It serves the MCP streamable HTTP transport with per-client sessions and
gates access behind a static API key and/or an embedded OAuth 2.0
authorization server (authorization_code and client_credentials grants).

Quick start:
  1. Create a config file: npmgate.yaml
  2. Run: npmgate serve

Configuration:
  Config is loaded from npmgate.yaml in the current directory,
  $HOME/.npmgate/, or /etc/npmgate/.

  Environment variables can override config values with the NPMGATE_ prefix.
  Example: NPMGATE_SERVER_HTTP_ADDR=:9090

Commands:
  serve       Start the MCP gateway server
  version     Print version information`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./npmgate.yaml)")
}

func initConfig() {
	config.InitViper(cfgFile)
}
