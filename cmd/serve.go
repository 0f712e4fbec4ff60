package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mj1618/uiloc/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start an MCP server exposing uiloc tools",
	Long: `Start a Model Context Protocol (MCP) server that exposes find and
interaction tools. find and find_many return handle ids that later calls pass
as ref or root.

Supported transports:
  stdio             Standard I/O (default, for MCP clients)
  streamable-http   Streamable HTTP transport (for remote agents)

Examples:
  uiloc serve
  uiloc serve --transport streamable-http --port 8080
  uiloc serve --handle-ttl 0`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("transport", "stdio", "Transport: stdio, streamable-http")
	serveCmd.Flags().Int("port", 8080, "HTTP port for streamable-http transport")
	serveCmd.Flags().Duration("handle-ttl", 10*time.Minute, "Forget handles unused for this long (0 to keep them)")
}

func runServe(cmd *cobra.Command, args []string) error {
	transport, _ := cmd.Flags().GetString("transport")
	port, _ := cmd.Flags().GetInt("port")
	ttl, _ := cmd.Flags().GetDuration("handle-ttl")

	cfg := server.Config{
		Transport: transport,
		Port:      port,
		HandleTTL: ttl,
	}

	p, err := newProvider()
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	server.Version = version
	return server.New(p, settings, cfg, logger).Serve(cfg)
}
