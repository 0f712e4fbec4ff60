// Package server exposes the resolver and dispatcher as MCP tools.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/mj1618/uiloc/internal/batch"
	"github.com/mj1618/uiloc/internal/config"
	"github.com/mj1618/uiloc/internal/interact"
	"github.com/mj1618/uiloc/internal/logging"
	"github.com/mj1618/uiloc/internal/platform"
)

// Version is reported to MCP clients.
var Version = "1.0.0"

// Config holds MCP server configuration.
type Config struct {
	Transport string
	Port      int
	HandleTTL time.Duration
}

// Server wraps the MCP server with the platform provider and the handle
// registry.
type Server struct {
	dispatcher *interact.Dispatcher
	runner     *batch.Runner
	registry   *Registry
	settings   *config.Store
	logger     *slog.Logger

	// providerMu serializes tool calls; providers are not safe for
	// concurrent tree queries.
	providerMu sync.Mutex

	mcp      *mcpserver.MCPServer
	handlers map[string]mcpserver.ToolHandlerFunc
	order    []string
}

// New creates a server with every tool registered.
func New(p *platform.Provider, settings *config.Store, cfg Config, logger *slog.Logger) *Server {
	logger = logging.OrDefault(logger)
	d := interact.New(p, settings, logger)
	registry := NewRegistry(cfg.HandleTTL)
	runner := batch.New(d, logger)
	runner.Handles = registry

	s := &Server{
		dispatcher: d,
		runner:     runner,
		registry:   registry,
		settings:   settings,
		logger:     logger,
		handlers:   make(map[string]mcpserver.ToolHandlerFunc),
	}
	s.mcp = mcpserver.NewMCPServer(
		"uiloc",
		Version,
		mcpserver.WithToolCapabilities(false),
	)
	s.registerTools()
	return s
}

// Serve starts the MCP server with the configured transport.
func (s *Server) Serve(cfg Config) error {
	switch cfg.Transport {
	case "stdio":
		return mcpserver.ServeStdio(s.mcp)
	case "streamable-http":
		httpServer := mcpserver.NewStreamableHTTPServer(s.mcp)
		s.logger.Info("serving MCP over HTTP", "port", cfg.Port)
		return httpServer.Start(fmt.Sprintf(":%d", cfg.Port))
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio or streamable-http)", cfg.Transport)
	}
}

// MCP returns the underlying MCP server.
func (s *Server) MCP() *mcpserver.MCPServer {
	return s.mcp
}

// Registry returns the handle registry.
func (s *Server) Registry() *Registry {
	return s.registry
}

// Call invokes a registered tool directly.
func (s *Server) Call(ctx context.Context, name string, args map[string]any) (*mcp.CallToolResult, error) {
	h, ok := s.handlers[name]
	if !ok {
		return nil, fmt.Errorf("unknown tool %q", name)
	}
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return h(ctx, req)
}

// Tools returns the names of the registered tools in registration order.
func (s *Server) Tools() []string {
	return slices.Clone(s.order)
}

func (s *Server) addTool(tool mcp.Tool, handler mcpserver.ToolHandlerFunc) {
	if _, seen := s.handlers[tool.Name]; !seen {
		s.order = append(s.order, tool.Name)
	}
	s.handlers[tool.Name] = handler
	s.mcp.AddTool(tool, handler)
}
