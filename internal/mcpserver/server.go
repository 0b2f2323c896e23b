package mcpserver

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"authfetch/internal/config"
	"authfetch/internal/tools"
	"authfetch/pkg/logging"

	"github.com/mark3labs/mcp-go/server"
)

const (
	serverName    = "authfetch"
	serverVersion = "1.0.0"
)

// Server exposes the fetch and echo tools over a configured MCP transport.
type Server struct {
	config  config.ServerConfig
	toolset *tools.FetchTools
	server  *server.MCPServer

	// Lifecycle management
	mu sync.Mutex
}

// NewServer creates the MCP server around a tool set.
func NewServer(cfg config.ServerConfig, toolset *tools.FetchTools) *Server {
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.Transport == "" {
		cfg.Transport = config.TransportStdio
	}

	return &Server{
		config:  cfg,
		toolset: toolset,
	}
}

// Run serves MCP over the configured transport until the context is
// cancelled (or, for stdio, until the client closes the stream).
func (s *Server) Run(ctx context.Context) error {
	mcpServer, err := s.build()
	if err != nil {
		return err
	}

	switch s.config.Transport {
	case config.TransportStdio:
		logging.Info("MCPServer", "Serving MCP over stdio")
		stdioServer := server.NewStdioServer(mcpServer)
		return stdioServer.Listen(ctx, os.Stdin, os.Stdout)

	case config.TransportSSE:
		addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
		baseURL := fmt.Sprintf("http://%s", addr)
		sseServer := server.NewSSEServer(
			mcpServer,
			server.WithBaseURL(baseURL),
			server.WithSSEEndpoint("/sse"),
			server.WithMessageEndpoint("/message"),
			server.WithKeepAlive(true),
			server.WithKeepAliveInterval(30*time.Second),
		)

		logging.Info("MCPServer", "Serving MCP over SSE on %s", baseURL+"/sse")
		return s.serveHTTP(ctx, func() error { return sseServer.Start(addr) }, sseServer.Shutdown)

	case config.TransportStreamableHTTP:
		addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
		httpServer := server.NewStreamableHTTPServer(mcpServer)

		logging.Info("MCPServer", "Serving MCP over streamable HTTP on http://%s/mcp", addr)
		return s.serveHTTP(ctx, func() error { return httpServer.Start(addr) }, httpServer.Shutdown)

	default:
		return fmt.Errorf("unknown transport %q (expected %s, %s, or %s)",
			s.config.Transport, config.TransportStdio, config.TransportSSE, config.TransportStreamableHTTP)
	}
}

// build assembles the underlying MCP server and registers capabilities.
func (s *Server) build() (*server.MCPServer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		return nil, fmt.Errorf("server already started")
	}

	mcpServer := server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
	)

	toolDefs := s.toolset.GetTools()
	for _, tool := range toolDefs {
		switch tool.Name {
		case "fetch_url":
			mcpServer.AddTool(tool, s.toolset.HandleFetchURL)
		case "echo":
			mcpServer.AddTool(tool, s.toolset.HandleEcho)
		default:
			return nil, fmt.Errorf("no handler for tool %q", tool.Name)
		}
	}

	mcpServer.AddResource(s.toolset.GetResource(), s.toolset.HandleAuthConfigResource)

	logging.Debug("MCPServer", "Registered %d tools and 1 resource", len(toolDefs))

	s.server = mcpServer
	return mcpServer, nil
}

// serveHTTP runs an HTTP-based transport in the background and shuts it down
// gracefully when the context is cancelled.
func (s *Server) serveHTTP(ctx context.Context, start func() error, shutdown func(context.Context) error) error {
	errChan := make(chan error, 1)
	go func() {
		if err := start(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("MCP server error: %w", err)
	case <-ctx.Done():
	}

	logging.Info("MCPServer", "Shutting down MCP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := shutdown(shutdownCtx); err != nil {
		logging.Error("MCPServer", err, "Error shutting down MCP server")
		return err
	}
	return nil
}
