package mcp

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/codemunch/internal/config"
)

// Server manages the MCP server lifecycle over stdio.
type Server struct {
	service *Service
	mcp     *server.MCPServer
}

// NewServer creates an MCP server exposing the code index tools.
func NewServer(cfg *config.Config, version string) (*Server, error) {
	service, err := NewService(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}

	mcpServer := server.NewMCPServer(
		"codemunch",
		version,
		server.WithToolCapabilities(true),
	)
	RegisterTools(mcpServer, service)

	return &Server{service: service, mcp: mcpServer}, nil
}

// Serve starts the stdio server and blocks until shutdown.
func (s *Server) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting MCP server on stdio...")
		if err := server.ServeStdio(s.mcp); err != nil {
			errCh <- fmt.Errorf("MCP server error: %w", err)
		}
	}()

	select {
	case <-sigCh:
		log.Printf("Received shutdown signal, stopping gracefully...")
		return nil
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close releases all resources.
func (s *Server) Close() error {
	return s.service.Close()
}
