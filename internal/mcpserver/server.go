package mcpserver

import (
	"context"
	"fmt"
	"log"

	"github.com/mark3labs/mcp-go/server"

	"github.com/localizers/tmatch/internal/config"
	"github.com/localizers/tmatch/internal/engine"
	"github.com/localizers/tmatch/internal/watcher"
)

const (
	// ServerName is the MCP server name
	ServerName = "tmatch"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with the suggestion engine and the
// document watcher.
type Server struct {
	mcp    *server.MCPServer
	engine *engine.Engine
	watch  *watcher.DocumentWatcher
}

// NewServer creates a new MCP server instance over the given
// configuration.
func NewServer(cfg config.Config) (*Server, error) {
	eng, err := engine.New(cfg, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize engine: %w", err)
	}

	s := &Server{
		mcp: server.NewMCPServer(
			ServerName,
			ServerVersion,
		),
		engine: eng,
	}

	// Reload the open document when it changes on disk
	s.watch, err = watcher.New(cfg.DebounceMs, s.onDocumentChanged)
	if err != nil {
		_ = eng.Close()
		return nil, fmt.Errorf("failed to initialize watcher: %w", err)
	}

	s.registerTools()
	return s, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown.
func (s *Server) Serve(ctx context.Context) error {
	defer s.close()
	return server.ServeStdio(s.mcp)
}

func (s *Server) close() {
	if err := s.watch.Close(); err != nil {
		log.Printf("mcpserver: closing watcher: %v", err)
	}
	if err := s.engine.Close(); err != nil {
		log.Printf("mcpserver: closing engine: %v", err)
	}
}

// onDocumentChanged re-indexes the open document after an external edit.
func (s *Server) onDocumentChanged(path string) {
	if err := s.engine.OnDocumentLoaded(path); err != nil {
		log.Printf("mcpserver: reloading %s: %v", path, err)
	}
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(openDocumentTool(), s.handleOpenDocument)
	s.mcp.AddTool(closeDocumentTool(), s.handleCloseDocument)
	s.mcp.AddTool(queryTool(), s.handleQuery)
	s.mcp.AddTool(selectMatchTool(), s.handleSelectMatch)
	s.mcp.AddTool(pushTool(), s.handlePush)
	s.mcp.AddTool(statusTool(), s.handleStatus)
}
