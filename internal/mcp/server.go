package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/ziadkadry99/flinsight/internal/compliance"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes regulation search and chat tools.
type Server struct {
	svc *compliance.Service
	mcp *server.MCPServer
}

// NewServer creates a new MCP server backed by svc.
func NewServer(svc *compliance.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"flinsight",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(searchRegulationsTool, s.handleSearchRegulations)
	s.mcp.AddTool(askRegulationsTool, s.handleAskRegulations)
	s.mcp.AddTool(listRegulationsTool, s.handleListRegulations)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
