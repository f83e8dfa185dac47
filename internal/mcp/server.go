// Package mcp exposes guild administration tools over the Model Context
// Protocol so an admin's assistant can inspect the bot's configuration.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/guildkeeper/guildkeeper/internal/statsdb"
	"github.com/guildkeeper/guildkeeper/internal/store"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server over the bot's persisted state.
type Server struct {
	store *store.Store
	stats *statsdb.DB
	mcp   *server.MCPServer
}

// NewServer creates the MCP server. stats may be nil if the statistics
// database is unavailable.
func NewServer(st *store.Store, stats *statsdb.DB) *Server {
	s := &Server{store: st, stats: stats}

	s.mcp = server.NewMCPServer(
		"guildkeeper",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers.
func (s *Server) registerTools() {
	s.mcp.AddTool(listGuildsTool, s.handleListGuilds)
	s.mcp.AddTool(listRulesTool, s.handleListRules)
	s.mcp.AddTool(guildStatsTool, s.handleGuildStats)
	s.mcp.AddTool(auditLogTool, s.handleAuditLog)
}

// Serve starts the MCP server on stdio. Stdout carries MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
