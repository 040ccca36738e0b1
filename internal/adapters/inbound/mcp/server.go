package mcp

import (
	"github.com/mark3labs/mcp-go/server"
)

// NewBuildgateMCPServer creates an MCP server exposing the workspace at
// projectPath: channel resolution, module plans, license checks and run
// history.
func NewBuildgateMCPServer(projectPath string) *server.MCPServer {
	s := server.NewMCPServer(
		"buildgate",
		"0.1.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	registerTools(s, projectPath)
	registerResources(s, projectPath)

	return s
}
