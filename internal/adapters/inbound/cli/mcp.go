package cli

import (
	mcpadapter "github.com/openkraft/buildgate/internal/adapters/inbound/mcp"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

func newMCPCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "MCP server commands",
		Long:  "Commands for running the buildgate MCP (Model Context Protocol) server.",
	}
	cmd.AddCommand(newMCPServeCmd(opts))
	return cmd
}

func newMCPServeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start buildgate MCP server (stdio)",
		Long:  "Start the buildgate MCP server using stdio transport. This allows AI coding assistants to query module plans, publication channels and license headers.",
		RunE: func(cmd *cobra.Command, args []string) error {
			s := mcpadapter.NewBuildgateMCPServer(opts.path)
			return server.ServeStdio(s)
		},
	}
}
