package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// registerResources registers all buildgate MCP resources on the given server.
func registerResources(s *server.MCPServer, projectPath string) {
	// 1. buildgate://plan - every module's policy
	s.AddResource(
		mcplib.NewResource(
			"buildgate://plan",
			"Workspace Plan",
			mcplib.WithResourceDescription("Configured policy of every module in the workspace"),
			mcplib.WithMIMEType("application/json"),
		),
		handlePlanResource(projectPath),
	)

	// 2. buildgate://modules/{name} - one module's policy
	s.AddResourceTemplate(
		mcplib.NewResourceTemplate(
			"buildgate://modules/{name}",
			"Module Policy",
			mcplib.WithTemplateDescription("Configured policy and gate list of a single module"),
			mcplib.WithTemplateMIMEType("application/json"),
		),
		handleModuleResource(projectPath),
	)
}

func handlePlanResource(projectPath string) server.ResourceHandlerFunc {
	return func(_ context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		plan, err := buildPlan(projectPath, false)
		if err != nil {
			return nil, fmt.Errorf("loading workspace failed: %w", err)
		}
		return jsonContents("buildgate://plan", plan)
	}
}

func handleModuleResource(projectPath string) server.ResourceTemplateHandlerFunc {
	return func(_ context.Context, request mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		moduleName, ok := request.Params.Arguments["name"].(string)
		if !ok || moduleName == "" {
			return nil, fmt.Errorf("module name is required")
		}

		plan, err := buildPlan(projectPath, false)
		if err != nil {
			return nil, fmt.Errorf("loading workspace failed: %w", err)
		}
		for _, m := range plan.Modules {
			if m.Policy.Module == moduleName {
				return jsonContents(request.Params.URI, m)
			}
		}
		return nil, fmt.Errorf("unknown module %q", moduleName)
	}
}

func jsonContents(uri string, v any) ([]mcplib.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling %s: %w", uri, err)
	}
	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
