package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/openkraft/buildgate/internal/adapters/outbound/config"
	"github.com/openkraft/buildgate/internal/adapters/outbound/history"
	"github.com/openkraft/buildgate/internal/adapters/outbound/license"
	"github.com/openkraft/buildgate/internal/adapters/outbound/scanner"
	"github.com/openkraft/buildgate/internal/application"
	"github.com/openkraft/buildgate/internal/domain"
)

// registerTools registers all buildgate MCP tools on the given server.
func registerTools(s *server.MCPServer, projectPath string) {
	// 1. buildgate_resolve_channel
	s.AddTool(
		mcplib.NewTool("buildgate_resolve_channel",
			mcplib.WithDescription("Returns the publication channel (snapshot or release) for a version string"),
			mcplib.WithString("version",
				mcplib.Required(),
				mcplib.Description("Version to classify, e.g. 2.0.0-SNAPSHOT"),
			),
		),
		handleResolveChannel(),
	)

	// 2. buildgate_plan
	s.AddTool(
		mcplib.NewTool("buildgate_plan",
			mcplib.WithDescription("Returns the configured policy of every module: coordinates, language levels, compile arguments, bundles and quality gates"),
			mcplib.WithBoolean("ci", mcplib.Description("Plan the CI gate list (no license auto-fix)")),
		),
		handlePlan(projectPath),
	)

	// 3. buildgate_check_license
	s.AddTool(
		mcplib.NewTool("buildgate_check_license",
			mcplib.WithDescription("Lists source files whose license header does not match the workspace template"),
			mcplib.WithString("modules", mcplib.Description("Comma-separated module names (default: all)")),
		),
		handleCheckLicense(projectPath),
	)

	// 4. buildgate_history
	s.AddTool(
		mcplib.NewTool("buildgate_history",
			mcplib.WithDescription("Returns the recorded runs of the workspace, oldest first"),
		),
		handleHistory(projectPath),
	)
}

func newWorkspaceService() *application.WorkspaceService {
	return application.NewWorkspaceService(config.New(), scanner.New())
}

func handleResolveChannel() server.ToolHandlerFunc {
	return func(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		version, err := request.RequireString("version")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		return jsonResult(map[string]any{
			"version": version,
			"channel": domain.ResolveChannel(version),
		})
	}
}

type planResult struct {
	Workspace domain.WorkspaceConfig      `json:"workspace"`
	Channel   domain.Channel              `json:"channel"`
	Modules   []modulePlan                `json:"modules"`
	Coverage  domain.CoverageReportPolicy `json:"coverage"`
}

type modulePlan struct {
	Policy domain.ModulePolicy      `json:"policy"`
	Gate   domain.QualityGatePolicy `json:"gate"`
}

func buildPlan(projectPath string, ci bool) (*planResult, error) {
	ws, err := newWorkspaceService().Load(projectPath)
	if err != nil {
		return nil, err
	}
	plan := &planResult{
		Workspace: ws.Config,
		Channel:   ws.Config.Channel(),
		Modules:   make([]modulePlan, 0, len(ws.Policies)),
		Coverage:  ws.CoveragePolicy(),
	}
	for _, p := range ws.Policies {
		plan.Modules = append(plan.Modules, modulePlan{Policy: p, Gate: ws.GatePolicy(p, ci)})
	}
	return plan, nil
}

func handlePlan(projectPath string) server.ToolHandlerFunc {
	return func(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		ci, _ := request.GetArguments()["ci"].(bool)
		plan, err := buildPlan(projectPath, ci)
		if err != nil {
			return errorResult(fmt.Sprintf("loading workspace failed: %v", err)), nil
		}
		return jsonResult(plan)
	}
}

func handleCheckLicense(projectPath string) server.ToolHandlerFunc {
	return func(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		modulesStr, _ := request.GetArguments()["modules"].(string)

		svc := application.NewLicenseService(newWorkspaceService(), func(ws *application.Workspace) (domain.HeaderEngine, error) {
			return license.Load(ws.HeaderPath(), ws.File.License.Year, ws.File.License.Style)
		})
		violations, err := svc.Check(projectPath, splitCSV(modulesStr))
		if err != nil {
			return errorResult(fmt.Sprintf("license check failed: %v", err)), nil
		}
		if violations == nil {
			violations = []domain.Violation{}
		}
		return jsonResult(map[string]any{
			"passed":     len(violations) == 0,
			"violations": violations,
		})
	}
}

func handleHistory(projectPath string) server.ToolHandlerFunc {
	return func(_ context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		root, err := filepath.Abs(projectPath)
		if err != nil {
			return errorResult(err.Error()), nil
		}
		entries, err := history.New().Load(root)
		if err != nil {
			return errorResult(fmt.Sprintf("reading history failed: %v", err)), nil
		}
		if entries == nil {
			entries = []domain.RunEntry{}
		}
		return jsonResult(entries)
	}
}

// splitCSV splits a comma-separated string into trimmed, non-empty parts.
func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	var result []string
	for _, p := range strings.Split(s, ",") {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// jsonResult marshals v to JSON and returns it as a text content result.
func jsonResult(v interface{}) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

// errorResult returns a tool result that indicates an error occurred.
func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}
