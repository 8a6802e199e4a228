package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/giantswarm/triage-eval/internal/server"
)

// RegisterTools registers all MCP tools with the server.
func RegisterTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	registerEvalTools(s, sc)
	registerBaselineTools(s, sc)
	return nil
}

func registerEvalTools(s *mcpserver.MCPServer, sc *server.ServerContext) {
	// list_fixture_sets
	listTool := mcp.NewTool("list_fixture_sets",
		mcp.WithDescription("List available triage fixture sets with their case counts"),
	)
	s.AddTool(listTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleListFixtureSets(ctx, request, sc)
	})

	// run_eval
	runTool := mcp.NewTool("run_eval",
		mcp.WithDescription("Run the triage agent over a fixture set, score every case and compare against the baseline. Only one run executes at a time."),
		mcp.WithString("fixture_set",
			mcp.Description("Name of the fixture set to run (default: from config, e.g. 'ap-triage')"),
		),
		mcp.WithString("cases_file",
			mcp.Description("JSONL cases file inside the fixtures directory (overrides fixture_set)"),
		),
		mcp.WithString("model",
			mcp.Description("Model to evaluate (default: from config)"),
		),
		mcp.WithBoolean("save_baseline",
			mcp.Description("Save this run as the new baseline instead of comparing against it"),
		),
	)
	s.AddTool(runTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleRunEval(ctx, request, sc)
	})

	// get_results
	getResultsTool := mcp.NewTool("get_results",
		mcp.WithDescription("Retrieve past evaluation runs"),
		mcp.WithString("run_id",
			mcp.Description("Specific run ID to retrieve (optional, lists all if omitted)"),
		),
	)
	s.AddTool(getResultsTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleGetResults(ctx, request, sc)
	})
}

func registerBaselineTools(s *mcpserver.MCPServer, sc *server.ServerContext) {
	// get_baseline
	getTool := mcp.NewTool("get_baseline",
		mcp.WithDescription("Show the stored baseline metrics"),
	)
	s.AddTool(getTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleGetBaseline(ctx, request, sc)
	})

	// save_baseline
	saveTool := mcp.NewTool("save_baseline",
		mcp.WithDescription("Replace the baseline with the metrics of a past run"),
		mcp.WithString("run_id",
			mcp.Required(),
			mcp.Description("Run ID to promote to baseline"),
		),
	)
	s.AddTool(saveTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleSaveBaseline(ctx, request, sc)
	})

	// compare_to_baseline
	compareTool := mcp.NewTool("compare_to_baseline",
		mcp.WithDescription("Compare a past run against the baseline and list regressions"),
		mcp.WithString("run_id",
			mcp.Description("Run ID to compare (default: latest run)"),
		),
	)
	s.AddTool(compareTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleCompareToBaseline(ctx, request, sc)
	})
}
