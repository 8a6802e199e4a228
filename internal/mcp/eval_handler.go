package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/giantswarm/triage-eval/internal/fixtures"
	"github.com/giantswarm/triage-eval/internal/pipeline"
	"github.com/giantswarm/triage-eval/internal/runner"
	"github.com/giantswarm/triage-eval/internal/server"
)

func handleListFixtureSets(_ context.Context, _ mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	summaries, err := fixtures.Summaries(sc.Config.FixturesDir)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list fixture sets: %v", err)), nil
	}
	return jsonResult(summaries)
}

func handleRunEval(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	if sc.LLMClient == nil {
		return mcp.NewToolResultError("LLM client is not configured"), nil
	}

	args := request.GetArguments()
	cfg := *sc.Config

	if model, ok := args["model"].(string); ok && model != "" {
		cfg.Model = model
	}
	if name, ok := args["fixture_set"].(string); ok && name != "" {
		cfg.FixtureSet = name
		cfg.CasesFile = ""
	}
	if casesFile, ok := args["cases_file"].(string); ok && casesFile != "" {
		path, err := resolveCasesFilePath(cfg.FixturesDir, casesFile)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid cases_file: %v", err)), nil
		}
		cfg.CasesFile = path
	}

	set, err := fixtures.Resolve(cfg.CasesFile, cfg.FixtureSet, cfg.FixturesDir)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load cases: %v", err)), nil
	}

	release, err := sc.AcquireRun()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	defer release()

	opts := pipeline.NewOptions(&cfg, set)
	opts.SaveBaseline, _ = args["save_baseline"].(bool)
	opts.Recorder = sc.Recorder

	slog.Info("starting evaluation via MCP", "set", set.Name, "model", cfg.Model, "cases", len(set.Cases))

	out, err := pipeline.Run(ctx, sc.LLMClient, sc.Baseline, opts)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("evaluation failed: %v", err)), nil
	}
	return jsonResult(out)
}

func handleGetResults(_ context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	runID, _ := args["run_id"].(string)

	if runID != "" {
		return getRun(sc.Config.OutputDir, runID)
	}
	return listRuns(sc.Config.OutputDir)
}

func listRuns(outputDir string) (*mcp.CallToolResult, error) {
	ids, err := runner.ListRunIDs(outputDir)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list runs: %v", err)), nil
	}

	summaries := []runner.Summary{}
	for _, id := range ids {
		result, err := runner.ReadResult(runner.ResultPath(outputDir, id))
		if err != nil {
			slog.Warn("skipping unreadable run result", "run_id", id, "error", err)
			continue
		}
		summaries = append(summaries, result.Summary)
	}
	return jsonResult(summaries)
}

func getRun(outputDir, runID string) (*mcp.CallToolResult, error) {
	path, err := resolveResultPath(outputDir, runID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid run_id: %v", err)), nil
	}

	result, err := runner.ReadResult(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("run %q not found: %v", runID, err)), nil
	}
	return jsonResult(result)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
