package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/giantswarm/triage-eval/internal/baseline"
	"github.com/giantswarm/triage-eval/internal/pipeline"
	"github.com/giantswarm/triage-eval/internal/runner"
	"github.com/giantswarm/triage-eval/internal/server"
)

const noBaselineMessage = "No baseline found. Run run_eval with save_baseline to create one."

func handleGetBaseline(ctx context.Context, _ mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	rec, err := sc.Baseline.Load(ctx)
	if err != nil {
		if errors.Is(err, baseline.ErrNotFound) {
			return mcp.NewToolResultText(noBaselineMessage), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("failed to load baseline: %v", err)), nil
	}
	return jsonResult(rec)
}

func handleSaveBaseline(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	runID, _ := request.GetArguments()["run_id"].(string)
	path, err := resolveResultPath(sc.Config.OutputDir, runID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid run_id: %v", err)), nil
	}

	result, err := runner.ReadResult(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("run %q not found: %v", runID, err)), nil
	}

	release, err := sc.AcquireRun()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	defer release()

	rec, err := baseline.SaveResult(ctx, sc.Baseline, result)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to save baseline: %v", err)), nil
	}
	return jsonResult(rec)
}

func handleCompareToBaseline(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	outputDir := sc.Config.OutputDir

	runID, _ := request.GetArguments()["run_id"].(string)
	if runID == "" {
		ids, err := runner.ListRunIDs(outputDir)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to list runs: %v", err)), nil
		}
		if len(ids) == 0 {
			return mcp.NewToolResultError("no runs found"), nil
		}
		runID = ids[len(ids)-1]
	}

	path, err := resolveResultPath(outputDir, runID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid run_id: %v", err)), nil
	}
	result, err := runner.ReadResult(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("run %q not found: %v", runID, err)), nil
	}

	comparison, err := pipeline.CompareResult(ctx, sc.Baseline, result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if comparison == nil {
		return mcp.NewToolResultText(noBaselineMessage), nil
	}
	return jsonResult(comparison)
}
