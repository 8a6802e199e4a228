package server

import (
	"errors"
	"sync"

	"github.com/giantswarm/triage-eval/internal/baseline"
	"github.com/giantswarm/triage-eval/internal/config"
	"github.com/giantswarm/triage-eval/internal/llm"
	"github.com/giantswarm/triage-eval/internal/metrics"
)

// ErrRunInProgress is returned when an evaluation is requested while
// another one is still running.
var ErrRunInProgress = errors.New("an evaluation run is already in progress")

// ServerContext holds shared dependencies for MCP tool handlers.
type ServerContext struct {
	LLMClient llm.Client
	Config    *config.Config
	Baseline  baseline.Store

	// Recorder is optional; when nil runs are not exported as metrics.
	Recorder *metrics.Recorder

	runMu sync.Mutex
}

// AcquireRun reserves the single run slot. The returned function releases it.
// Runs are serialized so results and the baseline are never written concurrently.
func (sc *ServerContext) AcquireRun() (func(), error) {
	if !sc.runMu.TryLock() {
		return nil, ErrRunInProgress
	}
	return sc.runMu.Unlock, nil
}
