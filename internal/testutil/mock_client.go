// Package testutil provides shared test helpers.
package testutil

import (
	"context"
	"sync"

	"github.com/giantswarm/triage-eval/internal/llm"
)

// MockLLMClient is a configurable mock for llm.Client used across test packages.
type MockLLMClient struct {
	// Responses maps user messages to canned responses.
	Responses map[string]string

	// Errors maps user messages to errors returned instead of a response.
	Errors map[string]error

	// DefaultResponse is returned when no matching key is found in Responses.
	DefaultResponse string

	// Usage is attached to every successful response when set.
	Usage *llm.Usage

	mu          sync.Mutex
	calls       int
	lastRequest llm.ChatRequest
}

func (m *MockLLMClient) ChatCompletion(_ context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	m.mu.Lock()
	m.calls++
	m.lastRequest = req
	m.mu.Unlock()

	if err, ok := m.Errors[req.UserMessage]; ok {
		return nil, err
	}

	content := "{}"
	if resp, ok := m.Responses[req.UserMessage]; ok {
		content = resp
	} else if m.DefaultResponse != "" {
		content = m.DefaultResponse
	}

	return &llm.ChatResponse{Content: content, Model: req.Model, Usage: m.Usage}, nil
}

// Calls returns the number of ChatCompletion invocations.
func (m *MockLLMClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// LastRequest returns the most recent ChatRequest for inspection.
func (m *MockLLMClient) LastRequest() llm.ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastRequest
}
