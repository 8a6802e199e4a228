// Package agent calls the structured-output triage agent for one test case.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/giantswarm/triage-eval/internal/llm"
	"github.com/giantswarm/triage-eval/internal/triage"
)

// Invocation is the outcome of one agent call.
type Invocation struct {
	Output    triage.AgentOutput
	RawText   string
	LatencyMs int64

	// Usage is nil when the service reported no token counts.
	Usage *llm.Usage
}

// Invoker sends test cases to the agent. The client is supplied at
// construction and lives as long as the Invoker.
type Invoker struct {
	client       llm.Client
	model        string
	systemPrompt string
	temperature  *float64
	now          func() time.Time
}

// Option configures an Invoker.
type Option func(*Invoker)

// WithModel sets the model requested for every call.
func WithModel(model string) Option {
	return func(i *Invoker) {
		i.model = model
	}
}

// WithSystemPrompt replaces DefaultSystemPrompt.
func WithSystemPrompt(prompt string) Option {
	return func(i *Invoker) {
		if prompt != "" {
			i.systemPrompt = prompt
		}
	}
}

// WithTemperature sets the sampling temperature for every call.
func WithTemperature(temp *float64) Option {
	return func(i *Invoker) {
		i.temperature = temp
	}
}

// NewInvoker creates an Invoker backed by client.
func NewInvoker(client llm.Client, opts ...Option) *Invoker {
	i := &Invoker{
		client:       client,
		systemPrompt: DefaultSystemPrompt,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Model returns the model requested for each call.
func (i *Invoker) Model() string {
	return i.model
}

// Invoke calls the agent for tc. A response that cannot be parsed yields an
// empty output; only transport failures return an error.
func (i *Invoker) Invoke(ctx context.Context, tc triage.TestCase) (*Invocation, error) {
	system, user := BuildMessages(i.systemPrompt, tc.Input)

	start := i.now()
	resp, err := i.client.ChatCompletion(ctx, llm.ChatRequest{
		Model:         i.model,
		SystemMessage: system,
		UserMessage:   user,
		Temperature:   i.temperature,
		ResponseFormat: &llm.ResponseFormat{
			Name:   SchemaName,
			Schema: ResponseSchema(),
			Strict: true,
		},
	})
	latency := i.now().Sub(start)
	if err != nil {
		return nil, fmt.Errorf("agent call failed for case %s: %w", tc.ID, err)
	}

	output, ok := Parse(resp.Content)
	if !ok {
		slog.Debug("agent returned unparsable output", "case_id", tc.ID, "raw_bytes", len(resp.Content))
	}

	return &Invocation{
		Output:    output,
		RawText:   resp.Content,
		LatencyMs: latency.Milliseconds(),
		Usage:     resp.Usage,
	}, nil
}

// BuildMessages assembles the system and user messages for an email.
func BuildMessages(prompt string, in triage.Input) (system, user string) {
	system = prompt
	if in.ERPContext != "" {
		system = prompt + ERPSectionHeader + in.ERPContext
	}
	user = fmt.Sprintf("Subject: %s\n\n%s", in.Subject, in.Body)
	return system, user
}
