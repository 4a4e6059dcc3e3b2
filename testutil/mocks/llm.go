// Package mocks provides scripted test doubles for the llm.Provider and
// embedding.Provider boundaries, so agent and service tests can exercise
// the plan/search/integrate/reflect loop and the ingest path without a
// live model.
package mocks

import (
	"context"
	"sync"

	"github.com/jitmemory/jitmemory/llm"
)

// LLMProvider is a scripted llm.Provider. Responses are consumed in
// order from a queue; once exhausted, the last response (or error) is
// repeated for every further call. Every call is recorded for assertion.
type LLMProvider struct {
	mu sync.Mutex

	responses []llm.ChatResponse
	err       error
	completionFunc func(ctx context.Context, req llm.ChatRequest) (llm.ChatResponse, error)

	calls []llm.ChatRequest
}

// NewLLMProvider builds an LLMProvider with no scripted responses; calls
// return an empty completion until WithResponses/WithError is set.
func NewLLMProvider() *LLMProvider {
	return &LLMProvider{}
}

// WithResponses queues responses to be returned in order, one per call.
func (m *LLMProvider) WithResponses(responses ...string) *LLMProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = nil
	for _, r := range responses {
		m.responses = append(m.responses, llm.ChatResponse{Content: r})
	}
	return m
}

// WithError makes every call fail with err.
func (m *LLMProvider) WithError(err error) *LLMProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// WithCompletionFunc overrides Complete's behavior entirely.
func (m *LLMProvider) WithCompletionFunc(fn func(ctx context.Context, req llm.ChatRequest) (llm.ChatResponse, error)) *LLMProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completionFunc = fn
	return m
}

// Calls returns every request observed so far, in order.
func (m *LLMProvider) Calls() []llm.ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]llm.ChatRequest, len(m.calls))
	copy(out, m.calls)
	return out
}

// Name implements llm.Provider.
func (m *LLMProvider) Name() string { return "mock" }

// HealthCheck implements llm.Provider.
func (m *LLMProvider) HealthCheck(ctx context.Context) (llm.HealthStatus, error) {
	return llm.HealthStatus{Healthy: true}, nil
}

// Complete implements llm.Provider.
func (m *LLMProvider) Complete(ctx context.Context, req llm.ChatRequest) (llm.ChatResponse, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	fn := m.completionFunc
	err := m.err
	var resp llm.ChatResponse
	if len(m.responses) > 0 {
		resp = m.responses[0]
		if len(m.responses) > 1 {
			m.responses = m.responses[1:]
		}
	}
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	if err != nil {
		return llm.ChatResponse{}, err
	}
	return resp, nil
}

// Stream implements llm.Provider by emitting Complete's result as a
// single chunk.
func (m *LLMProvider) Stream(ctx context.Context, req llm.ChatRequest) (<-chan llm.StreamChunk, error) {
	resp, err := m.Complete(ctx, req)
	ch := make(chan llm.StreamChunk, 1)
	if err != nil {
		llmErr, ok := err.(*llm.Error)
		if !ok {
			llmErr = &llm.Error{Message: err.Error()}
		}
		ch <- llm.StreamChunk{Err: llmErr}
	} else {
		ch <- llm.StreamChunk{Content: resp.Content, FinishReason: "stop"}
	}
	close(ch)
	return ch, nil
}
