// Package anthropic is the one reference llm.Provider implementation,
// backed by the official Anthropic Messages API client. It is deliberately
// the only wire adapter: the research and memory agents depend on
// llm.Provider, never on this package directly, so swapping models or
// providers never touches agent logic.
package anthropic

import (
	"context"
	"errors"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"github.com/jitmemory/jitmemory/llm"
)

const defaultModel = anthropic.ModelClaudeHaiku4_5

// Config configures the Claude provider.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Provider implements llm.Provider against the Anthropic Messages API.
type Provider struct {
	client anthropic.Client
	model  string
	logger *zap.Logger
}

// New constructs a Claude-backed Provider.
func New(cfg Config, logger *zap.Logger) *Provider {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	model := cfg.Model
	if model == "" {
		model = string(defaultModel)
	}
	return &Provider{
		client: anthropic.NewClient(opts...),
		model:  model,
		logger: logger.With(zap.String("component", "llm.anthropic")),
	}
}

func (p *Provider) Name() string { return "anthropic" }

func (p *Provider) HealthCheck(ctx context.Context) (llm.HealthStatus, error) {
	start := time.Now()
	_, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: 1,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock("ping")),
		},
	})
	latency := time.Since(start)
	if err != nil {
		return llm.HealthStatus{Healthy: false, Latency: latency}, err
	}
	return llm.HealthStatus{Healthy: true, Latency: latency}, nil
}

func splitSystem(msgs []llm.Message) (system string, rest []anthropic.MessageParam) {
	for _, m := range msgs {
		switch m.Role {
		case llm.RoleSystem:
			if system != "" {
				system += "\n\n"
			}
			system += m.Content
		case llm.RoleUser:
			rest = append(rest, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		case llm.RoleAssistant:
			rest = append(rest, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		}
	}
	return system, rest
}

func (p *Provider) params(req llm.ChatRequest) anthropic.MessageNewParams {
	model := req.Model
	if model == "" {
		model = p.model
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	system, messages := splitSystem(req.Messages)

	out := anthropic.MessageNewParams{
		Model:       anthropic.Model(model),
		MaxTokens:   int64(maxTokens),
		Messages:    messages,
		Temperature: anthropic.Float(float64(req.Temperature)),
	}
	if system != "" {
		out.System = []anthropic.TextBlockParam{{Text: system}}
	}
	return out
}

func (p *Provider) Complete(ctx context.Context, req llm.ChatRequest) (llm.ChatResponse, error) {
	resp, err := p.client.Messages.New(ctx, p.params(req))
	if err != nil {
		return llm.ChatResponse{}, mapError(err, p.Name())
	}

	var content string
	for _, block := range resp.Content {
		if block.Type == "text" {
			content += block.Text
		}
	}

	return llm.ChatResponse{
		Content: content,
		Model:   string(resp.Model),
		Usage: llm.ChatUsage{
			PromptTokens:     int(resp.Usage.InputTokens),
			CompletionTokens: int(resp.Usage.OutputTokens),
		},
	}, nil
}

func (p *Provider) Stream(ctx context.Context, req llm.ChatRequest) (<-chan llm.StreamChunk, error) {
	stream := p.client.Messages.NewStreaming(ctx, p.params(req))

	ch := make(chan llm.StreamChunk)
	go func() {
		defer close(ch)
		var acc anthropic.Message
		for stream.Next() {
			event := stream.Current()
			if err := acc.Accumulate(event); err != nil {
				ch <- llm.StreamChunk{Err: mapError(err, p.Name())}
				return
			}
			switch delta := event.AsAny().(type) {
			case anthropic.ContentBlockDeltaEvent:
				if textDelta, ok := delta.Delta.AsAny().(anthropic.TextDelta); ok {
					select {
					case <-ctx.Done():
						return
					case ch <- llm.StreamChunk{Content: textDelta.Text}:
					}
				}
			case anthropic.MessageDeltaEvent:
				if string(delta.Delta.StopReason) != "" {
					select {
					case <-ctx.Done():
						return
					case ch <- llm.StreamChunk{FinishReason: string(delta.Delta.StopReason)}:
					}
				}
			}
		}
		if err := stream.Err(); err != nil && !errors.Is(err, context.Canceled) {
			ch <- llm.StreamChunk{Err: mapError(err, p.Name())}
		}
	}()

	return ch, nil
}

func mapError(err error, provider string) *llm.Error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		code := llm.ErrUpstreamError
		retryable := apiErr.StatusCode >= 500
		switch apiErr.StatusCode {
		case 401:
			code = llm.ErrUnauthorized
		case 403:
			code = llm.ErrForbidden
		case 429:
			code, retryable = llm.ErrRateLimited, true
		case 400:
			code = llm.ErrInvalidRequest
		case 529:
			code, retryable = llm.ErrModelOverloaded, true
		}
		return &llm.Error{Code: code, Message: apiErr.Error(), Retryable: retryable, Provider: provider}
	}
	return &llm.Error{Code: llm.ErrUpstreamError, Message: err.Error(), Retryable: true, Provider: provider}
}
