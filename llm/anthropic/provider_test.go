package anthropic

import (
	"errors"
	"net/http"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jitmemory/jitmemory/llm"
)

func TestSplitSystem_CombinesMultipleSystemMessages(t *testing.T) {
	system, rest := splitSystem([]llm.Message{
		{Role: llm.RoleSystem, Content: "first rule"},
		{Role: llm.RoleUser, Content: "hello"},
		{Role: llm.RoleSystem, Content: "second rule"},
		{Role: llm.RoleAssistant, Content: "hi there"},
	})

	assert.Equal(t, "first rule\n\nsecond rule", system)
	require.Len(t, rest, 2)
}

func TestSplitSystem_NoSystemMessages(t *testing.T) {
	system, rest := splitSystem([]llm.Message{
		{Role: llm.RoleUser, Content: "hello"},
	})
	assert.Empty(t, system)
	require.Len(t, rest, 1)
}

func TestProvider_Params_DefaultsModelAndMaxTokens(t *testing.T) {
	p := New(Config{APIKey: "test-key"}, zap.NewNop())

	params := p.params(llm.ChatRequest{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "hi"}},
	})

	assert.Equal(t, string(defaultModel), string(params.Model))
	assert.EqualValues(t, 1024, params.MaxTokens)
}

func TestProvider_Params_RequestOverridesDefaults(t *testing.T) {
	p := New(Config{APIKey: "test-key", Model: "claude-custom"}, zap.NewNop())

	params := p.params(llm.ChatRequest{
		Model:       "claude-override",
		MaxTokens:   50,
		Temperature: 0.5,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: "be terse"},
			{Role: llm.RoleUser, Content: "hi"},
		},
	})

	assert.Equal(t, "claude-override", string(params.Model))
	assert.EqualValues(t, 50, params.MaxTokens)
	require.Len(t, params.System, 1)
	assert.Equal(t, "be terse", params.System[0].Text)
}

func TestMapError_TranslatesStatusCodes(t *testing.T) {
	cases := []struct {
		status    int
		wantCode  llm.ErrorCode
		retryable bool
	}{
		{401, llm.ErrUnauthorized, false},
		{403, llm.ErrForbidden, false},
		{429, llm.ErrRateLimited, true},
		{400, llm.ErrInvalidRequest, false},
		{529, llm.ErrModelOverloaded, true},
		{500, llm.ErrUpstreamError, true},
	}

	for _, c := range cases {
		req, _ := http.NewRequest(http.MethodPost, "https://api.anthropic.com/v1/messages", nil)
		apiErr := &anthropic.Error{
			StatusCode: c.status,
			Request:    req,
			Response:   &http.Response{StatusCode: c.status},
		}
		mapped := mapError(apiErr, "anthropic")
		assert.Equal(t, c.wantCode, mapped.Code, "status %d", c.status)
		assert.Equal(t, c.retryable, mapped.Retryable, "status %d", c.status)
		assert.Equal(t, "anthropic", mapped.Provider)
	}
}

func TestMapError_NonAPIErrorIsRetryableUpstream(t *testing.T) {
	mapped := mapError(errors.New("connection reset"), "anthropic")
	assert.Equal(t, llm.ErrUpstreamError, mapped.Code)
	assert.True(t, mapped.Retryable)
}

func TestProvider_Name(t *testing.T) {
	p := New(Config{APIKey: "test-key"}, zap.NewNop())
	assert.Equal(t, "anthropic", p.Name())
}
