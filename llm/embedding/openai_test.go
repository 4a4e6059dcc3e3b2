package embedding

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIProvider_Embed_SendsModelAndDimensions(t *testing.T) {
	var gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, r.ContentLength)
		r.Body.Read(buf)
		gotBody = string(buf)

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{
			"object": "list",
			"data": [{"object":"embedding","index":0,"embedding":[0.1,0.2,0.3]}],
			"model": "text-embedding-3-large",
			"usage": {"prompt_tokens": 5, "total_tokens": 5}
		}`))
	}))
	defer server.Close()

	p := NewOpenAIProvider(OpenAIConfig{APIKey: "sk-test", BaseURL: server.URL})
	resp, err := p.Embed(context.Background(), &EmbeddingRequest{Input: []string{"hello"}})
	require.NoError(t, err)

	require.Len(t, resp.Embeddings, 1)
	assert.Equal(t, []float64{0.1, 0.2, 0.3}, resp.Embeddings[0].Embedding)
	assert.Equal(t, 5, resp.Usage.TotalTokens)
	assert.Contains(t, gotBody, `"text-embedding-3-large"`)
}

func TestOpenAIProvider_Embed_DefaultsModelAndDimensionsWhenUnset(t *testing.T) {
	p := NewOpenAIProvider(OpenAIConfig{APIKey: "sk-test"})
	assert.Equal(t, "text-embedding-3-large", p.cfg.Model)
	assert.Equal(t, 3072, p.cfg.Dimensions)
	assert.Equal(t, "https://api.openai.com", p.cfg.BaseURL)
}

func TestOpenAIProvider_Embed_PropagatesUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte("invalid api key"))
	}))
	defer server.Close()

	p := NewOpenAIProvider(OpenAIConfig{APIKey: "bad-key", BaseURL: server.URL})
	_, err := p.Embed(context.Background(), &EmbeddingRequest{Input: []string{"hello"}})
	require.Error(t, err)

	var embedErr *Error
	require.ErrorAs(t, err, &embedErr)
	assert.Equal(t, ErrUnauthorized, embedErr.Code)
}

func TestOpenAIProvider_EmbedQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"data":[{"index":0,"embedding":[1,2]}],"model":"m","usage":{}}`))
	}))
	defer server.Close()

	p := NewOpenAIProvider(OpenAIConfig{APIKey: "sk-test", BaseURL: server.URL})
	vec, err := p.EmbedQuery(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, vec)
}
