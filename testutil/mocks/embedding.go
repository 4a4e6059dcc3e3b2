package mocks

import (
	"context"
	"sync"

	"github.com/jitmemory/jitmemory/llm/embedding"
)

// EmbeddingProvider is a scripted embedding.Provider. By default it
// returns a deterministic, content-independent vector of the configured
// dimension; WithVectorFunc lets a test compute vectors from the input
// text (e.g. to make similarity assertions meaningful).
type EmbeddingProvider struct {
	mu sync.Mutex

	dimensions int
	err        error
	vectorFunc func(text string) []float64

	calls []string
}

// NewEmbeddingProvider builds an EmbeddingProvider producing vectors of
// the given dimension.
func NewEmbeddingProvider(dimensions int) *EmbeddingProvider {
	return &EmbeddingProvider{dimensions: dimensions}
}

// WithError makes every call fail with err.
func (m *EmbeddingProvider) WithError(err error) *EmbeddingProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// WithVectorFunc overrides the per-text vector computation.
func (m *EmbeddingProvider) WithVectorFunc(fn func(text string) []float64) *EmbeddingProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vectorFunc = fn
	return m
}

// Calls returns every embedded text observed so far, in order.
func (m *EmbeddingProvider) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

func (m *EmbeddingProvider) vectorFor(text string) []float64 {
	if m.vectorFunc != nil {
		return m.vectorFunc(text)
	}
	v := make([]float64, m.dimensions)
	if m.dimensions > 0 {
		v[0] = 1
	}
	return v
}

// Name implements embedding.Provider.
func (m *EmbeddingProvider) Name() string { return "mock" }

// Dimensions implements embedding.Provider.
func (m *EmbeddingProvider) Dimensions() int { return m.dimensions }

// MaxBatchSize implements embedding.Provider.
func (m *EmbeddingProvider) MaxBatchSize() int { return 2048 }

// EmbedQuery implements embedding.Provider.
func (m *EmbeddingProvider) EmbedQuery(ctx context.Context, query string) ([]float64, error) {
	m.mu.Lock()
	m.calls = append(m.calls, query)
	err := m.err
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return m.vectorFor(query), nil
}

// EmbedDocuments implements embedding.Provider.
func (m *EmbeddingProvider) EmbedDocuments(ctx context.Context, documents []string) ([][]float64, error) {
	out := make([][]float64, len(documents))
	for i, d := range documents {
		v, err := m.EmbedQuery(ctx, d)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Embed implements embedding.Provider.
func (m *EmbeddingProvider) Embed(ctx context.Context, req *embedding.EmbeddingRequest) (*embedding.EmbeddingResponse, error) {
	data := make([]embedding.EmbeddingData, len(req.Input))
	for i, in := range req.Input {
		v, err := m.EmbedQuery(ctx, in)
		if err != nil {
			return nil, err
		}
		data[i] = embedding.EmbeddingData{Index: i, Embedding: v}
	}
	return &embedding.EmbeddingResponse{
		Provider:   m.Name(),
		Embeddings: data,
	}, nil
}
