package research

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jitmemory/jitmemory/testutil/mocks"
	"github.com/jitmemory/jitmemory/types"
)

// fakeStore is a minimal in-memory store.Store double; only
// GetPagesByIDs is exercised by the research loop.
type fakeStore struct {
	pages map[string]types.Page
}

func newFakeStore(pages ...types.Page) *fakeStore {
	s := &fakeStore{pages: make(map[string]types.Page)}
	for _, p := range pages {
		s.pages[p.ID] = p
	}
	return s
}

func (s *fakeStore) GetPage(ctx context.Context, id string) (types.Page, bool, error) {
	p, ok := s.pages[id]
	return p, ok, nil
}

func (s *fakeStore) GetPagesByIDs(ctx context.Context, ids []string) ([]types.Page, error) {
	var out []types.Page
	for _, id := range ids {
		if p, ok := s.pages[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *fakeStore) StorePage(ctx context.Context, page types.Page) error { return nil }
func (s *fakeStore) StoreAbstract(ctx context.Context, abstract types.Abstract) error {
	return nil
}
func (s *fakeStore) StorePageAndAbstract(ctx context.Context, page types.Page, abstract types.Abstract) error {
	return nil
}
func (s *fakeStore) DeletePage(ctx context.Context, id string) error          { return nil }
func (s *fakeStore) DeleteByOwner(ctx context.Context, owner string) error    { return nil }
func (s *fakeStore) CleanupExpired(ctx context.Context, maxAge time.Duration, owner string) (int64, error) {
	return 0, nil
}
func (s *fakeStore) DeleteBefore(ctx context.Context, cutoff time.Time, owner string) (int64, error) {
	return 0, nil
}
func (s *fakeStore) StatsByOwner(ctx context.Context, owner string) (types.OwnerStats, error) {
	return types.OwnerStats{}, nil
}
func (s *fakeStore) Close() error { return nil }

// fakeRetriever is a scripted retrieval.Retriever double.
type fakeRetriever struct {
	name string
	fn   func(ctx context.Context, query types.RetrievalQuery) ([]types.RetrievalResult, error)
}

func (r *fakeRetriever) Name() string { return r.name }
func (r *fakeRetriever) Retrieve(ctx context.Context, query types.RetrievalQuery) ([]types.RetrievalResult, error) {
	return r.fn(ctx, query)
}

func fixedRetriever(name string, results []types.RetrievalResult) *fakeRetriever {
	return &fakeRetriever{name: name, fn: func(ctx context.Context, query types.RetrievalQuery) ([]types.RetrievalResult, error) {
		var out []types.RetrievalResult
		for _, r := range results {
			if query.Excludes(r.PageID) {
				continue
			}
			out = append(out, r)
		}
		return out, nil
	}}
}

func emptyRetriever(name string) *fakeRetriever {
	return fixedRetriever(name, nil)
}

func testPage(id string, tokens int) types.Page {
	return types.Page{ID: id, Owner: "u1", Content: "content-" + id, TokenCount: tokens, CreatedAt: time.Now()}
}

func TestLoop_Run_CompleteShortCircuitsOnFirstPlan(t *testing.T) {
	llmProvider := mocks.NewLLMProvider().WithResponses("STRATEGY: done already\nCOMPLETE: true")
	embedder := mocks.NewEmbeddingProvider(2)
	st := newFakeStore()
	loop := New(llmProvider, embedder, st, emptyRetriever("kw"), emptyRetriever("vec"), emptyRetriever("idx"), zap.NewNop())

	ctx := context.Background()
	mc, err := loop.Run(ctx, "u1", "what is go", types.DefaultResearchOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, mc.IterationsPerformed, "the plan phase of iteration 1 ran, so it counts as performed")
	assert.Empty(t, mc.Pages)

	calls := llmProvider.Calls()
	require.Len(t, calls, 1, "only the plan phase should call the LLM")
}

func TestLoop_Run_FallsBackToKeywordAndVectorWhenAllTogglesFalse(t *testing.T) {
	page := testPage("p1", 10)
	st := newFakeStore(page)
	kw := fixedRetriever("keyword_bm25", []types.RetrievalResult{{PageID: "p1", Score: 0.9, RetrieverName: "keyword_bm25"}})
	vec := emptyRetriever("vector_semantic")
	idx := emptyRetriever("page_index")

	llmProvider := mocks.NewLLMProvider().WithResponses(
		"STRATEGY: default\nCOMPLETE: false",
		"STOP",
	)
	embedder := mocks.NewEmbeddingProvider(2)
	loop := New(llmProvider, embedder, st, kw, vec, idx, zap.NewNop())

	mc, err := loop.Run(context.Background(), "u1", "query", types.DefaultResearchOptions())
	require.NoError(t, err)
	require.Len(t, mc.Pages, 1)
	assert.Equal(t, "p1", mc.Pages[0].Page.ID)
	assert.Equal(t, 1, mc.IterationsPerformed)
}

func TestLoop_Run_NoDuplicatePagesAcrossIterations(t *testing.T) {
	pages := []types.Page{testPage("p1", 10), testPage("p2", 10), testPage("p3", 10)}
	st := newFakeStore(pages...)

	callCount := 0
	kw := &fakeRetriever{name: "keyword_bm25", fn: func(ctx context.Context, query types.RetrievalQuery) ([]types.RetrievalResult, error) {
		callCount++
		id := fmt.Sprintf("p%d", callCount)
		if query.Excludes(id) {
			return nil, nil
		}
		return []types.RetrievalResult{{PageID: id, Score: 1.0 / float64(callCount), RetrieverName: "keyword_bm25"}}, nil
	}}
	vec := emptyRetriever("vector_semantic")
	idx := emptyRetriever("page_index")

	llmProvider := mocks.NewLLMProvider().WithResponses(
		"STRATEGY: a\nUSE_KEYWORD: true\nCOMPLETE: false",
		"CONTINUE",
		"STRATEGY: b\nUSE_KEYWORD: true\nCOMPLETE: false",
		"CONTINUE",
		"STRATEGY: c\nUSE_KEYWORD: true\nCOMPLETE: false",
		"STOP",
	)
	embedder := mocks.NewEmbeddingProvider(2)
	opts := types.DefaultResearchOptions()
	opts.MaxIterations = 5

	loop := New(llmProvider, embedder, st, kw, vec, idx, zap.NewNop())
	mc, err := loop.Run(context.Background(), "u1", "query", opts)
	require.NoError(t, err)

	seen := make(map[string]bool)
	for _, p := range mc.Pages {
		assert.False(t, seen[p.Page.ID], "page %s admitted twice", p.Page.ID)
		seen[p.Page.ID] = true
	}
	assert.Equal(t, 3, len(mc.Pages))
	assert.Equal(t, 3, mc.IterationsPerformed)
}

func TestLoop_Run_StopsAdmittingOnTokenOverflow(t *testing.T) {
	pages := []types.Page{testPage("p1", 6000), testPage("p2", 6000)}
	st := newFakeStore(pages...)
	kw := fixedRetriever("keyword_bm25", []types.RetrievalResult{
		{PageID: "p1", Score: 0.9, RetrieverName: "keyword_bm25"},
		{PageID: "p2", Score: 0.8, RetrieverName: "keyword_bm25"},
	})
	vec := emptyRetriever("vector_semantic")
	idx := emptyRetriever("page_index")

	llmProvider := mocks.NewLLMProvider().WithResponses(
		"STRATEGY: default\nUSE_KEYWORD: true\nCOMPLETE: false",
		"STOP",
	)
	embedder := mocks.NewEmbeddingProvider(2)
	opts := types.DefaultResearchOptions()
	opts.MaxContextTokens = 8000

	loop := New(llmProvider, embedder, st, kw, vec, idx, zap.NewNop())
	mc, err := loop.Run(context.Background(), "u1", "query", opts)
	require.NoError(t, err)
	require.Len(t, mc.Pages, 1, "second page would overflow the token budget")
	assert.Equal(t, "p1", mc.Pages[0].Page.ID)
}

func TestLoop_Run_HardStopsReflectWithoutLLMCallPastThreshold(t *testing.T) {
	page := testPage("p1", 7300)
	st := newFakeStore(page)
	kw := fixedRetriever("keyword_bm25", []types.RetrievalResult{{PageID: "p1", Score: 0.9, RetrieverName: "keyword_bm25"}})
	vec := emptyRetriever("vector_semantic")
	idx := emptyRetriever("page_index")

	llmProvider := mocks.NewLLMProvider().WithResponses("STRATEGY: default\nUSE_KEYWORD: true\nCOMPLETE: false")
	embedder := mocks.NewEmbeddingProvider(2)
	opts := types.DefaultResearchOptions()
	opts.MaxContextTokens = 8000

	loop := New(llmProvider, embedder, st, kw, vec, idx, zap.NewNop())
	mc, err := loop.Run(context.Background(), "u1", "query", opts)
	require.NoError(t, err)
	assert.Len(t, mc.Pages, 1)
	assert.Equal(t, 1, mc.IterationsPerformed)
	assert.Len(t, llmProvider.Calls(), 1, "reflect's hard gate must short-circuit before calling the LLM")
}

func TestLoop_Run_ContinuesWhenNothingRetrievedYet(t *testing.T) {
	st := newFakeStore()
	kw := emptyRetriever("keyword_bm25")
	vec := emptyRetriever("vector_semantic")
	idx := emptyRetriever("page_index")

	llmProvider := mocks.NewLLMProvider().WithResponses(
		"STRATEGY: a\nUSE_KEYWORD: true\nCOMPLETE: false",
		"STRATEGY: b\nUSE_KEYWORD: true\nCOMPLETE: false",
	)
	embedder := mocks.NewEmbeddingProvider(2)
	opts := types.DefaultResearchOptions()
	opts.MaxIterations = 2

	loop := New(llmProvider, embedder, st, kw, vec, idx, zap.NewNop())
	mc, err := loop.Run(context.Background(), "u1", "query", opts)
	require.NoError(t, err)
	assert.Equal(t, 2, mc.IterationsPerformed)
	assert.Empty(t, mc.Pages)
}

func TestLoop_Run_RespectsMaxIterationsBound(t *testing.T) {
	st := newFakeStore()
	kw := emptyRetriever("keyword_bm25")
	vec := emptyRetriever("vector_semantic")
	idx := emptyRetriever("page_index")

	llmProvider := mocks.NewLLMProvider().WithResponses("STRATEGY: iter\nCOMPLETE: false")
	embedder := mocks.NewEmbeddingProvider(2)
	opts := types.DefaultResearchOptions()
	opts.MaxIterations = 3

	loop := New(llmProvider, embedder, st, kw, vec, idx, zap.NewNop())
	mc, err := loop.Run(context.Background(), "u1", "query", opts)
	require.NoError(t, err)
	assert.Equal(t, 3, mc.IterationsPerformed)
}

func TestLoop_Run_PropagatesRetrieverError(t *testing.T) {
	st := newFakeStore()
	kw := &fakeRetriever{name: "keyword_bm25", fn: func(ctx context.Context, query types.RetrievalQuery) ([]types.RetrievalResult, error) {
		return nil, errors.New("backend exploded")
	}}
	vec := emptyRetriever("vector_semantic")
	idx := emptyRetriever("page_index")

	llmProvider := mocks.NewLLMProvider().WithResponses("STRATEGY: default\nUSE_KEYWORD: true\nCOMPLETE: false")
	embedder := mocks.NewEmbeddingProvider(2)

	loop := New(llmProvider, embedder, st, kw, vec, idx, zap.NewNop())
	_, err := loop.Run(context.Background(), "u1", "query", types.DefaultResearchOptions())
	require.Error(t, err)
}

func TestLoop_Run_CancelledContextAborts(t *testing.T) {
	st := newFakeStore()
	kw := emptyRetriever("keyword_bm25")
	vec := emptyRetriever("vector_semantic")
	idx := emptyRetriever("page_index")

	llmProvider := mocks.NewLLMProvider().WithResponses("STRATEGY: default\nCOMPLETE: false")
	embedder := mocks.NewEmbeddingProvider(2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	loop := New(llmProvider, embedder, st, kw, vec, idx, zap.NewNop())
	_, err := loop.Run(ctx, "u1", "query", types.DefaultResearchOptions())
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.ErrCancelled))
}
