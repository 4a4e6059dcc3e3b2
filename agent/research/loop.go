package research

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jitmemory/jitmemory/llm"
	"github.com/jitmemory/jitmemory/llm/embedding"
	"github.com/jitmemory/jitmemory/retrieval"
	"github.com/jitmemory/jitmemory/store"
	"github.com/jitmemory/jitmemory/types"
)

// reflectHardStopFraction is the Reflect phase's early-stop threshold,
// expressed as a fraction of MaxContextTokens.
const reflectHardStopFraction = 0.9

const planSystemPrompt = `You direct one iteration of a conversational memory search.
Respond using exactly this layout, nothing else:

STRATEGY: <one line describing this iteration's approach>
SEARCH_QUERY: <an optimised search query, or leave blank to reuse the original query>
USE_KEYWORD: true|false
USE_VECTOR: true|false
USE_INDEX: true|false
TARGET_HEADERS: <comma-separated header keywords, or none>
COMPLETE: true|false

Set COMPLETE: true only once the retrieved pages already answer the query.`

const reflectSystemPrompt = `You decide whether a conversational memory search needs another iteration.
Reply with the single word CONTINUE if another search pass would help, or STOP otherwise.`

// Loop is the Research Agent (C6): the bounded Plan/Search/Integrate/
// Reflect iteration that assembles a MemoryContext for one query.
type Loop struct {
	llm         llm.Provider
	embedder    embedding.Provider
	store       store.Store
	keyword     retrieval.Retriever
	vector      retrieval.Retriever
	headerIndex retrieval.Retriever
	logger      *zap.Logger
}

// New builds the Research Agent over the given providers, memory store,
// and the three retrieval-substrate retrievers it fans out to.
func New(
	provider llm.Provider,
	embedder embedding.Provider,
	memStore store.Store,
	keyword, vector, headerIndex retrieval.Retriever,
	logger *zap.Logger,
) *Loop {
	return &Loop{
		llm:         provider,
		embedder:    embedder,
		store:       memStore,
		keyword:     keyword,
		vector:      vector,
		headerIndex: headerIndex,
		logger:      logger.With(zap.String("component", "research")),
	}
}

func (l *Loop) run(ctx context.Context, rc *types.ResearchContext, steps chan<- types.ResearchStep) error {
	start := time.Now()

	for iteration := 1; iteration <= rc.Options.MaxIterations; iteration++ {
		if err := ctx.Err(); err != nil {
			return types.Cancelledf("research: %v", err)
		}

		plan, planDur, err := l.plan(ctx, rc)
		if err != nil {
			return fmt.Errorf("research: plan phase: %w", err)
		}
		if err := emit(ctx, steps, types.ResearchStep{
			Iteration:      iteration,
			Phase:          types.PhasePlan,
			Summary:        plan.Strategy,
			Duration:       planDur,
			Plan:           &plan,
			CurrentContext: snapshot(rc, start, iteration),
		}); err != nil {
			return err
		}

		if plan.Complete {
			return nil
		}

		searchStart := time.Now()
		queryEmbedding, err := l.embedder.EmbedQuery(ctx, plan.SearchQuery)
		if err != nil {
			return fmt.Errorf("research: embed search query: %w", err)
		}
		merged, err := l.search(ctx, rc, plan, queryEmbedding)
		if err != nil {
			return fmt.Errorf("research: search phase: %w", err)
		}
		if err := emit(ctx, steps, types.ResearchStep{
			Iteration:      iteration,
			Phase:          types.PhaseSearch,
			Summary:        fmt.Sprintf("%d candidate pages", len(merged)),
			Duration:       time.Since(searchStart),
			RawResults:     merged,
			CurrentContext: snapshot(rc, start, iteration),
		}); err != nil {
			return err
		}

		integrateStart := time.Now()
		admitted, err := l.integrate(ctx, rc, merged)
		if err != nil {
			return fmt.Errorf("research: integrate phase: %w", err)
		}
		if err := emit(ctx, steps, types.ResearchStep{
			Iteration:       iteration,
			Phase:           types.PhaseIntegrate,
			Summary:         fmt.Sprintf("admitted %d pages", admitted),
			Duration:        time.Since(integrateStart),
			IntegratedCount: admitted,
			CurrentContext:  snapshot(rc, start, iteration),
		}); err != nil {
			return err
		}

		reflectStart := time.Now()
		cont, err := l.reflect(ctx, rc)
		if err != nil {
			return fmt.Errorf("research: reflect phase: %w", err)
		}
		if err := emit(ctx, steps, types.ResearchStep{
			Iteration:      iteration,
			Phase:          types.PhaseReflect,
			Summary:        fmt.Sprintf("continue=%t", cont),
			Duration:       time.Since(reflectStart),
			Continue:       cont,
			CurrentContext: snapshot(rc, start, iteration),
		}); err != nil {
			return err
		}

		if !cont {
			return nil
		}
	}

	return nil
}

// plan asks the LLM for this iteration's directive.
func (l *Loop) plan(ctx context.Context, rc *types.ResearchContext) (types.Plan, time.Duration, error) {
	start := time.Now()
	resp, err := l.llm.Complete(ctx, llm.ChatRequest{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: planSystemPrompt},
			{Role: llm.RoleUser, Content: planPrompt(rc)},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return types.Plan{}, time.Since(start), fmt.Errorf("request plan: %w", err)
	}
	return ParsePlanResponse(resp.Content), time.Since(start), nil
}

// search fans out the selected retrievers concurrently with the already
// embedded search query, merges their results first-occurrence-wins in the
// order the retrievers completed (or by retriever name when
// DeterministicMerge is set), and sorts the merged list by score.
func (l *Loop) search(ctx context.Context, rc *types.ResearchContext, plan types.Plan, queryEmbedding []float64) ([]types.RetrievalResult, error) {
	base := types.RetrievalQuery{
		Owner:          rc.Owner,
		QueryText:      plan.SearchQuery,
		QueryEmbedding: queryEmbedding,
		MaxResults:     rc.Options.MaxPagesPerIteration,
		MinScore:       rc.Options.MinRelevanceScore,
		ExcludePageIDs: rc.RetrievedIDs,
	}

	type task struct {
		name string
		run  func(context.Context) ([]types.RetrievalResult, error)
	}

	useKeyword, useVector := plan.UseKeyword, plan.UseVector
	useIndex := plan.UseIndex && len(plan.TargetHeaders) > 0
	if !useKeyword && !useVector && !useIndex {
		useKeyword, useVector = true, true
	}

	var tasks []task
	if useKeyword {
		tasks = append(tasks, task{l.keyword.Name(), func(ctx context.Context) ([]types.RetrievalResult, error) {
			return l.keyword.Retrieve(ctx, base)
		}})
	}
	if useVector {
		tasks = append(tasks, task{l.vector.Name(), func(ctx context.Context) ([]types.RetrievalResult, error) {
			return l.vector.Retrieve(ctx, base)
		}})
	}
	if useIndex {
		for _, header := range plan.TargetHeaders {
			headerQuery := base
			headerQuery.QueryText = header
			tasks = append(tasks, task{l.headerIndex.Name(), func(ctx context.Context) ([]types.RetrievalResult, error) {
				return l.headerIndex.Retrieve(ctx, headerQuery)
			}})
		}
	}

	type outcome struct {
		name    string
		results []types.RetrievalResult
	}

	var mu sync.Mutex
	outcomes := make([]outcome, 0, len(tasks))
	g, gctx := errgroup.WithContext(ctx)
	for _, t := range tasks {
		t := t
		g.Go(func() error {
			results, err := t.run(gctx)
			if err != nil {
				return fmt.Errorf("retriever %s: %w", t.name, err)
			}
			mu.Lock()
			outcomes = append(outcomes, outcome{name: t.name, results: results})
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if rc.Options.DeterministicMerge {
		sort.SliceStable(outcomes, func(i, j int) bool { return outcomes[i].name < outcomes[j].name })
	}

	seen := make(map[string]struct{})
	var merged []types.RetrievalResult
	for _, o := range outcomes {
		for _, r := range o.results {
			if _, ok := seen[r.PageID]; ok {
				continue
			}
			seen[r.PageID] = struct{}{}
			merged = append(merged, r)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool { return merged[i].Score > merged[j].Score })
	return merged, nil
}

// integrate hydrates the merged candidates not already retrieved and
// admits them, greedily and head-first, until the token budget would be
// exceeded.
func (l *Loop) integrate(ctx context.Context, rc *types.ResearchContext, merged []types.RetrievalResult) (int, error) {
	var candidates []types.RetrievalResult
	var ids []string
	for _, r := range merged {
		if _, seen := rc.RetrievedIDs[r.PageID]; seen {
			continue
		}
		candidates = append(candidates, r)
		ids = append(ids, r.PageID)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	pages, err := l.store.GetPagesByIDs(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("hydrate pages: %w", err)
	}
	byID := make(map[string]types.Page, len(pages))
	for _, p := range pages {
		byID[p.ID] = p
	}

	admitted := 0
	for _, c := range candidates {
		page, ok := byID[c.PageID]
		if !ok {
			// deleted mid-request; dropped silently per the not-found policy.
			continue
		}
		if rc.TotalTokens+page.TokenCount > rc.Options.MaxContextTokens {
			break
		}
		rc.Admit(types.RetrievedPage{
			Page:          page,
			Score:         c.Score,
			RetrieverName: c.RetrieverName,
			MatchedHeader: c.MatchedHeader,
		})
		admitted++
	}
	return admitted, nil
}

// reflect decides whether another iteration should run.
func (l *Loop) reflect(ctx context.Context, rc *types.ResearchContext) (bool, error) {
	if float64(rc.TotalTokens) >= reflectHardStopFraction*float64(rc.Options.MaxContextTokens) {
		return false, nil
	}
	if len(rc.Pages) == 0 {
		return true, nil
	}

	resp, err := l.llm.Complete(ctx, llm.ChatRequest{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: reflectSystemPrompt},
			{Role: llm.RoleUser, Content: reflectPrompt(rc)},
		},
		Temperature: 0,
		MaxTokens:   50,
	})
	if err != nil {
		return false, fmt.Errorf("request reflect: %w", err)
	}
	return strings.Contains(strings.ToUpper(resp.Content), "CONTINUE"), nil
}

func planPrompt(rc *types.ResearchContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Query: %s\n", rc.QueryText)
	if len(rc.Pages) == 0 {
		b.WriteString("No pages retrieved yet.\n")
		return b.String()
	}
	fmt.Fprintf(&b, "Pages retrieved so far (%d, %d tokens):\n", len(rc.Pages), rc.TotalTokens)
	for _, p := range rc.Pages {
		fmt.Fprintf(&b, "- score=%.2f via=%s: %s\n", p.Score, p.RetrieverName, truncate(p.Page.Content, 200))
	}
	return b.String()
}

func reflectPrompt(rc *types.ResearchContext) string {
	return fmt.Sprintf(
		"Query: %s\nPages retrieved: %d\nTokens used: %d/%d\nShould the search continue?",
		rc.QueryText, len(rc.Pages), rc.TotalTokens, rc.Options.MaxContextTokens,
	)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// snapshot freezes rc's current pages into a relevance-ordered
// MemoryContext, leaving rc untouched.
func snapshot(rc *types.ResearchContext, start time.Time, iterations int) types.MemoryContext {
	pages := make([]types.RetrievedPage, len(rc.Pages))
	copy(pages, rc.Pages)
	sort.SliceStable(pages, func(i, j int) bool { return pages[i].Score > pages[j].Score })
	return types.MemoryContext{
		Pages:               pages,
		TotalTokens:         rc.TotalTokens,
		IterationsPerformed: iterations,
		Duration:            time.Since(start),
	}
}

func emit(ctx context.Context, steps chan<- types.ResearchStep, step types.ResearchStep) error {
	select {
	case <-ctx.Done():
		return types.Cancelledf("research: %v", ctx.Err())
	case steps <- step:
		return nil
	}
}
