package types

import "time"

// RetrievedPage is one page admitted into a research call's running
// context, annotated with the score and retriever that surfaced it.
type RetrievedPage struct {
	Page          Page
	Score         float64
	RetrieverName string
	MatchedHeader string
}

// ResearchOptions configures the bounds of a single research call. The
// zero value is invalid; use DefaultResearchOptions.
type ResearchOptions struct {
	MaxIterations        int
	MaxPagesPerIteration  int
	MaxContextTokens      int
	MinRelevanceScore     float64
	// DeterministicMerge sorts retriever outputs by retriever name before
	// merging, trading first-completed-wins ordering for run-to-run
	// reproducibility. See the Search-phase merge contract.
	DeterministicMerge bool
}

// DefaultResearchOptions returns the spec's documented defaults.
func DefaultResearchOptions() ResearchOptions {
	return ResearchOptions{
		MaxIterations:        5,
		MaxPagesPerIteration: 10,
		MaxContextTokens:     8000,
		MinRelevanceScore:    0.3,
	}
}

// ResearchContext is the loop-internal accumulator threaded through one
// research call's iterations. It is owned by the loop and discarded at
// return; callers receive only the frozen MemoryContext snapshot.
type ResearchContext struct {
	Owner          string
	QueryText      string
	QueryEmbedding []float64
	Options        ResearchOptions
	RetrievedIDs   map[string]struct{}
	Pages          []RetrievedPage
	TotalTokens    int
}

// NewResearchContext builds an empty ResearchContext for one research call.
func NewResearchContext(owner, queryText string, opts ResearchOptions) *ResearchContext {
	return &ResearchContext{
		Owner:        owner,
		QueryText:    queryText,
		Options:      opts,
		RetrievedIDs: make(map[string]struct{}),
	}
}

// Admit records a page as retrieved, updating the token total and the seen
// set. Callers must have already checked the token budget.
func (rc *ResearchContext) Admit(rp RetrievedPage) {
	rc.RetrievedIDs[rp.Page.ID] = struct{}{}
	rc.Pages = append(rc.Pages, rp)
	rc.TotalTokens += rp.Page.TokenCount
}

// MemoryContext is the immutable bundle returned by a research call: a
// relevance-ordered, token-bounded snapshot of the pages the loop admitted.
type MemoryContext struct {
	Pages               []RetrievedPage
	TotalTokens         int
	IterationsPerformed int
	Duration            time.Duration
}

// Empty is the zero-value MemoryContext returned when a streaming research
// call emits no steps at all.
var Empty = MemoryContext{}

// ResearchPhase names one of the four strictly-ordered loop phases.
type ResearchPhase string

const (
	PhasePlan      ResearchPhase = "plan"
	PhaseSearch    ResearchPhase = "search"
	PhaseIntegrate ResearchPhase = "integrate"
	PhaseReflect   ResearchPhase = "reflect"
)

// ResearchStep is one structured event emitted by the streaming research
// entry point: one phase of one iteration, with a phase-specific payload.
type ResearchStep struct {
	Iteration      int
	Phase          ResearchPhase
	Summary        string
	Duration       time.Duration
	Plan           *Plan
	RawResults     []RetrievalResult
	IntegratedCount int
	Continue       bool
	CurrentContext MemoryContext
}
