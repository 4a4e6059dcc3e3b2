package ingest

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jitmemory/jitmemory/llm"
	"github.com/jitmemory/jitmemory/llm/embedding"
	"github.com/jitmemory/jitmemory/llm/tokenizer"
	"github.com/jitmemory/jitmemory/types"
)

const abstractSystemPrompt = `You distill a single conversation turn into a short memory abstract.
Respond using exactly this layout, nothing else:

SUMMARY: <one line summarizing the exchange>
HEADERS:
- <short keyword header>
- <short keyword header>

Produce 3 to 7 headers. Keep the summary to one line.`

// Agent is the Memory Agent (C5). CreatePage and CreateAbstract are
// independent operations, each minting its own page id; the service
// facade reconciles the abstract's page id to the page's before the
// atomic write.
type Agent struct {
	llm       llm.Provider
	embedder  embedding.Provider
	tokenizer tokenizer.Tokenizer
	logger    *zap.Logger
}

// New builds the Memory Agent over the given completion and embedding
// providers. Token counting defaults to the character-ratio estimator;
// use WithTokenizer to pin a model-specific tiktoken encoding.
func New(provider llm.Provider, embedder embedding.Provider, logger *zap.Logger) *Agent {
	return &Agent{
		llm:       provider,
		embedder:  embedder,
		tokenizer: tokenizer.GetTokenizerOrEstimator(""),
		logger:    logger.With(zap.String("component", "ingest")),
	}
}

// WithTokenizer overrides the token counter used by CreatePage.
func (a *Agent) WithTokenizer(tok tokenizer.Tokenizer) *Agent {
	a.tokenizer = tok
	return a
}

// CreatePage formats turn, estimates its token count, embeds the full
// content, and mints a fresh page. It performs no LLM call.
func (a *Agent) CreatePage(ctx context.Context, turn types.ConversationTurn) (types.Page, error) {
	content := FormatTurn(turn)

	tokenCount, err := a.tokenizer.CountTokens(content)
	if err != nil {
		return types.Page{}, fmt.Errorf("ingest: count tokens: %w", err)
	}

	embVec, err := a.embedder.EmbedQuery(ctx, content)
	if err != nil {
		return types.Page{}, fmt.Errorf("ingest: embed page content: %w", err)
	}

	return types.Page{
		ID:         uuid.NewString(),
		Owner:      turn.Owner,
		Content:    content,
		TokenCount: tokenCount,
		Embedding:  embVec,
		Metadata:   turn.Metadata,
		CreatedAt:  turn.Timestamp,
	}, nil
}

// CreateAbstract asks the LLM for a summary/headers abstraction of turn,
// parses the response (tolerantly — a malformed response still yields an
// abstract with empty Summary/Headers), and embeds the summary when
// non-empty. It mints its own page id; the caller is responsible for
// reconciling it against the page's id before persisting.
func (a *Agent) CreateAbstract(ctx context.Context, turn types.ConversationTurn) (types.Abstract, error) {
	resp, err := a.llm.Complete(ctx, llm.ChatRequest{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: abstractSystemPrompt},
			{Role: llm.RoleUser, Content: FormatTurn(turn)},
		},
		Temperature: 0.3,
		MaxTokens:   1000,
	})
	if err != nil {
		return types.Abstract{}, fmt.Errorf("ingest: request abstract: %w", err)
	}

	abstraction := ParseAbstractResponse(resp.Content)
	if abstraction.Summary == "" {
		a.logger.Warn("abstract response failed to parse a summary", zap.String("owner", turn.Owner))
	}

	var summaryEmbedding []float64
	if abstraction.Summary != "" {
		summaryEmbedding, err = a.embedder.EmbedQuery(ctx, abstraction.Summary)
		if err != nil {
			return types.Abstract{}, fmt.Errorf("ingest: embed abstract summary: %w", err)
		}
	}

	return types.Abstract{
		PageID:           uuid.NewString(),
		Owner:            turn.Owner,
		Summary:          abstraction.Summary,
		Headers:          abstraction.Headers,
		SummaryEmbedding: summaryEmbedding,
		CreatedAt:        turn.Timestamp,
	}, nil
}
