package service

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/jitmemory/jitmemory/agent/ingest"
	"github.com/jitmemory/jitmemory/agent/research"
	"github.com/jitmemory/jitmemory/internal/metrics"
	"github.com/jitmemory/jitmemory/store"
	"github.com/jitmemory/jitmemory/types"
)

var tracer = otel.Tracer("jitmemory/service")

// Service is the Service Facade (C7). It is reentrant across concurrent
// calls: nothing here is request-global.
type Service struct {
	ingest   *ingest.Agent
	research *research.Loop
	store    store.Store
	metrics  *metrics.Collector
	logger   *zap.Logger
}

// New builds the Service Facade over its three collaborators. collector
// may be nil to disable metrics recording.
func New(ingestAgent *ingest.Agent, researchLoop *research.Loop, memStore store.Store, collector *metrics.Collector, logger *zap.Logger) *Service {
	return &Service{
		ingest:   ingestAgent,
		research: researchLoop,
		store:    memStore,
		metrics:  collector,
		logger:   logger.With(zap.String("component", "service")),
	}
}

// Memorize durably ingests one conversation turn: it invokes the Memory
// Agent to build a page and an abstract, reconciles the abstract's page
// id to the page's, and writes both atomically. A failed Memorize leaves
// no partial state.
func (s *Service) Memorize(ctx context.Context, req MemorizeRequest) error {
	ctx, span := tracer.Start(ctx, "service.Memorize", trace.WithAttributes(
		attribute.String("owner", req.Turn.Owner),
	))
	defer span.End()

	start := time.Now()
	status := "ok"
	tokens := 0
	defer func() {
		if s.metrics != nil {
			s.metrics.RecordIngest(status, time.Since(start), tokens)
		}
	}()

	page, err := s.ingest.CreatePage(ctx, req.Turn)
	if err != nil {
		status = "error"
		span.RecordError(err)
		return fmt.Errorf("service: memorize: create page: %w", err)
	}

	abstract, err := s.ingest.CreateAbstract(ctx, req.Turn)
	if err != nil {
		status = "error"
		span.RecordError(err)
		return fmt.Errorf("service: memorize: create abstract: %w", err)
	}
	abstract.PageID = page.ID

	if err := s.store.StorePageAndAbstract(ctx, page, abstract); err != nil {
		status = "error"
		span.RecordError(err)
		return fmt.Errorf("service: memorize: store: %w", err)
	}

	tokens = page.TokenCount

	s.logger.Debug("memorized turn",
		zap.String("owner", req.Turn.Owner),
		zap.String("page_id", page.ID),
		zap.Int("token_count", page.TokenCount),
	)

	return nil
}

// Research runs the bounded recall loop for one query and returns the
// resulting MemoryContext. A failed Research produces no partial
// context: the caller sees the error, never a half-built result.
func (s *Service) Research(ctx context.Context, req ResearchRequest) (types.MemoryContext, error) {
	ctx, span := tracer.Start(ctx, "service.Research", trace.WithAttributes(
		attribute.String("owner", req.Owner),
	))
	defer span.End()

	opts := mergeOptions(req.Options)

	mc, err := s.research.Run(ctx, req.Owner, req.QueryText, opts)
	if err != nil {
		span.RecordError(err)
		return types.MemoryContext{}, fmt.Errorf("service: research: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordResearchContextTokens(mc.TotalTokens)
	}

	s.logger.Debug("research completed",
		zap.String("owner", req.Owner),
		zap.Int("pages", len(mc.Pages)),
		zap.Int("iterations", mc.IterationsPerformed),
		zap.Int("total_tokens", mc.TotalTokens),
	)

	return mc, nil
}

// Forget deletes pages for req.Owner. Exactly one selection mode applies,
// per ForgetRequest's precedence: All, then PageIDs, then Before. A
// PageIDs forget deletes each id independently (no transaction); a
// partial failure may leave some deletions applied.
func (s *Service) Forget(ctx context.Context, req ForgetRequest) error {
	ctx, span := tracer.Start(ctx, "service.Forget", trace.WithAttributes(
		attribute.String("owner", req.Owner),
	))
	defer span.End()

	switch {
	case req.All:
		if err := s.store.DeleteByOwner(ctx, req.Owner); err != nil {
			span.RecordError(err)
			return fmt.Errorf("service: forget: delete by owner: %w", err)
		}
	case len(req.PageIDs) > 0:
		var firstErr error
		for _, id := range req.PageIDs {
			if err := s.store.DeletePage(ctx, id); err != nil {
				span.RecordError(err)
				s.logger.Warn("forget: failed to delete page", zap.String("page_id", id), zap.Error(err))
				if firstErr == nil {
					firstErr = err
				}
			}
		}
		if firstErr != nil {
			return fmt.Errorf("service: forget: delete pages: %w", firstErr)
		}
	case !req.Before.IsZero():
		if _, err := s.store.DeleteBefore(ctx, req.Before, req.Owner); err != nil {
			span.RecordError(err)
			return fmt.Errorf("service: forget: delete before: %w", err)
		}
	default:
		return types.Invalidf("forget: exactly one of All, PageIDs, or Before must be set")
	}

	return nil
}

// mergeOptions fills zero-valued fields of opts from
// types.DefaultResearchOptions, so callers only need to override what
// they care about.
func mergeOptions(opts types.ResearchOptions) types.ResearchOptions {
	defaults := types.DefaultResearchOptions()
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = defaults.MaxIterations
	}
	if opts.MaxPagesPerIteration <= 0 {
		opts.MaxPagesPerIteration = defaults.MaxPagesPerIteration
	}
	if opts.MaxContextTokens <= 0 {
		opts.MaxContextTokens = defaults.MaxContextTokens
	}
	if opts.MinRelevanceScore <= 0 {
		opts.MinRelevanceScore = defaults.MinRelevanceScore
	}
	return opts
}
