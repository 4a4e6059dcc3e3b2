package retrieval

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/jitmemory/jitmemory/types"
)

// KeywordRetrieverName is the public retriever name reported by C2.
// Individual results carry a backend-tagged RetrieverName (see
// backendTag) so callers can audit which implementation matched.
const KeywordRetrieverName = "keyword_bm25"

type keywordBackend int

const (
	backendUnset keywordBackend = iota
	backendParadeDB
	backendTantivy
	backendTokenVectorBM25
	backendNativeFTS
)

func (b keywordBackend) tag() string {
	switch b {
	case backendParadeDB:
		return "_paradedb"
	case backendTantivy:
		return "_tantivy"
	case backendTokenVectorBM25:
		return "_tokenvector"
	default:
		return "_native_fts"
	}
}

// KeywordRetriever is C2: lexical ranking over page content. It probes the
// store once for the best available scoring backend and sticks with that
// choice for the retriever's lifetime, even if a later query against it
// fails.
type KeywordRetriever struct {
	db      *gorm.DB
	dialect string
	logger  *zap.Logger

	once    sync.Once
	backend keywordBackend
}

// NewKeywordRetriever builds C2 over db.
func NewKeywordRetriever(db *gorm.DB, logger *zap.Logger) *KeywordRetriever {
	return &KeywordRetriever{
		db:      db,
		dialect: db.Dialector.Name(),
		logger:  logger.With(zap.String("component", "retriever"), zap.String("retriever", KeywordRetrieverName)),
	}
}

// Name implements Retriever.
func (r *KeywordRetriever) Name() string { return KeywordRetrieverName }

// Retrieve implements Retriever.
func (r *KeywordRetriever) Retrieve(ctx context.Context, query types.RetrievalQuery) ([]types.RetrievalResult, error) {
	if query.MaxResults <= 0 || strings.TrimSpace(query.QueryText) == "" {
		return nil, nil
	}

	r.once.Do(func() {
		r.backend = r.detectBackend(ctx)
		r.logger.Info("keyword backend detected", zap.String("backend", r.backend.tag()))
	})

	results, err := r.runQuery(ctx, r.backend, query)
	if err != nil {
		r.logger.Warn("keyword query failed, returning empty result set",
			zap.String("backend", r.backend.tag()), zap.Error(err))
		return nil, nil
	}
	return results, nil
}

// detectBackend probes pg_extension/pg_am for a BM25-capable extension, in
// spec priority order. Non-Postgres dialects (the sqlite test/embeddable
// backend) always use the native full-text fallback, backed by the FTS5
// virtual table the migration package builds.
func (r *KeywordRetriever) detectBackend(ctx context.Context) keywordBackend {
	if r.dialect != "postgres" {
		return backendNativeFTS
	}

	var extNames []string
	if err := r.db.WithContext(ctx).Raw("SELECT extname FROM pg_extension").Scan(&extNames).Error; err != nil {
		r.logger.Warn("pg_extension probe failed, using native fallback", zap.Error(err))
		return backendNativeFTS
	}
	var amNames []string
	if err := r.db.WithContext(ctx).Raw("SELECT amname FROM pg_am").Scan(&amNames).Error; err != nil {
		r.logger.Warn("pg_am probe failed, using native fallback", zap.Error(err))
		return backendNativeFTS
	}

	has := func(names []string, want string) bool {
		for _, n := range names {
			if n == want {
				return true
			}
		}
		return false
	}

	switch {
	case has(extNames, "pg_search"):
		return backendParadeDB
	case has(amNames, "tantivy"):
		return backendTantivy
	case has(extNames, "vchord_bm25"):
		return backendTokenVectorBM25
	default:
		return backendNativeFTS
	}
}

func (r *KeywordRetriever) runQuery(ctx context.Context, backend keywordBackend, query types.RetrievalQuery) ([]types.RetrievalResult, error) {
	switch backend {
	case backendParadeDB:
		return r.queryParadeDB(ctx, query)
	case backendTantivy:
		return r.queryTantivy(ctx, query)
	case backendTokenVectorBM25:
		return r.queryTokenVector(ctx, query)
	default:
		if r.dialect == "postgres" {
			return r.queryPostgresNativeFTS(ctx, query)
		}
		return r.querySQLiteFTS(ctx, query)
	}
}

type keywordRow struct {
	ID    string
	Score float64
}

func (r *KeywordRetriever) filterRows(rows []keywordRow, query types.RetrievalQuery, backend keywordBackend) []types.RetrievalResult {
	tag := backend.tag()
	out := make([]types.RetrievalResult, 0, len(rows))
	for _, row := range rows {
		if row.Score < query.MinScore {
			continue
		}
		out = append(out, types.RetrievalResult{
			PageID:        row.ID,
			Score:         row.Score,
			RetrieverName: KeywordRetrieverName + tag,
		})
	}
	return out
}

// queryParadeDB models a ParadeDB-style BM25 extension: infix operator
// "<@>" producing a negative raw score (lower is better), negated here so
// the sign matches the common convention.
func (r *KeywordRetriever) queryParadeDB(ctx context.Context, query types.RetrievalQuery) ([]types.RetrievalResult, error) {
	sb, args := keywordWhereClause(query)
	sql := fmt.Sprintf(
		"SELECT id, -(content <@> ?) AS score FROM pages WHERE %s ORDER BY content <@> ? LIMIT ?",
		sb,
	)
	args = append([]any{query.QueryText}, args...)
	args = append(args, query.QueryText, query.MaxResults)

	var rows []keywordRow
	if err := r.db.WithContext(ctx).Raw(sql, args...).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("retrieval: paradedb keyword search: %w", err)
	}
	return r.filterRows(rows, query, backendParadeDB), nil
}

// queryTantivy models a Tantivy-backed BM25 extension: infix operator
// "@@@" and a score(id) function returning a non-negative relevance,
// already in descending-is-better order.
func (r *KeywordRetriever) queryTantivy(ctx context.Context, query types.RetrievalQuery) ([]types.RetrievalResult, error) {
	sb, args := keywordWhereClause(query)
	sql := fmt.Sprintf(
		"SELECT id, score(id) AS score FROM pages WHERE content @@@ ? AND %s ORDER BY score DESC LIMIT ?",
		sb,
	)
	args = append([]any{query.QueryText}, args...)
	args = append(args, query.MaxResults)

	var rows []keywordRow
	if err := r.db.WithContext(ctx).Raw(sql, args...).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("retrieval: tantivy keyword search: %w", err)
	}
	return r.filterRows(rows, query, backendTantivy), nil
}

// queryTokenVector models a token-vector BM25 extension: a pre-built
// tokenised column compared against a query helper that tokenises the
// query string, negative raw score negated to match convention.
func (r *KeywordRetriever) queryTokenVector(ctx context.Context, query types.RetrievalQuery) ([]types.RetrievalResult, error) {
	sb, args := keywordWhereClause(query)
	sql := fmt.Sprintf(
		"SELECT id, -(content_tokens <=> bm25_tokenize(?)) AS score FROM pages WHERE %s ORDER BY score DESC LIMIT ?",
		sb,
	)
	args = append([]any{query.QueryText}, args...)
	args = append(args, query.MaxResults)

	var rows []keywordRow
	if err := r.db.WithContext(ctx).Raw(sql, args...).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("retrieval: token-vector keyword search: %w", err)
	}
	return r.filterRows(rows, query, backendTokenVectorBM25), nil
}

// queryPostgresNativeFTS is the fallback used when no BM25 extension is
// present: the built-in tsvector/ts_rank full-text ranker (a tf-idf
// variant, not true BM25).
func (r *KeywordRetriever) queryPostgresNativeFTS(ctx context.Context, query types.RetrievalQuery) ([]types.RetrievalResult, error) {
	sb, args := keywordWhereClause(query)
	sql := fmt.Sprintf(
		"SELECT id, ts_rank(content_tsv, plainto_tsquery('english', ?)) AS score FROM pages WHERE content_tsv @@ plainto_tsquery('english', ?) AND %s ORDER BY score DESC LIMIT ?",
		sb,
	)
	args = append([]any{query.QueryText, query.QueryText}, args...)
	args = append(args, query.MaxResults)

	var rows []keywordRow
	if err := r.db.WithContext(ctx).Raw(sql, args...).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("retrieval: native full-text search: %w", err)
	}
	return r.filterRows(rows, query, backendNativeFTS), nil
}

// querySQLiteFTS is the sqlite native fallback, backed by the FTS5 virtual
// table the migration package keeps synced via triggers. FTS5's bm25()
// ranking is lower-is-better, negated here for the same reason as the
// other negated backends.
func (r *KeywordRetriever) querySQLiteFTS(ctx context.Context, query types.RetrievalQuery) ([]types.RetrievalResult, error) {
	sb, args := keywordWhereClause(query)
	sql := fmt.Sprintf(
		`SELECT pages.id AS id, -bm25(pages_fts) AS score
		 FROM pages_fts
		 JOIN pages ON pages.rowid = pages_fts.rowid
		 WHERE pages_fts MATCH ? AND %s
		 ORDER BY score DESC LIMIT ?`,
		sb,
	)
	args = append([]any{query.QueryText}, args...)
	args = append(args, query.MaxResults)

	var rows []keywordRow
	if err := r.db.WithContext(ctx).Raw(sql, args...).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("retrieval: sqlite fts keyword search: %w", err)
	}
	return r.filterRows(rows, query, backendNativeFTS), nil
}

// keywordWhereClause builds the shared "owner = ? [AND id NOT IN ?]"
// predicate and its bind arguments, appended after the backend-specific
// scoring arguments.
func keywordWhereClause(query types.RetrievalQuery) (string, []any) {
	clause := "owner = ?"
	args := []any{query.Owner}
	if ids := excludedIDs(query); len(ids) > 0 {
		clause += " AND id NOT IN ?"
		args = append(args, ids)
	}
	return clause, args
}
