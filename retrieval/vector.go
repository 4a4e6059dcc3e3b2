package retrieval

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/jitmemory/jitmemory/store"
	"github.com/jitmemory/jitmemory/types"
)

// VectorRetrieverName is the public retriever name reported on every
// result C3 produces.
const VectorRetrieverName = "vector_semantic"

// VectorRetriever is C3: cosine-similarity nearest neighbour search over
// page embeddings. On Postgres it delegates the distance computation to
// the pgvector extension (exercising the HNSW index the migration
// package builds); on any other dialect it falls back to an in-memory
// scan, which is correct but not sublinear.
type VectorRetriever struct {
	db      *gorm.DB
	dialect string
	logger  *zap.Logger
}

// NewVectorRetriever builds C3 over db.
func NewVectorRetriever(db *gorm.DB, logger *zap.Logger) *VectorRetriever {
	return &VectorRetriever{
		db:      db,
		dialect: db.Dialector.Name(),
		logger:  logger.With(zap.String("component", "retriever"), zap.String("retriever", VectorRetrieverName)),
	}
}

// Name implements Retriever.
func (r *VectorRetriever) Name() string { return VectorRetrieverName }

// Retrieve implements Retriever. QueryEmbedding is required.
func (r *VectorRetriever) Retrieve(ctx context.Context, query types.RetrievalQuery) ([]types.RetrievalResult, error) {
	if len(query.QueryEmbedding) == 0 {
		return nil, types.Invalidf("vector retriever requires a query embedding")
	}
	if query.MaxResults <= 0 {
		return nil, nil
	}

	if r.dialect == "postgres" {
		results, err := r.retrievePostgres(ctx, query)
		if err != nil {
			r.logger.Warn("postgres vector search failed, falling back to in-memory", zap.Error(err))
			return r.retrieveInMemory(ctx, query)
		}
		return results, nil
	}
	return r.retrieveInMemory(ctx, query)
}

func (r *VectorRetriever) retrievePostgres(ctx context.Context, query types.RetrievalQuery) ([]types.RetrievalResult, error) {
	literal := vectorLiteral(query.QueryEmbedding)

	sb := strings.Builder{}
	sb.WriteString("SELECT id, 1 - (embedding <=> ?) AS score FROM pages WHERE owner = ? AND embedding IS NOT NULL")
	args := []any{literal, query.Owner}

	if ids := excludedIDs(query); len(ids) > 0 {
		sb.WriteString(" AND id NOT IN ?")
		args = append(args, ids)
	}
	sb.WriteString(" ORDER BY embedding <=> ? LIMIT ?")
	args = append(args, literal, query.MaxResults)

	var rows []struct {
		ID    string
		Score float64
	}
	if err := r.db.WithContext(ctx).Raw(sb.String(), args...).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("retrieval: vector search: %w", err)
	}

	out := make([]types.RetrievalResult, 0, len(rows))
	for _, row := range rows {
		if row.Score < query.MinScore {
			continue
		}
		out = append(out, types.RetrievalResult{
			PageID:        row.ID,
			Score:         row.Score,
			RetrieverName: VectorRetrieverName,
		})
	}
	return out, nil
}

func (r *VectorRetriever) retrieveInMemory(ctx context.Context, query types.RetrievalQuery) ([]types.RetrievalResult, error) {
	var rows []store.PageRow
	tx := r.db.WithContext(ctx).Where("owner = ? AND embedding IS NOT NULL", query.Owner)
	if err := tx.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("retrieval: vector search: %w", err)
	}

	type scored struct {
		id    string
		score float64
	}
	candidates := make([]scored, 0, len(rows))
	for _, row := range rows {
		if query.Excludes(row.ID) {
			continue
		}
		vec := row.Embedding.ToFloat64()
		if len(vec) == 0 {
			continue
		}
		sim := cosineSimilarity(query.QueryEmbedding, vec)
		if sim < query.MinScore {
			continue
		}
		candidates = append(candidates, scored{id: row.ID, score: sim})
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })
	if len(candidates) > query.MaxResults {
		candidates = candidates[:query.MaxResults]
	}

	out := make([]types.RetrievalResult, len(candidates))
	for i, c := range candidates {
		out[i] = types.RetrievalResult{
			PageID:        c.id,
			Score:         c.score,
			RetrieverName: VectorRetrieverName,
		}
	}
	return out, nil
}

func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func vectorLiteral(v []float64) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
	}
	b.WriteByte(']')
	return b.String()
}

func excludedIDs(query types.RetrievalQuery) []string {
	if len(query.ExcludePageIDs) == 0 {
		return nil
	}
	ids := make([]string, 0, len(query.ExcludePageIDs))
	for id := range query.ExcludePageIDs {
		ids = append(ids, id)
	}
	return ids
}
