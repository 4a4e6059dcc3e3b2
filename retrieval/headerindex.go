package retrieval

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/jitmemory/jitmemory/store"
	"github.com/jitmemory/jitmemory/types"
)

// HeaderIndexRetrieverName is the public retriever name reported on every
// result C4 produces.
const HeaderIndexRetrieverName = "page_index"

// HeaderIndexRetriever is C4: a case-insensitive substring match over the
// headers array of abstracts. Matches are deterministic, so every result
// carries a fixed score of 1.0 rather than a similarity measure.
type HeaderIndexRetriever struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewHeaderIndexRetriever builds C4 over db.
func NewHeaderIndexRetriever(db *gorm.DB, logger *zap.Logger) *HeaderIndexRetriever {
	return &HeaderIndexRetriever{
		db:     db,
		logger: logger.With(zap.String("component", "retriever"), zap.String("retriever", HeaderIndexRetrieverName)),
	}
}

// Name implements Retriever.
func (r *HeaderIndexRetriever) Name() string { return HeaderIndexRetrieverName }

// Retrieve implements Retriever. query.QueryText is matched as a
// case-insensitive substring against each abstract's headers.
func (r *HeaderIndexRetriever) Retrieve(ctx context.Context, query types.RetrievalQuery) ([]types.RetrievalResult, error) {
	if query.MaxResults <= 0 {
		return nil, nil
	}
	needle := strings.ToLower(strings.TrimSpace(query.QueryText))
	if needle == "" {
		return nil, nil
	}

	var rows []store.AbstractRow
	if err := r.db.WithContext(ctx).Where("owner = ?", query.Owner).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("retrieval: header index search: %w", err)
	}

	out := make([]types.RetrievalResult, 0, query.MaxResults)
	for _, row := range rows {
		if query.Excludes(row.PageID) {
			continue
		}
		headers := store.DecodeHeaders(row.Headers)
		matched := firstMatchingHeader(headers, needle)
		if matched == "" {
			continue
		}
		out = append(out, types.RetrievalResult{
			PageID:        row.PageID,
			Score:         1.0,
			RetrieverName: HeaderIndexRetrieverName,
			MatchedHeader: matched,
		})
		if len(out) >= query.MaxResults {
			break
		}
	}
	return out, nil
}

func firstMatchingHeader(headers []string, lowerNeedle string) string {
	for _, h := range headers {
		if strings.Contains(strings.ToLower(h), lowerNeedle) {
			return h
		}
	}
	return ""
}
