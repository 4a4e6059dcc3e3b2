package retrieval

import (
	"context"

	"github.com/jitmemory/jitmemory/types"
)

// Retriever is the common boundary C2, C3, and C4 implement. Callers pass
// an owner-scoped query and get back up to query.MaxResults results,
// sorted by Score descending, with scores at or above query.MinScore.
type Retriever interface {
	// Retrieve executes one search against the store. An error the
	// implementation does not recover from itself is returned to the
	// caller (the keyword retriever instead answers a failed backend
	// query with an empty result); the research loop fails the whole
	// search phase on any returned error.
	Retrieve(ctx context.Context, query types.RetrievalQuery) ([]types.RetrievalResult, error)

	// Name is the stable retriever identifier attached to RetrievalResult
	// when the retriever itself doesn't compute a more specific one.
	Name() string
}
