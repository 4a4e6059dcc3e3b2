// Package retrieval implements the hybrid retrieval substrate (C2-C4): the
// keyword, vector, and header-index retrievers the research loop fans out
// to on every search phase. Each retriever is owner-scoped, bounded by
// MaxResults and MinScore, and reports its findings through the shared
// types.RetrievalResult shape so the loop can merge across backends
// without per-retriever special casing.
package retrieval
