// Package tokenizer provides a unified token-counting interface, backed by
// either a precise tiktoken encoding or a CJK-aware character estimator, for
// token-budget accounting across ingest and the research loop.
package tokenizer
