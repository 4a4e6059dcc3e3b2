package types

// Plan is the parsed form of the LLM's per-iteration search directive. It
// follows this line-oriented grammar:
//
//	STRATEGY: <free text>
//	SEARCH_QUERY: <free text>
//	USE_KEYWORD: true|false
//	USE_VECTOR: true|false
//	USE_INDEX: true|false
//	TARGET_HEADERS: <comma-separated list, or "none">
//	COMPLETE: true|false
//
// Missing fields take their zero value; SearchQuery defaults to the
// sentinel "general search" to avoid issuing an empty query.
type Plan struct {
	Strategy      string
	SearchQuery   string
	UseKeyword    bool
	UseVector     bool
	UseIndex      bool
	TargetHeaders []string
	Complete      bool
}

// DefaultSearchQuery is substituted when the plan response omits
// SEARCH_QUERY entirely.
const DefaultSearchQuery = "general search"

// Abstraction is the parsed form of the LLM's abstract response:
//
//	SUMMARY: <one line of text>
//	HEADERS:
//	- <header 1>
//	- <header 2>
//
// A response that fails to parse still yields an Abstraction with an empty
// Summary and empty Headers; the write proceeds regardless.
type Abstraction struct {
	Summary string
	Headers []string
}
