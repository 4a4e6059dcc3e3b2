package types

import "time"

// Page is the primary record of a memorized conversation turn. Content is
// verbatim, deterministic formatting of the turn that produced it; a page's
// id and owner are immutable once assigned.
type Page struct {
	ID         string            `json:"id"`
	Owner      string            `json:"owner"`
	Content    string            `json:"content"`
	TokenCount int               `json:"token_count"`
	Embedding  []float64         `json:"embedding,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

// Abstract is the derived index record paired 1:1 with a page. It shares
// the page's id as its own primary key; deleting the page cascades.
type Abstract struct {
	PageID          string    `json:"page_id"`
	Owner           string    `json:"owner"`
	Summary         string    `json:"summary"`
	Headers         []string  `json:"headers"`
	SummaryEmbedding []float64 `json:"summary_embedding,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// OwnerStats summarizes one owner's stored pages. Min/MaxCreatedAt are the
// zero time when the owner has no pages; callers should check Count first.
type OwnerStats struct {
	Owner        string
	Count        int
	TotalTokens  int
	MinCreatedAt time.Time
	MaxCreatedAt time.Time
}
