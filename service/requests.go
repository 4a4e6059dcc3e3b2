package service

import (
	"time"

	"github.com/jitmemory/jitmemory/types"
)

// MemorizeRequest carries one conversation turn to be durably ingested.
type MemorizeRequest struct {
	Turn types.ConversationTurn
}

// ResearchRequest carries one recall query. Options is merged over
// types.DefaultResearchOptions: a zero-value field in Options falls back
// to the default, so callers only need to set the fields they override.
type ResearchRequest struct {
	Owner     string
	QueryText string
	Options   types.ResearchOptions
}

// ForgetRequest carries one deletion request. Exactly one selection mode
// should be populated: All, PageIDs, or Before. When more than one is
// set, All takes precedence over PageIDs, which takes precedence over
// Before.
type ForgetRequest struct {
	Owner   string
	All     bool
	PageIDs []string
	Before  time.Time
}
