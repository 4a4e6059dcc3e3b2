package store

import (
	"encoding/json"
	"strings"
	"time"
)

// PageRow is the gorm model backing the pages table.
type PageRow struct {
	ID         string    `gorm:"column:id;primaryKey"`
	Owner      string    `gorm:"column:owner;index"`
	Content    string    `gorm:"column:content"`
	TokenCount int       `gorm:"column:token_count"`
	Embedding  Vector    `gorm:"column:embedding;type:text"`
	Metadata   string    `gorm:"column:metadata"` // JSON-encoded map[string]string, empty when absent
	CreatedAt  time.Time `gorm:"column:created_at"`
}

// TableName pins the gorm model to the migration-managed table name.
func (PageRow) TableName() string { return "pages" }

// AbstractRow is the gorm model backing the abstracts table.
type AbstractRow struct {
	PageID           string    `gorm:"column:page_id;primaryKey"`
	Owner            string    `gorm:"column:owner;index"`
	Summary          string    `gorm:"column:summary"`
	Headers          string    `gorm:"column:headers"` // JSON-encoded []string
	SummaryEmbedding Vector    `gorm:"column:summary_embedding;type:text"`
	CreatedAt        time.Time `gorm:"column:created_at"`
}

// TableName pins the gorm model to the migration-managed table name.
func (AbstractRow) TableName() string { return "abstracts" }

func encodeMetadata(m map[string]string) string {
	if len(m) == 0 {
		return ""
	}
	b, err := json.Marshal(m)
	if err != nil {
		return ""
	}
	return string(b)
}

func decodeMetadata(s string) map[string]string {
	if s == "" {
		return nil
	}
	var m map[string]string
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil
	}
	return m
}

// EncodeHeaders formats headers as a Postgres text-array literal
// ("{h1,h2}"). Headers are short keyword strings, so no escaping of commas
// or braces is attempted; this is the same representation both the
// Postgres TEXT[] column and the SQLite TEXT column store. Exported so
// other packages (the header-index retriever) decode/encode the same
// representation without duplicating the format.
func EncodeHeaders(h []string) string {
	if len(h) == 0 {
		return "{}"
	}
	return "{" + strings.Join(h, ",") + "}"
}

// DecodeHeaders parses the Postgres text-array literal format produced by
// EncodeHeaders.
func DecodeHeaders(s string) []string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "{")
	s = strings.TrimSuffix(s, "}")
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
