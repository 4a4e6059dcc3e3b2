package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/jitmemory/jitmemory/internal/database"
	"github.com/jitmemory/jitmemory/types"
)

// GormStore is the production Store implementation, backed by gorm over
// Postgres or SQLite.
type GormStore struct {
	pool   *database.PoolManager
	db     *gorm.DB
	logger *zap.Logger
}

// NewGormStore wraps a pool-managed *gorm.DB. Schema creation is the
// migration package's job, not this constructor's.
func NewGormStore(pool *database.PoolManager, logger *zap.Logger) *GormStore {
	return &GormStore{
		pool:   pool,
		db:     pool.DB(),
		logger: logger.With(zap.String("component", "store")),
	}
}

// DB exposes the underlying *gorm.DB for callers (the keyword retriever's
// backend-detection probe) that need dialect-specific raw queries this
// interface deliberately doesn't expose.
func (s *GormStore) DB() *gorm.DB { return s.db }

func toRow(p types.Page) PageRow {
	return PageRow{
		ID:         p.ID,
		Owner:      p.Owner,
		Content:    p.Content,
		TokenCount: p.TokenCount,
		Embedding:  FromFloat64(p.Embedding),
		Metadata:   encodeMetadata(p.Metadata),
		CreatedAt:  p.CreatedAt,
	}
}

func fromRow(r PageRow) types.Page {
	return types.Page{
		ID:         r.ID,
		Owner:      r.Owner,
		Content:    r.Content,
		TokenCount: r.TokenCount,
		Embedding:  r.Embedding.ToFloat64(),
		Metadata:   decodeMetadata(r.Metadata),
		CreatedAt:  r.CreatedAt,
	}
}

func toAbstractRow(a types.Abstract) AbstractRow {
	return AbstractRow{
		PageID:           a.PageID,
		Owner:            a.Owner,
		Summary:          a.Summary,
		Headers:          EncodeHeaders(a.Headers),
		SummaryEmbedding: FromFloat64(a.SummaryEmbedding),
		CreatedAt:        a.CreatedAt,
	}
}

func fromAbstractRow(r AbstractRow) types.Abstract {
	return types.Abstract{
		PageID:           r.PageID,
		Owner:            r.Owner,
		Summary:          r.Summary,
		Headers:          DecodeHeaders(r.Headers),
		SummaryEmbedding: r.SummaryEmbedding.ToFloat64(),
		CreatedAt:        r.CreatedAt,
	}
}

// GetPage implements Store.
func (s *GormStore) GetPage(ctx context.Context, id string) (types.Page, bool, error) {
	var row PageRow
	err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return types.Page{}, false, nil
	}
	if err != nil {
		return types.Page{}, false, fmt.Errorf("store: get page: %w", err)
	}
	return fromRow(row), true, nil
}

// GetPagesByIDs implements Store.
func (s *GormStore) GetPagesByIDs(ctx context.Context, ids []string) ([]types.Page, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []PageRow
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("store: get pages by ids: %w", err)
	}
	pages := make([]types.Page, len(rows))
	for i, r := range rows {
		pages[i] = fromRow(r)
	}
	return pages, nil
}

// StorePage implements Store: upsert by id, preserving owner and
// created_at on conflict.
func (s *GormStore) StorePage(ctx context.Context, page types.Page) error {
	if page.CreatedAt.IsZero() {
		page.CreatedAt = time.Now().UTC()
	}
	row := toRow(page)

	return s.pool.WithTransaction(ctx, func(tx *gorm.DB) error {
		var existing PageRow
		err := tx.First(&existing, "id = ?", row.ID).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("store: insert page: %w", err)
			}
			return nil
		case err != nil:
			return fmt.Errorf("store: lookup page: %w", err)
		}

		row.Owner = existing.Owner
		row.CreatedAt = existing.CreatedAt
		if err := tx.Model(&PageRow{}).Where("id = ?", row.ID).Updates(map[string]any{
			"content":     row.Content,
			"token_count": row.TokenCount,
			"embedding":   row.Embedding,
			"metadata":    row.Metadata,
		}).Error; err != nil {
			return fmt.Errorf("store: update page: %w", err)
		}
		return nil
	})
}

// StoreAbstract implements Store: upsert by page id.
func (s *GormStore) StoreAbstract(ctx context.Context, abstract types.Abstract) error {
	if abstract.CreatedAt.IsZero() {
		abstract.CreatedAt = time.Now().UTC()
	}
	row := toAbstractRow(abstract)

	return s.pool.WithTransaction(ctx, func(tx *gorm.DB) error {
		var existing AbstractRow
		err := tx.First(&existing, "page_id = ?", row.PageID).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("store: insert abstract: %w", err)
			}
			return nil
		case err != nil:
			return fmt.Errorf("store: lookup abstract: %w", err)
		}

		if err := tx.Model(&AbstractRow{}).Where("page_id = ?", row.PageID).Updates(map[string]any{
			"summary":           row.Summary,
			"headers":           row.Headers,
			"summary_embedding": row.SummaryEmbedding,
		}).Error; err != nil {
			return fmt.Errorf("store: update abstract: %w", err)
		}
		return nil
	})
}

// StorePageAndAbstract implements Store: both records written inside one
// transaction, rolled back on any failure. This is the ingest write path.
func (s *GormStore) StorePageAndAbstract(ctx context.Context, page types.Page, abstract types.Abstract) error {
	now := time.Now().UTC()
	if page.CreatedAt.IsZero() {
		page.CreatedAt = now
	}
	if abstract.CreatedAt.IsZero() {
		abstract.CreatedAt = now
	}
	pageRow := toRow(page)
	abstractRow := toAbstractRow(abstract)

	return s.pool.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Clauses().Create(&pageRow).Error; err != nil {
			return fmt.Errorf("store: insert page: %w", err)
		}
		if err := tx.Create(&abstractRow).Error; err != nil {
			return fmt.Errorf("store: insert abstract: %w", err)
		}
		return nil
	})
}

// DeletePage implements Store. The abstract cascades via the foreign key
// (ON DELETE CASCADE), set up by the migration package.
func (s *GormStore) DeletePage(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Delete(&PageRow{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("store: delete page: %w", err)
	}
	return nil
}

// DeleteByOwner implements Store.
func (s *GormStore) DeleteByOwner(ctx context.Context, owner string) error {
	if err := s.db.WithContext(ctx).Delete(&PageRow{}, "owner = ?", owner).Error; err != nil {
		return fmt.Errorf("store: delete by owner: %w", err)
	}
	return nil
}

// CleanupExpired implements Store.
func (s *GormStore) CleanupExpired(ctx context.Context, maxAge time.Duration, owner string) (int64, error) {
	cutoff := time.Now().UTC().Add(-maxAge)
	return s.deleteOlderThan(ctx, cutoff, owner)
}

// DeleteBefore implements Store.
func (s *GormStore) DeleteBefore(ctx context.Context, cutoff time.Time, owner string) (int64, error) {
	return s.deleteOlderThan(ctx, cutoff, owner)
}

func (s *GormStore) deleteOlderThan(ctx context.Context, cutoff time.Time, owner string) (int64, error) {
	tx := s.db.WithContext(ctx).Where("created_at < ?", cutoff)
	if owner != "" {
		tx = tx.Where("owner = ?", owner)
	}
	result := tx.Delete(&PageRow{})
	if result.Error != nil {
		return 0, fmt.Errorf("store: delete older than: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// StatsByOwner implements Store.
func (s *GormStore) StatsByOwner(ctx context.Context, owner string) (types.OwnerStats, error) {
	var row struct {
		Count       int64
		TotalTokens int64
		MinCreated  *time.Time
		MaxCreated  *time.Time
	}

	err := s.db.WithContext(ctx).Model(&PageRow{}).
		Select("COUNT(*) AS count, COALESCE(SUM(token_count),0) AS total_tokens, MIN(created_at) AS min_created, MAX(created_at) AS max_created").
		Where("owner = ?", owner).
		Scan(&row).Error
	if err != nil {
		return types.OwnerStats{}, fmt.Errorf("store: stats by owner: %w", err)
	}

	stats := types.OwnerStats{
		Owner:       owner,
		Count:       int(row.Count),
		TotalTokens: int(row.TotalTokens),
	}
	if row.MinCreated != nil {
		stats.MinCreatedAt = *row.MinCreated
	}
	if row.MaxCreated != nil {
		stats.MaxCreatedAt = *row.MaxCreated
	}
	return stats, nil
}

// Close implements Store.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("store: close: %w", err)
	}
	return sqlDB.Close()
}
