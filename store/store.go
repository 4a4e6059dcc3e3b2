package store

import (
	"context"
	"time"

	"github.com/jitmemory/jitmemory/types"
)

// Store is the durable, owner-scoped, transactional persistence contract
// for pages and abstracts (C1). Implementations surface transport/storage
// errors to the caller unmodified and never retry internally.
type Store interface {
	// GetPage returns the page with id, or (types.Page{}, false, nil) if
	// absent. No owner check is performed; callers enforce scoping.
	GetPage(ctx context.Context, id string) (types.Page, bool, error)

	// GetPagesByIDs returns the pages matching ids. Order is not
	// guaranteed; callers must re-order. Missing ids are silently omitted.
	GetPagesByIDs(ctx context.Context, ids []string) ([]types.Page, error)

	// StorePage upserts page by id. On conflict, content/token-count/
	// embedding/metadata are replaced; owner and CreatedAt are preserved.
	StorePage(ctx context.Context, page types.Page) error

	// StoreAbstract upserts abstract by page id, replacing summary,
	// headers, and summary embedding.
	StoreAbstract(ctx context.Context, abstract types.Abstract) error

	// StorePageAndAbstract writes both records in a single transaction,
	// rolling back on any failure. This is the ingest write path.
	StorePageAndAbstract(ctx context.Context, page types.Page, abstract types.Abstract) error

	// DeletePage removes the page with id, cascading to its abstract.
	DeletePage(ctx context.Context, id string) error

	// DeleteByOwner removes every page (and cascading abstract) for owner.
	DeleteByOwner(ctx context.Context, owner string) error

	// CleanupExpired removes pages strictly older than now-maxAge, scoped
	// to owner when non-empty, and returns the count deleted.
	CleanupExpired(ctx context.Context, maxAge time.Duration, owner string) (int64, error)

	// DeleteBefore removes pages created strictly before cutoff, scoped to
	// owner when non-empty, and returns the count deleted.
	DeleteBefore(ctx context.Context, cutoff time.Time, owner string) (int64, error)

	// StatsByOwner summarizes owner's stored pages.
	StatsByOwner(ctx context.Context, owner string) (types.OwnerStats, error)

	// Close releases underlying connections.
	Close() error
}
