// Package store provides durable, owner-scoped, transactional persistence
// for pages and abstracts (C1). It is the only shared mutable resource in
// the service: the research loop and the ingest agent read and write
// through the Store interface exclusively, never touching *gorm.DB or
// *redis.Client directly.
package store
