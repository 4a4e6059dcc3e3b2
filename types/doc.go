// Package types defines the shared data model for the memory service:
// pages and abstracts persisted by the store, the conversation turns fed to
// ingest, and the query/result contracts the retrievers and research loop
// pass between each other.
package types
