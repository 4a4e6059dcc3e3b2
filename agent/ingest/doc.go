// Package ingest implements the Memory Agent (C5): it turns one
// conversation turn into a durable (page, abstract) pair. The formatting
// and parsing performed here run off the user-critical path; the only
// blocking operations are the embedding and completion calls and the
// final atomic store write, all driven by the service facade.
package ingest
