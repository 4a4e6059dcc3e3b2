/*
Package metrics provides Prometheus-based instrumentation for the memory
service, covering ingest, retrieval, the research loop, the store, and
the owner-stats cache.

# Overview

Collector registers and records Prometheus metrics through promauto's
auto-registration, so callers never manage a Registry by hand. Metrics
are namespaced and labeled for per-retriever and per-phase breakdowns in
Grafana or similar tooling.

# Core types

  - Collector: holds the Counter/Histogram/Gauge vectors, grouped by
    concern.

# Capabilities

  - Ingest metrics: page count, ingest duration, token counts.
  - Retrieval metrics: per-retriever request count, duration, and result
    count, labeled by retriever name.
  - Research-loop metrics: per-phase iteration count and duration,
    labeled by phase (plan/search/integrate/reflect).
  - Store metrics: per-operation count and duration.
  - Cache metrics: hit/miss counters by cache type.
  - Database metrics: open/idle connection gauges, query duration
    histogram.
*/
package metrics
