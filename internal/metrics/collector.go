// Package metrics provides internal metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Collector holds every Prometheus vector the memory service records.
type Collector struct {
	// Ingest (Memory Agent) metrics.
	ingestTotal    *prometheus.CounterVec
	ingestDuration *prometheus.HistogramVec
	ingestTokens   *prometheus.CounterVec

	// Retrieval (keyword/vector/header-index) metrics.
	retrievalTotal    *prometheus.CounterVec
	retrievalDuration *prometheus.HistogramVec
	retrievalResults  *prometheus.HistogramVec

	// Research-loop (Plan/Search/Integrate/Reflect) metrics.
	researchIterations *prometheus.CounterVec
	researchDuration   *prometheus.HistogramVec
	researchTokens     *prometheus.HistogramVec

	// Store metrics.
	storeOpTotal    *prometheus.CounterVec
	storeOpDuration *prometheus.HistogramVec

	// Owner-stats cache metrics.
	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec

	// Database pool metrics.
	dbConnectionsOpen *prometheus.GaugeVec
	dbConnectionsIdle *prometheus.GaugeVec
	dbQueryDuration   *prometheus.HistogramVec

	logger *zap.Logger
}

// NewCollector builds and registers every metric under namespace.
func NewCollector(namespace string, logger *zap.Logger) *Collector {
	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	c.ingestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_requests_total",
			Help:      "Total number of memorize calls",
		},
		[]string{"status"},
	)

	c.ingestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ingest_duration_seconds",
			Help:      "Memorize call duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{},
	)

	c.ingestTokens = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_tokens_total",
			Help:      "Total tokens counted across ingested pages",
		},
		[]string{},
	)

	c.retrievalTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retrieval_requests_total",
			Help:      "Total number of retriever invocations",
		},
		[]string{"retriever", "status"},
	)

	c.retrievalDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "retrieval_duration_seconds",
			Help:      "Retriever invocation duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"retriever"},
	)

	c.retrievalResults = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "retrieval_results_returned",
			Help:      "Number of results returned per retriever invocation",
			Buckets:   prometheus.LinearBuckets(0, 5, 10),
		},
		[]string{"retriever"},
	)

	c.researchIterations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "research_iterations_total",
			Help:      "Total number of research-loop phase executions",
		},
		[]string{"phase", "status"},
	)

	c.researchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "research_phase_duration_seconds",
			Help:      "Research-loop phase duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"phase"},
	)

	c.researchTokens = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "research_context_tokens",
			Help:      "Total tokens admitted into a research call's context",
			Buckets:   prometheus.LinearBuckets(0, 1000, 10),
		},
		[]string{},
	)

	c.storeOpTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_operations_total",
			Help:      "Total number of store operations",
		},
		[]string{"operation", "status"},
	)

	c.storeOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_operation_duration_seconds",
			Help:      "Store operation duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	c.cacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Total number of cache hits",
		},
		[]string{"cache_type"},
	)

	c.cacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	c.dbConnectionsOpen = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_connections_open",
			Help:      "Number of open database connections",
		},
		[]string{"database"},
	)

	c.dbConnectionsIdle = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_connections_idle",
			Help:      "Number of idle database connections",
		},
		[]string{"database"},
	)

	c.dbQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "db_query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"database", "operation"},
	)

	logger.Info("metrics collector initialized", zap.String("namespace", namespace))

	return c
}

// RecordIngest records one Memorize call.
func (c *Collector) RecordIngest(status string, duration time.Duration, tokens int) {
	c.ingestTotal.WithLabelValues(status).Inc()
	c.ingestDuration.WithLabelValues().Observe(duration.Seconds())
	c.ingestTokens.WithLabelValues().Add(float64(tokens))
}

// RecordRetrieval records one retriever invocation.
func (c *Collector) RecordRetrieval(retriever, status string, duration time.Duration, resultCount int) {
	c.retrievalTotal.WithLabelValues(retriever, status).Inc()
	c.retrievalDuration.WithLabelValues(retriever).Observe(duration.Seconds())
	c.retrievalResults.WithLabelValues(retriever).Observe(float64(resultCount))
}

// RecordResearchPhase records one phase of one research-loop iteration.
func (c *Collector) RecordResearchPhase(phase, status string, duration time.Duration) {
	c.researchIterations.WithLabelValues(phase, status).Inc()
	c.researchDuration.WithLabelValues(phase).Observe(duration.Seconds())
}

// RecordResearchContextTokens records the final token total admitted
// into a completed research call's context.
func (c *Collector) RecordResearchContextTokens(tokens int) {
	c.researchTokens.WithLabelValues().Observe(float64(tokens))
}

// RecordStoreOp records one store operation.
func (c *Collector) RecordStoreOp(operation, status string, duration time.Duration) {
	c.storeOpTotal.WithLabelValues(operation, status).Inc()
	c.storeOpDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordCacheHit records an owner-stats cache hit.
func (c *Collector) RecordCacheHit(cacheType string) {
	c.cacheHits.WithLabelValues(cacheType).Inc()
}

// RecordCacheMiss records an owner-stats cache miss.
func (c *Collector) RecordCacheMiss(cacheType string) {
	c.cacheMisses.WithLabelValues(cacheType).Inc()
}

// RecordDBConnections records the database pool's current connection
// counts.
func (c *Collector) RecordDBConnections(database string, open, idle int) {
	c.dbConnectionsOpen.WithLabelValues(database).Set(float64(open))
	c.dbConnectionsIdle.WithLabelValues(database).Set(float64(idle))
}

// RecordDBQuery records one database query's duration.
func (c *Collector) RecordDBQuery(database, operation string, duration time.Duration) {
	c.dbQueryDuration.WithLabelValues(database, operation).Observe(duration.Seconds())
}
