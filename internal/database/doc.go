/*
Package database provides GORM-based database connection pool management,
with health checks, statistics collection, and transaction retry.

# Overview

PoolManager wraps GORM's and database/sql's connection pool configuration,
managing connection lifetime, idle reclamation, and max-connection limits
in one place. A background health check pings the connection on an
interval and logs failures via zap.

# Core types

  - PoolManager: the connection pool manager. Holds the GORM DB instance
    and the underlying sql.DB, and exposes DB(), Ping(), Stats(), Close().
  - PoolConfig: pool tuning — max idle/open connections, connection
    lifetime, idle timeout, and health check interval.
  - PoolStats: a friendlier view of the pool's runtime statistics.
  - TransactionFunc: the transaction callback type.

# Capabilities

  - Pool tuning via MaxIdleConns/MaxOpenConns/ConnMaxLifetime.
  - Background health checks via periodic PingContext, logging connection
    and idle counts.
  - Transaction management: WithTransaction runs a single transaction,
    WithTransactionRetry adds exponential-backoff retry for transient
    failures (deadlock, serialization failure, and similar).
  - GetStats returns a structured snapshot of pool metrics.
*/
package database
