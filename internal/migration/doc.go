/*
Package migration provides schema migration management for the memory
service's postgres and sqlite backends, built on golang-migrate.

# Overview

Dialect-specific SQL migration files are embedded via embed.FS and run
through the golang-migrate engine, giving versioned schema changes:
forward migration, rollback, step-by-step execution, jumping to a
specific version, and forcing the recorded version after a manual fix.

# Core types

  - Migrator: the migration interface — Up/Down/DownAll/Steps/Goto/
    Force/Version/Status/Info/Close.
  - DefaultMigrator: the default Migrator, wrapping a golang-migrate
    instance and its database connection.
  - Config: migration configuration — database type, connection URL,
    migrations table name, lock timeout.
  - DatabaseType: postgres or sqlite.
  - MigrationStatus / MigrationInfo: per-migration and summary status.
  - CLI: a terminal-facing wrapper around Migrator with formatted output.

# Capabilities

  - Multi-database support: DatabaseType plus the embedded SQL tree for
    that dialect.
  - Factory functions: NewMigratorFromConfig / NewMigratorFromStoreConfig /
    NewMigratorFromURL build a migrator from different configuration
    sources.
  - CLI integration: RunUp/RunDown/RunStatus/RunInfo and friends.
  - Helpers: ParseDatabaseType parses a dialect string, BuildDatabaseURL
    assembles a dialect-appropriate connection URL.
*/
package migration
