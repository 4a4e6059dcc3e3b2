package migration

import (
	"fmt"

	appconfig "github.com/jitmemory/jitmemory/config"
)

// NewMigratorFromConfig creates a new migrator from application configuration
func NewMigratorFromConfig(cfg *appconfig.Config) (*DefaultMigrator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	return NewMigratorFromStoreConfig(cfg.Store)
}

// NewMigratorFromStoreConfig creates a new migrator from store configuration
func NewMigratorFromStoreConfig(storeCfg appconfig.StoreConfig) (*DefaultMigrator, error) {
	dbType, err := ParseDatabaseType(storeCfg.Driver)
	if err != nil {
		return nil, fmt.Errorf("invalid database type: %w", err)
	}

	var dbURL string
	switch dbType {
	case DatabaseTypePostgres:
		dbURL = BuildDatabaseURL(
			dbType,
			storeCfg.Host,
			storeCfg.Port,
			storeCfg.Name,
			storeCfg.User,
			storeCfg.Password,
			storeCfg.SSLMode,
		)
	case DatabaseTypeSQLite:
		// For SQLite, Name holds the file path (or ":memory:").
		dbURL = BuildDatabaseURL(dbType, "", 0, storeCfg.Name, "", "", "")
	default:
		return nil, fmt.Errorf("unsupported database type: %s", dbType)
	}

	migCfg := &Config{
		DatabaseType: dbType,
		DatabaseURL:  dbURL,
		TableName:    "schema_migrations",
	}

	return NewMigrator(migCfg)
}

// NewMigratorFromURL creates a new migrator from a database URL
func NewMigratorFromURL(dbType, dbURL string) (*DefaultMigrator, error) {
	dt, err := ParseDatabaseType(dbType)
	if err != nil {
		return nil, err
	}

	return NewMigrator(&Config{
		DatabaseType: dt,
		DatabaseURL:  dbURL,
		TableName:    "schema_migrations",
	})
}
