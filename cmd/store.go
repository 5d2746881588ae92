package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/zeyadhassan/codepulse/internal/contract"
	"github.com/zeyadhassan/codepulse/internal/iocache"
	"github.com/zeyadhassan/codepulse/schema"
)

// storeConfig loads and validates only the store backend settings.
func storeConfig() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend := schema.DatabaseBackend(viper.GetString("store-backend"))
	connStr := viper.GetString("store-db-connect")

	// Basic validation for database backends
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return fmt.Errorf("invalid store backend '%s'. must be sqlite, mysql, postgresql, none", backend)
	}
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	cfg.StoreBackend = backend
	cfg.StoreDBConnect = connStr
	slog.SetDefault(contract.NewLogger(viper.GetBool("verbose")))
	slog.Debug("store configuration ready", "backend", backend)
	return nil
}

// storeSetup loads minimal configuration and opens the metrics store.
// This is used by commands that need store access without full shared setup.
func storeSetup(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.LocalFlags()); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}
	if err := storeConfig(); err != nil {
		return err
	}
	if err := iocache.InitStores(cfg.StoreBackend, cfg.StoreDBConnect); err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	return nil
}

// storeMigrateSetup validates the store settings without opening the store,
// allowing migrations to run on a fresh database.
func storeMigrateSetup(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.LocalFlags()); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}
	if err := storeConfig(); err != nil {
		return err
	}
	// For SQLite backend with empty connection string, use default path
	if cfg.StoreBackend == schema.SQLiteBackend && cfg.StoreDBConnect == "" {
		cfg.StoreDBConnect = contract.GetDBFilePath()
	}
	return nil
}

// storeCmd focused on metrics store management.
//
// Note: Store subcommands use minimal initialization (storeSetup) instead of
// the full sharedSetup used by analysis commands. This avoids workspace
// validation for simple store operations.
var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the metrics store",
	Long: `Manage the key-value store that keeps project metrics and the daily history.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (in-memory)

Subcommands:
  status  - Show store statistics and connection info
  clear   - Remove the store and all recorded data
  migrate - Run database schema migrations

Examples:
  # Check store status
  codepulse store status

  # Use PostgreSQL (set connection string via env variable)
  CODEPULSE_STORE_BACKEND=postgresql CODEPULSE_STORE_DB_CONNECT="host=... dbname=..." codepulse store status`,
}

// storeStatusCmd shows store status.
var storeStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display store statistics and connection details",
	Long: `Show the backend, connection state, number of stored entries,
last and oldest write times, table size and applied migration version.

Examples:
  codepulse store status`,
	PreRunE: storeSetup,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := iocache.Manager.GetMetricsStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get store status", err)
		}
		iocache.PrintStoreStatus(os.Stdout, status)

		if cfg.StoreBackend == schema.NoneBackend {
			return
		}
		connStr := cfg.StoreDBConnect
		if cfg.StoreBackend == schema.SQLiteBackend && connStr == "" {
			connStr = contract.GetDBFilePath()
		}
		v, dirty, err := iocache.StoreVersion(cfg.StoreBackend, connStr)
		if err != nil {
			contract.LogWarn("Failed to read schema version", err)
			return
		}
		fmt.Printf("Schema Version: %d (dirty: %t)\n", v, dirty)
	},
}

// storeClearCmd wipes the store.
var storeClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all recorded metrics and history from the backend",
	Long: `Delete the metrics store from the configured backend.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the state and migration tables

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  codepulse export --output-file backup
  codepulse store clear`,
	PreRunE: storeMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		dbFile := cfg.StoreDBConnect
		if cfg.StoreBackend != schema.SQLiteBackend {
			dbFile = ""
		}
		if err := iocache.ClearStore(cfg.StoreBackend, dbFile, cfg.StoreDBConnect); err != nil {
			contract.LogFatal("Failed to clear store", err)
		}
		fmt.Println("Store cleared successfully.")
	},
}

// storeMigrateCmd runs database migrations for the metrics store.
var storeMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the metrics store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  codepulse store migrate

  # Rollback to initial state
  codepulse store migrate --target-version 0`,
	PreRunE: storeMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateStore(cfg.StoreBackend, cfg.StoreDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}

// exportCmd exports recorded metrics to Parquet files.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export recorded metrics to Parquet for BI tools and analytics",
	Long: `Export tracked file metrics and the daily history to Parquet.

Writes two files:
- <output-file>.file_metrics.parquet
- <output-file>.history.parquet

Requires: --output-file parameter

Examples:
  codepulse export --output-file codepulse-data
  duckdb -c "SELECT * FROM read_parquet('codepulse-data.history.parquet')"`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		project := collector.GetProjectMetrics()
		history := collector.GetHistoricalMetrics()
		if err := iocache.ExecuteMetricsExport(os.Stdout, cfg.OutputFile, project, history); err != nil {
			contract.LogFatal("Failed to export metrics", err)
		}
	},
}
