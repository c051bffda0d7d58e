package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/huangsam/calheat/internal/contract"
	"github.com/huangsam/calheat/internal/iocache"
	"github.com/huangsam/calheat/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// runsConfig reads the backend settings used by the runs subcommands.
func runsConfig() (schema.DatabaseBackend, string, error) {
	if err := loadConfigFile(); err != nil {
		return "", "", err
	}

	backend := schema.DatabaseBackend(strings.ToLower(viper.GetString("runs-backend")))
	if backend == "" {
		backend = schema.SQLiteBackend
	}
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", "", fmt.Errorf("invalid runs backend '%s'. must be sqlite, mysql, postgresql, none", backend)
	}
	connStr := viper.GetString("runs-db-connect")

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// runsSetup loads minimal configuration needed for run store operations.
// This is used by commands that need store access without full shared setup.
func runsSetup() error {
	backend, connStr, err := runsConfig()
	if err != nil {
		return err
	}

	if err := iocache.InitStores(backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize runs: %w", err)
	}

	cfg.RunsBackend = backend
	cfg.RunsDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	return nil
}

// runsSetupWrapper wraps runsSetup to provide PreRunE for runs commands.
func runsSetupWrapper(_ *cobra.Command, _ []string) error {
	return runsSetup()
}

// runsMigrateSetup loads minimal configuration needed for migrate operations.
// This is a specialized setup that does NOT initialize stores or create tables,
// allowing migrations to run on a fresh database.
func runsMigrateSetup(_ *cobra.Command, _ []string) error {
	backend, connStr, err := runsConfig()
	if err != nil {
		return err
	}

	// For SQLite backend with empty connection string, use default path
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetRunsDBFilePath()
	}

	cfg.RunsBackend = backend
	cfg.RunsDBConnect = connStr
	return nil
}

// runsClearSetup validates the backend without opening it, so that a broken
// SQLite file can still be removed.
func runsClearSetup(_ *cobra.Command, _ []string) error {
	backend, connStr, err := runsConfig()
	if err != nil {
		return err
	}
	cfg.RunsBackend = backend
	cfg.RunsDBConnect = connStr
	return nil
}

// runsCmd focused on run history management.
//
// Note: Runs subcommands use minimal initialization (runsSetup) instead of
// the full sharedSetup used by the heatmap command. This avoids input and
// palette validation for simple store operations.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage the history of heatmap runs",
	Long: `Manage the recorded history of heatmap runs.

Every heatmap run stores:
- Run metadata (timestamp, aggregation, hue, theme, duration)
- Every aggregated day with its bucket threshold and color

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show run tracking statistics
  export  - Export data to Parquet for analytics
  clear   - Remove all tracking data
  migrate - Run database schema migrations

Examples:
  # Check tracking status
  calheat runs status

  # Export for analysis in pandas/DuckDB
  calheat runs export --output-file history`,
}

// runsClearCmd clears the run history.
var runsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all recorded runs",
	Long: `Delete all stored heatmap runs and their daily aggregates.

WARNING: This action cannot be undone. Consider exporting data first.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the run tables

Examples:
  # Export before clearing
  calheat runs export --output-file backup
  calheat runs clear`,
	PreRunE: runsClearSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearRuns(cfg.RunsBackend, runsDBFilePath(), cfg.RunsDBConnect); err != nil {
			contract.LogFatal("Failed to clear runs", err)
		}
		fmt.Println("Runs cleared successfully.")
	},
}

// runsStatusCmd shows run store status.
var runsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display run tracking statistics and connection details",
	Long: `Show detailed information about the run history.

Displays:
- Backend type and connection status
- Total number of runs stored
- Last and oldest run timestamps
- Total days recorded across all runs
- Storage size and table row counts

Examples:
  # Check run tracking status
  calheat runs status`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := iocache.Manager.GetRunStore()
		if store == nil {
			contract.LogFatal("Failed to get runs status", fmt.Errorf("run store is not initialized"))
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get runs status", err)
		}
		iocache.PrintRunStatus(os.Stdout, status)
	},
}

// runsExportCmd exports the run history to Parquet files.
var runsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export run history to Parquet for BI tools and analytics",
	Long: `Export all stored runs to Parquet format for use with analytics tools.

Exports two datasets next to the given prefix:
- <prefix>.runs.parquet - metadata about each run
- <prefix>.daily_aggregates.parquet - every recorded day with its bucket

Requires: --output-file parameter

Examples:
  # Export all data
  calheat runs export --output-file history

  # Use with DuckDB for analysis
  duckdb -c "SELECT * FROM read_parquet('history.daily_aggregates.parquet') LIMIT 10"`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteRunsExport(iocache.Manager.GetRunStore(), cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export runs", err)
		}
	},
}

// runsMigrateCmd runs database migrations for the run store.
var runsMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the run store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  calheat runs migrate

  # Rollback to the initial state
  calheat runs migrate --target-version 0`,
	PreRunE: runsMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateRuns(cfg.RunsBackend, cfg.RunsDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}

// runsDBFilePath returns the SQLite file to clear, honoring a custom path.
func runsDBFilePath() string {
	if cfg.RunsBackend == schema.SQLiteBackend && cfg.RunsDBConnect != "" {
		return cfg.RunsDBConnect
	}
	return iocache.GetRunsDBFilePath()
}
