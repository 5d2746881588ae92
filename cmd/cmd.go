// Package cmd defines the command-line interface for codepulse.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/zeyadhassan/codepulse/internal/contract"
	"github.com/zeyadhassan/codepulse/schema"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(filesCmd)
	rootCmd.AddCommand(suggestCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(healthModelCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(storeCmd)

	// Add the store subcommands to the parent store command
	storeCmd.AddCommand(storeStatusCmd)
	storeCmd.AddCommand(storeClearCmd)
	storeCmd.AddCommand(storeMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().Int("complexity-threshold", contract.DefaultComplexityThreshold, "Minimum complexity reported as an issue")
	rootCmd.PersistentFlags().Int("duplication-threshold", contract.DefaultDuplicationMinLines, "Minimum lines of a duplicated block")
	rootCmd.PersistentFlags().Bool("auto-record", true, "Record analysis results into the metrics store")
	rootCmd.PersistentFlags().String("exclude", "", "Comma-separated list of path prefixes or patterns to ignore")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultResultLimit, "Number of tracked files to display")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("store-backend", string(schema.SQLiteBackend), "Metrics store backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("store-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("workspace", "", "Workspace root used to resolve and normalize paths (default: current directory)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Print debug logs to stderr")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Subcommand flags are bound to Viper in sharedSetup for the invoked command.
	analyzeCmd.Flags().Bool("explain", false, "Print every issue below the results table")
	analyzeCmd.Flags().String("metrics-file", "", "Write Prometheus textfile metrics for this run to the given path")
	filesCmd.Flags().Bool("all", false, "Show every tracked file instead of --limit")
	clearCmd.Flags().Bool("all", false, "Clear all file metrics and the daily history")
	storeMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
}
