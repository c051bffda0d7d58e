// Package cmd defines the command-line interface for calheat.
package cmd

import (
	"github.com/huangsam/calheat/internal/contract"
	"github.com/huangsam/calheat/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(heatmapCmd)
	rootCmd.AddCommand(paletteCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the runs subcommands to the parent runs command
	runsCmd.AddCommand(runsStatusCmd)
	runsCmd.AddCommand(runsExportCmd)
	runsCmd.AddCommand(runsClearCmd)
	runsCmd.AddCommand(runsMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("aggregation", string(schema.SumAggregation), "Daily reduction: sum or count or avg or max or min")
	rootCmd.PersistentFlags().String("hue", string(schema.GreenHue), "Color family: red or orange or yellow or green or blue or purple")
	rootCmd.PersistentFlags().String("theme", string(schema.LightTheme), "Theme: light or dark (dark reverses the shade order)")
	rootCmd.PersistentFlags().String("empty-color", "", "Hex color for empty days (defaults to the theme canvas)")
	rootCmd.PersistentFlags().String("timezone", "", "IANA time zone that defines day boundaries (defaults to local)")
	rootCmd.PersistentFlags().String("start", "", "Start of the time window in ISO8601, YYYY-MM-DD or time ago")
	rootCmd.PersistentFlags().String("end", "", "End of the time window in ISO8601, YYYY-MM-DD or time ago")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("color", "auto", "Enable colored swatches in output (auto/yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("runs-backend", string(schema.SQLiteBackend), "Run tracking backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("runs-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of paletteCmd to Viper
	paletteCmd.Flags().Float64("max", 0, "Largest daily value the palette must cover")
	if err := viper.BindPFlags(paletteCmd.Flags()); err != nil {
		contract.LogFatal("Error binding palette flags", err)
	}

	// Bind all flags of runsMigrateCmd to Viper
	runsMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(runsMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding runs migrate flags", err)
	}
}
