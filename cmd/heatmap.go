package cmd

import (
	"github.com/huangsam/calheat/core"
	"github.com/huangsam/calheat/internal/contract"
	"github.com/spf13/cobra"
)

// heatmapCmd builds a calendar heatmap from observation files.
var heatmapCmd = &cobra.Command{
	Use:   "heatmap <file> [file...]",
	Short: "Aggregate observations per day and color every day.",
	Long: `Group timestamped observations by calendar day and assign each day a color bucket.

Reads JSON frames, CSV files or Parquet files. Every series needs a time field
and a number field. Values of the same day are reduced with the selected
aggregation (sum, count, avg, max, min) and the busiest day scales a six
bucket palette in the selected hue.

Runs are recorded in the configured runs backend unless it is set to none.

Examples:
  # Daily totals in the default green palette
  calheat heatmap steps.json

  # Peak temperature per day in Berlin, dark theme
  calheat heatmap temps.csv --aggregation max --timezone Europe/Berlin --theme dark --hue red

  # Only the last 90 days, written as CSV
  calheat heatmap events.parquet --start "90 days ago" --output csv --output-file days.csv`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteHeatmap(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot build heatmap", err)
		}
	},
}

// paletteCmd prints the palette for a given maximum.
var paletteCmd = &cobra.Command{
	Use:   "palette",
	Short: "Show the color buckets for a given maximum daily value.",
	Long: `Print the six buckets used to color a heatmap whose busiest day has the given value.

The first two buckets (thresholds 0 and 1) always use the empty color. The
remaining four split the rounded maximum at its quarters.

Examples:
  # Palette for a maximum of 40
  calheat palette --max 40

  # Dark blue palette as JSON
  calheat palette --max 12 --hue blue --theme dark --output json`,
	Args: cobra.NoArgs,
	PreRunE: func(_ *cobra.Command, args []string) error {
		return configSetup(args)
	},
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecutePalette(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot build palette", err)
		}
	},
}
