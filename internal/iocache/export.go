package iocache

import (
	"errors"
	"fmt"

	"github.com/huangsam/calheat/internal/contract"
	"github.com/huangsam/calheat/internal/parquet"
)

// ExecuteRunsExport writes the recorded runs and their daily rows to Parquet
// files named after outputFile.
func ExecuteRunsExport(store contract.RunStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("run tracking is not initialized")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get run status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no run data found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total runs: %d\n", status.TotalRuns)
	fmt.Printf("Total daily records: %d\n", status.TableSizes[dailyAggregatesTable])

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}
	daily, err := store.GetAllDailyRecords()
	if err != nil {
		return fmt.Errorf("failed to retrieve daily aggregates: %w", err)
	}

	parquetRuns := parquet.ConvertRunRecords(runs)
	parquetDaily := parquet.ConvertDailyRecords(daily)

	runsFile := outputFile + ".runs.parquet"
	if err := parquet.WriteRunsParquet(parquetRuns, runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	fmt.Printf("Exported %d runs to: %s\n", len(parquetRuns), runsFile)

	dailyFile := outputFile + ".daily_aggregates.parquet"
	if err := parquet.WriteDailyAggregatesParquet(parquetDaily, dailyFile); err != nil {
		return fmt.Errorf("failed to write daily aggregates: %w", err)
	}
	fmt.Printf("Exported %d daily records to: %s\n", len(parquetDaily), dailyFile)

	fmt.Println("\nExport complete! The Parquet files can be used with:")
	fmt.Println("  - DuckDB")
	fmt.Println("  - Pandas (via pyarrow)")
	fmt.Println("  - Apache Spark")
	fmt.Println("  - Any other Parquet-compatible tool")

	return nil
}
