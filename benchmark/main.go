// Package main provides a performance benchmarking tool for the calheat CLI.
// It generates synthetic observation files of increasing size, runs the heatmap
// command on each of them several times per runs backend, treating the first
// successful run as cold and averaging the rest as warm, and writes CSV output
// for performance analysis and documentation.
//
// Prerequisites:
// - calheat binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory where the synthetic datasets are written
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/huangsam/calheat/internal/parquet"
)

// BenchmarkResult holds the result of a benchmark run per dataset and backend.
type BenchmarkResult struct {
	Dataset  string
	Format   string
	Backend  string
	ColdTime string
	WarmTime string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir  string
	Timeout  time.Duration
	Runs     int
	Sizes    map[string]int
	Order    []string
	Formats  []string
	Backends []string
}

func main() {
	// Parse command line arguments
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		WorkDir: os.Args[1],
		Timeout: 5 * time.Minute,
		Runs:    4,
		Sizes: map[string]int{
			"small":  1_000,
			"medium": 100_000,
			"large":  1_000_000,
		},
		Order:    []string{"small", "medium", "large"},
		Formats:  []string{"csv", "parquet"},
		Backends: []string{"none", "sqlite"},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	datasets, err := generateDatasets(config)
	if err != nil {
		fmt.Printf("Failed to generate datasets: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config, datasets)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the calheat binary and the work dir exist
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("calheat"); err != nil {
		return fmt.Errorf("calheat binary not found in PATH")
	}
	return os.MkdirAll(config.WorkDir, 0o755)
}

// generateDatasets writes one file per size and format. Observations are
// spread evenly over one year so every dataset covers the same days.
func generateDatasets(config BenchmarkConfig) (map[string]string, error) {
	datasets := make(map[string]string)
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	year := int64(366 * 24 * time.Hour / time.Millisecond)

	for _, name := range config.Order {
		n := config.Sizes[name]
		rows := make([]parquet.Observation, n)
		for i := range rows {
			v := float64(i%97) / 3
			rows[i] = parquet.Observation{Time: start + int64(i)*year/int64(n), Value: &v}
		}

		for _, format := range config.Formats {
			path := filepath.Join(config.WorkDir, fmt.Sprintf("%s.%s", name, format))
			fmt.Printf("Generating %s (%d observations)\n", path, n)
			var err error
			if format == "parquet" {
				err = parquet.WriteObservationsParquet(rows, path)
			} else {
				err = writeObservationsCSV(rows, path)
			}
			if err != nil {
				return nil, err
			}
			datasets[name+"/"+format] = path
		}
	}
	return datasets, nil
}

// writeObservationsCSV writes rows with a time column and a value column.
func writeObservationsCSV(rows []parquet.Observation, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"time", "value"}); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writer.Write([]string{strconv.FormatInt(row.Time, 10), strconv.FormatFloat(*row.Value, 'f', -1, 64)}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// runBenchmarks executes the heatmap command across every dataset and backend
func runBenchmarks(config BenchmarkConfig, datasets map[string]string) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d datasets, %v timeout, %d runs each\n",
		len(datasets), config.Timeout, config.Runs)

	for _, name := range config.Order {
		for _, format := range config.Formats {
			path := datasets[name+"/"+format]
			for _, backend := range config.Backends {
				results = append(results, runBenchmarkSuite(config, name, format, backend, path))
			}
		}
	}
	return results
}

// runBenchmarkSuite runs one dataset against one backend and summarizes the timings
func runBenchmarkSuite(config BenchmarkConfig, name, format, backend, path string) BenchmarkResult {
	fmt.Printf("Running heatmap on %s.%s with %s backend\n", name, format, backend)

	dbPath := filepath.Join(config.WorkDir, "bench_runs.db")
	_ = os.Remove(dbPath)

	coldTime, warmTimes := runBenchmark(config, path, backend, dbPath)

	coldStr := "TIMEOUT"
	if coldTime > 0 {
		coldStr = fmt.Sprintf("%.3fs", coldTime)
	}
	warmStr := "TIMEOUT"
	if len(warmTimes) > 0 {
		var sum float64
		for _, t := range warmTimes {
			sum += t
		}
		warmStr = fmt.Sprintf("%.3fs", sum/float64(len(warmTimes)))
	}

	fmt.Printf("  Cold time: %s, Warm average: %s\n", coldStr, warmStr)

	return BenchmarkResult{
		Dataset:  name,
		Format:   format,
		Backend:  backend,
		ColdTime: coldStr,
		WarmTime: warmStr,
	}
}

// runBenchmark executes the heatmap command several times and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, path, backend, dbPath string) (coldTime float64, warmTimes []float64) {
	args := []string{
		"heatmap", path,
		"--timezone", "UTC",
		"--output", "json",
		"--output-file", os.DevNull,
		"--runs-backend", backend,
		"--runs-db-connect", dbPath,
	}
	if backend == "none" {
		args = args[:len(args)-2]
	}

	var times []float64
	for range config.Runs {
		start := time.Now()

		cmd := exec.Command("calheat", args...)
		done := make(chan error, 1)
		go func() {
			_, err := cmd.CombinedOutput()
			done <- err
		}()

		select {
		case err := <-done:
			if err == nil {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			_ = cmd.Process.Kill()
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/calheat_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	if err := writer.Write([]string{"dataset", "format", "backend", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	// Write results
	for _, result := range results {
		if err := writer.Write([]string{result.Dataset, result.Format, result.Backend, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, result := range results {
		fmt.Printf("  %-7s %-8s %-7s: Cold: %s, Warm: %s\n", result.Dataset, result.Format, result.Backend, result.ColdTime, result.WarmTime)
	}
}
