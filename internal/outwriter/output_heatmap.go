package outwriter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/huangsam/calheat/internal/contract"
	"github.com/huangsam/calheat/internal/parquet"
	"github.com/huangsam/calheat/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// heatmapDocument is the JSON shape of a heatmap. Days carry their bucket.
type heatmapDocument struct {
	schema.HeatmapResult
	Days   []schema.EnrichedDay `json:"days"`
	Colors map[int]string       `json:"colors"`
}

// PrintHeatmap outputs the heatmap, dispatching based on the output format configured.
func PrintHeatmap(result schema.HeatmapResult, cfg *contract.Config) error {
	if cfg.Output == schema.ParquetOut {
		if err := writeHeatmapParquet(result, cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
		return nil
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WriteHeatmap(w, result, cfg)
	}, fmt.Sprintf("Wrote %s heatmap", cfg.Output))
}

// WriteHeatmap renders the heatmap to w in a stream format (text, csv or json).
func WriteHeatmap(w io.Writer, result schema.HeatmapResult, cfg *contract.Config) error {
	fmtFloat := createFormatters(cfg.Precision)
	days := schema.EnrichDays(result.Days, result.Palette)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeJSON(w, heatmapDocument{
			HeatmapResult: result,
			Days:          days,
			Colors:        result.Palette.Colors(),
		}); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeHeatmapCSV(w, days, fmtFloat); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		return errors.New("parquet output requires an output file")
	default:
		if err := writeHeatmapTable(w, result, days, cfg, fmtFloat); err != nil {
			return fmt.Errorf("error writing heatmap table output: %w", err)
		}
	}
	return nil
}

// writeHeatmapCSV writes one row per day.
func writeHeatmapCSV(w io.Writer, days []schema.EnrichedDay, fmtFloat func(float64) string) error {
	header := []string{"date", "count", "bucket", "color"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, d := range days {
			row := []string{d.Date, fmtFloat(d.Count), strconv.Itoa(d.Bucket), d.Color}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeHeatmapTable prints the days as a table followed by a legend strip.
func writeHeatmapTable(w io.Writer, result schema.HeatmapResult, days []schema.EnrichedDay, cfg *contract.Config, fmtFloat func(float64) string) error {
	themeName := schema.LightTheme
	if result.DarkMode {
		themeName = schema.DarkTheme
	}
	_, _ = fmt.Fprintf(w, "Calendar heatmap: %s per day, %s hue, %s theme\n", result.Aggregation, result.Hue, themeName)

	if len(days) == 0 {
		_, _ = fmt.Fprintln(w, "No observations found.")
		_, _ = fmt.Fprintln(w, formatLegend(result.Palette, result.MaxCount, cfg))
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Date", "Count", "Bucket", "Color"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	data := make([][]string, 0, len(days))
	for _, d := range days {
		data = append(data, []string{
			d.Date,
			fmtFloat(d.Count),
			fmt.Sprintf("<%d", d.Bucket),
			labeledSwatch(d.Color, cfg.UseColors),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	_, _ = fmt.Fprintln(w, formatLegend(result.Palette, result.MaxCount, cfg))
	_, _ = fmt.Fprintf(w, "%d days aggregated with %s.\n", len(days), result.Aggregation)
	return nil
}

// formatLegend renders "Less ... More (Max: N)" with one entry per visible bucket.
func formatLegend(p schema.Palette, maxCount float64, cfg *contract.Config) string {
	parts := []string{"Less"}
	for _, b := range p.Legend() {
		parts = append(parts, swatch(b.Color, cfg.UseColors))
	}
	parts = append(parts, fmt.Sprintf("More (Max: %s)", contract.FormatFloat(maxCount, cfg.Precision)))
	return strings.Join(parts, " ")
}

// writeHeatmapParquet writes the enriched days to a Parquet file.
func writeHeatmapParquet(result schema.HeatmapResult, outputFile string) error {
	if outputFile == "" {
		return errors.New("parquet output requires an output file")
	}
	days := schema.EnrichDays(result.Days, result.Palette)
	if err := parquet.WriteHeatmapParquet(days, outputFile); err != nil {
		return err
	}
	logSaved("Wrote Parquet heatmap", outputFile)
	return nil
}
