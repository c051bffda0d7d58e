package outwriter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/calheat/internal/contract"
	"github.com/huangsam/calheat/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// paletteDocument is the JSON shape of a palette.
type paletteDocument struct {
	schema.PaletteResult
	Colors map[int]string `json:"colors"`
}

// PrintPalette outputs the palette, dispatching based on the output format configured.
func PrintPalette(result schema.PaletteResult, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WritePalette(w, result, cfg)
	}, fmt.Sprintf("Wrote %s palette", cfg.Output))
}

// WritePalette renders the palette buckets to w.
func WritePalette(w io.Writer, result schema.PaletteResult, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeJSON(w, paletteDocument{PaletteResult: result, Colors: result.Palette.Colors()}); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writePaletteCSV(w, result.Palette); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		return errors.New("parquet output is only supported for heatmaps")
	default:
		if err := writePaletteTable(w, result, cfg); err != nil {
			return fmt.Errorf("error writing palette table output: %w", err)
		}
	}
	return nil
}

// writePaletteCSV writes one row per bucket.
func writePaletteCSV(w io.Writer, p schema.Palette) error {
	return writeCSVWithHeader(w, []string{"threshold", "shade", "color"}, func(cw *csv.Writer) error {
		for _, b := range p {
			if err := cw.Write([]string{strconv.Itoa(b.Threshold), string(b.Shade), b.Color}); err != nil {
				return err
			}
		}
		return nil
	})
}

// writePaletteTable prints the buckets with their color samples.
func writePaletteTable(w io.Writer, result schema.PaletteResult, cfg *contract.Config) error {
	_, _ = fmt.Fprintf(w, "Palette: %s hue, max %s\n", result.Hue, contract.FormatFloat(result.MaxCount, cfg.Precision))

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Below", "Shade", "Color"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	data := make([][]string, 0, len(result.Palette))
	for _, b := range result.Palette {
		shade := string(b.Shade)
		if shade == "" {
			shade = "empty"
		}
		data = append(data, []string{
			strconv.Itoa(b.Threshold),
			shade,
			labeledSwatch(b.Color, cfg.UseColors),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(w, formatLegend(result.Palette, result.MaxCount, cfg))
	return nil
}
