package contract

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// LogHeatmapHeader prints a short run summary. It goes to stderr in practice
// so that machine readable output on stdout stays clean.
func LogHeatmapHeader(w io.Writer, cfg *Config) {
	names := make([]string, len(cfg.InputPaths))
	for i, p := range cfg.InputPaths {
		names[i] = filepath.Base(p)
	}

	// Line 1: The inputs and how they are reduced
	_, _ = fmt.Fprintf(w, "🔎 Inputs: %s (Aggregation: %s, Hue: %s)\n", strings.Join(names, ", "), cfg.Aggregation, cfg.Hue)

	// Line 2: The window of observations kept
	_, _ = fmt.Fprintf(w, "📅 Range: %s → %s (%s)\n", formatBound(cfg.StartTime.IsZero(), cfg.StartTime.Format(DateTimeFormat)),
		formatBound(cfg.EndTime.IsZero(), cfg.EndTime.Format(DateTimeFormat)), cfg.GetLocation())
}

// formatBound renders an open bound as a placeholder.
func formatBound(open bool, s string) string {
	if open {
		return "open"
	}
	return s
}
