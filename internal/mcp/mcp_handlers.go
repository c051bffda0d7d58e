package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/huangsam/calheat/core"
	"github.com/huangsam/calheat/core/agg"
	"github.com/huangsam/calheat/core/palette"
	"github.com/huangsam/calheat/internal/contract"
	"github.com/huangsam/calheat/internal/ingest"
	"github.com/huangsam/calheat/internal/outwriter"
	"github.com/huangsam/calheat/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// inlineInput is recorded as the input of runs built from tool arguments.
const inlineInput = "mcp:inline"

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.StoreManager
}

// inlineLoader serves series that were decoded from a tool argument.
type inlineLoader []schema.Series

var _ contract.SeriesLoader = inlineLoader(nil) // Compile-time check

// LoadSeries implements the SeriesLoader interface.
func (l inlineLoader) LoadSeries(_ context.Context, _ []string) ([]schema.Series, error) {
	return l, nil
}

func (h *toolHandler) handleAggregateDaily(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if err := applyCommonArgs(cfg, request); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	series, err := decodeSeriesArg(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	days := agg.AggregateIn(series, cfg.Aggregation, cfg.GetLocation())
	jsonData, _ := json.MarshalIndent(days, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleBuildPalette(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if err := applyCommonArgs(cfg, request); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	maxCount := request.GetFloat("max", -1)
	if maxCount < 0 || math.IsNaN(maxCount) || math.IsInf(maxCount, 0) {
		return mcp.NewToolResultError("max must be a finite non-negative number"), nil
	}

	opts, err := core.OptionsFromConfig(cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("palette failed: %v", err)), nil
	}
	if err := ctx.Err(); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("palette failed: %v", err)), nil
	}

	cfg.Output = schema.JSONOut
	var buf bytes.Buffer
	if err := outwriter.WritePalette(&buf, core.BuildPalette(maxCount, opts), cfg); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("palette failed: %v", err)), nil
	}
	return mcp.NewToolResultText(buf.String()), nil
}

func (h *toolHandler) handleBuildHeatmap(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if err := applyCommonArgs(cfg, request); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	series, err := decodeSeriesArg(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	cfg.InputPaths = []string{inlineInput}

	result, err := core.GetHeatmapResult(core.WithSuppressHeader(ctx), cfg, h.mgr, inlineLoader(series))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("heatmap failed: %v", err)), nil
	}

	cfg.Output = schema.JSONOut
	var buf bytes.Buffer
	if err := outwriter.WriteHeatmap(&buf, result, cfg); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("heatmap failed: %v", err)), nil
	}
	return mcp.NewToolResultText(buf.String()), nil
}

// applyCommonArgs overrides the base config with the optional tool arguments.
// Unknown aggregations and hues fall back to the defaults like the CLI does.
func applyCommonArgs(cfg *contract.Config, request mcp.CallToolRequest) error {
	if a := request.GetString("aggregation", ""); a != "" {
		cfg.Aggregation = agg.NormalizeMethod(schema.AggregationMethod(strings.ToLower(a)))
	}
	if hue := request.GetString("hue", ""); hue != "" {
		cfg.Hue = palette.NormalizeHue(schema.Hue(strings.ToLower(hue)))
	}
	if th := request.GetString("theme", ""); th != "" {
		mode := schema.ThemeMode(strings.ToLower(th))
		if _, ok := schema.ValidThemeModes[mode]; !ok {
			return fmt.Errorf("unknown theme %q", th)
		}
		cfg.Theme = mode
	}
	if tz := request.GetString("timezone", ""); tz != "" {
		loc, err := contract.LoadLocation(tz)
		if err != nil {
			return fmt.Errorf("invalid timezone %q: %w", tz, err)
		}
		cfg.Location = loc
	}
	return nil
}

// decodeSeriesArg reads the required inline series argument.
func decodeSeriesArg(request mcp.CallToolRequest) ([]schema.Series, error) {
	raw, err := request.RequireString("series")
	if err != nil {
		return nil, err
	}
	series, err := ingest.DecodeJSON(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("invalid series: %w", err)
	}
	return series, nil
}
