// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/calheat/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const seriesDescription = "Observation series as JSON: one frame or an array of frames shaped " +
	`{"name": "...", "fields": [{"name": "Time", "type": "time", "values": [...]}, {"name": "value", "type": "number", "values": [...]}]}.`

var (
	aggregationEnum = mcp.Enum("sum", "count", "avg", "max", "min")
	hueEnum         = mcp.Enum("red", "orange", "yellow", "green", "blue", "purple")
	themeEnum       = mcp.Enum("light", "dark")
)

// NewMCPServer initializes and configures the calheat MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.StoreManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Calendar Heatmap Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: aggregate_daily ---
	s.AddTool(mcp.NewTool("aggregate_daily",
		mcp.WithDescription("Group observations by calendar day and reduce each day to one number."),
		mcp.WithString("series", mcp.Description(seriesDescription), mcp.Required()),
		mcp.WithString("aggregation", mcp.Description("Reduction applied per day. Defaults to 'sum'."), aggregationEnum),
		mcp.WithString("timezone", mcp.Description("IANA time zone that defines day boundaries (e.g., 'UTC', 'Europe/Berlin').")),
	), h.handleAggregateDaily)

	// --- 2. Tool: build_palette ---
	s.AddTool(mcp.NewTool("build_palette",
		mcp.WithDescription("Build the six bucket color scale for a given maximum daily value."),
		mcp.WithNumber("max", mcp.Description("Largest daily value the scale must cover."), mcp.Required()),
		mcp.WithString("hue", mcp.Description("Color family. Defaults to 'green'."), hueEnum),
		mcp.WithString("theme", mcp.Description("Light or dark theme. Dark reverses the shade order."), themeEnum),
	), h.handleBuildPalette)

	// --- 3. Tool: build_heatmap ---
	s.AddTool(mcp.NewTool("build_heatmap",
		mcp.WithDescription("Aggregate observations per day and assign every day a bucket and color."),
		mcp.WithString("series", mcp.Description(seriesDescription), mcp.Required()),
		mcp.WithString("aggregation", mcp.Description("Reduction applied per day. Defaults to 'sum'."), aggregationEnum),
		mcp.WithString("hue", mcp.Description("Color family. Defaults to 'green'."), hueEnum),
		mcp.WithString("theme", mcp.Description("Light or dark theme."), themeEnum),
		mcp.WithString("timezone", mcp.Description("IANA time zone that defines day boundaries.")),
	), h.handleBuildHeatmap)

	return s
}

// StartMCPServer starts the calheat MCP server.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.StoreManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
