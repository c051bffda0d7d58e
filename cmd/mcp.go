package cmd

import (
	"github.com/huangsam/calheat/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the calheat MCP server",
	Long: `Launch an MCP server over stdio that lets AI agents aggregate observations,
build palettes and build heatmaps via standard tools. Flags and config act as
defaults for every tool call.`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, storeManager)
	},
}
