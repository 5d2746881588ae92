package cmd

import (
	"github.com/spf13/cobra"
	"github.com/zeyadhassan/codepulse/internal/mcp"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the codepulse MCP server",
	Long: `Launch an MCP server on stdio that lets AI agents analyze files and read
recorded metrics through the tools analyze_file, suggest_fixes,
get_project_metrics, get_history and get_file_metrics.`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, collector)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
