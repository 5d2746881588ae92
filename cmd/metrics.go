package cmd

import (
	"github.com/spf13/cobra"
	"github.com/zeyadhassan/codepulse/core"
	"github.com/zeyadhassan/codepulse/internal/contract"
)

// projectCmd prints the project aggregate.
var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Show recorded project health and the least healthy files.",
	Long: `Print the project-wide aggregate built from every recorded file:

- Line-weighted overall health and its band
- Average complexity and complexity distribution
- Duplication percentage and code/comment ratio
- Number of recorded changes

Examples:
  codepulse project
  codepulse project --limit 10 --output json`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteProject(cfg, collector); err != nil {
			contract.LogFatal("Cannot display project metrics", err)
		}
	},
}

// historyCmd prints the daily health history.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the daily health history (last 30 days).",
	Long: `Print one entry per calendar day on which results were recorded, oldest first.

Examples:
  codepulse history
  codepulse history --output csv --output-file history.csv`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteHistory(cfg, collector); err != nil {
			contract.LogFatal("Cannot display history", err)
		}
	},
}

// filesCmd lists tracked files.
var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "List tracked files ranked from least to most healthy.",
	Long: `Print the recorded metrics of every tracked file, least healthy first.

Examples:
  codepulse files --limit 20
  codepulse files --all --output csv`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteFiles(cfg, collector); err != nil {
			contract.LogFatal("Cannot list files", err)
		}
	},
}

// clearCmd forgets recorded metrics.
var clearCmd = &cobra.Command{
	Use:   "clear [file]",
	Short: "Clear recorded metrics for a file, or everything with --all.",
	Long: `Remove a file from the project metrics and recompute the aggregate.
While other files remain, today's history entry takes the new health and
counts the change. With --all, every file and the history are reset.

Examples:
  codepulse clear src/app.js
  codepulse clear --all`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		path := ""
		if len(args) == 1 {
			path = args[0]
		}
		if err := core.ExecuteClear(cfg, collector, path); err != nil {
			contract.LogFatal("Cannot clear metrics", err)
		}
	},
}

// dashboardCmd writes the HTML dashboard.
var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Write an HTML dashboard of the recorded metrics.",
	Long: `Render the health history, complexity distribution and least healthy
files as interactive charts in a standalone HTML page.

Examples:
  codepulse dashboard
  codepulse dashboard --output-file reports/health.html`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteDashboard(cfg, collector); err != nil {
			contract.LogFatal("Cannot write dashboard", err)
		}
	},
}
