package cmd

import (
	"github.com/spf13/cobra"
	"github.com/zeyadhassan/codepulse/core"
	"github.com/zeyadhassan/codepulse/internal/contract"
)

// analyzeCmd analyzes files and records their health.
var analyzeCmd = &cobra.Command{
	Use:   "analyze [paths...]",
	Short: "Analyze source files and score their health.",
	Long: `Estimate cyclomatic complexity, duplicated blocks and style issues for every
supported file and combine them into a 0-100 health score.

Directories are walked recursively and exclude patterns are applied. Files given
explicitly are always analyzed. Supported extensions: .js .ts .jsx .tsx .py .java .c .cpp .cs

With auto-record enabled (the default), results update the project metrics and
today's entry in the daily health history.

Examples:
  # Analyze the whole workspace
  codepulse analyze

  # Analyze one folder and list every issue
  codepulse analyze src --explain

  # Lower the complexity threshold and skip recording
  codepulse analyze --complexity-threshold 5 --auto-record=false

  # Export results and Prometheus metrics for CI
  codepulse analyze --output json --output-file health.json --metrics-file codepulse.prom`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteAnalyze(rootCtx, cfg, collector); err != nil {
			contract.LogFatal("Cannot run analysis", err)
		}
	},
}

// suggestCmd prints fix suggestions for one file.
var suggestCmd = &cobra.Command{
	Use:   "suggest <file>",
	Short: "Suggest fixes for the issues found in a file.",
	Long: `Analyze one file and turn its issues into suggestions.

Spacing and indentation issues come with a line edit, shown as a character diff.
Complexity, duplication, naming and line length suggestions are informational.

Examples:
  # Show suggestions with diff previews
  codepulse suggest src/app.js

  # Machine-readable suggestions
  codepulse suggest src/app.js --output json`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		if err := core.ExecuteSuggest(rootCtx, cfg, args[0]); err != nil {
			contract.LogFatal("Cannot suggest fixes", err)
		}
	},
}

// healthModelCmd displays the formal definition of the health score.
var healthModelCmd = &cobra.Command{
	Use:   "health-model",
	Short: "Display how the health score is computed",
	Long: `Show the penalties, caps and bands behind the 0-100 health score.

No analysis is performed - this is purely informational.

Examples:
  codepulse health-model
  codepulse health-model --output json`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteHealthModel(cfg); err != nil {
			contract.LogFatal("Cannot display health model", err)
		}
	},
}
