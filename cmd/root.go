package cmd

import (
	"github.com/spf13/cobra"
)

// version is set by linker flags at build time.
var version = "dev"

// configPath is the --config flag shared by every command.
var configPath string

// rootCmd starts the server when run without a subcommand.
var rootCmd = &cobra.Command{
	Use:           "csvinsight",
	Short:         "Upload CSV files and get descriptive statistics and histograms.",
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"config file (default ./config/config.yaml with LOCAL=true, else /config/config.yaml)")

	rootCmd.AddCommand(serveCmd, migrateCmd, sweepCmd, inspectCmd)
}

// Execute runs the command selected by the process arguments.
func Execute() error {
	return rootCmd.Execute()
}
