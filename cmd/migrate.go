package cmd

import (
	"github.com/spf13/cobra"

	"github.com/shandysiswandi/csvinsight/internal/app"
)

var migrateVersion int

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database schema migrations.",
	Long: `Apply the embedded schema migrations to the configured database.

Without --version the schema is migrated to the latest version. --version 0
rolls every migration back.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := app.Migrate(cmd.Context(), configPath, migrateVersion); err != nil {
			return err
		}
		cmd.Println("migrations applied")
		return nil
	},
}

func init() {
	migrateCmd.Flags().IntVar(&migrateVersion, "version", -1, "target schema version, negative for latest")
}
