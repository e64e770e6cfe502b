package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/shandysiswandi/csvinsight/internal/app"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Purge uploads whose retention has expired, once.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		application := app.New(app.Options{ConfigPath: configPath, Headless: true})

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		defer application.Stop(ctx)

		res, err := application.Sweep(cmd.Context())
		if err != nil {
			return err
		}

		cmd.Printf("expired: %d, purged: %d\n", res.Expired, res.Handled)
		return nil
	},
}
