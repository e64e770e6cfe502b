package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/shandysiswandi/csvinsight/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server.",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(_ *cobra.Command, _ []string) error {
	application := app.New(app.Options{ConfigPath: configPath}) // Initialize the application
	wait := application.Start()                                  // Start the application and wait for the termination signal
	<-wait                                                       // Wait for the application to receive a termination signal

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	application.Stop(ctx) // Stop the application gracefully

	return nil
}
