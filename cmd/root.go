package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/khrees2412/jobtracker/internal/app"
	"github.com/spf13/cobra"
)

// application is kept for cleanup after the command returns
var application *app.App

var rootCmd = &cobra.Command{
	Use:   "jobtracker",
	Short: "Track your job applications",
	Long: `jobtracker keeps a list of the jobs you have applied to, their status and notes.
Search and filter the list, see statistics, or serve it as a JSON API.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		command := strings.TrimPrefix(cmd.CommandPath(), cmd.Root().Name()+" ")
		a, err := app.NewApp(cmd.Context(), command, cmd.Name() == "serve")
		if err != nil {
			return fmt.Errorf("failed to initialize app: %w", err)
		}
		application = a

		// Store app in command context
		cmd.SetContext(app.SetAppInContext(cmd.Context(), a))
		return nil
	},
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)

	if application != nil {
		application.Close()
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error:"), err)
		if hint := app.Hint(err); hint != "" {
			fmt.Fprintln(os.Stderr, hint)
		}
		stop()
		os.Exit(1)
	}
}
