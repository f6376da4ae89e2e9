package cmd

import (
	"fmt"

	"github.com/khrees2412/jobtracker/internal/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON API",
	Long:  "Serve sign-in, applications and statistics over HTTP under /api/v1",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp(cmd)
		if err != nil {
			return err
		}

		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = a.Config.ServerAddr
		}

		srv := server.New(server.Config{
			Auth:        a.Auth,
			NewCache:    a.NewCache,
			Logger:      a.Logger,
			CORSOrigins: a.Config.CORSOrigins,
		})

		fmt.Fprintf(cmd.OutOrStdout(), "Listening on %s (store: %s)\n", addr, a.Config.StoreBackend)
		return srv.Run(cmd.Context(), addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "Listen address (default from server_addr)")
}
