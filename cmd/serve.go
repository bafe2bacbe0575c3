package cmd

import (
	"github.com/spf13/cobra"

	"archivist/internal/server"
)

var serveAddr string

// serveCmd exposes classification previews over HTTP.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the classification API server",
	Long: `Starts an HTTP server exposing the folder catalog and classification
previews. The API is read-only; it never moves files.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		addr := serveAddr
		if addr == "" {
			addr = appInstance.Config.Server.Address
		}
		return server.New(appInstance.Processor).Run(addr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (defaults to config server.address)")
	rootCmd.AddCommand(serveCmd)
}
