package cmd

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"archivist/internal/watcher"
)

var watchInbox string

// watchCmd runs the inbox watcher until interrupted.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the inbox and file new documents automatically",
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}

		inbox := watchInbox
		if inbox == "" {
			inbox = appInstance.Config.Inbox.Path
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		w := watcher.New(inbox, appInstance.Config.DebounceDelay(), appInstance.Processor)
		if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchInbox, "inbox", "", "inbox directory (defaults to config inbox.path)")
	rootCmd.AddCommand(watchCmd)
}
