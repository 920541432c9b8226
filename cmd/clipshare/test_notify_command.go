package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"clipshare/internal/notifications"
)

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	var clientID string

	cmd := &cobra.Command{
		Use:   "test-notify",
		Short: "Publish a test completion event",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if strings.TrimSpace(cfg.Notifications.RedisAddr) == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "Redis address not configured; nothing to publish")
				return nil
			}
			notifier, err := notifications.NewService(cfg)
			if err != nil {
				return err
			}
			defer notifier.Close()
			if err := notifier.TestNotification(cmd.Context(), clientID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Test notification published to %s\n", notifications.ChannelName(clientID, "test"))
			return nil
		},
	}

	cmd.Flags().StringVar(&clientID, "client", "clipshare", "Client identifier to publish under")
	return cmd
}
