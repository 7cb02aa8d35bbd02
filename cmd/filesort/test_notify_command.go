package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"filesort/internal/notifications"
)

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test notification",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if cfg.Notifications.NtfyTopic == "" {
				fmt.Fprintln(out, "Notifications disabled; set notifications.ntfy_topic")
				return nil
			}
			sendCtx, cancel := context.WithTimeout(cmd.Context(), time.Duration(cfg.Notifications.RequestTimeout+5)*time.Second)
			defer cancel()
			if err := notifications.NewService(cfg).Publish(sendCtx, notifications.EventTest, nil); err != nil {
				return fmt.Errorf("send test notification: %w", err)
			}
			fmt.Fprintln(out, "Test notification sent")
			return nil
		},
	}
}
