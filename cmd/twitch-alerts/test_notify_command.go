package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hamed0406/twitchalerts/internal/domain"
)

func newTestNotifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify [config]",
		Short: "Send a sample notification through every configured sink",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(args)
			if err != nil {
				return err
			}
			defer func() { _ = a.logger.Sync() }()

			name := "twitch"
			if len(a.cfg.Channels) > 0 {
				name = a.cfg.Channels[0]
			}
			batch := []domain.ChannelStatus{{
				Name:  name,
				Title: "twitch-alerts test notification",
				Type:  domain.StreamLive,
			}}

			if err := a.dispatcher.Dispatch(cmd.Context(), batch); err != nil {
				return fmt.Errorf("test notification: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Test notification dispatched")
			return nil
		},
	}
}
