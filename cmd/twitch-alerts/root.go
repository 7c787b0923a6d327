package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "twitch-alerts [config]",
		Short: "Notify when watched Twitch channels go live",
		Long: "Polls the Twitch API for a set of channels and sends Discord, Slack and " +
			"PagerDuty notifications when one goes from offline to live.\n\n" +
			"The optional config argument is used when it names an existing file; " +
			"otherwise twitch-alerts.toml in the working directory is read.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPoller(cmd, args, true)
		},
	}

	root.AddCommand(
		newRunCommand(),
		newOnceCommand(),
		newPreflightCommand(),
		newTestNotifyCommand(),
	)
	return root
}
