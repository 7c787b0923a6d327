package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hamed0406/twitchalerts/internal/config"
)

func newPreflightCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "preflight [config]",
		Short: "Check the configuration without contacting any service",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.ResolvePath(args)
			cfg, err := config.Load(path)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), config.Fail.Symbol(), err)
				return errors.New("preflight failed")
			}

			fmt.Fprintln(cmd.OutOrStdout(), config.OK.Symbol(), "config="+path)
			findings := config.Preflight(cfg)
			for _, f := range findings {
				out := cmd.OutOrStdout()
				if f.Severity != config.OK {
					out = cmd.ErrOrStderr()
				}
				fmt.Fprintln(out, f.Severity.Symbol(), f.Message)
			}
			if config.Failed(findings) {
				return errors.New("preflight failed")
			}
			fmt.Fprintln(cmd.OutOrStdout(), config.OK.Symbol(), "preflight passed")
			return nil
		},
	}
}
