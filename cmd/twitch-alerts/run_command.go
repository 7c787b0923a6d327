package main

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hamed0406/twitchalerts/internal/auth"
	"github.com/hamed0406/twitchalerts/internal/httpapi"
	"github.com/hamed0406/twitchalerts/internal/repo/file"
)

func newRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run [config]",
		Short: "Poll continuously until interrupted",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPoller(cmd, args, true)
		},
	}
}

func newOnceCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "once [config]",
		Short: "Run a single polling cycle and exit",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPoller(cmd, args, false)
		},
	}
}

func runPoller(cmd *cobra.Command, args []string, continuous bool) error {
	a, err := loadApp(args)
	if err != nil {
		return err
	}
	defer func() { _ = a.logger.Sync() }()

	release, err := a.store.Lock()
	if err != nil {
		if errors.Is(err, file.ErrLocked) {
			a.logger.Error("state_locked", zap.String("path", a.cfg.StateFile))
		}
		return err
	}
	defer release()

	ctx := cmd.Context()
	if continuous && a.cfg.StatusAddr != "" {
		srv := httpapi.NewServer(a.logger, a.scheduler, a.cfg.StatusTokens)
		go func() {
			if err := srv.Serve(ctx, a.cfg.StatusAddr); err != nil {
				a.logger.Error("status_server_failed", zap.Error(err))
			}
		}()
	}

	if err := a.scheduler.Run(ctx, continuous); err != nil {
		var ae *auth.AuthError
		if errors.As(err, &ae) {
			a.logger.Error("fatal_auth", zap.Int("status", ae.StatusCode), zap.String("body", ae.Body))
		}
		return err
	}
	return nil
}
