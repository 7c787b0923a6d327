package main

import (
	"go.uber.org/zap"

	"github.com/hamed0406/twitchalerts/internal/auth"
	"github.com/hamed0406/twitchalerts/internal/config"
	"github.com/hamed0406/twitchalerts/internal/logging"
	"github.com/hamed0406/twitchalerts/internal/notify"
	"github.com/hamed0406/twitchalerts/internal/probe"
	"github.com/hamed0406/twitchalerts/internal/repo/file"
	"github.com/hamed0406/twitchalerts/internal/scheduler"
)

// app is the wired set of components built from one config.
type app struct {
	cfg        config.Config
	logger     *zap.Logger
	store      *file.Store
	dispatcher *notify.Dispatcher
	scheduler  *scheduler.Scheduler
}

func loadApp(args []string) (*app, error) {
	cfg, err := config.Load(config.ResolvePath(args))
	if err != nil {
		return nil, err
	}

	logger, err := logging.NewLogger(logging.Options{
		Dir:     cfg.LogDir,
		Level:   cfg.LogLevel,
		Console: true,
	})
	if err != nil {
		return nil, err
	}

	timeout := cfg.RequestTimeout()
	store := file.New(cfg.StateFile, logger)
	dispatcher := notify.NewDispatcher(logger,
		notify.NewDiscord(cfg.DiscordWebhookURL, cfg.ScanInterval()),
		notify.NewSlack(cfg.SlackWebhookURL),
		notify.NewPagerDuty(cfg.PagerDutyKey, cfg.PagerDutyURL),
	)

	sched := scheduler.New(
		logger,
		auth.NewManager(cfg.TwitchAuthURL, timeout),
		probe.NewHelixProber(cfg.TwitchStreamsURL, timeout),
		store,
		dispatcher,
		scheduler.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Channels:     cfg.Channels,
			Interval:     cfg.ScanInterval(),
		},
	)

	return &app{
		cfg:        cfg,
		logger:     logger,
		store:      store,
		dispatcher: dispatcher,
		scheduler:  sched,
	}, nil
}
