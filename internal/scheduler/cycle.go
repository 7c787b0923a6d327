package scheduler

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/hamed0406/twitchalerts/internal/domain"
	"github.com/hamed0406/twitchalerts/internal/probe"
)

func (s *Scheduler) cycle(ctx context.Context) error {
	log := s.Logger.With(zap.String("cycle_id", uuid.NewString()))
	defer s.setState(StateIdle)

	s.setState(StateAuthenticating)
	cred, err := s.Auth.Ensure(ctx, s.cfg.ClientID, s.cfg.ClientSecret, s.cred)
	if err != nil {
		if ctx.Err() != nil {
			log.Info("cycle_abandoned", zap.Error(ctx.Err()))
			return nil
		}
		// critical; loggers here are never built with zap.Development
		log.DPanic("auth_failed", zap.Bool("fatal", true), zap.Error(err))
		return err
	}
	if s.cred == nil || s.cred.Token != cred.Token {
		log.Info("auth_refreshed", zap.Time("expires_at", cred.ExpiresAt))
	}
	s.cred = &cred

	s.setState(StateProbing)
	current, live := probe.ProbeAll(ctx, s.Prober, s.cfg.Channels, cred, log)
	if ctx.Err() != nil {
		// interrupted mid-cycle; keep the previous snapshot
		log.Info("cycle_abandoned", zap.Error(ctx.Err()))
		return nil
	}

	previous := s.Store.Load(ctx)
	newlyLive := domain.Transitions(previous, current)
	log.Info("cycle_diff",
		zap.Int("channels", len(current)),
		zap.Int("live", len(live)),
		zap.Strings("newly_live", newlyLive),
	)

	if err := s.Store.Save(ctx, current); err != nil {
		log.Error("state_save_failed", zap.Error(err))
	}

	now := s.Now()
	s.nextScanAt = now.Add(s.cfg.Interval)
	s.recordCycle(now, current, live)

	if len(newlyLive) == 0 {
		return nil
	}

	s.setState(StateNotifying)
	batch := domain.Batch(live, newlyLive)
	if err := s.Notifier.Dispatch(ctx, batch); err != nil {
		log.Warn("notify_incomplete", zap.Int("failed_sinks", len(multierr.Errors(err))))
	}
	return nil
}
