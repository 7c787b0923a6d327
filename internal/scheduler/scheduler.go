package scheduler

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/twitchalerts/internal/domain"
	"github.com/hamed0406/twitchalerts/internal/probe"
	"github.com/hamed0406/twitchalerts/internal/repo"
)

// CredentialSource hands out a valid credential, reusing current when possible.
type CredentialSource interface {
	Ensure(ctx context.Context, clientID, clientSecret string, current *domain.Credential) (domain.Credential, error)
}

// Notifier delivers a batch of newly live channels.
type Notifier interface {
	Dispatch(ctx context.Context, batch []domain.ChannelStatus) error
}

type State int

const (
	StateIdle State = iota
	StateAuthenticating
	StateProbing
	StateNotifying
)

func (s State) String() string {
	switch s {
	case StateAuthenticating:
		return "authenticating"
	case StateProbing:
		return "probing"
	case StateNotifying:
		return "notifying"
	default:
		return "idle"
	}
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

type Config struct {
	ClientID     string
	ClientSecret string
	Channels     []string
	Interval     time.Duration // between cycles
	Tick         time.Duration // between gate checks in continuous mode
}

type Scheduler struct {
	Logger   *zap.Logger
	Auth     CredentialSource
	Prober   probe.Prober
	Store    repo.SnapshotStore
	Notifier Notifier
	Now      func() time.Time

	cfg        Config
	cred       *domain.Credential
	nextScanAt time.Time

	mu     sync.RWMutex
	status Status
}

func New(
	logger *zap.Logger,
	auth CredentialSource,
	prober probe.Prober,
	store repo.SnapshotStore,
	notifier Notifier,
	cfg Config,
) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 300 * time.Second
	}
	if cfg.Tick <= 0 {
		cfg.Tick = 100 * time.Millisecond
	}
	cfg.Channels = append([]string(nil), cfg.Channels...)
	sort.Strings(cfg.Channels)

	return &Scheduler{
		Logger:   logger,
		Auth:     auth,
		Prober:   prober,
		Store:    store,
		Notifier: notifier,
		Now:      time.Now,
		cfg:      cfg,
	}
}

// Run drives the polling loop. With continuous false it performs exactly one
// gated check and returns. It returns nil on cancellation and a non-nil error
// only when no credential could be obtained.
func (s *Scheduler) Run(ctx context.Context, continuous bool) error {
	s.Logger.Info("scheduler_started",
		zap.Bool("continuous", continuous),
		zap.Strings("channels", s.cfg.Channels),
		zap.Duration("interval", s.cfg.Interval),
	)

	timer := time.NewTimer(s.cfg.Tick)
	defer timer.Stop()

	for {
		if ctx.Err() != nil {
			s.Logger.Info("scheduler_stopped", zap.String("reason", "interrupted"))
			return nil
		}

		if !s.Now().Before(s.nextScanAt) {
			if err := s.cycle(ctx); err != nil {
				return err
			}
		}

		if !continuous {
			return nil
		}

		timer.Reset(s.cfg.Tick)
		select {
		case <-ctx.Done():
		case <-timer.C:
		}
	}
}

// NextScanAt is when the next cycle is allowed to start.
func (s *Scheduler) NextScanAt() time.Time { return s.nextScanAt }
