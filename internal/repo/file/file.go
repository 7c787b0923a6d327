package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"go.uber.org/zap"

	"github.com/hamed0406/twitchalerts/internal/domain"
)

// ErrLocked means another poller already owns the state file.
var ErrLocked = errors.New("state file is locked by another poller")

// Store keeps the snapshot as a flat JSON object of channel name to bool.
type Store struct {
	Path   string
	Logger *zap.Logger

	lock *flock.Flock
}

func New(path string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		Path:   path,
		Logger: logger,
		lock:   flock.New(path + ".lock"),
	}
}

// Lock takes an exclusive, non-blocking lock next to the state file.
// The returned func releases it.
func (s *Store) Lock() (func(), error) {
	if dir := filepath.Dir(s.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create state dir: %w", err)
		}
	}
	ok, err := s.lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock state file: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}
	return func() {
		if err := s.lock.Unlock(); err != nil {
			s.Logger.Warn("state_unlock_failed", zap.String("path", s.Path), zap.Error(err))
		}
	}, nil
}

func (s *Store) Load(ctx context.Context) domain.Snapshot {
	b, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		s.Logger.Debug("state_absent", zap.String("path", s.Path))
		return domain.Snapshot{}
	}
	if err != nil {
		s.Logger.Warn("state_unreadable", zap.String("path", s.Path), zap.Error(err))
		return domain.Snapshot{}
	}

	snap := domain.Snapshot{}
	if err := json.Unmarshal(b, &snap); err != nil {
		s.Logger.Warn("state_corrupt", zap.String("path", s.Path), zap.Error(err))
		return domain.Snapshot{}
	}
	s.Logger.Debug("state_loaded", zap.String("path", s.Path), zap.Int("channels", len(snap)))
	return snap
}

// Save writes to a temp file in the same directory and renames it over the
// state file.
func (s *Store) Save(ctx context.Context, snap domain.Snapshot) error {
	if snap == nil {
		snap = domain.Snapshot{}
	}
	b, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	tmp := s.Path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open temp state: %w", err)
	}
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("write temp state: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("sync temp state: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close temp state: %w", err)
	}
	if err := os.Rename(tmp, s.Path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace state: %w", err)
	}

	s.Logger.Debug("state_saved", zap.String("path", s.Path), zap.Int("channels", len(snap)))
	return nil
}
