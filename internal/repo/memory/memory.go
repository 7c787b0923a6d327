package memory

import (
	"context"
	"sync"

	"github.com/hamed0406/twitchalerts/internal/domain"
)

type Store struct {
	mu    sync.RWMutex
	snap  domain.Snapshot
	saves int
}

func New() *Store {
	return &Store{snap: domain.Snapshot{}}
}

func (m *Store) Load(ctx context.Context) domain.Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snap.Clone()
}

func (m *Store) Save(ctx context.Context, s domain.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = s.Clone()
	m.saves++
	return nil
}

// Saves reports how many times Save has been called.
func (m *Store) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}
