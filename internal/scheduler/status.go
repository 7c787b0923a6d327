package scheduler

import (
	"sort"
	"time"

	"github.com/hamed0406/twitchalerts/internal/domain"
)

// Status is a read-only view of the loop for the status endpoint.
type Status struct {
	State       State                  `json:"state"`
	NextScanAt  time.Time              `json:"next_scan_at"`
	LastCycleAt time.Time              `json:"last_cycle_at"`
	Snapshot    domain.Snapshot        `json:"snapshot"`
	Live        []domain.ChannelStatus `json:"live"`
}

func (s *Scheduler) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.status
	out.Snapshot = s.status.Snapshot.Clone()
	out.Live = append([]domain.ChannelStatus(nil), s.status.Live...)
	return out
}

func (s *Scheduler) setState(st State) {
	s.mu.Lock()
	s.status.State = st
	s.mu.Unlock()
}

func (s *Scheduler) recordCycle(at time.Time, snap domain.Snapshot, live map[string]domain.ChannelStatus) {
	statuses := make([]domain.ChannelStatus, 0, len(live))
	for _, st := range live {
		statuses = append(statuses, st)
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Name < statuses[j].Name })

	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.LastCycleAt = at
	s.status.NextScanAt = s.nextScanAt
	s.status.Snapshot = snap.Clone()
	s.status.Live = statuses
}
