package dashboard

import (
	"sync"
	"time"

	"visitr/internal/platform/models"
)

// Snapshot is a consistent copy of the dashboard view state.
type Snapshot struct {
	Guests      []*models.Guest
	Stats       *models.DashboardStats
	RefreshedAt time.Time
	Err         error
}

// Store is the view state shared by the refresh and expiry tasks.
type Store struct {
	mu   sync.RWMutex
	snap Snapshot
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) Set(guests []*models.Guest, stats *models.DashboardStats, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = Snapshot{Guests: guests, Stats: stats, RefreshedAt: at}
}

// SetError keeps the last good data and records why the refresh failed.
func (s *Store) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Err = err
}

// MarkSignedOut updates a guest locally so the next expiry scan skips it
// before the following refresh lands.
func (s *Store) MarkSignedOut(id string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, g := range s.snap.Guests {
		if g.ID != id {
			continue
		}
		cp := *g
		cp.Status = models.StatusSignedOut
		cp.SignOutTime = &at
		s.snap.Guests[i] = &cp
	}
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := s.snap
	snap.Guests = append([]*models.Guest(nil), s.snap.Guests...)
	return snap
}
