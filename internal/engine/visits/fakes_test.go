package visits

import (
	"context"
	"sort"
	"sync"
	"time"

	"visitr/internal/platform/models"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeOrgs map[string]*models.Organization

func (f fakeOrgs) GetByID(ctx context.Context, id string) (*models.Organization, error) {
	return f[id], nil
}

// memGuests is an in-memory GuestRepository with a unique guest code index.
type memGuests struct {
	mu      sync.Mutex
	byID    map[string]*models.Guest
	codes   map[string]bool
	creates int
}

func newMemGuests() *memGuests {
	return &memGuests{byID: map[string]*models.Guest{}, codes: map[string]bool{}}
}

func (m *memGuests) Create(ctx context.Context, g *models.Guest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates++
	if m.codes[g.GuestCode] {
		return models.ErrDuplicateKey
	}
	cp := *g
	m.byID[g.ID] = &cp
	m.codes[g.GuestCode] = true
	return nil
}

func (m *memGuests) find(orgID, id string) *models.Guest {
	g, ok := m.byID[id]
	if !ok || g.OrganizationID != orgID {
		return nil
	}
	return g
}

func (m *memGuests) GetByID(ctx context.Context, orgID, id string) (*models.Guest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g := m.find(orgID, id)
	if g == nil {
		return nil, nil
	}
	cp := *g
	return &cp, nil
}

func (m *memGuests) GetSignedInByCode(ctx context.Context, orgID, code string) (*models.Guest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, g := range m.byID {
		if g.OrganizationID == orgID && g.GuestCode == code && g.Status == models.StatusSignedIn {
			cp := *g
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memGuests) SignOut(ctx context.Context, orgID, id string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g := m.find(orgID, id)
	if g == nil || g.Status != models.StatusSignedIn {
		return false, nil
	}
	g.Status = models.StatusSignedOut
	g.SignOutTime = &at
	g.UpdatedAt = at
	return true, nil
}

func (m *memGuests) AssignIDCard(ctx context.Context, orgID, id, card string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g := m.find(orgID, id)
	if g == nil || g.Status != models.StatusSignedIn {
		return false, nil
	}
	g.IDCardNumber = &card
	g.IDCardAssigned = true
	return true, nil
}

func (m *memGuests) Extend(ctx context.Context, orgID, id string, minutes int, at time.Time) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g := m.find(orgID, id)
	if g == nil || g.Status != models.StatusSignedIn {
		return 0, false, nil
	}
	g.ExpectedDuration += minutes
	return g.ExpectedDuration, true, nil
}

func (m *memGuests) all(orgID string) []*models.Guest {
	var out []*models.Guest
	for _, g := range m.byID {
		if g.OrganizationID == orgID {
			cp := *g
			out = append(out, &cp)
		}
	}
	return out
}

func (m *memGuests) List(ctx context.Context, f models.GuestFilter) ([]*models.Guest, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched []*models.Guest
	for _, g := range m.all(f.OrganizationID) {
		switch f.Status {
		case "":
		case models.StatusExpired:
			if !IsExpired(g, f.Now) {
				continue
			}
		default:
			if g.Status != f.Status {
				continue
			}
		}
		matched = append(matched, g)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := int64(len(matched))
	if f.Offset >= len(matched) {
		return nil, total, nil
	}
	end := f.Offset + f.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[f.Offset:end], total, nil
}

func (m *memGuests) ListBySignIn(ctx context.Context, orgID string, r models.DateRange) ([]*models.Guest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Guest
	for _, g := range m.all(orgID) {
		if !r.From.IsZero() && g.SignInTime.Before(r.From) {
			continue
		}
		if !r.Until.IsZero() && !g.SignInTime.Before(r.Until) {
			continue
		}
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SignInTime.After(out[j].SignInTime) })
	return out, nil
}

func (m *memGuests) Recent(ctx context.Context, orgID string, limit int) ([]*models.Guest, error) {
	guests, _, err := m.List(ctx, models.GuestFilter{OrganizationID: orgID, Limit: limit})
	return guests, err
}

func (m *memGuests) Stats(ctx context.Context, orgID string, dayStart, dayEnd time.Time) (*models.DashboardStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := &models.DashboardStats{}
	for _, g := range m.all(orgID) {
		stats.TotalGuests++
		if g.Status == models.StatusSignedIn {
			stats.ActiveGuests++
			if !g.IDCardAssigned {
				stats.PendingIDAssignments++
			}
		}
		if !g.CreatedAt.Before(dayStart) && g.CreatedAt.Before(dayEnd) {
			stats.TodayGuests++
		}
	}
	return stats, nil
}
