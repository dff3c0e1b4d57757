package orgs

import (
	"slices"
	"sync"
	"time"

	"visitr/internal/platform/models"
)

type cachedOrganization struct {
	org      models.Organization
	cachedAt time.Time
}

// Cache keeps recently read organizations so guest traffic and token checks
// do not hit the store on every request.
type Cache struct {
	store sync.Map // map[id]*cachedOrganization
	ttl   time.Duration
	now   func() time.Time
}

func NewCache(ttl time.Duration) *Cache {
	return &Cache{ttl: ttl, now: time.Now}
}

func (c *Cache) Get(id string) (*models.Organization, bool) {
	if c.ttl <= 0 {
		return nil, false
	}

	val, ok := c.store.Load(id)
	if !ok {
		return nil, false
	}

	entry := val.(*cachedOrganization)
	if c.now().Sub(entry.cachedAt) > c.ttl {
		c.store.Delete(id)
		return nil, false
	}

	org := entry.org
	org.Locations = slices.Clone(org.Locations)
	org.StaffMembers = slices.Clone(org.StaffMembers)
	return &org, true
}

func (c *Cache) Set(org *models.Organization) {
	if c.ttl <= 0 || org == nil {
		return
	}
	c.store.Store(org.ID, &cachedOrganization{org: *org, cachedAt: c.now()})
}

func (c *Cache) Invalidate(id string) {
	c.store.Delete(id)
}
