package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visitr/internal/platform/models"
)

type fakeAPI struct {
	mu       sync.Mutex
	guests   []*models.Guest
	lists    int
	signOuts map[string]int
	signErr  map[string]error
	// block, when set, holds every SignOut until closed.
	block chan struct{}
}

func newFakeAPI(guests ...*models.Guest) *fakeAPI {
	return &fakeAPI{guests: guests, signOuts: map[string]int{}, signErr: map[string]error{}}
}

func (f *fakeAPI) ListGuests(ctx context.Context, token, status string, limit int) ([]*models.Guest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	out := make([]*models.Guest, 0, len(f.guests))
	for _, g := range f.guests {
		cp := *g
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeAPI) Stats(ctx context.Context, token string) (*models.DashboardStats, error) {
	return &models.DashboardStats{TotalGuests: int64(len(f.guests))}, nil
}

func (f *fakeAPI) SignOut(ctx context.Context, token, id string) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signOuts[id]++
	if err := f.signErr[id]; err != nil {
		return err
	}
	for _, g := range f.guests {
		if g.ID == id {
			g.Status = models.StatusSignedOut
		}
	}
	return nil
}

func (f *fakeAPI) calls(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.signOuts[id]
}

type staticAuth struct{}

func (staticAuth) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	return &LoginResult{Token: "tok", Organization: &models.Organization{ID: "org1", Name: "Acme"}}, nil
}

func loggedIn(t *testing.T) *Session {
	t.Helper()
	s := NewSession(staticAuth{})
	require.NoError(t, s.Load(context.Background(), "a@acme.com", "pw"))
	return s
}

var now0 = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func guest(id string, signedInAgo time.Duration, expected int) *models.Guest {
	return &models.Guest{
		ID:               id,
		GuestName:        "Guest " + id,
		GuestCode:        "10000" + id[len(id)-1:],
		Status:           models.StatusSignedIn,
		SignInTime:       now0.Add(-signedInAgo),
		ExpectedDuration: expected,
	}
}

func newTestWatcher(api API, session *Session) (*Watcher, *Store) {
	store := NewStore()
	w := NewWatcher(api, session, store, WatcherOptions{})
	w.now = func() time.Time { return now0 }
	return w, store
}

func TestWatcher_ExpireOverdue(t *testing.T) {
	api := newFakeAPI(guest("g1", 40*time.Minute, 30), guest("g2", 10*time.Minute, 30))
	w, store := newTestWatcher(api, loggedIn(t))
	ctx := context.Background()

	require.NoError(t, w.Refresh(ctx))
	w.ExpireOverdue(ctx)
	w.wg.Wait()

	assert.Equal(t, 1, api.calls("g1"))
	assert.Equal(t, 0, api.calls("g2"))

	snap := store.Snapshot()
	require.Len(t, snap.Guests, 2)
	assert.Equal(t, models.StatusSignedOut, snap.Guests[0].Status)
	assert.Equal(t, models.StatusSignedIn, snap.Guests[1].Status)

	// the guest is no longer signed in, so a later scan does nothing
	w.ExpireOverdue(ctx)
	w.wg.Wait()
	assert.Equal(t, 1, api.calls("g1"))
}

func TestWatcher_InFlightGuard(t *testing.T) {
	api := newFakeAPI(guest("g1", time.Hour, 30))
	api.block = make(chan struct{})
	w, _ := newTestWatcher(api, loggedIn(t))
	ctx := context.Background()

	require.NoError(t, w.Refresh(ctx))
	for i := 0; i < 5; i++ {
		w.ExpireOverdue(ctx)
	}
	close(api.block)
	w.wg.Wait()

	assert.Equal(t, 1, api.calls("g1"))
	assert.Empty(t, w.inFlight)
}

func TestWatcher_NotFoundCountsAsDone(t *testing.T) {
	api := newFakeAPI(guest("g1", time.Hour, 30))
	api.signErr["g1"] = fmt.Errorf("PATCH: %w", ErrNotFound)
	w, store := newTestWatcher(api, loggedIn(t))
	ctx := context.Background()

	require.NoError(t, w.Refresh(ctx))
	listsBefore := api.lists
	w.ExpireOverdue(ctx)
	w.wg.Wait()

	assert.Equal(t, listsBefore+1, api.lists, "404 triggers a refresh")
	// the fake still reports the guest signed in after the refresh
	assert.Equal(t, models.StatusSignedIn, store.Snapshot().Guests[0].Status)
}

func TestWatcher_FailureIsRetriedNextTick(t *testing.T) {
	api := newFakeAPI(guest("g1", time.Hour, 30))
	api.signErr["g1"] = errors.New("boom")
	w, store := newTestWatcher(api, loggedIn(t))
	ctx := context.Background()

	require.NoError(t, w.Refresh(ctx))
	w.ExpireOverdue(ctx)
	w.wg.Wait()
	w.ExpireOverdue(ctx)
	w.wg.Wait()

	assert.Equal(t, 2, api.calls("g1"))
	assert.Equal(t, models.StatusSignedIn, store.Snapshot().Guests[0].Status)
}

func TestWatcher_RefreshWithoutSession(t *testing.T) {
	w, store := newTestWatcher(newFakeAPI(), NewSession(staticAuth{}))

	err := w.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrNoSession)
	assert.ErrorIs(t, store.Snapshot().Err, ErrNoSession)
}

func TestWatcher_StartStop(t *testing.T) {
	api := newFakeAPI(guest("g1", time.Hour, 30))
	store := NewStore()

	updates := make(chan Snapshot, 64)
	w := NewWatcher(api, loggedIn(t), store, WatcherOptions{
		ExpiryInterval:  5 * time.Millisecond,
		RefreshInterval: 20 * time.Millisecond,
		OnUpdate: func(s Snapshot) {
			select {
			case updates <- s:
			default:
			}
		},
	})

	require.NoError(t, w.Start(context.Background()))
	assert.Error(t, w.Start(context.Background()))

	assert.Eventually(t, func() bool { return api.calls("g1") == 1 }, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool {
		snap := store.Snapshot()
		return len(snap.Guests) == 1 && snap.Guests[0].Status == models.StatusSignedOut
	}, time.Second, 5*time.Millisecond)

	w.Stop()
	lists := func() int {
		api.mu.Lock()
		defer api.mu.Unlock()
		return api.lists
	}
	after := lists()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, lists())
	assert.NotEmpty(t, updates)
}
