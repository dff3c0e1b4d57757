package dashboard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"visitr/internal/engine/visits"
	"visitr/internal/platform/models"
)

const (
	DefaultExpiryInterval  = time.Second
	DefaultRefreshInterval = 10 * time.Second
	DefaultPageSize        = 50
)

type API interface {
	ListGuests(ctx context.Context, token, status string, limit int) ([]*models.Guest, error)
	Stats(ctx context.Context, token string) (*models.DashboardStats, error)
	SignOut(ctx context.Context, token, guestID string) error
}

type WatcherOptions struct {
	ExpiryInterval  time.Duration
	RefreshInterval time.Duration
	PageSize        int
	Status          string
	// OnUpdate is called after every refresh and expiry scan.
	OnUpdate func(Snapshot)
}

// Watcher runs the dashboard's two background tasks: a frequent scan that
// signs out overdue guests, and a slower refresh of guests and stats.
type Watcher struct {
	api     API
	session *Session
	store   *Store
	opts    WatcherOptions
	now     func() time.Time

	mu       sync.Mutex
	inFlight map[string]bool
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

func NewWatcher(api API, session *Session, store *Store, opts WatcherOptions) *Watcher {
	if opts.ExpiryInterval <= 0 {
		opts.ExpiryInterval = DefaultExpiryInterval
	}
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = DefaultRefreshInterval
	}
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	return &Watcher{
		api:      api,
		session:  session,
		store:    store,
		opts:     opts,
		now:      time.Now,
		inFlight: make(map[string]bool),
	}
}

// Start loads the first page and launches both tasks. It returns the error
// of the initial refresh, the tasks run regardless.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.cancel != nil {
		w.mu.Unlock()
		return errors.New("watcher already started")
	}
	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.mu.Unlock()

	err := w.Refresh(ctx)

	w.wg.Add(2)
	go w.loop(ctx, w.opts.ExpiryInterval, w.ExpireOverdue)
	go w.loop(ctx, w.opts.RefreshInterval, func(ctx context.Context) {
		if err := w.Refresh(ctx); err != nil && ctx.Err() == nil {
			log.Warn().Err(err).Msg("dashboard refresh failed")
		}
	})
	return err
}

// Stop cancels both tasks and waits for them and any in-flight sign-outs.
func (w *Watcher) Stop() {
	w.mu.Lock()
	cancel := w.cancel
	w.cancel = nil
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	w.wg.Wait()
}

func (w *Watcher) loop(ctx context.Context, interval time.Duration, tick func(context.Context)) {
	defer w.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tick(ctx)
		}
	}
}

// Refresh re-fetches guests and stats into the store.
func (w *Watcher) Refresh(ctx context.Context) error {
	token, err := w.session.Token()
	if err != nil {
		w.store.SetError(err)
		return err
	}

	guests, err := w.api.ListGuests(ctx, token, w.opts.Status, w.opts.PageSize)
	if err != nil {
		w.store.SetError(err)
		return err
	}
	stats, err := w.api.Stats(ctx, token)
	if err != nil {
		w.store.SetError(err)
		return err
	}

	w.store.Set(guests, stats, w.now())
	w.notify()
	return nil
}

func (w *Watcher) notify() {
	if w.opts.OnUpdate != nil {
		w.opts.OnUpdate(w.store.Snapshot())
	}
}

// claim marks a guest as being signed out. It reports false if a sign-out
// for the guest is already running.
func (w *Watcher) claim(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.inFlight[id] {
		return false
	}
	w.inFlight[id] = true
	return true
}

func (w *Watcher) release(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.inFlight, id)
}

// ExpireOverdue issues one admin sign-out per displayed guest whose expected
// end has passed.
func (w *Watcher) ExpireOverdue(ctx context.Context) {
	now := w.now()
	for _, g := range w.store.Snapshot().Guests {
		if !visits.IsExpired(g, now) || !w.claim(g.ID) {
			continue
		}

		w.wg.Add(1)
		go func(g *models.Guest) {
			defer w.wg.Done()
			defer w.release(g.ID)
			w.expire(ctx, g)
		}(g)
	}
	w.notify()
}

func (w *Watcher) expire(ctx context.Context, g *models.Guest) {
	token, err := w.session.Token()
	if err != nil {
		return
	}

	err = w.api.SignOut(ctx, token, g.ID)
	switch {
	case err == nil:
		log.Info().Str("guest_id", g.ID).Str("guest", g.GuestName).Msg("auto signed out overdue guest")
	case errors.Is(err, ErrNotFound):
		// already signed out elsewhere
		log.Debug().Str("guest_id", g.ID).Msg("overdue guest was already signed out")
	default:
		if ctx.Err() == nil {
			log.Error().Err(err).Str("guest_id", g.ID).Msg("auto sign-out failed")
		}
		return
	}

	w.store.MarkSignedOut(g.ID, w.now())
	if err := w.Refresh(ctx); err != nil && ctx.Err() == nil {
		log.Warn().Err(err).Msg("dashboard refresh failed")
	}
}
