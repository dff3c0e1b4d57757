package notify

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"visitr/internal/platform/metrics"
	"visitr/internal/platform/models"
)

type OverdueRepository interface {
	ListOverdue(ctx context.Context, now time.Time, limit int) ([]*models.Guest, error)
	MarkSecurityNotified(ctx context.Context, id string, at time.Time) error
}

type Notifier interface {
	Dispatch(ctx context.Context, eventType, orgID string, data interface{}) error
}

// Sweeper tells security about signed-in guests who stayed past their
// expected end. Each guest is reported once. The visit itself is left
// signed in.
type Sweeper struct {
	repo      OverdueRepository
	notifier  Notifier
	batchSize int
	now       func() time.Time
}

func NewSweeper(repo OverdueRepository, notifier Notifier, batchSize int) *Sweeper {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Sweeper{repo: repo, notifier: notifier, batchSize: batchSize, now: time.Now}
}

// Run sweeps once immediately and then on every tick until ctx is done.
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info().Dur("interval", interval).Msg("overdue sweeper started")

	for {
		if _, err := s.Sweep(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("overdue sweep failed")
		}

		select {
		case <-ctx.Done():
			log.Info().Msg("overdue sweeper stopped")
			return
		case <-ticker.C:
		}
	}
}

// Sweep notifies one batch and returns how many guests were reported.
// Transient delivery failures stay unmarked and are picked up by the next
// sweep. Events the endpoint rejects are marked so they do not hold the
// head of the queue.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	now := s.now()
	guests, err := s.repo.ListOverdue(ctx, now, s.batchSize)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, g := range guests {
		if ctx.Err() != nil {
			return sent, ctx.Err()
		}

		err := s.notifier.Dispatch(ctx, EventGuestOverdue, g.OrganizationID, NewOverdueGuest(g, now))
		switch {
		case errors.Is(err, ErrRejected):
			metrics.ObserveSecurityNotification("rejected")
			log.Error().Err(err).Str("guest_id", g.ID).Msg("overdue notification rejected, not retrying")
		case err != nil:
			metrics.ObserveSecurityNotification("failed")
			log.Error().Err(err).Str("guest_id", g.ID).Msg("overdue notification failed")
			continue
		default:
			metrics.ObserveSecurityNotification("sent")
			sent++
		}

		if err := s.repo.MarkSecurityNotified(ctx, g.ID, s.now()); err != nil {
			log.Error().Err(err).Str("guest_id", g.ID).Msg("failed to mark guest as reported")
		}
	}

	if sent > 0 {
		log.Info().Int("notified", sent).Msg("overdue guests reported to security")
	}
	return sent, nil
}
