package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"visitr/internal/engine/visits"
	"visitr/internal/platform/config"
	"visitr/internal/platform/models"
)

const EventGuestOverdue = "guest.overdue"

const defaultMaxTries = 3

type Event struct {
	ID             string      `json:"id"`
	Event          string      `json:"event"`
	Timestamp      int64       `json:"timestamp"`
	OrganizationID string      `json:"organizationId"`
	Data           interface{} `json:"data"`
}

// OverdueGuest is the payload of a guest.overdue event.
type OverdueGuest struct {
	GuestID        string    `json:"guestId"`
	GuestName      string    `json:"guestName"`
	GuestPhone     string    `json:"guestPhone"`
	GuestCode      string    `json:"guestCode"`
	Location       string    `json:"location"`
	PersonToSee    string    `json:"personToSee"`
	IDCardNumber   *string   `json:"idCardNumber"`
	SignInTime     time.Time `json:"signInTime"`
	ExpectedEnd    time.Time `json:"expectedEnd"`
	OverdueMinutes int       `json:"overdueMinutes"`
}

func NewOverdueGuest(g *models.Guest, now time.Time) OverdueGuest {
	return OverdueGuest{
		GuestID:        g.ID,
		GuestName:      g.GuestName,
		GuestPhone:     g.GuestPhone,
		GuestCode:      g.GuestCode,
		Location:       g.Location,
		PersonToSee:    g.PersonToSee,
		IDCardNumber:   g.IDCardNumber,
		SignInTime:     g.SignInTime,
		ExpectedEnd:    visits.ExpectedEnd(g),
		OverdueMinutes: -visits.RemainingMinutes(g, now),
	}
}

// Dispatcher delivers signed events to the security webhook endpoint.
type Dispatcher struct {
	url        string
	secret     string
	client     *http.Client
	maxTries   uint
	newBackOff func() backoff.BackOff
	now        func() time.Time
}

func NewDispatcher(cfg config.NotificationsConfig) *Dispatcher {
	return &Dispatcher{
		url:      cfg.SecurityWebhookURL,
		secret:   cfg.Secret,
		client:   &http.Client{Timeout: 10 * time.Second},
		maxTries: defaultMaxTries,
		newBackOff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff()
		},
		now: time.Now,
	}
}

func (d *Dispatcher) Enabled() bool {
	return d.url != ""
}

// Dispatch sends one event and retries transient failures. 4xx responses
// are not retried.
func (d *Dispatcher) Dispatch(ctx context.Context, eventType, orgID string, data interface{}) error {
	event := &Event{
		ID:             "evt_" + uuid.NewString(),
		Event:          eventType,
		Timestamp:      d.now().Unix(),
		OrganizationID: orgID,
		Data:           data,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	signature := Sign(d.secret, payload)

	deliver := func() (struct{}, error) {
		return struct{}{}, d.deliver(ctx, event, payload, signature)
	}
	_, err = backoff.Retry(ctx, deliver,
		backoff.WithBackOff(d.newBackOff()),
		backoff.WithMaxTries(d.maxTries),
		backoff.WithNotify(func(err error, next time.Duration) {
			log.Warn().Err(err).Str("delivery_id", event.ID).Dur("retry_in", next).Msg("webhook delivery failed")
		}),
	)
	return err
}

var (
	errServer = errors.New("webhook endpoint error")

	// ErrRejected marks a delivery the endpoint refused with a 4xx status.
	// Sending the same event again will not succeed.
	ErrRejected = errors.New("webhook rejected")
)

func (d *Dispatcher) deliver(ctx context.Context, event *Event, payload []byte, signature string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(payload))
	if err != nil {
		return backoff.Permanent(err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Visitr-Signature", signature)
	req.Header.Set("X-Visitr-Event", event.Event)
	req.Header.Set("X-Visitr-Delivery", event.ID)

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()

	switch {
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: HTTP %d", errServer, resp.StatusCode)
	case resp.StatusCode >= 400:
		return backoff.Permanent(fmt.Errorf("%w: HTTP %d", ErrRejected, resp.StatusCode))
	}
	return nil
}
