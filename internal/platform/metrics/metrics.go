package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "visitr_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "visitr_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	guestEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "visitr_guest_events_total",
		Help: "Visit lifecycle transitions by event",
	}, []string{"event"})

	securityNotifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "visitr_security_notifications_total",
		Help: "Overdue visit notifications sent to security, by result",
	}, []string{"result"})

	rateLimited = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "visitr_rate_limited_requests_total",
		Help: "Requests rejected by the rate limiter",
	}, []string{"scope"})
)

// Guest lifecycle events.
const (
	EventRegistered  = "registered"
	EventSelfSignOut = "self_sign_out"
	EventSignOut     = "admin_sign_out"
	EventExtended    = "extended"
	EventIDAssigned  = "id_assigned"
)

func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

func ObserveGuestEvent(event string) {
	guestEvents.WithLabelValues(event).Inc()
}

// ObserveSecurityNotification counts a delivery attempt outcome: "sent", "failed" or "rejected".
func ObserveSecurityNotification(result string) {
	securityNotifications.WithLabelValues(result).Inc()
}

func ObserveRateLimited(scope string) {
	rateLimited.WithLabelValues(scope).Inc()
}

// Handler exposes the default registry for scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}
