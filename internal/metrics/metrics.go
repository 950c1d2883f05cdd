package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "queueless"

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		},
		[]string{"route", "method", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	reservations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reservations_total",
			Help:      "Reservation lifecycle events by resulting status.",
		},
		[]string{"status"},
	)

	reservationConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reservation_conflicts_total",
			Help:      "Reservation writes rejected because the slot was taken.",
		},
	)

	availabilityCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "availability_cache_total",
			Help:      "Availability cache lookups by result (hit, miss).",
		},
		[]string{"result"},
	)

	queueTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queue_transitions_total",
			Help:      "Queue entry status changes by target status.",
		},
		[]string{"status"},
	)

	registrations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "company_registrations_total",
			Help:      "Company registration requests by outcome.",
		},
		[]string{"status"},
	)

	wsClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queue_ws_clients",
			Help:      "Connected live queue websocket clients.",
		},
	)
)

// Register registers all collectors with the default registry. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			httpDuration,
			reservations,
			reservationConflicts,
			availabilityCache,
			queueTransitions,
			registrations,
			wsClients,
		)
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func ObserveHTTP(route, method string, status int, elapsed time.Duration) {
	httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

func IncReservation(status string) {
	reservations.WithLabelValues(status).Inc()
}

func IncReservationConflict() {
	reservationConflicts.Inc()
}

func IncAvailabilityCache(hit bool) {
	if hit {
		availabilityCache.WithLabelValues("hit").Inc()
		return
	}
	availabilityCache.WithLabelValues("miss").Inc()
}

func IncQueueTransition(status string) {
	queueTransitions.WithLabelValues(status).Inc()
}

func IncRegistration(status string) {
	registrations.WithLabelValues(status).Inc()
}

func WSClientConnected()    { wsClients.Inc() }
func WSClientDisconnected() { wsClients.Dec() }
