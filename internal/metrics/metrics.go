// Package metrics holds the Prometheus collectors of the service. They are
// registered with the default registry through promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Resolve outcomes used as the result label.
const (
	ResultHit   = "hit"
	ResultMiss  = "miss"
	ResultError = "error"
)

var (
	// ShortcutsCreatedTotal counts successful creates.
	ShortcutsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shortcuts_created_total",
			Help: "Total number of shortcuts created",
		},
	)

	// ShortcutResolvesTotal counts lookups by outcome.
	ShortcutResolvesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shortcut_resolves_total",
			Help: "Total number of shortcut lookups by result",
		},
		[]string{"result"},
	)

	// KeyCollisionsTotal counts generated keys that were already taken.
	KeyCollisionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shortcut_key_collisions_total",
			Help: "Total number of generated keys that had to be redrawn",
		},
	)

	// HTTPRequestDuration tracks HTTP latency per route pattern.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "route", "status"},
	)
)

func init() {
	for _, result := range []string{ResultHit, ResultMiss, ResultError} {
		ShortcutResolvesTotal.WithLabelValues(result)
	}
}

// RecordCreated increments the create counter.
func RecordCreated() {
	ShortcutsCreatedTotal.Inc()
}

// RecordResolve increments the lookup counter for result.
func RecordResolve(result string) {
	ShortcutResolvesTotal.WithLabelValues(result).Inc()
}

// RecordCollision increments the collision counter. It matches the
// signature of keygen.WithCollisionHook.
func RecordCollision() {
	KeyCollisionsTotal.Inc()
}

// ObserveRequest records the duration of one HTTP request.
func ObserveRequest(method, route, status string, seconds float64) {
	HTTPRequestDuration.WithLabelValues(method, route, status).Observe(seconds)
}
