// Package metrics exposes the Prometheus collectors of the service.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roadbuddy_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "roadbuddy_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Ride lifecycle metrics
	rideEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roadbuddy_ride_events_total",
			Help: "Ride lifecycle transitions by event",
		},
		[]string{"event"},
	)

	sweepRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roadbuddy_sweep_rides_total",
			Help: "Rides processed by the expiry sweep, by outcome",
		},
		[]string{"outcome"},
	)

	pushTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roadbuddy_push_notifications_total",
			Help: "Push notification deliveries by outcome",
		},
		[]string{"outcome"},
	)
)

// RecordRideEvent counts a ride lifecycle transition (posted, joined, ...).
func RecordRideEvent(event string) {
	rideEventsTotal.WithLabelValues(event).Inc()
}

// RecordSweep counts the outcome of one ride processed by the expiry sweep.
func RecordSweep(outcome string) {
	sweepRunsTotal.WithLabelValues(outcome).Inc()
}

func RecordPush(outcome string) {
	pushTotal.WithLabelValues(outcome).Inc()
}

// Middleware records request counts and latency by route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the Prometheus scrape endpoint.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
