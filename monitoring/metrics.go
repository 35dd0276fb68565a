package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "questioner_http_requests_total",
			Help: "Number of HTTP requests processed, by method, route and status.",
		},
		[]string{"method", "route", "status"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "questioner_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds, by method and route.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	votesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "questioner_votes_total",
			Help: "Number of accepted votes, by target and direction.",
		},
		[]string{"target", "direction"},
	)

	rsvpsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "questioner_rsvps_total",
			Help: "Number of accepted RSVP submissions.",
		},
	)
)

// Middleware records request counts and latencies per route.
func Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := ctx.Request.Method
		requestsTotal.WithLabelValues(method, route, strconv.Itoa(ctx.Writer.Status())).Inc()
		requestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// CountVote records an accepted question or answer vote.
func CountVote(target, direction string) {
	votesTotal.WithLabelValues(target, direction).Inc()
}

// CountRsvp records an accepted RSVP.
func CountRsvp() {
	rsvpsTotal.Inc()
}
