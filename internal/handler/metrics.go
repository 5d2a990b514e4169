package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmerrifield20/phishguard/internal/threat"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	pgRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "phishguard_requests_total",
		Help: "Total HTTP requests by method, path, and response status.",
	}, []string{"method", "path", "status"})

	pgRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "phishguard_request_duration_seconds",
		Help:    "Request duration in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	pgChecksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "phishguard_checks_total",
		Help: "Total URL checks by resulting risk tier.",
	}, []string{"risk"})

	pgCheckScore = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "phishguard_check_score",
		Help:    "Raw score of checked URLs.",
		Buckets: []float64{0, 10, 20, 30, 40, 55, 70, 100, 150, 200},
	})

	pgRuleHitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "phishguard_rule_hits_total",
		Help: "Total rule triggers by rule name.",
	}, []string{"rule"})
)

// PrometheusMiddleware returns a Gin middleware that records per-request metrics.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())
		method := c.Request.Method
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		pgRequestsTotal.WithLabelValues(method, path, status).Inc()
		pgRequestDuration.WithLabelValues(method, path).Observe(duration)
	}
}

// MetricsHandler returns a Gin handler that serves Prometheus metrics.
func MetricsHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// RecordCheck records the outcome of one URL check.
func RecordCheck(r *threat.Report) {
	pgChecksTotal.WithLabelValues(string(r.Risk)).Inc()
	pgCheckScore.Observe(float64(r.Score))
	for _, h := range r.Hits {
		pgRuleHitsTotal.WithLabelValues(h.Rule).Inc()
	}
}
