package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dentlink/backend/internal/metrics"
)

// MetricsMiddleware records HTTP request counts and latency for Prometheus
func MetricsMiddleware() gin.HandlerFunc {
	m := metrics.Get()

	return func(c *gin.Context) {
		method := c.Request.Method
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		startTime := time.Now()
		c.Next()
		duration := time.Since(startTime).Seconds()

		// Numeric status as the label so Grafana can match status=~"5.."
		statusStr := strconv.Itoa(c.Writer.Status())

		m.HTTPRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
		m.HTTPRequestDuration.WithLabelValues(method, path, statusStr).Observe(duration)
	}
}

// RecordFeedGeneration records the latency of one feed page build
func RecordFeedGeneration(filter, sort string, duration time.Duration, itemCount int) {
	m := metrics.Get()
	m.FeedGenerationTime.WithLabelValues(filter, sort).Observe(duration.Seconds())
	m.FeedItemsReturned.WithLabelValues(filter, sort).Observe(float64(itemCount))
}

// RecordRateLimitExceeded counts a rejected request
func RecordRateLimitExceeded(clientIP string) {
	metrics.Get().RateLimitExceededTotal.WithLabelValues(clientIP).Inc()
}
