package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/veriflowhq/veriflow/internal/infrastructure/monitoring/prometheus"
)

// MetricsMiddleware records request counts and latency per route.
type MetricsMiddleware struct {
	metrics *prometheus.Metrics
}

// NewMetricsMiddleware creates the middleware.
func NewMetricsMiddleware(metrics *prometheus.Metrics) *MetricsMiddleware {
	return &MetricsMiddleware{metrics: metrics}
}

// Handler observes every request under its route template, so path
// parameters do not explode label cardinality.
func (m *MetricsMiddleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		status := strconv.Itoa(c.Writer.Status())

		m.metrics.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
		m.metrics.HTTPDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}
