package middleware

import (
	"strconv"
	"time"

	"github.com/SscSPs/expense_management_app/internal/platform/metrics"
	"github.com/gin-gonic/gin"
)

// RequestMetrics observes latency and status of every request by route template.
func RequestMetrics(recorder *metrics.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		recorder.ObserveHTTPRequest(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
