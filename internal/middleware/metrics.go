package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/agencydesk/agencydesk/internal/metrics"
)

// Metrics records request count and latency per route. c.FullPath()
// gives the route template (":id" stays ":id"), keeping label
// cardinality bounded.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.ObserveRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
