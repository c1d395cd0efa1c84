package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/joshkonopka69/fitness-sub000/internal/service"
)

const unmatchedRoute = "unmatched"

// probeRoutes are polled by orchestrators and scrapers; counting them would drown the
// ledger traffic in the request histograms.
var probeRoutes = map[string]struct{}{
	"/health":  {},
	"/ready":   {},
	"/metrics": {},
}

// Metrics records latency and status per route template. Requests that match no route
// share one label so scanners cannot inflate cardinality.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		route := c.FullPath()
		if _, skip := probeRoutes[route]; skip {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		if route == "" {
			route = unmatchedRoute
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
