package middleware

import (
	"context"

	"github.com/erp/einvoice/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
)

// Profiling labels the request with its route pattern and method so CPU
// profiles can be split per endpoint. skipPaths are served unlabelled.
func Profiling(skipPaths ...string) gin.HandlerFunc {
	skip := make(map[string]bool, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = true
	}

	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" || skip[route] {
			c.Next()
			return
		}

		labels := map[string]string{
			telemetry.ProfilingLabelRoute:  route,
			telemetry.ProfilingLabelMethod: c.Request.Method,
		}
		telemetry.WithProfilingLabels(c.Request.Context(), labels, func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}
