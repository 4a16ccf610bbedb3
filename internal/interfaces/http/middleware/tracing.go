// Package middleware provides the gin middleware of the e-invoice gateway API.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// TracingConfig holds configuration for the tracing middleware.
type TracingConfig struct {
	ServiceName string
	Enabled     bool
	// TracerProvider overrides the global provider, mainly for tests.
	TracerProvider trace.TracerProvider
	// MeterProvider enables the http.server.* request metrics.
	MeterProvider metric.MeterProvider
}

// Tracing returns the otelgin middleware producing server spans and, with a
// MeterProvider, request metrics.
func Tracing(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	var opts []otelgin.Option
	if cfg.TracerProvider != nil {
		opts = append(opts, otelgin.WithTracerProvider(cfg.TracerProvider))
	}
	if cfg.MeterProvider != nil {
		opts = append(opts, otelgin.WithMeterProvider(cfg.MeterProvider))
	}
	return otelgin.Middleware(cfg.ServiceName, opts...)
}

// SpanEnricher adds request attributes to the server span and marks 5xx
// responses. It must run after Tracing, RequestID and JWT auth.
func SpanEnricher() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			c.Next()
			return
		}
		if id := GetRequestID(c); id != "" {
			span.SetAttributes(attribute.String("request_id", id))
		}
		if subject := GetJWTSubject(c); subject != "" {
			span.SetAttributes(attribute.String("api.subject", subject))
		}
		if claims := GetJWTClaims(c); claims != nil && len(claims.Scope) > 0 {
			span.SetAttributes(attribute.StringSlice("api.scope", claims.Scope))
		}

		c.Next()

		if status := c.Writer.Status(); status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}
