package router

import (
	"github.com/erp/einvoice/internal/infrastructure/config"
	"github.com/erp/einvoice/internal/infrastructure/logger"
	"github.com/erp/einvoice/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// EngineConfig configures the middleware stack of NewEngine
type EngineConfig struct {
	Logger  *zap.Logger
	HTTP    config.HTTPConfig
	Tracing middleware.TracingConfig
	// Auth validates bearer tokens on /api routes; nil disables auth.
	Auth middleware.TokenValidator
	// Profiling labels requests by route for continuous profiling.
	Profiling bool
}

// NewEngine builds the gin engine with the middleware stack and all routes.
//
// Engine middleware, in order: request id, tracing, profiling labels,
// recovery, request log, security headers, body limit, rate limit. API routes add bearer auth and
// span enrichment. /health stays unauthenticated.
func NewEngine(cfg EngineConfig, h Handlers) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	middleware.SetupValidator()

	engine := gin.New()
	// Document numbers such as INV/2024/001 arrive percent-encoded.
	engine.UseRawPath = true
	engine.UnescapePathValues = true

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(middleware.Tracing(cfg.Tracing))
	if cfg.Profiling {
		engine.Use(middleware.Profiling("/health"))
	}
	engine.Use(logger.Recovery(log, middleware.PanicResponse))
	engine.Use(logger.GinMiddleware(log, "/health"))
	engine.Use(middleware.Secure())
	if cfg.HTTP.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	}
	if cfg.HTTP.RateLimit > 0 {
		engine.Use(middleware.RateLimit(middleware.NewRateLimiter(cfg.HTTP.RateLimit, cfg.HTTP.RateLimitBurst)))
		log.Info("Rate limiting enabled",
			zap.Float64("per_second", cfg.HTTP.RateLimit),
			zap.Int("burst", cfg.HTTP.RateLimitBurst),
		)
	}
	engine.NoRoute(middleware.NotFound())

	engine.GET("/health", h.System.Health)

	r := NewRouter(engine, WithAPIVersion("v1"))
	if cfg.Auth != nil {
		r.Use(middleware.JWTAuthMiddleware(cfg.Auth, log))
	}
	r.Use(middleware.SpanEnricher())
	r.Register(EInvoiceRoutes(h)...)
	r.Setup()

	return engine
}
