package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	app "github.com/erp/einvoice/internal/application/einvoice"
	"github.com/erp/einvoice/internal/infrastructure/auth"
	"github.com/erp/einvoice/internal/infrastructure/cache"
	"github.com/erp/einvoice/internal/infrastructure/config"
	"github.com/erp/einvoice/internal/infrastructure/gsp"
	"github.com/erp/einvoice/internal/infrastructure/logger"
	"github.com/erp/einvoice/internal/infrastructure/migration"
	"github.com/erp/einvoice/internal/infrastructure/persistence"
	"github.com/erp/einvoice/internal/infrastructure/telemetry"
	"github.com/erp/einvoice/internal/interfaces/http/handler"
	"github.com/erp/einvoice/internal/interfaces/http/middleware"
	"github.com/erp/einvoice/internal/interfaces/http/router"
	"github.com/erp/einvoice/migrations"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, closeLog, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
		closeLog()
	}()

	ctx := context.Background()

	// Telemetry providers register themselves globally and are no-ops when disabled
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	logsProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize logs provider", zap.Error(err))
	}
	log = logsProvider.Bridge(log, zapcore.InfoLevel)
	profiling := cfg.Telemetry.Profiling
	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           profiling.Enabled,
		ServerAddress:     profiling.ServerAddress,
		ApplicationName:   cfg.Telemetry.ServiceName,
		BasicAuthUser:     profiling.BasicAuthUser,
		BasicAuthPassword: profiling.BasicAuthPassword,
		ProfileTypes:      profiling.ProfileTypes,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() && profiling.SpanProfiles {
		tracerProvider.EnableSpanProfiles()
	}
	defer shutdownTelemetry(log, tracerProvider, meterProvider, logsProvider, profiler)

	log.Info("Starting e-invoice gateway",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	db, err := persistence.NewDatabase(&cfg.Database, persistence.Options{
		Logger:        log,
		LogLevel:      logger.MapGormLogLevel(cfg.Log.Level),
		SlowThreshold: 200 * time.Millisecond,
		Tracing:       cfg.Telemetry.Enabled,
	})
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if cfg.Database.AutoMigrate {
		if err := migrate(db, log); err != nil {
			log.Fatal("Failed to apply migrations", zap.Error(err))
		}
	}

	gspMetrics, err := telemetry.NewGSPMetrics(meterProvider.Meter("einvoice-gateway/gsp"))
	if err != nil {
		log.Fatal("Failed to create GSP metrics", zap.Error(err))
	}

	storeFactory := cache.NewCredentialStoreFactory(
		cfg.Redis,
		cfg.GSP.TokenValidity,
		cfg.GSP.ForceRefreshWindow,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.App.Env != "production"),
	)
	credentials, err := storeFactory.CreateStore(cfg.GSP.CredentialStore)
	if err != nil {
		log.Fatal("Failed to create credential store", zap.Error(err))
	}

	client := gsp.NewClient(gspConfig(cfg.GSP), gsp.WithLogger(log), gsp.WithMetrics(gspMetrics))
	if missing := client.MissingSettings(); len(missing) > 0 {
		log.Warn("E-invoice service is not configured; IRN operations will fail",
			zap.Strings("missing", missing),
		)
	}

	orchestrator := app.NewOrchestrator(credentials, client,
		app.WithOrchestratorLogger(log),
		app.WithOrchestratorMetrics(gspMetrics),
	)

	documentService := app.NewDocumentService(
		persistence.NewGormSellerUnitRepository(db.DB),
		persistence.NewGormCustomerRepository(db.DB),
		persistence.NewGormDocumentRepository(db.DB),
		orchestrator,
		log,
	)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engineCfg := router.EngineConfig{
		Logger: log,
		HTTP:   cfg.HTTP,
		// otelgin falls back to the global providers registered above
		Tracing: middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
		},
		Profiling: profiler.IsEnabled(),
	}
	if cfg.JWT.Enabled {
		engineCfg.Auth = auth.NewJWTService(cfg.JWT)
	} else {
		log.Warn("API authentication is disabled")
	}

	engine := router.NewEngine(engineCfg, router.Handlers{
		Party:    handler.NewPartyHandler(documentService),
		Document: handler.NewDocumentHandler(documentService),
		Session:  handler.NewSessionHandler(orchestrator),
		System:   handler.NewSystemHandler(db, version),
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

func gspConfig(c config.GSPConfig) gsp.Config {
	return gsp.Config{
		BaseURL:               c.BaseURL,
		ClientID:              c.ClientID,
		ClientSecret:          c.ClientSecret,
		Username:              c.Username,
		Password:              c.Password,
		GSTIN:                 c.GSTIN,
		AuthPath:              c.AuthPath,
		EnhancedAuthPath:      c.EnhancedAuthPath,
		GenerateIRNPath:       c.GenerateIRNPath,
		CancelIRNPath:         c.CancelIRNPath,
		IRNByDocPath:          c.IRNByDocPath,
		Timeout:               c.Timeout,
		RetryOnTransportError: c.RetryOnTransportError,
		RateLimitRPS:          c.RateLimitRPS,
		RateLimitBurst:        c.RateLimitBurst,
	}
}

func migrate(db *persistence.Database, log *zap.Logger) error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	m, err := migration.NewFromFS(sqlDB, migrations.FS, log)
	if err != nil {
		return err
	}
	// Closing the migrator would close the shared sql.DB
	return m.Up()
}

type shutdowner interface {
	Shutdown(ctx context.Context) error
}

func shutdownTelemetry(log *zap.Logger, providers ...shutdowner) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, p := range providers {
		if err := p.Shutdown(ctx); err != nil {
			log.Warn("Telemetry shutdown failed", zap.Error(err))
		}
	}
}
