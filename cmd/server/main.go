package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/crm/backend/internal/application/core"
	partnerapp "github.com/crm/backend/internal/application/partner"
	supportapp "github.com/crm/backend/internal/application/support"
	tradeapp "github.com/crm/backend/internal/application/trade"
	"github.com/crm/backend/internal/infrastructure/config"
	"github.com/crm/backend/internal/infrastructure/event"
	"github.com/crm/backend/internal/infrastructure/logger"
	"github.com/crm/backend/internal/infrastructure/persistence"
	"github.com/crm/backend/internal/infrastructure/telemetry"
	"github.com/crm/backend/internal/interfaces/http/handler"
	"github.com/crm/backend/internal/interfaces/http/middleware"
	"github.com/crm/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting CRM backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()

	// Tracing, metrics and profiling. Providers degrade to no-ops when
	// disabled, so the wiring below stays unconditional.
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
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Warn("Tracer provider shutdown failed", zap.Error(err))
		}
	}()

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsExportInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			log.Warn("Meter provider shutdown failed", zap.Error(err))
		}
	}()

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:             cfg.Profiler.Enabled,
		ServerAddress:       cfg.Profiler.ServerAddress,
		ApplicationName:     cfg.Profiler.ApplicationName,
		ProfileCPU:          true,
		ProfileAllocObjects: true,
		ProfileAllocSpace:   true,
		ProfileInuseObjects: true,
		ProfileInuseSpace:   true,
		ProfileGoroutines:   true,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize profiler", zap.Error(err))
	}
	defer func() {
		if err := profiler.Stop(); err != nil {
			log.Warn("Profiler stop failed", zap.Error(err))
		}
	}()

	if cfg.Profiler.SpanProfiles && profiler.IsEnabled() {
		if err := tracerProvider.EnableSpanProfiles(); err != nil {
			log.Warn("Failed to enable span profiles", zap.Error(err))
		}
	}

	// Initialize database with the GORM logger bridged to zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLogger := logger.NewGormLogger(log, gormLogLevel)
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLogger)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database", zap.Error(err))
		}
	}()

	// Query tracing and pool metrics ride on the shared GORM handle
	dbSystem := "postgresql"
	if cfg.Database.Driver == config.DriverSQLite {
		dbSystem = "sqlite"
	}
	tracingPlugin := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:          cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:       cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh:  cfg.Telemetry.DBSlowQueryThresh,
		DBSystem:         dbSystem,
		WithoutVariables: !cfg.Telemetry.DBLogFullSQL,
	}, log)
	if err := tracingPlugin.RegisterOtelGorm(db.DB); err != nil {
		log.Warn("Failed to register database tracing", zap.Error(err))
	}

	dbMetricsCfg := telemetry.DefaultDBMetricsConfig()
	dbMetricsCfg.Enabled = cfg.Telemetry.MetricsEnabled
	dbMetricsCfg.SlowQueryThreshold = cfg.Telemetry.DBSlowQueryThresh
	dbMetrics, err := telemetry.RegisterDBMetrics(db.DB, meterProvider, dbMetricsCfg, log)
	if err != nil {
		log.Warn("Failed to register database metrics", zap.Error(err))
	}
	if dbMetrics != nil {
		dbMetrics.StartPoolStatsCollection(ctx)
		defer dbMetrics.Stop()
	}

	// Initialize repositories
	customerRepo := persistence.NewCustomerRepository(db.DB)
	supplierRepo := persistence.NewSupplierRepository(db.DB)
	quoteRepo := persistence.NewQuoteRepository(db.DB)
	taskRepo := persistence.NewTaskRepository(db.DB)
	ticketRepo := persistence.NewTicketRepository(db.DB)

	// Initialize event bus and subscribe lifecycle handlers
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(core.NewActivityLogHandler(log))
	if meterProvider.IsEnabled() {
		if err := eventBus.SetMeter(meterProvider.Meter("crm.events")); err != nil {
			log.Warn("Failed to initialize event bus metrics", zap.Error(err))
		}
	}
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := eventBus.Stop(stopCtx); err != nil {
			log.Warn("Event bus stop failed", zap.Error(err))
		}
	}()

	// Initialize application services
	customerService := partnerapp.NewCustomerService(customerRepo, eventBus, log)
	supplierService := partnerapp.NewSupplierService(supplierRepo, eventBus, log)
	quoteService := tradeapp.NewQuoteService(quoteRepo, customerRepo, eventBus, log)
	taskService := supportapp.NewTaskService(taskRepo, customerRepo, supplierRepo, eventBus, log)
	ticketService := supportapp.NewTicketService(ticketRepo, customerRepo, eventBus, log)

	// Business metrics require a live meter provider
	if meterProvider.IsEnabled() {
		businessMetrics, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
			Meter:           meterProvider.Meter("crm.business"),
			Logger:          log,
			SupportProvider: telemetry.NewGormSupportMetricsProvider(db.DB),
		})
		if err != nil {
			log.Warn("Failed to initialize business metrics", zap.Error(err))
		} else {
			businessMetrics.StartPeriodicCollection(ctx, 0)
			defer businessMetrics.Stop()
			customerService.SetBusinessMetrics(businessMetrics)
			supplierService.SetBusinessMetrics(businessMetrics)
			quoteService.SetBusinessMetrics(businessMetrics)
			ticketService.SetBusinessMetrics(businessMetrics)
		}
	}

	// Initialize HTTP handlers
	customerHandler := handler.NewCustomerHandler(customerService)
	supplierHandler := handler.NewSupplierHandler(supplierService)
	quoteHandler := handler.NewQuoteHandler(quoteService)
	taskHandler := handler.NewTaskHandler(taskService)
	ticketHandler := handler.NewTicketHandler(ticketService)
	systemHandler := handler.NewSystemHandler()

	// Set Gin mode
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Register custom validators
	middleware.SetupValidator()

	// Setup Gin engine
	engine := gin.New()

	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Warn("Failed to set trusted proxies", zap.Error(err))
	}

	// Global middleware. Order matters: request ID comes first so logs,
	// traces and error envelopes can all pick it up.
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.TracingAttributeInjector())
	engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
		MeterProvider: meterProvider,
		ServiceName:   cfg.Telemetry.ServiceName,
		Enabled:       cfg.Telemetry.MetricsEnabled,
	}))
	profilingCfg := middleware.DefaultProfilingConfig()
	profilingCfg.Enabled = profiler.IsEnabled()
	engine.Use(middleware.ProfilingWithConfig(profilingCfg))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.HTTP.CORSAllowOrigins,
		AllowMethods: cfg.HTTP.CORSAllowMethods,
		AllowHeaders: cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders: []string{
			"X-Request-ID",
			"X-RateLimit-Limit",
			"X-RateLimit-Remaining",
		},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(limiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Health check endpoint
	engine.GET("/health", healthHandler(db, log))

	// API routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	customerRoutes := router.NewDomainGroup("customers", "/customers").
		POST("", customerHandler.Create).
		GET("", customerHandler.List).
		GET("/statistics", customerHandler.Statistics).
		GET("/:id", customerHandler.GetByID).
		PUT("/:id", customerHandler.Update).
		DELETE("/:id", customerHandler.Delete).
		PUT("/:id/level", customerHandler.ChangeLevel)

	supplierRoutes := router.NewDomainGroup("suppliers", "/suppliers").
		POST("", supplierHandler.Create).
		GET("", supplierHandler.List).
		GET("/statistics", supplierHandler.Statistics).
		GET("/:id", supplierHandler.GetByID).
		PUT("/:id", supplierHandler.Update).
		DELETE("/:id", supplierHandler.Delete).
		PUT("/:id/level", supplierHandler.ChangeLevel)

	quoteRoutes := router.NewDomainGroup("quotes", "/quotes").
		POST("", quoteHandler.Create).
		GET("", quoteHandler.List).
		GET("/:id", quoteHandler.GetByID).
		PUT("/:id", quoteHandler.Update).
		DELETE("/:id", quoteHandler.Delete).
		POST("/:id/transition", quoteHandler.Transition)

	taskRoutes := router.NewDomainGroup("tasks", "/tasks").
		POST("", taskHandler.Create).
		GET("", taskHandler.List).
		GET("/:id", taskHandler.GetByID).
		PUT("/:id", taskHandler.Update).
		DELETE("/:id", taskHandler.Delete).
		POST("/:id/start", taskHandler.Start).
		POST("/:id/complete", taskHandler.Complete).
		POST("/:id/cancel", taskHandler.Cancel)

	ticketRoutes := router.NewDomainGroup("tickets", "/tickets").
		POST("", ticketHandler.Create).
		GET("", ticketHandler.List).
		GET("/:id", ticketHandler.GetByID).
		PUT("/:id", ticketHandler.Update).
		DELETE("/:id", ticketHandler.Delete).
		POST("/:id/transition", ticketHandler.Transition).
		POST("/:id/resolve", ticketHandler.Resolve)

	systemRoutes := router.NewDomainGroup("system", "/system").
		GET("/info", systemHandler.GetSystemInfo).
		GET("/ping", systemHandler.Ping)

	r.Register(customerRoutes).
		Register(supplierRoutes).
		Register(quoteRoutes).
		Register(taskRoutes).
		Register(ticketRoutes).
		Register(systemRoutes)
	r.Setup()

	// Plain ping endpoint for load balancer probes
	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler reports service and database health. Pool statistics are
// attached when the underlying connection pool is reachable.
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)

		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check database ping failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}

		resp := gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		}
		if stats, err := db.Stats(); err == nil {
			resp["pool"] = gin.H{
				"open":    stats.OpenConnections,
				"in_use":  stats.InUse,
				"idle":    stats.Idle,
				"waiting": stats.WaitCount,
			}
		}
		c.JSON(http.StatusOK, resp)
	}
}
