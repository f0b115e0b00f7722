package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	billingapp "github.com/estateops/backend/internal/application/billing"
	meteringapp "github.com/estateops/backend/internal/application/metering"
	"github.com/estateops/backend/internal/infrastructure/config"
	"github.com/estateops/backend/internal/infrastructure/invoicing"
	"github.com/estateops/backend/internal/infrastructure/logger"
	"github.com/estateops/backend/internal/infrastructure/persistence"
	"github.com/estateops/backend/internal/infrastructure/telemetry"
	"github.com/estateops/backend/internal/interfaces/http/handler"
	"github.com/estateops/backend/internal/interfaces/http/middleware"
	"github.com/estateops/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log := logger.New(cfg.Log)
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting EstateOps backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ratioTolerance, err := decimal.NewFromString(cfg.Billing.RatioTolerance)
	if err != nil {
		log.Fatal("Invalid billing.ratio_tolerance", zap.String("value", cfg.Billing.RatioTolerance))
	}

	// Telemetry
	ctx := context.Background()
	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down telemetry", zap.Error(err))
		}
	}()

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if tracerProvider.IsEnabled() && cfg.Telemetry.DBTraceEnabled {
		if err := db.EnableTracing(); err != nil {
			log.Fatal("Failed to enable database tracing", zap.Error(err))
		}
	}
	log.Info("Database connected successfully")

	// Repositories
	meterRepo := persistence.NewGormMeterRepository(db.DB)
	readingRepo := persistence.NewGormReadingRepository(db.DB)
	tariffRepo := persistence.NewGormTariffRepository(db.DB)
	billRepo := persistence.NewGormBillRepository(db.DB)
	meteringTxScope := persistence.NewGormMeteringTransactionScope(db.DB)

	// Application services
	meterService := meteringapp.NewMeterService(meterRepo, meteringTxScope)
	readingService := meteringapp.NewReadingService(meterRepo, readingRepo)
	tariffService := meteringapp.NewTariffService(tariffRepo)

	invoiceGateway := invoicing.NewMemoryGateway(cfg.Billing.InvoiceDueDays, log)
	runService := billingapp.NewBillingRunService(
		meterRepo, readingRepo, tariffRepo, billRepo, invoiceGateway,
		billingapp.RunConfig{
			Workers:        cfg.Billing.Workers,
			RatioTolerance: ratioTolerance,
			InvoiceDueDays: cfg.Billing.InvoiceDueDays,
		},
		log,
	)
	billService := billingapp.NewBillService(billRepo)

	// HTTP engine
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Failed to set trusted proxies", zap.Error(err))
		}
	}

	corsCfg := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	engine.Use(middleware.RequestID())
	if tracerProvider.IsEnabled() {
		engine.Use(otelgin.Middleware(cfg.Telemetry.ServiceName))
	}
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(corsCfg))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	handler.NewSystemHandler(db).RegisterRoutes(engine)

	router.NewRouter(engine).
		Register(handler.NewMeterHandler(meterService)).
		Register(handler.NewReadingHandler(readingService)).
		Register(handler.NewTariffHandler(tariffService)).
		Register(handler.NewBillingHandler(runService, billService, cfg.Billing.RunTimeout)).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
	}

	log.Info("Server stopped")
}
