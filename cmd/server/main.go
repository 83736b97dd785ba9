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

	appinvoicing "github.com/nguyenhieubp/InvoiceFlowServer-sub004/internal/application/invoicing"
	"github.com/nguyenhieubp/InvoiceFlowServer-sub004/internal/domain/invoicing"
	"github.com/nguyenhieubp/InvoiceFlowServer-sub004/internal/infrastructure/accounting"
	"github.com/nguyenhieubp/InvoiceFlowServer-sub004/internal/infrastructure/auth"
	"github.com/nguyenhieubp/InvoiceFlowServer-sub004/internal/infrastructure/cache"
	"github.com/nguyenhieubp/InvoiceFlowServer-sub004/internal/infrastructure/config"
	"github.com/nguyenhieubp/InvoiceFlowServer-sub004/internal/infrastructure/logger"
	"github.com/nguyenhieubp/InvoiceFlowServer-sub004/internal/infrastructure/persistence"
	"github.com/nguyenhieubp/InvoiceFlowServer-sub004/internal/infrastructure/retail"
	"github.com/nguyenhieubp/InvoiceFlowServer-sub004/internal/infrastructure/scheduler"
	"github.com/nguyenhieubp/InvoiceFlowServer-sub004/internal/interfaces/http/handler"
	"github.com/nguyenhieubp/InvoiceFlowServer-sub004/internal/interfaces/http/middleware"
	"github.com/nguyenhieubp/InvoiceFlowServer-sub004/internal/interfaces/http/router"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting InvoiceFlow Server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database with zap-backed GORM logger
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to migrate database schema", zap.Error(err))
	}
	log.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	auditRepo := persistence.NewGormSubmissionLogRepository(db.DB)

	// POS API client: order source, payment records and reference masters
	retailClient, err := retail.NewClient(&retail.Config{
		BaseURL:        cfg.Retail.BaseURL,
		APIKey:         cfg.Retail.APIKey,
		TimeoutSeconds: cfg.Retail.TimeoutSeconds,
		PageSize:       cfg.Retail.PageSize,
	}, log.Named("retail"))
	if err != nil {
		log.Fatal("Failed to create POS API client", zap.Error(err))
	}

	// Accounting system client
	accountingClient, err := accounting.NewClient(&accounting.Config{
		BaseURL:            cfg.Accounting.BaseURL,
		Username:           cfg.Accounting.Username,
		Password:           cfg.Accounting.Password,
		TimeoutSeconds:     cfg.Accounting.TimeoutSeconds,
		TokenMarginSeconds: cfg.Accounting.TokenMarginSeconds,
	}, log.Named("accounting"))
	if err != nil {
		log.Fatal("Failed to create accounting client", zap.Error(err))
	}

	// Reference lookups, optionally behind a Redis cache
	var (
		catalog     invoicing.CatalogLookup    = retailClient
		departments invoicing.DepartmentLookup = retailClient
		refresh     handler.ReferenceInvalidator
	)
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedisClient(cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Error closing Redis client", zap.Error(err))
			}
		}()
		referenceCache := cache.NewRedisReferenceCache(
			redisClient, retailClient, retailClient, cfg.Redis.CacheTTL, log.Named("cache"))
		catalog = referenceCache
		departments = referenceCache
		refresh = referenceCache
		log.Info("Reference-data cache enabled", zap.Duration("ttl", cfg.Redis.CacheTTL))
	}

	// Submission pipeline
	builder := appinvoicing.NewBuilder()
	submissionService := appinvoicing.NewSubmissionService(
		accountingClient, catalog, departments, retailClient, auditRepo, builder,
		log.Named("submission"))
	batchService := appinvoicing.NewBatchService(
		retailClient, submissionService, cfg.Batch.WorkerCount, log.Named("batch"))

	// Daily sync trigger
	if cfg.Scheduler.Enabled {
		trigger := scheduler.NewSyncTrigger(scheduler.SyncTriggerConfig{
			SyncHour:      cfg.Scheduler.SyncHour,
			SyncMinute:    cfg.Scheduler.SyncMinute,
			LookbackDays:  cfg.Scheduler.LookbackDays,
			CheckInterval: time.Minute,
		}, batchService, log.Named("scheduler"))
		if err := trigger.Start(context.Background()); err != nil {
			log.Fatal("Failed to start sync trigger", zap.Error(err))
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := trigger.Stop(stopCtx); err != nil {
				log.Error("Error stopping sync trigger", zap.Error(err))
			}
		}()
	}

	// HTTP surface
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	jwtService := auth.NewJWTService(cfg.JWT)
	engine.Use(middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths:  []string{"/health", "/api/v1/health"},
		Logger:     log,
	}))

	invoiceHandler := handler.NewInvoiceHandler(batchService, auditRepo, log.Named("http"))
	systemHandler := handler.NewSystemHandler(db, refresh, version, log.Named("http"))

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(invoiceHandler).Register(systemHandler)
	r.Setup()

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
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}
	log.Info("Server exited gracefully")
}
