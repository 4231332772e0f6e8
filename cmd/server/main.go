package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	ledgerapp "github.com/ardash/backend/internal/application/ledger"
	"github.com/ardash/backend/internal/domain/shared"
	"github.com/ardash/backend/internal/infrastructure/auth"
	"github.com/ardash/backend/internal/infrastructure/cache"
	"github.com/ardash/backend/internal/infrastructure/config"
	"github.com/ardash/backend/internal/infrastructure/docsearch"
	"github.com/ardash/backend/internal/infrastructure/invoicing"
	"github.com/ardash/backend/internal/infrastructure/logger"
	"github.com/ardash/backend/internal/infrastructure/persistence"
	"github.com/ardash/backend/internal/interfaces/http/handler"
	"github.com/ardash/backend/internal/interfaces/http/middleware"
	"github.com/ardash/backend/internal/interfaces/http/router"
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

	log.Info("Starting AR dashboard backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	noteRepo := persistence.NewGormNoteRepository(db.DB)
	followUpRepo := persistence.NewGormFollowUpRepository(db.DB)
	propertyNoteRepo := persistence.NewGormPropertyNoteRepository(db.DB)
	snapshotRepo := persistence.NewGormSnapshotRepository(db.DB)
	settingsRepo := persistence.NewGormSettingsRepository(db.DB)

	// Upstream invoicing API client
	source, err := invoicing.NewClient(&invoicing.Config{
		BaseURL:   cfg.Invoicing.BaseURL,
		APIKey:    cfg.Invoicing.APIKey,
		CompanyID: cfg.Invoicing.CompanyID,
		Timeout:   cfg.Invoicing.Timeout,
	})
	if err != nil {
		log.Fatal("Failed to create invoicing client", zap.Error(err))
	}

	// Sync lock: Redis when available, in-process otherwise. The in-process
	// lock only protects a single instance.
	var locker shared.SyncLocker
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			cancel()
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		cancel()
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Error closing Redis client", zap.Error(err))
			}
		}()
		locker = cache.NewRedisSyncLock(redisClient, "sync:lock")
		log.Info("Redis connected, using distributed sync lock")
	} else {
		locker = cache.NewInMemorySyncLock()
		log.Warn("Redis disabled, using in-process sync lock")
	}

	// Initialize application services
	syncService := ledgerapp.NewSyncService(source, invoiceRepo, settingsRepo, locker,
		ledgerapp.SyncConfig{
			PageSize:          cfg.Sync.PageSize,
			MaxPages:          cfg.Sync.MaxPages,
			ContactBatchSize:  cfg.Sync.ContactBatchSize,
			ContactBatchDelay: cfg.Sync.ContactBatchDelay,
			UpsertBatchSize:   cfg.Sync.UpsertBatchSize,
			LockTTL:           cfg.Sync.LockTTL,
		},
		ledgerapp.WithSyncLogger(log),
	)
	dashboardService := ledgerapp.NewDashboardService(invoiceRepo, snapshotRepo, log)
	annotationService := ledgerapp.NewAnnotationService(invoiceRepo, noteRepo, followUpRepo, propertyNoteRepo)

	jwtService := auth.NewJWTService(cfg.JWT)

	// Initialize HTTP handlers
	systemHandler := handler.NewSystemHandler(db)
	syncHandler := handler.NewSyncHandler(syncService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)
	invoiceHandler := handler.NewInvoiceHandler(dashboardService, annotationService)
	annotationHandler := handler.NewAnnotationHandler(annotationService)
	snapshotHandler := handler.NewSnapshotHandler(dashboardService)

	var documentHandler *handler.DocumentHandler
	if cfg.Storage.Enabled {
		searcher, err := docsearch.NewS3Searcher(&cfg.Storage, docsearch.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to create document searcher", zap.Error(err))
		}
		documentHandler = handler.NewDocumentHandler(searcher)
		log.Info("Document search enabled", zap.String("bucket", cfg.Storage.Bucket))
	}

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Use JSON field names in binding error details
	middleware.SetupValidator()

	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware stack: request ID, panic recovery, request logging, CORS,
	// then JWT authentication on the API surface.
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodyBytes))
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.JWTAuthWithConfig(middleware.JWTConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/api/v1/health",
		},
	}))

	// Register API routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(systemHandler).
		Register(syncHandler).
		Register(dashboardHandler).
		Register(invoiceHandler).
		Register(annotationHandler).
		Register(snapshotHandler)
	if documentHandler != nil {
		r.Register(documentHandler)
	}
	r.Setup()

	// Create HTTP server with config
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
