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

	"github.com/Alphie01/eticaretAraEntegrat-r-sub000/internal/application/gateway"
	appsync "github.com/Alphie01/eticaretAraEntegrat-r-sub000/internal/application/sync"
	"github.com/Alphie01/eticaretAraEntegrat-r-sub000/internal/domain/marketplace"
	"github.com/Alphie01/eticaretAraEntegrat-r-sub000/internal/infrastructure/cache"
	"github.com/Alphie01/eticaretAraEntegrat-r-sub000/internal/infrastructure/config"
	"github.com/Alphie01/eticaretAraEntegrat-r-sub000/internal/infrastructure/logger"
	"github.com/Alphie01/eticaretAraEntegrat-r-sub000/internal/infrastructure/marketplaces"
	"github.com/Alphie01/eticaretAraEntegrat-r-sub000/internal/infrastructure/persistence"
	"github.com/Alphie01/eticaretAraEntegrat-r-sub000/internal/infrastructure/vault"
	"github.com/Alphie01/eticaretAraEntegrat-r-sub000/internal/interfaces/http/handler"
	"github.com/Alphie01/eticaretAraEntegrat-r-sub000/internal/interfaces/http/middleware"
	"github.com/Alphie01/eticaretAraEntegrat-r-sub000/internal/interfaces/http/router"
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

	log.Info("Starting marketplace gateway",
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

	// Credential vault: AES-256-CBC cipher over the GORM-backed credential store,
	// with operator defaults from configuration as the fallback tier
	cipher, err := vault.NewCipherFromSecret(cfg.Vault.EncryptionKey)
	if err != nil {
		log.Fatal("Failed to initialize credential cipher", zap.Error(err))
	}
	credentialRepo := persistence.NewGormCredentialRepository(db.DB)
	credentialVault := vault.New(cipher, credentialRepo, operatorDefaults(cfg), log)

	// Shared token store for OAuth2 bearer adapters. Falls back to an
	// in-memory store when Redis is unreachable.
	tokenStoreFactory := cache.NewTokenStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(true),
	)
	tokenStore, err := tokenStoreFactory.CreateStore()
	if err != nil {
		log.Fatal("Failed to initialize token store", zap.Error(err))
	}
	defer func() {
		if err := tokenStore.Close(); err != nil {
			log.Error("Error closing token store", zap.Error(err))
		}
	}()

	// Adapter factory with per-marketplace tunables from configuration
	adapterFactory := marketplaces.NewAdapterFactory(tokenStore, log)
	for key, mp := range cfg.Marketplaces {
		adapterFactory.SetOptions(marketplace.Code(key), marketplaces.Options{
			BaseURL:     mp.BaseURL,
			TokenURL:    mp.TokenURL,
			MaxRequests: mp.MaxRequests,
			Window:      mp.Window,
			TokenStore:  tokenStore,
		})
	}

	// Adapter manager pools authenticated adapters per (tenant, marketplace)
	manager := gateway.NewAdapterManager(credentialVault, adapterFactory, log,
		gateway.WithIdleTTL(cfg.Gateway.IdleTTL),
	)
	manager.StartSweeper(cfg.Gateway.SweepInterval)
	defer func() {
		if err := manager.Close(); err != nil {
			log.Error("Error closing adapter manager", zap.Error(err))
		}
	}()

	// Batch sync engine
	engine := appsync.NewEngine(manager, log,
		appsync.WithChunkSize(cfg.Sync.ChunkSize),
		appsync.WithConcurrency(cfg.Sync.Concurrency),
		appsync.WithChunkPause(cfg.Sync.ChunkPause),
	)

	// Initialize HTTP handlers
	credentialHandler := handler.NewCredentialHandler(credentialVault, manager, log)
	syncHandler := handler.NewSyncHandler(engine, log)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ginEngine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := ginEngine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	ginEngine.Use(logger.Recovery(log))
	ginEngine.Use(logger.GinMiddleware(log))
	ginEngine.Use(middleware.Secure())
	ginEngine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Database-aware health endpoint alongside the router's /healthz
	ginEngine.GET("/health", healthHandler(db))

	router.NewRouter(ginEngine, router.WithAPIVersion("v1")).
		Register(credentialHandler).
		Register(syncHandler).
		Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        ginEngine,
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

// operatorDefaults builds the vault fallback tier from configuration.
// Amazon's LWA client pair and refresh token ride in the Extra map.
func operatorDefaults(cfg *config.Config) vault.OperatorDefaults {
	defaults := vault.OperatorDefaults{}
	for key, mp := range cfg.Marketplaces {
		if mp.APIKey == "" {
			continue
		}
		set := vault.DefaultCredentials{
			APIKey:     mp.APIKey,
			APISecret:  mp.APISecret,
			Identifier: mp.Identifier,
		}
		extra := map[string]string{}
		if mp.Region != "" {
			extra["region"] = mp.Region
		}
		if mp.RefreshToken != "" {
			extra["refresh_token"] = mp.RefreshToken
		}
		if mp.ClientID != "" {
			extra["client_id"] = mp.ClientID
		}
		if mp.ClientSecret != "" {
			extra["client_secret"] = mp.ClientSecret
		}
		if len(extra) > 0 {
			set.Extra = extra
		}
		defaults[marketplace.Code(key)] = set
	}
	return defaults
}

// healthHandler returns a handler for the database-aware health check
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
