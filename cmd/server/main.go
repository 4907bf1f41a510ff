package main

import (
	"context"   // context package is needed for Redis operations and shutdown
	"errors"    // Error inspection
	"net/http"  // HTTP server
	"os"        // Signals
	"os/signal" // Signal handling
	"syscall"   // SIGTERM
	"time"      // Timeouts

	"virtual_wallet/internal/api"        // Custom package for API handlers
	"virtual_wallet/internal/auth"       // Bearer token verifier
	"virtual_wallet/internal/config"     // Custom package for configuration
	"virtual_wallet/internal/db"         // Database bootstrap
	"virtual_wallet/internal/middleware" // Custom package for middleware
	"virtual_wallet/internal/store"      // Store contracts
	"virtual_wallet/internal/store/memory"
	"virtual_wallet/internal/store/sqlstore"
	"virtual_wallet/internal/utils"  // Cache helpers
	"virtual_wallet/internal/wallet" // Wallet service

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	if cfg.IsProd {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("invalid configuration: %v", err)
	}

	st, err := openStore(cfg) // Memory or MySQL backend
	if err != nil {
		logrus.Fatalf("failed to open store: %v", err)
	}
	defer st.Close()

	rdb := openRedis(cfg) // Optional cache
	if rdb != nil {
		defer rdb.Close()
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	svc := wallet.NewService(st, wallet.Config{InitialGrant: cfg.InitialBalance})
	verifier := auth.NewVerifier(cfg.JWTSecret, cfg.TokenTTL, st.Users())
	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	stopCleanup := make(chan struct{})
	limiter.StartCleanup(10*time.Minute, stopCleanup)
	defer close(stopCleanup)

	router, err := api.NewRouter(api.Deps{
		Config:      cfg,
		Wallet:      svc,
		Verifier:    verifier,
		Redis:       rdb,
		RateLimiter: limiter,
	})
	if err != nil {
		logrus.Fatalf("failed to build router: %v", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logrus.WithFields(logrus.Fields{
			"port":          cfg.AppPort,
			"store":         cfg.StoreDriver,
			"initial_grant": svc.InitialGrant().StringFixed(2),
		}).Info("Server running") // Log server start
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logrus.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("graceful shutdown failed: %v", err)
	}
}

// openStore returns the configured backend
func openStore(cfg *config.Config) (store.Store, error) {
	if cfg.StoreDriver != config.StoreMySQL {
		logrus.Warn("Using in-memory store, data is lost on restart")
		return memory.New(), nil
	}
	gdb, err := db.Open(cfg) // Connect to MySQL
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(gdb); err != nil {
		return nil, err
	}
	return sqlstore.New(gdb), nil
}

// openRedis connects to Redis when configured; caching is disabled otherwise or on failure
func openRedis(cfg *config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	// Test Redis connection
	if err := rdb.Ping(ctx).Err(); err != nil {
		logrus.WithField("error", err.Error()).Warn("Redis unavailable, caching disabled")
		_ = rdb.Close()
		return nil
	}
	// The catalog may have been re-seeded since the last run
	if err := utils.DeleteCache(ctx, rdb, utils.ItemsCacheKey); err != nil {
		logrus.WithField("error", err.Error()).Warn("Failed to drop cached catalog")
	}
	return rdb
}
