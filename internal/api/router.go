package api

import (
	"net/http" // HTTP status codes

	"virtual_wallet/internal/auth"       // Bearer token verifier
	"virtual_wallet/internal/config"     // Application configuration
	"virtual_wallet/internal/metrics"    // Prometheus collectors
	"virtual_wallet/internal/middleware" // Custom middleware
	"virtual_wallet/internal/wallet"     // Wallet service

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
)

// Deps are the collaborators the HTTP surface is built from
type Deps struct {
	Config      *config.Config          // Application configuration
	Wallet      *wallet.Service         // Wallet service
	Verifier    *auth.Verifier          // Bearer token verifier
	Redis       *redis.Client           // Optional catalog cache, nil disables caching
	RateLimiter *middleware.RateLimiter // Throttles /auth
}

// NewRouter wires every route onto a fresh gin engine
func NewRouter(d Deps) (*gin.Engine, error) {
	r := gin.New() // Gin router instance
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger(), metrics.Instrument())

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		return nil, err
	}

	cfg := d.Config
	requireUser := middleware.JWTAuthMiddleware(d.Verifier) // Bearer auth

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) }) // Liveness
	r.GET("/metrics", gin.WrapH(metrics.Handler()))                                          // Prometheus

	// Auth routes
	authGroup := r.Group("/auth")
	if d.RateLimiter != nil {
		authGroup.Use(d.RateLimiter.Handler()) // Throttle credential guessing
	}
	authGroup.POST("/register", RegisterHandler(d.Wallet))       // Registration endpoint
	authGroup.POST("/login", LoginHandler(d.Wallet, d.Verifier)) // Login endpoint

	// Wallet routes (protected by JWT)
	walletGroup := r.Group("/wallet", requireUser)
	walletGroup.GET("/balance", BalanceHandler(d.Wallet))      // Balance endpoint
	walletGroup.POST("/spend", SpendHandler(d.Wallet))         // Spend endpoint
	walletGroup.GET("/transactions", HistoryHandler(d.Wallet)) // Own history endpoint

	// Item routes
	itemsGroup := r.Group("/items")
	itemsGroup.GET("/list", ListItemsHandler(d.Wallet, d.Redis, cfg.CacheTTL)) // Public catalog
	itemsGroup.POST("/buy/:item_id", requireUser, BuyHandler(d.Wallet))        // Purchase endpoint

	// Debug listings: public unless admins are configured
	if cfg.DebugRoutes {
		debugGroup := r.Group("")
		if len(cfg.AdminUsernames) > 0 {
			debugGroup.Use(requireUser, middleware.AdminOnlyMiddleware(cfg.IsAdmin))
		}
		debugGroup.GET("/transactions", ListTransactionsHandler(d.Wallet)) // List transactions endpoint
		debugGroup.GET("/users", ListUsersHandler(d.Wallet))               // List users endpoint
	}

	return r, nil
}
