package config

import (
	"errors"  // For validation errors
	"fmt"     // For error formatting
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"strings" // For list parsing
	"time"    // For durations

	"github.com/joho/godotenv"      // For loading .env files
	"github.com/shopspring/decimal" // For the initial grant
	"github.com/sirupsen/logrus"    // For reporting bad values
)

// Store drivers
const (
	StoreMemory = "memory" // In-process store, the default
	StoreMySQL  = "mysql"  // GORM over MySQL
)

// Config holds the application configuration
type Config struct {
	AppPort        string          // Application port
	StoreDriver    string          // memory or mysql
	DBUser         string          // Database user
	DBPassword     string          // Database password
	DBHost         string          // Database host
	DBPort         string          // Database port
	DBName         string          // Database name
	JWTSecret      string          // JWT secret key
	TokenTTL       time.Duration   // Lifetime of issued bearer tokens
	InitialBalance decimal.Decimal // Credited to every new wallet
	RedisAddr      string          // Redis server address, empty disables caching
	RedisPass      string          // Redis password
	RedisDB        int             // Redis database number
	CacheTTL       time.Duration   // TTL of cached balances and catalog
	RateLimitRPS   int             // Requests per second per client on /auth
	RateLimitBurst int             // Burst allowance on /auth
	AdminUsernames []string        // Users allowed on debug listings; empty keeps them public
	DebugRoutes    bool            // Mount /users and /transactions
	IsProd         bool            // Is production environment
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	isProd := os.Getenv("IS_PROD") == "true"
	return &Config{
		AppPort:        getEnv("APP_PORT", "8000"),                                    // Application port
		StoreDriver:    strings.ToLower(getEnv("STORE_DRIVER", StoreMemory)),          // Store driver
		DBUser:         os.Getenv("DB_USER"),                                          // Database user
		DBPassword:     os.Getenv("DB_PASSWORD"),                                      // Database password
		DBHost:         os.Getenv("DB_HOST"),                                          // Database host
		DBPort:         getEnv("DB_PORT", "3306"),                                     // Database port
		DBName:         os.Getenv("DB_NAME"),                                          // Database name
		JWTSecret:      os.Getenv("JWT_SECRET"),                                       // JWT secret key
		TokenTTL:       time.Duration(getInt("TOKEN_TTL_MINUTES", 30)) * time.Minute,  // Token lifetime
		InitialBalance: getDecimal("INITIAL_BALANCE", "100.00"),                       // Initial grant
		RedisAddr:      os.Getenv("REDIS_ADDR"),                                       // Redis server address
		RedisPass:      os.Getenv("REDIS_PASS"),                                       // Redis password
		RedisDB:        getInt("REDIS_DB", 0),                                         // Redis database number
		CacheTTL:       time.Duration(getInt("CACHE_TTL_SECONDS", 30)) * time.Second,  // Cache TTL
		RateLimitRPS:   getInt("RATE_LIMIT_RPS", 5),                                   // Auth rate limit
		RateLimitBurst: getInt("RATE_LIMIT_BURST", 10),                                // Auth burst
		AdminUsernames: splitList(os.Getenv("ADMIN_USERNAMES")),                       // Debug route admins
		DebugRoutes:    getEnv("DEBUG_ROUTES", strconv.FormatBool(!isProd)) == "true", // Debug routes
		IsProd:         isProd,                                                        // Is production environment
	}
}

// devJWTSecret signs tokens when JWT_SECRET is unset outside production
const devJWTSecret = "dev-only-secret-change-me"

// Validate checks the configuration and fills development defaults
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreMemory, StoreMySQL:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver) // Unsupported backend
	}
	if c.JWTSecret == "" {
		if c.IsProd {
			return errors.New("JWT_SECRET is required in production") // Never sign with a known key in production
		}
		logrus.Warn("JWT_SECRET not set, using development secret")
		c.JWTSecret = devJWTSecret
	}
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL_MINUTES must be positive")
	}
	if !c.InitialBalance.IsPositive() {
		return errors.New("INITIAL_BALANCE must be greater than zero") // Zero would fall back to the default grant
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	return nil
}

// IsAdmin reports whether username may use the debug listings
func (c *Config) IsAdmin(username string) bool {
	for _, admin := range c.AdminUsernames {
		if admin == username {
			return true
		}
	}
	return false
}

// getEnv returns the variable or fallback when unset
func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

// getInt parses an integer variable, falling back on absence or bad input
func getInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		logrus.WithFields(logrus.Fields{"key": key, "value": raw}).Warn("Invalid integer in environment, using default")
		return fallback
	}
	return v
}

// getDecimal parses a money variable, falling back on absence or bad input
func getDecimal(key, fallback string) decimal.Decimal {
	raw := getEnv(key, fallback)
	v, err := decimal.NewFromString(raw)
	if err != nil || v.IsNegative() {
		logrus.WithFields(logrus.Fields{"key": key, "value": raw}).Warn("Invalid amount in environment, using default")
		return decimal.RequireFromString(fallback)
	}
	return v.Round(2)
}

// splitList splits a comma separated list, dropping blanks
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
