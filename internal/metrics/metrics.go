package metrics

import (
	"net/http" // Handler type
	"strconv"  // Status labels
	"time"     // Request latency

	"github.com/gin-gonic/gin"                                // Gin web framework
	"github.com/prometheus/client_golang/prometheus"          // Collectors
	"github.com/prometheus/client_golang/prometheus/promhttp" // Exposition handler
)

// Outcome labels for wallet operations
const (
	OutcomeSuccess  = "success"  // Completed
	OutcomeRejected = "rejected" // Domain error
	OutcomeError    = "error"    // Internal fault
)

var (
	Registry = prometheus.NewRegistry() // Application collectors only

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wallet",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"}, // Route pattern, not raw path
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "wallet",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path"},
	)

	walletOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wallet",
			Subsystem: "ledger",
			Name:      "operations_total",
			Help:      "Wallet operations by outcome.",
		},
		[]string{"operation", "outcome"}, // register, login, spend, buy
	)

	walletVolume = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wallet",
			Subsystem: "ledger",
			Name:      "amount_total",
			Help:      "Sum of amounts recorded in the ledger, by transaction type.",
		},
		[]string{"type"}, // REGISTER, SPEND, BUY
	)
)

func init() {
	Registry.MustRegister(httpRequests, httpDuration, walletOperations, walletVolume)
}

// RecordOperation counts one wallet operation
func RecordOperation(operation, outcome string) {
	walletOperations.WithLabelValues(operation, outcome).Inc()
}

// RecordVolume adds a recorded ledger amount
func RecordVolume(txType string, amount float64) {
	walletVolume.WithLabelValues(txType).Add(amount)
}

// Handler serves the registry in the Prometheus exposition format
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Instrument records request counts and latency per route pattern
func Instrument() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now() // Request start
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched" // No route
		}
		httpRequests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
