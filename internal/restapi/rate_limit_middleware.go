package restapi

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
	"kavyashar.org/intake/internal/app"
	"kavyashar.org/intake/internal/clock"
	"kavyashar.org/intake/internal/models"
)

const (
	limiterIdleTimeout = 10 * time.Minute
	limiterCleanup     = 5 * time.Minute
)

type rateLimitClient struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // unix nanoseconds
}

// RateLimitMiddleware limits requests per client. A client is its API key
// when it sends one and its remote address otherwise, so anonymous riders
// submitting from one address share a budget.
type RateLimitMiddleware struct {
	mu         sync.RWMutex
	clients    map[string]*rateLimitClient
	limit      rate.Limit
	burst      int
	exemptKeys map[string]bool
	clock      clock.Clock

	ticker   *time.Ticker
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewRateLimitMiddleware allows requestsPerInterval requests per interval
// (one second when zero) for each client. A negative rate disables
// limiting and zero rejects everything. Exempt keys are never limited.
func NewRateLimitMiddleware(requestsPerInterval int, interval time.Duration, exemptKeys []string, c clock.Clock) *RateLimitMiddleware {
	if interval <= 0 {
		interval = time.Second
	}
	if c == nil {
		c = clock.RealClock{}
	}

	var limit rate.Limit
	switch {
	case requestsPerInterval < 0:
		limit = rate.Inf
	case requestsPerInterval == 0:
		limit = 0
	default:
		limit = rate.Every(interval / time.Duration(requestsPerInterval))
	}

	exempt := make(map[string]bool)
	for _, k := range exemptKeys {
		if k = strings.TrimSpace(k); k != "" {
			exempt[k] = true
		}
	}

	rl := &RateLimitMiddleware{
		clients:    make(map[string]*rateLimitClient),
		limit:      limit,
		burst:      max(requestsPerInterval, 0),
		exemptKeys: exempt,
		clock:      c,
		ticker:     time.NewTicker(limiterCleanup),
		stopChan:   make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

func (rl *RateLimitMiddleware) Handler() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := app.RequestAPIKey(r)
			if key != "" && rl.exemptKeys[key] {
				next.ServeHTTP(w, r)
				return
			}
			if key == "" {
				key = "addr:" + clientAddress(r)
			}
			if !rl.limiter(key).AllowN(rl.clock.Now(), 1) {
				rl.sendRateLimitExceeded(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientAddress(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (rl *RateLimitMiddleware) limiter(key string) *rate.Limiter {
	now := rl.clock.Now().UnixNano()

	rl.mu.RLock()
	c, ok := rl.clients[key]
	rl.mu.RUnlock()
	if ok {
		c.lastSeen.Store(now)
		return c.limiter
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if c, ok := rl.clients[key]; ok {
		c.lastSeen.Store(now)
		return c.limiter
	}
	c = &rateLimitClient{limiter: rate.NewLimiter(rl.limit, rl.burst)}
	c.lastSeen.Store(now)
	rl.clients[key] = c
	return c.limiter
}

func (rl *RateLimitMiddleware) sendRateLimitExceeded(w http.ResponseWriter) {
	retryAfter := time.Second
	switch rl.limit {
	case 0:
		retryAfter = time.Hour
	case rate.Inf:
	default:
		retryAfter = max(time.Duration(float64(time.Second)/float64(rl.limit)), time.Second)
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.burst))
	w.Header().Set("X-RateLimit-Remaining", "0")
	w.WriteHeader(http.StatusTooManyRequests)

	body := models.NewErrorResponse(http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.", nil, rl.clock)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode rate limit response", "error", err)
	}
}

// cleanupOnce evicts clients idle for longer than limiterIdleTimeout.
func (rl *RateLimitMiddleware) cleanupOnce() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.clock.Now()
	for key, c := range rl.clients {
		if now.Sub(time.Unix(0, c.lastSeen.Load())) > limiterIdleTimeout {
			delete(rl.clients, key)
		}
	}
}

func (rl *RateLimitMiddleware) cleanup() {
	for {
		select {
		case <-rl.ticker.C:
			rl.cleanupOnce()
		case <-rl.stopChan:
			return
		}
	}
}

// Stop ends the cleanup goroutine. It is safe to call more than once.
func (rl *RateLimitMiddleware) Stop() {
	rl.stopOnce.Do(func() {
		close(rl.stopChan)
		rl.ticker.Stop()
	})
}
