package handlers

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

type attemptWindow struct {
	count int
	start time.Time
}

// RateLimiter allows limit attempts per client within a window that starts
// at the client's first attempt.
type RateLimiter struct {
	attempts map[string]*attemptWindow
	limit    int
	mutex    sync.Mutex
	window   time.Duration
	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		attempts: make(map[string]*attemptWindow),
		limit:    limit,
		window:   window,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

// Allow records an attempt for key. When the budget is spent it reports how
// long until the key's window ends.
func (rl *RateLimiter) Allow(key string) (bool, time.Duration) {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := rl.now()
	w, ok := rl.attempts[key]
	if !ok || now.Sub(w.start) >= rl.window {
		rl.attempts[key] = &attemptWindow{count: 1, start: now}
		return true, 0
	}
	if w.count >= rl.limit {
		return false, w.start.Add(rl.window).Sub(now)
	}
	w.count++
	return true, 0
}

// Stop ends the cleanup loop.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.evictExpired()
		case <-rl.stop:
			return
		}
	}
}

func (rl *RateLimiter) evictExpired() {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()
	now := rl.now()
	for key, w := range rl.attempts {
		if now.Sub(w.start) >= rl.window {
			delete(rl.attempts, key)
		}
	}
}

// Limit rejects requests from clients over their attempt budget. Clients are
// identified by clientIP, so X-Forwarded-For counts only from TrustedProxies.
func (h *Handler) Limit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.RateLimiter != nil {
			ip := clientIP(r, h.TrustedProxies)
			if ok, wait := h.RateLimiter.Allow(ip); !ok {
				log.WithField("ip", ip).Warn("rate limit exceeded")
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
				sendError(w, "Too many attempts. Please try again later.", http.StatusTooManyRequests)
				return
			}
		}
		next(w, r)
	}
}
