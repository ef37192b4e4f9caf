package handler

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type bucket struct {
	count   int
	resetAt time.Time
}

// RateLimiter counts requests per key in fixed windows.
type RateLimiter struct {
	mu      sync.Mutex
	win     time.Duration
	max     int
	buckets map[string]*bucket
	now     func() time.Time
	stopCh  chan struct{}
	stop    sync.Once
	done    chan struct{}
}

// NewRateLimiter allows max requests per key per window. A non-positive
// max disables limiting. The background sweep runs until ctx is done or
// Stop is called.
func NewRateLimiter(ctx context.Context, max int, window time.Duration) *RateLimiter {
	l := &RateLimiter{
		win:     window,
		max:     max,
		buckets: make(map[string]*bucket),
		now:     time.Now,
		stopCh:  make(chan struct{}),
		done:    make(chan struct{}),
	}
	if max > 0 {
		go l.cleanupLoop(ctx)
	} else {
		close(l.done)
	}
	return l
}

// Allow records one request for key and reports whether it is within the
// limit, and if not how long until the window resets.
func (l *RateLimiter) Allow(key string) (bool, time.Duration) {
	if l.max <= 0 {
		return true, 0
	}
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.buckets[key]
	if b == nil || now.After(b.resetAt) {
		b = &bucket{resetAt: now.Add(l.win)}
		l.buckets[key] = b
	}
	b.count++
	if b.count <= l.max {
		return true, 0
	}
	return false, b.resetAt.Sub(now)
}

func (l *RateLimiter) cleanupLoop(ctx context.Context) {
	defer close(l.done)
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.cleanup()
		case <-l.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (l *RateLimiter) cleanup() {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, b := range l.buckets {
		if now.After(b.resetAt) {
			delete(l.buckets, key)
		}
	}
}

func (l *RateLimiter) Stop() {
	l.stop.Do(func() { close(l.stopCh) })
}

// Done is closed once the background sweep has exited.
func (l *RateLimiter) Done() <-chan struct{} {
	return l.done
}

// Limit answers 429 with Retry-After once a client IP exceeds the limit.
func (l *RateLimiter) Limit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		ok, retry := l.Allow(ip)
		if !ok {
			logrus.WithFields(logrus.Fields{"remote_ip": ip, "path": r.URL.Path}).Warn("Rate limit exceeded")
			w.Header().Set("Retry-After", retryAfterSeconds(retry))
			writeError(w, http.StatusTooManyRequests, "Too many requests")
			return
		}
		next(w, r)
	}
}

func retryAfterSeconds(d time.Duration) string {
	if d <= 0 {
		return "0"
	}
	return strconv.Itoa(int(d.Seconds()))
}
