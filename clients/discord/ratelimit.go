package discord

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/samber/mo"

	"emotify/models"
)

const (
	maxRateLimitWait  = 60 * time.Second
	hardLimitBuffer   = 200 * time.Millisecond
	advisoryBuffer    = time.Second
	defaultRetryAfter = time.Second
)

// RateLimiter holds the advisory budget shared by every in-flight request.
//
// It tracks a single global deadline instead of Discord's per-route buckets: once any
// response reports an exhausted budget, all requests wait until that window resets.
// This trades throughput for never tripping a limit the server advertised.
type RateLimiter struct {
	mu           sync.Mutex
	blockedUntil time.Time

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{now: time.Now, sleep: sleepContext}
}

// NewRateLimiterWithClock is NewRateLimiter with an injected clock and sleeper
func NewRateLimiterWithClock(now func() time.Time, sleep func(ctx context.Context, d time.Duration) error) *RateLimiter {
	return &RateLimiter{now: now, sleep: sleep}
}

// Observe records the advisory snapshot of a response. If the budget is exhausted the next
// request is held back for resetAfter + 1s, capped at 60s. It returns the hold duration.
func (r *RateLimiter) Observe(snapshot models.RateLimitSnapshot) time.Duration {
	if !snapshot.IsExhausted() {
		return 0
	}

	delay := clampWait(snapshot.ResetAfter.MustGet() + advisoryBuffer)

	r.mu.Lock()
	defer r.mu.Unlock()
	// Concurrent exhausted responses describe the same window; keep the latest deadline
	// instead of stacking their delays.
	if until := r.now().Add(delay); until.After(r.blockedUntil) {
		r.blockedUntil = until
	}
	return delay
}

// WaitTurn blocks until the advisory deadline has passed or ctx is done
func (r *RateLimiter) WaitTurn(ctx context.Context) error {
	r.mu.Lock()
	wait := r.blockedUntil.Sub(r.now())
	r.mu.Unlock()

	if wait <= 0 {
		return nil
	}
	return r.sleep(ctx, wait)
}

// Sleep waits for d using the limiter's clock, returning early with ctx's error
func (r *RateLimiter) Sleep(ctx context.Context, d time.Duration) error {
	return r.sleep(ctx, d)
}

// ParseSnapshot reads the advisory headers. Malformed values are treated as absent.
func ParseSnapshot(header http.Header) models.RateLimitSnapshot {
	snapshot := models.RateLimitSnapshot{
		Remaining:  mo.None[int](),
		ResetAfter: mo.None[time.Duration](),
	}

	if raw := header.Get("X-RateLimit-Remaining"); raw != "" {
		if remaining, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
			snapshot.Remaining = mo.Some(remaining)
		}
	}
	if resetAfter, ok := parseSeconds(header.Get("X-RateLimit-Reset-After")); ok {
		snapshot.ResetAfter = mo.Some(resetAfter)
	}

	return snapshot
}

// HardLimitDelay computes how long to wait after a 429: Retry-After, then
// X-RateLimit-Reset-After, then the body's retry_after, then 1s; plus 200ms, capped at 60s.
func HardLimitDelay(header http.Header, body []byte) time.Duration {
	retryAfter := retryAfterHeader(header.Get("Retry-After"))

	if retryAfter.IsAbsent() {
		if resetAfter, ok := parseSeconds(header.Get("X-RateLimit-Reset-After")); ok {
			retryAfter = mo.Some(resetAfter)
		}
	}

	if retryAfter.IsAbsent() && len(body) > 0 {
		var payload struct {
			RetryAfter *float64 `json:"retry_after"`
		}
		if err := json.Unmarshal(body, &payload); err == nil && payload.RetryAfter != nil {
			retryAfter = mo.Some(secondsToDuration(*payload.RetryAfter))
		}
	}

	return clampWait(retryAfter.OrElse(defaultRetryAfter) + hardLimitBuffer)
}

// retryAfterHeader accepts delta seconds (possibly fractional) or an HTTP date
func retryAfterHeader(raw string) mo.Option[time.Duration] {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return mo.None[time.Duration]()
	}
	if d, ok := parseSeconds(raw); ok {
		return mo.Some(d)
	}
	if at, err := http.ParseTime(raw); err == nil {
		return mo.Some(time.Until(at))
	}
	return mo.None[time.Duration]()
}

func parseSeconds(raw string) (time.Duration, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	seconds, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return secondsToDuration(seconds), true
}

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}

func clampWait(d time.Duration) time.Duration {
	return min(max(d, 0), maxRateLimitWait)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
