package discord

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"sync"
	"testing"
	"time"

	"emotify/models"
)

// fakeClock records every sleep instead of waiting
type fakeClock struct {
	mu      sync.Mutex
	current time.Time
	sleeps  []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{current: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *fakeClock) sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sleeps = append(c.sleeps, d)
	c.current = c.current.Add(d)
	return nil
}

func (c *fakeClock) recorded() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.sleeps)
}

func (c *fakeClock) limiter() *RateLimiter {
	return NewRateLimiterWithClock(c.now, c.sleep)
}

func newTestClient(t *testing.T, handler http.Handler, opts ...Option) (*Client, *fakeClock) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	clock := newFakeClock()
	opts = append([]Option{
		WithBaseURL(server.URL),
		WithHTTPClient(server.Client()),
		WithRateLimiter(clock.limiter()),
	}, opts...)
	return NewClient("test-token", opts...), clock
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func messageIDs(start time.Time, count int) []models.Snowflake {
	ids := make([]models.Snowflake, 0, count)
	for i := range count {
		ids = append(ids, models.SnowflakeFromTime(start.Add(time.Duration(i)*time.Minute)))
	}
	return ids
}

func messagePayload(channelID string, id models.Snowflake, content string) map[string]any {
	return map[string]any{
		"id":         id.String(),
		"channel_id": channelID,
		"content":    content,
		"timestamp":  id.Time().Format(time.RFC3339Nano),
		"author":     map[string]any{"id": "42", "username": "someone"},
	}
}

// fakeChannel serves channels/{id}/messages with Discord's cursor semantics:
// pages are always newest-first, whichever cursor is used.
type fakeChannel struct {
	mu       sync.Mutex
	id       string
	ids      []models.Snowflake // ascending
	content  string
	requests int
	// afterSnapshot runs once the limit=1 snapshot has been served
	afterSnapshot func(c *fakeChannel)
}

func (c *fakeChannel) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c.mu.Lock()
	c.requests++

	query := r.URL.Query()
	limit, _ := strconv.Atoi(query.Get("limit"))
	if limit <= 0 {
		limit = 50
	}

	var selected []models.Snowflake
	switch {
	case query.Has("after"):
		after := models.MustParseSnowflake(query.Get("after"))
		for _, id := range c.ids {
			if id > after && len(selected) < limit {
				selected = append(selected, id)
			}
		}
	case query.Has("before"):
		before := models.MustParseSnowflake(query.Get("before"))
		for _, id := range c.ids {
			if id < before {
				selected = append(selected, id)
			}
		}
		selected = selected[max(0, len(selected)-limit):]
	default:
		selected = c.ids[max(0, len(c.ids)-limit):]
	}

	payload := make([]map[string]any, 0, len(selected))
	for i := len(selected) - 1; i >= 0; i-- {
		payload = append(payload, messagePayload(c.id, selected[i], c.content))
	}

	hook := c.afterSnapshot
	if limit == 1 {
		c.afterSnapshot = nil
	} else {
		hook = nil
	}
	c.mu.Unlock()

	writeJSON(w, payload)
	if hook != nil {
		c.mu.Lock()
		hook(c)
		c.mu.Unlock()
	}
}

func (c *fakeChannel) requestCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.requests
}
