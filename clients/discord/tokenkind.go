package discord

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/samber/mo"
	"golang.org/x/sync/singleflight"

	"emotify/core"
	"emotify/core/log"
	"emotify/models"
)

// tokenResolver memoizes the token kind for the lifetime of a client.
// Concurrent first callers share a single resolution.
type tokenResolver struct {
	mu    sync.RWMutex
	kind  mo.Option[models.TokenKind]
	group singleflight.Group
	probe func(ctx context.Context, kind models.TokenKind) (bool, error)
}

func newTokenResolver(probe func(ctx context.Context, kind models.TokenKind) (bool, error)) *tokenResolver {
	return &tokenResolver{kind: mo.None[models.TokenKind](), probe: probe}
}

func (r *tokenResolver) cached() (models.TokenKind, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.kind.Get()
}

func (r *tokenResolver) store(kind models.TokenKind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kind = mo.Some(kind)
}

func (r *tokenResolver) resolve(ctx context.Context) (models.TokenKind, error) {
	if kind, ok := r.cached(); ok {
		return kind, nil
	}

	result, err, _ := r.group.Do("token-kind", func() (any, error) {
		if kind, ok := r.cached(); ok {
			return kind, nil
		}

		log.Debug("📋 Starting to resolve token kind")
		for _, kind := range []models.TokenKind{models.TokenKindBot, models.TokenKindUser} {
			authorized, err := r.probe(ctx, kind)
			if err != nil {
				return nil, err
			}
			if authorized {
				r.store(kind)
				log.Debug("📋 Completed successfully - resolved token kind", "kind", kind)
				return kind, nil
			}
		}

		return nil, fmt.Errorf("failed to resolve token kind: %w", core.ErrAuth)
	})
	if err != nil {
		return "", err
	}
	return result.(models.TokenKind), nil
}

// ResolveTokenKind determines whether the token belongs to a bot or a user, trying bot first
func (c *Client) ResolveTokenKind(ctx context.Context) (models.TokenKind, error) {
	return c.tokenKind.resolve(ctx)
}

// probeTokenKind reports whether users/@me accepts the token authorized as kind
func (c *Client) probeTokenKind(ctx context.Context, kind models.TokenKind) (bool, error) {
	resp, err := c.send(ctx, http.MethodGet, "users/@me", nil, kind)
	if err != nil {
		return false, err
	}
	if resp.IsSuccess() {
		return true, nil
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return false, checkResponse(http.MethodGet, "users/@me", resp)
	}
	return false, nil
}
