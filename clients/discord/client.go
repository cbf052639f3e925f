package discord

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"emotify/clients"
	"emotify/core"
	"emotify/core/log"
	"emotify/models"
)

var (
	discordAPIBase = "https://discord.com/api/v10/"
	userAgent      = "DiscordBot (https://github.com/emotify/emotify, 1.0)"
)

// Client talks to the Discord REST API. It is safe for concurrent use: the rate limiter and
// the resolved token kind are shared by every request issued through it.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	preference models.RateLimitPreference
	limiter    *RateLimiter
	tokenKind  *tokenResolver
}

var _ clients.DiscordClient = (*Client)(nil)

type Option func(*Client)

// WithHTTPClient replaces the tuned default HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithBaseURL points the client at another API root
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL == "" {
			return
		}
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		c.baseURL = baseURL
	}
}

// WithRateLimitPreference selects for which token kinds advisory limits are honored
func WithRateLimitPreference(preference models.RateLimitPreference) Option {
	return func(c *Client) {
		c.preference = preference
	}
}

// WithRateLimiter shares a limiter between clients, or injects a fake clock in tests
func WithRateLimiter(limiter *RateLimiter) Option {
	return func(c *Client) {
		c.limiter = limiter
	}
}

// WithTokenKind skips resolution when the caller already knows the token kind
func WithTokenKind(kind models.TokenKind) Option {
	return func(c *Client) {
		c.tokenKind.store(kind)
	}
}

// NewClient creates a client for token. The token kind is resolved lazily on the first request.
func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		httpClient: newDefaultHTTPClient(60 * time.Second),
		baseURL:    discordAPIBase,
		token:      token,
		preference: models.RateLimitRespectAll,
		limiter:    NewRateLimiter(),
	}
	c.tokenKind = newTokenResolver(c.probeTokenKind)

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// rawResponse is a fully read response; the body is small JSON for every endpoint we use
type rawResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

func (r *rawResponse) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// execute sends one request authorized with the resolved token kind. 429 responses are retried
// internally until the server accepts the request or ctx is cancelled.
func (c *Client) execute(ctx context.Context, method, path string, query url.Values) (*rawResponse, error) {
	kind, err := c.ResolveTokenKind(ctx)
	if err != nil {
		return nil, err
	}
	return c.send(ctx, method, path, query, kind)
}

func (c *Client) send(
	ctx context.Context,
	method, path string,
	query url.Values,
	kind models.TokenKind,
) (*rawResponse, error) {
	respectAdvisory := c.preference.IsRespectedFor(kind)

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := c.limiter.WaitTurn(ctx); err != nil {
			return nil, err
		}

		resp, err := c.do(ctx, method, path, query, kind)
		if err != nil {
			return nil, err
		}

		if respectAdvisory {
			if delay := c.limiter.Observe(ParseSnapshot(resp.Header)); delay > 0 {
				log.Debug("⏳ Advisory rate limit exhausted, holding further requests",
					"path", path, "delay", delay)
			}
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			wait := HardLimitDelay(resp.Header, resp.Body)
			log.Warn("⏳ Rate limited by server, retrying",
				"method", method, "path", path, "attempt", attempt, "wait", wait)
			if err := c.limiter.Sleep(ctx, wait); err != nil {
				return nil, err
			}
			continue
		}

		// Block the caller too, so "one request" means "one request, sent when safe".
		// The server has already acted on this request, so a cancelled hold still returns it.
		if respectAdvisory {
			if err := c.limiter.WaitTurn(ctx); err != nil {
				log.Debug("📋 Advisory hold interrupted after response", "path", path, "error", err)
			}
		}
		return resp, nil
	}
}

func (c *Client) do(
	ctx context.Context,
	method, path string,
	query url.Values,
	kind models.TokenKind,
) (*rawResponse, error) {
	target := c.baseURL + strings.TrimPrefix(path, "/")
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	// A request that has been sent is allowed to finish; cancellation only stops the next one.
	// The HTTP client timeout still bounds it.
	req, err := http.NewRequestWithContext(context.WithoutCancel(ctx), method, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Assigned directly so the token is not canonicalized or trimmed. The transport still
	// rejects values with control characters.
	req.Header["Authorization"] = []string{kind.AuthorizationHeader(c.token)}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &rawResponse{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}, nil
}

// checkResponse maps a non-success status onto the error taxonomy
func checkResponse(method, path string, resp *rawResponse) error {
	if resp.IsSuccess() {
		return nil
	}

	reqErr := &core.RequestError{Method: method, Path: path, StatusCode: resp.StatusCode}
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		reqErr.Err = core.ErrAuth
	case http.StatusForbidden:
		reqErr.Err = core.ErrForbidden
	case http.StatusNotFound:
		reqErr.Err = core.ErrNotFound
	default:
		reqErr.Err = core.ErrServer
		reqErr.Body = string(resp.Body)
	}
	return reqErr
}

// request executes and classifies a call whose response body is not needed
func (c *Client) request(ctx context.Context, method, path string) error {
	resp, err := c.execute(ctx, method, path, nil)
	if err != nil {
		return err
	}
	return checkResponse(method, path, resp)
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	resp, err := c.execute(ctx, http.MethodGet, path, query)
	if err != nil {
		return err
	}
	if err := checkResponse(http.MethodGet, path, resp); err != nil {
		return err
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}

// tryGetJSON is getJSON for resources the caller may not be able to see.
// It returns false on 403/404; fatal and server errors still surface.
func (c *Client) tryGetJSON(ctx context.Context, path string, query url.Values, out any) (bool, error) {
	err := c.getJSON(ctx, path, query, out)
	if core.IsAbsent(err) {
		log.Debug("📋 Resource not accessible, treating as absent", "path", path, "error", err)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
