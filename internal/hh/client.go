package hh

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"go.uber.org/zap"

	"github.com/alnah/go-hhapply/internal/apierr"
)

// ClientConfig holds what an authenticated Client starts from.
type ClientConfig struct {
	Token       Token
	Credentials OAuthCredentials
	// BaseURL defaults to APIBaseURL.
	BaseURL string
	// OAuthBaseURL defaults to OAuthBaseURL.
	OAuthBaseURL string
}

// Client is an authenticated API client. It owns its session and token
// bundle; its OAuth client shares the session's HTTP client and throttle.
type Client struct {
	session *Session
	oauth   *OAuthClient

	// mu guards token. Concurrent refreshes are not coordinated.
	mu    sync.RWMutex
	token Token
}

// NewClient creates an authenticated client.
func NewClient(cfg ClientConfig, opts ...SessionOption) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = APIBaseURL
	}
	if cfg.OAuthBaseURL == "" {
		cfg.OAuthBaseURL = OAuthBaseURL
	}

	c := &Client{token: cfg.Token}
	c.session = NewSession(cfg.BaseURL, opts...)
	c.session.header = c.authorize
	c.oauth = &OAuthClient{
		session: c.session.derive(cfg.OAuthBaseURL),
		creds:   cfg.Credentials,
	}
	return c
}

// authorize sets the bearer header from the current access token.
func (c *Client) authorize(h http.Header) {
	c.mu.RLock()
	access := c.token.AccessToken
	c.mu.RUnlock()
	if access != "" {
		h.Set("Authorization", "Bearer "+access)
	}
}

// OAuth returns the OAuth client bound to this client's session.
func (c *Client) OAuth() *OAuthClient {
	return c.oauth
}

// UserAgent returns the User-Agent the client sends.
func (c *Client) UserAgent() string {
	return c.session.UserAgent()
}

// Request performs a request. When it fails with 403 while the access
// token is expired and a refresh token is available, the token is
// refreshed once and the request replayed once. A 403 on the replay, or
// any other failure, is returned as is.
func (c *Client) Request(ctx context.Context, method, endpoint string, params url.Values) (json.RawMessage, error) {
	body, err := c.session.Request(ctx, method, endpoint, params)
	if err == nil || !errors.Is(err, apierr.ErrForbidden) {
		return body, err
	}
	if !c.IsAccessExpired() || c.refreshToken() == "" {
		return nil, err
	}

	c.session.logger.Info("access token expired, refreshing")
	if rerr := c.RefreshAccessToken(ctx); rerr != nil {
		return nil, rerr
	}
	return c.session.Request(ctx, method, endpoint, params)
}

// IsAccessExpired reports whether the stored access token is past expiry.
func (c *Client) IsAccessExpired() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token.Expired(c.session.now())
}

func (c *Client) refreshToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token.RefreshToken
}

// RefreshAccessToken exchanges the refresh token for a new bundle and
// merges it into the stored one.
func (c *Client) RefreshAccessToken(ctx context.Context) error {
	rt := c.refreshToken()
	if rt == "" {
		return ErrNoRefreshToken
	}
	next, err := c.oauth.Refresh(ctx, rt)
	if err != nil {
		return fmt.Errorf("refresh access token: %w", err)
	}
	c.SetToken(next)
	c.session.logger.Debug("access token refreshed", zap.Time("expires_at", next.ExpiresAt()))
	return nil
}

// SetToken merges t into the stored bundle.
func (c *Client) SetToken(t Token) {
	c.mu.Lock()
	c.token = MergeToken(c.token, t)
	c.mu.Unlock()
}

// Token returns a snapshot of the current bundle for persistence.
func (c *Client) Token() Token {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t := c.token
	t.TokenType = TokenTypeBearer
	return t
}
