package hh

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
)

// OAuthCredentials identify the OAuth application. They are fixed for the
// lifetime of a process.
type OAuthCredentials struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Scope        string
	State        string
}

// OAuthClient exchanges authorization codes and refresh tokens for token
// bundles. It holds no token state of its own.
type OAuthClient struct {
	session *Session
	creds   OAuthCredentials
}

// NewOAuthClient creates an OAuthClient with its own Session on baseURL
// (OAuthBaseURL when empty).
func NewOAuthClient(baseURL string, creds OAuthCredentials, opts ...SessionOption) *OAuthClient {
	if baseURL == "" {
		baseURL = OAuthBaseURL
	}
	return &OAuthClient{session: NewSession(baseURL, opts...), creds: creds}
}

func (c *OAuthClient) config() oauth2.Config {
	cfg := oauth2.Config{
		ClientID:     c.creds.ClientID,
		ClientSecret: c.creds.ClientSecret,
		RedirectURL:  c.creds.RedirectURI,
		Endpoint: oauth2.Endpoint{
			AuthURL:   c.session.ResolveURL("/authorize"),
			TokenURL:  c.session.ResolveURL("/token"),
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	if c.creds.Scope != "" {
		cfg.Scopes = []string{c.creds.Scope}
	}
	return cfg
}

// AuthorizeURL returns the page the user opens to grant access. Empty
// parameters are left out.
func (c *OAuthClient) AuthorizeURL() string {
	cfg := c.config()
	raw := cfg.AuthCodeURL(c.creds.State)

	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	for k, vs := range q {
		if len(vs) == 0 || vs[0] == "" {
			q.Del(k)
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// Authenticate exchanges an authorization code for a token bundle.
func (c *OAuthClient) Authenticate(ctx context.Context, code string) (Token, error) {
	params := url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"client_id":     {c.creds.ClientID},
		"client_secret": {c.creds.ClientSecret},
	}
	return c.requestToken(ctx, params)
}

// Refresh exchanges a refresh token for a new token bundle.
func (c *OAuthClient) Refresh(ctx context.Context, refreshToken string) (Token, error) {
	params := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
		"client_id":     {c.creds.ClientID},
		"client_secret": {c.creds.ClientSecret},
	}
	return c.requestToken(ctx, params)
}

// tokenResponse is the token endpoint payload.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

func (c *OAuthClient) requestToken(ctx context.Context, params url.Values) (Token, error) {
	body, err := c.session.Request(ctx, http.MethodPost, c.config().Endpoint.TokenURL, params)
	if err != nil {
		return Token{}, fmt.Errorf("token request (%s): %w", params.Get("grant_type"), err)
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return Token{}, fmt.Errorf("token response: %w: %v", ErrDecode, err)
	}
	return Token{
		AccessToken:     tr.AccessToken,
		RefreshToken:    tr.RefreshToken,
		AccessExpiresAt: c.session.now().Unix() + tr.ExpiresIn,
		TokenType:       TokenTypeBearer,
	}, nil
}

// CodeFromRedirect extracts the authorization code from the URL the
// authorize page redirects to (hhandroid://oauthresponse?code=...). Input
// without a scheme is taken as the code itself.
func CodeFromRedirect(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrNoAuthCode
	}
	if !strings.Contains(raw, "://") {
		return raw, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse redirect url: %w", err)
	}
	code := u.Query().Get("code")
	if code == "" {
		return "", fmt.Errorf("%s: %w", u.Redacted(), ErrNoAuthCode)
	}
	return code, nil
}
