package ops

import (
	"context"
	"fmt"
	"time"

	"github.com/alnah/go-hhapply/internal/hh"
)

// Refresher renews the access token. *hh.Client satisfies it.
type Refresher interface {
	RefreshAccessToken(ctx context.Context) error
	Token() hh.Token
}

// Authenticator runs the authorization code exchange. *hh.OAuthClient
// satisfies it.
type Authenticator interface {
	AuthorizeURL() string
	Authenticate(ctx context.Context, code string) (hh.Token, error)
}

// TokenSetter stores a new token bundle. *hh.Client satisfies it.
type TokenSetter interface {
	SetToken(t hh.Token)
}

// RefreshToken renews the access token and prints its new expiry.
func RefreshToken(ctx context.Context, d Deps, r Refresher) error {
	if err := r.RefreshAccessToken(ctx); err != nil {
		return err
	}
	d.printf("token refreshed, expires %s\n", r.Token().ExpiresAt().Local().Format(time.DateTime))
	return nil
}

// Authorize exchanges an authorization code for a token bundle and stores
// it in tokens. With an empty code it prints the authorization URL and
// reads the code, or the whole redirect URL, from Stdin.
func Authorize(ctx context.Context, d Deps, auth Authenticator, tokens TokenSetter, code string) error {
	if code == "" {
		d.printf("open this URL, sign in, and paste the code or the redirect URL:\n%s\n", auth.AuthorizeURL())
		line, ok := newPrompter(d.Stdin, d.stdout()).readLine("code: ")
		if !ok || line == "" {
			return fmt.Errorf("read authorization code: %w", hh.ErrNoAuthCode)
		}
		code = line
	}

	code, err := hh.CodeFromRedirect(code)
	if err != nil {
		return err
	}
	token, err := auth.Authenticate(ctx, code)
	if err != nil {
		return fmt.Errorf("authenticate: %w", err)
	}
	tokens.SetToken(token)
	d.printf("authorized, token expires %s\n", token.ExpiresAt().Local().Format(time.DateTime))
	return nil
}
