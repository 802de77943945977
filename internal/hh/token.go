package hh

import "time"

// TokenTypeBearer is the only token type hh issues.
const TokenTypeBearer = "bearer"

// Token is an OAuth access token bundle. Its JSON form is what data.json
// stores under "token".
type Token struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	// AccessExpiresAt is the absolute expiry in epoch seconds.
	AccessExpiresAt int64  `json:"access_expires_at"`
	TokenType       string `json:"token_type,omitempty"`
}

// Expired reports whether now is past the expiry.
func (t Token) Expired(now time.Time) bool {
	return now.Unix() > t.AccessExpiresAt
}

// ExpiresAt returns the expiry as a time.
func (t Token) ExpiresAt() time.Time {
	return time.Unix(t.AccessExpiresAt, 0)
}

// IsZero reports whether the bundle holds no credentials at all.
func (t Token) IsZero() bool {
	return t.AccessToken == "" && t.RefreshToken == ""
}

// MergeToken applies next onto prev field by field. A field is taken from
// next only when next carries it; everything else keeps its previous value.
// The token type is always bearer.
func MergeToken(prev, next Token) Token {
	out := prev
	if next.AccessToken != "" {
		out.AccessToken = next.AccessToken
	}
	if next.RefreshToken != "" {
		out.RefreshToken = next.RefreshToken
	}
	if next.AccessExpiresAt != 0 {
		out.AccessExpiresAt = next.AccessExpiresAt
	}
	out.TokenType = TokenTypeBearer
	return out
}

// Equal compares the credential fields, ignoring the token type.
func (t Token) Equal(o Token) bool {
	return t.AccessToken == o.AccessToken &&
		t.RefreshToken == o.RefreshToken &&
		t.AccessExpiresAt == o.AccessExpiresAt
}
