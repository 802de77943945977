package hh

import "errors"

var (
	// ErrMethodNotAllowed indicates a method other than GET, POST, PUT or DELETE.
	ErrMethodNotAllowed = errors.New("method not allowed")

	// ErrNoRefreshToken indicates a refresh was requested without a refresh token.
	ErrNoRefreshToken = errors.New("refresh token required")

	// ErrDecode indicates a response did not match the expected resource shape.
	ErrDecode = errors.New("unexpected response shape")

	// ErrNoAuthCode indicates a redirect URL without an authorization code.
	ErrNoAuthCode = errors.New("no authorization code")
)
