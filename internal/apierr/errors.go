// Package apierr provides shared error sentinels and retry infrastructure
// for HTTP-based API clients.
//
// Two families live here. The hh API taxonomy (ErrRedirect, ErrClientError
// and its subkinds, ErrInternalServerError and ErrBadGateway) is produced by
// Classify and carried by *Error, which also keeps the response data for
// inspection. The LLM provider sentinels (ErrRateLimit, ErrQuotaExceeded,
// ErrTimeout, ErrAuthFailed) are attached by provider adapters with
// fmt.Errorf("%s: %w", msg, sentinel).
//
// Callers check with errors.Is(err, apierr.ErrForbidden) etc. A kind also
// matches its ancestors: errors.Is(err, apierr.ErrClientError) is true for a
// Forbidden response.
package apierr

import "errors"

// Sentinel errors for hh API responses.
var (
	// ErrAPI is the common ancestor of every classified hh API failure.
	ErrAPI = errors.New("api error")

	// ErrRedirect indicates a 3xx response. Redirects are never followed.
	ErrRedirect = errors.New("redirect")

	// ErrClientError indicates a 4xx response not covered by a narrower kind.
	ErrClientError = errors.New("client error")

	// ErrBadRequest indicates a 400 response.
	ErrBadRequest = errors.New("bad request")

	// ErrLimitExceeded indicates a 400 response whose body reports
	// limit_exceeded. Callers should stop applying for the rest of the run.
	ErrLimitExceeded = errors.New("limit exceeded")

	// ErrForbidden indicates a 403 response.
	ErrForbidden = errors.New("forbidden")

	// ErrResourceNotFound indicates a 404 response.
	ErrResourceNotFound = errors.New("resource not found")

	// ErrInternalServerError indicates a 5xx response not covered by a narrower kind.
	ErrInternalServerError = errors.New("internal server error")

	// ErrBadGateway indicates a 502 response.
	ErrBadGateway = errors.New("bad gateway")
)

// Sentinel errors for LLM provider failures.
var (
	// ErrRateLimit indicates the API rate limit was exceeded (temporary, retryable).
	ErrRateLimit = errors.New("rate limit exceeded")

	// ErrQuotaExceeded indicates the API quota was exceeded (billing issue, not retryable).
	ErrQuotaExceeded = errors.New("quota exceeded")

	// ErrTimeout indicates a request timed out.
	ErrTimeout = errors.New("request timeout")

	// ErrAuthFailed indicates API authentication failed (invalid key).
	ErrAuthFailed = errors.New("authentication failed")
)

// parents maps every hh kind to its ancestors, nearest first.
var parents = map[error][]error{
	ErrRedirect:            {ErrAPI},
	ErrClientError:         {ErrAPI},
	ErrBadRequest:          {ErrClientError, ErrAPI},
	ErrLimitExceeded:       {ErrClientError, ErrAPI},
	ErrForbidden:           {ErrClientError, ErrAPI},
	ErrResourceNotFound:    {ErrClientError, ErrAPI},
	ErrInternalServerError: {ErrAPI},
	ErrBadGateway:          {ErrInternalServerError, ErrAPI},
}
