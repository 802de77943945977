package apierr

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Error is a classified hh API failure.
// It keeps the response data so callers can inspect what the server said.
type Error struct {
	Kind       error
	StatusCode int
	Method     string
	URL        string
	Header     http.Header
	// Body is the decoded response body re-encoded as JSON, or "{}" when
	// the server sent something that was not JSON.
	Body json.RawMessage
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %d %s %s: %s", e.Kind, e.StatusCode, e.Method, e.URL, string(e.Body))
}

// Unwrap returns the kind sentinel.
func (e *Error) Unwrap() error {
	return e.Kind
}

// Is reports whether target is the kind or one of its ancestors.
func (e *Error) Is(target error) bool {
	if target == e.Kind {
		return true
	}
	for _, p := range parents[e.Kind] {
		if target == p {
			return true
		}
	}
	return false
}

// Classify maps a terminal status code and response body to a taxonomy kind.
// It returns nil for 2xx statuses.
func Classify(status int, body []byte) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status >= 300 && status < 400:
		return ErrRedirect
	case status == http.StatusBadRequest:
		if IsLimitExceeded(body) {
			return ErrLimitExceeded
		}
		return ErrBadRequest
	case status == http.StatusForbidden:
		return ErrForbidden
	case status == http.StatusNotFound:
		return ErrResourceNotFound
	case status >= 400 && status < 500:
		return ErrClientError
	case status == http.StatusBadGateway:
		return ErrBadGateway
	case status >= 500:
		return ErrInternalServerError
	}
	// 1xx never reaches callers of net/http; treat it like any other
	// unexpected non-success.
	return ErrAPI
}

// IsLimitExceeded reports whether body carries an error entry whose value
// is "limit_exceeded".
func IsLimitExceeded(body []byte) bool {
	var payload struct {
		Errors []struct {
			Value string `json:"value"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return false
	}
	for _, e := range payload.Errors {
		if e.Value == "limit_exceeded" {
			return true
		}
	}
	return false
}

// NewError builds an *Error for a response, or returns nil for 2xx.
func NewError(resp *http.Response, body json.RawMessage) error {
	kind := Classify(resp.StatusCode, body)
	if kind == nil {
		return nil
	}
	e := &Error{
		Kind:       kind,
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}
	if resp.Request != nil {
		e.Method = resp.Request.Method
		if resp.Request.URL != nil {
			e.URL = resp.Request.URL.String()
		}
	}
	return e
}
