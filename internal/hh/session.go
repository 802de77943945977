// Package hh is a client for the hh.ru applicant API.
//
// The layers, bottom up:
//   - Session: one throttled HTTP round trip per call, errors classified
//     through apierr.
//   - OAuthClient: code and refresh-token exchange on top of a Session.
//   - Client: bearer authentication plus a single refresh-and-replay when
//     a request is rejected with 403 after the access token expired.
//   - API: typed services per resource, and pagination walkers.
//
// A Session is safe for concurrent use. Requests sharing a throttle are
// dispatched in lock order and never less than the configured delay apart.
package hh

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-hhapply/internal/apierr"
	"github.com/alnah/go-hhapply/internal/interval"
)

const (
	// APIBaseURL is the hh.ru REST API root.
	APIBaseURL = "https://api.hh.ru/"

	// OAuthBaseURL is the root of the OAuth authorize and token endpoints.
	OAuthBaseURL = "https://hh.ru/oauth"

	// DefaultDelay is the minimum spacing between two requests.
	DefaultDelay = 334 * time.Millisecond

	defaultHTTPTimeout = 60 * time.Second

	// maxResponseSize caps how much of a response body is read.
	maxResponseSize = 10 * 1024 * 1024
)

// emptyObject is what a body that is not JSON decodes to.
var emptyObject = json.RawMessage(`{}`)

// httpDoer executes HTTP requests. *http.Client satisfies it.
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// throttle serializes dispatches and spaces them by delay.
// It is shared between sessions derived from one another.
type throttle struct {
	mu    sync.Mutex
	delay time.Duration
	prev  time.Time
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// Session performs throttled requests against one base URL.
type Session struct {
	baseURL   string
	userAgent string
	http      httpDoer
	throttle  *throttle
	logger    *zap.Logger

	// header, when set, adds per-request headers (authorization).
	header func(h http.Header)
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) SessionOption {
	return func(s *Session) {
		if ua != "" {
			s.userAgent = ua
		}
	}
}

// WithDelay sets the minimum spacing between requests. Negative is zero.
func WithDelay(d time.Duration) SessionOption {
	return func(s *Session) {
		s.throttle.delay = max(d, 0)
	}
}

// WithHTTPClient sets the HTTP client. It should not follow redirects;
// see NewHTTPClient.
func WithHTTPClient(c httpDoer) SessionOption {
	return func(s *Session) {
		if c != nil {
			s.http = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) SessionOption {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock replaces the wall clock and the sleeper used by the throttle.
func WithClock(now func() time.Time, sleep func(ctx context.Context, d time.Duration) error) SessionOption {
	return func(s *Session) {
		if now != nil {
			s.throttle.now = now
		}
		if sleep != nil {
			s.throttle.sleep = sleep
		}
	}
}

// NewSession creates a Session for baseURL.
func NewSession(baseURL string, opts ...SessionOption) *Session {
	s := &Session{
		baseURL: baseURL,
		http: &http.Client{
			Timeout:       defaultHTTPTimeout,
			CheckRedirect: noRedirect,
		},
		throttle: &throttle{
			delay: DefaultDelay,
			now:   time.Now,
			sleep: interval.Sleep,
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.userAgent == "" {
		s.userAgent = DefaultUserAgent()
	}
	return s
}

// derive returns a Session for another base URL sharing the HTTP client,
// user agent, logger and throttle. Per-request headers are not inherited.
func (s *Session) derive(baseURL string) *Session {
	return &Session{
		baseURL:   baseURL,
		userAgent: s.userAgent,
		http:      s.http,
		throttle:  s.throttle,
		logger:    s.logger,
	}
}

// UserAgent returns the User-Agent sent with every request.
func (s *Session) UserAgent() string {
	return s.userAgent
}

// now reads the throttle clock.
func (s *Session) now() time.Time {
	return s.throttle.now()
}

// ResolveURL returns endpoint unchanged when it carries a scheme, otherwise
// joins it to the base URL with exactly one slash.
func (s *Session) ResolveURL(endpoint string) string {
	if strings.Contains(endpoint, "://") {
		return endpoint
	}
	return strings.TrimRight(s.baseURL, "/") + "/" + strings.TrimLeft(endpoint, "/")
}

// Request performs exactly one HTTP round trip.
//
// GET and DELETE send params in the query string, POST and PUT as a form
// body. A body that is not JSON is returned as {}. Non-2xx statuses are
// returned as *apierr.Error.
func (s *Session) Request(ctx context.Context, method, endpoint string, params url.Values) (json.RawMessage, error) {
	if !allowedMethod(method) {
		return nil, fmt.Errorf("%s %s: %w", method, endpoint, ErrMethodNotAllowed)
	}

	req, err := s.newRequest(ctx, method, endpoint, params)
	if err != nil {
		return nil, err
	}

	resp, body, err := s.roundTrip(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := apierr.NewError(resp, body); err != nil {
		return nil, err
	}
	return body, nil
}

func allowedMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

func (s *Session) newRequest(ctx context.Context, method, endpoint string, params url.Values) (*http.Request, error) {
	u, err := url.Parse(s.ResolveURL(endpoint))
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}

	var body io.Reader
	hasBody := method == http.MethodPost || method == http.MethodPut
	if hasBody {
		body = strings.NewReader(params.Encode())
	} else if len(params) > 0 {
		q := u.Query()
		for k, vs := range params {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if hasBody {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("X-HH-App-Active", "true")
	if s.header != nil {
		s.header(req.Header)
	}
	return req, nil
}

// roundTrip waits out the throttle, dispatches and reads the body, all
// under the throttle lock.
func (s *Session) roundTrip(ctx context.Context, req *http.Request) (_ *http.Response, _ json.RawMessage, err error) {
	t := s.throttle
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.prev.IsZero() {
		if wait := t.delay - t.now().Sub(t.prev); wait > 0 {
			s.logger.Debug("throttle wait", zap.Duration("wait", wait))
			if err := t.sleep(ctx, wait); err != nil {
				return nil, nil, err
			}
		}
	}
	t.prev = t.now()

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Redacted(), err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close response body: %w", closeErr)
		}
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response: %w", err)
	}

	s.logger.Debug("hh request",
		zap.Int("status", resp.StatusCode),
		zap.String("method", req.Method),
		zap.String("url", req.URL.Redacted()),
	)
	return resp, normalizeBody(raw), nil
}

// normalizeBody returns raw when it is a JSON document, {} otherwise.
func normalizeBody(raw []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || !json.Valid(trimmed) {
		return emptyObject
	}
	return json.RawMessage(trimmed)
}

func noRedirect(*http.Request, []*http.Request) error {
	return http.ErrUseLastResponse
}
