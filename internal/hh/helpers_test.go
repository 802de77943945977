package hh_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// Fake clock
// ---------------------------------------------------------------------------

// fakeClock advances only through Sleep and Advance.
type fakeClock struct {
	mu     sync.Mutex
	t      time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sleeps = append(c.sleeps, d)
	c.t = c.t.Add(d)
	return nil
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func (c *fakeClock) Sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.sleeps...)
}

// ---------------------------------------------------------------------------
// Recording server
// ---------------------------------------------------------------------------

// recordedRequest is what the server saw.
type recordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Form   url.Values
	Header http.Header
	At     time.Time
}

// response is a canned reply.
type response struct {
	Status int
	Body   string
	Header map[string]string
}

// recorder serves canned responses per "METHOD /path" and records every
// request. Unknown routes answer 404.
type recorder struct {
	mu       sync.Mutex
	routes   map[string][]response
	requests []recordedRequest
	clock    *fakeClock
}

func newRecorder(t *testing.T) (*recorder, *httptest.Server) {
	t.Helper()
	rec := &recorder{routes: make(map[string][]response)}
	srv := httptest.NewServer(http.HandlerFunc(rec.serve))
	t.Cleanup(srv.Close)
	return rec, srv
}

// on queues responses for a route. The last one repeats.
func (r *recorder) on(route string, resps ...response) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes[route] = append(r.routes[route], resps...)
}

func (r *recorder) serve(w http.ResponseWriter, req *http.Request) {
	body, _ := io.ReadAll(req.Body)
	form, _ := url.ParseQuery(string(body))

	r.mu.Lock()
	rr := recordedRequest{
		Method: req.Method,
		Path:   req.URL.Path,
		Query:  req.URL.Query(),
		Form:   form,
		Header: req.Header.Clone(),
	}
	if r.clock != nil {
		rr.At = r.clock.Now()
	}
	r.requests = append(r.requests, rr)

	route := req.Method + " " + req.URL.Path
	queue := r.routes[route]
	var resp response
	switch {
	case len(queue) == 0:
		resp = response{Status: http.StatusNotFound, Body: `{"errors":[{"type":"not_found"}]}`}
	case len(queue) == 1:
		resp = queue[0]
	default:
		resp = queue[0]
		r.routes[route] = queue[1:]
	}
	r.mu.Unlock()

	for k, v := range resp.Header {
		w.Header().Set(k, v)
	}
	if resp.Status == 0 {
		resp.Status = http.StatusOK
	}
	w.WriteHeader(resp.Status)
	_, _ = io.WriteString(w, resp.Body)
}

func (r *recorder) Requests() []recordedRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recordedRequest(nil), r.requests...)
}

func (r *recorder) Count(method, path string) int {
	n := 0
	for _, req := range r.Requests() {
		if req.Method == method && req.Path == path {
			n++
		}
	}
	return n
}

func ok(body string) response {
	return response{Status: http.StatusOK, Body: body}
}

func status(code int, body string) response {
	return response{Status: code, Body: body}
}
