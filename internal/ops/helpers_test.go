package ops_test

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/alnah/go-hhapply/internal/hh"
	"github.com/alnah/go-hhapply/internal/journal"
	"github.com/alnah/go-hhapply/internal/llm"
	"github.com/alnah/go-hhapply/internal/ops"
	"github.com/alnah/go-hhapply/internal/store"
)

// ---------------------------------------------------------------------------
// Fake hh API
// ---------------------------------------------------------------------------

// call is one request the fake API saw.
type call struct {
	Method string
	Path   string
	Form   url.Values
}

func (c call) String() string { return c.Method + " " + c.Path }

// fakeHH answers per "METHOD /path" route and records every request.
// Unknown routes answer 404.
type fakeHH struct {
	mu     sync.Mutex
	routes map[string]func(r *http.Request) (int, string)
	calls  []call
}

func newFakeHH(t *testing.T) (*fakeHH, *hh.API) {
	t.Helper()
	f := &fakeHH{routes: make(map[string]func(*http.Request) (int, string))}
	srv := httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(srv.Close)
	return f, hh.NewAPI(hh.NewSession(srv.URL, hh.WithDelay(0), hh.WithUserAgent("test-agent")))
}

// on answers route with 200 and body.
func (f *fakeHH) on(route, body string) {
	f.handle(route, func(*http.Request) (int, string) { return http.StatusOK, body })
}

func (f *fakeHH) handle(route string, fn func(r *http.Request) (int, string)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[route] = fn
}

func (f *fakeHH) serve(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	route := r.Method + " " + r.URL.Path

	f.mu.Lock()
	f.calls = append(f.calls, call{Method: r.Method, Path: r.URL.Path, Form: r.Form})
	fn := f.routes[route]
	f.mu.Unlock()

	status, body := http.StatusNotFound, `{"errors":[{"type":"not_found"}]}`
	if fn != nil {
		status, body = fn(r)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = fmt.Fprint(w, body)
}

func (f *fakeHH) Calls() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.calls...)
}

// Writes returns the non-GET calls in order.
func (f *fakeHH) Writes() []call {
	var out []call
	for _, c := range f.Calls() {
		if c.Method != http.MethodGet {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeHH) Count(method, path string) int {
	n := 0
	for _, c := range f.Calls() {
		if c.Method == method && c.Path == path {
			n++
		}
	}
	return n
}

// withAccount routes /resumes/mine and /me for a single resume r1.
func (f *fakeHH) withAccount() {
	f.on("GET /resumes/mine", `{"found":1,"items":[{"id":"r1","title":"Go developer","status":{"id":"published","name":"опубликовано"}}]}`)
	f.on("GET /me", `{"id":"u1","first_name":"Иван","last_name":"Петров","middle_name":"","email":"ivan@example.com","phone":"+70000000000"}`)
}

// ---------------------------------------------------------------------------
// Collaborators
// ---------------------------------------------------------------------------

// memJournal keeps entries in memory.
type memJournal struct {
	mu      sync.Mutex
	entries []journal.Entry
}

func (m *memJournal) Record(_ context.Context, e journal.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return nil
}

func (m *memJournal) Kinds() []journal.Kind {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]journal.Kind, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e.Kind)
	}
	return out
}

// fakeChat answers with its replies in order and records the messages.
type fakeChat struct {
	mu       sync.Mutex
	replies  []string
	err      error
	messages []string
	options  []llm.SendOptions
}

func (c *fakeChat) Send(_ context.Context, _, message string, opts llm.SendOptions) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, message)
	c.options = append(c.options, opts)
	if c.err != nil {
		return "", c.err
	}
	if len(c.replies) == 0 {
		return "", nil
	}
	r := c.replies[0]
	if len(c.replies) > 1 {
		c.replies = c.replies[1:]
	}
	return r, nil
}

// firstRand always picks the first alternative.
type firstRand struct{}

func (firstRand) IntN(int) int { return 0 }

// testEnv bundles Deps with what tests inspect.
type testEnv struct {
	deps    ops.Deps
	out     *bytes.Buffer
	journal *memJournal
	blocked *store.Blocklist
}

func newTestEnv(t *testing.T, api *hh.API, stdin string) *testEnv {
	t.Helper()
	blocked, err := store.OpenBlocklist(filepath.Join(t.TempDir(), "blocked.json"))
	require.NoError(t, err)
	out := &bytes.Buffer{}
	j := &memJournal{}
	return &testEnv{
		deps: ops.Deps{
			API:       api,
			Blocklist: blocked,
			Journal:   j,
			Logger:    zaptest.NewLogger(t),
			Stdout:    out,
			Stdin:     strings.NewReader(stdin),
			Rand:      firstRand{},
			Now:       func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) },
		},
		out:     out,
		journal: j,
		blocked: blocked,
	}
}
