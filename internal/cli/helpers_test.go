package cli

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

	"github.com/alnah/go-hhapply/internal/config"
	"github.com/alnah/go-hhapply/internal/hh"
	"github.com/alnah/go-hhapply/internal/llm"
	"github.com/alnah/go-hhapply/internal/notify"
	"github.com/alnah/go-hhapply/internal/store"
)

// ---------------------------------------------------------------------------
// syncBuffer - thread-safe bytes.Buffer for command output
// ---------------------------------------------------------------------------

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (n int, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// ---------------------------------------------------------------------------
// Fake hh server
// ---------------------------------------------------------------------------

type request struct {
	Method string
	Path   string
	Form   url.Values
	Auth   string
}

// hhServer answers per "METHOD /path" route, records requests and serves
// both the API and the OAuth token endpoint (under /oauth).
type hhServer struct {
	mu       sync.Mutex
	routes   map[string]func(r *http.Request) (int, string)
	requests []request
	srv      *httptest.Server
}

func newHHServer(t *testing.T) *hhServer {
	t.Helper()
	s := &hhServer{routes: make(map[string]func(*http.Request) (int, string))}
	s.srv = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.srv.Close)
	return s
}

func (s *hhServer) on(route, body string) {
	s.handle(route, func(*http.Request) (int, string) { return http.StatusOK, body })
}

func (s *hhServer) handle(route string, fn func(r *http.Request) (int, string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes[route] = fn
}

func (s *hhServer) serve(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	route := r.Method + " " + r.URL.Path

	s.mu.Lock()
	s.requests = append(s.requests, request{Method: r.Method, Path: r.URL.Path, Form: r.Form, Auth: r.Header.Get("Authorization")})
	fn := s.routes[route]
	s.mu.Unlock()

	status, body := http.StatusNotFound, `{"errors":[{"type":"not_found"}]}`
	if fn != nil {
		status, body = fn(r)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = fmt.Fprint(w, body)
}

func (s *hhServer) count(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.requests {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

func (s *hhServer) last(method, path string) request {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.requests) - 1; i >= 0; i-- {
		if r := s.requests[i]; r.Method == method && r.Path == path {
			return r
		}
	}
	return request{}
}

func (s *hhServer) withAccount() {
	s.on("GET /resumes/mine", `{"found":1,"items":[{"id":"r1","title":"Go developer","status":{"id":"published","name":"опубликовано"}}]}`)
	s.on("GET /me", `{"id":"u1","first_name":"Иван","last_name":"Петров","email":"ivan@example.com"}`)
}

// ---------------------------------------------------------------------------
// Factories
// ---------------------------------------------------------------------------

// staticConfig returns a fixed configuration.
type staticConfig struct {
	cfg config.Config
	err error
}

func (s staticConfig) Load(config.LoadOptions) (config.Config, error) {
	return s.cfg, s.err
}

// serverClients points every client at the fake server without throttling.
type serverClients struct{ baseURL string }

func (f serverClients) NewClient(cfg hh.ClientConfig, opts ...hh.SessionOption) *hh.Client {
	cfg.BaseURL = f.baseURL
	cfg.OAuthBaseURL = f.baseURL + "/oauth"
	return hh.NewClient(cfg, append(opts, hh.WithDelay(0))...)
}

// stubChat answers every message with reply.
type stubChat struct {
	mu       sync.Mutex
	reply    string
	systems  []string
	messages []string
}

func (c *stubChat) Send(_ context.Context, system, message string, _ llm.SendOptions) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.systems = append(c.systems, system)
	c.messages = append(c.messages, message)
	return c.reply, nil
}

// stubChats hands out one chat and records the options it was built with.
type stubChats struct {
	chat    *stubChat
	options []llm.Options
}

func (f *stubChats) NewChat(_ context.Context, opts llm.Options, _ ...llm.ClientOption) (llm.Chat, error) {
	f.options = append(f.options, opts)
	return f.chat, nil
}

// recordingNotifier keeps summaries.
type recordingNotifier struct {
	mu        sync.Mutex
	summaries []notify.Summary
}

func (n *recordingNotifier) Notify(_ context.Context, s notify.Summary) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.summaries = append(n.summaries, s)
	return nil
}

type notifiers struct{ n notify.Notifier }

func (f notifiers) NewNotifier(string, int64) (notify.Notifier, error) { return f.n, nil }

// ---------------------------------------------------------------------------
// testEnv - an Env wired to a fake server and a temp data dir
// ---------------------------------------------------------------------------

type testEnv struct {
	env    *Env
	cfg    *config.Config
	server *hhServer
	chats  *stubChats
	stdout *syncBuffer
	stderr *syncBuffer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	server := newHHServer(t)

	var cfg config.Config
	cfg.Path = filepath.Join(dir, config.ConfigFileName)
	cfg.DataDir = dir
	cfg.OAuth.ClientID = "client"
	cfg.OAuth.ClientSecret = "secret"
	cfg.OAuth.RedirectURI = config.DefaultRedirectURI
	cfg.Log.Format = "json"

	te := &testEnv{
		cfg:    &cfg,
		server: server,
		chats:  &stubChats{chat: &stubChat{reply: "ok"}},
		stdout: &syncBuffer{},
		stderr: &syncBuffer{},
	}
	te.env = NewEnv(
		WithStdout(te.stdout),
		WithStderr(te.stderr),
		WithStdin(strings.NewReader("")),
		WithGetenv(func(string) string { return "" }),
		WithClientFactory(serverClients{baseURL: server.srv.URL}),
		WithChatFactory(te.chats),
		WithNotifierFactory(notifiers{n: notify.Nop{}}),
	)
	return te
}

// authorize stores a token valid for a day.
func (te *testEnv) authorize(t *testing.T) {
	t.Helper()
	te.saveToken(t, hh.Token{
		AccessToken:     "access",
		RefreshToken:    "refresh",
		AccessExpiresAt: time.Now().Add(24 * time.Hour).Unix(),
	})
}

func (te *testEnv) saveToken(t *testing.T, tok hh.Token) {
	t.Helper()
	require.NoError(t, store.NewDataFile(te.cfg.DataPath()).Save(store.Data{Token: tok, UserAgent: "test-agent"}))
}

func (te *testEnv) loadData(t *testing.T) store.Data {
	t.Helper()
	d, err := store.NewDataFile(te.cfg.DataPath()).Load()
	require.NoError(t, err)
	return d
}

// run executes hhapply with args. The config is read when run starts.
func (te *testEnv) run(t *testing.T, stdin string, args ...string) error {
	t.Helper()
	te.env.ConfigLoader = staticConfig{cfg: *te.cfg}
	te.env.Stdin = strings.NewReader(stdin)
	root := NewRootCmd(te.env, "test")
	root.SetArgs(args)
	return root.ExecuteContext(context.Background())
}
