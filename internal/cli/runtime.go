package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/alnah/go-hhapply/internal/config"
	"github.com/alnah/go-hhapply/internal/hh"
	"github.com/alnah/go-hhapply/internal/journal"
	"github.com/alnah/go-hhapply/internal/llm"
	"github.com/alnah/go-hhapply/internal/logging"
	"github.com/alnah/go-hhapply/internal/notify"
	"github.com/alnah/go-hhapply/internal/ops"
	"github.com/alnah/go-hhapply/internal/store"
	"github.com/alnah/go-hhapply/internal/template"
)

// runtime is what one command run works with. Close it to persist the
// token and release the journal and the log file.
type runtime struct {
	env *Env
	cfg config.Config
	log *zap.Logger

	closeLog func() error
	data     *store.DataFile
	loaded   store.Data
	http     *http.Client
	client   *hh.Client
	api      *hh.API
	blocked  *store.Blocklist
	journal  *journal.Journal
	notifier notify.Notifier
}

// loadConfig reads the configuration selected by the global flags.
func loadConfig(env *Env) (config.Config, error) {
	return env.ConfigLoader.Load(config.LoadOptions{
		File:    env.Flags.ConfigFile,
		DataDir: env.Flags.DataDir,
	})
}

// openRuntime loads configuration and wires the run's collaborators.
func openRuntime(ctx context.Context, env *Env) (_ *runtime, err error) {
	cfg, err := loadConfig(env)
	if err != nil {
		return nil, err
	}

	logFile := ""
	if cfg.Log.File {
		logFile = cfg.LogPath()
	}
	log, closeLog := logging.New(logging.Config{
		Verbosity: env.Flags.Verbose,
		Console:   env.Stderr,
		Color:     env.Getenv("NO_COLOR") == "",
		File:      logFile,
		Format:    cfg.Log.Format,
	})
	rt := &runtime{env: env, cfg: cfg, log: log, closeLog: closeLog}
	defer func() {
		if err != nil {
			_ = rt.release()
		}
	}()

	rt.data = store.NewDataFile(cfg.DataPath())
	if rt.loaded, err = rt.data.EnsureUserAgent(hh.DefaultUserAgent); err != nil {
		return nil, err
	}
	if rt.http, err = hh.NewHTTPClient(cfg.ProxyURL(env.Flags.ProxyURL), 0); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidValue, err)
	}

	rt.client = env.ClientFactory.NewClient(hh.ClientConfig{
		Token: rt.loaded.Token,
		Credentials: hh.OAuthCredentials{
			ClientID:     cfg.OAuth.ClientID,
			ClientSecret: cfg.OAuth.ClientSecret,
			RedirectURI:  cfg.OAuth.RedirectURI,
			Scope:        cfg.OAuth.Scope,
			State:        oauthState(cfg.OAuth.State),
		},
	},
		hh.WithHTTPClient(rt.http),
		hh.WithUserAgent(rt.loaded.UserAgent),
		hh.WithDelay(env.Flags.Delay),
		hh.WithLogger(log),
	)
	rt.api = hh.NewAPI(rt.client)

	if rt.blocked, err = store.OpenBlocklist(cfg.BlocklistPath()); err != nil {
		return nil, err
	}
	if rt.journal, err = journal.Open(ctx, cfg.JournalPath()); err != nil {
		return nil, err
	}
	rt.notifier = rt.newNotifier()

	log.Debug("runtime ready",
		zap.String("config", cfg.Path),
		zap.String("data_dir", cfg.DataDir),
		zap.Bool("authorized", !rt.loaded.Token.IsZero()))
	return rt, nil
}

// newNotifier returns Telegram when configured, else a no-op. A broken
// Telegram setup only warns.
func (rt *runtime) newNotifier() notify.Notifier {
	if rt.cfg.Telegram.Token == "" {
		return notify.Nop{}
	}
	n, err := rt.env.NotifierFactory.NewNotifier(rt.cfg.Telegram.Token, rt.cfg.Telegram.ChatID)
	if err != nil {
		rt.log.Warn("telegram notifications disabled", zap.Error(err))
		return notify.Nop{}
	}
	return n
}

// oauthState returns the configured CSRF state or a random one.
func oauthState(configured string) string {
	if configured != "" {
		return configured
	}
	return uuid.NewString()
}

// requireToken fails with ErrNotAuthorized when no token is stored.
func (rt *runtime) requireToken() error {
	if rt.client.Token().IsZero() {
		return ErrNotAuthorized
	}
	return nil
}

// deps assembles the collaborators the ops package runs with.
func (rt *runtime) deps() ops.Deps {
	return ops.Deps{
		API:       rt.api,
		Blocklist: rt.blocked,
		Journal:   rt.journal,
		Notifier:  rt.notifier,
		Logger:    rt.log,
		Stdout:    rt.env.Stdout,
		Stdin:     rt.env.Stdin,
		Now:       rt.env.Now,
	}
}

// chat builds the LLM chat of a config section with its system prompt.
// The candidate blurb is appended unless withCandidate is false.
func (rt *runtime) chat(ctx context.Context, section string, name template.Name, withCandidate bool) (llm.Chat, string, error) {
	sec, _ := rt.cfg.Section(section)
	if !sec.Enabled() {
		return nil, "", fmt.Errorf("[llm.%s]: %w", section, llm.ErrNotConfigured)
	}
	c, err := rt.env.ChatFactory.NewChat(ctx, llm.Options{
		Provider:    sec.Options.Provider,
		Model:       sec.Options.ModelName,
		APIKey:      sec.Options.APIKey,
		BaseURL:     sec.Options.BaseURL,
		Temperature: sec.Options.Temperature,
		TopP:        sec.Options.TopP,
		MaxTokens:   sec.Options.MaxTokens,
		HTTPClient:  rt.http,
	}, llm.WithLogger(rt.log))
	if err != nil {
		return nil, "", fmt.Errorf("[llm.%s]: %w", section, err)
	}
	candidate := ""
	if withCandidate {
		candidate = rt.cfg.Candidate.Info
	}
	return c, ops.SystemPrompt(sec.Prompts.System, name, candidate), nil
}

// Close persists a changed token and releases resources.
func (rt *runtime) Close() error {
	var errs []error
	if tok := rt.client.Token(); !tok.IsZero() && !tok.Equal(rt.loaded.Token) {
		if err := rt.data.Save(store.Data{Token: tok, UserAgent: rt.loaded.UserAgent}); err != nil {
			errs = append(errs, fmt.Errorf("save token: %w", err))
		} else {
			rt.log.Debug("token saved", zap.String("path", rt.data.Path()))
		}
	}
	errs = append(errs, rt.release())
	return errors.Join(errs...)
}

// release closes the journal and the log.
func (rt *runtime) release() error {
	var errs []error
	if rt.journal != nil {
		errs = append(errs, rt.journal.Close())
	}
	if rt.closeLog != nil {
		errs = append(errs, rt.closeLog())
	}
	return errors.Join(errs...)
}

// withRuntime opens a runtime, runs fn and closes the runtime, keeping
// fn's error first.
func withRuntime(ctx context.Context, env *Env, needToken bool, fn func(rt *runtime) error) (err error) {
	rt, err := openRuntime(ctx, env)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rt.Close(); cerr != nil {
			if err == nil {
				err = cerr
			} else {
				_, _ = fmt.Fprintf(rt.env.Stderr, "warning: %v\n", cerr)
			}
		}
	}()
	if needToken {
		if err := rt.requireToken(); err != nil {
			return err
		}
	}
	return fn(rt)
}
