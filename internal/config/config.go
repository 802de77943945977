// Package config loads the TOML configuration once per run.
//
// Values come from, in increasing precedence: built-in defaults, the
// config file, HHAPPLY_* environment variables. A missing config file is
// not an error. The resulting Config is a plain value passed explicitly to
// whoever needs it.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// AppName names the config directory.
const AppName = "headhunter_automation"

// File names inside the data directory.
const (
	ConfigFileName    = "config.toml"
	DataFileName      = "data.json"
	BlocklistFileName = "blocked_vacancies.json"
	JournalFileName   = "journal.db"
	LogFileName       = "hhapply.log"
)

// Environment variables.
const (
	EnvPrefix       = "HHAPPLY"
	EnvClientID     = "HH_CLIENT_ID"
	EnvClientSecret = "HH_CLIENT_SECRET"
)

// Default LLM sampling options.
const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 1000
	DefaultTopP        = 0.9
)

// DefaultRedirectURI is where hh sends the browser after authorization.
const DefaultRedirectURI = "hhandroid://oauthresponse"

// LLM section names.
const (
	SectionCoverLetters    = "cover_letters"
	SectionVerifyRelevance = "verify_relevance"
	SectionChatReply       = "chat_reply"
	SectionResumeBuilder   = "resume_builder"
)

var sections = []string{SectionCoverLetters, SectionVerifyRelevance, SectionChatReply, SectionResumeBuilder}

// ErrInvalid indicates a configuration that cannot be used.
var ErrInvalid = errors.New("invalid configuration")

// LLMOptions select and tune a model.
type LLMOptions struct {
	Provider    string  `mapstructure:"provider" yaml:"provider"`
	ModelName   string  `mapstructure:"model_name" yaml:"model_name"`
	APIKey      string  `mapstructure:"api_key" yaml:"api_key"`
	BaseURL     string  `mapstructure:"base_url" yaml:"base_url"`
	Temperature float64 `mapstructure:"temperature" yaml:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens" yaml:"max_tokens"`
	TopP        float64 `mapstructure:"top_p" yaml:"top_p"`
}

// LLMSection configures one LLM use.
type LLMSection struct {
	Options LLMOptions `mapstructure:"options" yaml:"options"`
	Prompts struct {
		System string `mapstructure:"system" yaml:"system"`
	} `mapstructure:"prompts" yaml:"prompts"`
	Messages struct {
		FooterMsg string `mapstructure:"footer_msg" yaml:"footer_msg"`
	} `mapstructure:"messages" yaml:"messages"`
}

// Enabled reports whether a provider is configured.
func (s LLMSection) Enabled() bool {
	return s.Options.Provider != ""
}

// Config is the effective configuration.
type Config struct {
	LLM struct {
		CoverLetters    LLMSection `mapstructure:"cover_letters" yaml:"cover_letters"`
		VerifyRelevance LLMSection `mapstructure:"verify_relevance" yaml:"verify_relevance"`
		ChatReply       LLMSection `mapstructure:"chat_reply" yaml:"chat_reply"`
		ResumeBuilder   LLMSection `mapstructure:"resume_builder" yaml:"resume_builder"`
	} `mapstructure:"llm" yaml:"llm"`

	Candidate struct {
		Info string `mapstructure:"info" yaml:"info"`
	} `mapstructure:"candidate" yaml:"candidate"`

	DefaultMessages struct {
		ChatReply struct {
			Message string `mapstructure:"message" yaml:"message"`
		} `mapstructure:"chat_reply" yaml:"chat_reply"`
		CoverLetter struct {
			Messages string `mapstructure:"messages" yaml:"messages"`
		} `mapstructure:"cover_letter" yaml:"cover_letter"`
	} `mapstructure:"default_messages" yaml:"default_messages"`

	Proxy struct {
		ProxyURL string `mapstructure:"proxy_url" yaml:"proxy_url"`
	} `mapstructure:"proxy" yaml:"proxy"`

	OAuth struct {
		ClientID     string `mapstructure:"client_id" yaml:"client_id"`
		ClientSecret string `mapstructure:"client_secret" yaml:"client_secret"`
		RedirectURI  string `mapstructure:"redirect_uri" yaml:"redirect_uri"`
		Scope        string `mapstructure:"scope" yaml:"scope"`
		// State is the CSRF value sent to the authorize page. Empty means a
		// fresh random value per run.
		State string `mapstructure:"state" yaml:"state"`
	} `mapstructure:"oauth" yaml:"oauth"`

	Telegram struct {
		Token  string `mapstructure:"token" yaml:"token"`
		ChatID int64  `mapstructure:"chat_id" yaml:"chat_id"`
	} `mapstructure:"telegram" yaml:"telegram"`

	Log struct {
		File   bool   `mapstructure:"file" yaml:"file"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	// Path is the config file that was (or would have been) read.
	Path string `mapstructure:"-" yaml:"-"`
	// DataDir holds data.json, the blocklist, the journal and the log.
	DataDir string `mapstructure:"-" yaml:"-"`
}

// LoadOptions override where configuration and data live.
type LoadOptions struct {
	// File is the config file; empty means Dir()/config.toml.
	File string
	// DataDir is the data directory; empty means Dir().
	DataDir string
}

// Dir returns the configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config/headhunter_automation.
func Dir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", AppName), nil
}

// Load reads the configuration. A missing config file yields defaults.
func Load(opts LoadOptions) (Config, error) {
	var cfg Config

	dir, err := Dir()
	if err != nil {
		return cfg, err
	}
	path := ExpandPath(opts.File)
	if path == "" {
		path = filepath.Join(dir, ConfigFileName)
	}
	dataDir := ExpandPath(opts.DataDir)
	if dataDir == "" {
		dataDir = dir
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("oauth.client_id", EnvPrefix+"_OAUTH_CLIENT_ID", EnvClientID)
	_ = v.BindEnv("oauth.client_secret", EnvPrefix+"_OAUTH_CLIENT_SECRET", EnvClientSecret)

	if err := v.ReadInConfig(); err != nil && !isNotFound(err) {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.Path = path
	cfg.DataDir = dataDir
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper) {
	for _, s := range sections {
		prefix := "llm." + s + "."
		v.SetDefault(prefix+"options.provider", "")
		v.SetDefault(prefix+"options.model_name", "")
		v.SetDefault(prefix+"options.api_key", "")
		v.SetDefault(prefix+"options.base_url", "")
		v.SetDefault(prefix+"options.temperature", DefaultTemperature)
		v.SetDefault(prefix+"options.max_tokens", DefaultMaxTokens)
		v.SetDefault(prefix+"options.top_p", DefaultTopP)
		v.SetDefault(prefix+"prompts.system", "")
	}
	v.SetDefault("llm.cover_letters.messages.footer_msg", "")
	v.SetDefault("candidate.info", "")
	v.SetDefault("default_messages.chat_reply.message", "")
	v.SetDefault("default_messages.cover_letter.messages", "")
	v.SetDefault("proxy.proxy_url", "")
	v.SetDefault("oauth.client_id", "")
	v.SetDefault("oauth.client_secret", "")
	v.SetDefault("oauth.redirect_uri", DefaultRedirectURI)
	v.SetDefault("oauth.scope", "")
	v.SetDefault("oauth.state", "")
	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.chat_id", 0)
	v.SetDefault("log.file", false)
	v.SetDefault("log.format", "json")
}

func isNotFound(err error) bool {
	var nf viper.ConfigFileNotFoundError
	return errors.As(err, &nf) || errors.Is(err, fs.ErrNotExist)
}

// Section returns the LLM section by name, and false for unknown names.
func (c Config) Section(name string) (LLMSection, bool) {
	switch name {
	case SectionCoverLetters:
		return c.LLM.CoverLetters, true
	case SectionVerifyRelevance:
		return c.LLM.VerifyRelevance, true
	case SectionChatReply:
		return c.LLM.ChatReply, true
	case SectionResumeBuilder:
		return c.LLM.ResumeBuilder, true
	}
	return LLMSection{}, false
}

// ProxyURL resolves the proxy: the flag, then [proxy] proxy_url, then
// HTTPS_PROXY, then HTTP_PROXY.
func (c Config) ProxyURL(flag string) string {
	for _, p := range []string{flag, c.Proxy.ProxyURL, os.Getenv("HTTPS_PROXY"), os.Getenv("HTTP_PROXY")} {
		if p = strings.TrimSpace(p); p != "" {
			return p
		}
	}
	return ""
}

// DataPath returns the token and user agent file.
func (c Config) DataPath() string { return filepath.Join(c.DataDir, DataFileName) }

// BlocklistPath returns the vacancy blocklist file.
func (c Config) BlocklistPath() string { return filepath.Join(c.DataDir, BlocklistFileName) }

// JournalPath returns the activity journal database.
func (c Config) JournalPath() string { return filepath.Join(c.DataDir, JournalFileName) }

// LogPath returns the rotating log file.
func (c Config) LogPath() string { return filepath.Join(c.DataDir, LogFileName) }

// CheckOAuth reports ErrInvalid when the OAuth application is not set.
func (c Config) CheckOAuth() error {
	if c.OAuth.ClientID == "" || c.OAuth.ClientSecret == "" {
		return fmt.Errorf("oauth client_id/client_secret not set (config [oauth] or %s/%s): %w",
			EnvClientID, EnvClientSecret, ErrInvalid)
	}
	return nil
}

const mask = "***"

// Masked returns a copy with secrets replaced, for display.
func (c Config) Masked() Config {
	m := c
	for _, s := range []*LLMSection{&m.LLM.CoverLetters, &m.LLM.VerifyRelevance, &m.LLM.ChatReply, &m.LLM.ResumeBuilder} {
		if s.Options.APIKey != "" {
			s.Options.APIKey = mask
		}
	}
	if m.OAuth.ClientSecret != "" {
		m.OAuth.ClientSecret = mask
	}
	if m.Telegram.Token != "" {
		m.Telegram.Token = mask
	}
	return m
}

// SetCandidateInfo writes candidate.info into the config file at path,
// keeping the other keys the file already has. The file and its directory
// are created when missing.
func SetCandidateInfo(path, info string) error {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil && !isNotFound(err) {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	v.Set("candidate.info", info)

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil { // #nosec G301 -- user config dir
		return fmt.Errorf("cannot create config directory: %w", err)
	}
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// ExpandPath expands ~ to the user's home directory.
func ExpandPath(p string) string {
	if strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		return filepath.Join(home, p[2:])
	}
	return p
}
