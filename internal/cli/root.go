package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/alnah/go-hhapply/internal/hh"
)

// GlobalFlags are the persistent flags every command shares.
type GlobalFlags struct {
	ConfigFile string
	DataDir    string
	ProxyURL   string
	Verbose    int
	Delay      time.Duration
}

// BindGlobalFlags registers the persistent flags on root and stores their
// values in env.Flags.
func BindGlobalFlags(root *cobra.Command, env *Env) {
	f := root.PersistentFlags()
	f.StringVar(&env.Flags.ConfigFile, "config", "", "Config file (default: <config dir>/config.toml)")
	f.StringVar(&env.Flags.DataDir, "data-dir", "", "Directory for data.json, the blocklist, the journal and the log")
	f.StringVar(&env.Flags.ProxyURL, "proxy-url", "", "Proxy for hh and LLM requests (default: [proxy] proxy_url, HTTPS_PROXY, HTTP_PROXY)")
	f.CountVarP(&env.Flags.Verbose, "verbose", "v", "Increase log verbosity (-v info, -vv debug)")
	f.DurationVar(&env.Flags.Delay, "delay", hh.DefaultDelay, "Minimum spacing between hh requests")
}

// Commands returns every top-level command.
func Commands(env *Env) []*cobra.Command {
	return []*cobra.Command{
		ApplySimilarCmd(env),
		ReplyEmployersCmd(env),
		ClearNegotiationsCmd(env),
		UpdateResumesCmd(env),
		ListResumesCmd(env),
		WhoamiCmd(env),
		RefreshTokenCmd(env),
		AuthorizeCmd(env),
		LoadCandidateInfoCmd(env),
		BlocklistCmd(env),
		HistoryCmd(env),
		ConfigCmd(env),
	}
}

// NewRootCmd builds the hhapply command tree.
func NewRootCmd(env *Env, version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "hhapply",
		Short: "Automate job applications on hh.ru",
		Long: `Apply to recommended vacancies, answer employers, clean up stale
responses and keep resumes on top of search results on hh.ru.

Run "hhapply authorize" once to obtain a token.`,
		Version: version,
		// Silence Cobra's default error/usage printing; we handle it ourselves.
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.SetOut(env.Stdout)
	root.SetErr(env.Stderr)
	root.SetIn(env.Stdin)
	BindGlobalFlags(root, env)
	root.AddCommand(Commands(env)...)
	return root
}
