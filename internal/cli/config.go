package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// ConfigCmd creates the config command with subcommands.
// The env parameter provides injectable dependencies for testing.
func ConfigCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
		Long: `Inspect the effective configuration.

Configuration is read from ~/.config/headhunter_automation/config.toml
(or $XDG_CONFIG_HOME/headhunter_automation/config.toml, or --config).
Every key can be overridden with an HHAPPLY_ environment variable, e.g.
HHAPPLY_LLM_COVER_LETTERS_OPTIONS_API_KEY.`,
		Example: `  hhapply config show
  hhapply config path`,
	}

	cmd.AddCommand(configShowCmd(env))
	cmd.AddCommand(configPathCmd(env))

	return cmd
}

// configShowCmd creates the "config show" subcommand.
func configShowCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		Long: `Print the effective configuration, defaults and environment overrides
included, as YAML. API keys, the OAuth secret and the Telegram token are
masked.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(env)
		},
	}
}

// configPathCmd creates the "config path" subcommand.
func configPathCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where configuration and data live",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigPath(env)
		},
	}
}

// runConfigShow handles the "config show" command.
func runConfigShow(env *Env) error {
	cfg, err := loadConfig(env)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(env.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(cfg.Masked()); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return enc.Close()
}

// runConfigPath handles the "config path" command.
func runConfigPath(env *Env) error {
	cfg, err := loadConfig(env)
	if err != nil {
		return err
	}
	for _, p := range [][2]string{
		{"config", cfg.Path},
		{"data", cfg.DataPath()},
		{"blocklist", cfg.BlocklistPath()},
		{"journal", cfg.JournalPath()},
		{"log", cfg.LogPath()},
	} {
		_, _ = fmt.Fprintf(env.Stdout, "%-10s %s\n", p[0]+":", p[1])
	}
	return nil
}
