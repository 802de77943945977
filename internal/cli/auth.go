package cli

import (
	"github.com/spf13/cobra"

	"github.com/alnah/go-hhapply/internal/ops"
)

// RefreshTokenCmd creates the refresh-token command.
func RefreshTokenCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh-token",
		Short: "Renew the access token",
		Long: `Exchange the stored refresh token for a new access token and save it.
Other commands refresh on their own when hh rejects an expired token.`,
		Example: `  hhapply refresh-token`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withRuntime(ctx, env, true, func(rt *runtime) error {
				if err := rt.cfg.CheckOAuth(); err != nil {
					return err
				}
				return ops.RefreshToken(ctx, rt.deps(), rt.client)
			})
		},
	}
}

// AuthorizeCmd creates the authorize command.
func AuthorizeCmd(env *Env) *cobra.Command {
	var code string

	cmd := &cobra.Command{
		Use:   "authorize",
		Short: "Obtain a token for your hh account",
		Long: `Print the hh authorization URL, read the code (or the whole redirect URL)
and exchange it for a token, which is saved to data.json.

The OAuth application comes from [oauth] client_id and client_secret, or
HH_CLIENT_ID and HH_CLIENT_SECRET.`,
		Example: `  hhapply authorize
  hhapply authorize --code ABC123`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withRuntime(ctx, env, false, func(rt *runtime) error {
				if err := rt.cfg.CheckOAuth(); err != nil {
					return err
				}
				return ops.Authorize(ctx, rt.deps(), rt.client.OAuth(), rt.client, code)
			})
		},
	}

	cmd.Flags().StringVar(&code, "code", "", "Authorization code or redirect URL (default: read from stdin)")

	return cmd
}
