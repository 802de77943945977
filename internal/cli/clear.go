package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alnah/go-hhapply/internal/ops"
)

// ClearNegotiationsCmd creates the clear-negotiations command.
// The env parameter provides injectable dependencies for testing.
func ClearNegotiationsCmd(env *Env) *cobra.Command {
	var opts ops.ClearOptions

	cmd := &cobra.Command{
		Use:   "clear-negotiations",
		Short: "Delete rejected and stale responses",
		Long: `Delete active negotiations that were rejected, and plain responses that
have not changed for --older-than days. Hidden negotiations are kept.

With --blacklist-discard the employers that rejected are blacklisted too.`,
		Example: `  hhapply clear-negotiations
  hhapply clear-negotiations --older-than 14 --blacklist-discard
  hhapply clear-negotiations --all --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.OlderThan < 0 {
				return fmt.Errorf("--older-than %d: %w", opts.OlderThan, ErrInvalidValue)
			}
			return runClearNegotiations(cmd, env, opts)
		},
	}

	cmd.Flags().IntVar(&opts.OlderThan, "older-than", ops.DefaultOlderThan, "Delete responses not updated for this many days")
	cmd.Flags().BoolVar(&opts.All, "all", false, "Delete every visible active negotiation")
	cmd.Flags().BoolVar(&opts.BlacklistDiscard, "blacklist-discard", false, "Blacklist employers that rejected")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Print what would be deleted")

	return cmd
}

// runClearNegotiations executes the clear-negotiations command.
func runClearNegotiations(cmd *cobra.Command, env *Env, opts ops.ClearOptions) error {
	ctx := cmd.Context()
	return withRuntime(ctx, env, true, func(rt *runtime) error {
		res, err := ops.ClearNegotiations(ctx, rt.deps(), opts)
		_, _ = fmt.Fprintf(env.Stderr, "deleted %d, blacklisted %d, failed %d\n", res.Deleted, res.Blacklisted, res.Failed)
		return err
	})
}
