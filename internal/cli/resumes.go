package cli

import (
	"github.com/spf13/cobra"

	"github.com/alnah/go-hhapply/internal/ops"
)

// UpdateResumesCmd creates the update-resumes command.
func UpdateResumesCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "update-resumes",
		Short: "Raise every resume in search results",
		Long: `Publish every resume again so it rises in employer searches.
hh allows this once every few hours per resume; refused resumes are
logged and skipped.`,
		Example: `  hhapply update-resumes`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withRuntime(ctx, env, true, func(rt *runtime) error {
				_, err := ops.UpdateResumes(ctx, rt.deps())
				return err
			})
		},
	}
}

// ListResumesCmd creates the list-resumes command.
func ListResumesCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:     "list-resumes",
		Short:   "List your resumes",
		Example: `  hhapply list-resumes`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withRuntime(ctx, env, true, func(rt *runtime) error {
				return ops.ListResumes(ctx, rt.deps())
			})
		},
	}
}

// WhoamiCmd creates the whoami command. Contacts are printed with -v.
func WhoamiCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Print the authorized user",
		Example: `  hhapply whoami
  hhapply whoami -v`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withRuntime(ctx, env, true, func(rt *runtime) error {
				return ops.Whoami(ctx, rt.deps(), env.Flags.Verbose > 0)
			})
		},
	}
}
