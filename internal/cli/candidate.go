package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alnah/go-hhapply/internal/config"
	"github.com/alnah/go-hhapply/internal/ops"
	"github.com/alnah/go-hhapply/internal/template"
)

// LoadCandidateInfoCmd creates the load-candidate-info command.
func LoadCandidateInfoCmd(env *Env) *cobra.Command {
	var opts ops.CandidateOptions

	cmd := &cobra.Command{
		Use:   "load-candidate-info",
		Short: "Summarize your resumes for the LLM prompts",
		Long: `Fetch one or all of your resumes, have [llm.resume_builder] summarize
them, and save the summary as [candidate] info. Every other LLM prompt
includes it.`,
		Example: `  hhapply load-candidate-info
  hhapply load-candidate-info --index 2
  hhapply load-candidate-info --all --yes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Index < 0 {
				return fmt.Errorf("--index %d: %w", opts.Index, ErrInvalidValue)
			}
			if opts.All && opts.Index > 0 {
				return fmt.Errorf("--all and --index: %w", ErrConflictingFlags)
			}
			return runLoadCandidateInfo(cmd, env, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Index, "index", 0, "Resume number as listed, 1-based (default: ask)")
	cmd.Flags().BoolVar(&opts.All, "all", false, "Use every resume")
	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "Save without asking")

	return cmd
}

// runLoadCandidateInfo executes the load-candidate-info command.
func runLoadCandidateInfo(cmd *cobra.Command, env *Env, opts ops.CandidateOptions) error {
	ctx := cmd.Context()
	return withRuntime(ctx, env, true, func(rt *runtime) error {
		var err error
		if opts.Chat, opts.System, err = rt.chat(ctx, config.SectionResumeBuilder, template.ResumeBuilderName, false); err != nil {
			return err
		}
		opts.Save = func(info string) error {
			return config.SetCandidateInfo(rt.cfg.Path, info)
		}
		_, err = ops.LoadCandidateInfo(ctx, rt.deps(), opts)
		return err
	})
}
