package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/alnah/go-hhapply/internal/config"
	"github.com/alnah/go-hhapply/internal/ops"
	"github.com/alnah/go-hhapply/internal/template"
)

// replyFlags are the raw reply-employers flag values.
type replyFlags struct {
	resumeID        string
	interval        string
	message         string
	maxPages        int
	onlyInvitations bool
	onlyInterviews  bool
	unanswered      bool
	notViewed       bool
	dryRun          bool
}

// ReplyEmployersCmd creates the reply-employers command.
// The env parameter provides injectable dependencies for testing.
func ReplyEmployersCmd(env *Env) *cobra.Command {
	var f replyFlags

	cmd := &cobra.Command{
		Use:   "reply-employers",
		Short: "Answer employers in active negotiations",
		Long: `Go through active negotiations and answer the ones that are due: the
employer wrote last (--reply-unanswered) or has not opened the response
(--reply-not-viewed-by-opponent). Without either flag both apply.

With --reply-message every due chat gets that template. An empty value
uses [default_messages.chat_reply] message. Without it each chat is shown
and a line is read:

  (empty)         skip
  /ban            blacklist the employer
  /cancel [msg]   send msg, if any, and withdraw the response
  /ai [hint]      draft a reply with [llm.chat_reply]; empty input sends it
  anything else   send as the reply`,
		Example: `  hhapply reply-employers
  hhapply reply-employers -m "{Здравствуйте|Добрый день}, %(first_name)s на связи"
  hhapply reply-employers --only-invitations --reply-unanswered -i 10-20`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplyEmployers(cmd, env, &f)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.resumeID, "resume-id", "", "Only negotiations of this resume (default: the first one)")
	fl.StringVarP(&f.interval, "reply-interval", "i", ops.DefaultReplyInterval.String(), "Seconds to wait after each action, X or X-Y")
	fl.StringVarP(&f.message, "reply-message", "m", "", "Bulk reply template (empty value: the configured default)")
	fl.IntVarP(&f.maxPages, "max-pages", "p", ops.DefaultReplyMaxPages, "Maximum negotiation pages to walk")
	fl.BoolVar(&f.onlyInvitations, "only-invitations", false, "Only negotiations with an invitation")
	fl.BoolVar(&f.onlyInterviews, "only-interviews", false, "Only negotiations at the interview stage")
	fl.BoolVar(&f.unanswered, "reply-unanswered", false, "Reply where the employer wrote last")
	fl.BoolVar(&f.notViewed, "reply-not-viewed-by-opponent", false, "Reply where the employer has not opened the response")
	fl.BoolVar(&f.dryRun, "dry-run", false, "Print what would be sent without acting")
	cmd.MarkFlagsMutuallyExclusive("only-invitations", "only-interviews")

	return cmd
}

// parseReplyOptions validates flags into ops.ReplyOptions.
func parseReplyOptions(cmd *cobra.Command, f *replyFlags, cfg config.Config) (ops.ReplyOptions, error) {
	if f.onlyInvitations && f.onlyInterviews {
		return ops.ReplyOptions{}, fmt.Errorf("--only-invitations and --only-interviews: %w", ErrConflictingFlags)
	}
	if f.maxPages < 1 {
		return ops.ReplyOptions{}, fmt.Errorf("--max-pages %d: %w", f.maxPages, ErrInvalidValue)
	}
	iv, err := parseInterval("reply-interval", f.interval)
	if err != nil {
		return ops.ReplyOptions{}, err
	}

	message := f.message
	if message == "" && cmd.Flags().Changed("reply-message") {
		message = cfg.DefaultMessages.ChatReply.Message
		if message == "" {
			return ops.ReplyOptions{}, fmt.Errorf("--reply-message is empty and [default_messages.chat_reply] message is not set: %w", ErrInvalidValue)
		}
	}

	return ops.ReplyOptions{
		ResumeID:        f.resumeID,
		Message:         message,
		Interval:        iv,
		MaxPages:        f.maxPages,
		OnlyInvitations: f.onlyInvitations,
		OnlyInterviews:  f.onlyInterviews,
		ReplyUnanswered: f.unanswered,
		ReplyNotViewed:  f.notViewed,
		DryRun:          f.dryRun,
	}, nil
}

// runReplyEmployers executes the reply-employers command.
func runReplyEmployers(cmd *cobra.Command, env *Env, f *replyFlags) error {
	ctx := cmd.Context()
	return withRuntime(ctx, env, true, func(rt *runtime) error {
		opts, err := parseReplyOptions(cmd, f, rt.cfg)
		if err != nil {
			return err
		}
		if opts.Message == "" && rt.cfg.LLM.ChatReply.Enabled() {
			if opts.Chat, opts.ChatSystem, err = rt.chat(ctx, config.SectionChatReply, template.ChatReplyName, true); err != nil {
				// Drafting is optional; /ai reports it is unavailable.
				rt.log.Warn("chat reply drafts disabled", zap.Error(err))
			}
		}

		res, err := ops.ReplyEmployers(ctx, rt.deps(), opts)
		_, _ = fmt.Fprintf(env.Stderr, "replied %d, banned %d, canceled %d, skipped %d, failed %d\n",
			res.Replied, res.Banned, res.Canceled, res.Skipped, res.Failed)
		return err
	})
}
