package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/alnah/go-hhapply/internal/format"
	"github.com/alnah/go-hhapply/internal/journal"
)

// defaultHistoryLimit is how many entries history prints by default.
const defaultHistoryLimit = 50

// historyTitleWidth truncates titles in the history table.
const historyTitleWidth = 50

// HistoryCmd creates the history command.
// The env parameter provides injectable dependencies for testing.
func HistoryCmd(env *Env) *cobra.Command {
	var (
		limit   int
		kind    string
		summary bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show what past runs did",
		Long: `Show the activity journal, newest first: applications, replies,
deleted negotiations, blacklisted employers and blocked vacancies.

Kinds: applied, replied, deleted, blacklisted, blocked.`,
		Example: `  hhapply history
  hhapply history --kind applied --limit 10
  hhapply history --summary`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q := journal.Query{Limit: limit}
			if kind != "" {
				k, err := journal.ParseKind(kind)
				if err != nil {
					return err
				}
				q.Kind = k
			}
			return runHistory(cmd, env, q, summary)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", defaultHistoryLimit, "Maximum entries to print (0 for all)")
	cmd.Flags().StringVar(&kind, "kind", "", "Only entries of this kind")
	cmd.Flags().BoolVar(&summary, "summary", false, "Print counts per kind instead of entries")

	return cmd
}

// runHistory executes the history command.
func runHistory(cmd *cobra.Command, env *Env, q journal.Query, summary bool) error {
	ctx := cmd.Context()
	return withRuntime(ctx, env, false, func(rt *runtime) error {
		tw := tabwriter.NewWriter(env.Stdout, 0, 0, 2, ' ', 0)

		if summary {
			counts, err := rt.journal.Counts(ctx)
			if err != nil {
				return err
			}
			for _, k := range journal.Kinds() {
				_, _ = fmt.Fprintf(tw, "%s\t%d\n", k, counts[k])
			}
			return tw.Flush()
		}

		entries, err := rt.journal.List(ctx, q)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(tw, "Time\tKind\tVacancy\tTitle\tDetail")
		for _, e := range entries {
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
				e.At.Local().Format(time.DateTime), e.Kind, e.VacancyID,
				format.Truncate(e.Title, historyTitleWidth), e.Detail)
		}
		return tw.Flush()
	})
}
