package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// BlocklistCmd creates the blocklist command with subcommands.
// The env parameter provides injectable dependencies for testing.
func BlocklistCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blocklist",
		Short: "Manage the local vacancy blocklist",
		Long: `Manage the vacancies apply-similar never applies to.

The blocklist is stored in <data dir>/blocked_vacancies.json. Vacancies
judged irrelevant are added automatically.`,
		Example: `  hhapply blocklist list
  hhapply blocklist add 93012345 93012346
  hhapply blocklist remove 93012345
  hhapply blocklist clear`,
	}

	cmd.AddCommand(blocklistListCmd(env))
	cmd.AddCommand(blocklistAddCmd(env))
	cmd.AddCommand(blocklistRemoveCmd(env))
	cmd.AddCommand(blocklistClearCmd(env))

	return cmd
}

func blocklistListCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print blocked vacancy ids",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd.Context(), env, false, func(rt *runtime) error {
				for _, id := range rt.blocked.List() {
					_, _ = fmt.Fprintln(env.Stdout, id)
				}
				return nil
			})
		},
	}
}

func blocklistAddCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "add <vacancy-id>...",
		Short: "Block vacancies",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseVacancyIDs(args)
			if err != nil {
				return err
			}
			return withRuntime(cmd.Context(), env, false, func(rt *runtime) error {
				n, err := rt.blocked.Add(ids...)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(env.Stderr, "added %d\n", n)
				return nil
			})
		},
	}
}

func blocklistRemoveCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <vacancy-id>...",
		Short: "Unblock vacancies",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseVacancyIDs(args)
			if err != nil {
				return err
			}
			return withRuntime(cmd.Context(), env, false, func(rt *runtime) error {
				n, err := rt.blocked.Remove(ids...)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(env.Stderr, "removed %d\n", n)
				return nil
			})
		},
	}
}

func blocklistClearCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Unblock every vacancy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd.Context(), env, false, func(rt *runtime) error {
				n := rt.blocked.Len()
				if err := rt.blocked.Clear(); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(env.Stderr, "removed %d\n", n)
				return nil
			})
		},
	}
}

// parseVacancyIDs converts positional arguments to numeric vacancy ids.
func parseVacancyIDs(args []string) ([]int, error) {
	ids := make([]int, 0, len(args))
	for _, a := range args {
		id, err := strconv.Atoi(a)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("vacancy id %q: %w", a, ErrInvalidValue)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
