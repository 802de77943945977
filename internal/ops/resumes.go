package ops

import (
	"context"
	"fmt"
	"text/tabwriter"

	"go.uber.org/zap"

	"github.com/alnah/go-hhapply/internal/format"
	"github.com/alnah/go-hhapply/internal/notify"
)

// UpdateResumes publishes every resume of the user so it rises in search.
// Per-resume failures are logged and counted.
func UpdateResumes(ctx context.Context, d Deps) (updated int, err error) {
	list, err := d.API.Resumes.Mine(ctx)
	if err != nil {
		return 0, fmt.Errorf("list resumes: %w", err)
	}

	failed := 0
	for _, r := range list.Items {
		ok, err := d.API.Resumes.Publish(ctx, r.ID)
		if err != nil {
			if ctx.Err() != nil {
				return updated, ctx.Err()
			}
			d.logger().Warn("publish resume failed", zap.String("resume_id", r.ID), zap.Error(err))
			failed++
			continue
		}
		if !ok {
			d.logger().Warn("publish resume failed", zap.String("resume_id", r.ID), zap.Error(ErrNotConfirmed))
			failed++
			continue
		}
		updated++
		d.printf("updated: %s\n", r.Title)
	}

	d.notify(ctx, notify.Summary{
		Command: "update-resumes",
		Counts:  []notify.Count{{Label: "updated", N: updated}, {Label: "failed", N: failed}},
	})
	return updated, nil
}

// ListResumes prints the user's resumes as an aligned ID/Title/Status table.
func ListResumes(ctx context.Context, d Deps) error {
	list, err := d.API.Resumes.Mine(ctx)
	if err != nil {
		return fmt.Errorf("list resumes: %w", err)
	}
	tw := tabwriter.NewWriter(d.stdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tTitle\tStatus")
	for _, r := range list.Items {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", r.ID, format.Truncate(r.Title, format.DefaultTruncate), r.Status.Name)
	}
	return tw.Flush()
}

// Whoami prints the user's full name, and the contacts when verbose.
func Whoami(ctx context.Context, d Deps, verbose bool) error {
	me, err := d.API.Me.Get(ctx)
	if err != nil {
		return fmt.Errorf("get current user: %w", err)
	}
	d.printf("%s\n", me.FullName())
	if verbose {
		d.printf("id:    %s\n", me.ID)
		d.printf("email: %s\n", me.Email)
		d.printf("phone: %s\n", me.Phone)
	}
	return nil
}
