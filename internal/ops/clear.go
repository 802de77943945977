package ops

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/alnah/go-hhapply/internal/hh"
	"github.com/alnah/go-hhapply/internal/journal"
	"github.com/alnah/go-hhapply/internal/notify"
)

// DefaultOlderThan is the age in days after which unanswered responses
// are deleted.
const DefaultOlderThan = 30

// ClearOptions configure ClearNegotiations.
type ClearOptions struct {
	// OlderThan deletes responses not updated for this many days.
	OlderThan int
	// All deletes every visible active negotiation.
	All bool
	// BlacklistDiscard blacklists employers that rejected.
	BlacklistDiscard bool
	DryRun           bool
}

// ClearResult counts what ClearNegotiations did.
type ClearResult struct {
	Deleted     int
	Blacklisted int
	Failed      int
}

// ClearNegotiations deletes rejected and stale active negotiations. A
// visible negotiation is deleted when All is set, when it was discarded,
// or when it is a plain response older than OlderThan days. The decline
// message is sent whenever hh allows it.
func ClearNegotiations(ctx context.Context, d Deps, opts ClearOptions) (ClearResult, error) {
	var res ClearResult
	log := d.logger()

	negotiations, err := d.API.Negotiations.All(ctx, "active", negotiationsPerPage, hh.PageOptions{})
	if err != nil {
		return res, fmt.Errorf("list negotiations: %w", err)
	}
	cutoff := d.now().AddDate(0, 0, -opts.OlderThan)

	for i := range negotiations {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		n := &negotiations[i]
		nlog := log.With(zap.String("negotiation_id", n.ID))
		if n.Hidden {
			continue
		}

		discarded := n.State.ID == hh.StateDiscard
		remove := opts.All || discarded
		if !remove && n.State.ID == hh.StateResponse {
			updated, err := hh.ParseTime(n.UpdatedAt)
			if err != nil {
				nlog.Debug("bad updated_at", zap.String("updated_at", n.UpdatedAt), zap.Error(err))
				continue
			}
			remove = updated.Before(cutoff)
		}
		if !remove {
			continue
		}

		if opts.DryRun {
			if n.Vacancy != nil {
				d.printf("dry run: would delete %s (%s)\n", n.Vacancy.AlternateURL, n.Vacancy.Name)
			}
			continue
		}

		ok, err := d.API.Negotiations.Delete(ctx, n.ID, n.DeclineAllowed)
		if err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			nlog.Error("delete negotiation failed", zap.Error(err))
			res.Failed++
			continue
		}
		if !ok {
			nlog.Warn("delete negotiation failed", zap.Error(ErrNotConfirmed))
			res.Failed++
			continue
		}
		res.Deleted++

		entry := journal.Entry{Kind: journal.KindDeleted, NegotiationID: n.ID, Detail: n.State.ID}
		if n.Vacancy != nil {
			entry.VacancyID = n.Vacancy.ID
			entry.EmployerID = employerID(n.Vacancy.Employer)
			entry.Title = n.Vacancy.Name
			d.printf("deleted: %s (%s)\n", n.Vacancy.AlternateURL, n.Vacancy.Name)
		}
		d.record(ctx, entry)

		if discarded && opts.BlacklistDiscard {
			blacklistEmployer(ctx, d, n, &res)
		}
	}

	d.notify(ctx, notify.Summary{
		Command: "clear-negotiations",
		Counts: []notify.Count{
			{Label: "deleted", N: res.Deleted},
			{Label: "blacklisted", N: res.Blacklisted},
			{Label: "failed", N: res.Failed},
		},
	})
	return res, nil
}

// blacklistEmployer hides the employer that rejected n. Failures are logged.
func blacklistEmployer(ctx context.Context, d Deps, n *hh.Negotiation, res *ClearResult) {
	if n.Vacancy == nil || n.Vacancy.Employer == nil || n.Vacancy.Employer.ID == "" {
		return
	}
	e := n.Vacancy.Employer
	if err := d.API.Blacklist.AddEmployer(ctx, e.ID); err != nil {
		d.logger().Warn("blacklist employer failed", zap.String("employer_id", e.ID), zap.Error(err))
		res.Failed++
		return
	}
	res.Blacklisted++
	d.record(ctx, journal.Entry{
		Kind:          journal.KindBlacklisted,
		NegotiationID: n.ID,
		EmployerID:    e.ID,
		Title:         e.Name,
		Detail:        "employer",
	})
	d.printf("employer blacklisted: %s (%s)\n", e.AlternateURL, e.Name)
}
