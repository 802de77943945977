package ops

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/alnah/go-hhapply/internal/apierr"
	"github.com/alnah/go-hhapply/internal/format"
	"github.com/alnah/go-hhapply/internal/hh"
	"github.com/alnah/go-hhapply/internal/interval"
	"github.com/alnah/go-hhapply/internal/journal"
	"github.com/alnah/go-hhapply/internal/llm"
	"github.com/alnah/go-hhapply/internal/notify"
	"github.com/alnah/go-hhapply/internal/template"
)

// Apply defaults.
const (
	DefaultApplyMaxPages = 20
	DefaultApplyPerPage  = 100
)

// Default apply pacing.
var (
	DefaultApplyInterval = interval.MustParse("1-5")
	DefaultPageInterval  = interval.MustParse("1-3")
)

// ApplyOptions configure ApplySimilar.
type ApplyOptions struct {
	// ResumeID applies with this resume; empty uses the first one.
	ResumeID string
	Search   hh.VacancySearch
	MaxPages int

	// Force sends a cover letter even where none is required.
	Force bool
	// Messages are cover letter templates. Empty uses the built-in ones.
	Messages []string

	// CoverLetter writes cover letters when set.
	CoverLetter       llm.Chat
	CoverLetterSystem string
	Footer            string

	// Relevance screens vacancies when set.
	Relevance       llm.Chat
	RelevanceSystem string
	// BlockIrrelevant also hides irrelevant vacancies on hh.
	BlockIrrelevant bool

	ApplyInterval interval.Interval
	PageInterval  interval.Interval
	DryRun        bool
}

// ApplyResult counts what ApplySimilar did.
type ApplyResult struct {
	Found        int
	Applied      int
	Skipped      int
	Irrelevant   int
	Failed       int
	LimitReached bool
}

func (r ApplyResult) summary(err error) notify.Summary {
	return notify.Summary{
		Command: "apply-similar",
		Counts: []notify.Count{
			{Label: "found", N: r.Found},
			{Label: "applied", N: r.Applied},
			{Label: "skipped", N: r.Skipped},
			{Label: "irrelevant", N: r.Irrelevant},
			{Label: "failed", N: r.Failed},
		},
		Err: err,
	}
}

// ApplySimilar applies to the vacancies hh recommends for a resume.
//
// Vacancies that are blocklisted, need a test, are archived or were
// already responded to are skipped. With a relevance checker, rejected
// vacancies are blocklisted. A cover letter is attached when forced or
// required. The walk stops when hh reports the daily limit, and the
// returned error then wraps apierr.ErrLimitExceeded.
func ApplySimilar(ctx context.Context, d Deps, opts ApplyOptions) (ApplyResult, error) {
	var res ApplyResult
	log := d.logger()

	resumeID, err := ResolveResumeID(ctx, d.API, opts.ResumeID)
	if err != nil {
		return res, err
	}
	me, err := d.API.Me.Get(ctx)
	if err != nil {
		return res, fmt.Errorf("get current user: %w", err)
	}
	base := userVars(me)

	search := opts.Search
	if search.PerPage == 0 {
		search.PerPage = DefaultApplyPerPage
	}
	maxPages := opts.MaxPages
	if maxPages == 0 {
		maxPages = DefaultApplyMaxPages
	}
	vacancies, err := d.API.Resumes.AllSimilar(ctx, resumeID, search, hh.PageOptions{
		MaxPages: maxPages,
		Pause:    d.pause(opts.PageInterval),
	})
	if err != nil {
		if len(vacancies) == 0 || ctx.Err() != nil {
			return res, fmt.Errorf("similar vacancies: %w", err)
		}
		log.Warn("similar vacancies walk stopped early", zap.Int("collected", len(vacancies)), zap.Error(err))
	}
	res.Found = len(vacancies)
	log.Info("collected vacancies", zap.String("resume_id", resumeID), zap.Int("count", res.Found))

	for i := range vacancies {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		v := &vacancies[i]
		vlog := log.With(zap.String("vacancy_id", v.ID))

		if reason := skipVacancy(v, d.Blocklist); reason != "" {
			vlog.Debug("skip vacancy", zap.String("reason", reason))
			res.Skipped++
			continue
		}

		if opts.Relevance != nil {
			ok, err := checkRelevance(ctx, opts, v)
			if err != nil {
				vlog.Warn("relevance check failed", zap.Error(err))
				res.Skipped++
				continue
			}
			if !ok {
				blockIrrelevant(ctx, d, opts, v)
				res.Irrelevant++
				continue
			}
		}

		var message string
		if opts.Force || v.ResponseLetterRequired {
			message, err = coverLetter(ctx, d, opts, v, base)
			if err != nil {
				vlog.Warn("cover letter failed", zap.Error(err))
				res.Failed++
				continue
			}
		}

		if opts.DryRun {
			d.printf("dry run: would apply to %s (%s)\n", v.AlternateURL, v.Name)
			continue
		}

		if err := d.pause(opts.ApplyInterval)(ctx); err != nil {
			return res, err
		}

		ok, err := d.API.Negotiations.Create(ctx, resumeID, v.ID, message)
		if err != nil {
			if errors.Is(err, apierr.ErrLimitExceeded) {
				res.LimitReached = true
				d.printf("application limit reached, stopping\n")
				err = fmt.Errorf("apply to %s: %w", v.ID, err)
				d.notify(ctx, res.summary(err))
				return res, err
			}
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			vlog.Error("apply failed", zap.Error(err))
			res.Failed++
			continue
		}
		if !ok {
			vlog.Warn("apply failed", zap.Error(ErrNotConfirmed))
			res.Failed++
			continue
		}

		res.Applied++
		d.record(ctx, journal.Entry{
			Kind:       journal.KindApplied,
			VacancyID:  v.ID,
			EmployerID: employerID(v.Employer),
			Title:      v.Name,
			Detail:     message,
		})
		d.printf("applied: %s (%s)\n", v.AlternateURL, v.Name)
	}

	d.notify(ctx, res.summary(nil))
	return res, nil
}

// skipVacancy returns why v is not applied to, or "".
func skipVacancy(v *hh.VacancyItem, blocked Blocklist) string {
	if n, ok := vacancyNumber(v.ID); ok && blocked != nil && blocked.Contains(n) {
		return "blocklisted"
	}
	switch {
	case v.HasTest:
		return "has test"
	case v.Archived:
		return "archived"
	case len(v.Relations) > 0:
		return "already responded"
	}
	return ""
}

// checkRelevance asks the relevance model about v.
func checkRelevance(ctx context.Context, opts ApplyOptions, v *hh.VacancyItem) (bool, error) {
	answer, err := opts.Relevance.Send(ctx, opts.RelevanceSystem, format.VacancyItem(v), llm.SendOptions{})
	if err != nil {
		return false, err
	}
	return !Irrelevant(answer), nil
}

// Irrelevant reports whether a relevance answer is a rejection: its first
// word is no, нет or false, in any case.
func Irrelevant(answer string) bool {
	words := strings.FieldsFunc(answer, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	if len(words) == 0 {
		return false
	}
	switch strings.ToLower(words[0]) {
	case "no", "нет", "false":
		return true
	}
	return false
}

// blockIrrelevant blocklists v locally and, when asked, on hh.
func blockIrrelevant(ctx context.Context, d Deps, opts ApplyOptions, v *hh.VacancyItem) {
	log := d.logger().With(zap.String("vacancy_id", v.ID))
	d.printf("irrelevant: %s (%s)\n", v.AlternateURL, v.Name)

	if n, ok := vacancyNumber(v.ID); ok && d.Blocklist != nil {
		if _, err := d.Blocklist.Add(n); err != nil {
			log.Warn("blocklist save failed", zap.Error(err))
		}
	}
	d.record(ctx, journal.Entry{
		Kind:       journal.KindBlocked,
		VacancyID:  v.ID,
		EmployerID: employerID(v.Employer),
		Title:      v.Name,
	})

	if !opts.BlockIrrelevant || opts.DryRun {
		return
	}
	if err := d.API.Blacklist.AddVacancy(ctx, v.ID); err != nil {
		log.Warn("vacancy blacklist failed", zap.Error(err))
		return
	}
	d.record(ctx, journal.Entry{
		Kind:      journal.KindBlacklisted,
		VacancyID: v.ID,
		Title:     v.Name,
		Detail:    "vacancy",
	})
}

// coverLetter writes the letter for v with the model when one is set,
// otherwise from a random template.
func coverLetter(ctx context.Context, d Deps, opts ApplyOptions, v *hh.VacancyItem, base template.Vars) (string, error) {
	if opts.CoverLetter != nil {
		full, err := d.API.Vacancies.Get(ctx, v.ID)
		if err != nil {
			return "", fmt.Errorf("get vacancy: %w", err)
		}
		letter, err := opts.CoverLetter.Send(ctx, opts.CoverLetterSystem, format.Vacancy(full), llm.SendOptions{RequireEndMarker: true})
		if err != nil {
			return "", err
		}
		if opts.Footer != "" {
			letter += "\n" + opts.Footer
		}
		return letter, nil
	}

	msgs := opts.Messages
	if len(msgs) == 0 {
		msgs = template.DefaultCoverLetters
	}
	return template.Render(template.Pick(msgs, d.Rand), withVacancy(base, v.Name, v.EmployerName()), d.Rand)
}

func employerID(e *hh.Employer) string {
	if e == nil {
		return ""
	}
	return e.ID
}
