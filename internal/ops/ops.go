// Package ops implements the hhapply operations on top of the hh API:
// applying to recommended vacancies, replying to employers, pruning
// negotiations, and the smaller account chores.
//
// Every operation takes its collaborators through Deps and its knobs
// through an options struct built by the CLI. Per-item API failures are
// logged and the walk goes on; ErrLimitExceeded stops applying.
package ops

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-hhapply/internal/hh"
	"github.com/alnah/go-hhapply/internal/interval"
	"github.com/alnah/go-hhapply/internal/journal"
	"github.com/alnah/go-hhapply/internal/notify"
	"github.com/alnah/go-hhapply/internal/template"
)

// Recorder journals performed actions. *journal.Journal satisfies it.
type Recorder interface {
	Record(ctx context.Context, e journal.Entry) error
}

// Blocklist is the local vacancy blocklist. *store.Blocklist satisfies it.
type Blocklist interface {
	Contains(id int) bool
	Add(ids ...int) (int, error)
}

// Deps are the collaborators shared by every operation.
type Deps struct {
	API       *hh.API
	Blocklist Blocklist
	Journal   Recorder
	Notifier  notify.Notifier
	Logger    *zap.Logger

	// Stdout receives the per-item progress lines.
	Stdout io.Writer
	// Stdin feeds interactive prompts.
	Stdin io.Reader

	// Rand picks templates and alternatives. Nil uses the global source.
	Rand template.Rand
	// Source draws pause durations. Nil uses the global source.
	Source interval.Float64Source
	Now    func() time.Time
}

func (d Deps) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

func (d Deps) stdout() io.Writer {
	if d.Stdout == nil {
		return io.Discard
	}
	return d.Stdout
}

func (d Deps) now() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}

func (d Deps) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(d.stdout(), format, args...)
}

// record journals e. A journal failure is logged, never fatal.
func (d Deps) record(ctx context.Context, e journal.Entry) {
	if d.Journal == nil {
		return
	}
	if e.At.IsZero() {
		e.At = d.now()
	}
	if err := d.Journal.Record(ctx, e); err != nil {
		d.logger().Warn("journal record failed", zap.String("kind", string(e.Kind)), zap.Error(err))
	}
}

// notify sends the run summary when a notifier is set.
func (d Deps) notify(ctx context.Context, s notify.Summary) {
	if d.Notifier == nil {
		return
	}
	if err := d.Notifier.Notify(ctx, s); err != nil {
		d.logger().Warn("notification failed", zap.Error(err))
	}
}

func (d Deps) pause(iv interval.Interval) func(ctx context.Context) error {
	return iv.Pause(d.Source)
}

// ResolveResumeID returns id, or the first of the user's resumes when id
// is empty.
func ResolveResumeID(ctx context.Context, api *hh.API, id string) (string, error) {
	if id != "" {
		return id, nil
	}
	list, err := api.Resumes.Mine(ctx)
	if err != nil {
		return "", fmt.Errorf("list resumes: %w", err)
	}
	if len(list.Items) == 0 {
		return "", ErrNoResume
	}
	return list.Items[0].ID, nil
}

// userVars are the placeholders every message template may use.
func userVars(me *hh.Me) template.Vars {
	return template.Vars{
		"first_name":  me.FirstName,
		"last_name":   me.LastName,
		"middle_name": me.MiddleName,
		"email":       me.Email,
		"phone":       me.Phone,
	}
}

// withVacancy adds the vacancy placeholders to a copy of base.
func withVacancy(base template.Vars, vacancyName, employerName string) template.Vars {
	vars := make(template.Vars, len(base)+2)
	for k, v := range base {
		vars[k] = v
	}
	vars["vacancy_name"] = vacancyName
	vars["employer_name"] = employerName
	return vars
}

// SystemPrompt is custom, or the built-in prompt for name, followed by the
// candidate blurb when there is one.
func SystemPrompt(custom string, name template.Name, candidate string) string {
	prompt := custom
	if prompt == "" {
		prompt = name.Prompt()
	}
	if candidate != "" {
		prompt += "\n" + candidate
	}
	return prompt
}

// vacancyNumber parses a vacancy id for the numeric blocklist.
func vacancyNumber(id string) (int, bool) {
	n, err := strconv.Atoi(id)
	return n, err == nil
}
