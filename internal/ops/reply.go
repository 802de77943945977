package ops

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"go.uber.org/zap"

	"github.com/alnah/go-hhapply/internal/format"
	"github.com/alnah/go-hhapply/internal/hh"
	"github.com/alnah/go-hhapply/internal/interval"
	"github.com/alnah/go-hhapply/internal/journal"
	"github.com/alnah/go-hhapply/internal/llm"
	"github.com/alnah/go-hhapply/internal/notify"
	"github.com/alnah/go-hhapply/internal/template"
)

// Reply defaults.
const (
	DefaultReplyMaxPages = 25
	negotiationsPerPage  = 100
)

// DefaultReplyInterval paces replies.
var DefaultReplyInterval = interval.MustParse("5-10")

// googleDocsRe finds Google Docs, Forms and short links in employer messages.
var googleDocsRe = regexp.MustCompile(`(?i)\b(?:https?://)?(?:docs|forms|sheets|slides|drive)\.google\.com/(?:document|spreadsheets|presentation|forms|file)/(?:d|u)/[a-zA-Z0-9_\-]+(?:/[a-zA-Z0-9_\-]+)?/?(?:[?#]\S*)?|\b(?:https?://)?(?:goo\.gl|forms\.gle)/[a-zA-Z0-9]+\b`)

// ReplyOptions configure ReplyEmployers.
type ReplyOptions struct {
	ResumeID string
	// Message is the bulk reply template. Empty asks for each chat.
	Message  string
	Interval interval.Interval
	MaxPages int

	OnlyInvitations bool
	OnlyInterviews  bool

	// ReplyUnanswered replies where the employer wrote last.
	ReplyUnanswered bool
	// ReplyNotViewed replies where the employer has not opened the response.
	// When neither is set, both apply.
	ReplyNotViewed bool

	// Chat drafts interactive replies on /ai when set.
	Chat       llm.Chat
	ChatSystem string
	DryRun     bool
}

// ReplyResult counts what ReplyEmployers did.
type ReplyResult struct {
	Replied  int
	Banned   int
	Canceled int
	Skipped  int
	Failed   int
}

func (r ReplyResult) summary(err error) notify.Summary {
	return notify.Summary{
		Command: "reply-employers",
		Counts: []notify.Count{
			{Label: "replied", N: r.Replied},
			{Label: "banned", N: r.Banned},
			{Label: "canceled", N: r.Canceled},
			{Label: "failed", N: r.Failed},
		},
		Err: err,
	}
}

// ReplyEmployers answers employer chats of active negotiations, either
// with a bulk template or interactively.
func ReplyEmployers(ctx context.Context, d Deps, opts ReplyOptions) (ReplyResult, error) {
	var res ReplyResult
	log := d.logger()

	if opts.OnlyInvitations && opts.OnlyInterviews {
		return res, ErrConflictingFilters
	}
	if !opts.ReplyUnanswered && !opts.ReplyNotViewed {
		opts.ReplyUnanswered, opts.ReplyNotViewed = true, true
	}
	maxPages := opts.MaxPages
	if maxPages == 0 {
		maxPages = DefaultReplyMaxPages
	}

	resumeID, err := ResolveResumeID(ctx, d.API, opts.ResumeID)
	if err != nil {
		return res, err
	}
	blacklisted, err := d.API.Blacklist.AllEmployerIDs(ctx, hh.PageOptions{})
	if err != nil {
		return res, fmt.Errorf("blacklisted employers: %w", err)
	}
	me, err := d.API.Me.Get(ctx)
	if err != nil {
		return res, fmt.Errorf("get current user: %w", err)
	}
	base := userVars(me)

	negotiations, err := d.API.Negotiations.All(ctx, "active", negotiationsPerPage, hh.PageOptions{MaxPages: maxPages})
	if err != nil {
		return res, fmt.Errorf("list negotiations: %w", err)
	}

	filter := ReplyFilter{
		ResumeID:        resumeID,
		OnlyInvitations: opts.OnlyInvitations,
		OnlyInterviews:  opts.OnlyInterviews,
		Blacklisted:     mapset.NewThreadUnsafeSet(blacklisted...),
	}
	r := &replier{d: d, opts: opts, filter: filter, base: base, in: newPrompter(d.Stdin, d.stdout())}

	for i := range negotiations {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		stop, err := r.handle(ctx, &negotiations[i], &res)
		if err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			log.Error("reply failed", zap.String("negotiation_id", negotiations[i].ID), zap.Error(err))
			res.Failed++
		}
		if stop {
			break
		}
	}

	d.printf("replies done\n")
	d.notify(ctx, res.summary(nil))
	return res, nil
}

type replier struct {
	d      Deps
	opts   ReplyOptions
	filter ReplyFilter
	base   template.Vars
	in     *prompter
}

// handle processes one negotiation. stop is true when input ran out.
func (r *replier) handle(ctx context.Context, n *hh.Negotiation, res *ReplyResult) (stop bool, err error) {
	log := r.d.logger().With(zap.String("negotiation_id", n.ID))

	if ok, reason := ShouldReply(n, r.filter); !ok {
		if reason == SkipBlacklisted {
			r.d.printf("skip blacklisted employer: %s\n", n.Vacancy.Employer.AlternateURL)
		}
		log.Debug("skip negotiation", zap.String("reason", string(reason)))
		res.Skipped++
		return false, nil
	}
	vacancy := n.Vacancy
	employer := vacancy.Employer

	history, err := hh.MessageHistory(ctx, r.d.API.Messages, n.ID)
	if err != nil {
		return false, fmt.Errorf("message history: %w", err)
	}
	due := (history.LastFromEmployer() && r.opts.ReplyUnanswered) ||
		(!n.ViewedByOpponent && r.opts.ReplyNotViewed)
	if !due {
		res.Skipped++
		return false, nil
	}

	vars := withVacancy(r.base, vacancy.Name, employer.Name)
	var cmd command
	if r.opts.Message != "" {
		text, err := template.Render(r.opts.Message, vars, r.d.Rand)
		if err != nil {
			return false, err
		}
		cmd = command{kind: cmdSend, text: text}
	} else {
		r.printHeader(n, history)
		var ok bool
		cmd, ok = r.ask(ctx, history)
		if !ok {
			return true, nil
		}
	}

	if cmd.kind == cmdSkip {
		r.d.printf("skipped\n")
		res.Skipped++
		return false, nil
	}
	if r.opts.DryRun {
		r.d.printf("dry run: %s %s: %s\n", cmd.kind, vacancy.AlternateURL, cmd.text)
		return false, nil
	}

	if err := r.act(ctx, n, cmd, res); err != nil {
		return false, err
	}
	return false, r.d.pause(r.opts.Interval)(ctx)
}

// act performs cmd on n.
func (r *replier) act(ctx context.Context, n *hh.Negotiation, cmd command, res *ReplyResult) error {
	vacancy := n.Vacancy
	employer := vacancy.Employer

	switch cmd.kind {
	case cmdBan:
		if employer.ID == "" {
			r.d.logger().Debug("employer without id, cannot ban", zap.String("negotiation_id", n.ID))
			return nil
		}
		if err := r.d.API.Blacklist.AddEmployer(ctx, employer.ID); err != nil {
			return fmt.Errorf("blacklist employer: %w", err)
		}
		r.filter.Blacklisted.Add(employer.ID)
		res.Banned++
		r.d.record(ctx, journal.Entry{
			Kind:          journal.KindBlacklisted,
			NegotiationID: n.ID,
			VacancyID:     vacancy.ID,
			EmployerID:    employer.ID,
			Title:         employer.Name,
			Detail:        "employer",
		})
		r.d.printf("employer blacklisted: %s\n", employer.AlternateURL)

	case cmdCancel:
		if cmd.text != "" {
			if err := r.d.API.Messages.Send(ctx, n.ID, cmd.text); err != nil {
				return fmt.Errorf("send decline message: %w", err)
			}
		}
		ok, err := r.d.API.Negotiations.Delete(ctx, n.ID, cmd.text != "")
		if err != nil {
			return fmt.Errorf("cancel negotiation: %w", err)
		}
		if !ok {
			return fmt.Errorf("cancel negotiation %s: %w", n.ID, ErrNotConfirmed)
		}
		res.Canceled++
		r.d.record(ctx, journal.Entry{
			Kind:          journal.KindDeleted,
			NegotiationID: n.ID,
			VacancyID:     vacancy.ID,
			EmployerID:    employer.ID,
			Title:         vacancy.Name,
			Detail:        cmd.text,
		})
		r.d.printf("negotiation canceled: %s\n", vacancy.AlternateURL)

	case cmdSend:
		if err := r.d.API.Messages.Send(ctx, n.ID, cmd.text); err != nil {
			return fmt.Errorf("send message: %w", err)
		}
		res.Replied++
		r.d.record(ctx, journal.Entry{
			Kind:          journal.KindReplied,
			NegotiationID: n.ID,
			VacancyID:     vacancy.ID,
			EmployerID:    employer.ID,
			Title:         vacancy.Name,
			Detail:        cmd.text,
		})
		r.d.printf("message sent: %s\n", vacancy.AlternateURL)
	}
	return nil
}

func (r *replier) printHeader(n *hh.Negotiation, h *hh.History) {
	v := n.Vacancy
	r.d.printf("\nemployer: %s\n", v.Employer.Name)
	r.d.printf("vacancy:  %s %s\n", v.Name, v.AlternateURL)
	r.d.printf("created:  %s\n", v.CreatedAt)
	if s := format.Salary(v.SalaryRange); s != "" {
		r.d.printf("salary:   %s\n", s)
	}
	if links := docLinks(h); len(links) > 0 {
		r.d.printf("links:    %s\n", strings.Join(links, " "))
	}
	r.d.printf("\nlast messages:\n")
	for _, line := range format.Preview(h.Lines) {
		r.d.printf("%s\n", line)
	}
	r.d.printf("----------\n")
	r.d.printf("/cancel [message] send message and withdraw the response, /ban blacklist the employer, /ai [hint] draft a reply\n")
}

// ask reads commands until one is final. A /ai draft becomes the default
// for the next prompt. ok is false when input ran out.
func (r *replier) ask(ctx context.Context, h *hh.History) (command, bool) {
	var draft string
	for {
		prompt := "message: "
		if draft != "" {
			prompt = "message (empty sends the draft): "
		}
		line, ok := r.in.readLine(prompt)
		if !ok {
			return command{}, false
		}
		if line == "" && draft != "" {
			return command{kind: cmdSend, text: draft}, true
		}

		cmd := parseCommand(line)
		if cmd.kind != cmdAI {
			return cmd, true
		}
		if r.opts.Chat == nil {
			r.d.printf("%v\n", ErrNoChat)
			continue
		}
		text, err := r.opts.Chat.Send(ctx, r.opts.ChatSystem, draftRequest(h, cmd.text), llm.SendOptions{})
		if err != nil {
			if ctx.Err() != nil {
				return command{}, false
			}
			r.d.logger().Warn("reply draft failed", zap.Error(err))
			r.d.printf("draft failed: %v\n", err)
			continue
		}
		draft = text
		r.d.printf("\ndraft:\n%s\n\n", draft)
	}
}

// draftRequest is the user message asking the chat model for a reply.
func draftRequest(h *hh.History, hint string) string {
	var b strings.Builder
	b.WriteString("Переписка с работодателем (<- работодатель, -> кандидат):\n")
	b.WriteString(h.String())
	if hint != "" {
		b.WriteString("\n\nПожелания к ответу: ")
		b.WriteString(hint)
	}
	return b.String()
}

// docLinks returns the Google Docs and Forms links employers sent.
func docLinks(h *hh.History) []string {
	var links []string
	for _, line := range h.Lines {
		if strings.HasPrefix(line, "<-") {
			links = append(links, googleDocsRe.FindAllString(line, -1)...)
		}
	}
	return links
}

// ---------------------------------------------------------------------------
// Chat commands
// ---------------------------------------------------------------------------

type commandKind int

const (
	cmdSkip commandKind = iota
	cmdSend
	cmdBan
	cmdCancel
	cmdAI
)

func (k commandKind) String() string {
	switch k {
	case cmdSend:
		return "send"
	case cmdBan:
		return "ban"
	case cmdCancel:
		return "cancel"
	case cmdAI:
		return "ai"
	}
	return "skip"
}

type command struct {
	kind commandKind
	text string
}

// parseCommand reads one line of chat input: empty skips, /ban, /cancel
// [message] and /ai [hint] are commands, anything else is sent.
func parseCommand(line string) command {
	line = strings.TrimSpace(line)
	if line == "" {
		return command{kind: cmdSkip}
	}
	name, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	switch name {
	case "/ban":
		return command{kind: cmdBan}
	case "/cancel":
		return command{kind: cmdCancel, text: rest}
	case "/ai":
		return command{kind: cmdAI, text: rest}
	}
	return command{kind: cmdSend, text: line}
}
