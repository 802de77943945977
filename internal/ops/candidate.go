package ops

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-hhapply/internal/format"
	"github.com/alnah/go-hhapply/internal/hh"
	"github.com/alnah/go-hhapply/internal/llm"
)

// CandidateOptions configure LoadCandidateInfo.
type CandidateOptions struct {
	// Index picks one resume, 1-based. Zero asks on Stdin.
	Index int
	// All uses every resume without asking.
	All bool
	// Yes saves without confirmation.
	Yes bool

	Chat   llm.Chat
	System string
	// Save stores the accepted blurb.
	Save func(info string) error
}

// LoadCandidateInfo builds the candidate blurb used by every LLM prompt
// from the user's resumes and saves it once confirmed. It returns the
// blurb, saved or not.
func LoadCandidateInfo(ctx context.Context, d Deps, opts CandidateOptions) (string, error) {
	if opts.Chat == nil {
		return "", ErrNoChat
	}
	list, err := d.API.Resumes.Mine(ctx)
	if err != nil {
		return "", fmt.Errorf("list resumes: %w", err)
	}
	if len(list.Items) == 0 {
		return "", ErrNoResume
	}

	in := newPrompter(d.Stdin, d.stdout())
	selected, err := selectResumes(d, in, list.Items, opts)
	if err != nil {
		return "", err
	}

	details := make([]*hh.ResumeDetail, len(selected))
	g, gctx := errgroup.WithContext(ctx)
	for i, r := range selected {
		g.Go(func() error {
			detail, err := d.API.Resumes.Get(gctx, r.ID)
			if err != nil {
				return fmt.Errorf("get resume %s: %w", r.ID, err)
			}
			details[i] = detail
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	parts := make([]string, 0, len(details))
	for _, r := range details {
		parts = append(parts, format.Resume(r))
	}
	info, err := opts.Chat.Send(ctx, opts.System, strings.Join(parts, "\n"), llm.SendOptions{RequireEndMarker: true})
	if err != nil {
		return "", fmt.Errorf("build candidate info: %w", err)
	}
	d.printf("\n%s\n\n", info)

	if !opts.Yes && !in.confirm("save to config? [y/n]: ") {
		d.printf("not saved\n")
		return info, nil
	}
	if opts.Save != nil {
		if err := opts.Save(info); err != nil {
			return info, fmt.Errorf("save candidate info: %w", err)
		}
	}
	d.printf("candidate info saved\n")
	return info, nil
}

// selectResumes applies Index and All, or asks for a number where empty
// input means all.
func selectResumes(d Deps, in *prompter, items []hh.ResumeItem, opts CandidateOptions) ([]hh.ResumeItem, error) {
	if opts.All || len(items) == 1 {
		return items, nil
	}
	index := opts.Index
	if index == 0 {
		for i, r := range items {
			d.printf("%d. %s\n", i+1, r.Title)
		}
		line, ok := in.readLine("resume number (empty for all): ")
		if !ok || line == "" {
			return items, nil
		}
		n, err := strconv.Atoi(line)
		if err != nil {
			return nil, fmt.Errorf("resume number %q: %w", line, ErrBadIndex)
		}
		index = n
	}
	if index < 1 || index > len(items) {
		return nil, fmt.Errorf("resume number %d of %d: %w", index, len(items), ErrBadIndex)
	}
	return items[index-1 : index], nil
}
