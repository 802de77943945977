package hh

import (
	"context"
	"strings"
)

// Page is one fetched page: its items and the total page count.
type Page[T any] struct {
	Items []T
	Pages int
}

// PageFetcher fetches the page with the given zero-based index.
type PageFetcher[T any] func(ctx context.Context, page int) (Page[T], error)

// PageOptions bound a walk.
type PageOptions struct {
	// MaxPages caps the number of pages fetched. Zero means no cap.
	MaxPages int
	// Pause, when set, runs before every page after the first.
	Pause func(ctx context.Context) error
}

// CollectPages fetches pages from 0 and returns their items in page order.
// It stops after the last page, after MaxPages pages, or on the first
// error (returning the items collected so far along with it).
func CollectPages[T any](ctx context.Context, fetch PageFetcher[T], opts PageOptions) ([]T, error) {
	var out []T
	for page := 0; ; page++ {
		if opts.MaxPages > 0 && page >= opts.MaxPages {
			return out, nil
		}
		if page > 0 && opts.Pause != nil {
			if err := opts.Pause(ctx); err != nil {
				return out, err
			}
		}
		p, err := fetch(ctx, page)
		if err != nil {
			return out, err
		}
		out = append(out, p.Items...)
		if page+1 >= p.Pages {
			return out, nil
		}
	}
}

// historyPerPage keeps the history walk to the opening and closing messages.
const historyPerPage = 3

// History is the visible part of a negotiation's chat.
type History struct {
	// Lines are "<- text" for employer and "-> text" for applicant messages,
	// oldest first. Empty messages are skipped.
	Lines []string
	// Last is the newest message seen, nil for an empty thread.
	Last *Message
	// Pages is the thread's page count at per_page=3.
	Pages int
}

// LastFromEmployer reports whether the employer wrote the newest message.
func (h *History) LastFromEmployer() bool {
	return h.Last != nil && h.Last.FromEmployer()
}

// String joins the transcript lines.
func (h *History) String() string {
	return strings.Join(h.Lines, "\n")
}

// MessageHistory fetches the first page of a thread and, when there is
// more than one, the last page. Pages in between are never requested.
func MessageHistory(ctx context.Context, svc *MessagesService, nid string) (*History, error) {
	first, err := svc.List(ctx, nid, 0, historyPerPage)
	if err != nil {
		return nil, err
	}
	h := &History{Pages: first.Pages}
	h.add(first.Items)

	if first.Pages > 1 {
		last, err := svc.List(ctx, nid, first.Pages-1, historyPerPage)
		if err != nil {
			return nil, err
		}
		h.add(last.Items)
	}
	return h, nil
}

func (h *History) add(msgs []Message) {
	for i := range msgs {
		m := &msgs[i]
		if m.Text != "" {
			arrow := "->"
			if m.FromEmployer() {
				arrow = "<-"
			}
			h.Lines = append(h.Lines, arrow+" "+m.Text)
		}
	}
	if len(msgs) > 0 {
		h.Last = &msgs[len(msgs)-1]
	}
}
