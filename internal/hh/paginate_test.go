package hh_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alnah/go-hhapply/internal/hh"
)

// ---------------------------------------------------------------------------
// CollectPages
// ---------------------------------------------------------------------------

// pagedFetcher serves `pages` pages of two items each and records the
// requested page indexes.
func pagedFetcher(pages int, calls *[]int) hh.PageFetcher[string] {
	return func(_ context.Context, page int) (hh.Page[string], error) {
		*calls = append(*calls, page)
		return hh.Page[string]{
			Items: []string{fmt.Sprintf("p%d-a", page), fmt.Sprintf("p%d-b", page)},
			Pages: pages,
		}, nil
	}
}

func TestCollectPages_FetchesEveryPageInOrder(t *testing.T) {
	t.Parallel()
	for _, pages := range []int{0, 1, 2, 5} {
		t.Run(fmt.Sprint(pages), func(t *testing.T) {
			t.Parallel()
			var calls []int
			items, err := hh.CollectPages(context.Background(), pagedFetcher(pages, &calls), hh.PageOptions{})
			require.NoError(t, err)

			want := max(pages, 1)
			require.Len(t, calls, want)
			for i, p := range calls {
				assert.Equal(t, i, p)
			}
			assert.Len(t, items, 2*want)
			assert.Equal(t, "p0-a", items[0])
			assert.Equal(t, fmt.Sprintf("p%d-b", want-1), items[len(items)-1])
		})
	}
}

func TestCollectPages_MaxPages(t *testing.T) {
	t.Parallel()
	var calls []int
	items, err := hh.CollectPages(context.Background(), pagedFetcher(10, &calls), hh.PageOptions{MaxPages: 3})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, calls)
	assert.Len(t, items, 6)
}

func TestCollectPages_PauseBetweenPages(t *testing.T) {
	t.Parallel()
	var calls []int
	pauses := 0
	opts := hh.PageOptions{Pause: func(context.Context) error {
		pauses++
		return nil
	}}
	_, err := hh.CollectPages(context.Background(), pagedFetcher(4, &calls), opts)
	require.NoError(t, err)
	assert.Equal(t, 3, pauses, "no pause before the first page")
}

func TestCollectPages_StopsOnError(t *testing.T) {
	t.Parallel()
	boom := errors.New("boom")
	fetch := func(_ context.Context, page int) (hh.Page[int], error) {
		if page == 2 {
			return hh.Page[int]{}, boom
		}
		return hh.Page[int]{Items: []int{page}, Pages: 5}, nil
	}
	items, err := hh.CollectPages(context.Background(), fetch, hh.PageOptions{})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, []int{0, 1}, items)
}

func TestCollectPages_PauseErrorStops(t *testing.T) {
	t.Parallel()
	var calls []int
	opts := hh.PageOptions{Pause: func(context.Context) error { return context.Canceled }}
	_, err := hh.CollectPages(context.Background(), pagedFetcher(3, &calls), opts)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []int{0}, calls)
}

// ---------------------------------------------------------------------------
// MessageHistory
// ---------------------------------------------------------------------------

func messagesBody(pages int, msgs ...string) string {
	items := ""
	for i := 0; i+1 < len(msgs); i += 2 {
		if items != "" {
			items += ","
		}
		items += fmt.Sprintf(`{"id":"%d","text":%q,"author":{"participant_type":%q}}`, i, msgs[i+1], msgs[i])
	}
	return fmt.Sprintf(`{"found":0,"page":0,"pages":%d,"per_page":3,"items":[%s]}`, pages, items)
}

func newMessagesAPI(t *testing.T) (*hh.API, *recorder) {
	t.Helper()
	rec, srv := newRecorder(t)
	return hh.NewAPI(hh.NewSession(srv.URL, hh.WithDelay(0), hh.WithUserAgent("ua"))), rec
}

func TestMessageHistory_TailPagination(t *testing.T) {
	t.Parallel()
	api, rec := newMessagesAPI(t)
	rec.on("GET /negotiations/42/messages",
		ok(messagesBody(5, "applicant", "hello", "employer", "hi", "applicant", "")),
		ok(messagesBody(5, "applicant", "any news?", "employer", "come tomorrow")),
	)

	h, err := hh.MessageHistory(context.Background(), api.Messages, "42")
	require.NoError(t, err)

	reqs := rec.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "0", reqs[0].Query.Get("page"))
	assert.Equal(t, "3", reqs[0].Query.Get("per_page"))
	assert.Equal(t, "4", reqs[1].Query.Get("page"))

	assert.Equal(t, []string{"-> hello", "<- hi", "-> any news?", "<- come tomorrow"}, h.Lines)
	require.NotNil(t, h.Last)
	assert.Equal(t, "come tomorrow", h.Last.Text)
	assert.True(t, h.LastFromEmployer())
	assert.Equal(t, 5, h.Pages)
}

func TestMessageHistory_EmptyLastPageKeepsFirstPageLast(t *testing.T) {
	t.Parallel()
	api, rec := newMessagesAPI(t)
	rec.on("GET /negotiations/42/messages",
		ok(messagesBody(2, "applicant", "hello", "employer", "send your CV")),
		ok(messagesBody(2)),
	)

	h, err := hh.MessageHistory(context.Background(), api.Messages, "42")
	require.NoError(t, err)
	assert.Len(t, rec.Requests(), 2)
	require.NotNil(t, h.Last)
	assert.Equal(t, "send your CV", h.Last.Text)
	assert.True(t, h.LastFromEmployer())
}

func TestMessageHistory_SinglePage(t *testing.T) {
	t.Parallel()
	api, rec := newMessagesAPI(t)
	rec.on("GET /negotiations/7/messages", ok(messagesBody(1, "employer", "invite", "applicant", "thanks")))

	h, err := hh.MessageHistory(context.Background(), api.Messages, "7")
	require.NoError(t, err)
	assert.Len(t, rec.Requests(), 1)
	assert.Equal(t, "<- invite\n-> thanks", h.String())
	assert.False(t, h.LastFromEmployer())
}

func TestMessageHistory_EmptyThread(t *testing.T) {
	t.Parallel()
	api, rec := newMessagesAPI(t)
	rec.on("GET /negotiations/7/messages", ok(messagesBody(0)))

	h, err := hh.MessageHistory(context.Background(), api.Messages, "7")
	require.NoError(t, err)
	assert.Nil(t, h.Last)
	assert.Empty(t, h.Lines)
	assert.Equal(t, 1, rec.Count(http.MethodGet, "/negotiations/7/messages"))
}
