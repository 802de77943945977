package hh_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alnah/go-hhapply/internal/hh"
)

// ---------------------------------------------------------------------------
// Success predicates
// ---------------------------------------------------------------------------

func TestNegotiations_CreatePredicate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		body string
		want bool
	}{
		{"empty list", `[]`, true},
		{"empty list with spaces", "[ ]", true},
		{"null", `null`, false},
		{"object", `{"id":"1"}`, false},
		{"not json", `created`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			api, rec := newMessagesAPI(t)
			rec.on("POST /negotiations", ok(tt.body))

			got, err := api.Negotiations.Create(context.Background(), "r1", "v1", "hello")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			form := rec.Requests()[0].Form
			assert.Equal(t, "r1", form.Get("resume_id"))
			assert.Equal(t, "v1", form.Get("vacancy_id"))
			assert.Equal(t, "hello", form.Get("message"))
		})
	}
}

func TestNegotiations_CreateWithoutMessage(t *testing.T) {
	t.Parallel()
	api, rec := newMessagesAPI(t)
	rec.on("POST /negotiations", ok(`[]`))

	_, err := api.Negotiations.Create(context.Background(), "r1", "v1", "")
	require.NoError(t, err)
	_, present := rec.Requests()[0].Form["message"]
	assert.False(t, present)
}

func TestNegotiations_DeletePredicate(t *testing.T) {
	t.Parallel()
	api, rec := newMessagesAPI(t)
	rec.on("DELETE /negotiations/active/9", ok(`{}`))
	rec.on("DELETE /negotiations/active/10", ok(`[]`))

	okDel, err := api.Negotiations.Delete(context.Background(), "9", true)
	require.NoError(t, err)
	assert.True(t, okDel)
	assert.Equal(t, "true", rec.Requests()[0].Query.Get("with_decline_message"))

	okDel, err = api.Negotiations.Delete(context.Background(), "10", false)
	require.NoError(t, err)
	assert.False(t, okDel)
	assert.Equal(t, "false", rec.Requests()[1].Query.Get("with_decline_message"))
}

func TestResumes_PublishPredicate(t *testing.T) {
	t.Parallel()
	api, rec := newMessagesAPI(t)
	rec.on("POST /resumes/abc/publish", ok(`[]`))

	published, err := api.Resumes.Publish(context.Background(), "abc")
	require.NoError(t, err)
	assert.True(t, published)
}

// ---------------------------------------------------------------------------
// Decoding
// ---------------------------------------------------------------------------

func TestStrictDecodeRejectsMissingIdentity(t *testing.T) {
	t.Parallel()
	api, rec := newMessagesAPI(t)
	rec.on("GET /negotiations", ok(`{"pages":1,"items":[{"state":{"id":"response"}}]}`))
	rec.on("GET /me", ok(`{"first_name":"Ivan"}`))

	_, err := api.Negotiations.List(context.Background(), hh.NegotiationsQuery{Status: "active"})
	require.ErrorIs(t, err, hh.ErrDecode)

	_, err = api.Me.Get(context.Background())
	require.ErrorIs(t, err, hh.ErrDecode)
}

func TestNegotiationsList(t *testing.T) {
	t.Parallel()
	api, rec := newMessagesAPI(t)
	rec.on("GET /negotiations", ok(`{
		"found": 1, "page": 0, "pages": 1, "per_page": 100,
		"items": [{
			"id": "n1",
			"state": {"id": "discard", "name": "Отказ"},
			"hidden": false,
			"decline_allowed": true,
			"updated_at": "2024-04-01T10:00:00+0300",
			"vacancy": {"id": "v1", "name": "Go developer", "employer": {"id": "e1", "name": "Acme"}},
			"resume": {"id": "r1"}
		}, {
			"id": "n2",
			"state": {"id": "response"},
			"vacancy": null
		}]
	}`))

	list, err := api.Negotiations.List(context.Background(), hh.NegotiationsQuery{Page: 0, PerPage: 100, Status: "active"})
	require.NoError(t, err)
	require.Len(t, list.Items, 2)

	n := list.Items[0]
	assert.Equal(t, hh.StateDiscard, n.State.ID)
	assert.True(t, n.DeclineAllowed)
	require.NotNil(t, n.Vacancy)
	require.NotNil(t, n.Vacancy.Employer)
	assert.Equal(t, "e1", n.Vacancy.Employer.ID)
	assert.Nil(t, list.Items[1].Vacancy)

	q := rec.Requests()[0].Query
	assert.Equal(t, "active", q.Get("status"))
	assert.Equal(t, "100", q.Get("per_page"))
}

func TestResumesGetIsLenient(t *testing.T) {
	t.Parallel()
	api, rec := newMessagesAPI(t)
	rec.on("GET /resumes/r1", ok(`{"title":"Backend","skill_set":["Go","SQL"],"unknown":{"x":1}}`))

	r, err := api.Resumes.Get(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, "Backend", r.Title)
	assert.Equal(t, []string{"Go", "SQL"}, r.SkillSet)
}

func TestParseTime(t *testing.T) {
	t.Parallel()
	got, err := hh.ParseTime("2024-04-01T10:00:00+0300")
	require.NoError(t, err)
	assert.Equal(t, int64(1711954800), got.Unix())

	_, err = hh.ParseTime("2024-04-01")
	require.Error(t, err)
}

// ---------------------------------------------------------------------------
// Search parameters and walkers
// ---------------------------------------------------------------------------

func TestVacancySearch_Values(t *testing.T) {
	t.Parallel()
	yes, no := true, false
	lat := 55.75
	q := hh.VacancySearch{
		Page:           1,
		PerPage:        100,
		OrderBy:        "relevance",
		Text:           "golang",
		Salary:         250000,
		Area:           []string{"1", "2"},
		EmployerID:     []string{"42"},
		TopLat:         &lat,
		OnlyWithSalary: &yes,
		NoMagic:        &no,
	}
	v := q.Values()

	assert.Equal(t, "1", v.Get("page"))
	assert.Equal(t, "100", v.Get("per_page"))
	assert.Equal(t, "relevance", v.Get("order_by"))
	assert.Equal(t, "golang", v.Get("text"))
	assert.Equal(t, "250000", v.Get("salary"))
	assert.Equal(t, "1,2", v.Get("area"))
	assert.Equal(t, "42", v.Get("employer_id"))
	assert.Equal(t, "55.75", v.Get("top_lat"))
	assert.Equal(t, "true", v.Get("only_with_salary"))
	assert.Equal(t, "false", v.Get("no_magic"))
	for _, k := range []string{"premium", "clusters", "schedule", "period", "metro", "bottom_lat"} {
		_, present := v[k]
		assert.False(t, present, k)
	}
}

func TestResumes_AllSimilar(t *testing.T) {
	t.Parallel()
	api, rec := newMessagesAPI(t)
	rec.on("GET /resumes/r1/similar_vacancies",
		ok(`{"pages":2,"items":[{"id":"1","name":"A"},{"id":"2","name":"B"}]}`),
		ok(`{"pages":2,"items":[{"id":"3","name":"C"}]}`),
	)

	items, err := api.Resumes.AllSimilar(context.Background(), "r1",
		hh.VacancySearch{PerPage: 100, OrderBy: "relevance"}, hh.PageOptions{MaxPages: 20})
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "C", items[2].Name)

	reqs := rec.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "0", reqs[0].Query.Get("page"))
	assert.Equal(t, "1", reqs[1].Query.Get("page"))
	assert.Equal(t, "relevance", reqs[1].Query.Get("order_by"))
}

func TestBlacklist_AllEmployerIDs(t *testing.T) {
	t.Parallel()
	api, rec := newMessagesAPI(t)
	rec.on("GET /employers/blacklisted",
		ok(`{"pages":2,"items":[{"id":"e1"}]}`),
		ok(`{"pages":2,"items":[{"id":"e2"}]}`),
	)
	rec.on("PUT /employers/blacklisted/e3", status(http.StatusNoContent, ``))

	ids, err := api.Blacklist.AllEmployerIDs(context.Background(), hh.PageOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"e1", "e2"}, ids)

	require.NoError(t, api.Blacklist.AddEmployer(context.Background(), "e3"))
	assert.Equal(t, 1, rec.Count(http.MethodPut, "/employers/blacklisted/e3"))
}
