package ops_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alnah/go-hhapply/internal/journal"
	"github.com/alnah/go-hhapply/internal/ops"
)

// Notes:
// - Interactive tests script Stdin; each line answers one prompt.
// - n1 is always due: the employer wrote last.

const employerAsked = `{"found":1,"pages":1,"items":[
	{"id":"m1","text":"Откликнулся на вакансию","author":{"participant_type":"applicant"}},
	{"id":"m2","text":"Здравствуйте! Заполните анкету https://docs.google.com/forms/d/abc123/viewform","author":{"participant_type":"employer"}}
]}`

func replyNegotiation(id, employerID string) string {
	return `{"id":"` + id + `","state":{"id":"response"},"viewed_by_opponent":true,
		"resume":{"id":"r1"},
		"vacancy":{"id":"v-` + id + `","name":"Go dev","alternate_url":"https://hh.ru/vacancy/` + id + `","created_at":"2024-05-01T10:00:00+0300",
			"salary_range":{"from":200000,"currency":"RUR"},
			"employer":{"id":"` + employerID + `","name":"Acme","alternate_url":"https://hh.ru/employer/` + employerID + `"}}}`
}

// newReplyFake serves the account, an empty employer blacklist and the
// given negotiations.
func newReplyFake(t *testing.T, negotiations ...string) (*fakeHH, *testEnv, func(stdin string) *testEnv) {
	t.Helper()
	fake, api := newFakeHH(t)
	fake.withAccount()
	fake.on("GET /employers/blacklisted", `{"pages":1,"items":[{"id":"e9","name":"Banned"}]}`)
	items := ""
	for i, n := range negotiations {
		if i > 0 {
			items += ","
		}
		items += n
	}
	fake.on("GET /negotiations", `{"pages":1,"items":[`+items+`]}`)
	return fake, newTestEnv(t, api, ""), func(stdin string) *testEnv { return newTestEnv(t, api, stdin) }
}

func TestReplyEmployers_Bulk(t *testing.T) {
	t.Parallel()

	viewedApplicantLast := `{"id":"n4","state":{"id":"response"},"viewed_by_opponent":true,"resume":{"id":"r1"},
		"vacancy":{"id":"v4","name":"Quiet","employer":{"id":"e4","name":"Quiet"}}}`
	fake, env, _ := newReplyFake(t,
		replyNegotiation("n1", "e1"),
		replyNegotiation("n2", "e9"),
		`{"id":"n3","state":{"id":"discard"},"resume":{"id":"r1"}}`,
		viewedApplicantLast,
	)
	fake.on("GET /negotiations/n1/messages", employerAsked)
	fake.on("GET /negotiations/n4/messages", `{"pages":1,"items":[{"id":"x","text":"Жду ответа","author":{"participant_type":"applicant"}}]}`)
	fake.on("POST /negotiations/n1/messages", `{}`)

	res, err := ops.ReplyEmployers(context.Background(), env.deps, ops.ReplyOptions{
		Message:         "{Добрый день|Здравствуйте}, %(first_name)s на связи по %(vacancy_name)s",
		ReplyUnanswered: true,
	})
	require.NoError(t, err)

	writes := fake.Writes()
	require.Len(t, writes, 1)
	assert.Equal(t, "POST /negotiations/n1/messages", writes[0].String())
	assert.Equal(t, "Добрый день, Иван на связи по Go dev", writes[0].Form.Get("message"))

	assert.Equal(t, 1, res.Replied)
	assert.Equal(t, 3, res.Skipped)
	assert.Zero(t, fake.Count(http.MethodGet, "/negotiations/n2/messages"))
	assert.Contains(t, env.out.String(), "skip blacklisted employer: https://hh.ru/employer/e9")
	assert.Equal(t, []journal.Kind{journal.KindReplied}, env.journal.Kinds())
}

func TestReplyEmployers_NotViewedOnly(t *testing.T) {
	t.Parallel()

	notViewed := `{"id":"n5","state":{"id":"response"},"viewed_by_opponent":false,"resume":{"id":"r1"},
		"vacancy":{"id":"v5","name":"Unseen","employer":{"id":"e5","name":"Unseen"}}}`
	fake, env, _ := newReplyFake(t, replyNegotiation("n1", "e1"), notViewed)
	fake.on("GET /negotiations/n1/messages", employerAsked)
	fake.on("GET /negotiations/n5/messages", `{"pages":1,"items":[{"id":"x","text":"Отклик","author":{"participant_type":"applicant"}}]}`)
	fake.on("POST /negotiations/n5/messages", `{}`)

	res, err := ops.ReplyEmployers(context.Background(), env.deps, ops.ReplyOptions{
		Message:        "Напоминаю о себе",
		ReplyNotViewed: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Replied)
	require.Len(t, fake.Writes(), 1)
	assert.Equal(t, "POST /negotiations/n5/messages", fake.Writes()[0].String())
}

func TestReplyEmployers_InteractiveAIDraft(t *testing.T) {
	t.Parallel()

	fake, _, withStdin := newReplyFake(t, replyNegotiation("n1", "e1"))
	fake.on("GET /negotiations/n1/messages", employerAsked)
	fake.on("POST /negotiations/n1/messages", `{}`)

	env := withStdin("/ai коротко и вежливо\n\n")
	chat := &fakeChat{replies: []string{"Спасибо, анкету заполнил."}}
	res, err := ops.ReplyEmployers(context.Background(), env.deps, ops.ReplyOptions{Chat: chat})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Replied)

	writes := fake.Writes()
	require.Len(t, writes, 1)
	assert.Equal(t, "Спасибо, анкету заполнил.", writes[0].Form.Get("message"))

	require.Len(t, chat.messages, 1)
	assert.Contains(t, chat.messages[0], "<- Здравствуйте! Заполните анкету")
	assert.Contains(t, chat.messages[0], "коротко и вежливо")

	out := env.out.String()
	assert.Contains(t, out, "employer: Acme")
	assert.Contains(t, out, "salary:   от 200000 до - RUR")
	assert.Contains(t, out, "links:    https://docs.google.com/forms/d/abc123/viewform")
	assert.Contains(t, out, "draft:\nСпасибо, анкету заполнил.")
}

func TestReplyEmployers_InteractiveBanSkipsLaterChats(t *testing.T) {
	t.Parallel()

	fake, _, withStdin := newReplyFake(t, replyNegotiation("n1", "e1"), replyNegotiation("n2", "e1"))
	fake.on("GET /negotiations/n1/messages", employerAsked)
	fake.on("PUT /employers/blacklisted/e1", ``)

	env := withStdin("/ban\n")
	res, err := ops.ReplyEmployers(context.Background(), env.deps, ops.ReplyOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Banned)

	writes := fake.Writes()
	require.Len(t, writes, 1)
	assert.Equal(t, "PUT /employers/blacklisted/e1", writes[0].String())
	assert.Zero(t, fake.Count(http.MethodGet, "/negotiations/n2/messages"))
	assert.Equal(t, []journal.Kind{journal.KindBlacklisted}, env.journal.Kinds())
}

func TestReplyEmployers_InteractiveCancel(t *testing.T) {
	t.Parallel()

	fake, _, withStdin := newReplyFake(t, replyNegotiation("n1", "e1"))
	fake.on("GET /negotiations/n1/messages", employerAsked)
	fake.on("POST /negotiations/n1/messages", `{}`)
	fake.on("DELETE /negotiations/active/n1", `{}`)

	env := withStdin("/cancel Спасибо, неактуально\n")
	res, err := ops.ReplyEmployers(context.Background(), env.deps, ops.ReplyOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Canceled)

	writes := fake.Writes()
	require.Len(t, writes, 2)
	assert.Equal(t, "POST /negotiations/n1/messages", writes[0].String())
	assert.Equal(t, "Спасибо, неактуально", writes[0].Form.Get("message"))
	assert.Equal(t, "DELETE /negotiations/active/n1", writes[1].String())
	assert.Equal(t, "true", writes[1].Form.Get("with_decline_message"))
	assert.Equal(t, []journal.Kind{journal.KindDeleted}, env.journal.Kinds())
}

func TestReplyEmployers_CancelWithoutMessage(t *testing.T) {
	t.Parallel()

	fake, _, withStdin := newReplyFake(t, replyNegotiation("n1", "e1"))
	fake.on("GET /negotiations/n1/messages", employerAsked)
	fake.on("DELETE /negotiations/active/n1", `{}`)

	env := withStdin("/cancel\n")
	res, err := ops.ReplyEmployers(context.Background(), env.deps, ops.ReplyOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Canceled)

	writes := fake.Writes()
	require.Len(t, writes, 1)
	assert.Equal(t, "false", writes[0].Form.Get("with_decline_message"))
}

func TestReplyEmployers_CancelNotConfirmed(t *testing.T) {
	t.Parallel()

	fake, _, withStdin := newReplyFake(t, replyNegotiation("n1", "e1"))
	fake.on("GET /negotiations/n1/messages", employerAsked)
	fake.on("DELETE /negotiations/active/n1", `{"errors":[{"value":"not_deleted"}]}`)

	env := withStdin("/cancel\n")
	res, err := ops.ReplyEmployers(context.Background(), env.deps, ops.ReplyOptions{})
	require.NoError(t, err)
	assert.Zero(t, res.Canceled)
	assert.Equal(t, 1, res.Failed)
	assert.Empty(t, env.journal.Kinds())
	assert.NotContains(t, env.out.String(), "negotiation canceled")
}

func TestReplyEmployers_InteractiveSkipAndEOF(t *testing.T) {
	t.Parallel()

	fake, _, withStdin := newReplyFake(t, replyNegotiation("n1", "e1"), replyNegotiation("n2", "e2"), replyNegotiation("n3", "e3"))
	fake.on("GET /negotiations/n1/messages", employerAsked)
	fake.on("GET /negotiations/n2/messages", employerAsked)

	// Skip n1, then input runs out on n2.
	env := withStdin("\n")
	res, err := ops.ReplyEmployers(context.Background(), env.deps, ops.ReplyOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Skipped)
	assert.Empty(t, fake.Writes())
	assert.Zero(t, fake.Count(http.MethodGet, "/negotiations/n3/messages"))
}

func TestReplyEmployers_AIWithoutChat(t *testing.T) {
	t.Parallel()

	fake, _, withStdin := newReplyFake(t, replyNegotiation("n1", "e1"))
	fake.on("GET /negotiations/n1/messages", employerAsked)
	fake.on("POST /negotiations/n1/messages", `{}`)

	env := withStdin("/ai\nСпасибо, заполню\n")
	res, err := ops.ReplyEmployers(context.Background(), env.deps, ops.ReplyOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Replied)
	assert.Contains(t, env.out.String(), ops.ErrNoChat.Error())
	assert.Equal(t, "Спасибо, заполню", fake.Writes()[0].Form.Get("message"))
}

func TestReplyEmployers_DryRun(t *testing.T) {
	t.Parallel()

	fake, env, _ := newReplyFake(t, replyNegotiation("n1", "e1"))
	fake.on("GET /negotiations/n1/messages", employerAsked)

	_, err := ops.ReplyEmployers(context.Background(), env.deps, ops.ReplyOptions{Message: "Привет", DryRun: true})
	require.NoError(t, err)
	assert.Empty(t, fake.Writes())
	assert.Contains(t, env.out.String(), "dry run: send https://hh.ru/vacancy/n1: Привет")
}

func TestReplyEmployers_ConflictingFilters(t *testing.T) {
	t.Parallel()

	_, env, _ := newReplyFake(t)
	_, err := ops.ReplyEmployers(context.Background(), env.deps, ops.ReplyOptions{
		OnlyInvitations: true,
		OnlyInterviews:  true,
	})
	assert.ErrorIs(t, err, ops.ErrConflictingFilters)
}
