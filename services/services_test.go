package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/rpupo63/portfolio-site-backend/cache"
	"github.com/rpupo63/portfolio-site-backend/errs"
	"github.com/rpupo63/portfolio-site-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

type recordingChannel struct {
	name string
	err  error
	sent []Notification
}

func (r *recordingChannel) Name() string { return r.name }

func (r *recordingChannel) Send(_ context.Context, n Notification) error {
	r.sent = append(r.sent, n)
	return r.err
}

func TestNotifierFanOut(t *testing.T) {
	email := &recordingChannel{name: "email"}
	sms := &recordingChannel{name: "sms", err: errors.New("invalid number")}
	n := NewNotifier("https://me.dev/", email, sms)

	msg := &models.ContactMessage{Name: "Ada", Email: "ada@example.com", Subject: "Hire", Message: "<b>Hi</b>"}
	err := n.Notify(context.Background(), n.NewMessageNotification(msg))

	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrNotificationFailure)
	assert.Contains(t, err.Error(), "sms: invalid number")

	require.Len(t, email.sent, 1)
	assert.Equal(t, "New contact message: Hire", email.sent[0].Subject)
	assert.Contains(t, email.sent[0].Text, "https://me.dev/admin/messages")
	assert.Contains(t, email.sent[0].HTML, "&lt;b&gt;Hi&lt;/b&gt;")
	assert.Len(t, sms.sent, 1)
}

func TestNotifierDisabled(t *testing.T) {
	var n *Notifier
	assert.False(t, n.Enabled())
	assert.NoError(t, n.Notify(context.Background(), Notification{}))

	empty := NewNotifier("")
	assert.NoError(t, empty.Notify(context.Background(), Notification{Subject: "x"}))
	note := empty.NewReviewNotification(&models.Review{Name: "Bo", Rating: 4, Content: "Nice"})
	assert.NotContains(t, note.Text, "Moderate:")
	assert.Contains(t, note.Text, "4 star")
}

func TestResendChannel(t *testing.T) {
	var got ResendEmailRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"id":"email_1"}`))
	}))
	defer srv.Close()

	ch, err := NewResendChannel("re_test", "Site <site@me.dev>", []string{"me@me.dev"})
	require.NoError(t, err)
	ch.endpoint = srv.URL

	require.NoError(t, ch.Send(context.Background(), Notification{Subject: "S", Text: "T", HTML: "<p>T</p>"}))
	assert.Equal(t, []string{"me@me.dev"}, got.To)
	assert.Equal(t, "S", got.Subject)
	assert.Equal(t, "<p>T</p>", got.Html)
}

func TestResendChannelError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"from address not verified"}`))
	}))
	defer srv.Close()

	ch, err := NewResendChannel("re_test", "site@me.dev", []string{"me@me.dev"})
	require.NoError(t, err)
	ch.endpoint = srv.URL

	err = ch.Send(context.Background(), Notification{Subject: "S"})
	assert.ErrorContains(t, err, "from address not verified")

	_, err = NewResendChannel("", "a", []string{"b"})
	assert.Error(t, err)
}

type fakeMessages struct {
	params *openapi.CreateMessageParams
}

func (f *fakeMessages) CreateMessage(p *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error) {
	f.params = p
	return &openapi.ApiV2010Message{}, nil
}

func TestTwilioChannelTruncates(t *testing.T) {
	fake := &fakeMessages{}
	ch := &TwilioChannel{messages: fake, from: "+15550000000", to: "+27680000000"}

	require.NoError(t, ch.Send(context.Background(), Notification{Subject: "New message", Text: strings.Repeat("x", 500)}))
	require.NotNil(t, fake.params.Body)
	assert.Len(t, []rune(*fake.params.Body), maxSMSLength)
	assert.Equal(t, "+27680000000", *fake.params.To)

	_, err := NewTwilioChannel("", "", "", "")
	assert.Error(t, err)
}

func TestComputeGitHubStats(t *testing.T) {
	stats := ComputeGitHubStats("me", []GitHubRepo{
		{Language: "Go", StargazersCount: 3},
		{Language: "TypeScript", StargazersCount: 1},
		{Language: "", StargazersCount: 5},
		{Language: "TypeScript"},
		{Language: "Go"},
	})
	assert.Equal(t, GitHubStats{Username: "me", TotalRepos: 5, TotalStars: 9, MostUsedLanguage: "Go"}, stats)

	assert.Equal(t, "", ComputeGitHubStats("me", nil).MostUsedLanguage)
}

func TestGitHubClientPagesAndCaches(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/users/octo/repos", r.URL.Path)

		var repos []GitHubRepo
		if r.URL.Query().Get("page") == "1" {
			for i := 0; i < githubPageSize; i++ {
				repos = append(repos, GitHubRepo{Name: fmt.Sprint(i), Language: "Go", StargazersCount: 1})
			}
		} else {
			repos = []GitHubRepo{{Name: "last", Language: "Rust", StargazersCount: 10}}
		}
		json.NewEncoder(w).Encode(repos)
	}))
	defer srv.Close()

	gh := NewGitHubClient(context.Background(), "", cache.NewMemory())
	gh.baseURL = srv.URL

	stats, err := gh.Stats(context.Background(), "octo")
	require.NoError(t, err)
	assert.Equal(t, 101, stats.TotalRepos)
	assert.Equal(t, 110, stats.TotalStars)
	assert.Equal(t, "Go", stats.MostUsedLanguage)

	_, err = gh.Stats(context.Background(), "octo")
	require.NoError(t, err)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls), "second call served from cache")
}

func TestGitHubClientUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	gh := NewGitHubClient(context.Background(), "", nil)
	gh.baseURL = srv.URL

	_, err := gh.Stats(context.Background(), "ghost")
	assert.ErrorContains(t, err, "status 404")
}
