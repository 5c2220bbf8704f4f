package api

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-site-backend/analytics"
	"github.com/rpupo63/portfolio-site-backend/auth"
	"github.com/rpupo63/portfolio-site-backend/chatbot"
	"github.com/rpupo63/portfolio-site-backend/config"
	"github.com/rpupo63/portfolio-site-backend/models"
	"github.com/rpupo63/portfolio-site-backend/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestContactValidationOrder(t *testing.T) {
	env := newTestEnv(t, nil)

	tests := []struct {
		name string
		body any
		want string
	}{
		{"malformed json", "{oops", "Name is required."},
		{"blank name", contactRequest{Name: "  ", Email: "a@b.co", Subject: "s", Message: "m"}, "Name is required."},
		{"bad email", contactRequest{Name: "n", Email: "a@b", Subject: "", Message: ""}, "A valid email is required."},
		{"missing subject", contactRequest{Name: "n", Email: "a@b.co", Message: "m"}, "Subject is required."},
		{"html only message", contactRequest{Name: "n", Email: "a@b.co", Subject: "s", Message: "<br/>"}, "Message is required."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/contact", tt.body, "")
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, map[string]string{"error": tt.want}, decode[map[string]string](t, rec))
		})
	}
	assert.Empty(t, env.channel.subjects())
}

func TestContactStripsEncodedMarkup(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    string
	}{
		{"encoded script", "Hi &lt;script&gt;alert(1)&lt;/script&gt;there", "Hi there"},
		{"encoded img handler", "&lt;img src=x onerror=alert(1)&gt;Hello", "Hello"},
		{"double encoded", "&amp;lt;b&amp;gt;bold&amp;lt;/b&amp;gt;", "bold"},
		{"plain entities", "Tom &amp; Jerry say 1 &lt; 2", "Tom & Jerry say 1 < 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, nil)

			rec := env.do(t, http.MethodPost, "/contact", contactRequest{
				Name:    "&lt;b&gt;Grace&lt;/b&gt;",
				Email:   "grace@example.com",
				Subject: "Hello",
				Message: tt.message,
			}, "")
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			rec = env.admin(t, http.MethodGet, "/admin/messages", nil)
			stored := decode[[]models.ContactMessage](t, rec)
			require.Len(t, stored, 1)
			assert.Equal(t, "Grace", stored[0].Name)
			assert.Equal(t, tt.want, stored[0].Message)
			assert.NotContains(t, stored[0].Message, "<img")
			assert.NotContains(t, stored[0].Message, "<script")
		})
	}

	env := newTestEnv(t, nil)
	rec := env.do(t, http.MethodPost, "/contact", contactRequest{
		Name:    "&lt;script&gt;alert(1)&lt;/script&gt;",
		Email:   "grace@example.com",
		Subject: "Hello",
		Message: "Hi",
	}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Name is required.", decode[map[string]string](t, rec)["error"])
}

func TestContactSubmitAndManage(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodPost, "/contact", contactRequest{
		Name:    " Grace Hopper ",
		Email:   "grace@example.com",
		Subject: "Hello <script>alert(1)</script>",
		Message: "Let's <b>talk</b> & build",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[ContactResponse](t, rec)
	require.True(t, resp.Success)
	assert.Equal(t, "Grace Hopper", resp.Data.Name)
	assert.Equal(t, "Hello", resp.Data.Subject)
	assert.Equal(t, "Let's talk & build", resp.Data.Message)
	assert.False(t, resp.Data.Read)

	assert.Eventually(t, func() bool {
		return len(env.channel.subjects()) == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, "New contact message: Hello", env.channel.subjects()[0])

	rec = env.admin(t, http.MethodGet, "/admin/messages?unread=true", nil)
	require.Len(t, decode[[]models.ContactMessage](t, rec), 1)

	id := resp.Data.ID.String()
	read := true
	rec = env.admin(t, http.MethodPatch, "/admin/message/"+id, markReadRequest{Read: &read})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[models.ContactMessage](t, rec).Read)

	rec = env.admin(t, http.MethodPatch, "/admin/message/"+id, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.admin(t, http.MethodGet, "/admin/messages?unread=true", nil)
	assert.Empty(t, decode[[]models.ContactMessage](t, rec))
	rec = env.admin(t, http.MethodGet, "/admin/messages", nil)
	assert.Len(t, decode[[]models.ContactMessage](t, rec), 1)

	rec = env.admin(t, http.MethodGet, "/admin/messages/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	book, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer book.Close()
	rows, err := book.GetRows("Messages")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Email", rows[0][2])
	assert.Equal(t, "grace@example.com", rows[1][2])

	rec = env.admin(t, http.MethodDelete, "/admin/message/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.admin(t, http.MethodPatch, "/admin/message/"+id, markReadRequest{Read: &read})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func multipartUpload(t *testing.T, env *testEnv, field, filename, contentType string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if field != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
		h.Set("Content-Type", contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	} else {
		require.NoError(t, mw.WriteField("note", "no file here"))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/admin/resume/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+env.token)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	return rec
}

func TestResumeUploadValidation(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := multipartUpload(t, env, "", "", "", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No file provided", decode[map[string]string](t, rec)["error"])

	rec = multipartUpload(t, env, "file", "resume.txt", "text/plain", []byte("hello"))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Only PDF files are allowed", decode[map[string]string](t, rec)["error"])

	big := bytes.Repeat([]byte("a"), maxResumeSize+1)
	rec = multipartUpload(t, env, "file", "big.pdf", "application/pdf", big)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	env.blobs.putErr = errors.New("bucket gone")
	rec = multipartUpload(t, env, "file", "resume.pdf", "application/pdf", []byte("%PDF-1.4"))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Zero(t, env.blobs.count())
}

func TestResumeLifecycle(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodGet, "/resume/active", nil, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "No active resume found", decode[map[string]string](t, rec)["error"])

	upload := func(name string) models.ResumeFile {
		rec := multipartUpload(t, env, "file", name, "application/pdf", []byte("%PDF-1.4 "+name))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		return decode[models.ResumeFile](t, rec)
	}
	first := upload("Jane Doe CV.pdf")
	second := upload("cv-2026.pdf")
	assert.False(t, first.IsActive)
	assert.Contains(t, first.BlobURL, "-Jane_Doe_CV.pdf")
	assert.Equal(t, 2, env.blobs.count())

	rec = env.admin(t, http.MethodPost, "/admin/resume/"+first.ID.String()+"/activate", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.admin(t, http.MethodPost, "/admin/resume/"+second.ID.String()+"/activate", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.admin(t, http.MethodPost, "/admin/resume/"+uuid.NewString()+"/activate", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodGet, "/resume/active", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, second.ID, decode[models.ResumeFile](t, rec).ID, "the failed activation changed nothing")

	rec = env.do(t, http.MethodGet, "/resume/download", nil, "")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, second.BlobURL, rec.Header().Get("Location"))

	rec = env.admin(t, http.MethodGet, "/admin/resumes", nil)
	resumes := decode[[]models.ResumeFile](t, rec)
	require.Len(t, resumes, 2)
	active := 0
	for _, r := range resumes {
		if r.IsActive {
			active++
		}
	}
	assert.Equal(t, 1, active)

	rec = env.admin(t, http.MethodDelete, "/admin/resume/"+second.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, env.blobs.count())

	rec = env.do(t, http.MethodGet, "/resume/download", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestResumeUploadWithoutBlobStore(t *testing.T) {
	env := newTestEnv(t, nil)
	_, chain, err := auth.Setup(config.Config{"JWT_SECRET": "test-secret-with-enough-length"})
	require.NoError(t, err)
	env.handler = newRouter(Dependencies{
		Database:  env.db,
		Bot:       mustBot(t),
		Analytics: analytics.NewService(env.db.AnalyticsRepo()),
		Verifier:  chain,
	}, withConfig(config.Config{}))

	rec := multipartUpload(t, env, "file", "resume.pdf", "application/pdf", []byte("%PDF"))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAnalyticsTracking(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodPost, "/analytics", analytics.PageView{PagePath: "/", Referrer: "https://news.example.com"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, TrackResponse{Success: true, Tracked: true}, decode[TrackResponse](t, rec))

	rec = env.do(t, http.MethodPost, "/analytics", analytics.PageView{PagePath: "/projects", UserAgent: "Mozilla/5.0"}, "")
	assert.True(t, decode[TrackResponse](t, rec).Tracked)
	rec = env.do(t, http.MethodPost, "/analytics", analytics.PageView{PagePath: "/projects"}, "")
	assert.True(t, decode[TrackResponse](t, rec).Tracked)

	// failures still answer 200
	rec = env.do(t, http.MethodPost, "/analytics", analytics.PageView{}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, TrackResponse{Success: true, Tracked: false}, decode[TrackResponse](t, rec))
	rec = env.do(t, http.MethodPost, "/analytics", "not json", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[TrackResponse](t, rec).Tracked)

	rec = env.admin(t, http.MethodGet, "/admin/analytics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decode[analytics.Summary](t, rec)
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, map[string]int{"/": 1, "/projects": 2}, summary.PageViews)
	require.NotEmpty(t, summary.TopPages)
	assert.Equal(t, analytics.PageCount{Page: "/projects", Count: 2}, summary.TopPages[0])

	visitors := map[string]int{}
	for _, e := range summary.RecentViews {
		visitors[e.VisitorID]++
	}
	// httptest requests carry no User-Agent header
	assert.Equal(t, 2, visitors["anonymous"])
	assert.Equal(t, 1, visitors[analytics.VisitorID("Mozilla/5.0")])

	rec = env.do(t, http.MethodGet, "/analytics/visitors", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[analytics.VisitorStats](t, rec)
	assert.EqualValues(t, 3, stats.Total)
	assert.EqualValues(t, 3, stats.Current)

	rec = env.admin(t, http.MethodGet, "/admin/analytics/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	book, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer book.Close()
	rows, err := book.GetRows("PageViews")
	require.NoError(t, err)
	assert.Len(t, rows, 4)
}

func TestAnalyticsUserAgentHeader(t *testing.T) {
	env := newTestEnv(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/analytics", bytes.NewReader([]byte(`{"page_path":"/blog"}`)))
	req.Header.Set("User-Agent", "curl/8.0")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	events, err := env.db.AnalyticsRepo().Recent(req.Context(), 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, analytics.VisitorID("curl/8.0"), events[0].VisitorID)
	assert.Nil(t, events[0].Referrer)
}

func TestChat(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodGet, "/chat", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decode[GreetingResponse](t, rec).Greeting, "AI assistant")

	rec = env.do(t, http.MethodPost, "/chat", chatRequest{Message: "   "}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "message", decode[ErrorResponse](t, rec).Field)

	rec = env.do(t, http.MethodPost, "/chat", chatRequest{Message: "What skill set does he have?"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	reply := decode[chatbot.Reply](t, rec)
	assert.Equal(t, chatbot.SourceRules, reply.Source)
	assert.Contains(t, reply.Reply, "proficient in")
}

func TestDashboardStats(t *testing.T) {
	env := newTestEnv(t, nil)

	env.admin(t, http.MethodPost, "/admin/project", projectRequest{Title: "p", Description: "d"})
	env.admin(t, http.MethodPost, "/admin/blog-post", blogPostRequest{Title: "b", Content: "c"})
	env.do(t, http.MethodPost, "/contact", contactRequest{Name: "n", Email: "a@b.co", Subject: "s", Message: "m"}, "")
	env.do(t, http.MethodPost, "/reviews", reviewRequest{Name: "n", Email: "a@b.co", Content: "c"}, "")
	env.do(t, http.MethodPost, "/analytics", analytics.PageView{PagePath: "/"}, "")

	rec := env.admin(t, http.MethodGet, "/admin/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, DashboardStats{
		Projects:       1,
		Messages:       1,
		UnreadMessages: 1,
		BlogPosts:      1,
		PageViews:      1,
		ReviewsPending: 1,
	}, decode[DashboardStats](t, rec))
}

func TestGitHubStats(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodGet, "/github/stats", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 42, decode[services.GitHubStats](t, rec).TotalStars)
	assert.Equal(t, []string{"octocat"}, env.github.users)

	env.github.err = errors.New("rate limited")
	rec = env.do(t, http.MethodGet, "/github/stats", nil, "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	unconfigured := newTestEnv(t, config.Config{"GITHUB_USERNAME": ""})
	rec = unconfigured.do(t, http.MethodGet, "/github/stats", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
