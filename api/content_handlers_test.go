package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-site-backend/database"
	"github.com/rpupo63/portfolio-site-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestProjectLifecycle(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodPost, "/admin/project", projectRequest{Title: "x", Description: "y"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.admin(t, http.MethodPost, "/admin/project", projectRequest{
		Title:        "Portfolio API",
		Description:  "The backend of this site",
		Technologies: []string{" Go ", "go", "Postgres"},
		GithubURL:    strPtr("https://github.com/example/portfolio"),
		OrderIndex:   2,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	first := decode[models.Project](t, rec)
	assert.Equal(t, []string{"Go", "Postgres"}, []string(first.Technologies))

	rec = env.do(t, http.MethodGet, "/projects", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[ProjectCollection](t, rec).Total)

	rec = env.admin(t, http.MethodPost, "/admin/project", projectRequest{
		Title:       "Chatbot",
		Description: "Rule based assistant",
		Featured:    true,
		OrderIndex:  1,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	// the cached list is invalidated by the insert
	rec = env.do(t, http.MethodGet, "/projects", nil, "")
	list := decode[ProjectCollection](t, rec)
	require.Equal(t, 2, list.Total)
	assert.Equal(t, "Chatbot", list.Projects[0].Title, "ordered by order_index")

	rec = env.do(t, http.MethodGet, "/projects?featured=true", nil, "")
	featured := decode[ProjectCollection](t, rec)
	require.Len(t, featured.Projects, 1)
	assert.True(t, featured.Projects[0].Featured)

	rec = env.admin(t, http.MethodPost, "/admin/project", projectRequest{Title: "Portfolio API", Description: "dup"})
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, `a project titled "Portfolio API" already exists`, decode[ErrorResponse](t, rec).Error)

	rec = env.admin(t, http.MethodPut, "/admin/project/"+first.ID.String(), projectRequest{
		Title:       "Portfolio API v2",
		Description: "Rewritten",
		OrderIndex:  5,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[models.Project](t, rec)
	assert.Equal(t, "Portfolio API v2", updated.Title)
	assert.Nil(t, updated.GithubURL, "update replaces every editable field")

	rec = env.do(t, http.MethodGet, "/project/"+first.ID.String(), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Rewritten", decode[models.Project](t, rec).Description)

	rec = env.admin(t, http.MethodDelete, "/admin/project/"+first.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", decode[DeleteResponse](t, rec).Status)

	rec = env.admin(t, http.MethodDelete, "/admin/project/"+first.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProjectValidation(t *testing.T) {
	env := newTestEnv(t, nil)

	tests := []struct {
		name  string
		req   projectRequest
		field string
	}{
		{"missing title", projectRequest{Description: "d"}, "title"},
		{"missing description", projectRequest{Title: "t"}, "description"},
		{"bad url", projectRequest{Title: "t", Description: "d", LiveURL: strPtr("not a url")}, "live_url"},
		{"negative order", projectRequest{Title: "t", Description: "d", OrderIndex: -1}, "order_index"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.admin(t, http.MethodPost, "/admin/project", tt.req)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.field, decode[ErrorResponse](t, rec).Field)
		})
	}
}

func TestProjectLookupErrors(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodGet, "/project/not-a-uuid", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/project/"+uuid.NewString(), nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "project not found", decode[ErrorResponse](t, rec).Error)

	rec = env.admin(t, http.MethodPut, "/admin/project/"+uuid.NewString(), projectRequest{Title: "t", Description: "d"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBlogPosts(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.admin(t, http.MethodPost, "/admin/blog-post", blogPostRequest{
		Title:     "Shipping Go Services",
		Content:   "Some words about deploying Go.",
		Published: true,
		Tags:      []string{"Go", "go", "DevOps"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	published := decode[models.BlogPost](t, rec)
	assert.Equal(t, "shipping-go-services", published.Slug)
	assert.NotNil(t, published.PublishedAt)
	assert.Len(t, published.Tags, 2)

	rec = env.admin(t, http.MethodPost, "/admin/blog-post", blogPostRequest{
		Title:   "Draft Thoughts",
		Content: "Not ready",
		Tags:    []string{"go"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	draft := decode[models.BlogPost](t, rec)
	assert.Nil(t, draft.PublishedAt)

	rec = env.do(t, http.MethodGet, "/blog-posts", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	public := decode[BlogPostCollection](t, rec)
	require.Equal(t, 1, public.Total)
	assert.Equal(t, published.ID, public.BlogPosts[0].ID)

	rec = env.admin(t, http.MethodGet, "/admin/blog-posts", nil)
	assert.Equal(t, 2, decode[BlogPostCollection](t, rec).Total)

	rec = env.do(t, http.MethodGet, "/blog-post/shipping-go-services", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[models.BlogPost](t, rec).Tags, 2)

	rec = env.do(t, http.MethodGet, "/blog-post/draft-thoughts", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodGet, "/blog-tags", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []database.TagCount{{Value: "devops", Count: 1}, {Value: "go", Count: 1}}, decode[[]database.TagCount](t, rec))

	// publishing the draft stamps published_at and replaces its tags
	rec = env.admin(t, http.MethodPut, "/admin/blog-post/"+draft.ID.String(), blogPostRequest{
		Title:     "Draft Thoughts",
		Content:   "Ready now",
		Published: true,
		Tags:      []string{"go", "notes"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[models.BlogPost](t, rec)
	assert.NotNil(t, updated.PublishedAt)
	assert.Len(t, updated.Tags, 2)

	rec = env.do(t, http.MethodGet, "/blog-tags", nil, "")
	tags := decode[[]database.TagCount](t, rec)
	require.NotEmpty(t, tags)
	assert.Equal(t, database.TagCount{Value: "go", Count: 2}, tags[0])

	rec = env.admin(t, http.MethodDelete, "/admin/blog-post/"+draft.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodGet, "/blog-post/draft-thoughts", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBlogPostRejectsUnsluggableTitle(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.admin(t, http.MethodPost, "/admin/blog-post", blogPostRequest{Title: "!!!", Content: "c"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "slug", decode[ErrorResponse](t, rec).Field)
}

func TestBlogPostDuplicateSlug(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.admin(t, http.MethodPost, "/admin/blog-post", blogPostRequest{Title: "Hello World", Content: "first"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = env.admin(t, http.MethodPost, "/admin/blog-post", blogPostRequest{Title: "Other", Content: "second"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	other := decode[models.BlogPost](t, rec)

	rec = env.admin(t, http.MethodPost, "/admin/blog-post", blogPostRequest{Title: "Hello World", Content: "again"})
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, `a blog post with slug "hello-world" already exists`, decode[ErrorResponse](t, rec).Error)

	rec = env.admin(t, http.MethodPut, "/admin/blog-post/"+other.ID.String(), blogPostRequest{Title: "Hello World", Content: "renamed"})
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, `a blog post with slug "hello-world" already exists`, decode[ErrorResponse](t, rec).Error)
}

func TestReviews(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodPost, "/reviews", reviewRequest{
		Name:    "Ada <b>Lovelace</b>",
		Email:   "ada@example.com",
		Role:    "Engineer",
		Company: "Analytical Engines",
		Content: "Great to work with.",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	review := decode[models.Review](t, rec)
	assert.Equal(t, "Ada Lovelace", review.Name)
	assert.Equal(t, 5, review.Rating)
	assert.False(t, review.Approved)
	assert.False(t, review.Verified)

	assert.Eventually(t, func() bool {
		return len(env.channel.subjects()) == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, "New review from Ada Lovelace", env.channel.subjects()[0])

	rec = env.do(t, http.MethodGet, "/reviews", nil, "")
	assert.Empty(t, decode[[]models.Review](t, rec))

	approved := true
	rec = env.admin(t, http.MethodPatch, "/admin/review/"+review.ID.String(), moderateRequest{Approved: &approved})
	require.Equal(t, http.StatusOK, rec.Code)
	moderated := decode[models.Review](t, rec)
	assert.True(t, moderated.Approved)
	assert.False(t, moderated.Verified)

	rec = env.do(t, http.MethodGet, "/reviews", nil, "")
	public := decode[[]models.Review](t, rec)
	require.Len(t, public, 1)
	assert.Empty(t, public[0].Email, "emails are not published")

	rec = env.admin(t, http.MethodGet, "/admin/reviews", nil)
	assert.Equal(t, "ada@example.com", decode[[]models.Review](t, rec)[0].Email)

	rec = env.admin(t, http.MethodDelete, "/admin/review/"+review.ID.String(), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReviewStripsEncodedMarkup(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodPost, "/reviews", reviewRequest{
		Name:    "&lt;b&gt;Ada&lt;/b&gt;",
		Email:   "ada@example.com",
		Role:    "&lt;script&gt;alert(1)&lt;/script&gt;Engineer",
		Company: "A &amp; B",
		Content: "Great &lt;img src=x onerror=alert(1)&gt;work",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	review := decode[models.Review](t, rec)
	assert.Equal(t, "Ada", review.Name)
	assert.Equal(t, "Engineer", review.Role)
	assert.Equal(t, "A & B", review.Company)
	assert.Equal(t, "Great work", review.Content)

	rec = env.do(t, http.MethodPost, "/reviews", reviewRequest{
		Name:    "Ada",
		Email:   "ada@example.com",
		Content: "&lt;script&gt;alert(1)&lt;/script&gt;",
	}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code, "content that is only markup is empty")
}

func TestReviewValidation(t *testing.T) {
	env := newTestEnv(t, nil)

	tests := []struct {
		name  string
		req   reviewRequest
		field string
	}{
		{"rating too high", reviewRequest{Name: "n", Email: "a@b.co", Content: "c", Rating: 6}, "rating"},
		{"bad email", reviewRequest{Name: "n", Email: "nope", Content: "c"}, "email"},
		{"bad linkedin", reviewRequest{Name: "n", Email: "a@b.co", Content: "c", LinkedInURL: strPtr("linkedin")}, "linkedin_url"},
		{"missing content", reviewRequest{Name: "n", Email: "a@b.co"}, "content"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/reviews", tt.req, "")
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.field, decode[ErrorResponse](t, rec).Field)
		})
	}
}

func TestAvailability(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodGet, "/availability", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	defaults := decode[[]DaySchedule](t, rec)
	require.Len(t, defaults, defaultScheduleDays)
	for _, day := range defaults {
		require.Len(t, day.Slots, 4)
		assert.True(t, day.Slots[3].Available)
	}

	rec = env.admin(t, http.MethodPut, "/admin/availability", []slotRequest{
		{Date: "2026-03-03", Time: "11:00 - 13:00", Available: false},
		{Date: "2026-03-02", Time: "08:00 - 11:00", Available: true},
		{Date: "2026-03-03", Time: "08:00 - 11:00", Available: true},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// writing an existing slot flips its flag instead of adding a row
	rec = env.admin(t, http.MethodPut, "/admin/availability", []slotRequest{
		{Date: "2026-03-02", Time: "08:00 - 11:00", Available: false},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/availability", nil, "")
	assert.Equal(t, []DaySchedule{
		{Date: "2026-03-02", Day: "Mon", Slots: []TimeSlot{{Time: "08:00 - 11:00", Available: false}}},
		{Date: "2026-03-03", Day: "Tue", Slots: []TimeSlot{
			{Time: "08:00 - 11:00", Available: true},
			{Time: "11:00 - 13:00", Available: false},
		}},
	}, decode[[]DaySchedule](t, rec))

	rec = env.admin(t, http.MethodPut, "/admin/availability", []slotRequest{{Date: "03/02/2026", Time: "x"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.admin(t, http.MethodDelete, "/admin/availability/2026-03-03", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.admin(t, http.MethodDelete, "/admin/availability/2026-03-03", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = env.admin(t, http.MethodDelete, "/admin/availability/tomorrow", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAvailabilityRepeatedSlotInOneUpdate(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.admin(t, http.MethodPut, "/admin/availability", []slotRequest{
		{Date: "2026-03-02", Time: "08:00 - 11:00", Available: true},
		{Date: "2026-03-02", Time: "11:00 - 13:00", Available: true},
		{Date: "2026-03-02", Time: " 08:00 - 11:00 ", Available: false},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []DaySchedule{
		{Date: "2026-03-02", Day: "Mon", Slots: []TimeSlot{
			{Time: "08:00 - 11:00", Available: false},
			{Time: "11:00 - 13:00", Available: true},
		}},
	}, decode[[]DaySchedule](t, rec))
}

func TestDefaultSchedule(t *testing.T) {
	saturday := time.Date(2026, 3, 7, 15, 0, 0, 0, time.UTC)
	schedule := defaultSchedule(saturday, 3)

	require.Len(t, schedule, 3)
	assert.Equal(t, "2026-03-07", schedule[0].Date)
	assert.Equal(t, "Sat", schedule[0].Day)
	assert.Equal(t, []bool{false, false, false, true}, availableFlags(schedule[0]))
	assert.Equal(t, []bool{false, false, false, true}, availableFlags(schedule[1]))
	assert.Equal(t, "Mon", schedule[2].Day)
	assert.Equal(t, []bool{true, true, true, true}, availableFlags(schedule[2]))
}

func availableFlags(day DaySchedule) []bool {
	flags := make([]bool, len(day.Slots))
	for i, s := range day.Slots {
		flags[i] = s.Available
	}
	return flags
}
