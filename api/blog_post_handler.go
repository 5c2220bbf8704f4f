package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/rpupo63/portfolio-site-backend/database"
	"github.com/rpupo63/portfolio-site-backend/errs"
	"github.com/rpupo63/portfolio-site-backend/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type blogPostHandler struct {
	responder    Responder
	logger       zerolog.Logger
	blogPostRepo *database.BlogPostRepo
	blogTagRepo  *database.BlogTagRepo
	now          func() time.Time
}

func newBlogPostHandler(blogPostRepo *database.BlogPostRepo, blogTagRepo *database.BlogTagRepo) blogPostHandler {
	logger := log.With().Str("handlerName", "blogPostHandler").Logger()

	return blogPostHandler{
		responder:    NewResponder(logger),
		logger:       logger,
		blogPostRepo: blogPostRepo,
		blogTagRepo:  blogTagRepo,
		now:          time.Now,
	}
}

// BlogPostCollection represents multiple blog posts with their tags
type BlogPostCollection struct {
	BlogPosts []*models.BlogPost `json:"blogPosts"`
	Total     int                `json:"total"`
}

// blogPostRequest holds the editable fields of a blog post
type blogPostRequest struct {
	Title         string   `json:"title"`
	Slug          string   `json:"slug"`
	Excerpt       *string  `json:"excerpt"`
	Content       string   `json:"content"`
	CoverImageURL *string  `json:"cover_image_url"`
	Published     bool     `json:"published"`
	Tags          []string `json:"tags"`
}

func (b blogPostRequest) Validate() error {
	return validation.ValidateStruct(&b,
		validation.Field(&b.Title, validation.Required, validation.Length(1, 300)),
		validation.Field(&b.Content, validation.Required),
		validation.Field(&b.CoverImageURL, validation.NilOrNotEmpty, is.URL),
		validation.Field(&b.Tags, validation.Each(validation.Length(0, 50))),
	)
}

// apply copies the request onto post and derives slug, reading time and publish time
func (b blogPostRequest) apply(post *models.BlogPost, now time.Time) {
	post.Title = strings.TrimSpace(b.Title)
	post.Slug = b.Slug
	post.Excerpt = b.Excerpt
	post.Content = b.Content
	post.CoverImageURL = b.CoverImageURL
	post.Published = b.Published
	post.Tags = tagsFromValues(b.Tags)
	post.Prepare(now)
}

// tagsFromValues lower-cases tag values and drops blanks and duplicates
func tagsFromValues(values []string) []models.BlogTag {
	seen := make(map[string]bool, len(values))
	tags := make([]models.BlogTag, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		tags = append(tags, models.BlogTag{Value: v})
	}
	return tags
}

func (h blogPostHandler) decodeRequest(w http.ResponseWriter, r *http.Request) (blogPostRequest, error) {
	var req blogPostRequest
	if err := readJSON(w, r, &req); err != nil {
		return req, err
	}
	if err := req.Validate(); err != nil {
		return req, errs.NewValidationError(err)
	}
	return req, nil
}

func (h blogPostHandler) writeCollection(w http.ResponseWriter, posts []*models.BlogPost) {
	if posts == nil {
		posts = []*models.BlogPost{}
	}
	h.responder.WriteJSON(w, BlogPostCollection{BlogPosts: posts, Total: len(posts)})
}

// getPublishedBlogPosts retrieves published blog posts with their tags
// @Summary Get published blog posts
// @Description Retrieves published blog posts, newest first, with their tags
// @Tags Blog Posts
// @Produce json
// @Success 200 {object} BlogPostCollection "List of blog posts with tags"
// @Failure 500 {object} ErrorResponse "Internal Server Error - Error fetching blog posts"
// @Router /blog-posts [get]
func (h blogPostHandler) getPublishedBlogPosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blogPosts, err := h.blogPostRepo.FindAll(r.Context(), true)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "blog posts", err))
			return
		}
		h.writeCollection(w, blogPosts)
	}
}

// getAllBlogPosts retrieves every blog post including drafts
// @Summary Get all blog posts
// @Tags Blog Posts
// @Produce json
// @Success 200 {object} BlogPostCollection "List of blog posts with tags"
// @Router /admin/blog-posts [get]
func (h blogPostHandler) getAllBlogPosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blogPosts, err := h.blogPostRepo.FindAll(r.Context(), false)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "blog posts", err))
			return
		}
		h.writeCollection(w, blogPosts)
	}
}

// getBlogPost retrieves a published blog post by slug
// @Summary Get blog post
// @Tags Blog Posts
// @Produce json
// @Param slug path string true "Blog post slug"
// @Success 200 {object} models.BlogPost "Blog post with tags"
// @Failure 404 {object} ErrorResponse "Not Found - Blog post not found"
// @Router /blog-post/{slug} [get]
func (h blogPostHandler) getBlogPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := chi.URLParam(r, "slug")
		if slug == "" {
			h.responder.WriteError(w, errs.NewBadRequestError("missing slug"))
			return
		}

		blogPost, err := h.blogPostRepo.FindPublishedBySlug(r.Context(), models.Slugify(slug))
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "blog post", err))
			return
		}

		h.responder.WriteJSON(w, blogPost)
	}
}

// getBlogTags lists the tags of published posts with their counts
// @Summary Get blog tags
// @Tags Blog Posts
// @Produce json
// @Success 200 {array} database.TagCount "Tags, most used first"
// @Router /blog-tags [get]
func (h blogPostHandler) getBlogTags() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		counts, err := h.blogTagRepo.PublishedCounts(r.Context())
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("count", "blog tags", err))
			return
		}
		if counts == nil {
			counts = []database.TagCount{}
		}
		h.responder.WriteJSON(w, counts)
	}
}

// createBlogPost creates a new blog post
// @Summary Create blog post
// @Tags Blog Posts
// @Accept json
// @Produce json
// @Param blogPost body blogPostRequest true "Blog post data"
// @Success 201 {object} models.BlogPost "Created blog post with tags"
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid blog post data"
// @Failure 409 {object} ErrorResponse "Conflict - Duplicate title or slug"
// @Router /admin/blog-post [post]
func (h blogPostHandler) createBlogPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := h.decodeRequest(w, r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var blogPost models.BlogPost
		req.apply(&blogPost, h.now())
		if blogPost.Slug == "" {
			h.responder.WriteError(w, errs.NewInvalidFieldError("slug", "title must contain letters or digits"))
			return
		}

		if err := h.blogPostRepo.Add(r.Context(), &blogPost); err != nil {
			h.responder.WriteError(w, wrapWriteError("create", "blog post", err, duplicateBlogPostMessage(blogPost.Slug)))
			return
		}

		h.logger.Info().Str("blogPostID", blogPost.ID.String()).Bool("published", blogPost.Published).Msg("Blog post created")
		h.responder.WriteJSONStatus(w, http.StatusCreated, blogPost)
	}
}

// updateBlogPost replaces an existing blog post and its tags
// @Summary Update blog post
// @Tags Blog Posts
// @Accept json
// @Produce json
// @Param blogPostID path string true "Blog Post ID" format(uuid)
// @Param blogPost body blogPostRequest true "Updated blog post data"
// @Success 200 {object} models.BlogPost "Updated blog post with tags"
// @Failure 404 {object} ErrorResponse "Not Found - Blog post not found"
// @Router /admin/blog-post/{blogPostID} [put]
func (h blogPostHandler) updateBlogPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blogPostID, err := urlID(r, "blogPostID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		blogPost, err := h.blogPostRepo.FindByID(r.Context(), blogPostID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "blog post", err))
			return
		}

		req, err := h.decodeRequest(w, r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		req.apply(blogPost, h.now())
		if blogPost.Slug == "" {
			h.responder.WriteError(w, errs.NewInvalidFieldError("slug", "title must contain letters or digits"))
			return
		}

		if err := h.blogPostRepo.Update(r.Context(), blogPost); err != nil {
			h.responder.WriteError(w, wrapWriteError("update", "blog post", err, duplicateBlogPostMessage(blogPost.Slug)))
			return
		}

		h.responder.WriteJSON(w, blogPost)
	}
}

// deleteBlogPost deletes a blog post and its tags
// @Summary Delete blog post
// @Tags Blog Posts
// @Produce json
// @Param blogPostID path string true "Blog Post ID" format(uuid)
// @Success 200 {object} DeleteResponse "Success message"
// @Failure 404 {object} ErrorResponse "Not Found - Blog post not found"
// @Router /admin/blog-post/{blogPostID} [delete]
func (h blogPostHandler) deleteBlogPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blogPostID, err := urlID(r, "blogPostID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.blogPostRepo.Delete(r.Context(), blogPostID); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", "blog post", err))
			return
		}

		h.responder.WriteJSON(w, DeleteResponse{
			Status:  "success",
			Message: fmt.Sprintf("blog post %s deleted", blogPostID),
		})
	}
}

// Title and slug are both unique; the slug is derived from the title.
func duplicateBlogPostMessage(slug string) string {
	return fmt.Sprintf("a blog post with slug %q already exists", slug)
}
