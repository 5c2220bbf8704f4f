package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// setupPublicRoutes registers the routes the public site calls
func setupPublicRoutes(r chi.Router, handlers *routeHandlers, limiter *rateLimiter) {
	r.Get("/health", handlers.healthHandler.health())

	r.Get("/projects", handlers.projectHandler.getAllProjects())
	r.Get("/project/{projectID}", handlers.projectHandler.getProject())

	r.Get("/blog-posts", handlers.blogPostHandler.getPublishedBlogPosts())
	r.Get("/blog-post/{slug}", handlers.blogPostHandler.getBlogPost())
	r.Get("/blog-tags", handlers.blogPostHandler.getBlogTags())

	r.Get("/reviews", handlers.reviewHandler.getApprovedReviews())
	r.Get("/availability", handlers.availabilityHandler.getAvailability())
	r.Get("/resume/active", handlers.resumeHandler.getActiveResume())
	r.Get("/resume/download", handlers.resumeHandler.downloadResume())
	r.Get("/analytics/visitors", handlers.analyticsHandler.getVisitorStats())
	r.Get("/github/stats", handlers.statsHandler.getGitHubStats())
	r.Get("/chat", handlers.chatHandler.getGreeting())

	// Writes from anonymous visitors are rate limited per client
	r.Group(func(r chi.Router) {
		r.Use(limiter.middleware)

		r.Post("/contact", handlers.contactHandler.submitMessage())
		r.Post("/analytics", handlers.analyticsHandler.trackPageView())
		r.Post("/reviews", handlers.reviewHandler.createReview())
		r.Post("/chat", handlers.chatHandler.answer())
		r.Post("/auth/login", handlers.authHandler.login())
	})
}

// setupAdminRoutes sets up the dashboard routes behind authentication
func setupAdminRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(authMiddleware.authenticate)

		r.Get("/session", handlers.authHandler.session())
		r.Get("/stats", handlers.statsHandler.getDashboardStats())

		// Project Handler endpoints
		r.Post("/project", handlers.projectHandler.createProject())
		r.Put("/project/{projectID}", handlers.projectHandler.updateProject())
		r.Delete("/project/{projectID}", handlers.projectHandler.deleteProject())

		// Blog Post Handler endpoints
		r.Get("/blog-posts", handlers.blogPostHandler.getAllBlogPosts())
		r.Post("/blog-post", handlers.blogPostHandler.createBlogPost())
		r.Put("/blog-post/{blogPostID}", handlers.blogPostHandler.updateBlogPost())
		r.Delete("/blog-post/{blogPostID}", handlers.blogPostHandler.deleteBlogPost())

		// Contact messages
		r.Get("/messages", handlers.contactHandler.getMessages())
		r.Get("/messages/export", handlers.contactHandler.exportMessages())
		r.Patch("/message/{messageID}", handlers.contactHandler.markMessage())
		r.Delete("/message/{messageID}", handlers.contactHandler.deleteMessage())

		// Resumes
		r.Get("/resumes", handlers.resumeHandler.getResumes())
		r.Post("/resume/upload", handlers.resumeHandler.uploadResume())
		r.Post("/resume/{resumeID}/activate", handlers.resumeHandler.activateResume())
		r.Delete("/resume/{resumeID}", handlers.resumeHandler.deleteResume())

		// Analytics
		r.Get("/analytics", handlers.analyticsHandler.getSummary())
		r.Get("/analytics/export", handlers.analyticsHandler.exportEvents())

		// Reviews
		r.Get("/reviews", handlers.reviewHandler.getAllReviews())
		r.Patch("/review/{reviewID}", handlers.reviewHandler.moderateReview())
		r.Delete("/review/{reviewID}", handlers.reviewHandler.deleteReview())

		// Availability
		r.Put("/availability", handlers.availabilityHandler.updateAvailability())
		r.Delete("/availability/{date}", handlers.availabilityHandler.deleteAvailability())
	})
}

func setupOperationalRoutes(r chi.Router, metrics http.Handler) {
	r.Method(http.MethodGet, "/metrics", metrics)
}
