package api

import (
	"time"

	"github.com/rpupo63/portfolio-site-backend/cache"
)

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(deps Dependencies, githubUsername string, startupTime time.Time) *routeHandlers {
	db := deps.Database
	c := deps.Cache
	if c == nil {
		c = cache.Noop{}
	}

	return &routeHandlers{
		projectHandler:      newProjectHandler(db.ProjectRepo(), c),
		blogPostHandler:     newBlogPostHandler(db.BlogPostRepo(), db.BlogTagRepo()),
		contactHandler:      newContactHandler(db.ContactMessageRepo(), deps.Notifier),
		resumeHandler:       newResumeHandler(db.ResumeRepo(), deps.Blobs),
		analyticsHandler:    newAnalyticsHandler(deps.Analytics),
		reviewHandler:       newReviewHandler(db.ReviewRepo(), deps.Notifier),
		availabilityHandler: newAvailabilityHandler(db.AvailabilityRepo()),
		chatHandler:         newChatHandler(deps.Bot),
		statsHandler:        newStatsHandler(db, deps.GitHub, githubUsername),
		authHandler:         newAuthHandler(deps.Admin, deps.Tokens),
		healthHandler:       newHealthHandler(db, startupTime),
	}
}
