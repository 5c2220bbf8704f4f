package api

import (
	"context"
	"net/http"

	"github.com/rpupo63/portfolio-site-backend/database"
	"github.com/rpupo63/portfolio-site-backend/errs"
	"github.com/rpupo63/portfolio-site-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// GitHubSource reports repository statistics for a GitHub user
type GitHubSource interface {
	Stats(ctx context.Context, username string) (services.GitHubStats, error)
}

type statsHandler struct {
	responder      Responder
	logger         zerolog.Logger
	db             database.Database
	github         GitHubSource
	githubUsername string
}

func newStatsHandler(db database.Database, github GitHubSource, githubUsername string) statsHandler {
	logger := log.With().Str("handlerName", "statsHandler").Logger()

	return statsHandler{
		responder:      NewResponder(logger),
		logger:         logger,
		db:             db,
		github:         github,
		githubUsername: githubUsername,
	}
}

// DashboardStats are the counters on the admin dashboard
type DashboardStats struct {
	Projects       int64 `json:"projects"`
	Messages       int64 `json:"messages"`
	UnreadMessages int64 `json:"unreadMessages"`
	BlogPosts      int64 `json:"blogPosts"`
	PageViews      int64 `json:"pageViews"`
	ReviewsPending int64 `json:"reviewsPending"`
}

// getDashboardStats counts every table concurrently
// @Summary Dashboard stats
// @Tags Stats
// @Produce json
// @Success 200 {object} DashboardStats "Counters"
// @Router /admin/stats [get]
func (h statsHandler) getDashboardStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var stats DashboardStats
		g, ctx := errgroup.WithContext(r.Context())

		count := func(dst *int64, fn func(context.Context) (int64, error)) {
			g.Go(func() (err error) {
				*dst, err = fn(ctx)
				return err
			})
		}
		count(&stats.Projects, h.db.ProjectRepo().Count)
		count(&stats.Messages, h.db.ContactMessageRepo().Count)
		count(&stats.UnreadMessages, h.db.ContactMessageRepo().CountUnread)
		count(&stats.BlogPosts, h.db.BlogPostRepo().Count)
		count(&stats.PageViews, h.db.AnalyticsRepo().Count)
		count(&stats.ReviewsPending, h.db.ReviewRepo().CountPending)

		if err := g.Wait(); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("count", "dashboard stats", err))
			return
		}
		h.responder.WriteJSON(w, stats)
	}
}

// getGitHubStats returns repository statistics of the configured GitHub user
// @Summary GitHub stats
// @Tags Stats
// @Produce json
// @Success 200 {object} services.GitHubStats "Repository statistics"
// @Failure 502 {object} ErrorResponse "GitHub request failed"
// @Failure 503 {object} ErrorResponse "GitHub stats not configured"
// @Router /github/stats [get]
func (h statsHandler) getGitHubStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.github == nil || h.githubUsername == "" {
			h.responder.WriteError(w, errs.NewServiceUnavailableError("GitHub stats"))
			return
		}

		stats, err := h.github.Stats(r.Context(), h.githubUsername)
		if err != nil {
			h.responder.WriteError(w, errs.NewUpstreamError("GitHub", err))
			return
		}
		h.responder.WriteJSON(w, stats)
	}
}
