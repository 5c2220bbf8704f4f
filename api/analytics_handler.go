package api

import (
	"net/http"
	"strconv"

	"github.com/rpupo63/portfolio-site-backend/analytics"
	"github.com/rpupo63/portfolio-site-backend/errs"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type analyticsHandler struct {
	responder Responder
	logger    zerolog.Logger
	analytics *analytics.Service
}

func newAnalyticsHandler(service *analytics.Service) analyticsHandler {
	logger := log.With().Str("handlerName", "analyticsHandler").Logger()

	return analyticsHandler{
		responder: NewResponder(logger),
		logger:    logger,
		analytics: service,
	}
}

// TrackResponse reports whether a page view was stored
type TrackResponse struct {
	Success bool `json:"success"`
	Tracked bool `json:"tracked"`
}

// trackPageView records a page view. Tracking problems never fail the request.
// @Summary Track page view
// @Tags Analytics
// @Accept json
// @Produce json
// @Param view body analytics.PageView true "Page view"
// @Success 200 {object} TrackResponse "Tracking result"
// @Router /analytics [post]
func (h analyticsHandler) trackPageView() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var view analytics.PageView
		tracked := false

		if err := readJSON(w, r, &view); err != nil {
			h.logger.Debug().Err(err).Msg("Ignoring malformed page view")
		} else {
			if view.UserAgent == "" {
				view.UserAgent = r.UserAgent()
			}
			if err := h.analytics.Track(r.Context(), view); err != nil {
				h.logger.Warn().Err(err).Str("page", view.PagePath).Msg("Page view not tracked")
			} else {
				tracked = true
			}
		}

		pageViewsTracked.WithLabelValues(strconv.FormatBool(tracked)).Inc()
		h.responder.WriteJSON(w, TrackResponse{Success: true, Tracked: tracked})
	}
}

// getSummary returns the admin analytics summary
// @Summary Analytics summary
// @Tags Analytics
// @Produce json
// @Success 200 {object} analytics.Summary "Summary over the newest events"
// @Router /admin/analytics [get]
func (h analyticsHandler) getSummary() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := h.analytics.Summary(r.Context())
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("summarize", "analytics", err))
			return
		}
		h.responder.WriteJSON(w, summary)
	}
}

// getVisitorStats returns the public live visitor counters
// @Summary Visitor stats
// @Tags Analytics
// @Produce json
// @Success 200 {object} analytics.VisitorStats "Visitor counters"
// @Router /analytics/visitors [get]
func (h analyticsHandler) getVisitorStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := h.analytics.VisitorStats(r.Context())
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("count", "analytics", err))
			return
		}
		h.responder.WriteJSON(w, stats)
	}
}

// exportEvents streams the newest page views as an XLSX workbook
// @Summary Export page views
// @Tags Analytics
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file "analytics.xlsx"
// @Router /admin/analytics/export [get]
func (h analyticsHandler) exportEvents() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events, err := h.analytics.Recent(r.Context())
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "analytics", err))
			return
		}

		book, err := analyticsWorkbook(events)
		if err != nil {
			h.responder.WriteError(w, errs.NewInternalErrorWithCause("failed to build export", err))
			return
		}
		writeWorkbook(w, h.logger, "analytics.xlsx", book)
	}
}
