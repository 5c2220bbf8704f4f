package api

import (
	"context"
	"net/http"
	"time"

	"github.com/rpupo63/portfolio-site-backend/errs"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// pinger is satisfied by database.Database
type pinger interface {
	Ping(ctx context.Context) error
}

type healthHandler struct {
	responder   Responder
	logger      zerolog.Logger
	db          pinger
	startupTime time.Time
	now         func() time.Time
}

func newHealthHandler(db pinger, startupTime time.Time) healthHandler {
	logger := log.With().Str("handlerName", "healthHandler").Logger()

	return healthHandler{
		responder:   NewResponder(logger),
		logger:      logger,
		db:          db,
		startupTime: startupTime,
		now:         time.Now,
	}
}

// HealthResponse reports liveness and uptime
type HealthResponse struct {
	Status    string    `json:"status"`
	Uptime    string    `json:"uptime"`
	StartedAt time.Time `json:"startedAt"`
}

// health checks the database connection
// @Summary Health check
// @Tags Operations
// @Produce json
// @Success 200 {object} HealthResponse "Healthy"
// @Failure 503 {object} ErrorResponse "Database unreachable"
// @Router /health [get]
func (h healthHandler) health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		if err := h.db.Ping(ctx); err != nil {
			h.logger.Error().Err(err).Msg("Database ping failed")
			h.responder.WriteError(w, errs.NewServiceUnavailableError("database"))
			return
		}

		h.responder.WriteJSON(w, HealthResponse{
			Status:    "ok",
			Uptime:    h.now().Sub(h.startupTime).Round(time.Second).String(),
			StartedAt: h.startupTime,
		})
	}
}
