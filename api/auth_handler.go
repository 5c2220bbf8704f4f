package api

import (
	"net/http"
	"time"

	"github.com/rpupo63/portfolio-site-backend/auth"
	"github.com/rpupo63/portfolio-site-backend/errs"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type authHandler struct {
	responder Responder
	logger    zerolog.Logger
	admin     *auth.AdminCredentials
	tokens    *auth.TokenService
}

func newAuthHandler(admin *auth.AdminCredentials, tokens *auth.TokenService) authHandler {
	logger := log.With().Str("handlerName", "authHandler").Logger()

	return authHandler{
		responder: NewResponder(logger),
		logger:    logger,
		admin:     admin,
		tokens:    tokens,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries a bearer token for the admin routes
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// SessionResponse describes the caller of an admin request
type SessionResponse struct {
	Subject  string `json:"subject"`
	Provider string `json:"provider"`
}

// login exchanges the admin email and password for a token
// @Summary Admin login
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body loginRequest true "Credentials"
// @Success 200 {object} LoginResponse "Token"
// @Failure 401 {object} ErrorResponse "Invalid credentials"
// @Router /auth/login [post]
func (h authHandler) login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.tokens == nil || !h.admin.Enabled() {
			h.responder.WriteError(w, errs.NewServiceUnavailableError("password login"))
			return
		}

		var req loginRequest
		if err := readJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		subject, err := h.admin.Check(req.Email, req.Password)
		if err != nil {
			h.logger.Warn().Str("remote_addr", remoteHost(r)).Msg("Failed admin login")
			h.responder.WriteError(w, err)
			return
		}

		token, expiresAt, err := h.tokens.Generate(subject)
		if err != nil {
			h.responder.WriteError(w, errs.NewInternalErrorWithCause("failed to issue token", err))
			return
		}

		h.logger.Info().Str("subject", subject).Msg("Admin logged in")
		h.responder.WriteJSON(w, LoginResponse{Token: token, ExpiresAt: expiresAt})
	}
}

// session returns who the admin token belongs to
// @Summary Current admin session
// @Tags Auth
// @Produce json
// @Success 200 {object} SessionResponse "Session"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /admin/session [get]
func (h authHandler) session() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subject, ok := ctxGetSubject(r.Context())
		if !ok {
			h.responder.WriteError(w, errs.NewMissingTokenError())
			return
		}
		h.responder.WriteJSON(w, SessionResponse{Subject: subject.ID, Provider: subject.Provider})
	}
}
