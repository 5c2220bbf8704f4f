package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rpupo63/portfolio-site-backend/analytics"
	"github.com/rpupo63/portfolio-site-backend/auth"
	"github.com/rpupo63/portfolio-site-backend/cache"
	"github.com/rpupo63/portfolio-site-backend/chatbot"
	"github.com/rpupo63/portfolio-site-backend/config"
	"github.com/rpupo63/portfolio-site-backend/database"
	"github.com/rpupo63/portfolio-site-backend/services"
	"github.com/rpupo63/portfolio-site-backend/storage"
	"github.com/rs/zerolog/log"
)

// Dependencies are the collaborators the handlers are built from.
// Blobs, Cache, GitHub and Tokens may be nil when not configured.
type Dependencies struct {
	Database  database.Database
	Blobs     storage.BlobStore
	Cache     cache.Cache
	Notifier  *services.Notifier
	GitHub    GitHubSource
	Bot       *chatbot.Bot
	Analytics *analytics.Service
	Tokens    *auth.TokenService
	Verifier  auth.Verifier
	Admin     *auth.AdminCredentials
}

func (d Dependencies) validate() error {
	switch {
	case d.Database.DB() == nil:
		return errors.New("database is required")
	case d.Bot == nil:
		return errors.New("chatbot is required")
	case d.Analytics == nil:
		return errors.New("analytics service is required")
	case d.Verifier == nil:
		return errors.New("token verifier is required")
	}
	return nil
}

type Server struct {
	*http.Server
	startupTime time.Time
}

func NewServer(c config.Config, deps Dependencies) (Server, error) {
	if err := deps.validate(); err != nil {
		return Server{}, err
	}

	port := config.GetString(c, "PORT", "8080")
	address := fmt.Sprintf("0.0.0.0:%s", port) // Bind to 0.0.0.0 for external access

	startupTime := time.Now()

	router := newRouter(deps, withConfig(c), withStartupTime(startupTime))

	readTimeout := time.Duration(config.GetInt(c, "READ_TIMEOUT_SECONDS", 180)) * time.Second
	writeTimeout := time.Duration(config.GetInt(c, "WRITE_TIMEOUT_SECONDS", 180)) * time.Second
	idleTimeout := time.Duration(config.GetInt(c, "IDLE_TIMEOUT_SECONDS", 180)) * time.Second

	server := &http.Server{
		Addr:         address,
		Handler:      router,
		ReadTimeout:  readTimeout,  // Timeout for reading the entire request
		WriteTimeout: writeTimeout, // Timeout for writing the response
		IdleTimeout:  idleTimeout,  // Timeout for idle connections
	}

	return Server{server, startupTime}, nil
}

type router struct {
	config      config.Config
	startupTime time.Time
}

func withConfig(c config.Config) func(*router) {
	return func(r *router) {
		r.config = c
	}
}

func withStartupTime(startupTime time.Time) func(*router) {
	return func(r *router) {
		r.startupTime = startupTime
	}
}

func newRouter(deps Dependencies, opts ...func(*router)) *chi.Mux {
	var router router
	for _, opt := range opts {
		opt(&router)
	}
	c := router.config

	RegisterMetrics()

	chiRouter := chi.NewRouter()
	chiRouter.Use(LogInternalServerErrors)
	chiRouter.Use(ColoredHTTPLoggingMiddleware(config.GetString(c, "LOG_FORMAT", "") == "console"))
	chiRouter.Use(metricsMiddleware)

	acceptedOrigins := config.GetStrings(c, "ACCEPTED_ORIGINS")
	chiRouter.Use(CORSCheckMiddleware(acceptedOrigins))
	chiRouter.Use(corsMiddleware(acceptedOrigins))

	handlers := initializeHandlers(deps, config.GetString(c, "GITHUB_USERNAME", ""), router.startupTime)
	limiter := newRateLimiter(
		float64(config.GetInt(c, "RATE_LIMIT_RPS", 1)),
		config.GetInt(c, "RATE_LIMIT_BURST", 5),
		parseTrustedProxies(config.GetStrings(c, "TRUSTED_PROXIES")),
	)

	setupOperationalRoutes(chiRouter, metricsHandler())
	setupPublicRoutes(chiRouter, handlers, limiter)
	setupAdminRoutes(chiRouter, handlers, newAuthMiddleware(deps.Verifier))

	return chiRouter
}

func (s Server) Start(errChannel chan<- error) {
	log.Info().Msgf("Server started on: %s", s.Addr)
	errChannel <- s.ListenAndServe()
}

func (s Server) ShutdownGracefully(timeout time.Duration) {
	log.Info().Msg("Gracefully shutting down...")

	gracefullCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Shutdown(gracefullCtx); err != nil {
		log.Error().Msgf("Error shutting down the server: %v", err)
	} else {
		log.Info().Msg("HttpServer gracefully shut down")
	}
}
