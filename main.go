package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/portfolio-site-backend/analytics"
	"github.com/rpupo63/portfolio-site-backend/api"
	"github.com/rpupo63/portfolio-site-backend/auth"
	"github.com/rpupo63/portfolio-site-backend/cache"
	"github.com/rpupo63/portfolio-site-backend/chatbot"
	"github.com/rpupo63/portfolio-site-backend/config"
	"github.com/rpupo63/portfolio-site-backend/database"
	"github.com/rpupo63/portfolio-site-backend/models"
	"github.com/rpupo63/portfolio-site-backend/services"
	"github.com/rpupo63/portfolio-site-backend/storage"
)

func main() {
	config.LoadDotEnv()
	c := config.New()
	setupLogger(c)

	log.Info().Msg("Initializing app...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := config.LoadSSMParameters(ctx, c); err != nil {
		log.Fatal().Err(err).Msg("Error loading SSM parameters")
	}

	db, err := database.Open(c)
	if err != nil {
		log.Fatal().Err(err).Msg("Error connecting to database")
	}

	// Test database connection
	var result int
	if err := db.Raw("SELECT 1").Scan(&result).Error; err != nil {
		log.Fatal().Err(err).Msg("Error testing database connection")
	}

	currentDB := database.New(db)

	// If generating models, run generation and exit
	if config.GetBool(c, "GENERATE_MODELS", false) {
		log.Info().Msg("Generating models and query helpers...")
		if err := models.GenerateModels(db, config.GetString(c, "GENERATED_MODELS_PATH", "./generated")); err != nil {
			log.Fatal().Err(err).Msg("Error generating models")
		}
		return
	}

	// If generating column mismatch report, run report and exit
	if config.GetBool(c, "GENERATE_COLUMN_REPORT", false) {
		log.Info().Msg("Generating column mismatch report...")
		reports, err := models.ColumnMismatchReport(db)
		if err != nil {
			log.Fatal().Err(err).Msg("Error building column report")
		}
		models.WriteColumnReport(os.Stdout, reports)
		return
	}

	if config.GetBool(c, "AUTO_MIGRATE", false) {
		if err := currentDB.Migrate(); err != nil {
			log.Fatal().Err(err).Msg("Error migrating database")
		}
		log.Info().Msg("Database migrated")
	}

	var blobs storage.BlobStore
	if store, err := storage.New(ctx, c); err != nil {
		log.Warn().Err(err).Msg("Blob storage not configured, resume uploads disabled")
	} else {
		blobs = store
	}

	responseCache, err := cache.New(ctx, c)
	if err != nil {
		log.Fatal().Err(err).Msg("Error connecting to cache")
	}

	tokens, verifier, err := auth.Setup(c)
	if err != nil {
		log.Fatal().Err(err).Msg("Error configuring authentication")
	}
	admin := auth.NewAdminCredentials(
		config.GetString(c, "ADMIN_EMAIL", ""),
		config.GetString(c, "ADMIN_PASSWORD_HASH", ""),
	)
	if !admin.Enabled() {
		log.Warn().Msg("ADMIN_EMAIL or ADMIN_PASSWORD_HASH not set, password login disabled")
	}

	bot, err := newChatbot(c)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading chatbot")
	}

	analyticsService := analytics.NewService(currentDB.AnalyticsRepo())
	retention, err := analytics.StartRetention(
		analyticsService,
		config.GetString(c, "ANALYTICS_RETENTION_CRON", "@daily"),
		config.GetInt(c, "ANALYTICS_RETENTION_DAYS", 365),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Error scheduling analytics retention")
	}

	server, err := api.NewServer(c, api.Dependencies{
		Database:  currentDB,
		Blobs:     blobs,
		Cache:     responseCache,
		Notifier:  services.NewNotifierFromConfig(c),
		GitHub:    services.NewGitHubClient(context.Background(), config.GetString(c, "GITHUB_TOKEN", ""), responseCache),
		Bot:       bot,
		Analytics: analyticsService,
		Tokens:    tokens,
		Verifier:  verifier,
		Admin:     admin,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing server")
	}

	errChannel := make(chan error, 2)

	go server.Start(errChannel)

	// Listen for interrupt signals to gracefully shutdown the server
	go listenToInterrupt(errChannel)

	fatalErr := <-errChannel
	log.Info().Err(fatalErr).Msg("Closing server")

	server.ShutdownGracefully(config.GetDuration(c, "SHUTDOWN_TIMEOUT", 30*time.Second))
	if retention != nil {
		retention.Stop()
	}
	if closer, ok := responseCache.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing cache")
		}
	}
}

// setupLogger configures the global zerolog logger from LOG_FORMAT and LOG_LEVEL.
func setupLogger(c config.Config) {
	zerolog.TimeFieldFormat = time.RFC3339
	if config.GetString(c, "LOG_FORMAT", "") == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	level, err := zerolog.ParseLevel(strings.ToLower(config.GetString(c, "LOG_LEVEL", "info")))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}

// newChatbot loads the knowledge base and attaches the LLM fallback when an API key is set.
func newChatbot(c config.Config) (*chatbot.Bot, error) {
	knowledge, err := chatbot.LoadKnowledge(config.GetString(c, "CHATBOT_KNOWLEDGE_FILE", ""))
	if err != nil {
		return nil, err
	}

	key := config.GetString(c, "OPENAI_API_KEY", "")
	if key == "" {
		return chatbot.New(knowledge, nil)
	}
	llm, err := chatbot.NewOpenAI(key, config.GetString(c, "OPENAI_MODEL", ""))
	if err != nil {
		return nil, err
	}
	log.Info().Msg("Chatbot LLM fallback enabled")
	return chatbot.New(knowledge, llm)
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-c)
}
