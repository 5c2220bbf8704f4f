package database

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/rpupo63/portfolio-site-backend/config"
	"github.com/rpupo63/portfolio-site-backend/errs"
	"github.com/rpupo63/portfolio-site-backend/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"
)

type Database struct {
	db                 *gorm.DB
	blogPostRepo       *BlogPostRepo
	blogTagRepo        *BlogTagRepo
	projectRepo        *ProjectRepo
	contactMessageRepo *ContactMessageRepo
	resumeRepo         *ResumeRepo
	analyticsRepo      *AnalyticsRepo
	reviewRepo         *ReviewRepo
	availabilityRepo   *AvailabilityRepo
}

// New initializes a new Database struct with each repository using a shared GORM database instance
func New(db *gorm.DB) Database {
	return Database{
		db:                 db,
		blogPostRepo:       NewBlogPostRepo(db),
		blogTagRepo:        NewBlogTagRepo(db),
		projectRepo:        NewProjectRepo(db),
		contactMessageRepo: NewContactMessageRepo(db),
		resumeRepo:         NewResumeRepo(db),
		analyticsRepo:      NewAnalyticsRepo(db),
		reviewRepo:         NewReviewRepo(db),
		availabilityRepo:   NewAvailabilityRepo(db),
	}
}

// DSN builds the PostgreSQL connection string. DATABASE_URL wins over the
// individual SUPABASE_DB_* settings.
func DSN(c config.Config) (string, error) {
	if url := config.GetString(c, "DATABASE_URL", ""); url != "" {
		return url, nil
	}

	host := config.GetString(c, "SUPABASE_DB_HOST", "")
	if host == "" {
		return "", errs.NewConfigMissingError("DATABASE_URL or SUPABASE_DB_HOST")
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		host,
		config.GetString(c, "SUPABASE_DB_USER", "postgres"),
		config.GetString(c, "SUPABASE_DB_PASSWORD", ""),
		config.GetString(c, "SUPABASE_DB_NAME", "postgres"),
		config.GetString(c, "SUPABASE_DB_PORT", "5432"),
		config.GetString(c, "SUPABASE_DB_SSLMODE", "require"),
	), nil
}

// Open connects to PostgreSQL and registers read replicas listed in
// DATABASE_REPLICA_URLS.
func Open(c config.Config) (*gorm.DB, error) {
	dsn, err := DSN(c)
	if err != nil {
		return nil, err
	}

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Duration(config.GetInt(c, "DB_SLOW_QUERY_MS", 2000)) * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  config.GetString(c, "LOG_FORMAT", "") == "console",
		},
	)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		PrepareStmt:    false,
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if replicas := config.GetStrings(c, "DATABASE_REPLICA_URLS"); len(replicas) > 0 {
		dialectors := make([]gorm.Dialector, 0, len(replicas))
		for _, replica := range replicas {
			dialectors = append(dialectors, postgres.New(postgres.Config{DSN: replica, PreferSimpleProtocol: true}))
		}
		if err := db.Use(dbresolver.Register(dbresolver.Config{
			Replicas:          dialectors,
			Policy:            dbresolver.RandomPolicy{},
			TraceResolverMode: true,
		})); err != nil {
			return nil, fmt.Errorf("register read replicas: %w", err)
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}
	sqlDB.SetMaxOpenConns(config.GetInt(c, "DB_MAX_OPEN_CONNS", 10))
	sqlDB.SetMaxIdleConns(config.GetInt(c, "DB_MAX_IDLE_CONNS", 5))
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

// Migrate creates or updates every table owned by this service.
func (d Database) Migrate() error {
	return d.db.AutoMigrate(models.All()...)
}

// Ping checks the primary connection.
func (d Database) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (d Database) DB() *gorm.DB {
	return d.db
}

// Accessor methods for each repository

func (d Database) BlogPostRepo() *BlogPostRepo {
	return d.blogPostRepo
}

func (d Database) BlogTagRepo() *BlogTagRepo {
	return d.blogTagRepo
}

func (d Database) ProjectRepo() *ProjectRepo {
	return d.projectRepo
}

func (d Database) ContactMessageRepo() *ContactMessageRepo {
	return d.contactMessageRepo
}

func (d Database) ResumeRepo() *ResumeRepo {
	return d.resumeRepo
}

func (d Database) AnalyticsRepo() *AnalyticsRepo {
	return d.analyticsRepo
}

func (d Database) ReviewRepo() *ReviewRepo {
	return d.reviewRepo
}

func (d Database) AvailabilityRepo() *AvailabilityRepo {
	return d.availabilityRepo
}

// deleteByID deletes one row and reports gorm.ErrRecordNotFound when nothing matched.
func deleteByID(db *gorm.DB, model any, id any) error {
	result := db.Delete(model, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
