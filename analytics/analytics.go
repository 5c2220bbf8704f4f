package analytics

import (
	"context"
	"encoding/base64"
	"fmt"
	"sort"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rpupo63/portfolio-site-backend/models"
	"golang.org/x/sync/errgroup"
)

const (
	// SampleSize is how many of the newest events summaries are computed over.
	SampleSize = 1000

	anonymousVisitor = "anonymous"
	visitorIDLength  = 32
	liveWindow       = 5 * time.Minute
)

// EventStore is the persistence the service needs
type EventStore interface {
	Add(ctx context.Context, event *models.AnalyticsEvent) error
	Recent(ctx context.Context, limit int) ([]*models.AnalyticsEvent, error)
	Count(ctx context.Context) (int64, error)
	CountSince(ctx context.Context, t time.Time) (int64, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type Service struct {
	store EventStore
	now   func() time.Time
}

func NewService(store EventStore) *Service {
	return &Service{store: store, now: time.Now}
}

// PageView is a tracking request from the browser
type PageView struct {
	PagePath  string `json:"page_path"`
	Referrer  string `json:"referrer"`
	UserAgent string `json:"user_agent"`
}

func (p PageView) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.PagePath, validation.Required, validation.Length(1, 2048)),
		validation.Field(&p.Referrer, validation.Length(0, 2048)),
	)
}

// VisitorID derives a pseudonymous visitor id from a user agent string.
func VisitorID(userAgent string) string {
	if userAgent == "" {
		return anonymousVisitor
	}
	encoded := base64.StdEncoding.EncodeToString([]byte(userAgent))
	if len(encoded) > visitorIDLength {
		encoded = encoded[:visitorIDLength]
	}
	return encoded
}

// Track stores a page view. The error is for logging only, callers never fail the request on it.
func (s *Service) Track(ctx context.Context, view PageView) error {
	view.PagePath = strings.TrimSpace(view.PagePath)
	if err := view.Validate(); err != nil {
		return fmt.Errorf("invalid page view: %w", err)
	}

	event := &models.AnalyticsEvent{
		PagePath:  view.PagePath,
		VisitorID: VisitorID(view.UserAgent),
	}
	if view.UserAgent != "" {
		event.UserAgent = &view.UserAgent
	}
	if view.Referrer != "" {
		event.Referrer = &view.Referrer
	}
	return s.store.Add(ctx, event)
}

type PageCount struct {
	Page  string `json:"page"`
	Count int    `json:"count"`
}

type DateCount struct {
	Date  string `json:"date"`
	Views int    `json:"views"`
}

// Summary is the admin analytics view over the newest SampleSize events
type Summary struct {
	Total       int                      `json:"total"`
	PageViews   map[string]int           `json:"pageViews"`
	RecentViews []*models.AnalyticsEvent `json:"recentViews"`
	TopPages    []PageCount              `json:"topPages"`
	ViewsByDate []DateCount              `json:"viewsByDate"`
}

func (s *Service) Summary(ctx context.Context) (Summary, error) {
	events, err := s.store.Recent(ctx, SampleSize)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(events), nil
}

// Summarize aggregates events that are ordered newest first.
func Summarize(events []*models.AnalyticsEvent) Summary {
	recent := events
	if len(recent) > 10 {
		recent = recent[:10]
	}

	return Summary{
		Total:       len(events),
		PageViews:   countPages(events),
		RecentViews: append([]*models.AnalyticsEvent{}, recent...),
		TopPages:    TopPages(events, 10),
		ViewsByDate: viewsByDate(events, 30),
	}
}

func countPages(events []*models.AnalyticsEvent) map[string]int {
	counts := make(map[string]int)
	for _, e := range events {
		counts[e.PagePath]++
	}
	return counts
}

// TopPages returns the n most viewed paths, ties broken by path.
func TopPages(events []*models.AnalyticsEvent, n int) []PageCount {
	pages := make([]PageCount, 0)
	for page, count := range countPages(events) {
		pages = append(pages, PageCount{Page: page, Count: count})
	}
	sort.Slice(pages, func(i, j int) bool {
		if pages[i].Count != pages[j].Count {
			return pages[i].Count > pages[j].Count
		}
		return pages[i].Page < pages[j].Page
	})
	if len(pages) > n {
		pages = pages[:n]
	}
	return pages
}

// viewsByDate counts events per UTC calendar day and keeps the last days entries.
func viewsByDate(events []*models.AnalyticsEvent, days int) []DateCount {
	counts := make(map[string]int)
	for _, e := range events {
		counts[e.CreatedAt.UTC().Format(time.DateOnly)]++
	}

	byDate := make([]DateCount, 0, len(counts))
	for date, views := range counts {
		byDate = append(byDate, DateCount{Date: date, Views: views})
	}
	sort.Slice(byDate, func(i, j int) bool { return byDate[i].Date < byDate[j].Date })
	if len(byDate) > days {
		byDate = byDate[len(byDate)-days:]
	}
	return byDate
}

// VisitorStats is the public live counter
type VisitorStats struct {
	Current  int64       `json:"current"`
	Today    int64       `json:"today"`
	Total    int64       `json:"total"`
	TopPages []PageCount `json:"topPages"`
}

func (s *Service) VisitorStats(ctx context.Context) (VisitorStats, error) {
	now := s.now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var stats VisitorStats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.Current, err = s.store.CountSince(gctx, now.Add(-liveWindow))
		return err
	})
	g.Go(func() (err error) {
		stats.Today, err = s.store.CountSince(gctx, midnight)
		return err
	})
	g.Go(func() (err error) {
		stats.Total, err = s.store.Count(gctx)
		return err
	})
	g.Go(func() error {
		events, err := s.store.Recent(gctx, SampleSize)
		if err != nil {
			return err
		}
		stats.TopPages = TopPages(events, 5)
		return nil
	})
	if err := g.Wait(); err != nil {
		return VisitorStats{}, err
	}
	return stats, nil
}

// Recent returns the newest events, used by the export.
func (s *Service) Recent(ctx context.Context) ([]*models.AnalyticsEvent, error) {
	return s.store.Recent(ctx, SampleSize)
}
