package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Purge deletes events older than the given number of days.
func (s *Service) Purge(ctx context.Context, days int) (int64, error) {
	if days <= 0 {
		return 0, nil
	}
	cutoff := s.now().UTC().AddDate(0, 0, -days)
	return s.store.DeleteOlderThan(ctx, cutoff)
}

// RetentionJob runs Purge on a cron schedule.
type RetentionJob struct {
	cron *cron.Cron
}

// StartRetention schedules the purge. It returns nil when days is 0.
func StartRetention(s *Service, spec string, days int) (*RetentionJob, error) {
	if days <= 0 {
		log.Info().Msg("Analytics retention disabled")
		return nil, nil
	}

	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		deleted, err := s.Purge(ctx, days)
		if err != nil {
			log.Error().Err(err).Msg("Analytics retention purge failed")
			return
		}
		log.Info().Int64("deleted", deleted).Int("retentionDays", days).Msg("Purged old analytics events")
	})
	if err != nil {
		return nil, fmt.Errorf("schedule analytics retention %q: %w", spec, err)
	}

	c.Start()
	log.Info().Str("schedule", spec).Int("retentionDays", days).Msg("Analytics retention scheduled")
	return &RetentionJob{cron: c}, nil
}

// Stop waits for a running purge to finish.
func (j *RetentionJob) Stop() {
	if j == nil {
		return
	}
	<-j.cron.Stop().Done()
}
