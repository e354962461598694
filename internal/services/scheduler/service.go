// Package scheduler runs the record retention sweep on a cron
// schedule, deleting analysis records older than the configured age.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/censeo/internal/interfaces"
)

// Service implements the retention scheduler
type Service struct {
	storage  interfaces.AnalysisStorage
	events   interfaces.EventService
	cron     *cron.Cron
	logger   arbor.ILogger
	schedule string
	maxAge   time.Duration
	mu       sync.Mutex
	running  bool
}

// NewService creates a retention scheduler. Records older than maxAge
// are deleted each time the schedule fires.
func NewService(storage interfaces.AnalysisStorage, events interfaces.EventService, logger arbor.ILogger, schedule string, maxAge time.Duration) *Service {
	return &Service{
		storage:  storage,
		events:   events,
		cron:     cron.New(),
		logger:   logger,
		schedule: schedule,
		maxAge:   maxAge,
	}
}

// Start registers the sweep and begins the cron loop
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}
	if s.maxAge <= 0 {
		return fmt.Errorf("retention max age must be positive, got %v", s.maxAge)
	}

	if _, err := s.cron.AddFunc(s.schedule, func() {
		if err := s.Sweep(context.Background()); err != nil {
			s.logger.Error().Err(err).Msg("Retention sweep failed")
		}
	}); err != nil {
		return fmt.Errorf("invalid retention schedule %q: %w", s.schedule, err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info().
		Str("schedule", s.schedule).
		Str("max_age", s.maxAge.String()).
		Msg("Retention scheduler started")

	return nil
}

// Sweep deletes records older than the retention window. Exposed so
// operators can trigger it outside the schedule.
func (s *Service) Sweep(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(-s.maxAge)

	deleted, err := s.storage.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to delete expired records: %w", err)
	}

	s.logger.Info().
		Int("deleted", deleted).
		Str("cutoff", cutoff.Format(time.RFC3339)).
		Msg("Retention sweep completed")

	if deleted > 0 && s.events != nil {
		if err := s.events.Publish(ctx, interfaces.Event{
			Type:      interfaces.EventRecordsPruned,
			Timestamp: time.Now().UTC(),
			Payload: map[string]interface{}{
				"deleted": deleted,
				"cutoff":  cutoff.Format(time.RFC3339),
			},
		}); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to publish prune event")
		}
	}

	return nil
}

// Stop halts the cron loop and waits for a running sweep to finish
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.running = false

	s.logger.Info().Msg("Retention scheduler stopped")
}
