// Package scheduler runs the periodic job that publishes approved content
// whose scheduled time has passed.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/upb/campaign-hub/models"
	"github.com/upb/campaign-hub/telemetry"
	"go.uber.org/zap"
)

// Publisher publishes every due item in one statement.
type Publisher interface {
	PublishDue(ctx context.Context) ([]models.PublishedItem, error)
}

// PublishRecorder receives one event per published item.
type PublishRecorder interface {
	LogScheduledPublish(ctx context.Context, item models.PublishedItem) error
}

// Scheduler wraps a cron runner around Publisher.
type Scheduler struct {
	publisher Publisher
	audit     PublishRecorder
	logger    *zap.Logger
	spec      string
	timeout   time.Duration

	cron    *cron.Cron
	mu      sync.Mutex
	started bool
}

// NewScheduler creates a scheduler that runs on spec, e.g. "@every 1m" or
// "*/5 * * * *". audit may be nil.
func NewScheduler(publisher Publisher, audit PublishRecorder, spec string, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		publisher: publisher,
		audit:     audit,
		logger:    logger,
		spec:      spec,
		timeout:   30 * time.Second,
	}
}

// Start registers the job and starts the cron runner.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return fmt.Errorf("scheduler already started")
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(s.spec, s.tick); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", s.spec, err)
	}
	c.Start()

	s.cron = c
	s.started = true
	s.logger.Info("publish scheduler started", zap.String("spec", s.spec))
	return nil
}

// Stop stops the runner and waits for a running job up to ctx.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = false
	c := s.cron
	s.mu.Unlock()

	select {
	case <-c.Stop().Done():
		s.logger.Info("publish scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler stop: %w", ctx.Err())
	}
}

func (s *Scheduler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if _, err := s.RunOnce(ctx); err != nil {
		s.logger.Error("scheduled publish failed", zap.Error(err))
	}
}

// RunOnce publishes every due item and reports how many were published.
func (s *Scheduler) RunOnce(ctx context.Context) (int, error) {
	published, err := s.publisher.PublishDue(ctx)
	if err != nil {
		return 0, err
	}
	if len(published) == 0 {
		return 0, nil
	}

	telemetry.ScheduledPublishesTotal.Add(float64(len(published)))
	for _, item := range published {
		s.logger.Info("scheduled content published",
			zap.Int64("campaign_id", item.CampaignID),
			zap.Int64("content_id", item.ID))
		if s.audit != nil {
			if err := s.audit.LogScheduledPublish(ctx, item); err != nil {
				s.logger.Warn("failed to queue scheduled publish audit", zap.Error(err))
			}
		}
	}
	return len(published), nil
}
