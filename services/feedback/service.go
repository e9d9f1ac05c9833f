// Package feedback ingests campaign feedback. Bodies are redacted of personal
// data before they are classified or stored.
package feedback

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/upb/campaign-hub/internal/pii"
	"github.com/upb/campaign-hub/models"
	"github.com/upb/campaign-hub/repositories"
	"github.com/upb/campaign-hub/services"
	"github.com/upb/campaign-hub/services/sentiment"
	"github.com/upb/campaign-hub/telemetry"
	"go.uber.org/zap"
)

const (
	// MaxBodyLength bounds a feedback body in characters.
	MaxBodyLength = 5000

	defaultSource = "internal"
)

// SubmitInput is one feedback entry as received.
type SubmitInput struct {
	ContentID *int64
	Source    string
	Body      string
}

// FeedbackService handles feedback ingestion and moderation.
type FeedbackService struct {
	feedbackRepo repositories.FeedbackRepository
	contentRepo  repositories.ContentRepository
	classifier   sentiment.Classifier
	logger       *zap.Logger
}

// NewFeedbackService creates a new FeedbackService instance
func NewFeedbackService(
	feedbackRepo repositories.FeedbackRepository,
	contentRepo repositories.ContentRepository,
	classifier sentiment.Classifier,
	logger *zap.Logger,
) *FeedbackService {
	return &FeedbackService{
		feedbackRepo: feedbackRepo,
		contentRepo:  contentRepo,
		classifier:   classifier,
		logger:       logger,
	}
}

// Submit redacts, classifies and stores one entry.
func (s *FeedbackService) Submit(ctx context.Context, campaignID int64, submittedBy *int64, in SubmitInput) (*models.Feedback, error) {
	body := strings.TrimSpace(in.Body)
	if body == "" {
		return nil, services.ErrInvalidInput.WithDetail("body", "required")
	}
	if utf8.RuneCountInString(body) > MaxBodyLength {
		return nil, services.ErrInvalidInput.WithDetail("body", "too long")
	}

	if in.ContentID != nil {
		if _, err := s.contentRepo.GetByID(ctx, campaignID, *in.ContentID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, services.ErrContentNotFound
			}
			return nil, services.ErrDatabaseError.Wrap(err)
		}
	}

	redacted, found := pii.Redact(body)
	if len(found) > 0 {
		s.logger.Info("personal data redacted from feedback",
			zap.Int64("campaign_id", campaignID),
			zap.Any("types", found))
	}

	verdict, err := s.classifier.Classify(ctx, redacted)
	if err != nil {
		return nil, services.ErrSentimentUnavailable.Wrap(err)
	}

	source := strings.TrimSpace(in.Source)
	if source == "" {
		source = defaultSource
	}

	fb := &models.Feedback{
		CampaignID:     campaignID,
		ContentID:      in.ContentID,
		SubmittedBy:    submittedBy,
		Source:         source,
		Body:           redacted,
		Sentiment:      verdict.Label,
		SentimentScore: verdict.Score,
		Classifier:     verdict.Classifier,
		PIIRedacted:    len(found) > 0,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.feedbackRepo.Create(ctx, fb); err != nil {
		return nil, services.ErrDatabaseError.Wrap(err)
	}

	telemetry.FeedbackIngestedTotal.WithLabelValues(string(fb.Sentiment)).Inc()
	s.logger.Info("feedback ingested",
		zap.Int64("campaign_id", campaignID),
		zap.Int64("feedback_id", fb.ID),
		zap.String("sentiment", string(fb.Sentiment)),
		zap.String("classifier", fb.Classifier))
	return fb, nil
}

// List returns a page of feedback, optionally only one sentiment.
func (s *FeedbackService) List(ctx context.Context, campaignID int64, label *models.Sentiment, limit, offset int) ([]*models.Feedback, error) {
	if label != nil && !label.Valid() {
		return nil, services.ErrInvalidInput.WithDetail("sentiment", string(*label))
	}
	items, err := s.feedbackRepo.List(ctx, campaignID, label, limit, offset)
	if err != nil {
		return nil, services.ErrDatabaseError.Wrap(err)
	}
	return items, nil
}

// Delete removes one entry.
func (s *FeedbackService) Delete(ctx context.Context, campaignID, id int64) error {
	if err := s.feedbackRepo.Delete(ctx, campaignID, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return services.ErrFeedbackNotFound
		}
		return services.ErrDatabaseError.Wrap(err)
	}
	return nil
}
