package postgres

import (
	"context"
	"fmt"

	"github.com/upb/campaign-hub/models"
	"github.com/upb/campaign-hub/repositories"
	"go.uber.org/zap"
)

const feedbackColumns = `id, campaign_id, content_id, submitted_by, source, body, sentiment, sentiment_score, classifier, pii_redacted, created_at`

// FeedbackRepository implements the repositories.FeedbackRepository interface
type FeedbackRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewFeedbackRepository creates a new feedback repository
func NewFeedbackRepository(db *DB, logger *zap.Logger) repositories.FeedbackRepository {
	return &FeedbackRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a classified feedback entry
func (r *FeedbackRepository) Create(ctx context.Context, fb *models.Feedback) error {
	query := `
		INSERT INTO feedback (campaign_id, content_id, submitted_by, source, body, sentiment, sentiment_score, classifier, pii_redacted, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`

	err := GetExecutor(ctx, r.db).QueryRowContext(ctx, query,
		fb.CampaignID,
		fb.ContentID,
		fb.SubmittedBy,
		fb.Source,
		fb.Body,
		string(fb.Sentiment),
		fb.SentimentScore,
		fb.Classifier,
		fb.PIIRedacted,
		fb.CreatedAt,
	).Scan(&fb.ID)
	if err != nil {
		return fmt.Errorf("failed to create feedback: %w", err)
	}
	return nil
}

// List returns a page of a campaign's feedback, newest first
func (r *FeedbackRepository) List(ctx context.Context, campaignID int64, sentiment *models.Sentiment, limit, offset int) ([]*models.Feedback, error) {
	query := `SELECT ` + feedbackColumns + ` FROM feedback WHERE campaign_id = $1`
	args := []interface{}{campaignID}
	if sentiment != nil {
		args = append(args, string(*sentiment))
		query += fmt.Sprintf(" AND sentiment = $%d", len(args))
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	entries := []*models.Feedback{}
	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	return entries, nil
}

// Delete removes a feedback entry
func (r *FeedbackRepository) Delete(ctx context.Context, campaignID, id int64) error {
	res, err := GetExecutor(ctx, r.db).ExecContext(ctx,
		`DELETE FROM feedback WHERE id = $1 AND campaign_id = $2`, id, campaignID)
	if err != nil {
		return fmt.Errorf("failed to delete feedback: %w", err)
	}
	return expectOneRow(res, "feedback", id)
}
