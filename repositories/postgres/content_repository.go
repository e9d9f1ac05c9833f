package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/upb/campaign-hub/models"
	"github.com/upb/campaign-hub/repositories"
	"go.uber.org/zap"
)

const contentColumns = `id, campaign_id, title, body, channel, status, created_by, approved_by, review_notes, scheduled_at, published_at, created_at, updated_at`

// ContentRepository implements the repositories.ContentRepository interface.
// Every workflow write is a single UPDATE guarded on the current status, so
// two concurrent requests for the same transition cannot both succeed.
type ContentRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewContentRepository creates a new content repository
func NewContentRepository(db *DB, logger *zap.Logger) repositories.ContentRepository {
	return &ContentRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a content item and fills in its ID
func (r *ContentRepository) Create(ctx context.Context, item *models.ContentItem) error {
	query := `
		INSERT INTO content_items (campaign_id, title, body, channel, status, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	err := GetExecutor(ctx, r.db).QueryRowContext(ctx, query,
		item.CampaignID,
		item.Title,
		item.Body,
		item.Channel,
		string(item.Status),
		item.CreatedBy,
		item.CreatedAt,
		item.UpdatedAt,
	).Scan(&item.ID)
	if err != nil {
		return fmt.Errorf("failed to create content: %w", err)
	}
	return nil
}

// GetByID retrieves a content item within its campaign
func (r *ContentRepository) GetByID(ctx context.Context, campaignID, id int64) (*models.ContentItem, error) {
	query := `SELECT ` + contentColumns + ` FROM content_items WHERE id = $1 AND campaign_id = $2`

	item := &models.ContentItem{}
	if err := GetExecutor(ctx, r.db).GetContext(ctx, item, query, id, campaignID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("content %d: %w", id, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get content: %w", err)
	}
	return item, nil
}

// List returns a page of a campaign's content, optionally filtered by status
func (r *ContentRepository) List(ctx context.Context, campaignID int64, status *models.ContentStatus, limit, offset int) ([]*models.ContentItem, error) {
	query := `SELECT ` + contentColumns + ` FROM content_items WHERE campaign_id = $1`
	args := []interface{}{campaignID}
	if status != nil {
		args = append(args, string(*status))
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY updated_at DESC, id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	items := []*models.ContentItem{}
	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list content: %w", err)
	}
	return items, nil
}

// Delete removes a content item
func (r *ContentRepository) Delete(ctx context.Context, campaignID, id int64) error {
	res, err := GetExecutor(ctx, r.db).ExecContext(ctx,
		`DELETE FROM content_items WHERE id = $1 AND campaign_id = $2`, id, campaignID)
	if err != nil {
		return fmt.Errorf("failed to delete content: %w", err)
	}
	return expectOneRow(res, "content", id)
}

// UpdateDraft rewrites the editable fields of a draft
func (r *ContentRepository) UpdateDraft(ctx context.Context, item *models.ContentItem) error {
	query := `
		UPDATE content_items
		SET title = $3, body = $4, channel = $5, updated_at = NOW()
		WHERE id = $1 AND campaign_id = $2 AND status = 'draft'
		RETURNING updated_at
	`

	err := GetExecutor(ctx, r.db).QueryRowContext(ctx, query,
		item.ID,
		item.CampaignID,
		item.Title,
		item.Body,
		item.Channel,
	).Scan(&item.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return repositories.ErrConditionFailed
		}
		return fmt.Errorf("failed to update content: %w", err)
	}
	return nil
}

// Transition moves an item from t.From to t.To in one statement
func (r *ContentRepository) Transition(ctx context.Context, t repositories.StatusTransition) (*models.ContentItem, error) {
	query := `
		UPDATE content_items
		SET status = $4,
		    approved_by = COALESCE($5, approved_by),
		    review_notes = COALESCE($6, review_notes),
		    published_at = CASE WHEN $7::boolean THEN NOW() ELSE published_at END,
		    updated_at = NOW()
		WHERE id = $1 AND campaign_id = $2 AND status = $3
		RETURNING ` + contentColumns

	item := &models.ContentItem{}
	err := GetExecutor(ctx, r.db).GetContext(ctx, item, query,
		t.ContentID,
		t.CampaignID,
		string(t.From),
		string(t.To),
		t.ApprovedBy,
		t.ReviewNotes,
		t.Publish,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repositories.ErrConditionFailed
		}
		return nil, fmt.Errorf("failed to transition content: %w", err)
	}

	r.logger.Debug("content transitioned",
		zap.Int64("id", t.ContentID),
		zap.String("from", string(t.From)),
		zap.String("to", string(t.To)),
	)
	return item, nil
}

// Schedule sets the publish time of an approved item
func (r *ContentRepository) Schedule(ctx context.Context, campaignID, id int64, at time.Time) (*models.ContentItem, error) {
	query := `
		UPDATE content_items
		SET scheduled_at = $3, updated_at = NOW()
		WHERE id = $1 AND campaign_id = $2 AND status = 'approved'
		RETURNING ` + contentColumns

	item := &models.ContentItem{}
	if err := GetExecutor(ctx, r.db).GetContext(ctx, item, query, id, campaignID, at); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repositories.ErrConditionFailed
		}
		return nil, fmt.Errorf("failed to schedule content: %w", err)
	}
	return item, nil
}

// PublishDue publishes every approved item whose time has come
func (r *ContentRepository) PublishDue(ctx context.Context, now time.Time) ([]models.PublishedItem, error) {
	query := `
		UPDATE content_items
		SET status = 'published', published_at = $1, updated_at = $1
		WHERE status = 'approved' AND scheduled_at IS NOT NULL AND scheduled_at <= $1
		RETURNING id, campaign_id
	`

	published := []models.PublishedItem{}
	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &published, query, now); err != nil {
		return nil, fmt.Errorf("failed to publish scheduled content: %w", err)
	}
	return published, nil
}
