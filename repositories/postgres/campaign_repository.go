package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/upb/campaign-hub/models"
	"github.com/upb/campaign-hub/repositories"
	"go.uber.org/zap"
)

const campaignColumns = `id, name, description, start_date, end_date, budget, youtube_channel_id, created_by, created_at, updated_at`

// CampaignRepository implements the repositories.CampaignRepository interface
type CampaignRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewCampaignRepository creates a new campaign repository
func NewCampaignRepository(db *DB, logger *zap.Logger) repositories.CampaignRepository {
	return &CampaignRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts campaign and fills in its ID
func (r *CampaignRepository) Create(ctx context.Context, c *models.Campaign) error {
	query := `
		INSERT INTO campaigns (name, description, start_date, end_date, budget, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	err := GetExecutor(ctx, r.db).QueryRowContext(ctx, query,
		c.Name,
		c.Description,
		c.StartDate,
		c.EndDate,
		c.Budget,
		c.CreatedBy,
		c.CreatedAt,
		c.UpdatedAt,
	).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("failed to create campaign: %w", err)
	}

	r.logger.Debug("campaign created", zap.Int64("id", c.ID), zap.String("name", c.Name))
	return nil
}

// GetByID retrieves a campaign by ID
func (r *CampaignRepository) GetByID(ctx context.Context, id int64) (*models.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id = $1`

	c := &models.Campaign{}
	if err := GetExecutor(ctx, r.db).GetContext(ctx, c, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("campaign %d: %w", id, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}
	return c, nil
}

// Update writes the editable campaign fields
func (r *CampaignRepository) Update(ctx context.Context, c *models.Campaign) error {
	query := `
		UPDATE campaigns
		SET name = $2, description = $3, start_date = $4, end_date = $5, budget = $6, updated_at = $7
		WHERE id = $1
	`

	res, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		c.ID,
		c.Name,
		c.Description,
		c.StartDate,
		c.EndDate,
		c.Budget,
		c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update campaign: %w", err)
	}
	return expectOneRow(res, "campaign", c.ID)
}

// Delete removes a campaign; memberships, content, feedback and assets cascade
func (r *CampaignRepository) Delete(ctx context.Context, id int64) error {
	res, err := GetExecutor(ctx, r.db).ExecContext(ctx, `DELETE FROM campaigns WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete campaign: %w", err)
	}
	return expectOneRow(res, "campaign", id)
}

// ListForUser returns campaigns where userID holds at least one role
func (r *CampaignRepository) ListForUser(ctx context.Context, userID int64, limit, offset int) ([]*models.Campaign, error) {
	query := `
		SELECT ` + campaignColumns + `
		FROM campaigns c
		WHERE EXISTS (
			SELECT 1 FROM campaign_members cm WHERE cm.campaign_id = c.id AND cm.user_id = $1
		)
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`

	campaigns := []*models.Campaign{}
	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &campaigns, query, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}
	return campaigns, nil
}

// ListAll returns every campaign
func (r *CampaignRepository) ListAll(ctx context.Context, limit, offset int) ([]*models.Campaign, error) {
	query := `
		SELECT ` + campaignColumns + `
		FROM campaigns
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`

	campaigns := []*models.Campaign{}
	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &campaigns, query, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}
	return campaigns, nil
}

// SetYouTubeChannel links or, with nil, unlinks a channel
func (r *CampaignRepository) SetYouTubeChannel(ctx context.Context, id int64, channelID *string) error {
	query := `UPDATE campaigns SET youtube_channel_id = $2, updated_at = NOW() WHERE id = $1`

	res, err := GetExecutor(ctx, r.db).ExecContext(ctx, query, id, channelID)
	if err != nil {
		return fmt.Errorf("failed to link channel: %w", err)
	}
	return expectOneRow(res, "campaign", id)
}

func expectOneRow(res sql.Result, what string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", what, id, repositories.ErrNotFound)
	}
	return nil
}
