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

const assetColumns = `id, campaign_id, uploaded_by, file_name, content_type, size_bytes, storage_key, checksum, created_at`

// AssetRepository implements the repositories.AssetRepository interface
type AssetRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewAssetRepository creates a new asset repository
func NewAssetRepository(db *DB, logger *zap.Logger) repositories.AssetRepository {
	return &AssetRepository{
		db:     db,
		logger: logger,
	}
}

// Create records an uploaded object
func (r *AssetRepository) Create(ctx context.Context, a *models.Asset) error {
	query := `
		INSERT INTO assets (campaign_id, uploaded_by, file_name, content_type, size_bytes, storage_key, checksum, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	err := GetExecutor(ctx, r.db).QueryRowContext(ctx, query,
		a.CampaignID,
		a.UploadedBy,
		a.FileName,
		a.ContentType,
		a.SizeBytes,
		a.StorageKey,
		a.Checksum,
		a.CreatedAt,
	).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("failed to create asset: %w", err)
	}
	return nil
}

// GetByID retrieves an asset within its campaign
func (r *AssetRepository) GetByID(ctx context.Context, campaignID, id int64) (*models.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets WHERE id = $1 AND campaign_id = $2`

	a := &models.Asset{}
	if err := GetExecutor(ctx, r.db).GetContext(ctx, a, query, id, campaignID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("asset %d: %w", id, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}
	return a, nil
}

// List returns every asset of a campaign
func (r *AssetRepository) List(ctx context.Context, campaignID int64) ([]*models.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets WHERE campaign_id = $1 ORDER BY created_at DESC, id DESC`

	assets := []*models.Asset{}
	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &assets, query, campaignID); err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	return assets, nil
}

// Delete removes the asset row; the caller removes the stored object
func (r *AssetRepository) Delete(ctx context.Context, campaignID, id int64) error {
	res, err := GetExecutor(ctx, r.db).ExecContext(ctx,
		`DELETE FROM assets WHERE id = $1 AND campaign_id = $2`, id, campaignID)
	if err != nil {
		return fmt.Errorf("failed to delete asset: %w", err)
	}
	return expectOneRow(res, "asset", id)
}
