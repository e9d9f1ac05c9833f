// Package asset stores campaign media in object storage with its metadata
// in Postgres.
package asset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/upb/campaign-hub/models"
	"github.com/upb/campaign-hub/repositories"
	"github.com/upb/campaign-hub/services"
	"github.com/upb/campaign-hub/storage"
	"go.uber.org/zap"
)

// MaxAssetSize is the upload cap.
const MaxAssetSize int64 = 25 << 20

// maxNameLength bounds stored file names and content types, in runes.
const maxNameLength = 255

// AuditRecorder receives asset events.
type AuditRecorder interface {
	LogAssetUploaded(ctx context.Context, actorID *int64, asset *models.Asset) error
	LogAssetDeleted(ctx context.Context, actorID *int64, campaignID, assetID int64) error
}

// UploadInput is one file as received.
type UploadInput struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// AssetService handles uploads, listing, URLs and deletion.
type AssetService struct {
	assetRepo repositories.AssetRepository
	store     storage.Storage
	audit     AuditRecorder
	urlTTL    time.Duration
	logger    *zap.Logger
}

// NewAssetService creates a new AssetService instance. audit may be nil.
func NewAssetService(assetRepo repositories.AssetRepository, store storage.Storage, audit AuditRecorder, urlTTL time.Duration, logger *zap.Logger) *AssetService {
	if urlTTL <= 0 {
		urlTTL = 15 * time.Minute
	}
	return &AssetService{
		assetRepo: assetRepo,
		store:     store,
		audit:     audit,
		urlTTL:    urlTTL,
		logger:    logger,
	}
}

// Upload stores the file under campaigns/{id}/{uuid}{ext} and records it.
func (s *AssetService) Upload(ctx context.Context, actorID, campaignID int64, in UploadInput) (*models.Asset, error) {
	name := strings.TrimSpace(filepath.Base(in.FileName))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return nil, services.ErrInvalidInput.WithDetail("file", "file name is required")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return nil, services.ErrInvalidInput.WithDetail("file", fmt.Sprintf("file name must be at most %d characters", maxNameLength))
	}
	if in.Size > MaxAssetSize {
		return nil, tooLarge()
	}

	ext := strings.ToLower(filepath.Ext(name))
	key := path.Join("campaigns", fmt.Sprint(campaignID), uuid.NewString()+ext)
	contentType := in.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		if byExt := mime.TypeByExtension(ext); byExt != "" {
			contentType = byExt
		} else {
			contentType = "application/octet-stream"
		}
	}
	if utf8.RuneCountInString(contentType) > maxNameLength {
		return nil, services.ErrInvalidInput.WithDetail("content_type", fmt.Sprintf("content type must be at most %d characters", maxNameLength))
	}

	result, err := s.store.Upload(ctx, key, io.LimitReader(in.Body, MaxAssetSize+1), in.Size, contentType)
	if err != nil {
		return nil, services.ErrStorageFailed.Wrap(err)
	}
	if result.Size > MaxAssetSize {
		s.removeObject(ctx, key)
		return nil, tooLarge()
	}

	asset := &models.Asset{
		CampaignID:  campaignID,
		UploadedBy:  actorID,
		FileName:    name,
		ContentType: contentType,
		SizeBytes:   result.Size,
		StorageKey:  key,
		Checksum:    result.Checksum,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.assetRepo.Create(ctx, asset); err != nil {
		s.removeObject(ctx, key)
		return nil, services.ErrDatabaseError.Wrap(err)
	}

	s.logger.Info("asset uploaded",
		zap.Int64("campaign_id", campaignID),
		zap.Int64("asset_id", asset.ID),
		zap.Int64("size_bytes", asset.SizeBytes),
		zap.String("content_type", contentType))
	if s.audit != nil {
		if err := s.audit.LogAssetUploaded(ctx, &actorID, asset); err != nil {
			s.logger.Warn("failed to queue asset audit", zap.Error(err))
		}
	}
	return asset, nil
}

// List returns every asset of the campaign.
func (s *AssetService) List(ctx context.Context, campaignID int64) ([]*models.Asset, error) {
	assets, err := s.assetRepo.List(ctx, campaignID)
	if err != nil {
		return nil, services.ErrDatabaseError.Wrap(err)
	}
	return assets, nil
}

// URL returns a time-limited download URL and its expiry.
func (s *AssetService) URL(ctx context.Context, campaignID, id int64) (string, time.Time, error) {
	asset, err := s.get(ctx, campaignID, id)
	if err != nil {
		return "", time.Time{}, err
	}

	url, err := s.store.GetURL(ctx, asset.StorageKey, s.urlTTL)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", time.Time{}, services.ErrAssetNotFound
		}
		return "", time.Time{}, services.ErrStorageFailed.Wrap(err)
	}
	return url, time.Now().UTC().Add(s.urlTTL), nil
}

// Open streams the stored object. Callers close the reader.
func (s *AssetService) Open(ctx context.Context, campaignID, id int64) (*models.Asset, io.ReadCloser, error) {
	asset, err := s.get(ctx, campaignID, id)
	if err != nil {
		return nil, nil, err
	}
	body, err := s.store.Download(ctx, asset.StorageKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, services.ErrAssetNotFound
		}
		return nil, nil, services.ErrStorageFailed.Wrap(err)
	}
	return asset, body, nil
}

// Delete removes the row, then the object. A leftover object is logged, not
// returned, because the asset is already gone for every reader.
func (s *AssetService) Delete(ctx context.Context, actorID *int64, campaignID, id int64) error {
	asset, err := s.get(ctx, campaignID, id)
	if err != nil {
		return err
	}
	if err := s.assetRepo.Delete(ctx, campaignID, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return services.ErrAssetNotFound
		}
		return services.ErrDatabaseError.Wrap(err)
	}
	s.removeObject(ctx, asset.StorageKey)

	s.logger.Info("asset deleted", zap.Int64("campaign_id", campaignID), zap.Int64("asset_id", id))
	if s.audit != nil {
		if err := s.audit.LogAssetDeleted(ctx, actorID, campaignID, id); err != nil {
			s.logger.Warn("failed to queue asset audit", zap.Error(err))
		}
	}
	return nil
}

func (s *AssetService) get(ctx context.Context, campaignID, id int64) (*models.Asset, error) {
	asset, err := s.assetRepo.GetByID(ctx, campaignID, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, services.ErrAssetNotFound
		}
		return nil, services.ErrDatabaseError.Wrap(err)
	}
	return asset, nil
}

func (s *AssetService) removeObject(ctx context.Context, key string) {
	if err := s.store.Delete(ctx, key); err != nil {
		s.logger.Warn("failed to delete stored object", zap.String("key", key), zap.Error(err))
	}
}

func tooLarge() error {
	return services.ErrAssetTooLarge.WithDetail("max_bytes", MaxAssetSize)
}
