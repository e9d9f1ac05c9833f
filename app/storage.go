package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/upb/campaign-hub/config"
	"github.com/upb/campaign-hub/storage"
	"github.com/upb/campaign-hub/storage/local"
	"github.com/upb/campaign-hub/storage/s3"
)

// NewStorage builds the asset backend named by cfg.Backend.
func NewStorage(ctx context.Context, cfg config.StorageConfig) (storage.Storage, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "local":
		return local.New(cfg.LocalRoot)
	case "s3":
		return s3.New(ctx, s3.Config{
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
		})
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
