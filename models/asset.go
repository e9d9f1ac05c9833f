package models

import "time"

// Asset is an uploaded media file stored in the configured object storage.
type Asset struct {
	ID          int64     `json:"id" db:"id"`
	CampaignID  int64     `json:"campaign_id" db:"campaign_id"`
	UploadedBy  int64     `json:"uploaded_by" db:"uploaded_by"`
	FileName    string    `json:"file_name" db:"file_name"`
	ContentType string    `json:"content_type" db:"content_type"`
	SizeBytes   int64     `json:"size_bytes" db:"size_bytes"`
	StorageKey  string    `json:"-" db:"storage_key"`
	Checksum    string    `json:"checksum" db:"checksum"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// TableName returns the table name for the Asset model
func (Asset) TableName() string {
	return "assets"
}
