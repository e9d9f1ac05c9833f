package models

import "time"

// ContentStatus is the workflow state of a content item.
type ContentStatus string

const (
	ContentStatusDraft     ContentStatus = "draft"
	ContentStatusReview    ContentStatus = "review"
	ContentStatusApproved  ContentStatus = "approved"
	ContentStatusPublished ContentStatus = "published"
)

// Valid reports whether s is a known status.
func (s ContentStatus) Valid() bool {
	switch s {
	case ContentStatusDraft, ContentStatusReview, ContentStatusApproved, ContentStatusPublished:
		return true
	}
	return false
}

// ContentItem is a piece of campaign copy moving through the review workflow.
type ContentItem struct {
	ID          int64         `json:"id" db:"id"`
	CampaignID  int64         `json:"campaign_id" db:"campaign_id"`
	Title       string        `json:"title" db:"title"`
	Body        string        `json:"body" db:"body"`
	Channel     string        `json:"channel" db:"channel"`
	Status      ContentStatus `json:"status" db:"status"`
	CreatedBy   int64         `json:"created_by" db:"created_by"`
	ApprovedBy  *int64        `json:"approved_by,omitempty" db:"approved_by"`
	ReviewNotes *string       `json:"review_notes,omitempty" db:"review_notes"`
	ScheduledAt *time.Time    `json:"scheduled_at,omitempty" db:"scheduled_at"`
	PublishedAt *time.Time    `json:"published_at,omitempty" db:"published_at"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the ContentItem model
func (ContentItem) TableName() string {
	return "content_items"
}

// NewContentItem creates a draft owned by authorID.
func NewContentItem(campaignID, authorID int64, title, body, channel string) *ContentItem {
	now := time.Now().UTC()
	return &ContentItem{
		CampaignID: campaignID,
		Title:      title,
		Body:       body,
		Channel:    channel,
		Status:     ContentStatusDraft,
		CreatedBy:  authorID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// PublishedItem identifies a row flipped to published by the scheduler.
type PublishedItem struct {
	ID         int64 `db:"id"`
	CampaignID int64 `db:"campaign_id"`
}
