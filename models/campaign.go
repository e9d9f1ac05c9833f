package models

import "time"

// Campaign is the unit of collaboration; every campaign-scoped permission
// is evaluated against memberships of one campaign.
type Campaign struct {
	ID               int64      `json:"id" db:"id"`
	Name             string     `json:"name" db:"name"`
	Description      string     `json:"description" db:"description"`
	StartDate        *time.Time `json:"start_date,omitempty" db:"start_date"`
	EndDate          *time.Time `json:"end_date,omitempty" db:"end_date"`
	Budget           *float64   `json:"budget,omitempty" db:"budget"`
	YouTubeChannelID *string    `json:"youtube_channel_id,omitempty" db:"youtube_channel_id"`
	CreatedBy        int64      `json:"created_by" db:"created_by"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the Campaign model
func (Campaign) TableName() string {
	return "campaigns"
}

// NewCampaign creates a campaign owned by creatorID.
func NewCampaign(name, description string, creatorID int64) *Campaign {
	now := time.Now().UTC()
	return &Campaign{
		Name:        name,
		Description: description,
		CreatedBy:   creatorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// CampaignMember is one (campaign, user, role) row joined with user details.
// A user may appear several times for the same campaign with different roles.
type CampaignMember struct {
	CampaignID int64     `json:"campaign_id" db:"campaign_id"`
	UserID     int64     `json:"user_id" db:"user_id"`
	Role       string    `json:"role" db:"role"`
	Email      string    `json:"email" db:"email"`
	Name       string    `json:"name" db:"name"`
	JoinedAt   time.Time `json:"joined_at" db:"joined_at"`
}
