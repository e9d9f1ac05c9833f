package models

import "time"

// Sentiment is the label attached to a feedback entry.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// Valid reports whether s is a known label.
func (s Sentiment) Valid() bool {
	switch s {
	case SentimentPositive, SentimentNeutral, SentimentNegative:
		return true
	}
	return false
}

// Feedback is audience or stakeholder feedback on a campaign, optionally
// attached to one content item.
type Feedback struct {
	ID             int64     `json:"id" db:"id"`
	CampaignID     int64     `json:"campaign_id" db:"campaign_id"`
	ContentID      *int64    `json:"content_id,omitempty" db:"content_id"`
	SubmittedBy    *int64    `json:"submitted_by,omitempty" db:"submitted_by"`
	Source         string    `json:"source" db:"source"`
	Body           string    `json:"body" db:"body"`
	Sentiment      Sentiment `json:"sentiment" db:"sentiment"`
	SentimentScore float64   `json:"sentiment_score" db:"sentiment_score"`
	Classifier     string    `json:"classifier" db:"classifier"`
	PIIRedacted    bool      `json:"pii_redacted" db:"pii_redacted"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// TableName returns the table name for the Feedback model
func (Feedback) TableName() string {
	return "feedback"
}
