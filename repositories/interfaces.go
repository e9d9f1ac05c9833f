package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/upb/campaign-hub/models"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when an insert violates a unique constraint.
	ErrDuplicate = errors.New("record already exists")

	// ErrConditionFailed is returned when a conditional UPDATE matched no row.
	ErrConditionFailed = errors.New("conditional update matched no rows")
)

// TransactionManager manages database transactions
type TransactionManager interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) (Transaction, error)

	// InTransaction runs fn with a context bound to a new transaction.
	// Commits if fn succeeds, rolls back on error.
	InTransaction(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error
}

// Transaction represents a database transaction
type Transaction interface {
	Commit() error
	Rollback() error
	Context() context.Context
}

// UserRepository reads the internal identity mapping.
type UserRepository interface {
	// GetByExternalID maps an external identity to the internal user row.
	GetByExternalID(ctx context.Context, externalID string) (*models.User, error)

	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// MembershipRepository reads and writes the role relations that drive
// permission resolution.
type MembershipRepository interface {
	// CampaignRoles returns the role names userID holds in campaignID only.
	CampaignRoles(ctx context.Context, userID, campaignID int64) ([]string, error)

	// SystemRoles returns the system role names held by userID.
	SystemRoles(ctx context.Context, userID int64) ([]string, error)

	AddMember(ctx context.Context, campaignID, userID int64, role string) error

	RemoveMember(ctx context.Context, campaignID, userID int64, role string) error

	ListMembers(ctx context.Context, campaignID int64) ([]*models.CampaignMember, error)

	// RoleHolders returns the users holding role in campaignID. Inside a
	// transaction the matching rows stay locked until it ends.
	RoleHolders(ctx context.Context, campaignID int64, role string) ([]int64, error)
}

// CampaignRepository handles campaign data operations
type CampaignRepository interface {
	Create(ctx context.Context, campaign *models.Campaign) error
	GetByID(ctx context.Context, id int64) (*models.Campaign, error)
	Update(ctx context.Context, campaign *models.Campaign) error
	Delete(ctx context.Context, id int64) error

	// ListForUser returns campaigns where userID holds at least one role.
	ListForUser(ctx context.Context, userID int64, limit, offset int) ([]*models.Campaign, error)

	ListAll(ctx context.Context, limit, offset int) ([]*models.Campaign, error)

	SetYouTubeChannel(ctx context.Context, id int64, channelID *string) error
}

// StatusTransition is one guarded workflow step.
type StatusTransition struct {
	CampaignID  int64
	ContentID   int64
	From        models.ContentStatus
	To          models.ContentStatus
	ApprovedBy  *int64
	ReviewNotes *string
	Publish     bool
}

// ContentRepository handles content items and their workflow state.
type ContentRepository interface {
	Create(ctx context.Context, item *models.ContentItem) error
	GetByID(ctx context.Context, campaignID, id int64) (*models.ContentItem, error)
	List(ctx context.Context, campaignID int64, status *models.ContentStatus, limit, offset int) ([]*models.ContentItem, error)
	Delete(ctx context.Context, campaignID, id int64) error

	// UpdateDraft rewrites title/body/channel only while the item is a draft.
	// Returns ErrConditionFailed when the row exists in another state or not at all.
	UpdateDraft(ctx context.Context, item *models.ContentItem) error

	// Transition applies t as a single conditional write. Returns
	// ErrConditionFailed when no row was in t.From.
	Transition(ctx context.Context, t StatusTransition) (*models.ContentItem, error)

	// Schedule sets scheduled_at on an approved item.
	Schedule(ctx context.Context, campaignID, id int64, at time.Time) (*models.ContentItem, error)

	// PublishDue publishes every approved item whose scheduled_at is at or before now.
	PublishDue(ctx context.Context, now time.Time) ([]models.PublishedItem, error)
}

// FeedbackRepository handles feedback entries
type FeedbackRepository interface {
	Create(ctx context.Context, fb *models.Feedback) error
	List(ctx context.Context, campaignID int64, sentiment *models.Sentiment, limit, offset int) ([]*models.Feedback, error)
	Delete(ctx context.Context, campaignID, id int64) error
}

// AssetRepository handles asset metadata; bytes live in object storage.
type AssetRepository interface {
	Create(ctx context.Context, asset *models.Asset) error
	GetByID(ctx context.Context, campaignID, id int64) (*models.Asset, error)
	List(ctx context.Context, campaignID int64) ([]*models.Asset, error)
	Delete(ctx context.Context, campaignID, id int64) error
}

// AuditRepository handles audit log data operations
type AuditRepository interface {
	Insert(ctx context.Context, log *models.AuditLog) error
	List(ctx context.Context, filter models.AuditFilter) ([]*models.AuditLog, error)
}

// CampaignStats aggregates one campaign's activity.
type CampaignStats struct {
	ContentByStatus     map[string]int `json:"content_by_status"`
	FeedbackBySentiment map[string]int `json:"feedback_by_sentiment"`
	AverageSentiment    float64        `json:"average_sentiment"`
	AssetCount          int            `json:"asset_count"`
	AssetBytes          int64          `json:"asset_bytes"`
	ScheduledPending    int            `json:"scheduled_pending"`
	MemberCount         int            `json:"member_count"`
}

// SystemStats aggregates across all campaigns.
type SystemStats struct {
	Campaigns int `json:"campaigns" db:"campaigns"`
	Users     int `json:"users" db:"users"`
	Content   int `json:"content" db:"content"`
	Published int `json:"published" db:"published"`
	Feedback  int `json:"feedback" db:"feedback"`
}

// AnalyticsRepository runs read-only aggregate queries.
type AnalyticsRepository interface {
	CampaignStats(ctx context.Context, campaignID int64) (*CampaignStats, error)
	SystemStats(ctx context.Context) (*SystemStats, error)
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Users       UserRepository
	Memberships MembershipRepository
	Campaigns   CampaignRepository
	Content     ContentRepository
	Feedback    FeedbackRepository
	Assets      AssetRepository
	AuditLogs   AuditRepository
	Analytics   AnalyticsRepository
}
