package models

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the type of action being audited
type AuditAction string

const (
	AuditActionPermissionDenied  AuditAction = "permission_denied"
	AuditActionContentTransition AuditAction = "content_transition"
	AuditActionContentPublished  AuditAction = "content_scheduled_publish"
	AuditActionMemberAdded       AuditAction = "member_added"
	AuditActionMemberRemoved     AuditAction = "member_removed"
	AuditActionCampaignCreated   AuditAction = "campaign_created"
	AuditActionCampaignDeleted   AuditAction = "campaign_deleted"
	AuditActionAssetUploaded     AuditAction = "asset_uploaded"
	AuditActionAssetDeleted      AuditAction = "asset_deleted"
)

// AuditLog represents an audit trail entry
type AuditLog struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	UserID       *int64          `json:"user_id,omitempty" db:"user_id"`
	CampaignID   *int64          `json:"campaign_id,omitempty" db:"campaign_id"`
	Action       AuditAction     `json:"action" db:"action"`
	ResourceType string          `json:"resource_type" db:"resource_type"`
	ResourceID   *string         `json:"resource_id,omitempty" db:"resource_id"`
	Details      json.RawMessage `json:"details,omitempty" db:"details"`
	IPAddress    string          `json:"ip_address" db:"ip_address"`
	UserAgent    string          `json:"user_agent" db:"user_agent"`
	RequestID    string          `json:"request_id" db:"request_id"`
	Timestamp    time.Time       `json:"timestamp" db:"timestamp"`
}

// TableName returns the table name for the AuditLog model
func (AuditLog) TableName() string {
	return "audit_logs"
}

// NewAuditLog creates a new AuditLog instance
func NewAuditLog(action AuditAction, resourceType string) *AuditLog {
	return &AuditLog{
		ID:           uuid.New(),
		Action:       action,
		ResourceType: resourceType,
		Timestamp:    time.Now().UTC(),
	}
}

// WithUser sets the acting user
func (a *AuditLog) WithUser(userID *int64) *AuditLog {
	a.UserID = userID
	return a
}

// WithCampaign sets the campaign the event belongs to
func (a *AuditLog) WithCampaign(campaignID int64) *AuditLog {
	if campaignID > 0 {
		a.CampaignID = &campaignID
	}
	return a
}

// WithResource sets the resource ID
func (a *AuditLog) WithResource(resourceID int64) *AuditLog {
	id := strconv.FormatInt(resourceID, 10)
	a.ResourceID = &id
	return a
}

// WithDetails sets the details
func (a *AuditLog) WithDetails(details interface{}) *AuditLog {
	if data, err := json.Marshal(details); err == nil {
		a.Details = data
	}
	return a
}

// WithRequest sets request metadata
func (a *AuditLog) WithRequest(requestID, ipAddress, userAgent string) *AuditLog {
	a.RequestID = requestID
	a.IPAddress = ipAddress
	a.UserAgent = userAgent
	return a
}

// AuditFilter narrows an audit log listing.
type AuditFilter struct {
	CampaignID *int64
	Action     AuditAction
	Limit      int
	Offset     int
}
