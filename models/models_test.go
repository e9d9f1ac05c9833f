package models

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCampaign(t *testing.T) {
	c := NewCampaign("Spring launch", "Q2 push", 9)

	assert.Equal(t, "Spring launch", c.Name)
	assert.Equal(t, int64(9), c.CreatedBy)
	assert.False(t, c.CreatedAt.IsZero())
	assert.Equal(t, c.CreatedAt, c.UpdatedAt)
	assert.Equal(t, "campaigns", c.TableName())
}

func TestNewContentItem_StartsInDraft(t *testing.T) {
	item := NewContentItem(3, 9, "Teaser", "Coming soon", "instagram")

	assert.Equal(t, ContentStatusDraft, item.Status)
	assert.Equal(t, int64(3), item.CampaignID)
	assert.Nil(t, item.ApprovedBy)
	assert.Nil(t, item.PublishedAt)
	assert.Equal(t, "content_items", item.TableName())
}

func TestContentStatus_Valid(t *testing.T) {
	for _, s := range []ContentStatus{ContentStatusDraft, ContentStatusReview, ContentStatusApproved, ContentStatusPublished} {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, ContentStatus("archived").Valid())
}

func TestSentiment_Valid(t *testing.T) {
	assert.True(t, SentimentNegative.Valid())
	assert.False(t, Sentiment("angry").Valid())
}

func TestNewAuditLog(t *testing.T) {
	log := NewAuditLog(AuditActionContentTransition, "content")

	assert.NotEqual(t, uuid.Nil, log.ID)
	assert.Equal(t, AuditActionContentTransition, log.Action)
	assert.False(t, log.Timestamp.IsZero())
	assert.Equal(t, "audit_logs", log.TableName())
}

func TestAuditLog_BuilderMethods(t *testing.T) {
	userID := int64(4)
	log := NewAuditLog(AuditActionPermissionDenied, "campaign").
		WithUser(&userID).
		WithCampaign(12).
		WithResource(55).
		WithRequest("req-1", "10.0.0.1", "curl/8").
		WithDetails(map[string]string{"action": "APPROVE_CONTENT"})

	require.NotNil(t, log.UserID)
	assert.Equal(t, int64(4), *log.UserID)
	require.NotNil(t, log.CampaignID)
	assert.Equal(t, int64(12), *log.CampaignID)
	require.NotNil(t, log.ResourceID)
	assert.Equal(t, "55", *log.ResourceID)
	assert.Equal(t, "req-1", log.RequestID)

	var details map[string]string
	require.NoError(t, json.Unmarshal(log.Details, &details))
	assert.Equal(t, "APPROVE_CONTENT", details["action"])
}

func TestAuditLog_WithCampaignIgnoresZero(t *testing.T) {
	log := NewAuditLog(AuditActionPermissionDenied, "system").WithCampaign(0)
	assert.Nil(t, log.CampaignID)
}
