package audit

import (
	"context"

	"github.com/upb/campaign-hub/models"
)

type requestMetaKey struct{}

// RequestMeta identifies the HTTP request an event originated from.
type RequestMeta struct {
	RequestID string
	IPAddress string
	UserAgent string
}

// WithRequestMeta stores meta in ctx for the Log* helpers.
func WithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, meta)
}

// RequestMetaFromContext returns the meta stored by WithRequestMeta, if any.
func RequestMetaFromContext(ctx context.Context) RequestMeta {
	meta, _ := ctx.Value(requestMetaKey{}).(RequestMeta)
	return meta
}

func (s *AuditService) enqueue(ctx context.Context, log *models.AuditLog) error {
	meta := RequestMetaFromContext(ctx)
	log.WithRequest(meta.RequestID, meta.IPAddress, meta.UserAgent)
	return s.LogEvent(&AuditEvent{Log: log})
}

// LogPermissionDenied records a request the gate refused.
func (s *AuditService) LogPermissionDenied(ctx context.Context, userID *int64, campaignID int64, scope, action string) error {
	log := models.NewAuditLog(models.AuditActionPermissionDenied, "permission").
		WithUser(userID).
		WithCampaign(campaignID).
		WithDetails(map[string]interface{}{
			"scope":  scope,
			"action": action,
		})
	return s.enqueue(ctx, log)
}

// LogContentTransition records a workflow move of item from one status to another.
func (s *AuditService) LogContentTransition(ctx context.Context, userID *int64, item *models.ContentItem, from models.ContentStatus) error {
	details := map[string]interface{}{
		"from": from,
		"to":   item.Status,
	}
	if item.ReviewNotes != nil {
		details["review_notes"] = *item.ReviewNotes
	}
	log := models.NewAuditLog(models.AuditActionContentTransition, "content_item").
		WithUser(userID).
		WithCampaign(item.CampaignID).
		WithResource(item.ID).
		WithDetails(details)
	return s.enqueue(ctx, log)
}

// LogScheduledPublish records an item published by the scheduler.
func (s *AuditService) LogScheduledPublish(ctx context.Context, item models.PublishedItem) error {
	log := models.NewAuditLog(models.AuditActionContentPublished, "content_item").
		WithCampaign(item.CampaignID).
		WithResource(item.ID).
		WithDetails(map[string]interface{}{
			"from": models.ContentStatusApproved,
			"to":   models.ContentStatusPublished,
		})
	return s.enqueue(ctx, log)
}

// LogMemberAdded records a role grant.
func (s *AuditService) LogMemberAdded(ctx context.Context, actorID *int64, campaignID, memberID int64, role string) error {
	log := models.NewAuditLog(models.AuditActionMemberAdded, "campaign_member").
		WithUser(actorID).
		WithCampaign(campaignID).
		WithResource(memberID).
		WithDetails(map[string]interface{}{"role": role})
	return s.enqueue(ctx, log)
}

// LogMemberRemoved records a role revocation.
func (s *AuditService) LogMemberRemoved(ctx context.Context, actorID *int64, campaignID, memberID int64, role string) error {
	log := models.NewAuditLog(models.AuditActionMemberRemoved, "campaign_member").
		WithUser(actorID).
		WithCampaign(campaignID).
		WithResource(memberID).
		WithDetails(map[string]interface{}{"role": role})
	return s.enqueue(ctx, log)
}

// LogCampaignCreated records a new campaign.
func (s *AuditService) LogCampaignCreated(ctx context.Context, actorID *int64, campaign *models.Campaign) error {
	log := models.NewAuditLog(models.AuditActionCampaignCreated, "campaign").
		WithUser(actorID).
		WithCampaign(campaign.ID).
		WithResource(campaign.ID).
		WithDetails(map[string]interface{}{"name": campaign.Name})
	return s.enqueue(ctx, log)
}

// LogCampaignDeleted records a campaign removal.
func (s *AuditService) LogCampaignDeleted(ctx context.Context, actorID *int64, campaignID int64) error {
	log := models.NewAuditLog(models.AuditActionCampaignDeleted, "campaign").
		WithUser(actorID).
		WithCampaign(campaignID).
		WithResource(campaignID)
	return s.enqueue(ctx, log)
}

// LogAssetUploaded records a stored upload.
func (s *AuditService) LogAssetUploaded(ctx context.Context, actorID *int64, asset *models.Asset) error {
	log := models.NewAuditLog(models.AuditActionAssetUploaded, "asset").
		WithUser(actorID).
		WithCampaign(asset.CampaignID).
		WithResource(asset.ID).
		WithDetails(map[string]interface{}{
			"file_name":  asset.FileName,
			"size_bytes": asset.SizeBytes,
		})
	return s.enqueue(ctx, log)
}

// LogAssetDeleted records an asset removal.
func (s *AuditService) LogAssetDeleted(ctx context.Context, actorID *int64, campaignID, assetID int64) error {
	log := models.NewAuditLog(models.AuditActionAssetDeleted, "asset").
		WithUser(actorID).
		WithCampaign(campaignID).
		WithResource(assetID)
	return s.enqueue(ctx, log)
}
