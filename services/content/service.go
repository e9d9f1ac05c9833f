// Package content implements the review workflow for campaign content:
// draft -> review -> approved -> published, with review -> draft on reject.
// Every status change is a single conditional write, so concurrent callers
// racing on the same item see exactly one winner.
package content

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/upb/campaign-hub/models"
	"github.com/upb/campaign-hub/repositories"
	"github.com/upb/campaign-hub/services"
	"github.com/upb/campaign-hub/telemetry"
	"go.uber.org/zap"
)

// Transition names a workflow edge.
type Transition string

const (
	TransitionSubmit  Transition = "submit"
	TransitionApprove Transition = "approve"
	TransitionReject  Transition = "reject"
	TransitionPublish Transition = "publish"
)

type edge struct {
	from models.ContentStatus
	to   models.ContentStatus
}

var edges = map[Transition]edge{
	TransitionSubmit:  {models.ContentStatusDraft, models.ContentStatusReview},
	TransitionApprove: {models.ContentStatusReview, models.ContentStatusApproved},
	TransitionReject:  {models.ContentStatusReview, models.ContentStatusDraft},
	TransitionPublish: {models.ContentStatusApproved, models.ContentStatusPublished},
}

// AuditRecorder receives workflow events.
type AuditRecorder interface {
	LogContentTransition(ctx context.Context, userID *int64, item *models.ContentItem, from models.ContentStatus) error
}

// CreateInput is the payload for a new draft.
type CreateInput struct {
	Title   string
	Body    string
	Channel string
}

// UpdateInput carries the draft fields to change; nil leaves a field as is.
type UpdateInput struct {
	Title   *string
	Body    *string
	Channel *string
}

// ContentService handles content items and their workflow.
type ContentService struct {
	contentRepo repositories.ContentRepository
	audit       AuditRecorder
	logger      *zap.Logger
	now         func() time.Time
}

// NewContentService creates a new ContentService instance. audit may be nil.
func NewContentService(contentRepo repositories.ContentRepository, audit AuditRecorder, logger *zap.Logger) *ContentService {
	return &ContentService{
		contentRepo: contentRepo,
		audit:       audit,
		logger:      logger,
		now:         time.Now,
	}
}

// Create stores a new draft authored by authorID.
func (s *ContentService) Create(ctx context.Context, campaignID, authorID int64, in CreateInput) (*models.ContentItem, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, services.ErrInvalidInput.WithDetail("title", "required")
	}

	item := models.NewContentItem(campaignID, authorID, title, in.Body, strings.TrimSpace(in.Channel))
	if err := s.contentRepo.Create(ctx, item); err != nil {
		return nil, services.ErrDatabaseError.Wrap(err)
	}

	s.logger.Info("content created",
		zap.Int64("campaign_id", campaignID),
		zap.Int64("content_id", item.ID),
		zap.Int64("author_id", authorID))
	return item, nil
}

// Get returns one item of campaignID.
func (s *ContentService) Get(ctx context.Context, campaignID, id int64) (*models.ContentItem, error) {
	item, err := s.contentRepo.GetByID(ctx, campaignID, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return item, nil
}

// List returns items of campaignID, optionally only those in status.
func (s *ContentService) List(ctx context.Context, campaignID int64, status *models.ContentStatus, limit, offset int) ([]*models.ContentItem, error) {
	if status != nil && !status.Valid() {
		return nil, services.ErrInvalidInput.WithDetail("status", string(*status))
	}
	items, err := s.contentRepo.List(ctx, campaignID, status, limit, offset)
	if err != nil {
		return nil, services.ErrDatabaseError.Wrap(err)
	}
	return items, nil
}

// UpdateDraft edits title, body or channel. Only drafts are editable.
func (s *ContentService) UpdateDraft(ctx context.Context, campaignID, id int64, in UpdateInput) (*models.ContentItem, error) {
	item, err := s.contentRepo.GetByID(ctx, campaignID, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if item.Status != models.ContentStatusDraft {
		return nil, services.ErrContentNotEditable.WithDetail("current", item.Status)
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, services.ErrInvalidInput.WithDetail("title", "required")
		}
		item.Title = title
	}
	if in.Body != nil {
		item.Body = *in.Body
	}
	if in.Channel != nil {
		item.Channel = strings.TrimSpace(*in.Channel)
	}

	if err := s.contentRepo.UpdateDraft(ctx, item); err != nil {
		if errors.Is(err, repositories.ErrConditionFailed) {
			// Submitted or deleted between the read and the write.
			current, lookupErr := s.contentRepo.GetByID(ctx, campaignID, id)
			if lookupErr != nil {
				return nil, mapNotFound(lookupErr)
			}
			return nil, services.ErrContentNotEditable.WithDetail("current", current.Status)
		}
		return nil, services.ErrDatabaseError.Wrap(err)
	}
	return item, nil
}

// Delete removes an item in any state.
func (s *ContentService) Delete(ctx context.Context, campaignID, id int64) error {
	if err := s.contentRepo.Delete(ctx, campaignID, id); err != nil {
		return mapNotFound(err)
	}
	s.logger.Info("content deleted", zap.Int64("campaign_id", campaignID), zap.Int64("content_id", id))
	return nil
}

// Submit moves a draft into review.
func (s *ContentService) Submit(ctx context.Context, actorID *int64, campaignID, id int64) (*models.ContentItem, error) {
	return s.apply(ctx, actorID, TransitionSubmit, repositories.StatusTransition{CampaignID: campaignID, ContentID: id})
}

// Approve accepts an item in review and records the approver.
func (s *ContentService) Approve(ctx context.Context, actorID *int64, campaignID, id int64) (*models.ContentItem, error) {
	return s.apply(ctx, actorID, TransitionApprove, repositories.StatusTransition{CampaignID: campaignID, ContentID: id, ApprovedBy: actorID})
}

// Reject sends an item in review back to draft with optional notes.
func (s *ContentService) Reject(ctx context.Context, actorID *int64, campaignID, id int64, notes *string) (*models.ContentItem, error) {
	if notes != nil {
		trimmed := strings.TrimSpace(*notes)
		if trimmed == "" {
			notes = nil
		} else {
			notes = &trimmed
		}
	}
	return s.apply(ctx, actorID, TransitionReject, repositories.StatusTransition{CampaignID: campaignID, ContentID: id, ReviewNotes: notes})
}

// Publish publishes an approved item immediately.
func (s *ContentService) Publish(ctx context.Context, actorID *int64, campaignID, id int64) (*models.ContentItem, error) {
	return s.apply(ctx, actorID, TransitionPublish, repositories.StatusTransition{CampaignID: campaignID, ContentID: id, Publish: true})
}

// Apply runs the named transition. Unknown names are a validation error.
func (s *ContentService) Apply(ctx context.Context, actorID *int64, name Transition, campaignID, id int64, notes *string) (*models.ContentItem, error) {
	switch name {
	case TransitionSubmit:
		return s.Submit(ctx, actorID, campaignID, id)
	case TransitionApprove:
		return s.Approve(ctx, actorID, campaignID, id)
	case TransitionReject:
		return s.Reject(ctx, actorID, campaignID, id, notes)
	case TransitionPublish:
		return s.Publish(ctx, actorID, campaignID, id)
	default:
		return nil, services.ErrInvalidInput.WithDetail("transition", string(name))
	}
}

func (s *ContentService) apply(ctx context.Context, actorID *int64, name Transition, t repositories.StatusTransition) (*models.ContentItem, error) {
	e := edges[name]
	t.From, t.To = e.from, e.to

	item, err := s.contentRepo.Transition(ctx, t)
	if err != nil {
		if !errors.Is(err, repositories.ErrConditionFailed) {
			telemetry.ContentTransitionsTotal.WithLabelValues(string(name), "error").Inc()
			return nil, services.ErrDatabaseError.Wrap(err)
		}

		current, lookupErr := s.contentRepo.GetByID(ctx, t.CampaignID, t.ContentID)
		if lookupErr != nil {
			telemetry.ContentTransitionsTotal.WithLabelValues(string(name), "error").Inc()
			return nil, mapNotFound(lookupErr)
		}
		telemetry.ContentTransitionsTotal.WithLabelValues(string(name), "conflict").Inc()
		s.logger.Info("content transition rejected",
			zap.String("transition", string(name)),
			zap.Int64("content_id", t.ContentID),
			zap.String("current", string(current.Status)))
		return nil, services.ErrInvalidStateTransition.
			WithDetail("from", t.From).
			WithDetail("to", t.To).
			WithDetail("current", current.Status)
	}

	telemetry.ContentTransitionsTotal.WithLabelValues(string(name), "ok").Inc()
	s.logger.Info("content transitioned",
		zap.String("transition", string(name)),
		zap.Int64("campaign_id", t.CampaignID),
		zap.Int64("content_id", t.ContentID),
		zap.Int64p("actor_id", actorID))

	if s.audit != nil {
		if err := s.audit.LogContentTransition(ctx, actorID, item, t.From); err != nil {
			s.logger.Warn("failed to queue content transition audit", zap.Error(err))
		}
	}
	return item, nil
}

// Schedule sets the publish time of an approved item. at must be in the future.
func (s *ContentService) Schedule(ctx context.Context, campaignID, id int64, at time.Time) (*models.ContentItem, error) {
	if !at.After(s.now()) {
		return nil, services.ErrInvalidSchedule
	}

	item, err := s.contentRepo.Schedule(ctx, campaignID, id, at.UTC())
	if err != nil {
		if !errors.Is(err, repositories.ErrConditionFailed) {
			return nil, services.ErrDatabaseError.Wrap(err)
		}
		current, lookupErr := s.contentRepo.GetByID(ctx, campaignID, id)
		if lookupErr != nil {
			return nil, mapNotFound(lookupErr)
		}
		return nil, services.ErrInvalidStateTransition.
			WithDetail("required", models.ContentStatusApproved).
			WithDetail("current", current.Status)
	}

	s.logger.Info("content scheduled",
		zap.Int64("campaign_id", campaignID),
		zap.Int64("content_id", id),
		zap.Time("scheduled_at", at))
	return item, nil
}

// PublishDue publishes every approved item whose scheduled time has passed.
func (s *ContentService) PublishDue(ctx context.Context) ([]models.PublishedItem, error) {
	published, err := s.contentRepo.PublishDue(ctx, s.now().UTC())
	if err != nil {
		return nil, services.ErrDatabaseError.Wrap(err)
	}
	return published, nil
}

func mapNotFound(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return services.ErrContentNotFound
	}
	return services.ErrDatabaseError.Wrap(err)
}
