package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/upb/campaign-hub/middleware"
	"github.com/upb/campaign-hub/models"
	"github.com/upb/campaign-hub/services/content"
	"github.com/upb/campaign-hub/utils"
	"go.uber.org/zap"
)

// ContentService defines the content operations the handler needs
type ContentService interface {
	Create(ctx context.Context, campaignID, authorID int64, in content.CreateInput) (*models.ContentItem, error)
	Get(ctx context.Context, campaignID, id int64) (*models.ContentItem, error)
	List(ctx context.Context, campaignID int64, status *models.ContentStatus, limit, offset int) ([]*models.ContentItem, error)
	UpdateDraft(ctx context.Context, campaignID, id int64, in content.UpdateInput) (*models.ContentItem, error)
	Delete(ctx context.Context, campaignID, id int64) error
	Apply(ctx context.Context, actorID *int64, name content.Transition, campaignID, id int64, notes *string) (*models.ContentItem, error)
	Schedule(ctx context.Context, campaignID, id int64, at time.Time) (*models.ContentItem, error)
}

// CreateContentRequest represents a request to create a draft
type CreateContentRequest struct {
	campaignRef
	Title   string `json:"title" validate:"required,max=255"`
	Body    string `json:"body"`
	Channel string `json:"channel" validate:"max=50"`
}

// UpdateContentRequest edits a draft
type UpdateContentRequest struct {
	campaignRef
	Title   *string `json:"title,omitempty" validate:"omitempty,min=1,max=255"`
	Body    *string `json:"body,omitempty"`
	Channel *string `json:"channel,omitempty" validate:"omitempty,max=50"`
}

// TransitionRequest carries the optional reviewer notes of a transition
type TransitionRequest struct {
	campaignRef
	Notes *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// ScheduleRequest sets the publish time of an approved item
type ScheduleRequest struct {
	campaignRef
	ScheduledAt time.Time `json:"scheduled_at" validate:"required"`
}

// ContentHandler handles content items and their workflow
type ContentHandler struct {
	content ContentService
	logger  *zap.Logger
}

// NewContentHandler creates a new ContentHandler
func NewContentHandler(content ContentService, logger *zap.Logger) *ContentHandler {
	return &ContentHandler{
		content: content,
		logger:  logger,
	}
}

// HandleCreate handles POST /api/v1/campaigns/{campaignID}/content
func (h *ContentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	cid, ok := campaignID(w, r)
	if !ok {
		return
	}
	authorID, ok := callerID(w, r)
	if !ok {
		return
	}
	var req CreateContentRequest
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	item, err := h.content.Create(r.Context(), cid, authorID, content.CreateInput{
		Title:   req.Title,
		Body:    req.Body,
		Channel: req.Channel,
	})
	if err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}
	_ = utils.WriteCreated(w, item)
}

// HandleList handles GET /api/v1/campaigns/{campaignID}/content?status=
func (h *ContentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	cid, ok := campaignID(w, r)
	if !ok {
		return
	}
	var status *models.ContentStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		s := models.ContentStatus(raw)
		status = &s
	}
	limit, offset := utils.ParsePagination(r)

	items, err := h.content.List(r.Context(), cid, status, limit, offset)
	if err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}
	if items == nil {
		items = []*models.ContentItem{}
	}
	_ = utils.WriteList(w, items, limit, offset)
}

// HandleGet handles GET /api/v1/campaigns/{campaignID}/content/{contentID}
func (h *ContentHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	cid, id, ok := h.ids(w, r)
	if !ok {
		return
	}
	item, err := h.content.Get(r.Context(), cid, id)
	if err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, item)
}

// HandleUpdate handles PATCH /api/v1/campaigns/{campaignID}/content/{contentID}
func (h *ContentHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	cid, id, ok := h.ids(w, r)
	if !ok {
		return
	}
	var req UpdateContentRequest
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	item, err := h.content.UpdateDraft(r.Context(), cid, id, content.UpdateInput{
		Title:   req.Title,
		Body:    req.Body,
		Channel: req.Channel,
	})
	if err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, item)
}

// HandleDelete handles DELETE /api/v1/campaigns/{campaignID}/content/{contentID}
func (h *ContentHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	cid, id, ok := h.ids(w, r)
	if !ok {
		return
	}
	if err := h.content.Delete(r.Context(), cid, id); err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}
	utils.WriteNoContent(w)
}

// HandleTransition returns the handler for one workflow edge, mounted at
// POST /api/v1/campaigns/{campaignID}/content/{contentID}/{transition}.
func (h *ContentHandler) HandleTransition(name content.Transition) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cid, id, ok := h.ids(w, r)
		if !ok {
			return
		}
		var req TransitionRequest
		if r.ContentLength != 0 && !decodeRequest(w, r, &req, h.logger) {
			return
		}

		actor := middleware.UserIDFromContext(r.Context())
		item, err := h.content.Apply(r.Context(), actor, name, cid, id, req.Notes)
		if err != nil {
			HandleServiceError(w, r, err, h.logger)
			return
		}
		_ = utils.WriteOK(w, item)
	}
}

// HandleSchedule handles PUT /api/v1/campaigns/{campaignID}/content/{contentID}/schedule
func (h *ContentHandler) HandleSchedule(w http.ResponseWriter, r *http.Request) {
	cid, id, ok := h.ids(w, r)
	if !ok {
		return
	}
	var req ScheduleRequest
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	item, err := h.content.Schedule(r.Context(), cid, id, req.ScheduledAt)
	if err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, item)
}

func (h *ContentHandler) ids(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	cid, ok := campaignID(w, r)
	if !ok {
		return 0, 0, false
	}
	id, ok := pathID(w, r, "contentID")
	if !ok {
		return 0, 0, false
	}
	return cid, id, true
}
