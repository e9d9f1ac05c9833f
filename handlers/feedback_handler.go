package handlers

import (
	"context"
	"net/http"

	"github.com/upb/campaign-hub/middleware"
	"github.com/upb/campaign-hub/models"
	"github.com/upb/campaign-hub/services/feedback"
	"github.com/upb/campaign-hub/utils"
	"go.uber.org/zap"
)

// FeedbackService defines the feedback operations the handler needs
type FeedbackService interface {
	Submit(ctx context.Context, campaignID int64, submittedBy *int64, in feedback.SubmitInput) (*models.Feedback, error)
	List(ctx context.Context, campaignID int64, label *models.Sentiment, limit, offset int) ([]*models.Feedback, error)
	Delete(ctx context.Context, campaignID, id int64) error
}

// SubmitFeedbackRequest represents one feedback entry
type SubmitFeedbackRequest struct {
	campaignRef
	ContentID *int64 `json:"content_id,omitempty" validate:"omitempty,gt=0"`
	Source    string `json:"source" validate:"max=50"`
	Body      string `json:"body" validate:"required"`
}

// FeedbackHandler handles feedback requests
type FeedbackHandler struct {
	feedback FeedbackService
	logger   *zap.Logger
}

// NewFeedbackHandler creates a new FeedbackHandler
func NewFeedbackHandler(feedback FeedbackService, logger *zap.Logger) *FeedbackHandler {
	return &FeedbackHandler{
		feedback: feedback,
		logger:   logger,
	}
}

// HandleSubmit handles POST /api/v1/campaigns/{campaignID}/feedback
func (h *FeedbackHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	cid, ok := campaignID(w, r)
	if !ok {
		return
	}
	var req SubmitFeedbackRequest
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	entry, err := h.feedback.Submit(r.Context(), cid, middleware.UserIDFromContext(r.Context()), feedback.SubmitInput{
		ContentID: req.ContentID,
		Source:    req.Source,
		Body:      req.Body,
	})
	if err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}
	_ = utils.WriteCreated(w, entry)
}

// HandleList handles GET /api/v1/campaigns/{campaignID}/feedback?sentiment=
func (h *FeedbackHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	cid, ok := campaignID(w, r)
	if !ok {
		return
	}
	var label *models.Sentiment
	if raw := r.URL.Query().Get("sentiment"); raw != "" {
		s := models.Sentiment(raw)
		if !s.Valid() {
			_ = utils.WriteBadRequest(w, "Invalid sentiment filter", map[string]interface{}{"sentiment": raw})
			return
		}
		label = &s
	}
	limit, offset := utils.ParsePagination(r)

	entries, err := h.feedback.List(r.Context(), cid, label, limit, offset)
	if err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}
	if entries == nil {
		entries = []*models.Feedback{}
	}
	_ = utils.WriteList(w, entries, limit, offset)
}

// HandleDelete handles DELETE /api/v1/campaigns/{campaignID}/feedback/{feedbackID}
func (h *FeedbackHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	cid, ok := campaignID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "feedbackID")
	if !ok {
		return
	}
	if err := h.feedback.Delete(r.Context(), cid, id); err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}
	utils.WriteNoContent(w)
}
