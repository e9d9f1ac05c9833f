package handlers

import (
	"context"
	"net/http"

	"github.com/upb/campaign-hub/models"
	"github.com/upb/campaign-hub/services"
	"github.com/upb/campaign-hub/utils"
	"go.uber.org/zap"
)

// AuditLogReader lists stored audit entries
type AuditLogReader interface {
	List(ctx context.Context, filter models.AuditFilter) ([]*models.AuditLog, error)
}

// AuditHandler serves GET /api/v1/audit/logs
type AuditHandler struct {
	audit  AuditLogReader
	logger *zap.Logger
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(audit AuditLogReader, logger *zap.Logger) *AuditHandler {
	return &AuditHandler{
		audit:  audit,
		logger: logger,
	}
}

// HandleList lists audit entries, newest first, filtered by campaign_id and action.
func (h *AuditHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit, offset := utils.ParsePagination(r)
	filter := models.AuditFilter{
		Action: models.AuditAction(r.URL.Query().Get("action")),
		Limit:  limit,
		Offset: offset,
	}
	if raw := r.URL.Query().Get("campaign_id"); raw != "" {
		id, err := utils.ParseID(raw)
		if err != nil {
			_ = utils.WriteBadRequest(w, "Invalid campaign_id", nil)
			return
		}
		filter.CampaignID = &id
	}

	logs, err := h.audit.List(r.Context(), filter)
	if err != nil {
		HandleServiceError(w, r, services.ErrDatabaseError.Wrap(err), h.logger)
		return
	}
	if logs == nil {
		logs = []*models.AuditLog{}
	}
	_ = utils.WriteList(w, logs, limit, offset)
}
