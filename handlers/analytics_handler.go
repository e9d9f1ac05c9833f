package handlers

import (
	"context"
	"net/http"

	"github.com/upb/campaign-hub/repositories"
	"github.com/upb/campaign-hub/services/analytics"
	"github.com/upb/campaign-hub/utils"
	"go.uber.org/zap"
)

// AnalyticsService defines the reporting operations the handler needs
type AnalyticsService interface {
	Campaign(ctx context.Context, campaignID int64) (*analytics.CampaignReport, error)
	System(ctx context.Context) (*repositories.SystemStats, error)
}

// AnalyticsHandler serves campaign and system analytics
type AnalyticsHandler struct {
	analytics AnalyticsService
	logger    *zap.Logger
}

// NewAnalyticsHandler creates a new AnalyticsHandler
func NewAnalyticsHandler(analytics AnalyticsService, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		analytics: analytics,
		logger:    logger,
	}
}

// HandleCampaign handles GET /api/v1/campaigns/{campaignID}/analytics
func (h *AnalyticsHandler) HandleCampaign(w http.ResponseWriter, r *http.Request) {
	cid, ok := campaignID(w, r)
	if !ok {
		return
	}
	report, err := h.analytics.Campaign(r.Context(), cid)
	if err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, report)
}

// HandleSystem handles GET /api/v1/analytics
func (h *AnalyticsHandler) HandleSystem(w http.ResponseWriter, r *http.Request) {
	stats, err := h.analytics.System(r.Context())
	if err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, stats)
}
