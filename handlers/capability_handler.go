package handlers

import (
	"net/http"

	"github.com/upb/campaign-hub/middleware"
	"github.com/upb/campaign-hub/rbac"
	"github.com/upb/campaign-hub/utils"
	"go.uber.org/zap"
)

// CapabilityHandler reports which actions the caller may perform, keyed the
// way the frontend reads them (canCreateContent, ...).
type CapabilityHandler struct {
	logger *zap.Logger
}

// NewCapabilityHandler creates a new CapabilityHandler
func NewCapabilityHandler(logger *zap.Logger) *CapabilityHandler {
	return &CapabilityHandler{logger: logger}
}

// HandleSystem handles GET /api/v1/capabilities
func (h *CapabilityHandler) HandleSystem(w http.ResponseWriter, r *http.Request) {
	h.write(w, r, rbac.ScopeSystem)
}

// HandleCampaign handles GET /api/v1/campaigns/{campaignID}/capabilities
func (h *CapabilityHandler) HandleCampaign(w http.ResponseWriter, r *http.Request) {
	h.write(w, r, rbac.ScopeCampaign)
}

func (h *CapabilityHandler) write(w http.ResponseWriter, r *http.Request, scope rbac.Scope) {
	res, ok := middleware.GetResolutionFromContext(r.Context())
	if !ok || res.Scope != scope {
		h.logger.Error("capability request reached handler without a role resolution",
			zap.String("request_id", middleware.GetRequestIDFromContext(r.Context())),
			zap.String("scope", scope.String()))
		_ = utils.WriteInternalServerError(w, "")
		return
	}
	_ = utils.WriteOK(w, rbac.Capabilities(scope, res.Roles))
}
