package handlers

import (
	"net/http"

	"github.com/upb/campaign-hub/middleware"
	"github.com/upb/campaign-hub/utils"
	"go.uber.org/zap"
)

// MeResponse describes the caller.
type MeResponse struct {
	ExternalID  string   `json:"external_id"`
	Email       string   `json:"email"`
	Name        string   `json:"name"`
	UserID      *int64   `json:"user_id"`
	Provisioned bool     `json:"provisioned"`
	SystemRoles []string `json:"system_roles"`
}

// MeHandler serves GET /api/v1/me
type MeHandler struct {
	logger *zap.Logger
}

// NewMeHandler creates a new MeHandler
func NewMeHandler(logger *zap.Logger) *MeHandler {
	return &MeHandler{logger: logger}
}

// HandleMe returns the identity with its system roles.
func (h *MeHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	res, ok := middleware.GetResolutionFromContext(r.Context())
	if !ok {
		_ = utils.WriteUnauthenticated(w, "")
		return
	}

	_ = utils.WriteOK(w, MeResponse{
		ExternalID:  res.Identity.ExternalID,
		Email:       res.Identity.Email,
		Name:        res.Identity.Name,
		UserID:      res.Identity.UserID,
		Provisioned: !res.Unresolved && res.Identity.UserID != nil,
		SystemRoles: res.Roles.Names(),
	})
}
