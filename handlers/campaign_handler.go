package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/upb/campaign-hub/middleware"
	"github.com/upb/campaign-hub/models"
	"github.com/upb/campaign-hub/rbac"
	"github.com/upb/campaign-hub/services/campaign"
	"github.com/upb/campaign-hub/utils"
	"go.uber.org/zap"
)

// CampaignService defines the campaign operations the handler needs
type CampaignService interface {
	Create(ctx context.Context, creatorID int64, in campaign.CreateInput) (*models.Campaign, error)
	List(ctx context.Context, userID int64, systemRoles rbac.RoleSet, limit, offset int) ([]*models.Campaign, error)
	Get(ctx context.Context, id int64) (*models.Campaign, error)
	Update(ctx context.Context, id int64, in campaign.UpdateInput) (*models.Campaign, error)
	Delete(ctx context.Context, actorID *int64, id int64) error
	LinkChannel(ctx context.Context, id int64, channelID string) (*models.Campaign, error)
	Members(ctx context.Context, campaignID int64) ([]*models.CampaignMember, error)
	AddMember(ctx context.Context, actorID *int64, actorRoles rbac.RoleSet, campaignID, userID int64, role string) error
	RemoveMember(ctx context.Context, actorID *int64, actorRoles rbac.RoleSet, campaignID, userID int64, role string) error
}

// CreateCampaignRequest represents a request to create a campaign
type CreateCampaignRequest struct {
	Name        string     `json:"name" validate:"required,max=200"`
	Description string     `json:"description" validate:"max=5000"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	Budget      *float64   `json:"budget,omitempty" validate:"omitempty,gte=0"`
}

// UpdateCampaignRequest represents a partial campaign update
type UpdateCampaignRequest struct {
	campaignRef
	Name        *string    `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=5000"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	Budget      *float64   `json:"budget,omitempty" validate:"omitempty,gte=0"`
}

// MemberRequest names one (user, role) membership
type MemberRequest struct {
	campaignRef
	UserID int64  `json:"user_id" validate:"required,gt=0"`
	Role   string `json:"role" validate:"required,campaign_role"`
}

// LinkChannelRequest sets or clears the campaign's YouTube channel
type LinkChannelRequest struct {
	campaignRef
	ChannelID string `json:"channel_id" validate:"max=64"`
}

// CampaignHandler handles campaign and membership requests
type CampaignHandler struct {
	campaigns CampaignService
	logger    *zap.Logger
}

// NewCampaignHandler creates a new CampaignHandler
func NewCampaignHandler(campaigns CampaignService, logger *zap.Logger) *CampaignHandler {
	return &CampaignHandler{
		campaigns: campaigns,
		logger:    logger,
	}
}

// HandleCreate handles POST /api/v1/campaigns
func (h *CampaignHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	var req CreateCampaignRequest
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	created, err := h.campaigns.Create(r.Context(), userID, campaign.CreateInput{
		Name:        req.Name,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Budget:      req.Budget,
	})
	if err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}
	_ = utils.WriteCreated(w, created)
}

// HandleList handles GET /api/v1/campaigns. Callers without a users row see
// an empty list.
func (h *CampaignHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit, offset := utils.ParsePagination(r)
	res, ok := middleware.GetResolutionFromContext(r.Context())
	if !ok || res.Identity.UserID == nil {
		_ = utils.WriteList(w, []*models.Campaign{}, limit, offset)
		return
	}

	list, err := h.campaigns.List(r.Context(), *res.Identity.UserID, res.Roles, limit, offset)
	if err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}
	if list == nil {
		list = []*models.Campaign{}
	}
	_ = utils.WriteList(w, list, limit, offset)
}

// HandleGet handles GET /api/v1/campaigns/{campaignID}
func (h *CampaignHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := campaignID(w, r)
	if !ok {
		return
	}
	c, err := h.campaigns.Get(r.Context(), id)
	if err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, c)
}

// HandleUpdate handles PATCH /api/v1/campaigns/{campaignID}
func (h *CampaignHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := campaignID(w, r)
	if !ok {
		return
	}
	var req UpdateCampaignRequest
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	c, err := h.campaigns.Update(r.Context(), id, campaign.UpdateInput{
		Name:        req.Name,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Budget:      req.Budget,
	})
	if err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, c)
}

// HandleDelete handles DELETE /api/v1/campaigns/{campaignID}
func (h *CampaignHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := campaignID(w, r)
	if !ok {
		return
	}
	if err := h.campaigns.Delete(r.Context(), middleware.UserIDFromContext(r.Context()), id); err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}
	utils.WriteNoContent(w)
}

// HandleLinkChannel handles PUT /api/v1/campaigns/{campaignID}/channel
func (h *CampaignHandler) HandleLinkChannel(w http.ResponseWriter, r *http.Request) {
	id, ok := campaignID(w, r)
	if !ok {
		return
	}
	var req LinkChannelRequest
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	c, err := h.campaigns.LinkChannel(r.Context(), id, req.ChannelID)
	if err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, c)
}

// HandleListMembers handles GET /api/v1/campaigns/{campaignID}/members
func (h *CampaignHandler) HandleListMembers(w http.ResponseWriter, r *http.Request) {
	id, ok := campaignID(w, r)
	if !ok {
		return
	}
	members, err := h.campaigns.Members(r.Context(), id)
	if err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}
	if members == nil {
		members = []*models.CampaignMember{}
	}
	_ = utils.WriteOK(w, members)
}

// HandleAddMember handles POST /api/v1/campaigns/{campaignID}/members
func (h *CampaignHandler) HandleAddMember(w http.ResponseWriter, r *http.Request) {
	id, ok := campaignID(w, r)
	if !ok {
		return
	}
	var req MemberRequest
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	actor := middleware.UserIDFromContext(r.Context())
	if err := h.campaigns.AddMember(r.Context(), actor, callerRoles(r), id, req.UserID, req.Role); err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}
	_ = utils.WriteCreated(w, map[string]interface{}{
		"campaign_id": id,
		"user_id":     req.UserID,
		"role":        req.Role,
	})
}

// HandleRemoveMember handles DELETE /api/v1/campaigns/{campaignID}/members/{userID}/{role}
func (h *CampaignHandler) HandleRemoveMember(w http.ResponseWriter, r *http.Request) {
	id, ok := campaignID(w, r)
	if !ok {
		return
	}
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	role, err := rbac.ParseCampaignRole(chiParam(r, "role"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid role", map[string]interface{}{"role": chiParam(r, "role")})
		return
	}

	actor := middleware.UserIDFromContext(r.Context())
	if err := h.campaigns.RemoveMember(r.Context(), actor, callerRoles(r), id, userID, string(role)); err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}
	utils.WriteNoContent(w)
}
