// Package campaign manages campaigns and their membership.
package campaign

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/upb/campaign-hub/models"
	"github.com/upb/campaign-hub/rbac"
	"github.com/upb/campaign-hub/repositories"
	"github.com/upb/campaign-hub/services"
	"go.uber.org/zap"
)

// AuditRecorder receives campaign and membership events.
type AuditRecorder interface {
	LogCampaignCreated(ctx context.Context, actorID *int64, campaign *models.Campaign) error
	LogCampaignDeleted(ctx context.Context, actorID *int64, campaignID int64) error
	LogMemberAdded(ctx context.Context, actorID *int64, campaignID, memberID int64, role string) error
	LogMemberRemoved(ctx context.Context, actorID *int64, campaignID, memberID int64, role string) error
}

// CreateInput is the payload for a new campaign.
type CreateInput struct {
	Name        string
	Description string
	StartDate   *time.Time
	EndDate     *time.Time
	Budget      *float64
}

// UpdateInput carries the fields to change; nil leaves a field as is.
type UpdateInput struct {
	Name        *string
	Description *string
	StartDate   *time.Time
	EndDate     *time.Time
	Budget      *float64
}

// CampaignService handles campaigns and members.
type CampaignService struct {
	campaigns   repositories.CampaignRepository
	memberships repositories.MembershipRepository
	users       repositories.UserRepository
	txManager   repositories.TransactionManager
	audit       AuditRecorder
	logger      *zap.Logger
}

// NewCampaignService creates a new CampaignService instance. audit may be nil.
func NewCampaignService(
	campaigns repositories.CampaignRepository,
	memberships repositories.MembershipRepository,
	users repositories.UserRepository,
	txManager repositories.TransactionManager,
	audit AuditRecorder,
	logger *zap.Logger,
) *CampaignService {
	return &CampaignService{
		campaigns:   campaigns,
		memberships: memberships,
		users:       users,
		txManager:   txManager,
		audit:       audit,
		logger:      logger,
	}
}

// Create inserts the campaign and makes creatorID its admin in one transaction.
func (s *CampaignService) Create(ctx context.Context, creatorID int64, in CreateInput) (*models.Campaign, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, services.ErrInvalidInput.WithDetail("name", "required")
	}
	if err := checkDates(in.StartDate, in.EndDate); err != nil {
		return nil, err
	}

	campaign := models.NewCampaign(name, in.Description, creatorID)
	campaign.StartDate = in.StartDate
	campaign.EndDate = in.EndDate
	campaign.Budget = in.Budget

	err := s.txManager.InTransaction(ctx, func(ctx context.Context, _ repositories.Transaction) error {
		if err := s.campaigns.Create(ctx, campaign); err != nil {
			return err
		}
		return s.memberships.AddMember(ctx, campaign.ID, creatorID, string(rbac.RoleAdmin))
	})
	if err != nil {
		return nil, services.ErrTransactionFailed.Wrap(err)
	}

	s.logger.Info("campaign created",
		zap.Int64("campaign_id", campaign.ID),
		zap.Int64("creator_id", creatorID))
	if s.audit != nil {
		if err := s.audit.LogCampaignCreated(ctx, &creatorID, campaign); err != nil {
			s.logger.Warn("failed to queue campaign audit", zap.Error(err))
		}
	}
	return campaign, nil
}

// List returns the campaigns userID belongs to, or every campaign when
// systemRoles grant VIEW_ALL_CAMPAIGNS.
func (s *CampaignService) List(ctx context.Context, userID int64, systemRoles rbac.RoleSet, limit, offset int) ([]*models.Campaign, error) {
	var (
		campaigns []*models.Campaign
		err       error
	)
	if rbac.Allowed(systemRoles, rbac.ActionViewAllCampaigns) {
		campaigns, err = s.campaigns.ListAll(ctx, limit, offset)
	} else {
		campaigns, err = s.campaigns.ListForUser(ctx, userID, limit, offset)
	}
	if err != nil {
		return nil, services.ErrDatabaseError.Wrap(err)
	}
	return campaigns, nil
}

// Get returns one campaign.
func (s *CampaignService) Get(ctx context.Context, id int64) (*models.Campaign, error) {
	campaign, err := s.campaigns.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, services.ErrCampaignNotFound)
	}
	return campaign, nil
}

// Update applies in to the campaign.
func (s *CampaignService) Update(ctx context.Context, id int64, in UpdateInput) (*models.Campaign, error) {
	campaign, err := s.campaigns.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, services.ErrCampaignNotFound)
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, services.ErrInvalidInput.WithDetail("name", "required")
		}
		campaign.Name = name
	}
	if in.Description != nil {
		campaign.Description = *in.Description
	}
	if in.StartDate != nil {
		campaign.StartDate = in.StartDate
	}
	if in.EndDate != nil {
		campaign.EndDate = in.EndDate
	}
	if in.Budget != nil {
		campaign.Budget = in.Budget
	}
	if err := checkDates(campaign.StartDate, campaign.EndDate); err != nil {
		return nil, err
	}

	campaign.UpdatedAt = time.Now().UTC()
	if err := s.campaigns.Update(ctx, campaign); err != nil {
		return nil, mapNotFound(err, services.ErrCampaignNotFound)
	}
	return campaign, nil
}

// Delete removes the campaign; memberships and content cascade.
func (s *CampaignService) Delete(ctx context.Context, actorID *int64, id int64) error {
	if err := s.campaigns.Delete(ctx, id); err != nil {
		return mapNotFound(err, services.ErrCampaignNotFound)
	}

	s.logger.Info("campaign deleted", zap.Int64("campaign_id", id), zap.Int64p("actor_id", actorID))
	if s.audit != nil {
		if err := s.audit.LogCampaignDeleted(ctx, actorID, id); err != nil {
			s.logger.Warn("failed to queue campaign audit", zap.Error(err))
		}
	}
	return nil
}

// LinkChannel sets or clears (empty channelID) the YouTube channel.
func (s *CampaignService) LinkChannel(ctx context.Context, id int64, channelID string) (*models.Campaign, error) {
	var channel *string
	if trimmed := strings.TrimSpace(channelID); trimmed != "" {
		channel = &trimmed
	}
	if err := s.campaigns.SetYouTubeChannel(ctx, id, channel); err != nil {
		return nil, mapNotFound(err, services.ErrCampaignNotFound)
	}
	return s.Get(ctx, id)
}

// Members lists every (user, role) pair of the campaign.
func (s *CampaignService) Members(ctx context.Context, campaignID int64) ([]*models.CampaignMember, error) {
	members, err := s.memberships.ListMembers(ctx, campaignID)
	if err != nil {
		return nil, services.ErrDatabaseError.Wrap(err)
	}
	return members, nil
}

// AddMember grants role to userID. A user may hold several roles.
// actorRoles are the caller's roles in the campaign; only admins grant admin.
func (s *CampaignService) AddMember(ctx context.Context, actorID *int64, actorRoles rbac.RoleSet, campaignID, userID int64, role string) error {
	parsed, err := rbac.ParseCampaignRole(role)
	if err != nil {
		return services.ErrInvalidRole.WithDetail("role", role)
	}
	if err := checkRoleGrant(actorRoles, parsed); err != nil {
		return err
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return mapNotFound(err, services.ErrUserNotFound)
	}

	if err := s.memberships.AddMember(ctx, campaignID, userID, role); err != nil {
		switch {
		case errors.Is(err, repositories.ErrDuplicate):
			return services.ErrDuplicateMember.WithDetail("user_id", userID).WithDetail("role", role)
		case errors.Is(err, repositories.ErrNotFound):
			return services.ErrInvalidRole.WithDetail("role", role)
		default:
			return services.ErrDatabaseError.Wrap(err)
		}
	}

	s.logger.Info("campaign member added",
		zap.Int64("campaign_id", campaignID),
		zap.Int64("user_id", userID),
		zap.String("role", role))
	if s.audit != nil {
		if err := s.audit.LogMemberAdded(ctx, actorID, campaignID, userID, role); err != nil {
			s.logger.Warn("failed to queue membership audit", zap.Error(err))
		}
	}
	return nil
}

// RemoveMember revokes one role from userID. Revoking admin needs an admin
// caller and never removes the campaign's last admin.
func (s *CampaignService) RemoveMember(ctx context.Context, actorID *int64, actorRoles rbac.RoleSet, campaignID, userID int64, role string) error {
	parsed, err := rbac.ParseCampaignRole(role)
	if err != nil {
		return services.ErrInvalidRole.WithDetail("role", role)
	}
	if err := checkRoleGrant(actorRoles, parsed); err != nil {
		return err
	}

	err = s.txManager.InTransaction(ctx, func(ctx context.Context, _ repositories.Transaction) error {
		if parsed == rbac.RoleAdmin {
			// Row locks serialize concurrent admin removals.
			holders, err := s.memberships.RoleHolders(ctx, campaignID, role)
			if err != nil {
				return services.ErrDatabaseError.Wrap(err)
			}
			if len(holders) == 1 && holders[0] == userID {
				return services.ErrLastAdmin.WithDetail("user_id", userID)
			}
		}
		if err := s.memberships.RemoveMember(ctx, campaignID, userID, role); err != nil {
			return mapNotFound(err, services.ErrMemberNotFound)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("campaign member removed",
		zap.Int64("campaign_id", campaignID),
		zap.Int64("user_id", userID),
		zap.String("role", role))
	if s.audit != nil {
		if err := s.audit.LogMemberRemoved(ctx, actorID, campaignID, userID, role); err != nil {
			s.logger.Warn("failed to queue membership audit", zap.Error(err))
		}
	}
	return nil
}

func checkDates(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return services.ErrInvalidInput.WithDetail("end_date", "must not be before start_date")
	}
	return nil
}

func mapNotFound(err error, notFound *services.DomainError) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return notFound
	}
	return services.ErrDatabaseError.Wrap(err)
}

// checkRoleGrant keeps the admin role in the hands of existing admins.
func checkRoleGrant(actorRoles rbac.RoleSet, role rbac.Role) error {
	if role == rbac.RoleAdmin && !actorRoles.Has(rbac.RoleAdmin) {
		return services.ErrAdminRoleRequired.WithDetail("role", string(role))
	}
	return nil
}
