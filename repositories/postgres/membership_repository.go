package postgres

import (
	"context"
	"fmt"

	"github.com/upb/campaign-hub/models"
	"github.com/upb/campaign-hub/repositories"
	"go.uber.org/zap"
)

// MembershipRepository implements the repositories.MembershipRepository interface
type MembershipRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewMembershipRepository creates a new membership repository
func NewMembershipRepository(db *DB, logger *zap.Logger) repositories.MembershipRepository {
	return &MembershipRepository{
		db:     db,
		logger: logger,
	}
}

// CampaignRoles returns role names held by userID in campaignID. Both keys
// are in the WHERE clause, so roles from other campaigns never leak in.
func (r *MembershipRepository) CampaignRoles(ctx context.Context, userID, campaignID int64) ([]string, error) {
	query := `
		SELECT r.name
		FROM campaign_members cm
		JOIN roles r ON r.id = cm.role_id
		WHERE cm.user_id = $1 AND cm.campaign_id = $2
	`

	var names []string
	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &names, query, userID, campaignID); err != nil {
		return nil, fmt.Errorf("failed to load campaign roles: %w", err)
	}
	return names, nil
}

// SystemRoles returns the system role names held by userID
func (r *MembershipRepository) SystemRoles(ctx context.Context, userID int64) ([]string, error) {
	query := `
		SELECT sr.name
		FROM user_system_roles usr
		JOIN system_roles sr ON sr.id = usr.system_role_id
		WHERE usr.user_id = $1
	`

	var names []string
	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &names, query, userID); err != nil {
		return nil, fmt.Errorf("failed to load system roles: %w", err)
	}
	return names, nil
}

// AddMember grants role to userID in campaignID
func (r *MembershipRepository) AddMember(ctx context.Context, campaignID, userID int64, role string) error {
	query := `
		INSERT INTO campaign_members (campaign_id, user_id, role_id)
		SELECT $1, $2, r.id FROM roles r WHERE r.name = $3
	`

	res, err := GetExecutor(ctx, r.db).ExecContext(ctx, query, campaignID, userID, role)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("member %d/%s: %w", userID, role, repositories.ErrDuplicate)
		}
		return fmt.Errorf("failed to add member: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("role %q: %w", role, repositories.ErrNotFound)
	}

	r.logger.Debug("campaign member added",
		zap.Int64("campaign_id", campaignID),
		zap.Int64("user_id", userID),
		zap.String("role", role),
	)
	return nil
}

// RemoveMember revokes one role from userID in campaignID
func (r *MembershipRepository) RemoveMember(ctx context.Context, campaignID, userID int64, role string) error {
	query := `
		DELETE FROM campaign_members cm
		USING roles r
		WHERE cm.role_id = r.id AND cm.campaign_id = $1 AND cm.user_id = $2 AND r.name = $3
	`

	res, err := GetExecutor(ctx, r.db).ExecContext(ctx, query, campaignID, userID, role)
	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("member %d/%s: %w", userID, role, repositories.ErrNotFound)
	}
	return nil
}

// ListMembers returns one row per (user, role) in campaignID
func (r *MembershipRepository) ListMembers(ctx context.Context, campaignID int64) ([]*models.CampaignMember, error) {
	query := `
		SELECT cm.campaign_id, cm.user_id, r.name AS role, u.email, u.name, cm.joined_at
		FROM campaign_members cm
		JOIN roles r ON r.id = cm.role_id
		JOIN users u ON u.id = cm.user_id
		WHERE cm.campaign_id = $1
		ORDER BY u.email, r.name
	`

	members := []*models.CampaignMember{}
	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &members, query, campaignID); err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return members, nil
}

// RoleHolders returns the user ids holding role in campaignID, locking their rows
func (r *MembershipRepository) RoleHolders(ctx context.Context, campaignID int64, role string) ([]int64, error) {
	query := `
		SELECT cm.user_id
		FROM campaign_members cm
		JOIN roles r ON r.id = cm.role_id
		WHERE cm.campaign_id = $1 AND r.name = $2
		ORDER BY cm.user_id
		FOR UPDATE OF cm
	`

	ids := []int64{}
	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &ids, query, campaignID, role); err != nil {
		return nil, fmt.Errorf("failed to load role holders: %w", err)
	}
	return ids, nil
}
