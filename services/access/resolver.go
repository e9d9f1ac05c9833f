// Package access resolves the roles an authenticated identity holds in a
// scope. It is the only path from an identity to a RoleSet.
package access

import (
	"context"
	"errors"

	"github.com/upb/campaign-hub/rbac"
	"github.com/upb/campaign-hub/repositories"
	"github.com/upb/campaign-hub/services"
	"go.uber.org/zap"
)

// Identity is the verified caller as established by the auth middleware.
// UserID is nil until the internal user row has been looked up.
type Identity struct {
	ExternalID string `json:"external_id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	UserID     *int64 `json:"user_id,omitempty"`
}

// Resolution is the outcome of one role lookup.
type Resolution struct {
	Identity   Identity
	Scope      rbac.Scope
	CampaignID int64
	Roles      rbac.RoleSet

	// Unresolved is set when the identity has no internal user row.
	Unresolved bool
}

// Resolver maps identities to role sets.
type Resolver struct {
	users       repositories.UserRepository
	memberships repositories.MembershipRepository
	logger      *zap.Logger
}

// NewResolver creates a Resolver.
func NewResolver(users repositories.UserRepository, memberships repositories.MembershipRepository, logger *zap.Logger) *Resolver {
	return &Resolver{
		users:       users,
		memberships: memberships,
		logger:      logger,
	}
}

// ResolveCampaign returns the roles ident holds in campaignID. A missing
// campaign id or an unprovisioned identity yields an empty set, not an error.
func (r *Resolver) ResolveCampaign(ctx context.Context, ident Identity, campaignID int64) (Resolution, error) {
	res := Resolution{Identity: ident, Scope: rbac.ScopeCampaign, CampaignID: campaignID}
	if campaignID <= 0 {
		return res, nil
	}

	ident, ok, err := r.identify(ctx, ident)
	if err != nil {
		return res, err
	}
	res.Identity = ident
	if !ok {
		res.Unresolved = true
		return res, nil
	}

	names, err := r.memberships.CampaignRoles(ctx, *ident.UserID, campaignID)
	if err != nil {
		return res, services.ErrResolutionFailure.Wrap(err)
	}
	res.Roles = r.filter(rbac.ScopeCampaign, names)
	return res, nil
}

// ResolveSystem returns the system roles held by ident.
func (r *Resolver) ResolveSystem(ctx context.Context, ident Identity) (Resolution, error) {
	res := Resolution{Identity: ident, Scope: rbac.ScopeSystem}

	ident, ok, err := r.identify(ctx, ident)
	if err != nil {
		return res, err
	}
	res.Identity = ident
	if !ok {
		res.Unresolved = true
		return res, nil
	}

	names, err := r.memberships.SystemRoles(ctx, *ident.UserID)
	if err != nil {
		return res, services.ErrResolutionFailure.Wrap(err)
	}
	res.Roles = r.filter(rbac.ScopeSystem, names)
	return res, nil
}

// identify fills in ident.UserID. The lookup is skipped when an earlier
// resolution in the same request already did it.
func (r *Resolver) identify(ctx context.Context, ident Identity) (Identity, bool, error) {
	if ident.UserID != nil {
		return ident, true, nil
	}
	if err := ctx.Err(); err != nil {
		return ident, false, services.ErrResolutionFailure.Wrap(err)
	}

	user, err := r.users.GetByExternalID(ctx, ident.ExternalID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			r.logger.Info("identity not provisioned",
				zap.String("external_id", ident.ExternalID),
				zap.String("email", ident.Email),
			)
			return ident, false, nil
		}
		return ident, false, services.ErrResolutionFailure.Wrap(err)
	}

	id := user.ID
	ident.UserID = &id
	if ident.Email == "" {
		ident.Email = user.Email
	}
	if ident.Name == "" {
		ident.Name = user.Name
	}
	return ident, true, nil
}

// filter drops role names that do not belong to scope.
func (r *Resolver) filter(scope rbac.Scope, names []string) rbac.RoleSet {
	kept := make([]string, 0, len(names))
	for _, n := range names {
		var err error
		if scope == rbac.ScopeCampaign {
			_, err = rbac.ParseCampaignRole(n)
		} else {
			_, err = rbac.ParseSystemRole(n)
		}
		if err != nil {
			r.logger.Warn("ignoring unknown role", zap.String("scope", scope.String()), zap.String("role", n))
			continue
		}
		kept = append(kept, n)
	}
	return rbac.NewRoleSet(kept...)
}
