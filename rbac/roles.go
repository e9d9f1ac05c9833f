// Package rbac holds the static permission tables for campaign and system
// scope and the pure checker evaluated against them. Nothing in this package
// performs I/O; role resolution lives in services/access.
package rbac

import (
	"fmt"
	"sort"
)

// Role is a named tag a user holds in one scope.
type Role string

// Campaign scope roles.
const (
	RoleCreator  Role = "creator"
	RoleEditor   Role = "editor"
	RoleMarketer Role = "marketer"
	RoleManager  Role = "manager"
	RoleAdmin    Role = "admin"
)

// System scope roles.
const (
	RoleMember     Role = "member"
	RoleOrgAdmin   Role = "org_admin"
	RoleSuperAdmin Role = "super_admin"
)

// Scope selects which permission table and which role relation apply.
type Scope int

const (
	ScopeCampaign Scope = iota + 1
	ScopeSystem
)

// String returns the scope label used in logs and metrics.
func (s Scope) String() string {
	switch s {
	case ScopeCampaign:
		return "campaign"
	case ScopeSystem:
		return "system"
	default:
		return "unknown"
	}
}

var (
	campaignRoles = []Role{RoleCreator, RoleEditor, RoleMarketer, RoleManager, RoleAdmin}
	systemRoles   = []Role{RoleMember, RoleOrgAdmin, RoleSuperAdmin}
)

// CampaignRoles returns the campaign role enum in display order.
func CampaignRoles() []Role {
	return append([]Role(nil), campaignRoles...)
}

// SystemRoles returns the system role enum in display order.
func SystemRoles() []Role {
	return append([]Role(nil), systemRoles...)
}

// ParseCampaignRole validates a campaign role name.
func ParseCampaignRole(name string) (Role, error) {
	for _, r := range campaignRoles {
		if string(r) == name {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown campaign role %q", name)
}

// ParseSystemRole validates a system role name.
func ParseSystemRole(name string) (Role, error) {
	for _, r := range systemRoles {
		if string(r) == name {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown system role %q", name)
}

// RoleSet is an immutable set of role names resolved for one user in one scope.
// The zero value is the empty set.
type RoleSet struct {
	roles map[Role]struct{}
}

// NewRoleSet builds a set from raw role names. Duplicates collapse.
func NewRoleSet(names ...string) RoleSet {
	if len(names) == 0 {
		return RoleSet{}
	}
	roles := make(map[Role]struct{}, len(names))
	for _, n := range names {
		roles[Role(n)] = struct{}{}
	}
	return RoleSet{roles: roles}
}

// RolesOf is NewRoleSet for typed roles.
func RolesOf(roles ...Role) RoleSet {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return NewRoleSet(names...)
}

// Has reports whether the set contains role.
func (s RoleSet) Has(role Role) bool {
	_, ok := s.roles[role]
	return ok
}

// Len returns the number of distinct roles.
func (s RoleSet) Len() int {
	return len(s.roles)
}

// Empty reports whether the set holds no roles.
func (s RoleSet) Empty() bool {
	return len(s.roles) == 0
}

// Names returns the role names sorted for stable output.
func (s RoleSet) Names() []string {
	names := make([]string, 0, len(s.roles))
	for r := range s.roles {
		names = append(names, string(r))
	}
	sort.Strings(names)
	return names
}
