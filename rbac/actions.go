package rbac

// Action is a gated operation. The set is closed: every Action the core
// understands is declared below, and free-form strings only become Actions
// through ParseAction.
type Action string

// Campaign scope actions.
const (
	ActionViewCampaign    Action = "VIEW_CAMPAIGN"
	ActionUpdateCampaign  Action = "UPDATE_CAMPAIGN"
	ActionDeleteCampaign  Action = "DELETE_CAMPAIGN"
	ActionManageMembers   Action = "MANAGE_MEMBERS"
	ActionCreateContent   Action = "CREATE_CONTENT"
	ActionEditContent     Action = "EDIT_CONTENT"
	ActionDeleteContent   Action = "DELETE_CONTENT"
	ActionSubmitReview    Action = "SUBMIT_REVIEW"
	ActionApproveContent  Action = "APPROVE_CONTENT"
	ActionRejectContent   Action = "REJECT_CONTENT"
	ActionPublishContent  Action = "PUBLISH_CONTENT"
	ActionScheduleContent Action = "SCHEDULE_CONTENT"
	ActionUploadAsset     Action = "UPLOAD_ASSET"
	ActionDeleteAsset     Action = "DELETE_ASSET"
	ActionSubmitFeedback  Action = "SUBMIT_FEEDBACK"
	ActionManageFeedback  Action = "MANAGE_FEEDBACK"
	ActionViewAnalytics   Action = "VIEW_ANALYTICS"
	ActionLinkChannel     Action = "LINK_CHANNEL"
)

// System scope actions.
const (
	ActionCreateCampaign      Action = "CREATE_CAMPAIGN"
	ActionViewAllCampaigns    Action = "VIEW_ALL_CAMPAIGNS"
	ActionManageUsers         Action = "MANAGE_USERS"
	ActionManageSystemRoles   Action = "MANAGE_SYSTEM_ROLES"
	ActionViewSystemAnalytics Action = "VIEW_SYSTEM_ANALYTICS"
	ActionViewAuditLog        Action = "VIEW_AUDIT_LOG"
)

type permission struct {
	action  Action
	allowed []Role
}

// campaignTable is ordered; capability reports follow this order.
var campaignTable = []permission{
	{ActionViewCampaign, []Role{RoleCreator, RoleEditor, RoleMarketer, RoleManager, RoleAdmin}},
	{ActionUpdateCampaign, []Role{RoleManager, RoleAdmin}},
	{ActionDeleteCampaign, []Role{RoleAdmin}},
	{ActionManageMembers, []Role{RoleManager, RoleAdmin}},
	{ActionCreateContent, []Role{RoleCreator, RoleEditor, RoleMarketer, RoleAdmin}},
	{ActionEditContent, []Role{RoleCreator, RoleEditor, RoleAdmin}},
	{ActionDeleteContent, []Role{RoleEditor, RoleManager, RoleAdmin}},
	{ActionSubmitReview, []Role{RoleCreator, RoleEditor, RoleAdmin}},
	{ActionApproveContent, []Role{RoleMarketer, RoleAdmin}},
	{ActionRejectContent, []Role{RoleMarketer, RoleAdmin}},
	{ActionPublishContent, []Role{RoleMarketer, RoleManager, RoleAdmin}},
	{ActionScheduleContent, []Role{RoleMarketer, RoleManager, RoleAdmin}},
	{ActionUploadAsset, []Role{RoleCreator, RoleEditor, RoleMarketer, RoleAdmin}},
	{ActionDeleteAsset, []Role{RoleEditor, RoleManager, RoleAdmin}},
	{ActionSubmitFeedback, []Role{RoleCreator, RoleEditor, RoleMarketer, RoleManager, RoleAdmin}},
	{ActionManageFeedback, []Role{RoleMarketer, RoleManager, RoleAdmin}},
	{ActionViewAnalytics, []Role{RoleMarketer, RoleManager, RoleAdmin}},
	{ActionLinkChannel, []Role{RoleManager, RoleAdmin}},
}

var systemTable = []permission{
	{ActionCreateCampaign, []Role{RoleMember, RoleOrgAdmin, RoleSuperAdmin}},
	{ActionViewAllCampaigns, []Role{RoleOrgAdmin, RoleSuperAdmin}},
	{ActionManageUsers, []Role{RoleOrgAdmin, RoleSuperAdmin}},
	{ActionManageSystemRoles, []Role{RoleSuperAdmin}},
	{ActionViewSystemAnalytics, []Role{RoleOrgAdmin, RoleSuperAdmin}},
	{ActionViewAuditLog, []Role{RoleOrgAdmin, RoleSuperAdmin}},
}

type entry struct {
	scope   Scope
	allowed map[Role]struct{}
}

// index is built once at init and never written afterwards.
var index = buildIndex()

func buildIndex() map[Action]entry {
	idx := make(map[Action]entry, len(campaignTable)+len(systemTable))
	add := func(scope Scope, table []permission) {
		for _, p := range table {
			allowed := make(map[Role]struct{}, len(p.allowed))
			for _, r := range p.allowed {
				allowed[r] = struct{}{}
			}
			idx[p.action] = entry{scope: scope, allowed: allowed}
		}
	}
	add(ScopeCampaign, campaignTable)
	add(ScopeSystem, systemTable)
	return idx
}

// Actions returns every action defined for scope, in table order.
func Actions(scope Scope) []Action {
	var table []permission
	switch scope {
	case ScopeCampaign:
		table = campaignTable
	case ScopeSystem:
		table = systemTable
	default:
		return nil
	}
	out := make([]Action, len(table))
	for i, p := range table {
		out[i] = p.action
	}
	return out
}

// ScopeOf returns the scope an action belongs to.
func ScopeOf(action Action) (Scope, bool) {
	e, ok := index[action]
	return e.scope, ok
}

// ParseAction converts a name received at a boundary into an Action of the
// given scope. Unknown names and names from the other scope are rejected.
func ParseAction(scope Scope, name string) (Action, bool) {
	e, ok := index[Action(name)]
	if !ok || e.scope != scope {
		return "", false
	}
	return Action(name), true
}
