package rbac

import "strings"

// Allowed reports whether any role in roles is on the allow-list for action.
// Actions missing from the tables are denied.
func Allowed(roles RoleSet, action Action) bool {
	e, ok := index[action]
	if !ok {
		return false
	}
	for r := range roles.roles {
		if _, hit := e.allowed[r]; hit {
			return true
		}
	}
	return false
}

// AllowedName is Allowed for a raw action name received at a boundary.
func AllowedName(scope Scope, roles RoleSet, name string) bool {
	action, ok := ParseAction(scope, name)
	if !ok {
		return false
	}
	return Allowed(roles, action)
}

// CapabilityName derives the frontend key for an action:
// CREATE_CONTENT becomes canCreateContent.
func CapabilityName(action Action) string {
	var b strings.Builder
	b.WriteString("can")
	for _, word := range strings.Split(string(action), "_") {
		if word == "" {
			continue
		}
		word = strings.ToLower(word)
		b.WriteString(strings.ToUpper(word[:1]))
		b.WriteString(word[1:])
	}
	return b.String()
}

// Capabilities evaluates every action of scope against roles. The result
// always carries one key per defined action.
func Capabilities(scope Scope, roles RoleSet) map[string]bool {
	actions := Actions(scope)
	caps := make(map[string]bool, len(actions))
	for _, a := range actions {
		caps[CapabilityName(a)] = Allowed(roles, a)
	}
	return caps
}
