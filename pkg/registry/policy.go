package registry

import "github.com/trafficreg/trafficreg/pkg/permissions"

// Authorization policy for list queries: a caller with view_users (or
// administrator) reads unrestricted; anyone else is scoped to rows related
// to themselves. "Related" spans several foreign-key roles per entity, so
// the scoping is injected as an OR clause at the query level rather than
// by overwriting the caller's explicit filters.

// listScope returns the related-to user ID to inject, or nil when the
// caller may read unrestricted.
func listScope(caller *User) *int64 {
	if caller.Permissions.Allows(permissions.ViewUsers) {
		return nil
	}
	id := caller.ID
	return &id
}

// scopeUserFilter applies the policy to the users list, where "related to
// me" collapses to "is me". An unset user_id filter is forced to the
// caller; an explicit conflicting value yields an empty result set instead
// of silently overriding the caller's request. The boolean reports whether
// the query should run at all.
func scopeUserFilter(caller *User, f UserFilter) (UserFilter, bool) {
	if caller.Permissions.Allows(permissions.ViewUsers) {
		return f, true
	}
	if f.ID == nil {
		id := caller.ID
		f.ID = &id
		return f, true
	}
	if *f.ID != caller.ID {
		return f, false
	}
	return f, true
}
