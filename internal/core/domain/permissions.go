package domain

// Permission is a fine-grained capability string, e.g. "users.update".
type Permission string

const (
	// Catch-all marker held by admins; passes every permission check.
	PermAdmin Permission = "admin"

	PermUsersRead   Permission = "users.read"
	PermUsersCreate Permission = "users.create"
	PermUsersUpdate Permission = "users.update"
	PermUsersDelete Permission = "users.delete"

	PermRolesRead   Permission = "roles.read"
	PermRolesCreate Permission = "roles.create"
	PermRolesUpdate Permission = "roles.update"
	PermRolesDelete Permission = "roles.delete"

	PermDashboardRead Permission = "dashboard.read"

	PermProfileRead   Permission = "profile.read"
	PermProfileUpdate Permission = "profile.update"

	PermAnalyticsRead   Permission = "analytics.read"
	PermAnalyticsExport Permission = "analytics.export"

	PermIntegrationsRead       Permission = "integrations.read"
	PermIntegrationsCreate     Permission = "integrations.create"
	PermIntegrationsUpdate     Permission = "integrations.update"
	PermIntegrationsDelete     Permission = "integrations.delete"
	PermIntegrationsAPIKeys    Permission = "integrations.api_keys"
	PermIntegrationsWebhooks   Permission = "integrations.webhooks"
	PermIntegrationsThirdParty Permission = "integrations.third_party"

	PermSettingsRead   Permission = "settings.read"
	PermSettingsUpdate Permission = "settings.update"

	PermSecurityRead     Permission = "security.read"
	PermSecurityAudit    Permission = "security.audit"
	PermSecuritySessions Permission = "security.sessions"
	PermSecurityPolicies Permission = "security.policies"
)

// AllPermissions is the catalog of every capability the portal knows about.
var AllPermissions = []Permission{
	PermUsersRead, PermUsersCreate, PermUsersUpdate, PermUsersDelete,
	PermRolesRead, PermRolesCreate, PermRolesUpdate, PermRolesDelete,
	PermDashboardRead,
	PermProfileRead, PermProfileUpdate,
	PermAnalyticsRead, PermAnalyticsExport,
	PermIntegrationsRead, PermIntegrationsCreate, PermIntegrationsUpdate, PermIntegrationsDelete,
	PermIntegrationsAPIKeys, PermIntegrationsWebhooks, PermIntegrationsThirdParty,
	PermSettingsRead, PermSettingsUpdate,
	PermSecurityRead, PermSecurityAudit, PermSecuritySessions, PermSecurityPolicies,
	PermAdmin,
}

// rolePermissions is the static role→permission table. Lookup data, not code
// branching: the admin wildcard lives in HasPermission as a single early
// return, never as per-permission special cases.
var rolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermAdmin,
		PermUsersRead, PermUsersCreate, PermUsersUpdate, PermUsersDelete,
		PermRolesRead, PermRolesCreate, PermRolesUpdate, PermRolesDelete,
		PermSettingsRead, PermSettingsUpdate,
		PermAnalyticsRead, PermAnalyticsExport,
		PermIntegrationsRead, PermIntegrationsCreate, PermIntegrationsUpdate, PermIntegrationsDelete,
		PermIntegrationsAPIKeys, PermIntegrationsWebhooks, PermIntegrationsThirdParty,
		PermSecurityRead, PermSecurityAudit, PermSecuritySessions, PermSecurityPolicies,
		PermDashboardRead, PermProfileRead, PermProfileUpdate,
	},
	RoleManager: {
		PermUsersRead, PermUsersCreate, PermUsersUpdate,
		PermRolesRead,
		PermAnalyticsRead,
		PermIntegrationsRead,
		PermDashboardRead, PermProfileRead, PermProfileUpdate,
	},
	RoleUser: {
		PermDashboardRead, PermProfileRead, PermProfileUpdate,
	},
	RoleViewer: {
		PermDashboardRead, PermProfileRead,
	},
}

// RolePermissions returns the table entry for a role. Admins get the full
// catalog. The returned slice must not be mutated.
func RolePermissions(r Role) []Permission {
	if r == RoleAdmin {
		return AllPermissions
	}
	return rolePermissions[r]
}

// HasPermission reports whether the user holds perm, either via the admin
// wildcard, the explicit per-user permissions list, or the role table.
func (u *User) HasPermission(perm Permission) bool {
	if u.Role == RoleAdmin {
		return true
	}
	for _, p := range u.Permissions {
		if p == perm {
			return true
		}
	}
	for _, p := range rolePermissions[u.Role] {
		if p == perm {
			return true
		}
	}
	return false
}

// HasRole reports whether the user holds the given role. Admin satisfies any
// role check.
func (u *User) HasRole(r Role) bool {
	return u.Role == r || u.Role == RoleAdmin
}
