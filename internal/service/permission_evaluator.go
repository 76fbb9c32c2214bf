package service

import "log/slog"

// Role identifiers routed through the permission evaluator. The hierarchy is
// flat: each role's permission set is total and explicit, with no
// inheritance.
const (
	RolePlatformAdmin = "platform_admin"
	RoleSchoolAdmin   = "school_admin"
	RoleAccountant    = "accountant"
	RoleStaff         = "staff"
)

var rolePermissions = map[string][]string{
	RolePlatformAdmin: {
		"users:global:read",
		"users:global:write",
		"users:school:read",
		"users:school:write",
		"schools:read",
		"schools:write",
		"reports:global:read",
		"reports:school:read",
		"reports:school:write",
		"mfa:self:manage",
	},
	RoleSchoolAdmin: {
		"users:school:read",
		"users:school:write",
		"schools:read",
		"reports:school:read",
		"reports:school:write",
		"mfa:self:manage",
	},
	RoleAccountant: {
		"schools:read",
		"reports:school:read",
		"reports:school:write",
		"mfa:self:manage",
	},
	RoleStaff: {
		"schools:read",
		"reports:school:read",
		"mfa:self:manage",
	},
}

// PermissionEvaluator answers authorization queries against the static
// role table. An unknown role is a configuration defect: it is logged and
// denied, never surfaced as a failure to the caller.
type PermissionEvaluator struct {
	table  map[string]map[string]struct{}
	logger *slog.Logger
}

func NewPermissionEvaluator(logger *slog.Logger) *PermissionEvaluator {
	table := make(map[string]map[string]struct{}, len(rolePermissions))
	for role, perms := range rolePermissions {
		set := make(map[string]struct{}, len(perms))
		for _, p := range perms {
			set[p] = struct{}{}
		}
		table[role] = set
	}
	return &PermissionEvaluator{table: table, logger: logger}
}

func (e *PermissionEvaluator) HasPermission(roleID, permission string) bool {
	set, ok := e.table[roleID]
	if !ok {
		e.logger.Warn("permission check for unknown role, denying", "role", roleID, "permission", permission)
		return false
	}
	_, granted := set[permission]
	return granted
}

// Permissions returns the full permission set for a role, nil for unknown
// roles.
func (e *PermissionEvaluator) Permissions(roleID string) []string {
	perms, ok := rolePermissions[roleID]
	if !ok {
		return nil
	}
	out := make([]string, len(perms))
	copy(out, perms)
	return out
}
