package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/opsboard/admin-system/internal/core/domain"
	"github.com/opsboard/admin-system/internal/core/ports"
)

// permissionLabels maps well-known permission codes to operator-friendly
// labels, used when no Permission record names the code.
var permissionLabels = map[string]string{
	"user:view":         "View Users",
	"user:create":       "Create User",
	"user:update":       "Update User",
	"user:delete":       "Delete User",
	"role:view":         "View Roles",
	"role:create":       "Create Role",
	"role:update":       "Update Role",
	"role:delete":       "Delete Role",
	"permission:view":   "View Permissions",
	"permission:create": "Create Permission",
	"permission:update": "Update Permission",
	"permission:delete": "Delete Permission",
	"menu:view":         "View Menus",
	"menu:create":       "Create Menu",
	"menu:update":       "Update Menu",
	"menu:delete":       "Delete Menu",
	"log:view":          "View Operation Logs",
	"dashboard:view":    "View Dashboard",
}

type rbacService struct {
	roles ports.RoleRepository
	perms ports.PermissionRepository
	audit ports.AuditRecorder
	log   zerolog.Logger
}

// NewRBACService returns an Authorizer that re-resolves the Role→Permission
// graph on every check. There is deliberately no caching: revoking a
// permission takes effect immediately for all active sessions, at the cost
// of one extra lookup per protected request.
func NewRBACService(roles ports.RoleRepository, perms ports.PermissionRepository, audit ports.AuditRecorder, log zerolog.Logger) ports.Authorizer {
	return &rbacService{roles: roles, perms: perms, audit: audit, log: log}
}

func (s *rbacService) HasRole(user *domain.User, allowed ...domain.RoleCode) bool {
	if user == nil {
		return false
	}
	code := domain.NormalizeRoleCode(string(user.Role))
	for _, a := range allowed {
		if code == domain.NormalizeRoleCode(string(a)) {
			return true
		}
	}
	return false
}

func (s *rbacService) CheckPermission(ctx context.Context, user *domain.User, required string) error {
	if user == nil {
		return domain.ErrRoleNotFound
	}

	code := domain.NormalizeRoleCode(string(user.Role))
	if code.IsSuperAdmin() {
		return nil
	}

	role, err := s.roles.FindByCode(ctx, code)
	if err != nil {
		// A dangling role code must never grant access.
		s.log.Warn().Str("role", string(code)).Str("user_id", user.ID).Msg("permission check against missing role")
		return domain.ErrRoleNotFound
	}

	granted, err := s.perms.FindByIDs(ctx, role.PermissionIDs)
	if err != nil {
		return domain.ErrAuthorizationUnavailable
	}
	for _, p := range granted {
		if p.Code == required {
			return nil
		}
	}

	if s.audit != nil {
		s.audit.Record(domain.AuditEvent{
			UserID:   user.ID,
			Username: user.Username,
			Action:   "permission_denied",
			Resource: required,
			Outcome:  domain.AuditFailed,
		})
	}
	return &domain.PermissionDeniedError{Code: required, Label: s.label(ctx, required)}
}

// label resolves a human-readable name for a permission code: the stored
// Permission name, then the static synonym table, then the raw code. Lookup
// failures only degrade the label, never the outcome.
func (s *rbacService) label(ctx context.Context, code string) string {
	if perm, err := s.perms.FindByCode(ctx, code); err == nil && perm.Name != "" {
		return perm.Name
	}
	if name, ok := permissionLabels[code]; ok {
		return name
	}
	return code
}
