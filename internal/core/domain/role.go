package domain

import (
	"strings"
	"time"
)

// RoleCode is a normalized role identifier. Codes are uppercased once at the
// boundary and compared by value, so call sites never need to worry about
// the case a record or token was written with.
type RoleCode string

// NormalizeRoleCode canonicalizes a raw role string into a RoleCode.
func NormalizeRoleCode(raw string) RoleCode {
	return RoleCode(strings.ToUpper(strings.TrimSpace(raw)))
}

// Built-in role codes seeded at bootstrap.
const (
	RoleSuperAdmin RoleCode = "SUPER_ADMIN"
	RoleAdmin      RoleCode = "ADMIN"
	RoleUser       RoleCode = "USER"
)

// IsSuperAdmin reports whether the code is the distinguished role that
// bypasses all permission checks.
func (c RoleCode) IsSuperAdmin() bool {
	return c == RoleSuperAdmin
}

// Role groups permissions and menus under a unique code. System roles are
// protected from deletion. API keys are embedded subrecords owned by the
// role; they have no independent lifecycle.
type Role struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Code          RoleCode    `json:"code"`
	Description   string      `json:"description"`
	PermissionIDs []string    `json:"permissions"`
	MenuIDs       []string    `json:"menus"`
	APIKeys       []APIKey    `json:"api_keys,omitempty"`
	IsSystem      bool        `json:"is_system"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// APIKey is a long-lived machine credential scoped to its owning role.
// Only the digest of the secret is ever stored; the plaintext exists
// transiently at generation time.
type APIKey struct {
	Key        string    `json:"key"`
	SecretHash string    `json:"-"`
	Remark     string    `json:"remark"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	LastUsedAt time.Time `json:"last_used_at,omitempty"`
}
