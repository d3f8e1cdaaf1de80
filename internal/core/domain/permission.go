package domain

import (
	"strings"
	"time"
)

// PermissionType tags what a permission protects.
type PermissionType string

const (
	PermissionTypeMenu   PermissionType = "menu"
	PermissionTypeAction PermissionType = "action"
	PermissionTypeData   PermissionType = "data"
	PermissionTypeSystem PermissionType = "system"
)

// Permission is a grantable capability identified by a unique code in
// "module:action" form, e.g. "user:create".
type Permission struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Code        string         `json:"code"`
	Description string         `json:"description"`
	Type        PermissionType `json:"type"`
	Module      string         `json:"module"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// ModuleKey returns the segment of the code before the first colon, the
// grouping key for the permission tree. A code without a colon is its own
// module key.
func (p Permission) ModuleKey() string {
	if key, _, found := strings.Cut(p.Code, ":"); found && key != "" {
		return key
	}
	if p.Code == "" {
		return "other"
	}
	return p.Code
}
