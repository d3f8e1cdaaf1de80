package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/opsboard/admin-system/internal/core/domain"
	"github.com/opsboard/admin-system/internal/core/ports"
)

// moduleDisplayNames labels permission-tree groups; unknown module keys fall
// back to the raw key.
var moduleDisplayNames = map[string]string{
	"user":       "Users",
	"role":       "Roles",
	"menu":       "Menus",
	"permission": "Permissions",
	"dashboard":  "Dashboard",
	"log":        "Operation Logs",
}

type permissionService struct {
	perms ports.PermissionRepository
	log   zerolog.Logger
}

// NewPermissionService returns a PermissionService backed by the permission
// repository.
func NewPermissionService(perms ports.PermissionRepository, log zerolog.Logger) ports.PermissionService {
	return &permissionService{perms: perms, log: log}
}

func (s *permissionService) Create(ctx context.Context, input ports.PermissionInput) (*domain.Permission, error) {
	if taken, err := s.perms.NameExists(ctx, input.Name, ""); err != nil {
		return nil, err
	} else if taken {
		return nil, fmt.Errorf("permission name %q: %w", input.Name, domain.ErrConflict)
	}
	if taken, err := s.perms.CodeExists(ctx, input.Code, ""); err != nil {
		return nil, err
	} else if taken {
		return nil, fmt.Errorf("permission code %q: %w", input.Code, domain.ErrConflict)
	}

	now := time.Now().UTC()
	perm := &domain.Permission{
		Name:        input.Name,
		Code:        input.Code,
		Description: input.Description,
		Type:        permissionType(input.Type),
		Module:      input.Module,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return s.perms.Create(ctx, perm)
}

func permissionType(raw string) domain.PermissionType {
	switch domain.PermissionType(raw) {
	case domain.PermissionTypeMenu, domain.PermissionTypeData, domain.PermissionTypeSystem:
		return domain.PermissionType(raw)
	default:
		return domain.PermissionTypeAction
	}
}

func (s *permissionService) GetByID(ctx context.Context, id string) (*domain.Permission, error) {
	return s.perms.FindByID(ctx, id)
}

func (s *permissionService) List(ctx context.Context, page ports.Page) ([]domain.Permission, int64, error) {
	return s.perms.List(ctx, page.Normalize("created_at"))
}

func (s *permissionService) Update(ctx context.Context, id string, input ports.PermissionInput) (*domain.Permission, error) {
	perm, err := s.perms.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != "" && input.Name != perm.Name {
		if taken, err := s.perms.NameExists(ctx, input.Name, id); err != nil {
			return nil, err
		} else if taken {
			return nil, fmt.Errorf("permission name %q: %w", input.Name, domain.ErrConflict)
		}
		perm.Name = input.Name
	}
	if input.Code != "" && input.Code != perm.Code {
		if taken, err := s.perms.CodeExists(ctx, input.Code, id); err != nil {
			return nil, err
		} else if taken {
			return nil, fmt.Errorf("permission code %q: %w", input.Code, domain.ErrConflict)
		}
		perm.Code = input.Code
	}
	if input.Description != "" {
		perm.Description = input.Description
	}
	if input.Type != "" {
		perm.Type = permissionType(input.Type)
	}
	if input.Module != "" {
		perm.Module = input.Module
	}
	perm.UpdatedAt = time.Now().UTC()
	return s.perms.Update(ctx, perm)
}

func (s *permissionService) Delete(ctx context.Context, id string) error {
	return s.perms.Delete(ctx, id)
}

// Tree groups all permissions by module key. Groups are sorted by key and
// children by code so the output is deterministic.
func (s *permissionService) Tree(ctx context.Context) ([]ports.PermissionModuleNode, error) {
	all, err := s.perms.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return BuildPermissionTree(all), nil
}

// BuildPermissionTree constructs the module-grouped permission forest from a
// flat permission list.
func BuildPermissionTree(perms []domain.Permission) []ports.PermissionModuleNode {
	groups := make(map[string]*ports.PermissionModuleNode)
	for _, p := range perms {
		key := p.ModuleKey()
		group, ok := groups[key]
		if !ok {
			label := key
			if name, known := moduleDisplayNames[key]; known {
				label = name
			}
			group = &ports.PermissionModuleNode{
				ID:       "module:" + key,
				Label:    label,
				Children: []ports.PermissionTreeLeaf{},
			}
			groups[key] = group
		}
		group.Children = append(group.Children, ports.PermissionTreeLeaf{
			ID:    p.ID,
			Label: fmt.Sprintf("%s (%s)", p.Name, p.Code),
			Code:  p.Code,
		})
	}

	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	tree := make([]ports.PermissionModuleNode, 0, len(keys))
	for _, key := range keys {
		group := groups[key]
		sort.Slice(group.Children, func(i, j int) bool { return group.Children[i].Code < group.Children[j].Code })
		tree = append(tree, *group)
	}
	return tree
}
