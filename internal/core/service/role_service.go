package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/opsboard/admin-system/internal/core/domain"
	"github.com/opsboard/admin-system/internal/core/ports"
)

type roleService struct {
	roles ports.RoleRepository
	log   zerolog.Logger
}

// NewRoleService returns a RoleService backed by the role repository.
func NewRoleService(roles ports.RoleRepository, log zerolog.Logger) ports.RoleService {
	return &roleService{roles: roles, log: log}
}

func (s *roleService) Create(ctx context.Context, input ports.RoleInput) (*domain.Role, error) {
	code := domain.NormalizeRoleCode(input.Code)
	if taken, err := s.roles.NameExists(ctx, input.Name, ""); err != nil {
		return nil, err
	} else if taken {
		return nil, fmt.Errorf("role name %q: %w", input.Name, domain.ErrConflict)
	}
	if taken, err := s.roles.CodeExists(ctx, code, ""); err != nil {
		return nil, err
	} else if taken {
		return nil, fmt.Errorf("role code %q: %w", code, domain.ErrConflict)
	}

	now := time.Now().UTC()
	role := &domain.Role{
		Name:          input.Name,
		Code:          code,
		Description:   input.Description,
		PermissionIDs: input.PermissionIDs,
		MenuIDs:       input.MenuIDs,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	created, err := s.roles.Create(ctx, role)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("code", string(created.Code)).Msg("role created")
	return created, nil
}

func (s *roleService) GetByID(ctx context.Context, id string) (*domain.Role, error) {
	return s.roles.FindByID(ctx, id)
}

func (s *roleService) List(ctx context.Context, page ports.Page) ([]domain.Role, int64, error) {
	return s.roles.List(ctx, page.Normalize("created_at"))
}

func (s *roleService) Update(ctx context.Context, id string, input ports.RoleInput) (*domain.Role, error) {
	role, err := s.roles.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != "" && input.Name != role.Name {
		if taken, err := s.roles.NameExists(ctx, input.Name, id); err != nil {
			return nil, err
		} else if taken {
			return nil, fmt.Errorf("role name %q: %w", input.Name, domain.ErrConflict)
		}
		role.Name = input.Name
	}
	if input.Code != "" {
		code := domain.NormalizeRoleCode(input.Code)
		if code != role.Code {
			if taken, err := s.roles.CodeExists(ctx, code, id); err != nil {
				return nil, err
			} else if taken {
				return nil, fmt.Errorf("role code %q: %w", code, domain.ErrConflict)
			}
			role.Code = code
		}
	}
	if input.Description != "" {
		role.Description = input.Description
	}
	if input.PermissionIDs != nil {
		role.PermissionIDs = input.PermissionIDs
	}
	if input.MenuIDs != nil {
		role.MenuIDs = input.MenuIDs
	}
	role.UpdatedAt = time.Now().UTC()

	return s.roles.Update(ctx, role)
}

func (s *roleService) Delete(ctx context.Context, id string) error {
	role, err := s.roles.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if role.IsSystem {
		return domain.ErrSystemRole
	}
	return s.roles.Delete(ctx, id)
}

// EnsureDefaultRoles seeds the built-in roles when the collection is empty.
func (s *roleService) EnsureDefaultRoles(ctx context.Context) error {
	count, err := s.roles.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	defaults := []domain.Role{
		{Name: "Super Administrator", Code: domain.RoleSuperAdmin, Description: "Full access to every feature", IsSystem: true},
		{Name: "Administrator", Code: domain.RoleAdmin, Description: "Most management capabilities", IsSystem: true},
		{Name: "User", Code: domain.RoleUser, Description: "Basic read access", IsSystem: true},
	}
	now := time.Now().UTC()
	for i := range defaults {
		defaults[i].CreatedAt = now
		defaults[i].UpdatedAt = now
		if _, err := s.roles.Create(ctx, &defaults[i]); err != nil {
			return fmt.Errorf("seed role %s: %w", defaults[i].Code, err)
		}
	}
	s.log.Info().Int("count", len(defaults)).Msg("default roles created")
	return nil
}
