package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/opsboard/admin-system/internal/core/domain"
	"github.com/opsboard/admin-system/internal/core/ports"
)

// Bootstrap credentials for the initial super administrator. The password
// must be rotated on first login in any real deployment.
const (
	bootstrapAdminUsername = "admin"
	bootstrapAdminEmail    = "admin@admin.com"
	bootstrapAdminPassword = "admin123456"
)

type userService struct {
	users      ports.UserRepository
	bcryptCost int
	log        zerolog.Logger
}

// NewUserService returns a UserService hashing secrets with the given bcrypt
// cost.
func NewUserService(users ports.UserRepository, bcryptCost int, log zerolog.Logger) ports.UserService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &userService{users: users, bcryptCost: bcryptCost, log: log}
}

func (s *userService) Create(ctx context.Context, input ports.CreateUserInput) (*domain.User, error) {
	if taken, err := s.users.UsernameExists(ctx, input.Username, ""); err != nil {
		return nil, err
	} else if taken {
		return nil, fmt.Errorf("username %q: %w", input.Username, domain.ErrConflict)
	}
	if taken, err := s.users.EmailExists(ctx, input.Email, ""); err != nil {
		return nil, err
	} else if taken {
		return nil, fmt.Errorf("email %q: %w", input.Email, domain.ErrConflict)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
	if err != nil {
		return nil, err
	}

	role := domain.NormalizeRoleCode(input.Role)
	if role == "" {
		role = domain.RoleUser
	}

	now := time.Now().UTC()
	user := &domain.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hash),
		Role:         role,
		Avatar:       input.Avatar,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("username", created.Username).Str("role", string(created.Role)).Msg("user created")
	return created, nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return s.users.FindByID(ctx, id)
}

func (s *userService) List(ctx context.Context, page ports.Page) ([]domain.User, int64, error) {
	return s.users.List(ctx, page.Normalize("created_at"))
}

func (s *userService) Update(ctx context.Context, id string, input ports.UpdateUserInput) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Email != nil && *input.Email != user.Email {
		if taken, err := s.users.EmailExists(ctx, *input.Email, id); err != nil {
			return nil, err
		} else if taken {
			return nil, fmt.Errorf("email %q: %w", *input.Email, domain.ErrConflict)
		}
		user.Email = *input.Email
	}
	if input.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*input.Password), s.bcryptCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
	}
	if input.Role != nil {
		user.Role = domain.NormalizeRoleCode(*input.Role)
	}
	if input.Avatar != nil {
		user.Avatar = *input.Avatar
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}
	user.UpdatedAt = time.Now().UTC()

	return s.users.Update(ctx, user)
}

func (s *userService) Delete(ctx context.Context, id, actorID string) error {
	if id == actorID {
		return domain.ErrSelfDeletion
	}
	return s.users.Delete(ctx, id)
}

// EnsureSuperAdmin creates the bootstrap super administrator when no account
// holds that role yet. Idempotent across restarts.
func (s *userService) EnsureSuperAdmin(ctx context.Context) (*domain.User, error) {
	if existing, err := s.users.FindByUsername(ctx, bootstrapAdminUsername); err == nil {
		return existing, nil
	}

	user, err := s.Create(ctx, ports.CreateUserInput{
		Username: bootstrapAdminUsername,
		Email:    bootstrapAdminEmail,
		Password: bootstrapAdminPassword,
		Role:     string(domain.RoleSuperAdmin),
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Msg("bootstrap super administrator created")
	return user, nil
}
