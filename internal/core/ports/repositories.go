package ports

import (
	"context"
	"time"

	"github.com/opsboard/admin-system/internal/core/domain"
)

// UserRepository defines persistence for principals. Lookups by username and
// email are backed by unique indexes.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, page Page) ([]domain.User, int64, error)
	Update(ctx context.Context, user *domain.User) (*domain.User, error)
	Delete(ctx context.Context, id string) error
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	UsernameExists(ctx context.Context, username, excludeID string) (bool, error)
	EmailExists(ctx context.Context, email, excludeID string) (bool, error)
	Count(ctx context.Context) (int64, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int64, error)
}

// RoleRepository defines persistence for roles and their embedded API keys.
// FindByCode resolves the normalized code; FindByAPIKey locates the role
// owning an embedded key (key values are globally unique).
type RoleRepository interface {
	Create(ctx context.Context, role *domain.Role) (*domain.Role, error)
	FindByID(ctx context.Context, id string) (*domain.Role, error)
	FindByCode(ctx context.Context, code domain.RoleCode) (*domain.Role, error)
	FindByAPIKey(ctx context.Context, key string) (*domain.Role, error)
	List(ctx context.Context, page Page) ([]domain.Role, int64, error)
	Update(ctx context.Context, role *domain.Role) (*domain.Role, error)
	Delete(ctx context.Context, id string) error
	NameExists(ctx context.Context, name, excludeID string) (bool, error)
	CodeExists(ctx context.Context, code domain.RoleCode, excludeID string) (bool, error)
	Count(ctx context.Context) (int64, error)

	AppendAPIKey(ctx context.Context, roleID string, key domain.APIKey) error
	SetAPIKeyActive(ctx context.Context, roleID, key string, active bool) error
	RemoveAPIKey(ctx context.Context, roleID, key string) (bool, error)
	TouchAPIKey(ctx context.Context, roleID, key string, at time.Time) error
}

// PermissionRepository defines persistence for permissions.
type PermissionRepository interface {
	Create(ctx context.Context, perm *domain.Permission) (*domain.Permission, error)
	FindByID(ctx context.Context, id string) (*domain.Permission, error)
	FindByCode(ctx context.Context, code string) (*domain.Permission, error)
	FindByIDs(ctx context.Context, ids []string) ([]domain.Permission, error)
	FindAll(ctx context.Context) ([]domain.Permission, error)
	List(ctx context.Context, page Page) ([]domain.Permission, int64, error)
	Update(ctx context.Context, perm *domain.Permission) (*domain.Permission, error)
	Delete(ctx context.Context, id string) error
	NameExists(ctx context.Context, name, excludeID string) (bool, error)
	CodeExists(ctx context.Context, code, excludeID string) (bool, error)
	Count(ctx context.Context) (int64, error)
}

// MenuRepository defines persistence for navigation menus. FindAll returns
// menus ordered by explicit order ascending.
type MenuRepository interface {
	Create(ctx context.Context, menu *domain.Menu) (*domain.Menu, error)
	FindByID(ctx context.Context, id string) (*domain.Menu, error)
	FindAll(ctx context.Context) ([]domain.Menu, error)
	FindByParent(ctx context.Context, parentID string) ([]domain.Menu, error)
	List(ctx context.Context, page Page) ([]domain.Menu, int64, error)
	Update(ctx context.Context, menu *domain.Menu) (*domain.Menu, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
	// BulkUpsertByPath inserts or replaces menus keyed by their unique path.
	BulkUpsertByPath(ctx context.Context, menus []domain.Menu) error
}

// AuditRepository is the sink for audit events and the query surface for the
// operation-log views.
type AuditRepository interface {
	Insert(ctx context.Context, event *domain.AuditEvent) error
	List(ctx context.Context, page Page) ([]domain.AuditEvent, int64, error)
	Recent(ctx context.Context, limit int) ([]domain.AuditEvent, error)
}
