package ports

import (
	"context"

	"github.com/opsboard/admin-system/internal/core/domain"
)

// CreateUserInput carries the fields accepted when creating a principal.
type CreateUserInput struct {
	Username string
	Email    string
	Password string
	Role     string
	Avatar   string
}

// UpdateUserInput carries optional updates; nil pointers mean "leave as is".
type UpdateUserInput struct {
	Email    *string
	Password *string
	Role     *string
	Avatar   *string
	IsActive *bool
}

// UserService manages principal records.
type UserService interface {
	Create(ctx context.Context, input CreateUserInput) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context, page Page) ([]domain.User, int64, error)
	Update(ctx context.Context, id string, input UpdateUserInput) (*domain.User, error)
	// Delete removes a principal. actorID is the caller; self-deletion is
	// rejected with domain.ErrSelfDeletion.
	Delete(ctx context.Context, id, actorID string) error
	EnsureSuperAdmin(ctx context.Context) (*domain.User, error)
}

// RoleInput carries the writable fields of a role.
type RoleInput struct {
	Name          string
	Code          string
	Description   string
	PermissionIDs []string
	MenuIDs       []string
}

// RoleService manages roles and seeds the built-in ones.
type RoleService interface {
	Create(ctx context.Context, input RoleInput) (*domain.Role, error)
	GetByID(ctx context.Context, id string) (*domain.Role, error)
	List(ctx context.Context, page Page) ([]domain.Role, int64, error)
	Update(ctx context.Context, id string, input RoleInput) (*domain.Role, error)
	Delete(ctx context.Context, id string) error
	EnsureDefaultRoles(ctx context.Context) error
}

// PermissionInput carries the writable fields of a permission.
type PermissionInput struct {
	Name        string
	Code        string
	Description string
	Type        string
	Module      string
}

// PermissionModuleNode is one labeled group of the permission tree.
type PermissionModuleNode struct {
	ID       string               `json:"id"`
	Label    string               `json:"label"`
	Children []PermissionTreeLeaf `json:"children"`
}

// PermissionTreeLeaf is a single permission inside its module group.
type PermissionTreeLeaf struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Code  string `json:"code"`
}

// PermissionService manages permissions and builds the module-grouped tree.
type PermissionService interface {
	Create(ctx context.Context, input PermissionInput) (*domain.Permission, error)
	GetByID(ctx context.Context, id string) (*domain.Permission, error)
	List(ctx context.Context, page Page) ([]domain.Permission, int64, error)
	Update(ctx context.Context, id string, input PermissionInput) (*domain.Permission, error)
	Delete(ctx context.Context, id string) error
	Tree(ctx context.Context) ([]PermissionModuleNode, error)
}

// MenuInput carries the writable fields of a menu.
type MenuInput struct {
	Name          string
	Path          string
	Icon          string
	Order         int
	ParentID      string
	PermissionIDs []string
	IsActive      *bool
}

// MenuService manages menus and builds hierarchical views.
type MenuService interface {
	Create(ctx context.Context, input MenuInput) (*domain.Menu, error)
	GetByID(ctx context.Context, id string) (*domain.Menu, error)
	List(ctx context.Context, page Page) ([]domain.Menu, int64, error)
	Update(ctx context.Context, id string, input MenuInput) (*domain.Menu, error)
	// Delete removes a menu and, recursively, its descendants.
	Delete(ctx context.Context, id string) error
	Tree(ctx context.Context) ([]*domain.MenuNode, error)
	// Sync bulk-upserts menus keyed by path (items without a path are
	// skipped, the last item per path wins) and returns the refreshed tree.
	Sync(ctx context.Context, items []MenuInput) ([]*domain.MenuNode, error)
	// TreeForRole returns the forest visible to a role: its granted menus
	// plus every ancestor, with inactive subtrees filtered out. The super
	// administrator sees the full tree.
	TreeForRole(ctx context.Context, role domain.RoleCode) ([]*domain.MenuNode, error)
}

// GeneratedAPIKey is returned exactly once at generation time; the plaintext
// secret is unrecoverable afterwards.
type GeneratedAPIKey struct {
	Key    string `json:"key"`
	Secret string `json:"secret"`
}

// APIKeyService manages machine credentials embedded in roles.
type APIKeyService interface {
	Generate(ctx context.Context, roleID, remark string) (*GeneratedAPIKey, error)
	List(ctx context.Context, roleID string) ([]domain.APIKey, error)
	Toggle(ctx context.Context, roleID, key string, active bool) error
	// Revoke reports whether a record was actually removed.
	Revoke(ctx context.Context, roleID, key string) (bool, error)
	// Verify authenticates a key/secret pair and returns the owning role.
	Verify(ctx context.Context, key, secret string) (*domain.Role, error)
}

// EntityCount is one dashboard aggregate.
type EntityCount struct {
	Total  int64  `json:"total"`
	Change string `json:"change,omitempty"`
}

// DashboardStats aggregates entity counts for the overview page.
type DashboardStats struct {
	Users       EntityCount `json:"users"`
	Roles       EntityCount `json:"roles"`
	Menus       EntityCount `json:"menus"`
	Permissions EntityCount `json:"permissions"`
}

// DashboardService supplies aggregate statistics and recent activity.
type DashboardService interface {
	Stats(ctx context.Context) (*DashboardStats, error)
	RecentActivity(ctx context.Context, limit int) ([]domain.AuditEvent, error)
}

// AuditRecorder accepts audit events fire-and-forget. Record must never
// block; events may be dropped under backpressure.
type AuditRecorder interface {
	Record(event domain.AuditEvent)
}
