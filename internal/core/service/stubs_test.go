package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/opsboard/admin-system/internal/core/domain"
	"github.com/opsboard/admin-system/internal/core/ports"
)

// In-memory fakes for the repository and store ports. They implement just
// enough semantics for the services under test: unique-index checks, missing
// records as not-found sentinels, and value-copy reads.

type memUserRepo struct {
	mu    sync.Mutex
	seq   int
	users map[string]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	clone := *u
	return &clone
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == user.Username || u.Email == user.Email {
			return nil, domain.ErrConflict
		}
	}
	r.seq++
	clone := cloneUser(user)
	clone.ID = fmt.Sprintf("user-%d", r.seq)
	r.users[clone.ID] = clone
	return cloneUser(clone), nil
}

func (r *memUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *memUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *memUserRepo) List(_ context.Context, page ports.Page) ([]domain.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *memUserRepo) Update(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return nil, domain.ErrUserNotFound
	}
	r.users[user.ID] = cloneUser(user)
	return cloneUser(user), nil
}

func (r *memUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *memUserRepo) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.LastLoginAt = at
		return nil
	}
	return domain.ErrUserNotFound
}

func (r *memUserRepo) UsernameExists(_ context.Context, username, excludeID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username && u.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memUserRepo) EmailExists(_ context.Context, email, excludeID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email && u.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memUserRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

func (r *memUserRepo) CountCreatedSince(_ context.Context, since time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, u := range r.users {
		if u.CreatedAt.After(since) {
			n++
		}
	}
	return n, nil
}

type memRoleRepo struct {
	mu    sync.Mutex
	seq   int
	roles map[string]*domain.Role
}

func newMemRoleRepo() *memRoleRepo {
	return &memRoleRepo{roles: make(map[string]*domain.Role)}
}

func cloneRole(role *domain.Role) *domain.Role {
	clone := *role
	clone.PermissionIDs = append([]string(nil), role.PermissionIDs...)
	clone.MenuIDs = append([]string(nil), role.MenuIDs...)
	clone.APIKeys = append([]domain.APIKey(nil), role.APIKeys...)
	return &clone
}

func (r *memRoleRepo) Create(_ context.Context, role *domain.Role) (*domain.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.roles {
		if existing.Code == role.Code || existing.Name == role.Name {
			return nil, domain.ErrConflict
		}
	}
	r.seq++
	clone := cloneRole(role)
	clone.ID = fmt.Sprintf("role-%d", r.seq)
	r.roles[clone.ID] = clone
	return cloneRole(clone), nil
}

func (r *memRoleRepo) FindByID(_ context.Context, id string) (*domain.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if role, ok := r.roles[id]; ok {
		return cloneRole(role), nil
	}
	return nil, domain.ErrRoleNotFound
}

func (r *memRoleRepo) FindByCode(_ context.Context, code domain.RoleCode) (*domain.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, role := range r.roles {
		if role.Code == code {
			return cloneRole(role), nil
		}
	}
	return nil, domain.ErrRoleNotFound
}

func (r *memRoleRepo) FindByAPIKey(_ context.Context, key string) (*domain.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, role := range r.roles {
		for _, k := range role.APIKeys {
			if k.Key == key {
				return cloneRole(role), nil
			}
		}
	}
	return nil, domain.ErrRoleNotFound
}

func (r *memRoleRepo) List(_ context.Context, page ports.Page) ([]domain.Role, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Role, 0, len(r.roles))
	for _, role := range r.roles {
		out = append(out, *cloneRole(role))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *memRoleRepo) Update(_ context.Context, role *domain.Role) (*domain.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.roles[role.ID]
	if !ok {
		return nil, domain.ErrRoleNotFound
	}
	clone := cloneRole(role)
	clone.APIKeys = existing.APIKeys
	r.roles[role.ID] = clone
	return cloneRole(clone), nil
}

func (r *memRoleRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.roles[id]; !ok {
		return domain.ErrRoleNotFound
	}
	delete(r.roles, id)
	return nil
}

func (r *memRoleRepo) NameExists(_ context.Context, name, excludeID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, role := range r.roles {
		if role.Name == name && role.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memRoleRepo) CodeExists(_ context.Context, code domain.RoleCode, excludeID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, role := range r.roles {
		if role.Code == code && role.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memRoleRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.roles)), nil
}

func (r *memRoleRepo) AppendAPIKey(_ context.Context, roleID string, key domain.APIKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	role, ok := r.roles[roleID]
	if !ok {
		return domain.ErrRoleNotFound
	}
	role.APIKeys = append(role.APIKeys, key)
	return nil
}

func (r *memRoleRepo) SetAPIKeyActive(_ context.Context, roleID, key string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	role, ok := r.roles[roleID]
	if !ok {
		return domain.ErrRoleNotFound
	}
	for i := range role.APIKeys {
		if role.APIKeys[i].Key == key {
			role.APIKeys[i].IsActive = active
			return nil
		}
	}
	return domain.ErrAPIKeyNotFound
}

func (r *memRoleRepo) RemoveAPIKey(_ context.Context, roleID, key string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	role, ok := r.roles[roleID]
	if !ok {
		return false, domain.ErrRoleNotFound
	}
	for i := range role.APIKeys {
		if role.APIKeys[i].Key == key {
			role.APIKeys = append(role.APIKeys[:i], role.APIKeys[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *memRoleRepo) TouchAPIKey(_ context.Context, roleID, key string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	role, ok := r.roles[roleID]
	if !ok {
		return domain.ErrRoleNotFound
	}
	for i := range role.APIKeys {
		if role.APIKeys[i].Key == key {
			role.APIKeys[i].LastUsedAt = at
			return nil
		}
	}
	return domain.ErrAPIKeyNotFound
}

type memPermRepo struct {
	mu    sync.Mutex
	seq   int
	perms map[string]*domain.Permission
}

func newMemPermRepo() *memPermRepo {
	return &memPermRepo{perms: make(map[string]*domain.Permission)}
}

func (r *memPermRepo) Create(_ context.Context, perm *domain.Permission) (*domain.Permission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	clone := *perm
	clone.ID = fmt.Sprintf("perm-%d", r.seq)
	r.perms[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *memPermRepo) FindByID(_ context.Context, id string) (*domain.Permission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.perms[id]; ok {
		clone := *p
		return &clone, nil
	}
	return nil, domain.ErrPermissionNotFound
}

func (r *memPermRepo) FindByCode(_ context.Context, code string) (*domain.Permission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.perms {
		if p.Code == code {
			clone := *p
			return &clone, nil
		}
	}
	return nil, domain.ErrPermissionNotFound
}

func (r *memPermRepo) FindByIDs(_ context.Context, ids []string) ([]domain.Permission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Permission, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.perms[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memPermRepo) FindAll(_ context.Context) ([]domain.Permission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Permission, 0, len(r.perms))
	for _, p := range r.perms {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (r *memPermRepo) List(_ context.Context, page ports.Page) ([]domain.Permission, int64, error) {
	all, _ := r.FindAll(context.Background())
	return all, int64(len(all)), nil
}

func (r *memPermRepo) Update(_ context.Context, perm *domain.Permission) (*domain.Permission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.perms[perm.ID]; !ok {
		return nil, domain.ErrPermissionNotFound
	}
	clone := *perm
	r.perms[perm.ID] = &clone
	out := clone
	return &out, nil
}

func (r *memPermRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.perms[id]; !ok {
		return domain.ErrPermissionNotFound
	}
	delete(r.perms, id)
	return nil
}

func (r *memPermRepo) NameExists(_ context.Context, name, excludeID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.perms {
		if p.Name == name && p.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memPermRepo) CodeExists(_ context.Context, code, excludeID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.perms {
		if p.Code == code && p.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memPermRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.perms)), nil
}

type memMenuRepo struct {
	mu    sync.Mutex
	seq   int
	menus map[string]*domain.Menu
}

func newMemMenuRepo() *memMenuRepo {
	return &memMenuRepo{menus: make(map[string]*domain.Menu)}
}

func (r *memMenuRepo) Create(_ context.Context, menu *domain.Menu) (*domain.Menu, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	clone := *menu
	if clone.ID == "" {
		clone.ID = fmt.Sprintf("menu-%d", r.seq)
	}
	r.menus[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *memMenuRepo) FindByID(_ context.Context, id string) (*domain.Menu, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.menus[id]; ok {
		clone := *m
		return &clone, nil
	}
	return nil, domain.ErrMenuNotFound
}

func (r *memMenuRepo) FindAll(_ context.Context) ([]domain.Menu, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Menu, 0, len(r.menus))
	for _, m := range r.menus {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (r *memMenuRepo) FindByParent(_ context.Context, parentID string) ([]domain.Menu, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Menu, 0)
	for _, m := range r.menus {
		if m.ParentID == parentID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *memMenuRepo) List(_ context.Context, page ports.Page) ([]domain.Menu, int64, error) {
	all, _ := r.FindAll(context.Background())
	return all, int64(len(all)), nil
}

func (r *memMenuRepo) Update(_ context.Context, menu *domain.Menu) (*domain.Menu, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.menus[menu.ID]; !ok {
		return nil, domain.ErrMenuNotFound
	}
	clone := *menu
	r.menus[menu.ID] = &clone
	out := clone
	return &out, nil
}

func (r *memMenuRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.menus[id]; !ok {
		return domain.ErrMenuNotFound
	}
	delete(r.menus, id)
	return nil
}

func (r *memMenuRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.menus)), nil
}

func (r *memMenuRepo) BulkUpsertByPath(_ context.Context, menus []domain.Menu) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, menu := range menus {
		var existing *domain.Menu
		for _, m := range r.menus {
			if m.Path == menu.Path {
				existing = m
				break
			}
		}
		clone := menu
		if existing != nil {
			clone.ID = existing.ID
			clone.CreatedAt = existing.CreatedAt
		} else {
			r.seq++
			clone.ID = fmt.Sprintf("menu-%d", r.seq)
		}
		r.menus[clone.ID] = &clone
	}
	return nil
}

// memSessionStore mimics the Redis-backed store, including missing keys
// resolving to zero values instead of errors.
type memSessionStore struct {
	mu        sync.Mutex
	sessions  map[string]domain.Session
	refresh   map[string]string
	blacklist map[string]bool
	failing   bool
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{
		sessions:  make(map[string]domain.Session),
		refresh:   make(map[string]string),
		blacklist: make(map[string]bool),
	}
}

var errStoreDown = fmt.Errorf("store down")

func (s *memSessionStore) SaveSession(_ context.Context, userID string, session domain.Session, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return errStoreDown
	}
	s.sessions[userID] = session
	return nil
}

func (s *memSessionStore) GetSession(_ context.Context, userID string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return nil, errStoreDown
	}
	if session, ok := s.sessions[userID]; ok {
		return &session, nil
	}
	return nil, nil
}

func (s *memSessionStore) DeleteSession(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return errStoreDown
	}
	delete(s.sessions, userID)
	return nil
}

func (s *memSessionStore) SaveRefreshToken(_ context.Context, userID, token string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return errStoreDown
	}
	s.refresh[userID] = token
	return nil
}

func (s *memSessionStore) GetRefreshToken(_ context.Context, userID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return "", errStoreDown
	}
	return s.refresh[userID], nil
}

func (s *memSessionStore) DeleteRefreshToken(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return errStoreDown
	}
	delete(s.refresh, userID)
	return nil
}

func (s *memSessionStore) BlacklistToken(_ context.Context, token string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return errStoreDown
	}
	s.blacklist[token] = true
	return nil
}

func (s *memSessionStore) IsTokenBlacklisted(_ context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return false, errStoreDown
	}
	return s.blacklist[token], nil
}

// captureRecorder collects audit events synchronously for assertions.
type captureRecorder struct {
	mu     sync.Mutex
	events []domain.AuditEvent
}

func (c *captureRecorder) Record(event domain.AuditEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

func (c *captureRecorder) byAction(action string) []domain.AuditEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := []domain.AuditEvent{}
	for _, e := range c.events {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}

func mustHashPassword(password string) string {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return string(hash)
}
