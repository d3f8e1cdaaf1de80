package service

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/opsboard/admin-system/internal/core/domain"
	"github.com/opsboard/admin-system/internal/core/ports"
)

type menuService struct {
	menus ports.MenuRepository
	roles ports.RoleRepository
	log   zerolog.Logger
}

// NewMenuService returns a MenuService backed by the menu and role
// repositories.
func NewMenuService(menus ports.MenuRepository, roles ports.RoleRepository, log zerolog.Logger) ports.MenuService {
	return &menuService{menus: menus, roles: roles, log: log}
}

func (s *menuService) Create(ctx context.Context, input ports.MenuInput) (*domain.Menu, error) {
	now := time.Now().UTC()
	menu := &domain.Menu{
		Name:          input.Name,
		Path:          input.Path,
		Icon:          input.Icon,
		Order:         input.Order,
		ParentID:      input.ParentID,
		PermissionIDs: input.PermissionIDs,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if input.IsActive != nil {
		menu.IsActive = *input.IsActive
	}
	return s.menus.Create(ctx, menu)
}

func (s *menuService) GetByID(ctx context.Context, id string) (*domain.Menu, error) {
	return s.menus.FindByID(ctx, id)
}

func (s *menuService) List(ctx context.Context, page ports.Page) ([]domain.Menu, int64, error) {
	return s.menus.List(ctx, page.Normalize("order"))
}

func (s *menuService) Update(ctx context.Context, id string, input ports.MenuInput) (*domain.Menu, error) {
	menu, err := s.menus.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	menu.Name = input.Name
	menu.Path = input.Path
	menu.Icon = input.Icon
	menu.Order = input.Order
	menu.ParentID = input.ParentID
	menu.PermissionIDs = input.PermissionIDs
	if input.IsActive != nil {
		menu.IsActive = *input.IsActive
	}
	menu.UpdatedAt = time.Now().UTC()
	return s.menus.Update(ctx, menu)
}

// Delete removes a menu together with all of its descendants. The walk is
// guarded against malformed parent references that form cycles.
func (s *menuService) Delete(ctx context.Context, id string) error {
	if _, err := s.menus.FindByID(ctx, id); err != nil {
		return err
	}
	visited := map[string]bool{}
	return s.deleteSubtree(ctx, id, visited)
}

func (s *menuService) deleteSubtree(ctx context.Context, id string, visited map[string]bool) error {
	if visited[id] {
		return nil
	}
	visited[id] = true

	children, err := s.menus.FindByParent(ctx, id)
	if err != nil {
		return err
	}
	for _, child := range children {
		if err := s.deleteSubtree(ctx, child.ID, visited); err != nil {
			return err
		}
	}
	return s.menus.Delete(ctx, id)
}

// Sync reconciles a declarative menu list against the store: each item is
// upserted by its path, so re-running the same payload is idempotent. Items
// without a path are ignored; when a path repeats, the last item wins.
func (s *menuService) Sync(ctx context.Context, items []ports.MenuInput) ([]*domain.MenuNode, error) {
	now := time.Now().UTC()
	byPath := make(map[string]int, len(items))
	menus := make([]domain.Menu, 0, len(items))
	for _, item := range items {
		if item.Path == "" {
			continue
		}
		menu := domain.Menu{
			Name:          item.Name,
			Path:          item.Path,
			Icon:          item.Icon,
			Order:         item.Order,
			ParentID:      item.ParentID,
			PermissionIDs: item.PermissionIDs,
			IsActive:      true,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if item.IsActive != nil {
			menu.IsActive = *item.IsActive
		}
		if i, seen := byPath[item.Path]; seen {
			menus[i] = menu
			continue
		}
		byPath[item.Path] = len(menus)
		menus = append(menus, menu)
	}

	if len(menus) > 0 {
		if err := s.menus.BulkUpsertByPath(ctx, menus); err != nil {
			return nil, err
		}
		s.log.Info().Int("count", len(menus)).Msg("menus synced")
	}
	return s.Tree(ctx)
}

func (s *menuService) Tree(ctx context.Context) ([]*domain.MenuNode, error) {
	all, err := s.menus.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return BuildMenuTree(all), nil
}

func (s *menuService) TreeForRole(ctx context.Context, role domain.RoleCode) ([]*domain.MenuNode, error) {
	if role.IsSuperAdmin() {
		return s.Tree(ctx)
	}

	roleRec, err := s.roles.FindByCode(ctx, role)
	if err != nil {
		// No backing role record means no menu grants; not an error for a
		// navigation view.
		return []*domain.MenuNode{}, nil
	}
	if len(roleRec.MenuIDs) == 0 {
		return []*domain.MenuNode{}, nil
	}

	all, err := s.menus.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return BuildRoleScopedMenuTree(roleRec.MenuIDs, all), nil
}

// BuildMenuTree assembles the full forest from a flat menu list. Nodes whose
// parent id does not resolve are promoted to roots rather than dropped, and
// siblings are ordered by their explicit order ascending.
func BuildMenuTree(menus []domain.Menu) []*domain.MenuNode {
	return buildForest(menus, nil)
}

// BuildRoleScopedMenuTree builds the forest visible to a role: the granted
// menu ids plus every ancestor (so full path context is preserved even when
// only leaf menus were granted), with inactive subtrees filtered out.
func BuildRoleScopedMenuTree(grantedIDs []string, menus []domain.Menu) []*domain.MenuNode {
	byID := make(map[string]domain.Menu, len(menus))
	for _, m := range menus {
		byID[m.ID] = m
	}

	// Walk parent references upward from every grant. The included set
	// doubles as the visited set, so malformed cyclic parent chains
	// terminate.
	included := make(map[string]bool)
	for _, id := range grantedIDs {
		for id != "" && !included[id] {
			menu, ok := byID[id]
			if !ok {
				break
			}
			included[id] = true
			id = menu.ParentID
		}
	}

	return filterInactive(buildForest(menus, included))
}

func buildForest(menus []domain.Menu, include map[string]bool) []*domain.MenuNode {
	index := make(map[string]*domain.MenuNode, len(menus))
	ordered := make([]*domain.MenuNode, 0, len(menus))
	for _, m := range menus {
		if include != nil && !include[m.ID] {
			continue
		}
		node := &domain.MenuNode{Menu: m, Children: []*domain.MenuNode{}}
		index[m.ID] = node
		ordered = append(ordered, node)
	}

	roots := make([]*domain.MenuNode, 0, len(ordered))
	for _, node := range ordered {
		if parent := resolveParent(index, node); parent != nil {
			parent.Children = append(parent.Children, node)
		} else {
			roots = append(roots, node)
		}
	}

	sortSiblings(roots)
	return roots
}

// resolveParent returns the parent node to attach to, or nil when the node
// should become a root: no parent reference, an unresolved one (orphan
// promotion), or a reference that would close a cycle.
func resolveParent(index map[string]*domain.MenuNode, node *domain.MenuNode) *domain.MenuNode {
	if node.ParentID == "" {
		return nil
	}
	parent, ok := index[node.ParentID]
	if !ok {
		return nil
	}

	seen := map[string]bool{node.ID: true}
	for cur := parent; cur != nil; {
		if seen[cur.ID] {
			return nil
		}
		seen[cur.ID] = true
		if cur.ParentID == "" {
			break
		}
		cur = index[cur.ParentID]
	}
	return parent
}

func sortSiblings(nodes []*domain.MenuNode) {
	sort.SliceStable(nodes, func(i, j int) bool { return nodes[i].Order < nodes[j].Order })
	for _, n := range nodes {
		sortSiblings(n.Children)
	}
}

// filterInactive prunes inactive nodes depth-first: children are filtered
// first and reattached only when the node itself is active, so an inactive
// node drops its whole filtered subtree.
func filterInactive(nodes []*domain.MenuNode) []*domain.MenuNode {
	out := make([]*domain.MenuNode, 0, len(nodes))
	for _, n := range nodes {
		n.Children = filterInactive(n.Children)
		if n.IsActive {
			out = append(out, n)
		}
	}
	return out
}
