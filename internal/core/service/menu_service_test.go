package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/opsboard/admin-system/internal/core/domain"
	"github.com/opsboard/admin-system/internal/core/ports"
)

func menu(id, parentID string, order int, active bool) domain.Menu {
	return domain.Menu{ID: id, Name: id, Path: "/" + id, Order: order, ParentID: parentID, IsActive: active}
}

func treeIDs(nodes []*domain.MenuNode) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.ID)
	}
	return out
}

func findNode(nodes []*domain.MenuNode, id string) *domain.MenuNode {
	for _, n := range nodes {
		if n.ID == id {
			return n
		}
		if found := findNode(n.Children, id); found != nil {
			return found
		}
	}
	return nil
}

func TestBuildMenuTree_NestingAndOrder(t *testing.T) {
	tree := BuildMenuTree([]domain.Menu{
		menu("system", "", 2, true),
		menu("dashboard", "", 1, true),
		menu("users", "system", 2, true),
		menu("roles", "system", 1, true),
	})

	got := treeIDs(tree)
	if len(got) != 2 || got[0] != "dashboard" || got[1] != "system" {
		t.Fatalf("unexpected roots: %v", got)
	}

	system := findNode(tree, "system")
	children := treeIDs(system.Children)
	if len(children) != 2 || children[0] != "roles" || children[1] != "users" {
		t.Fatalf("unexpected sibling order: %v", children)
	}
}

func TestBuildMenuTree_OrphanPromotedToRoot(t *testing.T) {
	tree := BuildMenuTree([]domain.Menu{
		menu("a", "", 1, true),
		menu("stray", "deleted-parent", 2, true),
	})

	if len(tree) != 2 {
		t.Fatalf("expected orphan promoted to root, got roots %v", treeIDs(tree))
	}
}

func TestBuildMenuTree_CyclicParentsTerminate(t *testing.T) {
	// a → b → a is malformed data; the walk must terminate and keep both
	// nodes reachable.
	tree := BuildMenuTree([]domain.Menu{
		menu("a", "b", 1, true),
		menu("b", "a", 2, true),
	})

	if len(tree) == 0 {
		t.Fatalf("cycle swallowed all nodes")
	}
	total := 0
	var count func([]*domain.MenuNode)
	count = func(nodes []*domain.MenuNode) {
		for _, n := range nodes {
			total++
			count(n.Children)
		}
	}
	count(tree)
	if total != 2 {
		t.Fatalf("expected 2 reachable nodes, got %d", total)
	}
}

func TestBuildRoleScopedMenuTree_IncludesAncestors(t *testing.T) {
	menus := []domain.Menu{
		menu("root", "", 1, true),
		menu("mid", "root", 1, true),
		menu("leaf", "mid", 1, true),
		menu("other", "", 2, true),
	}

	// Granting only the leaf pulls in mid and root for path context, but not
	// the unrelated sibling.
	tree := BuildRoleScopedMenuTree([]string{"leaf"}, menus)

	if len(tree) != 1 || tree[0].ID != "root" {
		t.Fatalf("unexpected roots: %v", treeIDs(tree))
	}
	if findNode(tree, "leaf") == nil || findNode(tree, "mid") == nil {
		t.Fatalf("ancestor chain incomplete")
	}
	if findNode(tree, "other") != nil {
		t.Fatalf("ungranted sibling leaked into scoped tree")
	}
}

func TestBuildRoleScopedMenuTree_InactiveSubtreeDropped(t *testing.T) {
	menus := []domain.Menu{
		menu("root", "", 1, true),
		menu("disabled", "root", 1, false),
		menu("child-of-disabled", "disabled", 1, true),
		menu("active", "root", 2, true),
	}

	tree := BuildRoleScopedMenuTree([]string{"child-of-disabled", "active"}, menus)

	if findNode(tree, "disabled") != nil {
		t.Fatalf("inactive node survived filtering")
	}
	// The active child rides on an inactive parent, so it disappears with it.
	if findNode(tree, "child-of-disabled") != nil {
		t.Fatalf("subtree of inactive node survived filtering")
	}
	if findNode(tree, "active") == nil {
		t.Fatalf("active granted menu missing")
	}
}

func TestBuildRoleScopedMenuTree_UnknownGrantsIgnored(t *testing.T) {
	menus := []domain.Menu{menu("root", "", 1, true)}

	tree := BuildRoleScopedMenuTree([]string{"nonexistent"}, menus)
	if len(tree) != 0 {
		t.Fatalf("expected empty forest, got %v", treeIDs(tree))
	}
}

func newMenuFixture(t *testing.T) (ports.MenuService, *memMenuRepo, *memRoleRepo) {
	t.Helper()
	menus := newMemMenuRepo()
	roles := newMemRoleRepo()
	return NewMenuService(menus, roles, zerolog.Nop()), menus, roles
}

func TestMenuService_CreateDefaultsActive(t *testing.T) {
	svc, _, _ := newMenuFixture(t)

	created, err := svc.Create(context.Background(), ports.MenuInput{Name: "Dashboard", Path: "/dashboard"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if !created.IsActive {
		t.Fatalf("expected new menu to default to active")
	}

	inactive := false
	created, err = svc.Create(context.Background(), ports.MenuInput{Name: "Hidden", Path: "/hidden", IsActive: &inactive})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if created.IsActive {
		t.Fatalf("explicit inactive flag ignored")
	}
}

func TestMenuService_Sync_UpsertsByPath(t *testing.T) {
	svc, menus, _ := newMenuFixture(t)
	ctx := context.Background()

	existing, err := svc.Create(ctx, ports.MenuInput{Name: "Dashboard", Path: "/dashboard", Order: 5})
	if err != nil {
		t.Fatalf("seed menu: %v", err)
	}

	tree, err := svc.Sync(ctx, []ports.MenuInput{
		{Name: "Overview", Path: "/dashboard", Order: 1},
		{Name: "System", Path: "/system", Order: 2},
	})
	if err != nil {
		t.Fatalf("Sync returned error: %v", err)
	}
	if len(tree) != 2 {
		t.Fatalf("expected refreshed tree with 2 roots, got %v", treeIDs(tree))
	}

	// The existing record keeps its identity and picks up the new fields.
	updated, err := menus.FindByID(ctx, existing.ID)
	if err != nil {
		t.Fatalf("expected seeded menu to survive sync: %v", err)
	}
	if updated.Name != "Overview" || updated.Order != 1 {
		t.Fatalf("seeded menu not updated in place: %+v", updated)
	}

	count, _ := menus.Count(ctx)
	if count != 2 {
		t.Fatalf("expected 2 menus after sync, got %d", count)
	}
}

func TestMenuService_Sync_SkipsPathlessAndDeduplicates(t *testing.T) {
	svc, menus, _ := newMenuFixture(t)
	ctx := context.Background()

	if _, err := svc.Sync(ctx, []ports.MenuInput{
		{Name: "No Path"},
		{Name: "First", Path: "/reports", Order: 1},
		{Name: "Last", Path: "/reports", Order: 9},
	}); err != nil {
		t.Fatalf("Sync returned error: %v", err)
	}

	all, _ := menus.FindAll(ctx)
	if len(all) != 1 {
		t.Fatalf("expected a single menu, got %d", len(all))
	}
	if all[0].Name != "Last" || all[0].Order != 9 {
		t.Fatalf("expected last item per path to win, got %+v", all[0])
	}
	if !all[0].IsActive {
		t.Fatalf("synced menus must default to active")
	}
}

func TestMenuService_Sync_IsIdempotent(t *testing.T) {
	svc, menus, _ := newMenuFixture(t)
	ctx := context.Background()

	payload := []ports.MenuInput{
		{Name: "Users", Path: "/users", Order: 1},
		{Name: "Roles", Path: "/roles", Order: 2},
	}
	if _, err := svc.Sync(ctx, payload); err != nil {
		t.Fatalf("first sync: %v", err)
	}
	if _, err := svc.Sync(ctx, payload); err != nil {
		t.Fatalf("second sync: %v", err)
	}

	count, _ := menus.Count(ctx)
	if count != 2 {
		t.Fatalf("re-running the same payload must not duplicate menus, got %d", count)
	}
}

func TestMenuService_DeleteRemovesDescendants(t *testing.T) {
	svc, menus, _ := newMenuFixture(t)
	ctx := context.Background()

	for _, m := range []domain.Menu{
		menu("parent", "", 1, true),
		menu("child", "parent", 1, true),
		menu("grandchild", "child", 1, true),
		menu("unrelated", "", 2, true),
	} {
		rec := m
		if _, err := menus.Create(ctx, &rec); err != nil {
			t.Fatalf("seed menu: %v", err)
		}
	}

	if err := svc.Delete(ctx, "parent"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	for _, id := range []string{"parent", "child", "grandchild"} {
		if _, err := menus.FindByID(ctx, id); err != domain.ErrMenuNotFound {
			t.Fatalf("menu %s survived subtree delete", id)
		}
	}
	if _, err := menus.FindByID(ctx, "unrelated"); err != nil {
		t.Fatalf("unrelated menu deleted: %v", err)
	}
}

func TestMenuService_Delete_NotFound(t *testing.T) {
	svc, _, _ := newMenuFixture(t)
	if err := svc.Delete(context.Background(), "missing"); err != domain.ErrMenuNotFound {
		t.Fatalf("expected ErrMenuNotFound, got %v", err)
	}
}

func TestMenuService_TreeForRole(t *testing.T) {
	svc, menus, roles := newMenuFixture(t)
	ctx := context.Background()

	for _, m := range []domain.Menu{
		menu("root", "", 1, true),
		menu("granted", "root", 1, true),
		menu("hidden", "root", 2, true),
	} {
		rec := m
		if _, err := menus.Create(ctx, &rec); err != nil {
			t.Fatalf("seed menu: %v", err)
		}
	}

	if _, err := roles.Create(ctx, &domain.Role{
		Name:    "Viewers",
		Code:    domain.RoleCode("VIEWER"),
		MenuIDs: []string{"granted"},
	}); err != nil {
		t.Fatalf("seed role: %v", err)
	}

	tree, err := svc.TreeForRole(ctx, domain.RoleCode("VIEWER"))
	if err != nil {
		t.Fatalf("TreeForRole returned error: %v", err)
	}
	if findNode(tree, "granted") == nil || findNode(tree, "root") == nil {
		t.Fatalf("granted menu or its ancestor missing: %v", treeIDs(tree))
	}
	if findNode(tree, "hidden") != nil {
		t.Fatalf("ungranted menu visible to role")
	}

	// The super administrator sees everything.
	full, err := svc.TreeForRole(ctx, domain.RoleSuperAdmin)
	if err != nil {
		t.Fatalf("TreeForRole(super admin) returned error: %v", err)
	}
	if findNode(full, "hidden") == nil {
		t.Fatalf("super admin tree incomplete")
	}

	// Unknown role code yields an empty navigation, not an error.
	empty, err := svc.TreeForRole(ctx, domain.RoleCode("GHOST"))
	if err != nil {
		t.Fatalf("TreeForRole(unknown) returned error: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty forest for unknown role")
	}
}
