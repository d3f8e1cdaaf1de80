package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/opsboard/admin-system/internal/core/domain"
	"github.com/opsboard/admin-system/internal/core/ports"
)

func TestPermissionService_Create(t *testing.T) {
	svc := NewPermissionService(newMemPermRepo(), zerolog.Nop())
	ctx := context.Background()

	perm, err := svc.Create(ctx, ports.PermissionInput{Name: "View Users", Code: "user:view", Type: "menu"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if perm.Type != domain.PermissionTypeMenu {
		t.Fatalf("unexpected type: %s", perm.Type)
	}

	// Unknown type strings collapse to the action type.
	perm, err = svc.Create(ctx, ports.PermissionInput{Name: "Export Users", Code: "user:export", Type: "bogus"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if perm.Type != domain.PermissionTypeAction {
		t.Fatalf("expected action fallback, got %s", perm.Type)
	}
}

func TestPermissionService_Create_Duplicates(t *testing.T) {
	svc := NewPermissionService(newMemPermRepo(), zerolog.Nop())
	ctx := context.Background()

	if _, err := svc.Create(ctx, ports.PermissionInput{Name: "View Users", Code: "user:view"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if _, err := svc.Create(ctx, ports.PermissionInput{Name: "View Users", Code: "user:view2"}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("duplicate name: expected ErrConflict, got %v", err)
	}
	if _, err := svc.Create(ctx, ports.PermissionInput{Name: "Other", Code: "user:view"}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("duplicate code: expected ErrConflict, got %v", err)
	}
}

func TestBuildPermissionTree_Grouping(t *testing.T) {
	tree := BuildPermissionTree([]domain.Permission{
		{ID: "p1", Name: "View Users", Code: "user:view"},
		{ID: "p2", Name: "Create User", Code: "user:create"},
		{ID: "p3", Name: "View Roles", Code: "role:view"},
		{ID: "p4", Name: "Custom", Code: "reporting:run"},
	})

	if len(tree) != 3 {
		t.Fatalf("expected 3 module groups, got %d", len(tree))
	}

	// Groups are sorted by module key: reporting, role, user.
	if tree[0].ID != "module:reporting" || tree[1].ID != "module:role" || tree[2].ID != "module:user" {
		t.Fatalf("unexpected group order: %s %s %s", tree[0].ID, tree[1].ID, tree[2].ID)
	}

	// Known module keys get display names, unknown ones the raw key.
	if tree[2].Label != "Users" {
		t.Fatalf("expected display name for user module, got %q", tree[2].Label)
	}
	if tree[0].Label != "reporting" {
		t.Fatalf("expected raw key for unknown module, got %q", tree[0].Label)
	}

	users := tree[2]
	if len(users.Children) != 2 {
		t.Fatalf("expected 2 user permissions, got %d", len(users.Children))
	}
	// Children sorted by code: user:create before user:view.
	if users.Children[0].Code != "user:create" || users.Children[1].Code != "user:view" {
		t.Fatalf("unexpected child order: %+v", users.Children)
	}
	if users.Children[0].Label != "Create User (user:create)" {
		t.Fatalf("unexpected leaf label: %q", users.Children[0].Label)
	}
}

func TestBuildPermissionTree_CodeWithoutColon(t *testing.T) {
	tree := BuildPermissionTree([]domain.Permission{
		{ID: "p1", Name: "Wildcard", Code: "everything"},
	})

	if len(tree) != 1 || tree[0].ID != "module:everything" {
		t.Fatalf("expected code to act as its own module key, got %+v", tree)
	}
}

func TestBuildPermissionTree_Empty(t *testing.T) {
	if tree := BuildPermissionTree(nil); len(tree) != 0 {
		t.Fatalf("expected empty tree, got %+v", tree)
	}
}
