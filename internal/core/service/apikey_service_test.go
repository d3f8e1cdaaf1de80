package service

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/opsboard/admin-system/internal/core/domain"
	"github.com/opsboard/admin-system/internal/core/ports"
)

func newAPIKeyFixture(t *testing.T) (ports.APIKeyService, *memRoleRepo, string) {
	t.Helper()
	roles := newMemRoleRepo()
	role, err := roles.Create(context.Background(), &domain.Role{Name: "Integrations", Code: domain.RoleCode("INTEGRATION")})
	if err != nil {
		t.Fatalf("seed role: %v", err)
	}
	return NewAPIKeyService(roles, zerolog.Nop()), roles, role.ID
}

func TestAPIKeyService_GenerateAndVerify(t *testing.T) {
	svc, roles, roleID := newAPIKeyFixture(t)
	ctx := context.Background()

	generated, err := svc.Generate(ctx, roleID, "ci pipeline")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if !strings.HasPrefix(generated.Key, "ak_") {
		t.Fatalf("unexpected key format: %s", generated.Key)
	}
	if generated.Secret == "" {
		t.Fatalf("expected plaintext secret")
	}

	// The stored record holds a digest, never the plaintext.
	role, _ := roles.FindByID(ctx, roleID)
	if len(role.APIKeys) != 1 {
		t.Fatalf("expected 1 stored key, got %d", len(role.APIKeys))
	}
	if role.APIKeys[0].SecretHash == generated.Secret || role.APIKeys[0].SecretHash == "" {
		t.Fatalf("secret stored improperly")
	}
	if role.APIKeys[0].Remark != "ci pipeline" {
		t.Fatalf("remark lost: %q", role.APIKeys[0].Remark)
	}

	verified, err := svc.Verify(ctx, generated.Key, generated.Secret)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if verified.ID != roleID {
		t.Fatalf("verified wrong role: %s", verified.ID)
	}

	// Verification stamps last-used.
	role, _ = roles.FindByID(ctx, roleID)
	if role.APIKeys[0].LastUsedAt.IsZero() {
		t.Fatalf("expected last-used timestamp after verify")
	}
}

func TestAPIKeyService_Generate_UnknownRole(t *testing.T) {
	svc, _, _ := newAPIKeyFixture(t)

	if _, err := svc.Generate(context.Background(), "missing", ""); err != domain.ErrRoleNotFound {
		t.Fatalf("expected ErrRoleNotFound, got %v", err)
	}
}

func TestAPIKeyService_GeneratedKeysAreUnique(t *testing.T) {
	svc, _, roleID := newAPIKeyFixture(t)
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		generated, err := svc.Generate(ctx, roleID, "")
		if err != nil {
			t.Fatalf("Generate returned error: %v", err)
		}
		if seen[generated.Key] {
			t.Fatalf("duplicate key generated: %s", generated.Key)
		}
		seen[generated.Key] = true
	}
}

func TestAPIKeyService_Verify_Failures(t *testing.T) {
	svc, _, roleID := newAPIKeyFixture(t)
	ctx := context.Background()

	generated, err := svc.Generate(ctx, roleID, "")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	if _, err := svc.Verify(ctx, "ak_unknown", generated.Secret); err != domain.ErrInvalidCredentials {
		t.Fatalf("unknown key: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Verify(ctx, generated.Key, "wrong-secret"); err != domain.ErrInvalidCredentials {
		t.Fatalf("wrong secret: expected ErrInvalidCredentials, got %v", err)
	}

	// A disabled key fails verification until re-enabled.
	if err := svc.Toggle(ctx, roleID, generated.Key, false); err != nil {
		t.Fatalf("Toggle returned error: %v", err)
	}
	if _, err := svc.Verify(ctx, generated.Key, generated.Secret); err != domain.ErrInvalidCredentials {
		t.Fatalf("disabled key: expected ErrInvalidCredentials, got %v", err)
	}
	if err := svc.Toggle(ctx, roleID, generated.Key, true); err != nil {
		t.Fatalf("Toggle returned error: %v", err)
	}
	if _, err := svc.Verify(ctx, generated.Key, generated.Secret); err != nil {
		t.Fatalf("re-enabled key rejected: %v", err)
	}
}

func TestAPIKeyService_ListStripsDigests(t *testing.T) {
	svc, _, roleID := newAPIKeyFixture(t)
	ctx := context.Background()

	if _, err := svc.Generate(ctx, roleID, "first"); err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	keys, err := svc.List(ctx, roleID)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(keys) != 1 {
		t.Fatalf("expected 1 key, got %d", len(keys))
	}
	if keys[0].SecretHash != "" {
		t.Fatalf("digest leaked through List")
	}
}

func TestAPIKeyService_Revoke(t *testing.T) {
	svc, _, roleID := newAPIKeyFixture(t)
	ctx := context.Background()

	generated, err := svc.Generate(ctx, roleID, "")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	removed, err := svc.Revoke(ctx, roleID, generated.Key)
	if err != nil {
		t.Fatalf("Revoke returned error: %v", err)
	}
	if !removed {
		t.Fatalf("expected key to be removed")
	}

	// Revoking again reports nothing removed.
	removed, err = svc.Revoke(ctx, roleID, generated.Key)
	if err != nil {
		t.Fatalf("second Revoke returned error: %v", err)
	}
	if removed {
		t.Fatalf("expected no-op on second revoke")
	}

	if _, err := svc.Verify(ctx, generated.Key, generated.Secret); err != domain.ErrInvalidCredentials {
		t.Fatalf("revoked key still verifies: %v", err)
	}
}
