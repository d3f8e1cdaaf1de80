package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/opsboard/admin-system/internal/core/domain"
	"github.com/opsboard/admin-system/internal/core/ports"
)

const (
	apiKeyPrefix = "ak_"
	// Collisions on uuid-derived keys are practically impossible; the cap
	// only guards against runaway recursion on a misbehaving index.
	apiKeyMaxAttempts = 5

	apiSecretBytes = 32
)

type apiKeyService struct {
	roles ports.RoleRepository
	log   zerolog.Logger
}

// NewAPIKeyService returns an APIKeyService operating on role-embedded key
// records.
func NewAPIKeyService(roles ports.RoleRepository, log zerolog.Logger) ports.APIKeyService {
	return &apiKeyService{roles: roles, log: log}
}

func (s *apiKeyService) Generate(ctx context.Context, roleID, remark string) (*ports.GeneratedAPIKey, error) {
	if _, err := s.roles.FindByID(ctx, roleID); err != nil {
		return nil, err
	}

	key, err := s.uniqueKey(ctx)
	if err != nil {
		return nil, err
	}

	secretRaw := make([]byte, apiSecretBytes)
	if _, err := rand.Read(secretRaw); err != nil {
		return nil, fmt.Errorf("generate api secret: %w", err)
	}
	secret := hex.EncodeToString(secretRaw)

	record := domain.APIKey{
		Key:        key,
		SecretHash: hashSecret(secret),
		Remark:     remark,
		IsActive:   true,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.roles.AppendAPIKey(ctx, roleID, record); err != nil {
		return nil, err
	}

	s.log.Info().Str("role_id", roleID).Str("key", key).Msg("api key generated")

	// The plaintext secret leaves this function exactly once; only its
	// digest is stored.
	return &ports.GeneratedAPIKey{Key: key, Secret: secret}, nil
}

// uniqueKey produces a public key that no role currently holds. Existence is
// checked before insert; the unique index on the embedded key backs it up.
func (s *apiKeyService) uniqueKey(ctx context.Context) (string, error) {
	for attempt := 0; attempt < apiKeyMaxAttempts; attempt++ {
		key := apiKeyPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")
		_, err := s.roles.FindByAPIKey(ctx, key)
		if errors.Is(err, domain.ErrRoleNotFound) {
			return key, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("api key generation: exhausted %d attempts", apiKeyMaxAttempts)
}

func (s *apiKeyService) List(ctx context.Context, roleID string) ([]domain.APIKey, error) {
	role, err := s.roles.FindByID(ctx, roleID)
	if err != nil {
		return nil, err
	}
	// Strip digests so callers can't use listed records for comparison.
	keys := make([]domain.APIKey, len(role.APIKeys))
	for i, k := range role.APIKeys {
		k.SecretHash = ""
		keys[i] = k
	}
	return keys, nil
}

func (s *apiKeyService) Toggle(ctx context.Context, roleID, key string, active bool) error {
	return s.roles.SetAPIKeyActive(ctx, roleID, key, active)
}

func (s *apiKeyService) Revoke(ctx context.Context, roleID, key string) (bool, error) {
	removed, err := s.roles.RemoveAPIKey(ctx, roleID, key)
	if err != nil {
		return false, err
	}
	if removed {
		s.log.Info().Str("role_id", roleID).Str("key", key).Msg("api key revoked")
	}
	return removed, nil
}

func (s *apiKeyService) Verify(ctx context.Context, key, secret string) (*domain.Role, error) {
	role, err := s.roles.FindByAPIKey(ctx, key)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	for _, record := range role.APIKeys {
		if record.Key != key {
			continue
		}
		if !record.IsActive {
			return nil, domain.ErrInvalidCredentials
		}
		if subtle.ConstantTimeCompare([]byte(record.SecretHash), []byte(hashSecret(secret))) != 1 {
			return nil, domain.ErrInvalidCredentials
		}
		if err := s.roles.TouchAPIKey(ctx, role.ID, key, time.Now().UTC()); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("failed to update api key last-used timestamp")
		}
		return role, nil
	}
	return nil, domain.ErrInvalidCredentials
}

func hashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}
