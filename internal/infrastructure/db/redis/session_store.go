package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/opsboard/admin-system/internal/core/domain"
)

// Key formats. The blacklist key embeds the whole token so entries expire
// exactly when the token would have.
const (
	sessionKeyFormat      = "user:session:%s"
	refreshTokenKeyFormat = "user:refresh_token:%s"
	blacklistKeyFormat    = "blacklist:token:%s"
)

// SessionStore implements ports.SessionStore on Redis. Session values are
// written as whole JSON documents; there are no partial field updates, so
// concurrent login/logout calls can only race at whole-value granularity.
type SessionStore struct {
	client *redis.Client
}

// NewSessionStore creates a SessionStore wrapping the given Redis client.
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

func (s *SessionStore) SaveSession(ctx context.Context, userID string, session domain.Session, ttl time.Duration) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return s.client.Set(ctx, s.sessionKey(userID), payload, ttl).Err()
}

func (s *SessionStore) GetSession(ctx context.Context, userID string) (*domain.Session, error) {
	payload, err := s.client.Get(ctx, s.sessionKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	var session domain.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &session, nil
}

func (s *SessionStore) DeleteSession(ctx context.Context, userID string) error {
	return s.client.Del(ctx, s.sessionKey(userID)).Err()
}

func (s *SessionStore) SaveRefreshToken(ctx context.Context, userID, token string, ttl time.Duration) error {
	return s.client.Set(ctx, s.refreshKey(userID), token, ttl).Err()
}

func (s *SessionStore) GetRefreshToken(ctx context.Context, userID string) (string, error) {
	token, err := s.client.Get(ctx, s.refreshKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get refresh token: %w", err)
	}
	return token, nil
}

func (s *SessionStore) DeleteRefreshToken(ctx context.Context, userID string) error {
	return s.client.Del(ctx, s.refreshKey(userID)).Err()
}

func (s *SessionStore) BlacklistToken(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, s.blacklistKey(token), "1", ttl).Err()
}

func (s *SessionStore) IsTokenBlacklisted(ctx context.Context, token string) (bool, error) {
	n, err := s.client.Exists(ctx, s.blacklistKey(token)).Result()
	if err != nil {
		return false, fmt.Errorf("blacklist check: %w", err)
	}
	return n > 0, nil
}

func (s *SessionStore) sessionKey(userID string) string {
	return fmt.Sprintf(sessionKeyFormat, userID)
}

func (s *SessionStore) refreshKey(userID string) string {
	return fmt.Sprintf(refreshTokenKeyFormat, userID)
}

func (s *SessionStore) blacklistKey(token string) string {
	return fmt.Sprintf(blacklistKeyFormat, token)
}
