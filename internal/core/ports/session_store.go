package ports

import (
	"context"
	"time"

	"github.com/opsboard/admin-system/internal/core/domain"
)

// SessionStore is the external key-value cache holding active sessions, the
// current refresh token per principal, and the token blacklist. All entries
// are TTL-bound; the store's own expiry is the only garbage collection.
//
// Session writes replace the whole value. Get operations return
// (nil, nil) / ("", nil) / (false, nil) when the key is absent — a missing
// key is not an error.
type SessionStore interface {
	SaveSession(ctx context.Context, userID string, session domain.Session, ttl time.Duration) error
	GetSession(ctx context.Context, userID string) (*domain.Session, error)
	DeleteSession(ctx context.Context, userID string) error

	SaveRefreshToken(ctx context.Context, userID, token string, ttl time.Duration) error
	GetRefreshToken(ctx context.Context, userID string) (string, error)
	DeleteRefreshToken(ctx context.Context, userID string) error

	BlacklistToken(ctx context.Context, token string, ttl time.Duration) error
	IsTokenBlacklisted(ctx context.Context, token string) (bool, error)
}
