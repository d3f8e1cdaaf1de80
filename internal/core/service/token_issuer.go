package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/opsboard/admin-system/internal/core/domain"
)

const (
	defaultAccessTTL  = 7 * 24 * time.Hour
	defaultRefreshTTL = 30 * 24 * time.Hour

	// Applied when a token carries no expiry claim and its remaining
	// lifetime is needed for blacklisting.
	fallbackBlacklistTTL = time.Hour
)

// Claims is the JWT payload minted for both access and refresh tokens.
// Only identity and role code are carried; permission state is always
// re-resolved from storage, never trusted from token claims.
type Claims struct {
	UserID   string          `json:"user_id"`
	Username string          `json:"username"`
	Role     domain.RoleCode `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer mints and verifies HS256-signed, time-bounded tokens.
type TokenIssuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenIssuer(secret string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	if accessTTL <= 0 {
		accessTTL = defaultAccessTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = defaultRefreshTTL
	}
	return &TokenIssuer{secret: []byte(secret), accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// AccessToken mints a short-lived bearer token for the user.
func (t *TokenIssuer) AccessToken(user *domain.User) (string, error) {
	return t.sign(user, t.accessTTL)
}

// RefreshToken mints the long-lived token exchanged for new access tokens.
func (t *TokenIssuer) RefreshToken(user *domain.User) (string, error) {
	return t.sign(user, t.refreshTTL)
}

func (t *TokenIssuer) sign(user *domain.User, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Verify parses and validates a token. Any signature mismatch, malformed
// payload, or expiry yields domain.ErrInvalidToken.
func (t *TokenIssuer) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(tok *jwt.Token) (interface{}, error) {
		if tok.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return t.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, domain.ErrInvalidToken
	}
	if claims.UserID == "" {
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}

// RemainingLifetime reports how long the token stays cryptographically valid,
// for sizing blacklist entries. Expired-but-parseable tokens report zero; a
// token without an expiry claim reports the fallback TTL. The signature is
// still checked — only expiry validation is relaxed.
func (t *TokenIssuer) RemainingLifetime(token string) (time.Duration, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(tok *jwt.Token) (interface{}, error) {
		if tok.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return t.secret, nil
	}, jwt.WithoutClaimsValidation())
	if err != nil || !parsed.Valid {
		return 0, domain.ErrInvalidToken
	}
	if claims.ExpiresAt == nil {
		return fallbackBlacklistTTL, nil
	}
	remaining := time.Until(claims.ExpiresAt.Time)
	if remaining < 0 {
		return 0, nil
	}
	return remaining, nil
}
