package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/opsboard/admin-system/internal/core/domain"
	"github.com/opsboard/admin-system/internal/core/ports"
)

const (
	sessionTTL      = 7 * 24 * time.Hour
	refreshTokenTTL = 30 * 24 * time.Hour
)

type authService struct {
	users    ports.UserRepository
	sessions ports.SessionStore
	issuer   *TokenIssuer
	audit    ports.AuditRecorder
	log      zerolog.Logger
}

// NewAuthService returns an AuthService implementation backed by the user
// repository, the session store, and the token issuer.
func NewAuthService(
	users ports.UserRepository,
	sessions ports.SessionStore,
	issuer *TokenIssuer,
	audit ports.AuditRecorder,
	log zerolog.Logger,
) ports.AuthService {
	return &authService{
		users:    users,
		sessions: sessions,
		issuer:   issuer,
		audit:    audit,
		log:      log,
	}
}

func (s *authService) Login(ctx context.Context, identifier, password string) (*ports.LoginResult, error) {
	if identifier == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.findByIdentifier(ctx, identifier)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			s.log.Error().Err(err).Msg("user lookup failed during login")
			return nil, domain.ErrAuthorizationUnavailable
		}
		s.recordAuth(identifier, "", "login", domain.AuditFailed, domain.ErrInvalidCredentials.Error())
		// Unknown identifier and wrong password are indistinguishable to the
		// caller.
		return nil, domain.ErrInvalidCredentials
	}

	if !user.IsActive {
		s.recordAuth(user.Username, user.ID, "login", domain.AuditFailed, domain.ErrAccountInactive.Error())
		return nil, domain.ErrAccountInactive
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.recordAuth(user.Username, user.ID, "login", domain.AuditFailed, domain.ErrInvalidCredentials.Error())
		return nil, domain.ErrInvalidCredentials
	}

	now := time.Now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to update last login timestamp")
	}

	accessToken, err := s.issuer.AccessToken(user)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.issuer.RefreshToken(user)
	if err != nil {
		return nil, err
	}

	// Both writes replace whatever the previous login stored, so only the
	// most recent login per principal keeps a valid refresh token.
	session := domain.Session{
		UserID:    user.ID,
		Username:  user.Username,
		Role:      user.Role,
		LoginTime: now,
	}
	if err := s.sessions.SaveSession(ctx, user.ID, session, sessionTTL); err != nil {
		return nil, domain.ErrAuthorizationUnavailable
	}
	if err := s.sessions.SaveRefreshToken(ctx, user.ID, refreshToken, refreshTokenTTL); err != nil {
		return nil, domain.ErrAuthorizationUnavailable
	}

	s.recordAuth(user.Username, user.ID, "login", domain.AuditSuccess, "")
	s.log.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("user logged in")

	return &ports.LoginResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// findByIdentifier tries the unique username index first, then email. The
// email fallback only runs when the username genuinely does not exist;
// infrastructure errors surface to the caller unchanged.
func (s *authService) findByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	user, err := s.users.FindByUsername(ctx, identifier)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}
	return s.users.FindByEmail(ctx, identifier)
}

func (s *authService) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.issuer.Verify(refreshToken)
	if err != nil {
		return "", domain.ErrInvalidToken
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			s.log.Error().Err(err).Str("user_id", claims.UserID).Msg("user lookup failed during token refresh")
			return "", domain.ErrAuthorizationUnavailable
		}
		return "", domain.ErrAccountInactive
	}
	if !user.IsActive {
		return "", domain.ErrAccountInactive
	}

	stored, err := s.sessions.GetRefreshToken(ctx, user.ID)
	if err != nil {
		return "", domain.ErrAuthorizationUnavailable
	}
	// A mismatch covers both tampering and tokens from a superseded login.
	if stored == "" || stored != refreshToken {
		return "", domain.ErrInvalidToken
	}

	accessToken, err := s.issuer.AccessToken(user)
	if err != nil {
		return "", err
	}

	s.recordAuth(user.Username, user.ID, "refresh", domain.AuditSuccess, "")
	return accessToken, nil
}

func (s *authService) ValidateAccessToken(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.issuer.Verify(token)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			s.log.Error().Err(err).Str("user_id", claims.UserID).Msg("user lookup failed during token validation")
			return nil, domain.ErrAuthorizationUnavailable
		}
		return nil, domain.ErrAccountInactive
	}
	if !user.IsActive {
		return nil, domain.ErrAccountInactive
	}
	return user, nil
}

func (s *authService) Logout(ctx context.Context, userID, accessToken string) error {
	// Session and refresh token go away regardless of what the access token
	// looks like.
	if err := s.sessions.DeleteSession(ctx, userID); err != nil {
		return domain.ErrAuthorizationUnavailable
	}
	if err := s.sessions.DeleteRefreshToken(ctx, userID); err != nil {
		return domain.ErrAuthorizationUnavailable
	}

	if accessToken != "" {
		remaining, err := s.issuer.RemainingLifetime(accessToken)
		switch {
		case err != nil:
			// An undecodable token can never validate later; nothing to
			// blacklist.
			s.log.Debug().Str("user_id", userID).Msg("logout with undecodable access token")
		case remaining > 0:
			if err := s.sessions.BlacklistToken(ctx, accessToken, remaining); err != nil {
				return domain.ErrAuthorizationUnavailable
			}
		}
	}

	s.recordAuth("", userID, "logout", domain.AuditSuccess, "")
	s.log.Info().Str("user_id", userID).Msg("user logged out")
	return nil
}

func (s *authService) recordAuth(username, userID, action string, outcome domain.AuditOutcome, errMsg string) {
	if s.audit == nil {
		return
	}
	s.audit.Record(domain.AuditEvent{
		UserID:    userID,
		Username:  username,
		Action:    action,
		Resource:  "auth",
		Outcome:   outcome,
		Error:     errMsg,
		CreatedAt: time.Now().UTC(),
	})
}
