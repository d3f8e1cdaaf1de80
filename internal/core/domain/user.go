package domain

import "time"

// User models an authenticated actor in the system. Authorization is driven
// by the role code resolved against current Role records, never by fields
// baked into an old token.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         RoleCode  `json:"role"`
	Avatar       string    `json:"avatar,omitempty"`
	IsActive     bool      `json:"is_active"`
	LastLoginAt  time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Session is the ephemeral per-principal record held in the session store.
// Writes are whole-value replacements keyed by user id: concurrent logins
// race and the last writer wins (single active session per principal).
type Session struct {
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Role      RoleCode  `json:"role"`
	LoginTime time.Time `json:"login_time"`
}
