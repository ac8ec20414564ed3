package model

import (
	"time"
)

// Role is an account's permission level.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleAgent  Role = "agent"
	RoleUser   Role = "user"
	RoleViewer Role = "viewer"
)

// UserRecord is a registered account. Email is the unique key; the
// credential is stored as a bcrypt hash.
type UserRecord struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// SessionRecord maps an opaque bearer token to an authenticated identity.
type SessionRecord struct {
	Token   string    `json:"-"`
	UserID  int       `json:"user_id"`
	Email   string    `json:"email"`
	Name    string    `json:"name"`
	Role    Role      `json:"role"`
	Created time.Time `json:"created"`
}

// UsersDocument is the persisted shape of accounts plus active sessions.
type UsersDocument struct {
	Users    []UserRecord             `json:"users"`
	Sessions map[string]SessionRecord `json:"sessions"`
}

// PublicUser is the user shape exposed over the API (no credential).
type PublicUser struct {
	ID        int       `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Public converts a UserRecord to its API shape.
func (u UserRecord) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// SignupRequest is the request to create an account.
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// LoginRequest is the request to open a session.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateProfileRequest is the request to change name and/or email.
type UpdateProfileRequest struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// ChangePasswordRequest is the request to rotate a credential.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}
