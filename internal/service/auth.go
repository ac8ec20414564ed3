// Package service provides business logic for the support platform.
package service

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/clawd-labs/support-platform/internal/apperr"
	"github.com/clawd-labs/support-platform/internal/model"
	"github.com/clawd-labs/support-platform/internal/store"
	"github.com/clawd-labs/support-platform/pkg/logger"
)

// AuthService handles accounts and sessions.
type AuthService struct {
	users  *store.UserStore
	logger *logger.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(users *store.UserStore, log *logger.Logger) *AuthService {
	return &AuthService{
		users:  users,
		logger: log,
	}
}

// Signup registers a new account with the default "user" role.
func (s *AuthService) Signup(req *model.SignupRequest) error {
	email := strings.TrimSpace(req.Email)
	name := strings.TrimSpace(req.Name)
	if email == "" || req.Password == "" || name == "" {
		return apperr.Validation("All fields are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return goerr.Wrap(err, "failed to hash password")
	}

	user, err := s.users.CreateUser(email, string(hash), name, model.RoleUser)
	if err != nil {
		return err
	}

	s.logger.Info("account created",
		zap.Int("user_id", user.ID),
		zap.String("role", string(user.Role)),
	)
	return nil
}

// Login verifies the credential and opens a session with a fresh
// opaque token.
func (s *AuthService) Login(req *model.LoginRequest) (*model.SessionRecord, error) {
	if req.Email == "" || req.Password == "" {
		return nil, apperr.Validation("Email and password required")
	}

	user := s.users.FindByEmail(req.Email)
	if user == nil {
		return nil, apperr.Auth("Invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperr.Auth("Invalid email or password")
	}

	sess := model.SessionRecord{
		Token:   newToken(),
		UserID:  user.ID,
		Email:   user.Email,
		Name:    user.Name,
		Role:    user.Role,
		Created: time.Now(),
	}
	if err := s.users.PutSession(sess); err != nil {
		return nil, err
	}

	s.logger.Info("session opened", zap.Int("user_id", user.ID))
	return &sess, nil
}

// Verify resolves a bearer token to its session.
func (s *AuthService) Verify(token string) (*model.SessionRecord, error) {
	if token == "" {
		return nil, apperr.Auth("No token provided")
	}
	sess := s.users.GetSession(token)
	if sess == nil {
		return nil, apperr.Auth("Invalid or expired token")
	}
	return sess, nil
}

// Logout removes a session. Unknown tokens are a no-op.
func (s *AuthService) Logout(token string) error {
	return s.users.DeleteSession(token)
}

// RequireRole verifies the token and checks the session's role.
func (s *AuthService) RequireRole(token string, role model.Role) (*model.SessionRecord, error) {
	sess, err := s.Verify(token)
	if err != nil {
		return nil, err
	}
	if sess.Role != role {
		return nil, apperr.Forbidden("insufficient role", goerr.V("required", string(role)))
	}
	return sess, nil
}

// Profile returns the account behind a session.
func (s *AuthService) Profile(sess *model.SessionRecord) (*model.UserRecord, error) {
	user := s.users.FindByID(sess.UserID)
	if user == nil {
		return nil, apperr.NotFound("User not found")
	}
	return user, nil
}

// UpdateProfile changes name and/or email of the session's account.
func (s *AuthService) UpdateProfile(sess *model.SessionRecord, req *model.UpdateProfileRequest) (*model.UserRecord, error) {
	return s.users.UpdateUser(sess.UserID, func(u *model.UserRecord) error {
		if req.Name != "" {
			u.Name = req.Name
		}
		if req.Email != "" {
			u.Email = req.Email
		}
		return nil
	})
}

// ChangePassword rotates the credential after checking the current one.
func (s *AuthService) ChangePassword(sess *model.SessionRecord, req *model.ChangePasswordRequest) error {
	if req.NewPassword == "" {
		return apperr.Validation("New password is required")
	}

	_, err := s.users.UpdateUser(sess.UserID, func(u *model.UserRecord) error {
		if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.CurrentPassword)); err != nil {
			return apperr.Validation("Current password is incorrect")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return goerr.Wrap(err, "failed to hash password")
		}
		u.PasswordHash = string(hash)
		return nil
	})
	return err
}

// ListUsers returns every account in API shape. Callers gate on role.
func (s *AuthService) ListUsers() []model.PublicUser {
	records := s.users.ListUsers()
	users := make([]model.PublicUser, len(records))
	for i, u := range records {
		users[i] = u.Public()
	}
	return users
}

// newToken returns a 32-byte random hex token.
func newToken() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(err) // crypto/rand never fails on supported platforms
	}
	return hex.EncodeToString(buf)
}
