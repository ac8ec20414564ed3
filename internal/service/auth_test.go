package service

import (
	"path/filepath"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clawd-labs/support-platform/internal/apperr"
	"github.com/clawd-labs/support-platform/internal/model"
	"github.com/clawd-labs/support-platform/internal/store"
	"github.com/clawd-labs/support-platform/pkg/logger"
)

func newAuthService(t *testing.T) *AuthService {
	t.Helper()
	users := store.NewUserStore(filepath.Join(t.TempDir(), "users.json"), logger.NewNop())
	users.Load()
	return NewAuthService(users, logger.NewNop())
}

func signup(t *testing.T, auth *AuthService, email, password, name string) {
	t.Helper()
	require.NoError(t, auth.Signup(&model.SignupRequest{
		Email:    email,
		Password: password,
		Name:     name,
	}))
}

func TestSignupValidation(t *testing.T) {
	auth := newAuthService(t)

	for _, req := range []*model.SignupRequest{
		{Email: "", Password: "pw", Name: "n"},
		{Email: "a@b.com", Password: "", Name: "n"},
		{Email: "a@b.com", Password: "pw", Name: "  "},
	} {
		err := auth.Signup(req)
		require.Error(t, err)
		assert.True(t, goerr.HasTag(err, apperr.TagValidation))
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	auth := newAuthService(t)
	signup(t, auth, "alice@example.com", "secret123", "Alice")

	err := auth.Signup(&model.SignupRequest{
		Email:    "alice@example.com",
		Password: "other",
		Name:     "Alice Two",
	})
	require.Error(t, err)
	assert.True(t, goerr.HasTag(err, apperr.TagValidation))
	assert.EqualError(t, err, "Email already registered")
}

func TestLoginAndVerify(t *testing.T) {
	auth := newAuthService(t)
	signup(t, auth, "alice@example.com", "secret123", "Alice")

	sess, err := auth.Login(&model.LoginRequest{Email: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, model.RoleUser, sess.Role)

	got, err := auth.Verify(sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.UserID, got.UserID)
	assert.Equal(t, "Alice", got.Name)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	auth := newAuthService(t)
	signup(t, auth, "alice@example.com", "secret123", "Alice")

	// Unknown account and wrong password produce the same message, so
	// callers cannot probe which emails exist.
	for _, req := range []*model.LoginRequest{
		{Email: "nobody@example.com", Password: "secret123"},
		{Email: "alice@example.com", Password: "wrong"},
	} {
		_, err := auth.Login(req)
		require.Error(t, err)
		assert.True(t, goerr.HasTag(err, apperr.TagAuth))
		assert.EqualError(t, err, "Invalid email or password")
	}
}

func TestTokensAreUniquePerLogin(t *testing.T) {
	auth := newAuthService(t)
	signup(t, auth, "alice@example.com", "secret123", "Alice")

	req := &model.LoginRequest{Email: "alice@example.com", Password: "secret123"}
	first, err := auth.Login(req)
	require.NoError(t, err)
	second, err := auth.Login(req)
	require.NoError(t, err)

	assert.NotEqual(t, first.Token, second.Token)
	assert.Len(t, first.Token, 64)
}

func TestLogoutRevokesToken(t *testing.T) {
	auth := newAuthService(t)
	signup(t, auth, "alice@example.com", "secret123", "Alice")

	sess, err := auth.Login(&model.LoginRequest{Email: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)

	require.NoError(t, auth.Logout(sess.Token))
	_, err = auth.Verify(sess.Token)
	require.Error(t, err)
	assert.True(t, goerr.HasTag(err, apperr.TagAuth))

	// Unknown tokens are a no-op.
	require.NoError(t, auth.Logout("never-issued"))

	_, err = auth.Verify("")
	require.Error(t, err)
	assert.EqualError(t, err, "No token provided")
}

func TestChangePassword(t *testing.T) {
	auth := newAuthService(t)
	signup(t, auth, "alice@example.com", "secret123", "Alice")

	sess, err := auth.Login(&model.LoginRequest{Email: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)

	err = auth.ChangePassword(sess, &model.ChangePasswordRequest{
		CurrentPassword: "wrong",
		NewPassword:     "newpass456",
	})
	require.Error(t, err)
	assert.True(t, goerr.HasTag(err, apperr.TagValidation))

	require.NoError(t, auth.ChangePassword(sess, &model.ChangePasswordRequest{
		CurrentPassword: "secret123",
		NewPassword:     "newpass456",
	}))

	_, err = auth.Login(&model.LoginRequest{Email: "alice@example.com", Password: "secret123"})
	require.Error(t, err)
	_, err = auth.Login(&model.LoginRequest{Email: "alice@example.com", Password: "newpass456"})
	require.NoError(t, err)
}

func TestUpdateProfile(t *testing.T) {
	auth := newAuthService(t)
	signup(t, auth, "alice@example.com", "secret123", "Alice")

	sess, err := auth.Login(&model.LoginRequest{Email: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)

	user, err := auth.UpdateProfile(sess, &model.UpdateProfileRequest{Name: "Alice B"})
	require.NoError(t, err)
	assert.Equal(t, "Alice B", user.Name)
	assert.Equal(t, "alice@example.com", user.Email)
}

func TestUpdateProfileRejectsTakenEmail(t *testing.T) {
	auth := newAuthService(t)
	signup(t, auth, "alice@example.com", "secret123", "Alice")
	signup(t, auth, "bob@example.com", "secret123", "Bob")

	sess, err := auth.Login(&model.LoginRequest{Email: "bob@example.com", Password: "secret123"})
	require.NoError(t, err)

	_, err = auth.UpdateProfile(sess, &model.UpdateProfileRequest{Email: "alice@example.com"})
	require.Error(t, err)
	assert.True(t, goerr.HasTag(err, apperr.TagValidation))
	assert.EqualError(t, err, "Email already registered")

	emails := make(map[string]int)
	for _, u := range auth.ListUsers() {
		emails[u.Email]++
	}
	assert.Equal(t, 1, emails["alice@example.com"])
	assert.Equal(t, 1, emails["bob@example.com"])
}

func TestUpdateProfileRefreshesSession(t *testing.T) {
	auth := newAuthService(t)
	signup(t, auth, "alice@example.com", "secret123", "Alice")

	sess, err := auth.Login(&model.LoginRequest{Email: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)

	_, err = auth.UpdateProfile(sess, &model.UpdateProfileRequest{
		Name:  "Alice B",
		Email: "alice.b@example.com",
	})
	require.NoError(t, err)

	// The live session reflects the new identity immediately.
	got, err := auth.Verify(sess.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice.b@example.com", got.Email)
	assert.Equal(t, "Alice B", got.Name)
}

func TestRequireRole(t *testing.T) {
	auth := newAuthService(t)
	signup(t, auth, "alice@example.com", "secret123", "Alice")

	sess, err := auth.Login(&model.LoginRequest{Email: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)

	_, err = auth.RequireRole(sess.Token, model.RoleAdmin)
	require.Error(t, err)
	assert.True(t, goerr.HasTag(err, apperr.TagForbidden))

	got, err := auth.RequireRole(sess.Token, model.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, sess.UserID, got.UserID)
}
