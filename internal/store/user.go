package store

import (
	"os"
	"strings"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"go.uber.org/zap"

	"github.com/clawd-labs/support-platform/internal/apperr"
	"github.com/clawd-labs/support-platform/internal/model"
	"github.com/clawd-labs/support-platform/pkg/logger"
	"github.com/clawd-labs/support-platform/pkg/metrics"
)

// UserStore owns the accounts and their active sessions, persisted
// together as one document. Every mutating operation writes the full
// document synchronously before returning.
type UserStore struct {
	path   string
	logger *logger.Logger

	mu       sync.RWMutex
	users    []model.UserRecord
	sessions map[string]model.SessionRecord
}

// NewUserStore creates a user store backed by the given file.
func NewUserStore(path string, log *logger.Logger) *UserStore {
	return &UserStore{
		path:     path,
		logger:   log,
		sessions: make(map[string]model.SessionRecord),
	}
}

// Load reads the backing document. A missing or corrupt file starts an
// empty store.
func (s *UserStore) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	var doc model.UsersDocument
	if err := loadDocument(s.path, &doc); err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("user store unreadable, starting empty", zap.Error(err))
		}
		return
	}

	s.users = doc.Users
	s.sessions = doc.Sessions
	if s.sessions == nil {
		s.sessions = make(map[string]model.SessionRecord)
	}
	for token, sess := range s.sessions {
		sess.Token = token
		s.sessions[token] = sess
	}

	metrics.SessionsActive.Set(float64(len(s.sessions)))
	s.logger.Info("user store loaded",
		zap.Int("users", len(s.users)),
		zap.Int("sessions", len(s.sessions)),
	)
}

// CreateUser registers a new account. Emails are unique; IDs are
// sequential.
func (s *UserStore) CreateUser(email, passwordHash, name string, role model.Role) (*model.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return nil, apperr.Validation("Email already registered", goerr.V("email", email))
		}
	}

	user := model.UserRecord{
		ID:           len(s.users) + 1,
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		Role:         role,
		CreatedAt:    time.Now(),
	}

	s.users = append(s.users, user)
	if err := s.persistLocked(); err != nil {
		s.users = s.users[:len(s.users)-1]
		return nil, err
	}
	return &user, nil
}

// FindByEmail returns the account with the given email, or nil.
func (s *UserStore) FindByEmail(email string) *model.UserRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			user := u
			return &user
		}
	}
	return nil
}

// FindByID returns the account with the given id, or nil.
func (s *UserStore) FindByID(id int) *model.UserRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.ID == id {
			user := u
			return &user
		}
	}
	return nil
}

// UpdateUser applies fn to the account with the given id and persists.
// Email uniqueness is re-checked after fn runs, and the identity
// copies in the account's active sessions are kept in sync.
func (s *UserStore) UpdateUser(id int, fn func(*model.UserRecord) error) (*model.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.users {
		if s.users[i].ID != id {
			continue
		}
		prev := s.users[i]
		if err := fn(&s.users[i]); err != nil {
			s.users[i] = prev
			return nil, err
		}

		for j := range s.users {
			if j != i && strings.EqualFold(s.users[j].Email, s.users[i].Email) {
				attempted := s.users[i].Email
				s.users[i] = prev
				return nil, apperr.Validation("Email already registered", goerr.V("email", attempted))
			}
		}

		prevSessions := make(map[string]model.SessionRecord)
		for token, sess := range s.sessions {
			if sess.UserID != id {
				continue
			}
			prevSessions[token] = sess
			sess.Email = s.users[i].Email
			sess.Name = s.users[i].Name
			s.sessions[token] = sess
		}

		if err := s.persistLocked(); err != nil {
			s.users[i] = prev
			for token, sess := range prevSessions {
				s.sessions[token] = sess
			}
			return nil, err
		}
		user := s.users[i]
		return &user, nil
	}
	return nil, apperr.NotFound("User not found", goerr.V("id", id))
}

// ListUsers returns all accounts.
func (s *UserStore) ListUsers() []model.UserRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.UserRecord{}, s.users...)
}

// PutSession stores a session under its token. Tokens must be unique
// across active sessions.
func (s *UserStore) PutSession(sess model.SessionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[sess.Token]; exists {
		return goerr.New("session token collision", goerr.T(apperr.TagStorage))
	}

	s.sessions[sess.Token] = sess
	if err := s.persistLocked(); err != nil {
		delete(s.sessions, sess.Token)
		return err
	}

	metrics.SessionsActive.Set(float64(len(s.sessions)))
	return nil
}

// GetSession returns the session for a token, or nil.
func (s *UserStore) GetSession(token string) *model.SessionRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if sess, ok := s.sessions[token]; ok {
		sess.Token = token
		return &sess
	}
	return nil
}

// DeleteSession removes a session. Deleting an unknown token is a
// no-op and is not persisted.
func (s *UserStore) DeleteSession(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[token]; !ok {
		return nil
	}

	prev := s.sessions[token]
	delete(s.sessions, token)
	if err := s.persistLocked(); err != nil {
		s.sessions[token] = prev
		return err
	}

	metrics.SessionsActive.Set(float64(len(s.sessions)))
	return nil
}

func (s *UserStore) persistLocked() error {
	doc := model.UsersDocument{
		Users:    s.users,
		Sessions: s.sessions,
	}
	if err := saveDocument(s.path, &doc); err != nil {
		metrics.StorageWriteFailures.WithLabelValues("users").Inc()
		return apperr.Storage(err, "failed to persist user store")
	}
	return nil
}
