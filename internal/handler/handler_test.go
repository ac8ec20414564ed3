package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/clawd-labs/support-platform/internal/match"
	"github.com/clawd-labs/support-platform/internal/middleware"
	"github.com/clawd-labs/support-platform/internal/model"
	"github.com/clawd-labs/support-platform/internal/service"
	"github.com/clawd-labs/support-platform/internal/store"
	"github.com/clawd-labs/support-platform/pkg/logger"
)

type testEnv struct {
	router    chi.Router
	users     *store.UserStore
	knowledge *store.KnowledgeStore
	auth      *service.AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	log := logger.NewNop()

	knowledge := store.NewKnowledgeStore(filepath.Join(dir, "knowledge_base.json"), log)
	knowledge.Load()
	conversations := store.NewConversationLog(filepath.Join(dir, "conversations.json"), log)
	conversations.Load()
	users := store.NewUserStore(filepath.Join(dir, "users.json"), log)
	users.Load()

	authSvc := service.NewAuthService(users, log)
	responder := service.NewResponder(match.NewEngine(knowledge), conversations, log)

	chatHandler := NewChatHandler(responder, log)
	authHandler := NewAuthHandler(authSvc, log)
	userHandler := NewUserHandler(authSvc, log)
	knowledgeHandler := NewKnowledgeHandler(knowledge, log)
	conversationHandler := NewConversationHandler(conversations, log)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Post("/chat", chatHandler.Send)
		r.Post("/signup", authHandler.Signup)
		r.Post("/login", authHandler.Login)
		r.Get("/verify-token", authHandler.VerifyToken)
		r.Post("/logout", authHandler.Logout)
		r.Get("/knowledge/stats", knowledgeHandler.Stats)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(authSvc))

			r.Get("/conversations", conversationHandler.List)
			r.Get("/user/profile", userHandler.Profile)

			r.Route("/knowledge", func(r chi.Router) {
				r.Get("/", knowledgeHandler.List)
				r.Get("/categories", knowledgeHandler.Categories)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(model.RoleAdmin, model.RoleAgent))

					r.Post("/", knowledgeHandler.Create)
					r.Put("/{id}", knowledgeHandler.Update)
					r.Delete("/{id}", knowledgeHandler.Delete)
				})
			})

			r.With(middleware.RequireRole(model.RoleAdmin)).Get("/admin/users", userHandler.List)
		})
	})

	return &testEnv{router: r, users: users, knowledge: knowledge, auth: authSvc}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

// loginAs creates an account with the given role and returns a live token.
func (e *testEnv) loginAs(t *testing.T, role model.Role) string {
	t.Helper()
	email := fmt.Sprintf("%s@example.com", role)
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	_, err = e.users.CreateUser(email, string(hash), "Test "+string(role), role)
	require.NoError(t, err)

	sess, err := e.auth.Login(&model.LoginRequest{Email: email, Password: "secret123"})
	require.NoError(t, err)
	return sess.Token
}

func TestChatEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/chat", "", model.ChatRequest{
		Message:  "what are your pricing plans",
		Platform: "website",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Contains(t, body["response"], "Starter ($9/month)")
	assert.NotEmpty(t, body["conversation_id"])
}

func TestChatEndpointRejectsEmptyMessage(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/chat", "", model.ChatRequest{Message: ""})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.NotEmpty(t, body["message"])
}

func TestSignupLoginVerifyLogoutFlow(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/signup", "", model.SignupRequest{
		Email:    "flow@example.com",
		Password: "secret123",
		Name:     "Flow Tester",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Account created successfully! Please login.", decodeBody(t, rec)["message"])

	// Duplicate signup fails with the validation envelope.
	rec = env.do(t, http.MethodPost, "/api/signup", "", model.SignupRequest{
		Email:    "flow@example.com",
		Password: "other",
		Name:     "Someone Else",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Email already registered", decodeBody(t, rec)["message"])

	rec = env.do(t, http.MethodPost, "/api/login", "", model.LoginRequest{
		Email:    "flow@example.com",
		Password: "secret123",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "flow@example.com", user["email"])
	assert.Equal(t, "user", user["role"])

	rec = env.do(t, http.MethodGet, "/api/verify-token", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/logout", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/verify-token", token, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	env := newTestEnv(t)
	env.loginAs(t, model.RoleUser)

	rec := env.do(t, http.MethodPost, "/api/login", "", model.LoginRequest{
		Email:    "user@example.com",
		Password: "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid email or password", decodeBody(t, rec)["message"])
}

func TestSessionGatedRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/api/conversations", "/api/user/profile", "/api/knowledge/"} {
		rec := env.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}

	rec := env.do(t, http.MethodGet, "/api/conversations", "bogus-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestKnowledgeMutationsRequireEditorRole(t *testing.T) {
	env := newTestEnv(t)
	userToken := env.loginAs(t, model.RoleUser)
	agentToken := env.loginAs(t, model.RoleAgent)

	entry := model.CreateEntryRequest{
		Question: "Do you offer onboarding calls?",
		Answer:   "Yes, on Professional and Enterprise.",
		Category: "contact",
		Keywords: []string{"onboarding"},
	}

	rec := env.do(t, http.MethodPost, "/api/knowledge/", userToken, entry)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/knowledge/", agentToken, entry)
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	created := body["entry"].(map[string]interface{})
	id := created["id"].(string)
	require.NotEmpty(t, id)

	// Readers can list but not delete.
	rec = env.do(t, http.MethodGet, "/api/knowledge/?q=onboarding", userToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	entries := decodeBody(t, rec)["entries"].([]interface{})
	assert.Len(t, entries, 1)

	rec = env.do(t, http.MethodDelete, "/api/knowledge/"+id, userToken, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/knowledge/"+id, agentToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/knowledge/"+id, agentToken, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminUserListRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	agentToken := env.loginAs(t, model.RoleAgent)
	adminToken := env.loginAs(t, model.RoleAdmin)

	rec := env.do(t, http.MethodGet, "/api/admin/users", agentToken, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/admin/users", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	users := decodeBody(t, rec)["users"].([]interface{})
	assert.Len(t, users, 2)

	// Password hashes never leave the API.
	first := users[0].(map[string]interface{})
	_, leaked := first["password_hash"]
	assert.False(t, leaked)
}

func TestConversationsReflectChatTraffic(t *testing.T) {
	env := newTestEnv(t)
	token := env.loginAs(t, model.RoleUser)

	for i := 0; i < 3; i++ {
		rec := env.do(t, http.MethodPost, "/api/chat", "", model.ChatRequest{
			Message: fmt.Sprintf("question number %d", i),
		})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := env.do(t, http.MethodGet, "/api/conversations", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	conversations := decodeBody(t, rec)["conversations"].([]interface{})
	assert.Len(t, conversations, 3)

	rec = env.do(t, http.MethodGet, "/api/conversations?limit=2", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	conversations = decodeBody(t, rec)["conversations"].([]interface{})
	assert.Len(t, conversations, 2)
}

func TestDashboardStatsCountsLocalToday(t *testing.T) {
	dir := t.TempDir()
	log := logger.NewNop()
	conversations := store.NewConversationLog(filepath.Join(dir, "conversations.json"), log)
	conversations.Load()
	knowledge := store.NewKnowledgeStore(filepath.Join(dir, "knowledge_base.json"), log)
	knowledge.Load()

	// One record from yesterday, one from right now. Only the latter
	// falls after the local midnight boundary.
	now := time.Now()
	for i, ts := range []time.Time{now.AddDate(0, 0, -1), now} {
		require.NoError(t, conversations.Append(model.ConversationRecord{
			ID:       fmt.Sprintf("conv-%d", i),
			Platform: "website",
			Customer: "Dana",
			Messages: []model.ConversationMessage{
				{Type: model.MessageTypeUser, Content: "hi", Timestamp: ts},
				{Type: model.MessageTypeBot, Content: "hello", Timestamp: ts},
			},
			Timestamp: ts,
		}))
	}

	h := NewDashboardHandler(conversations, knowledge, log)
	rec := httptest.NewRecorder()
	h.Stats(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	stats := decodeBody(t, rec)["stats"].(map[string]interface{})
	assert.Equal(t, float64(2), stats["total_conversations"])
	assert.Equal(t, float64(1), stats["today_conversations"])
	assert.Equal(t, float64(4), stats["total_messages"])
	assert.Equal(t, float64(1), stats["active_customers"])
}

func TestKnowledgeStatsEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/knowledge/stats", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decodeBody(t, rec)["stats"].(map[string]interface{})
	assert.Equal(t, float64(6), stats["categories"])
	assert.Equal(t, float64(5), stats["entries"])
}
