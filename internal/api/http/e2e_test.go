package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/contacts-api/internal/api/http/handlers"
	"github.com/spec-kit/contacts-api/internal/auth"
	"github.com/spec-kit/contacts-api/internal/config"
	"github.com/spec-kit/contacts-api/internal/domain"
	"github.com/spec-kit/contacts-api/internal/mail"
	"github.com/spec-kit/contacts-api/internal/observability"
	"github.com/spec-kit/contacts-api/internal/service"
	"github.com/spec-kit/contacts-api/internal/storage"
)

type memUserRepo struct {
	mu     sync.Mutex
	users  map[string]*domain.User
	nextID int
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*domain.User)}
}

func (m *memUserRepo) Create(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	user.ID = fmt.Sprintf("user-%d", m.nextID)
	clone := *user
	m.users[user.ID] = &clone
	return nil
}

func (m *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (m *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memUserRepo) GetByVerificationToken(_ context.Context, token string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.VerificationToken != nil && *user.VerificationToken == token {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memUserRepo) MarkVerified(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.Verified = true
	user.VerificationToken = nil
	return nil
}

func (m *memUserRepo) UpdateSessionToken(_ context.Context, id string, token *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	if token == nil {
		user.SessionToken = nil
	} else {
		val := *token
		user.SessionToken = &val
	}
	return nil
}

func (m *memUserRepo) UpdateSubscription(_ context.Context, id string, tier domain.Subscription) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	user.Subscription = tier
	clone := *user
	return &clone, nil
}

func (m *memUserRepo) UpdateAvatarURL(_ context.Context, id, avatarURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.AvatarURL = avatarURL
	return nil
}

func (m *memUserRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.PasswordHash = passwordHash
	return nil
}

func (m *memUserRepo) byEmail(email string) *domain.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Email == email {
			return user
		}
	}
	return nil
}

func newTestApp(t *testing.T) (*fiber.App, *memUserRepo) {
	t.Helper()

	cfg := config.Config{
		App: config.AppConfig{BaseURL: "http://localhost:3000"},
		Auth: config.AuthConfig{
			JWTSecret:       "test-secret",
			SessionTTLHours: 23,
			BcryptCost:      4,
		},
		Avatar: config.AvatarConfig{Size: 250, Quality: 60},
	}

	logger := zap.NewNop()
	repo := newMemUserRepo()
	authService := service.NewAuthService(cfg, service.AuthDependencies{
		UserRepo: repo,
		Mailer:   mail.NewLogMailer(logger),
		Logger:   logger,
	})
	avatarStore := storage.NewAvatarStore(t.TempDir(), "/avatars")
	avatarService := service.NewAvatarService(cfg.Avatar, repo, avatarStore, nil, logger)

	app := fiber.New()
	RegisterMiddlewares(app, logger, observability.NewMetrics(), time.Minute)

	usersHandler := handlers.NewUsersHandler(authService, avatarService)
	mw := auth.NewMiddleware(authService.TokenManager(), repo)

	api := app.Group("/api")
	users := api.Group("/users")
	users.Post("/register", usersHandler.Register)
	users.Get("/verify/:verificationToken", usersHandler.Verify)
	users.Post("/verify", usersHandler.ResendVerification)
	users.Post("/login", usersHandler.Login)
	protected := users.Group("", mw.Handle)
	protected.Get("/current", usersHandler.Current)
	protected.Post("/logout", usersHandler.Logout)
	protected.Patch("/avatars", usersHandler.UpdateAvatar)
	protected.Patch("/", usersHandler.UpdateSubscription)

	return app, repo
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, 5000)
	require.NoError(t, err)

	var decoded map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func TestAccountLifecycle(t *testing.T) {
	app, repo := newTestApp(t)

	// Register.
	resp, body := doJSON(t, app, http.MethodPost, "/api/users/register", "", map[string]string{
		"username": "alice",
		"email":    "a@x.com",
		"password": "secret1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	user := body["user"].(map[string]any)
	assert.Equal(t, false, user["verified"])
	assert.NotEmpty(t, user["avatarURL"])

	// Login before verification is rejected distinctly.
	resp, body = doJSON(t, app, http.MethodPost, "/api/users/login", "", map[string]string{
		"email": "a@x.com", "password": "secret1",
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "EMAIL_NOT_VERIFIED", body["error"].(map[string]any)["code"])

	// Verify via the emailed token.
	stored := repo.byEmail("a@x.com")
	require.NotNil(t, stored)
	require.NotNil(t, stored.VerificationToken)
	resp, _ = doJSON(t, app, http.MethodGet, "/api/users/verify/"+*stored.VerificationToken, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Login.
	resp, body = doJSON(t, app, http.MethodPost, "/api/users/login", "", map[string]string{
		"email": "a@x.com", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token := body["auth"].(map[string]any)["token"].(string)
	require.NotEmpty(t, token)
	assert.Equal(t, "starter", body["user"].(map[string]any)["subscription"])

	// Current.
	resp, body = doJSON(t, app, http.MethodGet, "/api/users/current", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "a@x.com", body["email"])

	// Upgrade subscription.
	resp, body = doJSON(t, app, http.MethodPatch, "/api/users/", token, map[string]string{
		"subscription": "pro",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "pro", body["subscription"])

	// Logout, then the same token is rejected even though it has not expired.
	resp, _ = doJSON(t, app, http.MethodPost, "/api/users/logout", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = doJSON(t, app, http.MethodGet, "/api/users/current", token, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", body["error"].(map[string]any)["code"])
}

func TestRegisterValidation(t *testing.T) {
	app, _ := newTestApp(t)

	resp, body := doJSON(t, app, http.MethodPost, "/api/users/register", "", map[string]string{
		"username": "alice",
		"email":    "not-an-email",
		"password": "secret1",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", body["error"].(map[string]any)["code"])
}

func TestUpdateAvatarWithoutFile(t *testing.T) {
	app, repo := newTestApp(t)

	// Seed a verified, signed-in user.
	_, _ = doJSON(t, app, http.MethodPost, "/api/users/register", "", map[string]string{
		"username": "alice", "email": "a@x.com", "password": "secret1",
	})
	stored := repo.byEmail("a@x.com")
	_, _ = doJSON(t, app, http.MethodGet, "/api/users/verify/"+*stored.VerificationToken, "", nil)
	_, body := doJSON(t, app, http.MethodPost, "/api/users/login", "", map[string]string{
		"email": "a@x.com", "password": "secret1",
	})
	token := body["auth"].(map[string]any)["token"].(string)
	before := repo.byEmail("a@x.com").AvatarURL

	req := httptest.NewRequest(http.MethodPatch, "/api/users/avatars", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "MISSING_FILE", decoded["error"].(map[string]any)["code"])

	assert.Equal(t, before, repo.byEmail("a@x.com").AvatarURL)
}
