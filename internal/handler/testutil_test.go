package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"social-media-server/internal/domain"
	"social-media-server/internal/mailer"
	"social-media-server/internal/middleware"
	"social-media-server/internal/repository"
	"social-media-server/internal/service"
	"social-media-server/pkg/token"

	"github.com/gorilla/mux"
)

const testSecret = "handler-test-secret-32-chars!!!!"

// mockUserRepository mirrors the document store's conditional update
// semantics so the full request flows behave like production.
type mockUserRepository struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: make(map[string]*domain.User)}
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user.Rev = "1"
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if user, ok := m.users[id]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return m.findWhere(func(u *domain.User) bool { return u.Email == email })
}

func (m *mockUserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return m.findWhere(func(u *domain.User) bool { return u.Username == username })
}

func (m *mockUserRepository) FindByEmailOrUsername(ctx context.Context, email, username string) (*domain.User, error) {
	return m.findWhere(func(u *domain.User) bool {
		return u.Email == email || u.Username == username
	})
}

func (m *mockUserRepository) FindByResetToken(ctx context.Context, digest string, now time.Time) (*domain.User, error) {
	return m.findWhere(func(u *domain.User) bool {
		return u.PasswordResetToken == digest &&
			u.PasswordResetExpires != nil &&
			u.PasswordResetExpires.After(now)
	})
}

func (m *mockUserRepository) Update(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.users[user.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if stored.Rev != user.Rev {
		return repository.ErrConflict
	}

	rev, _ := strconv.Atoi(stored.Rev)
	user.Rev = strconv.Itoa(rev + 1)

	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *mockUserRepository) findWhere(match func(*domain.User) bool) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, user := range m.users {
		if match(user) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

// newTestServer wires the real services, handlers and auth gate around the
// mock store, mirroring the production router.
func newTestServer(production bool) (*mux.Router, *mockUserRepository) {
	repo := newMockUserRepository()
	codec := token.NewCodec(testSecret, "")

	authService := service.NewAuthService(repo, codec)
	userService := service.NewUserService(repo)
	passwordService := service.NewPasswordService(repo, codec, mailer.NewLogMailer(), "http://localhost:3000")

	authHandler := NewAuthHandler(authService, userService, production)
	passwordHandler := NewPasswordHandler(passwordService, production)
	userHandler := NewUserHandler(userService)

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")
	api.HandleFunc("/auth/refresh", authHandler.Refresh).Methods("POST")
	api.HandleFunc("/auth/logout", authHandler.Logout).Methods("POST")
	api.HandleFunc("/auth/forgot-password", passwordHandler.ForgotPassword).Methods("POST")
	api.HandleFunc("/auth/reset-password/{token}", passwordHandler.ResetPassword).Methods("POST")

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth(codec, repo))
	protected.HandleFunc("/auth/me", authHandler.Me).Methods("GET")
	protected.HandleFunc("/auth/change-password", passwordHandler.ChangePassword).Methods("PUT")
	protected.HandleFunc("/users/me", userHandler.UpdateMe).Methods("PUT")

	return r, repo
}

func doJSON(t *testing.T, router *mux.Router, method, path string, body interface{}, mutate func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if mutate != nil {
		mutate(req)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body %q: %v", rec.Body, err)
	}
	return body
}

func findCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()

	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func registerUser(t *testing.T, router *mux.Router, username, email, password string) *httptest.ResponseRecorder {
	t.Helper()

	rec := doJSON(t, router, http.MethodPost, "/api/auth/register", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}, nil)

	if rec.Code != http.StatusCreated {
		t.Fatalf("register returned %d: %s", rec.Code, rec.Body)
	}
	return rec
}
