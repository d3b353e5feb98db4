package service

import (
	"context"
	"strconv"
	"sync"
	"time"

	"social-media-server/internal/domain"
	"social-media-server/internal/repository"
)

// mockUserRepository emulates the document store including its conditional
// update semantics: every write bumps the revision, and an update presenting
// a stale revision fails with ErrConflict without writing.
type mockUserRepository struct {
	mu    sync.Mutex
	users map[string]*domain.User
	err   error
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		users: make(map[string]*domain.User),
	}
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}

	user.Rev = "1"
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}

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

	if m.err != nil {
		return m.err
	}

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

	if m.err != nil {
		return nil, m.err
	}

	for _, user := range m.users {
		if match(user) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}
