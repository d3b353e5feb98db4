package repository

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"social-media-server/internal/domain"

	"github.com/go-kivik/kivik/v4"
)

// UserRepository is the credential store consumed by the auth core. Lookups
// return the full document including the password hash; callers are
// responsible for projecting it away before anything leaves the service
// layer.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	// FindByEmailOrUsername resolves both identity fields in a single query
	// so duplicate checks do not race between two separate lookups.
	FindByEmailOrUsername(ctx context.Context, email, username string) (*domain.User, error)
	// FindByResetToken matches a stored reset-token digest whose expiry is
	// still in the future.
	FindByResetToken(ctx context.Context, digest string, now time.Time) (*domain.User, error)
	// Update writes the document conditioned on user.Rev. A concurrent
	// writer that got there first causes ErrConflict; nothing is written.
	Update(ctx context.Context, user *domain.User) error
}

type userRepository struct {
	client *kivik.Client
	dbName string
}

func NewUserRepository(client *kivik.Client, dbName string) UserRepository {
	return &userRepository{
		client: client,
		dbName: dbName,
	}
}

// EnsureIndexes creates the Mango indexes backing the selector queries.
// Safe to call on every startup.
func EnsureIndexes(ctx context.Context, client *kivik.Client, dbName string) error {
	db := client.DB(dbName)

	indexes := map[string][]string{
		"idx-email":       {"email"},
		"idx-username":    {"username"},
		"idx-reset-token": {"passwordResetToken", "passwordResetExpires"},
	}

	for name, fields := range indexes {
		index := map[string]interface{}{"fields": fields}
		if err := db.CreateIndex(ctx, "", name, index); err != nil {
			return fmt.Errorf("failed to create index %s: %w", name, err)
		}
	}

	return nil
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	db := r.client.DB(r.dbName)

	rev, err := db.Put(ctx, docID(user.ID), user)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	user.Rev = rev
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	db := r.client.DB(r.dbName)

	row := db.Get(ctx, docID(id))

	var user domain.User
	if err := row.ScanDoc(&user); err != nil {
		if kivik.HTTPStatus(err) == http.StatusNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user by id: %w", err)
	}

	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	selector := map[string]interface{}{
		"email": email,
	}
	return r.findOne(ctx, selector)
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	selector := map[string]interface{}{
		"username": username,
	}
	return r.findOne(ctx, selector)
}

func (r *userRepository) FindByEmailOrUsername(ctx context.Context, email, username string) (*domain.User, error) {
	selector := map[string]interface{}{
		"$or": []map[string]interface{}{
			{"email": email},
			{"username": username},
		},
	}
	return r.findOne(ctx, selector)
}

func (r *userRepository) FindByResetToken(ctx context.Context, digest string, now time.Time) (*domain.User, error) {
	// Expiries are stored second-truncated UTC so the RFC 3339 strings
	// compare correctly inside the selector.
	selector := map[string]interface{}{
		"passwordResetToken": digest,
		"passwordResetExpires": map[string]interface{}{
			"$gt": now.UTC().Truncate(time.Second).Format(time.RFC3339),
		},
	}
	return r.findOne(ctx, selector)
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	db := r.client.DB(r.dbName)

	rev, err := db.Put(ctx, docID(user.ID), user)
	if err != nil {
		switch kivik.HTTPStatus(err) {
		case http.StatusConflict:
			return ErrConflict
		case http.StatusNotFound:
			return ErrNotFound
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	user.Rev = rev
	return nil
}

func (r *userRepository) findOne(ctx context.Context, selector map[string]interface{}) (*domain.User, error) {
	db := r.client.DB(r.dbName)

	query := map[string]interface{}{
		"selector": selector,
		"limit":    1,
	}

	rows := db.Find(ctx, query)
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ErrNotFound
	}

	var user domain.User
	if err := rows.ScanDoc(&user); err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	return &user, nil
}

func docID(userID string) string {
	return fmt.Sprintf("user:%s", userID)
}
