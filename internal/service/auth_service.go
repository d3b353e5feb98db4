package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"social-media-server/internal/domain"
	"social-media-server/internal/repository"
	"social-media-server/pkg/hash"
	"social-media-server/pkg/token"

	"github.com/google/uuid"
)

// Session is the result of a successful credential exchange: the principal
// plus a freshly minted token pair.
type Session struct {
	User         *domain.User
	AccessToken  string
	RefreshToken string
}

type AuthService struct {
	userRepo repository.UserRepository
	codec    *token.Codec
}

func NewAuthService(userRepo repository.UserRepository, codec *token.Codec) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		codec:    codec,
	}
}

func (s *AuthService) Register(ctx context.Context, req *domain.RegisterRequest) (*Session, error) {
	// Both identity fields are checked in one query; two separate lookups
	// would leave a window where each passes against a concurrent register.
	_, err := s.userRepo.FindByEmailOrUsername(ctx, req.Email, req.Username)
	if err == nil {
		return nil, ErrDuplicateIdentity
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing identity: %w", err)
	}

	hashedPassword, err := hash.Password(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:        uuid.New().String(),
		Username:  req.Username,
		Email:     req.Email,
		Password:  hashedPassword,
		Avatar:    defaultAvatar(req.Username),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.issueSession(user)
}

func (s *AuthService) Login(ctx context.Context, req *domain.LoginRequest) (*Session, error) {
	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := hash.ComparePassword(user.Password, req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issueSession(user)
}

// Refresh verifies a refresh-kind token and mints a new access token for its
// subject. The refresh token itself is not rotated; a presented token stays
// valid for the remainder of its window.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.codec.Verify(refreshToken, token.KindRefresh)
	if err != nil {
		return "", err
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("failed to look up user: %w", err)
	}

	accessToken, err := s.codec.Issue(user.ID, token.KindAccess)
	if err != nil {
		return "", fmt.Errorf("failed to generate access token: %w", err)
	}

	return accessToken, nil
}

func (s *AuthService) issueSession(user *domain.User) (*Session, error) {
	accessToken, err := s.codec.Issue(user.ID, token.KindAccess)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.codec.Issue(user.ID, token.KindRefresh)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &Session{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func defaultAvatar(username string) string {
	return "https://ui-avatars.com/api/?name=" + url.QueryEscape(username)
}
