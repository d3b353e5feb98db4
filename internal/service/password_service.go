package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"social-media-server/internal/domain"
	"social-media-server/internal/mailer"
	"social-media-server/internal/repository"
	"social-media-server/pkg/hash"
	"social-media-server/pkg/token"
)

// ResetTokenTTL bounds how long a requested password reset stays usable.
const ResetTokenTTL = 15 * time.Minute

type PasswordService struct {
	userRepo repository.UserRepository
	codec    *token.Codec
	mailer   mailer.Mailer
	baseURL  string
}

func NewPasswordService(userRepo repository.UserRepository, codec *token.Codec, m mailer.Mailer, baseURL string) *PasswordService {
	return &PasswordService{
		userRepo: userRepo,
		codec:    codec,
		mailer:   m,
		baseURL:  baseURL,
	}
}

// RequestReset issues a one-time reset secret for the given email. An
// unknown email is not an error: callers respond identically either way so
// the endpoint cannot be used to enumerate accounts. The returned raw secret
// is empty when no user matched.
func (s *PasswordService) RequestReset(ctx context.Context, email string) (string, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to look up user: %w", err)
	}

	raw, digest, err := hash.NewResetSecret()
	if err != nil {
		return "", err
	}

	expires := time.Now().UTC().Add(ResetTokenTTL).Truncate(time.Second)
	user.PasswordResetToken = digest
	user.PasswordResetExpires = &expires
	user.UpdatedAt = time.Now().UTC()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return "", fmt.Errorf("failed to persist reset token: %w", err)
	}

	resetURL := fmt.Sprintf("%s/reset-password/%s", s.baseURL, raw)
	if err := s.mailer.SendPasswordReset(ctx, user.Email, resetURL); err != nil {
		return "", fmt.Errorf("failed to deliver reset message: %w", err)
	}

	return raw, nil
}

// ResetPassword consumes a raw reset secret: the password hash is replaced
// and both reset fields are cleared in a single rev-conditioned document
// update, so of two concurrent calls presenting the same secret exactly one
// succeeds and the other observes ErrInvalidResetToken.
func (s *PasswordService) ResetPassword(ctx context.Context, rawToken, newPassword string) (*Session, error) {
	digest := hash.ResetSecretDigest(rawToken)

	user, err := s.userRepo.FindByResetToken(ctx, digest, time.Now())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidResetToken
		}
		return nil, fmt.Errorf("failed to look up reset token: %w", err)
	}

	if user.PasswordResetExpires == nil || time.Now().After(*user.PasswordResetExpires) {
		return nil, ErrInvalidResetToken
	}

	hashedPassword, err := hash.Password(newPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user.Password = hashedPassword
	user.PasswordResetToken = ""
	user.PasswordResetExpires = nil
	user.UpdatedAt = time.Now().UTC()

	if err := s.userRepo.Update(ctx, user); err != nil {
		// Losing the rev race means another request consumed the secret
		// first; the token is spent.
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrInvalidResetToken
		}
		return nil, fmt.Errorf("failed to reset password: %w", err)
	}

	accessToken, err := s.codec.Issue(user.ID, token.KindAccess)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &Session{User: user, AccessToken: accessToken}, nil
}

// ChangePassword re-verifies the caller's current password before storing a
// new hash. No new token is issued; the caller already holds a session.
func (s *PasswordService) ChangePassword(ctx context.Context, userID string, req *domain.ChangePasswordRequest) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	if err := hash.ComparePassword(user.Password, req.CurrentPassword); err != nil {
		return ErrWrongPassword
	}

	hashedPassword, err := hash.Password(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user.Password = hashedPassword
	user.UpdatedAt = time.Now().UTC()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}
