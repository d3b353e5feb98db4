package domain

import "time"

// User is the principal record persisted in the document store. Password
// holds the bcrypt hash; it is stored with the document but must never leave
// the service layer — responses only ever carry the Profile projection.
//
// PasswordResetToken and PasswordResetExpires are set together when a reset
// is requested and cleared together, atomically with the password update,
// when the reset is consumed.
type User struct {
	ID                   string     `json:"id"`
	Rev                  string     `json:"_rev,omitempty"`
	Username             string     `json:"username"`
	Email                string     `json:"email"`
	Password             string     `json:"password,omitempty"`
	Avatar               string     `json:"avatar,omitempty"`
	Bio                  string     `json:"bio,omitempty"`
	PasswordResetToken   string     `json:"passwordResetToken,omitempty"`
	PasswordResetExpires *time.Time `json:"passwordResetExpires,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// Profile is the public projection of a principal.
type Profile struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Avatar    string    `json:"avatar,omitempty"`
	Bio       string    `json:"bio,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) Profile() *Profile {
	return &Profile{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Avatar:    u.Avatar,
		Bio:       u.Bio,
		CreatedAt: u.CreatedAt,
	}
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=20,alphanum"`
	Email    string `json:"email" validate:"required,email,max=100"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,max=128"`
}

// AuthResponse is returned by register, login and reset completion. The
// token is also set as an http-only cookie; it appears in the body for
// clients that manage tokens themselves.
type AuthResponse struct {
	Message   string   `json:"message"`
	User      *Profile `json:"user"`
	Token     string   `json:"token"`
	ExpiresIn string   `json:"expiresIn,omitempty"`
}

type RefreshResponse struct {
	Message   string `json:"message"`
	Token     string `json:"token"`
	ExpiresIn string `json:"expiresIn"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=128"`
}

type UpdateProfileRequest struct {
	Username string `json:"username" validate:"omitempty,min=3,max=20,alphanum"`
	Bio      string `json:"bio" validate:"omitempty,max=500"`
	Avatar   string `json:"avatar" validate:"omitempty,uri,max=500"`
}
