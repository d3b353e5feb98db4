package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"social-media-server/internal/domain"
	"social-media-server/internal/middleware"
	"social-media-server/internal/observability"
	"social-media-server/internal/service"
	"social-media-server/pkg/response"
	"social-media-server/pkg/token"

	"github.com/go-playground/validator/v10"
)

const accessTokenExpiresIn = "1h"

type AuthHandler struct {
	authService *service.AuthService
	userService *service.UserService
	validator   *validator.Validate
	production  bool
}

func NewAuthHandler(authService *service.AuthService, userService *service.UserService, production bool) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
		validator:   validator.New(),
		production:  production,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if req.Username == "" || req.Email == "" || req.Password == "" {
		response.BadRequest(w, "Please provide username, email, and password")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		response.BadRequest(w, "Validation failed: "+err.Error())
		return
	}

	session, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrDuplicateIdentity) {
			response.BadRequest(w, "User with this email or username already exists")
			return
		}
		log.Printf("registration failed: %v", err)
		observability.CaptureError(err)
		response.InternalError(w, "Server error during registration")
		return
	}

	secure := cookieSecure(r, h.production)
	setAccessCookie(w, session.AccessToken, secure)
	setRefreshCookie(w, session.RefreshToken, secure)

	response.Created(w, &domain.AuthResponse{
		Message:   "User registered successfully",
		User:      session.User.Profile(),
		Token:     session.AccessToken,
		ExpiresIn: accessTokenExpiresIn,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		response.BadRequest(w, "Please provide email and password")
		return
	}

	session, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Unauthorized(w, "Invalid credentials")
			return
		}
		log.Printf("login failed: %v", err)
		observability.CaptureError(err)
		response.InternalError(w, "Server error during login")
		return
	}

	secure := cookieSecure(r, h.production)
	setAccessCookie(w, session.AccessToken, secure)
	setRefreshCookie(w, session.RefreshToken, secure)

	response.Success(w, &domain.AuthResponse{
		Message:   "Login successful",
		User:      session.User.Profile(),
		Token:     session.AccessToken,
		ExpiresIn: accessTokenExpiresIn,
	})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetAuthUser(r)
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	user, err := h.userService.GetByID(r.Context(), identity.ID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(w, "User not found")
			return
		}
		log.Printf("failed to fetch current user: %v", err)
		observability.CaptureError(err)
		response.InternalError(w, "Server error while fetching user data")
		return
	}

	response.Success(w, user.Profile())
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(RefreshTokenCookie)
	if err != nil || cookie.Value == "" {
		response.Unauthorized(w, "No refresh token provided")
		return
	}

	accessToken, err := h.authService.Refresh(r.Context(), cookie.Value)
	if err != nil {
		switch {
		case errors.Is(err, token.ErrWrongKind):
			response.Unauthorized(w, "Invalid token type")
		case errors.Is(err, service.ErrUserNotFound):
			response.Unauthorized(w, "User not found")
		case errors.Is(err, token.ErrExpired),
			errors.Is(err, token.ErrMalformed),
			errors.Is(err, token.ErrWrongIssuer),
			errors.Is(err, token.ErrWrongAudience):
			response.Unauthorized(w, "Invalid refresh token")
		default:
			log.Printf("token refresh failed: %v", err)
			observability.CaptureError(err)
			response.InternalError(w, "Server error during token refresh")
		}
		return
	}

	setAccessCookie(w, accessToken, cookieSecure(r, h.production))

	response.Success(w, &domain.RefreshResponse{
		Message:   "Token refreshed successfully",
		Token:     accessToken,
		ExpiresIn: accessTokenExpiresIn,
	})
}

// Logout clears both credentials. It succeeds whether or not a session
// exists.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	clearAuthCookies(w, cookieSecure(r, h.production))

	response.Success(w, map[string]string{
		"message": "Logged out successfully",
	})
}
