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

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

// resetRequestedMessage is returned for known and unknown emails alike.
const resetRequestedMessage = "If this email exists, a password reset link has been sent."

type PasswordHandler struct {
	passwordService *service.PasswordService
	validator       *validator.Validate
	production      bool
}

func NewPasswordHandler(passwordService *service.PasswordService, production bool) *PasswordHandler {
	return &PasswordHandler{
		passwordService: passwordService,
		validator:       validator.New(),
		production:      production,
	}
}

func (h *PasswordHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req domain.ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		response.BadRequest(w, "Please provide a valid email address")
		return
	}

	rawToken, err := h.passwordService.RequestReset(r.Context(), req.Email)
	if err != nil {
		log.Printf("password reset request failed: %v", err)
		observability.CaptureError(err)
		response.InternalError(w, "Error processing password reset request")
		return
	}

	body := map[string]string{"message": resetRequestedMessage}

	// Without a delivery integration the raw secret is surfaced to the
	// caller so the flow stays testable. Never in production.
	if !h.production && rawToken != "" {
		body["resetToken"] = rawToken
	}

	response.Success(w, body)
}

func (h *PasswordHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	rawToken := mux.Vars(r)["token"]

	var req domain.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if req.Password == "" {
		response.BadRequest(w, "Please provide a new password")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		response.BadRequest(w, "Validation failed: "+err.Error())
		return
	}

	session, err := h.passwordService.ResetPassword(r.Context(), rawToken, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidResetToken) {
			response.BadRequest(w, "Password reset token is invalid or has expired")
			return
		}
		log.Printf("password reset failed: %v", err)
		observability.CaptureError(err)
		response.InternalError(w, "Error resetting password")
		return
	}

	setAccessCookie(w, session.AccessToken, cookieSecure(r, h.production))

	response.Success(w, &domain.AuthResponse{
		Message: "Password reset successful",
		User:    session.User.Profile(),
		Token:   session.AccessToken,
	})
}

func (h *PasswordHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetAuthUser(r)
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	var req domain.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if req.CurrentPassword == "" || req.NewPassword == "" {
		response.BadRequest(w, "Please provide current and new password")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		response.BadRequest(w, "Validation failed: "+err.Error())
		return
	}

	if err := h.passwordService.ChangePassword(r.Context(), identity.ID, &req); err != nil {
		switch {
		case errors.Is(err, service.ErrWrongPassword):
			response.BadRequest(w, "Current password is incorrect")
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFound(w, "User not found")
		default:
			log.Printf("password change failed: %v", err)
			observability.CaptureError(err)
			response.InternalError(w, "Error changing password")
		}
		return
	}

	response.Success(w, map[string]string{
		"message": "Password changed successfully",
	})
}
