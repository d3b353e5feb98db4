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
)

type UserHandler struct {
	userService *service.UserService
	validator   *validator.Validate
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
		validator:   validator.New(),
	}
}

func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetAuthUser(r)
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	var req domain.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if req.Username == "" && req.Bio == "" && req.Avatar == "" {
		response.BadRequest(w, "Nothing to update")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		response.BadRequest(w, "Validation failed: "+err.Error())
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), identity.ID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUsernameTaken):
			response.BadRequest(w, "Username already taken")
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFound(w, "User not found")
		default:
			log.Printf("profile update failed: %v", err)
			observability.CaptureError(err)
			response.InternalError(w, "Server error while updating profile")
		}
		return
	}

	response.Success(w, user.Profile())
}
