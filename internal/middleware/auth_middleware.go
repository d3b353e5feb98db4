package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"social-media-server/internal/observability"
	"social-media-server/internal/repository"
	"social-media-server/pkg/response"
	"social-media-server/pkg/token"
)

type contextKey string

const authUserKey contextKey = "authUser"

// AccessTokenCookie carries the access token for browser clients that do not
// manage an Authorization header themselves.
const AccessTokenCookie = "token"

// AuthUser is the verified identity attached to the request context after
// the authenticator accepts a request. It never carries the password hash.
type AuthUser struct {
	ID       string
	Username string
	Email    string
}

// Auth gates every protected route: it extracts a bearer token, verifies it
// as an access-kind token, resolves the principal and attaches the identity
// to the request context. Every failure mode denies the request.
func Auth(codec *token.Codec, users repository.UserRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, ok := extractToken(r)
			if !ok {
				response.Unauthorized(w, "Access denied. No token provided.")
				return
			}

			claims, err := codec.Verify(tokenStr, token.KindAccess)
			if err != nil {
				switch {
				case errors.Is(err, token.ErrExpired):
					// Distinguishable so clients can trigger the refresh
					// flow instead of forcing a re-login.
					response.ErrorCode(w, http.StatusUnauthorized, "Token expired", "TOKEN_EXPIRED")
				case errors.Is(err, token.ErrWrongKind):
					response.Unauthorized(w, "Invalid token type")
				default:
					response.Unauthorized(w, "Invalid token")
				}
				return
			}

			user, err := users.FindByID(r.Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					// A valid token for a vanished principal is treated as
					// an invalid token, not a 404.
					response.Unauthorized(w, "Token is not valid - user not found")
					return
				}
				log.Printf("auth middleware: failed to resolve user %s: %v", claims.UserID, err)
				observability.CaptureError(err)
				response.InternalError(w, "Server error during authentication")
				return
			}

			identity := &AuthUser{
				ID:       user.ID,
				Username: user.Username,
				Email:    user.Email,
			}

			ctx := context.WithValue(r.Context(), authUserKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken tries the ordered credential sources: the Authorization
// header wins over the access-token cookie.
func extractToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1]), true
		}
		return "", false
	}

	if cookie, err := r.Cookie(AccessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value, true
	}

	return "", false
}

// GetAuthUser returns the identity attached by Auth, if any.
func GetAuthUser(r *http.Request) (*AuthUser, bool) {
	user, ok := r.Context().Value(authUserKey).(*AuthUser)
	return user, ok
}
