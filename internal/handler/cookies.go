package handler

import (
	"net/http"

	"social-media-server/internal/middleware"
	"social-media-server/pkg/token"
)

const (
	// RefreshTokenCookie is scoped to the refresh endpoint only, so the
	// long-lived credential never rides along on ordinary API calls.
	RefreshTokenCookie = "refreshToken"
	RefreshCookiePath  = "/api/auth/refresh"
)

func setAccessCookie(w http.ResponseWriter, accessToken string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    accessToken,
		Path:     "/",
		MaxAge:   int(token.AccessTokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func setRefreshCookie(w http.ResponseWriter, refreshToken string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshTokenCookie,
		Value:    refreshToken,
		Path:     RefreshCookiePath,
		MaxAge:   int(token.RefreshTokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// clearAuthCookies expires both credentials. Attributes must match the ones
// the cookies were set with; a path mismatch silently leaves the cookie in
// place.
func clearAuthCookies(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshTokenCookie,
		Value:    "",
		Path:     RefreshCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func cookieSecure(r *http.Request, production bool) bool {
	return production || r.TLS != nil
}
