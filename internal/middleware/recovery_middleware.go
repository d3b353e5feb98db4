package middleware

import (
	"log"
	"net/http"
	"runtime/debug"

	"social-media-server/internal/observability"
	"social-media-server/pkg/response"
)

// RecoveryMiddleware turns a panicking handler into an opaque 500 instead of
// tearing down the connection.
func RecoveryMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					stack := debug.Stack()
					log.Printf("panic serving %s %s: %v\n%s", r.Method, r.URL.Path, rec, stack)
					observability.CapturePanic(rec, stack)
					response.InternalError(w, "Internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
