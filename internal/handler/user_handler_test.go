package handler

import (
	"net/http"
	"testing"
)

func TestUpdateProfile(t *testing.T) {
	router, _ := newTestServer(false)

	rec := registerUser(t, router, "alice", "alice@x.com", "Passw0rd!")
	accessToken, _ := decodeBody(t, rec)["token"].(string)
	registerUser(t, router, "bob", "bob@x.com", "Passw0rd!")

	withAuth := func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+accessToken)
	}

	t.Run("requires authentication", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPut, "/api/users/me", map[string]string{
			"bio": "hello",
		}, nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("unauthenticated update returned %d", rec.Code)
		}
	})

	t.Run("username collision", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPut, "/api/users/me", map[string]string{
			"username": "bob",
		}, withAuth)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
		if got := decodeBody(t, rec)["message"]; got != "Username already taken" {
			t.Errorf("message = %v", got)
		}
	})

	t.Run("successful update", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPut, "/api/users/me", map[string]string{
			"bio":    "gopher",
			"avatar": "https://example.com/alice.png",
		}, withAuth)
		if rec.Code != http.StatusOK {
			t.Fatalf("update returned %d: %s", rec.Code, rec.Body)
		}

		body := decodeBody(t, rec)
		if body["bio"] != "gopher" {
			t.Errorf("bio = %v, want gopher", body["bio"])
		}
		if body["username"] != "alice" {
			t.Errorf("username = %v, want alice (unchanged)", body["username"])
		}
	})

	t.Run("empty update rejected", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPut, "/api/users/me", map[string]string{}, withAuth)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("empty update returned %d", rec.Code)
		}
	})
}
