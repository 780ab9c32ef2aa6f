// Package api implements the Stickon REST API using chi.
package api

import (
	"net/http"
	"strings"

	"github.com/stickon/stickon/internal/session"
)

// AuthMiddleware returns middleware that validates the session token.
// If enabled is false, all requests pass through (local single-user mode).
// If enabled is true, requests must carry "Authorization: Bearer <token>"
// matching the active session.
func AuthMiddleware(enabled bool, sessions *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !enabled {
				next.ServeHTTP(w, r)
				return
			}
			current, err := sessions.Current()
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, errorBody("no active session"))
				return
			}
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") || strings.TrimPrefix(auth, "Bearer ") != current.Token {
				writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
