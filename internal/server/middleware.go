package server

import (
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// adminAuthMiddleware admits requests whose bearer token matches the bcrypt
// hash configured for the admin endpoints.
func adminAuthMiddleware(tokenHash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !found || token == "" {
				writeError(w, http.StatusUnauthorized, "not authenticated")
				return
			}
			if err := bcrypt.CompareHashAndPassword([]byte(tokenHash), []byte(token)); err != nil {
				writeError(w, http.StatusUnauthorized, "not authenticated")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
