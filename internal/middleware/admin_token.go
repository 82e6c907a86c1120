package middleware

import (
	"net/http"
)

// AdminTokenMiddleware validates the admin token from the X-Admin-Token
// header against the configured shared secret. It rejects before any route
// handler runs, so unauthorized requests cause no side effects.
func AdminTokenMiddleware(adminToken string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Extract token from header
			providedToken := r.Header.Get("X-Admin-Token")

			// If no token provided or it doesn't match, return 401
			if providedToken == "" || providedToken != adminToken {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"success":false,"message":"Unauthorized"}`))
				return
			}

			// Token is valid, proceed to next handler
			next.ServeHTTP(w, r)
		})
	}
}
