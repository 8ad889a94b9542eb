package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mohammedh897/graduation-backend/logging"
	"github.com/mohammedh897/graduation-backend/models"
	"github.com/mohammedh897/graduation-backend/utils"
)

type contextKey string

const claimsKey contextKey = "claims"

// JWTAuthMiddleware validates the bearer token and stows the verified claims
// in the request context.
func JWTAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			logging.Logger.Warnf("Event ID: JWT_AUTH_MISSING_HEADER, Description: Authorization header missing for request to %s %s", r.Method, r.URL.Path)
			utils.Error(w, "Authorization header missing", http.StatusUnauthorized)
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := utils.ValidateToken(tokenStr)
		if err != nil {
			logging.Logger.Warnf("Event ID: JWT_AUTH_INVALID_TOKEN, Description: Invalid token provided for request to %s %s: %v", r.Method, r.URL.Path, err)
			utils.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClaimsFrom returns the verified claims set by JWTAuthMiddleware.
func ClaimsFrom(r *http.Request) (*utils.Claims, bool) {
	claims, ok := r.Context().Value(claimsKey).(*utils.Claims)
	return claims, ok
}

// AdminOnly rejects requests from non-admin accounts.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFrom(r)
		if !ok || !claims.IsAdmin {
			utils.Error(w, "Access denied: Admins only", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SupervisorOnly rejects requests from accounts that are not supervisors.
func SupervisorOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFrom(r)
		if !ok || claims.UserType != models.UserTypeSupervisor {
			utils.Error(w, "Access denied. Supervisor only.", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
