package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/harborstay/reservations/internal/http/response"
	"github.com/harborstay/reservations/pkg/auth"
	"github.com/harborstay/reservations/pkg/logger"
)

type claimsKey struct{}

// RequireJWT authenticates the request and stashes the parsed claims on the
// context. The acting user for every operation comes from these claims,
// never from request bodies.
func RequireJWT(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				response.Unauthorized(w, "missing or invalid authorization header")
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")
			claims, err := auth.Parse(token, secret)
			if err != nil {
				response.Unauthorized(w, "invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), logger.UserIDKey, claims.Sub.String())
			ctx = context.WithValue(ctx, claimsKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Claims returns the authenticated claims, or nil when the route did not
// pass through RequireJWT.
func Claims(r *http.Request) *auth.Claims {
	claims, _ := r.Context().Value(claimsKey{}).(*auth.Claims)
	return claims
}
