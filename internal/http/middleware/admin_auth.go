package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const adminClaimsKey contextKey = "adminClaims"

// AdminCookie carries the admin token for browser sessions.
const AdminCookie = "admin_token"

// AdminDisabledMessage is returned while no admin secret is configured.
const AdminDisabledMessage = "Admin views are disabled until ADMIN_JWT_SECRET is set."

// AdminJWT guards the admin views with an HS256 token. The token is read from
// the Authorization header, then the admin cookie, then ?token=. A token
// accepted from the query string is stored in the cookie so links keep working.
// Without a secret every request gets 503.
func AdminJWT(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusServiceUnavailable)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": AdminDisabledMessage})
				return
			}
			raw, fromQuery := adminToken(r)
			if raw == "" {
				http.Error(w, "missing admin token", http.StatusUnauthorized)
				return
			}
			claims := jwt.RegisteredClaims{}
			token, err := jwt.ParseWithClaims(raw, &claims, func(token *jwt.Token) (any, error) {
				return []byte(secret), nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil || !token.Valid {
				http.Error(w, "invalid admin token", http.StatusUnauthorized)
				return
			}
			if fromQuery {
				http.SetCookie(w, &http.Cookie{
					Name:     AdminCookie,
					Value:    raw,
					Path:     "/admin",
					HttpOnly: true,
					Secure:   r.TLS != nil,
					SameSite: http.SameSiteLaxMode,
				})
			}
			ctx := context.WithValue(r.Context(), adminClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func adminToken(r *http.Request) (string, bool) {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer ")), false
	}
	if c, err := r.Cookie(AdminCookie); err == nil && c.Value != "" {
		return c.Value, false
	}
	if q := strings.TrimSpace(r.URL.Query().Get("token")); q != "" {
		return q, true
	}
	return "", false
}

// AdminClaimsFromContext returns the verified admin claims, if any.
func AdminClaimsFromContext(ctx context.Context) (jwt.RegisteredClaims, bool) {
	claims, ok := ctx.Value(adminClaimsKey).(jwt.RegisteredClaims)
	return claims, ok
}
