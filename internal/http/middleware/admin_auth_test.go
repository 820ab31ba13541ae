package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedAdminToken(t *testing.T, secret string, method jwt.SigningMethod) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   "broker",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(5 * time.Minute)),
	}
	signed, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestAdminJWT(t *testing.T) {
	good := signedAdminToken(t, "secret", jwt.SigningMethodHS256)

	tests := []struct {
		name       string
		secret     string
		prepare    func(r *http.Request)
		wantStatus int
		wantCookie bool
	}{
		{name: "closed without secret", secret: "", prepare: func(r *http.Request) {}, wantStatus: http.StatusServiceUnavailable},
		{name: "closed without secret ignores token", secret: "", prepare: func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+good)
		}, wantStatus: http.StatusServiceUnavailable},
		{name: "missing token", secret: "secret", prepare: func(r *http.Request) {}, wantStatus: http.StatusUnauthorized},
		{name: "wrong key", secret: "secret", prepare: func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+signedAdminToken(t, "other", jwt.SigningMethodHS256))
		}, wantStatus: http.StatusUnauthorized},
		{name: "wrong algorithm", secret: "secret", prepare: func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+signedAdminToken(t, "secret", jwt.SigningMethodHS512))
		}, wantStatus: http.StatusUnauthorized},
		{name: "bearer header", secret: "secret", prepare: func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+good)
		}, wantStatus: http.StatusOK},
		{name: "cookie", secret: "secret", prepare: func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: AdminCookie, Value: good})
		}, wantStatus: http.StatusOK},
		{name: "query sets cookie", secret: "secret", prepare: func(r *http.Request) {
			r.URL.RawQuery = "token=" + good
		}, wantStatus: http.StatusOK, wantCookie: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var subject string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				claims, ok := AdminClaimsFromContext(r.Context())
				require.True(t, ok)
				subject = claims.Subject
				w.WriteHeader(http.StatusOK)
			})
			req := httptest.NewRequest(http.MethodGet, "/admin/leads", nil)
			tt.prepare(req)
			rec := httptest.NewRecorder()

			AdminJWT(tt.secret)(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "broker", subject)
			}
			cookies := rec.Result().Cookies()
			if tt.wantCookie {
				require.Len(t, cookies, 1)
				assert.Equal(t, AdminCookie, cookies[0].Name)
				assert.True(t, cookies[0].HttpOnly)
			} else {
				assert.Empty(t, cookies)
			}
		})
	}
}
