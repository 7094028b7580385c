package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const backendClaimsKey contextKey = "backendClaims"

// BackendAuth guards endpoints called by the travel backend. A request passes
// with the shared bearer token or with an HS256 JWT signed by jwtSecret.
// When neither is configured every request is rejected.
func BackendAuth(token, jwtSecret string) func(http.Handler) http.Handler {
	token = strings.TrimSpace(token)
	jwtSecret = strings.TrimSpace(jwtSecret)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" && jwtSecret == "" {
				writeAuthError(w, "backend auth not configured")
				return
			}
			auth := r.Header.Get("Authorization")
			if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
				writeAuthError(w, "missing authorization header")
				return
			}
			presented := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if token != "" && subtle.ConstantTimeCompare([]byte(presented), []byte(token)) == 1 {
				next.ServeHTTP(w, r)
				return
			}
			if jwtSecret == "" {
				writeAuthError(w, "invalid token")
				return
			}
			claims := jwt.RegisteredClaims{}
			parsed, err := jwt.ParseWithClaims(presented, &claims, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(jwtSecret), nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil || !parsed.Valid {
				writeAuthError(w, "invalid token")
				return
			}
			ctx := context.WithValue(r.Context(), backendClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BackendClaimsFromContext returns JWT claims when the caller used a token.
func BackendClaimsFromContext(ctx context.Context) (jwt.RegisteredClaims, bool) {
	claims, ok := ctx.Value(backendClaimsKey).(jwt.RegisteredClaims)
	return claims, ok
}

func writeAuthError(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"` + msg + `"}`))
}
