package api

import (
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// revokedAdminTokens holds logged-out admin JWTs until their natural expiry.
// The set stays tiny (one entry per explicit logout) so a mutex-guarded map is
// enough; entries are dropped lazily on lookup.
var revokedAdminTokens = struct {
	sync.Mutex
	m map[string]time.Time
}{m: map[string]time.Time{}}

// RevokeAdminToken denylists an admin JWT until expiresAt
func RevokeAdminToken(token string, expiresAt time.Time) {
	revokedAdminTokens.Lock()
	defer revokedAdminTokens.Unlock()
	for t, exp := range revokedAdminTokens.m {
		if time.Now().After(exp) {
			delete(revokedAdminTokens.m, t)
		}
	}
	revokedAdminTokens.m[token] = expiresAt
}

func isAdminTokenRevoked(token string) bool {
	revokedAdminTokens.Lock()
	defer revokedAdminTokens.Unlock()
	exp, ok := revokedAdminTokens.m[token]
	if !ok {
		return false
	}
	if time.Now().After(exp) {
		delete(revokedAdminTokens.m, token)
		return false
	}
	return true
}

// AdminMiddleware guards the review-dashboard routes. It requires a valid,
// non-revoked admin JWT issued by AdminLoginHandler.
func AdminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		tokenString := BearerToken(r)
		if tokenString == "" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error": "unauthorized"}`))
			return
		}

		claims, err := ParseAdminToken(tokenString)
		if err != nil || isAdminTokenRevoked(tokenString) {
			zap.S().Errorw("unauthorized admin request",
				"url", r.URL,
				"error", err)
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error": "unauthorized"}`))
			return
		}

		zap.S().Debugf("Admin %v Authenticated\n", claims["email"])
		next.ServeHTTP(w, r)
	})
}

// ParseAdminToken validates an admin JWT and returns its claims
func ParseAdminToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if scope, _ := claims["scope"].(string); scope != "admin" {
		return nil, fmt.Errorf("token missing admin scope")
	}
	return claims, nil
}
