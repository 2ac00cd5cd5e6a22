package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shaj13/go-guardian/auth"
	"github.com/shaj13/go-guardian/auth/strategies/bearer"
	"github.com/shaj13/go-guardian/store"
	"go.uber.org/zap"
)

var authenticator auth.Authenticator
var sessionCache store.Cache

// SessionTTL bounds how long a student bearer token stays valid after an OTP login
const SessionTTL = 24 * time.Hour

// SetupGoGuardian sets up the go-guardian middleware for student sessions.
// Tokens are minted by IssueStudentToken after a successful OTP verification.
func SetupGoGuardian() {
	authenticator = auth.New()
	sessionCache = store.NewFIFO(context.Background(), SessionTTL)
	tokenStrategy := bearer.New(bearer.NoOpAuthenticate, sessionCache)

	authenticator.EnableStrategy(bearer.CachedStrategyKey, tokenStrategy)
}

// StudentMiddleware guards the student self-service routes with bearer token
// authentication and stores the authenticated email on the request context
func StudentMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		user, err := authenticator.Authenticate(r)
		if err != nil {
			zap.S().Errorw("unauthorized",
				"url", r.URL)
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error": "unauthorized"}`))
			return
		}
		zap.S().Debugf("Student %s Authenticated\n", user.UserName())
		r = r.WithContext(ContextWithStudentEmail(r.Context(), user.UserName()))
		next.ServeHTTP(w, r)
	})
}

// IssueStudentToken mints a bearer token for a verified student and caches it
func IssueStudentToken(r *http.Request, email, applicationID string) string {
	token := uuid.New().String()
	authUser := auth.NewDefaultUser(email, applicationID, nil, nil)
	tokenStrategy := authenticator.Strategy(bearer.CachedStrategyKey)
	auth.Append(tokenStrategy, token, authUser, r)
	return token
}

// RevokeStudentToken invalidates a previously issued bearer token
func RevokeStudentToken(r *http.Request, token string) {
	tokenStrategy := authenticator.Strategy(bearer.CachedStrategyKey)
	auth.Revoke(tokenStrategy, token, r)
}

// BearerToken extracts the token from an Authorization header, or "" when absent
func BearerToken(r *http.Request) string {
	reqToken := r.Header.Get("Authorization")
	splitToken := strings.Split(reqToken, "Bearer ")
	if len(splitToken) < 2 {
		return ""
	}
	return splitToken[1]
}
