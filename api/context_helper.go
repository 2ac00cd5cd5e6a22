package api

import (
	"context"
	"time"
)

// QueryTimeout is the default timeout for database queries
const QueryTimeout = 10 * time.Second

// WithQueryTimeout creates a context with query timeout
func WithQueryTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, QueryTimeout)
}

type contextKey string

const studentEmailKey contextKey = "studentEmail"

// ContextWithStudentEmail stores the authenticated student email on the context
func ContextWithStudentEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, studentEmailKey, email)
}

// StudentEmailFromContext returns the authenticated student email, if any
func StudentEmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(studentEmailKey).(string)
	return email, ok
}
