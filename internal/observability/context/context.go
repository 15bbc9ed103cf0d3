// Package context carries request-scoped correlation values.
package context

import (
	"context"
	"strings"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	actorKey
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, strings.TrimSpace(requestID))
}

func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(requestIDKey).(string)
	return value
}

// WithActor records the authenticated user and the namespace they logged into.
func WithActor(ctx context.Context, namespace, email string) context.Context {
	return context.WithValue(ctx, actorKey, actor{namespace: namespace, email: email})
}

func ActorFromContext(ctx context.Context) (namespace, email string) {
	if ctx == nil {
		return "", ""
	}
	value, ok := ctx.Value(actorKey).(actor)
	if !ok {
		return "", ""
	}
	return value.namespace, value.email
}

type actor struct {
	namespace string
	email     string
}
