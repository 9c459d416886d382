package auth

import (
	"context"

	"authrelay/internal/models"
)

type ctxKey string

const userKey ctxKey = "currentUser"

func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// FromContext returns the authenticated user, or nil outside JWTAuth.
func FromContext(ctx context.Context) *models.User {
	if u, ok := ctx.Value(userKey).(*models.User); ok {
		return u
	}
	return nil
}
