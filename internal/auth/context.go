package auth

import (
	"context"

	"github.com/s/courseStore/internal/models"
)

type ctxKey int

const userKey ctxKey = iota

// WithUser stores the resolved user in a context.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFrom returns the user stored by WithUser.
func UserFrom(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userKey).(*models.User)
	return user, ok && user != nil
}
