// Package identity carries the caller of a request through context.Context
// and enforces the per-operation access checks.
package identity

import (
	"context"
	"errors"

	"cab_booking/internal/model"
)

var (
	ErrUnauthenticated = errors.New("You must be logged in")
	ErrForbidden       = errors.New("Admin access required")
)

type contextKey struct{}

// WithUser returns a copy of ctx carrying u
func WithUser(ctx context.Context, u *model.User) context.Context {
	return context.WithValue(ctx, contextKey{}, u)
}

// UserFromContext returns the caller, or nil for anonymous requests
func UserFromContext(ctx context.Context) *model.User {
	u, _ := ctx.Value(contextKey{}).(*model.User)
	return u
}

// RequireUser returns the caller or ErrUnauthenticated
func RequireUser(ctx context.Context) (*model.User, error) {
	u := UserFromContext(ctx)
	if u == nil {
		return nil, ErrUnauthenticated
	}
	return u, nil
}

// RequireAdmin returns the caller when it is an admin
func RequireAdmin(ctx context.Context) (*model.User, error) {
	u, err := RequireUser(ctx)
	if err != nil {
		return nil, err
	}
	if u.Role != model.RoleAdmin {
		return nil, ErrForbidden
	}
	return u, nil
}
