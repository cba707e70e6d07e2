package middleware

import (
	"context"
	"errors"
	"strings"

	"cab_booking/internal/identity"
	"cab_booking/internal/metrics"
	"cab_booking/internal/model"
	"cab_booking/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// TokenResolver maps a bearer token to its user
type TokenResolver interface {
	ResolveToken(ctx context.Context, token string) (*model.User, error)
}

// JWTAuthMiddleware attaches the caller identified by the bearer token to the
// request context. Requests without a usable token continue anonymously; the
// operations themselves decide whether that is enough.
func JWTAuthMiddleware(resolver TokenResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			rejectToken(c, "malformed_header", nil)
			c.Next()
			return
		}

		user, err := resolver.ResolveToken(c.Request.Context(), parts[1])
		if err != nil {
			rejectToken(c, failureReason(err), err)
			c.Next()
			return
		}

		c.Request = c.Request.WithContext(identity.WithUser(c.Request.Context(), user))
		c.Next()
	}
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, service.ErrTokenExpired):
		return "expired"
	case errors.Is(err, service.ErrTokenInvalid):
		return "invalid"
	case errors.Is(err, service.ErrUnknownUser):
		return "unknown_user"
	default:
		return "lookup_failed"
	}
}

func rejectToken(c *gin.Context, reason string, err error) {
	metrics.IncAuthFailure(reason)
	event := zerolog.Ctx(c.Request.Context()).Warn()
	if reason == "lookup_failed" {
		event = zerolog.Ctx(c.Request.Context()).Error()
	}
	event.Err(err).Str("reason", reason).Msg("Bearer token rejected, continuing anonymously")
}
