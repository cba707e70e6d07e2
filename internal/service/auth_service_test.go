package service

import (
	"context"
	"testing"
	"time"

	"cab_booking/internal/model"
	"cab_booking/internal/repository"
	"cab_booking/internal/utils"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		user, token, err := f.auth.Register(ctx, model.RegisterRequest{
			Name: "Asha", Email: "  Asha@Example.com ", Password: "secret123", Phone: "555",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, "asha@example.com", user.Email)
		assert.Equal(t, model.RoleUser, user.Role)
		assert.NotEqual(t, "secret123", user.PasswordHash)
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		_, _, err := f.auth.Register(ctx, model.RegisterRequest{
			Name: "Other", Email: "asha@example.com", Password: "secret123", Phone: "555",
		})
		assert.ErrorIs(t, err, ErrUserAlreadyExists)
		assert.EqualError(t, err, "User already exists with this email")
	})

	t.Run("InitialAdmin", func(t *testing.T) {
		user, _, err := f.auth.Register(ctx, model.RegisterRequest{
			Name: "Root", Email: "ROOT@example.com", Password: "secret123", Phone: "555",
		})
		require.NoError(t, err)
		assert.Equal(t, model.RoleAdmin, user.Role)
	})

	t.Run("Validation", func(t *testing.T) {
		tests := []struct {
			name string
			req  model.RegisterRequest
			msg  string
		}{
			{"MissingName", model.RegisterRequest{Email: "a@b.co", Password: "secret123", Phone: "1"}, "name is required"},
			{"BadEmail", model.RegisterRequest{Name: "A", Email: "nope", Password: "secret123", Phone: "1"}, "email must be a valid email"},
			{"ShortPassword", model.RegisterRequest{Name: "A", Email: "a@b.co", Password: "123", Phone: "1"}, "password must be at least 6 characters"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, _, err := f.auth.Register(ctx, tt.req)
				assert.ErrorIs(t, err, ErrValidation)
				assert.Contains(t, err.Error(), tt.msg)
				assert.True(t, IsPublic(err))
			})
		}
	})
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "asha@example.com")

	t.Run("Success", func(t *testing.T) {
		user, token, err := f.auth.Login(ctx, model.LoginRequest{Email: "asha@example.com", Password: "secret123"})
		require.NoError(t, err)
		assert.NotEmpty(t, token)

		resolved, err := f.auth.ResolveToken(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, resolved.ID)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		_, _, err := f.auth.Login(ctx, model.LoginRequest{Email: "asha@example.com", Password: "nope"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("UnknownEmailSameMessage", func(t *testing.T) {
		_, _, err := f.auth.Login(ctx, model.LoginRequest{Email: "ghost@example.com", Password: "secret123"})
		assert.EqualError(t, err, "Invalid email or password")
	})
}

func TestResolveToken(t *testing.T) {
	store := repository.NewMemoryStore()
	ctx := context.Background()

	t.Run("Expired", func(t *testing.T) {
		auth := NewAuthService(store.Users, utils.NewJWTUtil("s", -time.Minute), "", zerolog.Nop())
		token, err := utils.NewJWTUtil("s", -time.Minute).GenerateToken("u1", model.RoleUser)
		require.NoError(t, err)

		_, err = auth.ResolveToken(ctx, token)
		assert.ErrorIs(t, err, ErrTokenExpired)
		assert.False(t, IsPublic(err))
	})

	t.Run("Garbage", func(t *testing.T) {
		auth := NewAuthService(store.Users, utils.NewJWTUtil("s", time.Hour), "", zerolog.Nop())
		_, err := auth.ResolveToken(ctx, "not.a.token")
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		auth := NewAuthService(store.Users, utils.NewJWTUtil("s", time.Hour), "", zerolog.Nop())
		token, err := utils.NewJWTUtil("other", time.Hour).GenerateToken("u1", model.RoleUser)
		require.NoError(t, err)

		_, err = auth.ResolveToken(ctx, token)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("DeletedUser", func(t *testing.T) {
		jwtUtil := utils.NewJWTUtil("s", time.Hour)
		auth := NewAuthService(store.Users, jwtUtil, "", zerolog.Nop())
		token, err := jwtUtil.GenerateToken("missing-user", model.RoleUser)
		require.NoError(t, err)

		_, err = auth.ResolveToken(ctx, token)
		assert.ErrorIs(t, err, ErrUnknownUser)
	})
}
