package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cab_booking/internal/model"
	"cab_booking/internal/repository"
	"cab_booking/internal/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

// AuthService provides authentication related services
type AuthService interface {
	Register(ctx context.Context, req model.RegisterRequest) (*model.User, string, error)
	Login(ctx context.Context, req model.LoginRequest) (*model.User, string, error)
	// ResolveToken maps a bearer token to its user. Failures are one of
	// ErrTokenExpired, ErrTokenInvalid or ErrUnknownUser, possibly wrapped.
	ResolveToken(ctx context.Context, token string) (*model.User, error)
}

type authService struct {
	userRepo          repository.UserRepository
	jwtUtil           *utils.JWTUtil
	initialAdminEmail string
	logger            zerolog.Logger
}

// NewAuthService creates a new AuthService. A user registering with
// initialAdminEmail becomes an admin.
func NewAuthService(userRepo repository.UserRepository, jwtUtil *utils.JWTUtil, initialAdminEmail string, logger zerolog.Logger) AuthService {
	return &authService{
		userRepo:          userRepo,
		jwtUtil:           jwtUtil,
		initialAdminEmail: normalizeEmail(initialAdminEmail),
		logger:            logger,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new user account
func (s *authService) Register(ctx context.Context, req model.RegisterRequest) (*model.User, string, error) {
	req.Email = normalizeEmail(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if err := validateStruct(req); err != nil {
		return nil, "", err
	}

	existingUser, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check existing user: %w", err)
	}
	if existingUser != nil {
		return nil, "", ErrUserAlreadyExists
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	userRole := model.RoleUser
	if s.initialAdminEmail != "" && req.Email == s.initialAdminEmail {
		userRole = model.RoleAdmin
		s.logger.Info().Str("email", req.Email).Msg("User is being registered as ADMIN via INITIAL_ADMIN_EMAIL")
	}

	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hashedPassword,
		Phone:        req.Phone,
		Role:         userRole,
		CreatedAt:    time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// Lost a race against a concurrent registration
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, "", ErrUserAlreadyExists
		}
		return nil, "", fmt.Errorf("failed to create user in repository: %w", err)
	}

	token, err := s.jwtUtil.GenerateToken(user.ID, user.Role)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID).Msg("User created, but failed to generate token")
		return user, "", fmt.Errorf("user created, but failed to generate token: %w", err)
	}

	return user, token, nil
}

// Login authenticates a user and returns a JWT token
func (s *authService) Login(ctx context.Context, req model.LoginRequest) (*model.User, string, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validateStruct(req); err != nil {
		return nil, "", err
	}

	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, "", fmt.Errorf("error finding user by email: %w", err)
	}
	if user == nil {
		return nil, "", ErrInvalidCredentials // User not found
	}

	if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials // Password mismatch
	}

	token, err := s.jwtUtil.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	return user, token, nil
}

func (s *authService) ResolveToken(ctx context.Context, token string) (*model.User, error) {
	claims, err := s.jwtUtil.ValidateToken(token)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load token user: %w", err)
	}
	if user == nil {
		return nil, ErrUnknownUser
	}
	return user, nil
}
