package service

import (
	"context"
	"fmt"

	"cab_booking/internal/identity"
	"cab_booking/internal/model"
	"cab_booking/internal/repository"
)

// AdminService exposes the back-office views
type AdminService interface {
	GetUsers(ctx context.Context) ([]model.User, error)
	// GetUser is used to resolve booking references; it does no access check.
	GetUser(ctx context.Context, id string) (*model.User, error)
	GetDashboardStats(ctx context.Context) (*model.DashboardStats, error)
}

type adminService struct {
	store *repository.Store
}

// NewAdminService creates a new AdminService
func NewAdminService(store *repository.Store) AdminService {
	return &adminService{store: store}
}

func (s *adminService) GetUsers(ctx context.Context) ([]model.User, error) {
	if _, err := identity.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	users, err := s.store.Users.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get users from repo: %w", err)
	}
	return users, nil
}

func (s *adminService) GetUser(ctx context.Context, id string) (*model.User, error) {
	user, err := s.store.Users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	return user, nil
}

// GetDashboardStats counts regular users only and sums revenue over completed bookings
func (s *adminService) GetDashboardStats(ctx context.Context) (*model.DashboardStats, error) {
	if _, err := identity.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	var (
		stats model.DashboardStats
		err   error
	)
	if stats.TotalUsers, err = s.store.Users.CountByRole(ctx, model.RoleUser); err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	if stats.TotalCabs, err = s.store.Cabs.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to count cabs: %w", err)
	}
	if stats.TotalBookings, err = s.store.Bookings.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to count bookings: %w", err)
	}
	if stats.TotalRevenue, err = s.store.Bookings.SumTotalPrice(ctx, model.StatusCompleted); err != nil {
		return nil, fmt.Errorf("failed to sum revenue: %w", err)
	}
	return &stats, nil
}
