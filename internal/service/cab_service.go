package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cab_booking/internal/identity"
	"cab_booking/internal/model"
	"cab_booking/internal/repository"

	"github.com/rs/zerolog"
)

// CabService manages the fleet
type CabService interface {
	ListCabs(ctx context.Context) ([]model.Cab, error)
	ListAvailableCabs(ctx context.Context) ([]model.Cab, error)
	GetCab(ctx context.Context, id string) (*model.Cab, error)

	// Admin methods
	AddCab(ctx context.Context, req model.CabRequest) (*model.Cab, error)
	UpdateCab(ctx context.Context, id string, req model.CabRequest) (*model.Cab, error)
	DeleteCab(ctx context.Context, id string) error
}

type cabService struct {
	cabRepo     repository.CabRepository
	bookingRepo repository.BookingRepository
	logger      zerolog.Logger
}

// NewCabService creates a new CabService
func NewCabService(cabRepo repository.CabRepository, bookingRepo repository.BookingRepository, logger zerolog.Logger) CabService {
	return &cabService{cabRepo: cabRepo, bookingRepo: bookingRepo, logger: logger}
}

func (s *cabService) ListCabs(ctx context.Context) ([]model.Cab, error) {
	cabs, err := s.cabRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get cabs from repo: %w", err)
	}
	return cabs, nil
}

func (s *cabService) ListAvailableCabs(ctx context.Context) ([]model.Cab, error) {
	cabs, err := s.cabRepo.FindAvailable(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get available cabs from repo: %w", err)
	}
	return cabs, nil
}

// GetCab returns the cab or nil when it no longer exists
func (s *cabService) GetCab(ctx context.Context, id string) (*model.Cab, error) {
	cab, err := s.cabRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find cab by ID: %w", err)
	}
	return cab, nil
}

func (s *cabService) AddCab(ctx context.Context, req model.CabRequest) (*model.Cab, error) {
	admin, err := identity.RequireAdmin(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	now := time.Now()
	cab := &model.Cab{IsAvailable: true, CreatedAt: now, UpdatedAt: now}
	req.Apply(cab)

	if err := s.cabRepo.Create(ctx, cab); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrDuplicateLicensePlate
		}
		return nil, fmt.Errorf("failed to create cab in repo: %w", err)
	}

	s.logger.Info().Str("cab_id", cab.ID).Str("admin_id", admin.ID).Msg("Cab added")
	return cab, nil
}

func (s *cabService) UpdateCab(ctx context.Context, id string, req model.CabRequest) (*model.Cab, error) {
	if _, err := identity.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	cab := &model.Cab{ID: id, UpdatedAt: time.Now()}
	req.Apply(cab)

	if err := s.cabRepo.Update(ctx, cab); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrCabNotFound
		case errors.Is(err, repository.ErrDuplicateKey):
			return nil, ErrDuplicateLicensePlate
		}
		return nil, fmt.Errorf("failed to update cab in repo: %w", err)
	}
	return cab, nil
}

// DeleteCab refuses to remove a cab that a pending or confirmed booking still holds
func (s *cabService) DeleteCab(ctx context.Context, id string) error {
	admin, err := identity.RequireAdmin(ctx)
	if err != nil {
		return err
	}

	active, err := s.bookingRepo.HasActiveForCab(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check cab bookings: %w", err)
	}
	if active {
		return ErrCabInUse
	}

	if err := s.cabRepo.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return ErrCabNotFound
		case errors.Is(err, repository.ErrCabHeld):
			return ErrCabInUse
		}
		return fmt.Errorf("failed to delete cab in repo: %w", err)
	}

	s.logger.Info().Str("cab_id", id).Str("admin_id", admin.ID).Msg("Cab deleted")
	return nil
}
