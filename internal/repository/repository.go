package repository

import (
	"context"
	"errors"

	"cab_booking/internal/model"
)

var (
	// ErrNotFound is returned by writes that matched no record.
	// Lookups return (nil, nil) instead.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateKey is returned when a unique index (email, license plate) rejects a write
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrCabHeld is returned by cab deletes when the cab exists but is not available
	ErrCabHeld = errors.New("cab is held by a booking")
)

// UserRepository defines operations for user data
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindAll(ctx context.Context) ([]model.User, error)
	CountByRole(ctx context.Context, role string) (int64, error)
}

// CabRepository defines operations for cab data
type CabRepository interface {
	Create(ctx context.Context, cab *model.Cab) error
	FindByID(ctx context.Context, id string) (*model.Cab, error)
	FindAll(ctx context.Context) ([]model.Cab, error)
	FindAvailable(ctx context.Context) ([]model.Cab, error)
	Update(ctx context.Context, cab *model.Cab) error
	// Delete removes the cab only while it is available, so it can never race
	// a Claim. It returns ErrCabHeld when the cab exists but is taken.
	Delete(ctx context.Context, id string) error
	// Claim flips an available cab to unavailable in one conditional write and
	// returns it. It returns (nil, nil) when the cab is missing or already taken.
	Claim(ctx context.Context, id string) (*model.Cab, error)
	SetAvailability(ctx context.Context, id string, available bool) error
	Count(ctx context.Context) (int64, error)
}

// BookingRepository defines operations for booking data
type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	FindByUser(ctx context.Context, userID string) ([]model.Booking, error)
	FindAll(ctx context.Context) ([]model.Booking, error)
	// UpdateStatus moves the booking to next only while it is still in from.
	// It reports false when the stored status no longer matches.
	UpdateStatus(ctx context.Context, id string, from, next model.BookingStatus) (bool, error)
	HasActiveForCab(ctx context.Context, cabID string) (bool, error)
	Count(ctx context.Context) (int64, error)
	SumTotalPrice(ctx context.Context, status model.BookingStatus) (float64, error)
}

// Store bundles the repositories of one storage backend
type Store struct {
	Users    UserRepository
	Cabs     CabRepository
	Bookings BookingRepository

	ping  func(ctx context.Context) error
	close func(ctx context.Context) error
}

// Ping checks the backend connection
func (s *Store) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

// Close releases the backend connection
func (s *Store) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}
