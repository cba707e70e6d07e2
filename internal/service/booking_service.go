package service

import (
	"context"
	"fmt"
	"time"

	"cab_booking/internal/events"
	"cab_booking/internal/identity"
	"cab_booking/internal/metrics"
	"cab_booking/internal/model"
	"cab_booking/internal/repository"

	"github.com/rs/zerolog"
)

// EventPublisher is satisfied by *events.EventBus
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// BookingService runs the booking lifecycle and keeps cab availability in step with it
type BookingService interface {
	BookCab(ctx context.Context, req model.BookingRequest) (*model.Booking, error)
	UpdateStatus(ctx context.Context, id, status string) (*model.Booking, error)
	GetUserBookings(ctx context.Context) ([]model.Booking, error)

	// Admin methods
	GetAllBookings(ctx context.Context) ([]model.Booking, error)
}

type bookingService struct {
	bookingRepo repository.BookingRepository
	cabRepo     repository.CabRepository
	events      EventPublisher
	logger      zerolog.Logger
}

// NewBookingService creates a new BookingService. publisher may be nil.
func NewBookingService(bookingRepo repository.BookingRepository, cabRepo repository.CabRepository, publisher EventPublisher, logger zerolog.Logger) BookingService {
	return &bookingService{
		bookingRepo: bookingRepo,
		cabRepo:     cabRepo,
		events:      publisher,
		logger:      logger,
	}
}

// BookCab claims the cab, prices the trip and records a pending booking.
// When the booking cannot be stored the claim is released again.
func (s *bookingService) BookCab(ctx context.Context, req model.BookingRequest) (*model.Booking, error) {
	user, err := identity.RequireUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	cab, err := s.cabRepo.Claim(ctx, req.CabID)
	if err != nil {
		return nil, fmt.Errorf("failed to claim cab: %w", err)
	}
	if cab == nil {
		metrics.IncCabClaimConflict()
		return nil, ErrCabNotAvailable
	}

	now := time.Now()
	booking := &model.Booking{
		UserID:         user.ID,
		CabID:          cab.ID,
		PickupLocation: req.PickupLocation,
		DropLocation:   req.DropLocation,
		Distance:       req.Distance,
		TotalPrice:     model.TotalPrice(req.Distance, cab),
		Status:         model.StatusPending,
		BookingDate:    now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		// The request context may already be done; the release must still happen.
		if relErr := s.cabRepo.SetAvailability(context.WithoutCancel(ctx), cab.ID, true); relErr != nil {
			s.logger.Error().Err(relErr).Str("cab_id", cab.ID).Msg("Failed to release cab after booking insert failure")
		}
		return nil, fmt.Errorf("failed to create booking in repo: %w", err)
	}

	metrics.IncBookingCreated()
	s.publish(events.EventBookingCreated, booking, user.ID)
	s.logger.Info().
		Str("booking_id", booking.ID).
		Str("cab_id", cab.ID).
		Str("user_id", user.ID).
		Float64("total_price", booking.TotalPrice).
		Msg("Cab booked")

	return booking, nil
}

// UpdateStatus moves a booking along the transition table and frees the cab
// once the booking reaches a terminal status.
func (s *bookingService) UpdateStatus(ctx context.Context, id, status string) (*model.Booking, error) {
	admin, err := identity.RequireAdmin(ctx)
	if err != nil {
		return nil, err
	}

	next, err := model.ParseBookingStatus(status)
	if err != nil {
		return nil, err
	}

	booking, err := s.bookingRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}

	if err := booking.Status.ValidateTransition(next); err != nil {
		return nil, err
	}

	ok, err := s.bookingRepo.UpdateStatus(ctx, booking.ID, booking.Status, next)
	if err != nil {
		return nil, fmt.Errorf("failed to update booking status in repo: %w", err)
	}
	if !ok {
		return nil, ErrStatusConflict
	}

	booking.Status = next
	booking.UpdatedAt = time.Now()

	if next.IsTerminal() {
		if err := s.cabRepo.SetAvailability(ctx, booking.CabID, true); err != nil {
			s.logger.Error().Err(err).
				Str("booking_id", booking.ID).
				Str("cab_id", booking.CabID).
				Msg("Failed to release cab after booking reached terminal status")
		}
	}

	metrics.IncBookingStatus(string(next))
	s.publish(events.StatusEvent(next), booking, admin.ID)
	s.logger.Info().
		Str("booking_id", booking.ID).
		Str("status", string(next)).
		Str("admin_id", admin.ID).
		Msg("Booking status updated")

	return booking, nil
}

func (s *bookingService) GetUserBookings(ctx context.Context) ([]model.Booking, error) {
	user, err := identity.RequireUser(ctx)
	if err != nil {
		return nil, err
	}
	bookings, err := s.bookingRepo.FindByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user bookings from repo: %w", err)
	}
	return bookings, nil
}

func (s *bookingService) GetAllBookings(ctx context.Context) ([]model.Booking, error) {
	if _, err := identity.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	bookings, err := s.bookingRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get bookings from repo: %w", err)
	}
	return bookings, nil
}

func (s *bookingService) publish(eventType string, b *model.Booking, changedBy string) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishJSON(eventType, events.NewBookingPayload(b, changedBy)); err != nil {
		s.logger.Warn().Err(err).Str("event", eventType).Str("booking_id", b.ID).Msg("Failed to publish booking event")
	}
}
