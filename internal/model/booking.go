package model

import (
	"errors"
	"fmt"
	"time"
)

// BookingStatus is the lifecycle stage of a booking
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCompleted BookingStatus = "completed"
	StatusCancelled BookingStatus = "cancelled"
)

var (
	ErrInvalidStatus     = errors.New("invalid booking status")
	ErrInvalidTransition = errors.New("invalid booking status transition")
)

var transitions = map[BookingStatus][]BookingStatus{
	StatusPending:   {StatusConfirmed, StatusCompleted, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

// ParseBookingStatus maps a wire value onto the closed set of statuses
func ParseBookingStatus(s string) (BookingStatus, error) {
	switch st := BookingStatus(s); st {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// IsTerminal reports whether no further transitions are possible.
// A cab is released when its booking reaches a terminal status.
func (s BookingStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransitionTo reports whether next is reachable from s in one step
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ValidateTransition returns ErrInvalidTransition when next is not reachable from s
func (s BookingStatus) ValidateTransition(next BookingStatus) error {
	if !s.CanTransitionTo(next) {
		return fmt.Errorf("%w: cannot change booking status from %s to %s", ErrInvalidTransition, s, next)
	}
	return nil
}

// Booking represents a trip of a user in a cab
type Booking struct {
	ID             string        `json:"id"`
	UserID         string        `json:"user_id"`
	CabID          string        `json:"cab_id"`
	PickupLocation string        `json:"pickup_location"`
	DropLocation   string        `json:"drop_location"`
	Distance       float64       `json:"distance"`
	TotalPrice     float64       `json:"total_price"`
	Status         BookingStatus `json:"status"`
	BookingDate    time.Time     `json:"booking_date"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// BookingRequest is used for booking a cab
type BookingRequest struct {
	CabID          string  `json:"cabId" validate:"required"`
	PickupLocation string  `json:"pickupLocation" validate:"required"`
	DropLocation   string  `json:"dropLocation" validate:"required"`
	Distance       float64 `json:"distance" validate:"gt=0"`
}

// TotalPrice is the fare for distance at the cab's rate
func TotalPrice(distance float64, cab *Cab) float64 {
	return distance * cab.PricePerKm
}
