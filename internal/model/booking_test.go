package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBookingStatus(t *testing.T) {
	for _, s := range []string{"pending", "confirmed", "completed", "cancelled"} {
		st, err := ParseBookingStatus(s)
		require.NoError(t, err)
		assert.Equal(t, BookingStatus(s), st)
	}

	_, err := ParseBookingStatus("archived")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = ParseBookingStatus("Completed")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestBookingStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to BookingStatus
		allowed  bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusCompleted, true},
		{StatusPending, StatusPending, false},
		{StatusConfirmed, StatusCompleted, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusPending, false},
		{StatusCompleted, StatusPending, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusConfirmed, false},
		{StatusCancelled, StatusCancelled, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
			err := tt.from.ValidateTransition(tt.to)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidTransition)
			}
		})
	}
}

func TestBookingStatusIsTerminal(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusConfirmed.IsTerminal())
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
}

func TestTotalPrice(t *testing.T) {
	cab := &Cab{PricePerKm: 2.5}
	assert.Equal(t, 25.0, TotalPrice(10, cab))
	assert.Equal(t, 10*2.5, TotalPrice(10, cab))
}

func TestCabRequestApply(t *testing.T) {
	cab := &Cab{ID: "c1", IsAvailable: false}
	CabRequest{
		DriverName:   "Ravi",
		CarModel:     "Swift",
		LicensePlate: "KA-01-1234",
		Capacity:     4,
		PricePerKm:   12,
		Location:     "Airport",
		DriverPhone:  "999",
	}.Apply(cab)

	assert.Equal(t, "c1", cab.ID)
	assert.Equal(t, "Ravi", cab.DriverName)
	assert.Equal(t, 4, cab.Capacity)
	assert.False(t, cab.IsAvailable, "Apply must not touch availability")
}

func TestUserIsAdmin(t *testing.T) {
	var nilUser *User
	assert.False(t, nilUser.IsAdmin())
	assert.False(t, (&User{Role: RoleUser}).IsAdmin())
	assert.True(t, (&User{Role: RoleAdmin}).IsAdmin())
}
