package service

import (
	"context"
	"testing"
	"time"

	"cab_booking/internal/identity"
	"cab_booking/internal/model"
	"cab_booking/internal/repository"
	"cab_booking/internal/utils"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// fixture wires every service over one in-memory store
type fixture struct {
	store    *repository.Store
	auth     AuthService
	cabs     CabService
	bookings BookingService
	admin    AdminService
	events   *mockPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := repository.NewMemoryStore()
	jwtUtil := utils.NewJWTUtil("test-secret", time.Hour)
	pub := new(mockPublisher)
	pub.On("PublishJSON", mock.Anything, mock.Anything).Return(nil).Maybe()

	return &fixture{
		store:    store,
		auth:     NewAuthService(store.Users, jwtUtil, "root@example.com", zerolog.Nop()),
		cabs:     NewCabService(store.Cabs, store.Bookings, zerolog.Nop()),
		bookings: NewBookingService(store.Bookings, store.Cabs, pub, zerolog.Nop()),
		admin:    NewAdminService(store),
		events:   pub,
	}
}

func (f *fixture) register(t *testing.T, email string) (context.Context, *model.User) {
	t.Helper()
	user, _, err := f.auth.Register(context.Background(), model.RegisterRequest{
		Name:     "Test " + email,
		Email:    email,
		Password: "secret123",
		Phone:    "555-0100",
	})
	require.NoError(t, err)
	return identity.WithUser(context.Background(), user), user
}

func (f *fixture) addCab(t *testing.T, adminCtx context.Context, plate string, price float64) *model.Cab {
	t.Helper()
	cab, err := f.cabs.AddCab(adminCtx, model.CabRequest{
		DriverName:   "Ravi",
		CarModel:     "Swift",
		LicensePlate: plate,
		Capacity:     4,
		PricePerKm:   price,
		Location:     "Airport",
		DriverPhone:  "555-0199",
	})
	require.NoError(t, err)
	return cab
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishJSON(eventType string, payload interface{}) error {
	return m.Called(eventType, payload).Error(0)
}

type mockBookingRepo struct {
	mock.Mock
	repository.BookingRepository
}

func (m *mockBookingRepo) Create(ctx context.Context, b *model.Booking) error {
	return m.Called(ctx, b).Error(0)
}

func (m *mockBookingRepo) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Booking), args.Error(1)
}

func (m *mockBookingRepo) UpdateStatus(ctx context.Context, id string, from, next model.BookingStatus) (bool, error) {
	args := m.Called(ctx, id, from, next)
	return args.Bool(0), args.Error(1)
}
