package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"cab_booking/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock
}

func cabRow(id string, available bool) *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows([]string{
		"id", "driver_name", "car_model", "license_plate", "capacity", "price_per_km",
		"location", "is_available", "driver_phone", "created_at", "updated_at",
	}).AddRow(id, "Ravi", "Swift", "KA-01-1234", 4, 2.5, "Airport", available, "555-0100", now, now)
}

func TestUserRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock := newMock(t)
		repo := NewUserRepository(mock)

		mock.ExpectExec("INSERT INTO users").
			WithArgs(pgxmock.AnyArg(), "Asha", "asha@example.com", "hash", "555", model.RoleUser, pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		user := &model.User{Name: "Asha", Email: "asha@example.com", PasswordHash: "hash", Phone: "555", Role: model.RoleUser, CreatedAt: time.Now()}
		require.NoError(t, repo.Create(ctx, user))
		_, err := uuid.Parse(user.ID)
		assert.NoError(t, err)
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		mock := newMock(t)
		repo := NewUserRepository(mock)

		mock.ExpectExec("INSERT INTO users").
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnError(&pgconn.PgError{Code: "23505"})

		err := repo.Create(ctx, &model.User{Email: "asha@example.com"})
		assert.ErrorIs(t, err, ErrDuplicateKey)
	})
}

func TestUserRepository_FindByIDMalformed(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	user, err := repo.FindByID(context.Background(), "not-a-uuid")
	assert.NoError(t, err)
	assert.Nil(t, user)
}

func TestUserRepository_CountByRole(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users WHERE role`).
		WithArgs(model.RoleUser).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(3)))

	n, err := repo.CountByRole(context.Background(), model.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestCabRepository_Claim(t *testing.T) {
	ctx := context.Background()
	id := uuid.NewString()

	t.Run("Available", func(t *testing.T) {
		mock := newMock(t)
		repo := NewCabRepository(mock)

		mock.ExpectQuery(`UPDATE cabs SET is_available = FALSE`).
			WithArgs(id, pgxmock.AnyArg()).
			WillReturnRows(cabRow(id, false))

		cab, err := repo.Claim(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, cab)
		assert.Equal(t, id, cab.ID)
		assert.False(t, cab.IsAvailable)
		assert.Equal(t, 2.5, cab.PricePerKm)
	})

	t.Run("AlreadyClaimed", func(t *testing.T) {
		mock := newMock(t)
		repo := NewCabRepository(mock)

		mock.ExpectQuery(`UPDATE cabs SET is_available = FALSE`).
			WithArgs(id, pgxmock.AnyArg()).
			WillReturnRows(pgxmock.NewRows([]string{
				"id", "driver_name", "car_model", "license_plate", "capacity", "price_per_km",
				"location", "is_available", "driver_phone", "created_at", "updated_at",
			}))

		cab, err := repo.Claim(ctx, id)
		assert.NoError(t, err)
		assert.Nil(t, cab)
	})

	t.Run("DriverError", func(t *testing.T) {
		mock := newMock(t)
		repo := NewCabRepository(mock)

		mock.ExpectQuery(`UPDATE cabs SET is_available = FALSE`).
			WithArgs(id, pgxmock.AnyArg()).
			WillReturnError(errors.New("connection reset"))

		cab, err := repo.Claim(ctx, id)
		assert.Error(t, err)
		assert.Nil(t, cab)
	})
}

func TestCabRepository_Delete(t *testing.T) {
	ctx := context.Background()
	id := uuid.NewString()

	t.Run("Deleted", func(t *testing.T) {
		mock := newMock(t)
		repo := NewCabRepository(mock)

		mock.ExpectExec(`DELETE FROM cabs WHERE id = \$1 AND is_available`).WithArgs(id).WillReturnResult(pgxmock.NewResult("DELETE", 1))
		assert.NoError(t, repo.Delete(ctx, id))
	})

	t.Run("Held", func(t *testing.T) {
		mock := newMock(t)
		repo := NewCabRepository(mock)

		mock.ExpectExec(`DELETE FROM cabs`).WithArgs(id).WillReturnResult(pgxmock.NewResult("DELETE", 0))
		mock.ExpectQuery(`SELECT EXISTS`).WithArgs(id).WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
		assert.ErrorIs(t, repo.Delete(ctx, id), ErrCabHeld)
	})

	t.Run("Missing", func(t *testing.T) {
		mock := newMock(t)
		repo := NewCabRepository(mock)

		mock.ExpectExec(`DELETE FROM cabs`).WithArgs(id).WillReturnResult(pgxmock.NewResult("DELETE", 0))
		mock.ExpectQuery(`SELECT EXISTS`).WithArgs(id).WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
		assert.ErrorIs(t, repo.Delete(ctx, id), ErrNotFound)
	})
}

func TestBookingRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	id := uuid.NewString()

	t.Run("StatusMatched", func(t *testing.T) {
		mock := newMock(t)
		repo := NewBookingRepository(mock)

		mock.ExpectExec(`UPDATE bookings SET status`).
			WithArgs("confirmed", pgxmock.AnyArg(), id, "pending").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		ok, err := repo.UpdateStatus(ctx, id, model.StatusPending, model.StatusConfirmed)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("StatusMoved", func(t *testing.T) {
		mock := newMock(t)
		repo := NewBookingRepository(mock)

		mock.ExpectExec(`UPDATE bookings SET status`).
			WithArgs("confirmed", pgxmock.AnyArg(), id, "pending").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		ok, err := repo.UpdateStatus(ctx, id, model.StatusPending, model.StatusConfirmed)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestBookingRepository_SumTotalPrice(t *testing.T) {
	mock := newMock(t)
	repo := NewBookingRepository(mock)

	mock.ExpectQuery(`SELECT COALESCE\(SUM\(total_price\), 0\) FROM bookings`).
		WithArgs("completed").
		WillReturnRows(pgxmock.NewRows([]string{"sum"}).AddRow(42.5))

	total, err := repo.SumTotalPrice(context.Background(), model.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, 42.5, total)
}

func TestBookingRepository_FindByUser(t *testing.T) {
	mock := newMock(t)
	repo := NewBookingRepository(mock)
	userID := uuid.NewString()
	now := time.Now()

	rows := pgxmock.NewRows([]string{
		"id", "user_id", "cab_id", "pickup_location", "drop_location", "distance", "total_price",
		"status", "booking_date", "created_at", "updated_at",
	}).
		AddRow("b2", userID, "c1", "A", "B", 4.0, 10.0, "pending", now, now, now).
		AddRow("b1", userID, "c1", "A", "C", 2.0, 5.0, "completed", now, now, now)

	mock.ExpectQuery(`FROM bookings WHERE user_id = \$1 ORDER BY created_at DESC`).
		WithArgs(userID).
		WillReturnRows(rows)

	bookings, err := repo.FindByUser(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, bookings, 2)
	assert.Equal(t, "b2", bookings[0].ID)
	assert.Equal(t, model.StatusCompleted, bookings[1].Status)
}
