package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cab_booking/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type bookingRepository struct {
	db DBTX
}

// NewBookingRepository creates a new BookingRepository
func NewBookingRepository(db DBTX) BookingRepository {
	return &bookingRepository{db: db}
}

const bookingColumns = `id, user_id, cab_id, pickup_location, drop_location, distance, total_price, status, booking_date, created_at, updated_at`

// Create inserts a new booking into the database
func (r *bookingRepository) Create(ctx context.Context, b *model.Booking) error {
	b.ID = uuid.NewString()
	sql := `INSERT INTO bookings (` + bookingColumns + `)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.db.Exec(ctx, sql,
		b.ID, b.UserID, b.CabID, b.PickupLocation, b.DropLocation, b.Distance, b.TotalPrice,
		string(b.Status), b.BookingDate, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

// FindByID retrieves a booking by its ID
func (r *bookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	if !isUUID(id) {
		return nil, nil
	}
	sql := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	b, err := scanBooking(r.db.QueryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return b, nil
}

// FindByUser lists the bookings of one user, newest first
func (r *bookingRepository) FindByUser(ctx context.Context, userID string) ([]model.Booking, error) {
	if !isUUID(userID) {
		return nil, nil
	}
	return r.list(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

// FindAll lists every booking, newest first
func (r *bookingRepository) FindAll(ctx context.Context) ([]model.Booking, error) {
	return r.list(ctx, `SELECT `+bookingColumns+` FROM bookings ORDER BY created_at DESC`)
}

func (r *bookingRepository) list(ctx context.Context, sql string, args ...any) ([]model.Booking, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []model.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking row: %w", err)
		}
		bookings = append(bookings, *b)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating booking rows: %w", err)
	}
	return bookings, nil
}

// UpdateStatus performs a compare-and-set on the booking status
func (r *bookingRepository) UpdateStatus(ctx context.Context, id string, from, next model.BookingStatus) (bool, error) {
	if !isUUID(id) {
		return false, nil
	}
	sql := `UPDATE bookings SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`
	tag, err := r.db.Exec(ctx, sql, string(next), time.Now(), id, string(from))
	if err != nil {
		return false, fmt.Errorf("failed to update booking status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// HasActiveForCab reports whether a pending or confirmed booking references the cab
func (r *bookingRepository) HasActiveForCab(ctx context.Context, cabID string) (bool, error) {
	if !isUUID(cabID) {
		return false, nil
	}
	var exists bool
	sql := `SELECT EXISTS (SELECT 1 FROM bookings WHERE cab_id = $1 AND status IN ($2, $3))`
	err := r.db.QueryRow(ctx, sql, cabID, string(model.StatusPending), string(model.StatusConfirmed)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check active bookings: %w", err)
	}
	return exists, nil
}

// Count returns the number of bookings
func (r *bookingRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM bookings`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

// SumTotalPrice adds up total_price over bookings in status
func (r *bookingRepository) SumTotalPrice(ctx context.Context, status model.BookingStatus) (float64, error) {
	var total float64
	sql := `SELECT COALESCE(SUM(total_price), 0) FROM bookings WHERE status = $1`
	if err := r.db.QueryRow(ctx, sql, string(status)).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum booking revenue: %w", err)
	}
	return total, nil
}

func scanBooking(row pgx.Row) (*model.Booking, error) {
	b := &model.Booking{}
	var status string
	err := row.Scan(
		&b.ID, &b.UserID, &b.CabID, &b.PickupLocation, &b.DropLocation, &b.Distance, &b.TotalPrice,
		&status, &b.BookingDate, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.Status = model.BookingStatus(status)
	return b, nil
}
