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

type cabRepository struct {
	db DBTX
}

// NewCabRepository creates a new CabRepository
func NewCabRepository(db DBTX) CabRepository {
	return &cabRepository{db: db}
}

const cabColumns = `id, driver_name, car_model, license_plate, capacity, price_per_km, location, is_available, driver_phone, created_at, updated_at`

// Create inserts a new cab into the database
func (r *cabRepository) Create(ctx context.Context, c *model.Cab) error {
	c.ID = uuid.NewString()
	sql := `INSERT INTO cabs (` + cabColumns + `)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.db.Exec(ctx, sql,
		c.ID, c.DriverName, c.CarModel, c.LicensePlate, c.Capacity, c.PricePerKm,
		c.Location, c.IsAvailable, c.DriverPhone, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("failed to create cab: %w", ErrDuplicateKey)
		}
		return fmt.Errorf("failed to create cab: %w", err)
	}
	return nil
}

// FindByID retrieves a cab by its ID
func (r *cabRepository) FindByID(ctx context.Context, id string) (*model.Cab, error) {
	if !isUUID(id) {
		return nil, nil
	}
	sql := `SELECT ` + cabColumns + ` FROM cabs WHERE id = $1`
	c, err := scanCab(r.db.QueryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to find cab by ID: %w", err)
	}
	return c, nil
}

// FindAll lists the whole fleet
func (r *cabRepository) FindAll(ctx context.Context) ([]model.Cab, error) {
	return r.list(ctx, `SELECT `+cabColumns+` FROM cabs ORDER BY created_at ASC`)
}

// FindAvailable lists cabs that can be booked
func (r *cabRepository) FindAvailable(ctx context.Context) ([]model.Cab, error) {
	return r.list(ctx, `SELECT `+cabColumns+` FROM cabs WHERE is_available ORDER BY created_at ASC`)
}

func (r *cabRepository) list(ctx context.Context, sql string, args ...any) ([]model.Cab, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query cabs: %w", err)
	}
	defer rows.Close()

	var cabs []model.Cab
	for rows.Next() {
		c, err := scanCab(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cab row: %w", err)
		}
		cabs = append(cabs, *c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cab rows: %w", err)
	}
	return cabs, nil
}

// Update modifies the descriptive fields of an existing cab.
// Availability is left alone.
func (r *cabRepository) Update(ctx context.Context, c *model.Cab) error {
	if !isUUID(c.ID) {
		return ErrNotFound
	}
	sql := `UPDATE cabs SET driver_name = $1, car_model = $2, license_plate = $3, capacity = $4,
            price_per_km = $5, location = $6, driver_phone = $7, updated_at = $8
            WHERE id = $9
            RETURNING is_available, created_at`
	err := r.db.QueryRow(ctx, sql,
		c.DriverName, c.CarModel, c.LicensePlate, c.Capacity, c.PricePerKm,
		c.Location, c.DriverPhone, c.UpdatedAt, c.ID,
	).Scan(&c.IsAvailable, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if isUniqueViolation(err) {
			return fmt.Errorf("failed to update cab: %w", ErrDuplicateKey)
		}
		return fmt.Errorf("failed to update cab: %w", err)
	}
	return nil
}

// Delete removes an available cab
func (r *cabRepository) Delete(ctx context.Context, id string) error {
	if !isUUID(id) {
		return ErrNotFound
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM cabs WHERE id = $1 AND is_available`, id)
	if err != nil {
		return fmt.Errorf("failed to delete cab: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM cabs WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check cab: %w", err)
	}
	if exists {
		return ErrCabHeld
	}
	return ErrNotFound
}

// Claim marks an available cab as taken and returns it
func (r *cabRepository) Claim(ctx context.Context, id string) (*model.Cab, error) {
	if !isUUID(id) {
		return nil, nil
	}
	sql := `UPDATE cabs SET is_available = FALSE, updated_at = $2
            WHERE id = $1 AND is_available
            RETURNING ` + cabColumns
	c, err := scanCab(r.db.QueryRow(ctx, sql, id, time.Now()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Missing or already claimed
		}
		return nil, fmt.Errorf("failed to claim cab: %w", err)
	}
	return c, nil
}

// SetAvailability overwrites the availability flag
func (r *cabRepository) SetAvailability(ctx context.Context, id string, available bool) error {
	if !isUUID(id) {
		return ErrNotFound
	}
	tag, err := r.db.Exec(ctx, `UPDATE cabs SET is_available = $1, updated_at = $2 WHERE id = $3`, available, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to set cab availability: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the fleet size
func (r *cabRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM cabs`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count cabs: %w", err)
	}
	return count, nil
}

func scanCab(row pgx.Row) (*model.Cab, error) {
	c := &model.Cab{}
	err := row.Scan(
		&c.ID, &c.DriverName, &c.CarModel, &c.LicensePlate, &c.Capacity, &c.PricePerKm,
		&c.Location, &c.IsAvailable, &c.DriverPhone, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}
