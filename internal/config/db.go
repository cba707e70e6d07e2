package config

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// ConnectDB establishes a connection to the PostgreSQL database
func ConnectDB(ctx context.Context, cfg PostgresConfig, logger zerolog.Logger) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool
	var err error

	// Retry connecting to the database a few times
	maxRetries := 5
	retryInterval := 5 * time.Second

	for i := 0; i < maxRetries; i++ {
		pool, err = pgxpool.New(ctx, cfg.DSN())
		if err == nil {
			err = pool.Ping(ctx)
			if err == nil {
				logger.Info().Str("host", cfg.Host).Str("db", cfg.DBName).Msg("connected to PostgreSQL")
				return pool, nil
			}
			pool.Close()
		}
		logger.Warn().Err(err).
			Int("attempt", i+1).
			Int("max_attempts", maxRetries).
			Dur("retry_in", retryInterval).
			Msg("failed to connect to database")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryInterval):
		}
	}
	return nil, fmt.Errorf("unable to connect to database after %d attempts: %w", maxRetries, err)
}

// AutoMigrate creates tables if they don't exist
func AutoMigrate(ctx context.Context, db *pgxpool.Pool, logger zerolog.Logger) error {
	sql := `
	CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		phone TEXT NOT NULL,
		role TEXT NOT NULL CHECK (role IN ('user', 'admin')) DEFAULT 'user',
		created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS cabs (
		id UUID PRIMARY KEY,
		driver_name TEXT NOT NULL,
		car_model TEXT NOT NULL,
		license_plate TEXT UNIQUE NOT NULL,
		capacity INTEGER NOT NULL CHECK (capacity > 0),
		price_per_km DOUBLE PRECISION NOT NULL CHECK (price_per_km > 0),
		location TEXT NOT NULL,
		is_available BOOLEAN NOT NULL DEFAULT TRUE,
		driver_phone TEXT NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS bookings (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id),
		cab_id UUID NOT NULL,
		pickup_location TEXT NOT NULL,
		drop_location TEXT NOT NULL,
		distance DOUBLE PRECISION NOT NULL CHECK (distance > 0),
		total_price DOUBLE PRECISION NOT NULL,
		status TEXT NOT NULL CHECK (status IN ('pending', 'confirmed', 'completed', 'cancelled')) DEFAULT 'pending',
		booking_date TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
	);

	-- Indexes for performance
	CREATE INDEX IF NOT EXISTS idx_cabs_is_available ON cabs(is_available);
	CREATE INDEX IF NOT EXISTS idx_bookings_user_id ON bookings(user_id);
	CREATE INDEX IF NOT EXISTS idx_bookings_cab_id ON bookings(cab_id);
	CREATE INDEX IF NOT EXISTS idx_bookings_status ON bookings(status);
	`
	_, err := db.Exec(ctx, sql)
	if err != nil {
		return fmt.Errorf("unable to apply migrations: %w", err)
	}

	logger.Info().Msg("AutoMigrate applied successfully")
	return nil
}
