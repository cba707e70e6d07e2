package repository

import (
	"context"
	"errors"
	"fmt"

	"cab_booking/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is the subset of *pgxpool.Pool the postgres repositories use
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// NewPostgresStore wires the postgres repositories over pool
func NewPostgresStore(pool *pgxpool.Pool) *Store {
	return &Store{
		Users:    NewUserRepository(pool),
		Cabs:     NewCabRepository(pool),
		Bookings: NewBookingRepository(pool),
		ping:     pool.Ping,
		close: func(context.Context) error {
			pool.Close()
			return nil
		},
	}
}

type userRepository struct {
	db DBTX
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db DBTX) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, name, email, password_hash, phone, role, created_at`

// Create inserts a new user into the database
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	user.ID = uuid.NewString()
	sql := `INSERT INTO users (id, name, email, password_hash, phone, role, created_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.Exec(ctx, sql, user.ID, user.Name, user.Email, user.PasswordHash, user.Phone, user.Role, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("failed to create user: %w", ErrDuplicateKey)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindByEmail retrieves a user by email
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	sql := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user, err := scanUser(r.db.QueryRow(ctx, sql, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // User not found is not an error for this method's contract, service layer handles it
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return user, nil
}

// FindByID retrieves a user by their ID
func (r *userRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	if !isUUID(id) {
		return nil, nil
	}
	sql := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // User not found
		}
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	return user, nil
}

// FindAll lists every account, oldest first
func (r *userRepository) FindAll(ctx context.Context) ([]model.User, error) {
	sql := `SELECT ` + userColumns + ` FROM users ORDER BY created_at ASC`
	rows, err := r.db.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, *user)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}
	return users, nil
}

// CountByRole counts accounts holding role
func (r *userRepository) CountByRole(ctx context.Context, role string) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE role = $1`, role).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

func scanUser(row pgx.Row) (*model.User, error) {
	user := &model.User{}
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Phone, &user.Role, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Malformed IDs can never match; skipping the query keeps postgres from
// rejecting the uuid cast.
func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
