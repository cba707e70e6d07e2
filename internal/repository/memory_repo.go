package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"cab_booking/internal/model"

	"github.com/google/uuid"
)

// memoryDB holds every record of an in-process store behind a single lock
type memoryDB struct {
	mu       sync.RWMutex
	seq      uint64
	users    map[string]*memoryRecord[model.User]
	cabs     map[string]*memoryRecord[model.Cab]
	bookings map[string]*memoryRecord[model.Booking]
}

// memoryRecord keeps an insertion sequence so listings stay stable when
// timestamps collide.
type memoryRecord[T any] struct {
	seq   uint64
	value T
}

// NewMemoryStore returns a Store that keeps everything in process memory.
// It is meant for local development and tests.
func NewMemoryStore() *Store {
	db := &memoryDB{
		users:    make(map[string]*memoryRecord[model.User]),
		cabs:     make(map[string]*memoryRecord[model.Cab]),
		bookings: make(map[string]*memoryRecord[model.Booking]),
	}
	return &Store{
		Users:    &memoryUserRepository{db: db},
		Cabs:     &memoryCabRepository{db: db},
		Bookings: &memoryBookingRepository{db: db},
	}
}

func (db *memoryDB) next() uint64 {
	db.seq++
	return db.seq
}

func sortedValues[T any](records map[string]*memoryRecord[T], keep func(*T) bool, less func(a, b *memoryRecord[T]) bool) []T {
	matched := make([]*memoryRecord[T], 0, len(records))
	for _, rec := range records {
		if keep == nil || keep(&rec.value) {
			matched = append(matched, rec)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return less(matched[i], matched[j]) })

	out := make([]T, 0, len(matched))
	for _, rec := range matched {
		out = append(out, rec.value)
	}
	return out
}

func oldestFirst[T any](a, b *memoryRecord[T]) bool { return a.seq < b.seq }

func newestFirst[T any](a, b *memoryRecord[T]) bool { return a.seq > b.seq }

type memoryUserRepository struct {
	db *memoryDB
}

func (r *memoryUserRepository) Create(_ context.Context, user *model.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, rec := range r.db.users {
		if rec.value.Email == user.Email {
			return ErrDuplicateKey
		}
	}
	user.ID = uuid.NewString()
	r.db.users[user.ID] = &memoryRecord[model.User]{seq: r.db.next(), value: *user}
	return nil
}

func (r *memoryUserRepository) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, rec := range r.db.users {
		if rec.value.Email == email {
			u := rec.value
			return &u, nil
		}
	}
	return nil, nil
}

func (r *memoryUserRepository) FindByID(_ context.Context, id string) (*model.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	rec, ok := r.db.users[id]
	if !ok {
		return nil, nil
	}
	u := rec.value
	return &u, nil
}

func (r *memoryUserRepository) FindAll(_ context.Context) ([]model.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return sortedValues(r.db.users, nil, oldestFirst[model.User]), nil
}

func (r *memoryUserRepository) CountByRole(_ context.Context, role string) (int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var n int64
	for _, rec := range r.db.users {
		if rec.value.Role == role {
			n++
		}
	}
	return n, nil
}

type memoryCabRepository struct {
	db *memoryDB
}

func (r *memoryCabRepository) plateTaken(plate, exceptID string) bool {
	for id, rec := range r.db.cabs {
		if id != exceptID && rec.value.LicensePlate == plate {
			return true
		}
	}
	return false
}

func (r *memoryCabRepository) Create(_ context.Context, c *model.Cab) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if r.plateTaken(c.LicensePlate, "") {
		return ErrDuplicateKey
	}
	c.ID = uuid.NewString()
	r.db.cabs[c.ID] = &memoryRecord[model.Cab]{seq: r.db.next(), value: *c}
	return nil
}

func (r *memoryCabRepository) FindByID(_ context.Context, id string) (*model.Cab, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	rec, ok := r.db.cabs[id]
	if !ok {
		return nil, nil
	}
	c := rec.value
	return &c, nil
}

func (r *memoryCabRepository) FindAll(_ context.Context) ([]model.Cab, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return sortedValues(r.db.cabs, nil, oldestFirst[model.Cab]), nil
}

func (r *memoryCabRepository) FindAvailable(_ context.Context) ([]model.Cab, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	available := func(c *model.Cab) bool { return c.IsAvailable }
	return sortedValues(r.db.cabs, available, oldestFirst[model.Cab]), nil
}

func (r *memoryCabRepository) Update(_ context.Context, c *model.Cab) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	rec, ok := r.db.cabs[c.ID]
	if !ok {
		return ErrNotFound
	}
	if r.plateTaken(c.LicensePlate, c.ID) {
		return ErrDuplicateKey
	}
	c.IsAvailable = rec.value.IsAvailable
	c.CreatedAt = rec.value.CreatedAt
	rec.value = *c
	return nil
}

func (r *memoryCabRepository) Delete(_ context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	rec, ok := r.db.cabs[id]
	if !ok {
		return ErrNotFound
	}
	if !rec.value.IsAvailable {
		return ErrCabHeld
	}
	delete(r.db.cabs, id)
	return nil
}

func (r *memoryCabRepository) Claim(_ context.Context, id string) (*model.Cab, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	rec, ok := r.db.cabs[id]
	if !ok || !rec.value.IsAvailable {
		return nil, nil
	}
	rec.value.IsAvailable = false
	rec.value.UpdatedAt = time.Now()
	c := rec.value
	return &c, nil
}

func (r *memoryCabRepository) SetAvailability(_ context.Context, id string, available bool) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	rec, ok := r.db.cabs[id]
	if !ok {
		return ErrNotFound
	}
	rec.value.IsAvailable = available
	rec.value.UpdatedAt = time.Now()
	return nil
}

func (r *memoryCabRepository) Count(_ context.Context) (int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return int64(len(r.db.cabs)), nil
}

type memoryBookingRepository struct {
	db *memoryDB
}

func (r *memoryBookingRepository) Create(_ context.Context, b *model.Booking) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	b.ID = uuid.NewString()
	r.db.bookings[b.ID] = &memoryRecord[model.Booking]{seq: r.db.next(), value: *b}
	return nil
}

func (r *memoryBookingRepository) FindByID(_ context.Context, id string) (*model.Booking, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	rec, ok := r.db.bookings[id]
	if !ok {
		return nil, nil
	}
	b := rec.value
	return &b, nil
}

func (r *memoryBookingRepository) FindByUser(_ context.Context, userID string) ([]model.Booking, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	owned := func(b *model.Booking) bool { return b.UserID == userID }
	return sortedValues(r.db.bookings, owned, newestFirst[model.Booking]), nil
}

func (r *memoryBookingRepository) FindAll(_ context.Context) ([]model.Booking, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return sortedValues(r.db.bookings, nil, newestFirst[model.Booking]), nil
}

func (r *memoryBookingRepository) UpdateStatus(_ context.Context, id string, from, next model.BookingStatus) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	rec, ok := r.db.bookings[id]
	if !ok || rec.value.Status != from {
		return false, nil
	}
	rec.value.Status = next
	rec.value.UpdatedAt = time.Now()
	return true, nil
}

func (r *memoryBookingRepository) HasActiveForCab(_ context.Context, cabID string) (bool, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, rec := range r.db.bookings {
		if rec.value.CabID == cabID && !rec.value.Status.IsTerminal() {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryBookingRepository) Count(_ context.Context) (int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return int64(len(r.db.bookings)), nil
}

func (r *memoryBookingRepository) SumTotalPrice(_ context.Context, status model.BookingStatus) (float64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var total float64
	for _, rec := range r.db.bookings {
		if rec.value.Status == status {
			total += rec.value.TotalPrice
		}
	}
	return total, nil
}
