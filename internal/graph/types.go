package graph

import (
	"context"
	"fmt"
	"time"

	"cab_booking/internal/model"

	graphql "github.com/graph-gophers/graphql-go"
)

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

type userResolver struct {
	u *model.User
}

func (r *userResolver) ID() graphql.ID { return graphql.ID(r.u.ID) }
func (r *userResolver) Name() string { return r.u.Name }
func (r *userResolver) Email() string { return r.u.Email }
func (r *userResolver) Phone() string { return r.u.Phone }
func (r *userResolver) Role() string { return r.u.Role }
func (r *userResolver) CreatedAt() string { return formatTime(r.u.CreatedAt) }

type cabResolver struct {
	c *model.Cab
}

func (r *cabResolver) ID() graphql.ID { return graphql.ID(r.c.ID) }
func (r *cabResolver) DriverName() string { return r.c.DriverName }
func (r *cabResolver) CarModel() string { return r.c.CarModel }
func (r *cabResolver) LicensePlate() string { return r.c.LicensePlate }
func (r *cabResolver) Capacity() int32 { return int32(r.c.Capacity) }
func (r *cabResolver) PricePerKm() float64 { return r.c.PricePerKm }
func (r *cabResolver) Location() string { return r.c.Location }
func (r *cabResolver) IsAvailable() bool { return r.c.IsAvailable }
func (r *cabResolver) DriverPhone() string { return r.c.DriverPhone }
func (r *cabResolver) CreatedAt() string { return formatTime(r.c.CreatedAt) }

func cabList(cabs []model.Cab) []*cabResolver {
	out := make([]*cabResolver, len(cabs))
	for i := range cabs {
		out[i] = &cabResolver{c: &cabs[i]}
	}
	return out
}

// bookingResolver loads the referenced user and cab on demand
type bookingResolver struct {
	b    *model.Booking
	root *Resolver
}

func (r *bookingResolver) ID() graphql.ID { return graphql.ID(r.b.ID) }
func (r *bookingResolver) PickupLocation() string { return r.b.PickupLocation }
func (r *bookingResolver) DropLocation() string { return r.b.DropLocation }
func (r *bookingResolver) Distance() float64 { return r.b.Distance }
func (r *bookingResolver) TotalPrice() float64 { return r.b.TotalPrice }
func (r *bookingResolver) Status() string { return string(r.b.Status) }
func (r *bookingResolver) BookingDate() string { return formatTime(r.b.BookingDate) }
func (r *bookingResolver) CreatedAt() string { return formatTime(r.b.CreatedAt) }

func (r *bookingResolver) User(ctx context.Context) (*userResolver, error) {
	u, err := r.root.admin.GetUser(ctx, r.b.UserID)
	if err != nil {
		return nil, r.root.done(ctx, "Booking.user", err)
	}
	if u == nil {
		return nil, r.root.done(ctx, "Booking.user", fmt.Errorf("booking %s references missing user %s", r.b.ID, r.b.UserID))
	}
	return &userResolver{u: u}, nil
}

// Cab resolves the booked cab. A cab removed after its booking ended
// comes back with only its id set.
func (r *bookingResolver) Cab(ctx context.Context) (*cabResolver, error) {
	c, err := r.root.cabs.GetCab(ctx, r.b.CabID)
	if err != nil {
		return nil, r.root.done(ctx, "Booking.cab", err)
	}
	if c == nil {
		c = &model.Cab{ID: r.b.CabID}
	}
	return &cabResolver{c: c}, nil
}

func (r *Resolver) bookingList(bookings []model.Booking) []*bookingResolver {
	out := make([]*bookingResolver, len(bookings))
	for i := range bookings {
		out[i] = &bookingResolver{b: &bookings[i], root: r}
	}
	return out
}

type authPayloadResolver struct {
	token string
	user  *model.User
}

func (r *authPayloadResolver) Token() string { return r.token }
func (r *authPayloadResolver) User() *userResolver { return &userResolver{u: r.user} }

type dashboardStatsResolver struct {
	s *model.DashboardStats
}

func (r *dashboardStatsResolver) TotalUsers() int32 { return int32(r.s.TotalUsers) }
func (r *dashboardStatsResolver) TotalCabs() int32 { return int32(r.s.TotalCabs) }
func (r *dashboardStatsResolver) TotalBookings() int32 { return int32(r.s.TotalBookings) }
func (r *dashboardStatsResolver) TotalRevenue() float64 { return r.s.TotalRevenue }
