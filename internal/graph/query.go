package graph

import (
	"context"
)

func (r *Resolver) GetUsers(ctx context.Context) ([]*userResolver, error) {
	users, err := r.admin.GetUsers(ctx)
	if err != nil {
		return nil, r.done(ctx, "getUsers", err)
	}
	out := make([]*userResolver, len(users))
	for i := range users {
		out[i] = &userResolver{u: &users[i]}
	}
	return out, r.done(ctx, "getUsers", nil)
}

func (r *Resolver) GetCabs(ctx context.Context) ([]*cabResolver, error) {
	cabs, err := r.cabs.ListCabs(ctx)
	if err != nil {
		return nil, r.done(ctx, "getCabs", err)
	}
	return cabList(cabs), r.done(ctx, "getCabs", nil)
}

func (r *Resolver) GetAvailableCabs(ctx context.Context) ([]*cabResolver, error) {
	cabs, err := r.cabs.ListAvailableCabs(ctx)
	if err != nil {
		return nil, r.done(ctx, "getAvailableCabs", err)
	}
	return cabList(cabs), r.done(ctx, "getAvailableCabs", nil)
}

func (r *Resolver) GetUserBookings(ctx context.Context) ([]*bookingResolver, error) {
	bookings, err := r.bookings.GetUserBookings(ctx)
	if err != nil {
		return nil, r.done(ctx, "getUserBookings", err)
	}
	return r.bookingList(bookings), r.done(ctx, "getUserBookings", nil)
}

func (r *Resolver) GetAllBookings(ctx context.Context) ([]*bookingResolver, error) {
	bookings, err := r.bookings.GetAllBookings(ctx)
	if err != nil {
		return nil, r.done(ctx, "getAllBookings", err)
	}
	return r.bookingList(bookings), r.done(ctx, "getAllBookings", nil)
}

func (r *Resolver) GetDashboardStats(ctx context.Context) (*dashboardStatsResolver, error) {
	stats, err := r.admin.GetDashboardStats(ctx)
	if err != nil {
		return nil, r.done(ctx, "getDashboardStats", err)
	}
	return &dashboardStatsResolver{s: stats}, r.done(ctx, "getDashboardStats", nil)
}
