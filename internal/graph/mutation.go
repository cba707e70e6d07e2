package graph

import (
	"context"

	"cab_booking/internal/model"

	graphql "github.com/graph-gophers/graphql-go"
)

type registerInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
}

type loginInput struct {
	Email    string
	Password string
}

type cabInput struct {
	DriverName   string
	CarModel     string
	LicensePlate string
	Capacity     int32
	PricePerKm   float64
	Location     string
	DriverPhone  string
}

func (in cabInput) request() model.CabRequest {
	return model.CabRequest{
		DriverName:   in.DriverName,
		CarModel:     in.CarModel,
		LicensePlate: in.LicensePlate,
		Capacity:     int(in.Capacity),
		PricePerKm:   in.PricePerKm,
		Location:     in.Location,
		DriverPhone:  in.DriverPhone,
	}
}

type bookingInput struct {
	CabID          graphql.ID
	PickupLocation string
	DropLocation   string
	Distance       float64
}

func (r *Resolver) Register(ctx context.Context, args struct{ Input registerInput }) (*authPayloadResolver, error) {
	user, token, err := r.auth.Register(ctx, model.RegisterRequest{
		Name:     args.Input.Name,
		Email:    args.Input.Email,
		Password: args.Input.Password,
		Phone:    args.Input.Phone,
	})
	if err != nil {
		return nil, r.done(ctx, "register", err)
	}
	return &authPayloadResolver{token: token, user: user}, r.done(ctx, "register", nil)
}

func (r *Resolver) Login(ctx context.Context, args struct{ Input loginInput }) (*authPayloadResolver, error) {
	user, token, err := r.auth.Login(ctx, model.LoginRequest{
		Email:    args.Input.Email,
		Password: args.Input.Password,
	})
	if err != nil {
		return nil, r.done(ctx, "login", err)
	}
	return &authPayloadResolver{token: token, user: user}, r.done(ctx, "login", nil)
}

func (r *Resolver) AddCab(ctx context.Context, args struct{ Input cabInput }) (*cabResolver, error) {
	cab, err := r.cabs.AddCab(ctx, args.Input.request())
	if err != nil {
		return nil, r.done(ctx, "addCab", err)
	}
	return &cabResolver{c: cab}, r.done(ctx, "addCab", nil)
}

func (r *Resolver) UpdateCab(ctx context.Context, args struct {
	ID    graphql.ID
	Input cabInput
}) (*cabResolver, error) {
	cab, err := r.cabs.UpdateCab(ctx, string(args.ID), args.Input.request())
	if err != nil {
		return nil, r.done(ctx, "updateCab", err)
	}
	return &cabResolver{c: cab}, r.done(ctx, "updateCab", nil)
}

func (r *Resolver) DeleteCab(ctx context.Context, args struct{ ID graphql.ID }) (bool, error) {
	if err := r.cabs.DeleteCab(ctx, string(args.ID)); err != nil {
		return false, r.done(ctx, "deleteCab", err)
	}
	return true, r.done(ctx, "deleteCab", nil)
}

func (r *Resolver) BookCab(ctx context.Context, args struct{ Input bookingInput }) (*bookingResolver, error) {
	booking, err := r.bookings.BookCab(ctx, model.BookingRequest{
		CabID:          string(args.Input.CabID),
		PickupLocation: args.Input.PickupLocation,
		DropLocation:   args.Input.DropLocation,
		Distance:       args.Input.Distance,
	})
	if err != nil {
		return nil, r.done(ctx, "bookCab", err)
	}
	return &bookingResolver{b: booking, root: r}, r.done(ctx, "bookCab", nil)
}

func (r *Resolver) UpdateBookingStatus(ctx context.Context, args struct {
	ID     graphql.ID
	Status string
}) (*bookingResolver, error) {
	booking, err := r.bookings.UpdateStatus(ctx, string(args.ID), args.Status)
	if err != nil {
		return nil, r.done(ctx, "updateBookingStatus", err)
	}
	return &bookingResolver{b: booking, root: r}, r.done(ctx, "updateBookingStatus", nil)
}
