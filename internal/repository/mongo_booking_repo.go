package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cab_booking/internal/config"
	"cab_booking/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type bookingDocument struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	User           primitive.ObjectID `bson:"user"`
	Cab            primitive.ObjectID `bson:"cab"`
	PickupLocation string             `bson:"pickupLocation"`
	DropLocation   string             `bson:"dropLocation"`
	Distance       float64            `bson:"distance"`
	TotalPrice     float64            `bson:"totalPrice"`
	Status         string             `bson:"status"`
	BookingDate    time.Time          `bson:"bookingDate"`
	CreatedAt      time.Time          `bson:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt"`
}

func (d *bookingDocument) toModel() *model.Booking {
	return &model.Booking{
		ID:             d.ID.Hex(),
		UserID:         d.User.Hex(),
		CabID:          d.Cab.Hex(),
		PickupLocation: d.PickupLocation,
		DropLocation:   d.DropLocation,
		Distance:       d.Distance,
		TotalPrice:     d.TotalPrice,
		Status:         model.BookingStatus(d.Status),
		BookingDate:    d.BookingDate,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

type mongoBookingRepository struct {
	coll *mongo.Collection
}

// NewMongoBookingRepository creates a BookingRepository backed by the bookings collection
func NewMongoBookingRepository(db *mongo.Database) BookingRepository {
	return &mongoBookingRepository{coll: db.Collection(config.BookingsCollection)}
}

func (r *mongoBookingRepository) Create(ctx context.Context, b *model.Booking) error {
	userID, ok := parseObjectID(b.UserID)
	if !ok {
		return fmt.Errorf("failed to create booking: invalid user id %q", b.UserID)
	}
	cabID, ok := parseObjectID(b.CabID)
	if !ok {
		return fmt.Errorf("failed to create booking: invalid cab id %q", b.CabID)
	}
	doc := bookingDocument{
		ID:             primitive.NewObjectID(),
		User:           userID,
		Cab:            cabID,
		PickupLocation: b.PickupLocation,
		DropLocation:   b.DropLocation,
		Distance:       b.Distance,
		TotalPrice:     b.TotalPrice,
		Status:         string(b.Status),
		BookingDate:    b.BookingDate,
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	b.ID = doc.ID.Hex()
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	oid, ok := parseObjectID(id)
	if !ok {
		return nil, nil
	}
	var doc bookingDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return doc.toModel(), nil
}

func (r *mongoBookingRepository) FindByUser(ctx context.Context, userID string) ([]model.Booking, error) {
	oid, ok := parseObjectID(userID)
	if !ok {
		return nil, nil
	}
	return r.list(ctx, bson.M{"user": oid})
}

func (r *mongoBookingRepository) FindAll(ctx context.Context) ([]model.Booking, error) {
	return r.list(ctx, bson.M{})
}

func (r *mongoBookingRepository) list(ctx context.Context, filter bson.M) ([]model.Booking, error) {
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer cur.Close(ctx)

	var bookings []model.Booking
	for cur.Next(ctx) {
		var doc bookingDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode booking: %w", err)
		}
		bookings = append(bookings, *doc.toModel())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bookings: %w", err)
	}
	return bookings, nil
}

func (r *mongoBookingRepository) UpdateStatus(ctx context.Context, id string, from, next model.BookingStatus) (bool, error) {
	oid, ok := parseObjectID(id)
	if !ok {
		return false, nil
	}
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid, "status": string(from)},
		bson.M{"$set": bson.M{"status": string(next), "updatedAt": time.Now()}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to update booking status: %w", err)
	}
	return res.ModifiedCount == 1, nil
}

func (r *mongoBookingRepository) HasActiveForCab(ctx context.Context, cabID string) (bool, error) {
	oid, ok := parseObjectID(cabID)
	if !ok {
		return false, nil
	}
	filter := bson.M{
		"cab":    oid,
		"status": bson.M{"$in": bson.A{string(model.StatusPending), string(model.StatusConfirmed)}},
	}
	count, err := r.coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check active bookings: %w", err)
	}
	return count > 0, nil
}

func (r *mongoBookingRepository) Count(ctx context.Context) (int64, error) {
	count, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

func (r *mongoBookingRepository) SumTotalPrice(ctx context.Context, status model.BookingStatus) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": string(status)}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$totalPrice"}}}},
	}
	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("failed to sum booking revenue: %w", err)
	}
	defer cur.Close(ctx)

	var result struct {
		Total float64 `bson:"total"`
	}
	if cur.Next(ctx) {
		if err := cur.Decode(&result); err != nil {
			return 0, fmt.Errorf("failed to decode booking revenue: %w", err)
		}
	}
	if err := cur.Err(); err != nil {
		return 0, fmt.Errorf("failed to sum booking revenue: %w", err)
	}
	return result.Total, nil
}
