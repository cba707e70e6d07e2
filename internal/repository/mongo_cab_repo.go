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

type cabDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	DriverName   string             `bson:"driverName"`
	CarModel     string             `bson:"carModel"`
	LicensePlate string             `bson:"licensePlate"`
	Capacity     int                `bson:"capacity"`
	PricePerKm   float64            `bson:"pricePerKm"`
	Location     string             `bson:"location"`
	IsAvailable  bool               `bson:"isAvailable"`
	DriverPhone  string             `bson:"driverPhone"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
}

func (d *cabDocument) toModel() *model.Cab {
	return &model.Cab{
		ID:           d.ID.Hex(),
		DriverName:   d.DriverName,
		CarModel:     d.CarModel,
		LicensePlate: d.LicensePlate,
		Capacity:     d.Capacity,
		PricePerKm:   d.PricePerKm,
		Location:     d.Location,
		IsAvailable:  d.IsAvailable,
		DriverPhone:  d.DriverPhone,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

type mongoCabRepository struct {
	coll *mongo.Collection
}

// NewMongoCabRepository creates a CabRepository backed by the cabs collection
func NewMongoCabRepository(db *mongo.Database) CabRepository {
	return &mongoCabRepository{coll: db.Collection(config.CabsCollection)}
}

func (r *mongoCabRepository) Create(ctx context.Context, c *model.Cab) error {
	doc := cabDocument{
		ID:           primitive.NewObjectID(),
		DriverName:   c.DriverName,
		CarModel:     c.CarModel,
		LicensePlate: c.LicensePlate,
		Capacity:     c.Capacity,
		PricePerKm:   c.PricePerKm,
		Location:     c.Location,
		IsAvailable:  c.IsAvailable,
		DriverPhone:  c.DriverPhone,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("failed to create cab: %w", ErrDuplicateKey)
		}
		return fmt.Errorf("failed to create cab: %w", err)
	}
	c.ID = doc.ID.Hex()
	return nil
}

func (r *mongoCabRepository) FindByID(ctx context.Context, id string) (*model.Cab, error) {
	oid, ok := parseObjectID(id)
	if !ok {
		return nil, nil
	}
	var doc cabDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find cab by ID: %w", err)
	}
	return doc.toModel(), nil
}

func (r *mongoCabRepository) FindAll(ctx context.Context) ([]model.Cab, error) {
	return r.list(ctx, bson.M{})
}

func (r *mongoCabRepository) FindAvailable(ctx context.Context) ([]model.Cab, error) {
	return r.list(ctx, bson.M{"isAvailable": true})
}

func (r *mongoCabRepository) list(ctx context.Context, filter bson.M) ([]model.Cab, error) {
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query cabs: %w", err)
	}
	defer cur.Close(ctx)

	var cabs []model.Cab
	for cur.Next(ctx) {
		var doc cabDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode cab: %w", err)
		}
		cabs = append(cabs, *doc.toModel())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cabs: %w", err)
	}
	return cabs, nil
}

func (r *mongoCabRepository) Update(ctx context.Context, c *model.Cab) error {
	oid, ok := parseObjectID(c.ID)
	if !ok {
		return ErrNotFound
	}
	update := bson.M{"$set": bson.M{
		"driverName":   c.DriverName,
		"carModel":     c.CarModel,
		"licensePlate": c.LicensePlate,
		"capacity":     c.Capacity,
		"pricePerKm":   c.PricePerKm,
		"location":     c.Location,
		"driverPhone":  c.DriverPhone,
		"updatedAt":    c.UpdatedAt,
	}}

	var doc cabDocument
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("failed to update cab: %w", ErrDuplicateKey)
		}
		return fmt.Errorf("failed to update cab: %w", err)
	}
	*c = *doc.toModel()
	return nil
}

func (r *mongoCabRepository) Delete(ctx context.Context, id string) error {
	oid, ok := parseObjectID(id)
	if !ok {
		return ErrNotFound
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid, "isAvailable": true})
	if err != nil {
		return fmt.Errorf("failed to delete cab: %w", err)
	}
	if res.DeletedCount == 1 {
		return nil
	}

	count, err := r.coll.CountDocuments(ctx, bson.M{"_id": oid}, options.Count().SetLimit(1))
	if err != nil {
		return fmt.Errorf("failed to check cab: %w", err)
	}
	if count > 0 {
		return ErrCabHeld
	}
	return ErrNotFound
}

func (r *mongoCabRepository) Claim(ctx context.Context, id string) (*model.Cab, error) {
	oid, ok := parseObjectID(id)
	if !ok {
		return nil, nil
	}
	filter := bson.M{"_id": oid, "isAvailable": true}
	update := bson.M{"$set": bson.M{"isAvailable": false, "updatedAt": time.Now()}}

	var doc cabDocument
	err := r.coll.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil // Missing or already claimed
		}
		return nil, fmt.Errorf("failed to claim cab: %w", err)
	}
	return doc.toModel(), nil
}

func (r *mongoCabRepository) SetAvailability(ctx context.Context, id string, available bool) error {
	oid, ok := parseObjectID(id)
	if !ok {
		return ErrNotFound
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid},
		bson.M{"$set": bson.M{"isAvailable": available, "updatedAt": time.Now()}})
	if err != nil {
		return fmt.Errorf("failed to set cab availability: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoCabRepository) Count(ctx context.Context) (int64, error) {
	count, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count cabs: %w", err)
	}
	return count, nil
}
