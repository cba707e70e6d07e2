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

// NewMongoStore wires the mongo repositories over db
func NewMongoStore(client *mongo.Client, db *mongo.Database) *Store {
	return &Store{
		Users:    NewMongoUserRepository(db),
		Cabs:     NewMongoCabRepository(db),
		Bookings: NewMongoBookingRepository(db),
		ping: func(ctx context.Context) error {
			return client.Ping(ctx, nil)
		},
		close: client.Disconnect,
	}
}

type userDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Email     string             `bson:"email"`
	Password  string             `bson:"password"`
	Phone     string             `bson:"phone"`
	Role      string             `bson:"role"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func (d *userDocument) toModel() *model.User {
	return &model.User{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.Password,
		Phone:        d.Phone,
		Role:         d.Role,
		CreatedAt:    d.CreatedAt,
	}
}

type mongoUserRepository struct {
	coll *mongo.Collection
}

// NewMongoUserRepository creates a UserRepository backed by the users collection
func NewMongoUserRepository(db *mongo.Database) UserRepository {
	return &mongoUserRepository{coll: db.Collection(config.UsersCollection)}
}

func (r *mongoUserRepository) Create(ctx context.Context, user *model.User) error {
	doc := userDocument{
		ID:        primitive.NewObjectID(),
		Name:      user.Name,
		Email:     user.Email,
		Password:  user.PasswordHash,
		Phone:     user.Phone,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("failed to create user: %w", ErrDuplicateKey)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	user.ID = doc.ID.Hex()
	return nil
}

func (r *mongoUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *mongoUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	oid, ok := parseObjectID(id)
	if !ok {
		return nil, nil
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *mongoUserRepository) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	var doc userDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return doc.toModel(), nil
}

func (r *mongoUserRepository) FindAll(ctx context.Context) ([]model.User, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer cur.Close(ctx)

	var users []model.User
	for cur.Next(ctx) {
		var doc userDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode user: %w", err)
		}
		users = append(users, *doc.toModel())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return users, nil
}

func (r *mongoUserRepository) CountByRole(ctx context.Context, role string) (int64, error) {
	count, err := r.coll.CountDocuments(ctx, bson.M{"role": role})
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

func parseObjectID(id string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return oid, true
}
