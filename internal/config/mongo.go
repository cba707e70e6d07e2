package config

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names shared by the mongo repositories
const (
	UsersCollection    = "users"
	CabsCollection     = "cabs"
	BookingsCollection = "bookings"
)

// ConnectMongo connects to MongoDB and returns the configured database
func ConnectMongo(ctx context.Context, cfg MongoConfig, logger zerolog.Logger) (*mongo.Client, *mongo.Database, error) {
	var client *mongo.Client
	var err error

	maxRetries := 5
	retryInterval := 5 * time.Second

	for i := 0; i < maxRetries; i++ {
		client, err = mongo.Connect(ctx, options.Client().
			ApplyURI(cfg.URI).
			SetConnectTimeout(cfg.ConnectTimeout))
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
			err = client.Ping(pingCtx, readpref.Primary())
			cancel()
			if err == nil {
				logger.Info().Str("database", cfg.Database).Msg("connected to MongoDB")
				return client, client.Database(cfg.Database), nil
			}
			_ = client.Disconnect(ctx)
		}
		logger.Warn().Err(err).
			Int("attempt", i+1).
			Int("max_attempts", maxRetries).
			Dur("retry_in", retryInterval).
			Msg("failed to connect to MongoDB")

		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		case <-time.After(retryInterval):
		}
	}
	return nil, nil, fmt.Errorf("unable to connect to MongoDB after %d attempts: %w", maxRetries, err)
}

// EnsureIndexes creates the unique and lookup indexes the repositories rely on
func EnsureIndexes(ctx context.Context, db *mongo.Database, logger zerolog.Logger) error {
	indexes := map[string][]mongo.IndexModel{
		UsersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "role", Value: 1}}},
		},
		CabsCollection: {
			{Keys: bson.D{{Key: "licensePlate", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "isAvailable", Value: 1}}},
		},
		BookingsCollection: {
			{Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "cab", Value: 1}, {Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}}},
		},
	}

	for collection, models := range indexes {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", collection, err)
		}
	}

	logger.Info().Msg("MongoDB indexes ensured")
	return nil
}
