// internal/database/mongo.go
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/storefront-labs/storefront-api/internal/config"
)

// Collection names shared by the mongo store adapter.
const (
	CollectionProducts = "products"
	CollectionCarts    = "carts"
	CollectionUsers    = "users"
	CollectionTickets  = "tickets"
)

func ConnectMongo(ctx context.Context, cfg config.MongoConfig, log *logrus.Logger) (*mongo.Client, *mongo.Database, error) {
	timeout := time.Duration(cfg.Timeout) * time.Second
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI).SetTimeout(timeout))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	log.WithField("database", cfg.Database).Info("MongoDB connection established")
	return client, client.Database(cfg.Database), nil
}

// EnsureMongoIndexes creates the unique and lookup indexes the store relies on.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	caseInsensitive := options.Collation{Locale: "en", Strength: 2}

	indexes := map[string][]mongo.IndexModel{
		CollectionProducts: {
			{Keys: bson.D{{Key: "code", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "category", Value: 1}, {Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "price", Value: 1}}},
		},
		CollectionUsers: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetCollation(&caseInsensitive)},
		},
		CollectionTickets: {
			{Keys: bson.D{{Key: "code", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "purchaser", Value: 1}, {Key: "created_at", Value: -1}}},
		},
	}

	for name, models := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create %s indexes: %w", name, err)
		}
	}
	return nil
}
