// Package mongorepo stores users, counters and history in MongoDB with
// numeric _id keys and a counters collection holding sequence_value.
package mongorepo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/xxxsen/dermaai/internal/config"
	"github.com/xxxsen/dermaai/internal/repo"
)

const (
	usersCollection    = "users"
	countersCollection = "counters"
	historyCollection  = "history"
)

func init() {
	repo.Register("mongo", openStore)
}

func openStore(ctx context.Context, cfg config.StoreConfig) (*repo.Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	db := client.Database(cfg.Mongo.Database)
	if err := EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return repo.NewStore(NewUserRepo(db), NewCounterRepo(db), NewHistoryRepo(db), client.Disconnect), nil
}

// EnsureIndexes creates the unique email index that resolves registration races.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create email index: %w", err)
	}
	_, err = db.Collection(historyCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "_id", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create history index: %w", err)
	}
	return nil
}
