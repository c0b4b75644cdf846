package mongorepo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/xxxsen/dermaai/internal/model"
	appErr "github.com/xxxsen/dermaai/internal/pkg/errors"
)

type HistoryRepo struct {
	coll *mongo.Collection
}

func NewHistoryRepo(db *mongo.Database) *HistoryRepo {
	return &HistoryRepo{coll: db.Collection(historyCollection)}
}

func (r *HistoryRepo) Create(ctx context.Context, item *model.History) error {
	if _, err := r.coll.InsertOne(ctx, historyDocument(item)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return appErr.ErrConflict
		}
		return err
	}
	return nil
}

func (r *HistoryRepo) ListByUser(ctx context.Context, userID int64) ([]model.History, error) {
	cur, err := r.coll.Find(ctx, bson.M{"user_id": userID}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer func() { _ = cur.Close(ctx) }()
	items := make([]model.History, 0)
	for cur.Next(ctx) {
		var doc bson.M
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		item, err := historyFromDocument(doc)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, cur.Err()
}

func (r *HistoryRepo) Delete(ctx context.Context, userID, id int64) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return appErr.ErrNotFound
	}
	return nil
}
