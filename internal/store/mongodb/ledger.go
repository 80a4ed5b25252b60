package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"mrp-api-server/internal/models"
	"mrp-api-server/internal/store"
)

type LedgerStore struct {
	coll   *mongo.Collection
	moColl *mongo.Collection
	client *mongo.Client
}

func (s *LedgerStore) Insert(ctx context.Context, e *models.StockLedgerEntry) (string, error) {
	result, err := s.coll.InsertOne(ctx, e)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", store.ErrDuplicate
		}
		return "", err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		e.ID = oid
	}
	return e.ID.Hex(), nil
}

func (s *LedgerStore) GetAll(ctx context.Context) ([]models.StockLedgerEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cursor, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []models.StockLedgerEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *LedgerStore) GetByMO(ctx context.Context, moID string) ([]models.StockLedgerEntry, error) {
	cursor, err := s.coll.Find(ctx, bson.M{"manufacturing_order_id": moID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []models.StockLedgerEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// StockAvailability derives current stock per product by summing
// quantity_change across the whole ledger. There is no stored stock figure.
func (s *LedgerStore) StockAvailability(ctx context.Context) ([]models.StockLevel, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":           "$product_id",
			"current_stock": bson.M{"$sum": "$quantity_change"},
		}}},
		{{Key: "$project", Value: bson.M{
			"product_id":    "$_id",
			"current_stock": 1,
			"_id":           0,
		}}},
	}
	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var levels []models.StockLevel
	if err := cursor.All(ctx, &levels); err != nil {
		return nil, err
	}
	return levels, nil
}

// CompleteOrder runs the completion commit: the conditional in_progress→done
// flip and every ledger insert happen inside one session transaction, so a
// crash mid-way leaves either a fully completed order or an untouched one.
// If the status flip matches nothing the order was already completed (or
// never running) and the transaction aborts with store.ErrNotFound.
func (s *LedgerStore) CompleteOrder(ctx context.Context, moID string, completedAt time.Time, entries []models.StockLedgerEntry) error {
	oid, err := parseID(moID)
	if err != nil {
		return err
	}

	session, err := s.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		result, err := s.moColl.UpdateOne(sc,
			bson.M{"_id": oid, "status": models.MOStatusInProgress},
			bson.M{"$set": bson.M{
				"status":       models.MOStatusDone,
				"completed_at": completedAt,
				"updated_at":   completedAt,
			}},
		)
		if err != nil {
			return nil, err
		}
		if result.MatchedCount == 0 {
			return nil, store.ErrNotFound
		}

		docs := make([]interface{}, len(entries))
		for i := range entries {
			docs[i] = entries[i]
		}
		if _, err := s.coll.InsertMany(sc, docs); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return nil, store.ErrDuplicate
			}
			return nil, err
		}
		return nil, nil
	})
	return err
}
