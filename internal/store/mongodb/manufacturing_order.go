package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"mrp-api-server/internal/models"
	"mrp-api-server/internal/store"
)

type ManufacturingOrderStore struct {
	coll *mongo.Collection
}

func (s *ManufacturingOrderStore) Insert(ctx context.Context, mo *models.ManufacturingOrder) (string, error) {
	result, err := s.coll.InsertOne(ctx, mo)
	if err != nil {
		return "", err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		mo.ID = oid
	}
	return mo.ID.Hex(), nil
}

func (s *ManufacturingOrderStore) GetByID(ctx context.Context, id string) (*models.ManufacturingOrder, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var mo models.ManufacturingOrder
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&mo); err != nil {
		return nil, mapFindErr(err)
	}
	return &mo, nil
}

func (s *ManufacturingOrderStore) GetAll(ctx context.Context, status *models.MOStatus) ([]models.ManufacturingOrder, error) {
	filter := bson.M{}
	if status != nil {
		filter["status"] = *status
	}
	cursor, err := s.coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orders []models.ManufacturingOrder
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateStatusIf is the single compare-and-set every MO transition goes
// through. The filter matches on both id and the expected current status, so
// two racing callers cannot both win.
func (s *ManufacturingOrderStore) UpdateStatusIf(ctx context.Context, id string, from, to models.MOStatus) (bool, error) {
	oid, err := parseID(id)
	if err != nil {
		return false, err
	}
	result, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": oid, "status": from},
		bson.M{"$set": bson.M{"status": to, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return false, err
	}
	return result.MatchedCount == 1, nil
}

func (s *ManufacturingOrderStore) FindStalledCandidates(ctx context.Context, before time.Time) ([]models.ManufacturingOrder, error) {
	cursor, err := s.coll.Find(ctx, bson.M{
		"status":     models.MOStatusInProgress,
		"is_stalled": false,
		"updated_at": bson.M{"$lt": before},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orders []models.ManufacturingOrder
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// MarkStalled sets the advisory flag without touching status or updated_at,
// so one flag write does not push the order out of the stall window logic.
// The filter re-checks in_progress: an order completed after the candidate
// query must not end up done with a stall flag.
func (s *ManufacturingOrderStore) MarkStalled(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	result, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": oid, "status": models.MOStatusInProgress},
		bson.M{"$set": bson.M{"is_stalled": true}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *ManufacturingOrderStore) CountByStatus(ctx context.Context) (map[models.MOStatus]int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":   "$status",
			"count": bson.M{"$sum": 1},
		}}},
	}
	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status models.MOStatus `bson:"_id"`
		Count  int             `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	counts := make(map[models.MOStatus]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (s *ManufacturingOrderStore) ThroughputByDay(ctx context.Context, since time.Time) ([]models.ThroughputPoint, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"status":       models.MOStatusDone,
			"completed_at": bson.M{"$gte": since},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   bson.M{"$dateToString": bson.M{"format": "%Y-%m-%d", "date": "$completed_at"}},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
		{{Key: "$project", Value: bson.M{
			"date":  "$_id",
			"count": 1,
			"_id":   0,
		}}},
	}
	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var points []models.ThroughputPoint
	if err := cursor.All(ctx, &points); err != nil {
		return nil, err
	}
	return points, nil
}

func (s *ManufacturingOrderStore) AverageCycleTime(ctx context.Context) (time.Duration, int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"status":       models.MOStatusDone,
			"completed_at": bson.M{"$ne": nil},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":    nil,
			"avg_ms": bson.M{"$avg": bson.M{"$subtract": bson.A{"$completed_at", "$created_at"}}},
			"count":  bson.M{"$sum": 1},
		}}},
	}
	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		AvgMS float64 `bson:"avg_ms"`
		Count int     `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, 0, err
	}
	if len(rows) == 0 {
		return 0, 0, nil
	}
	return time.Duration(rows[0].AvgMS * float64(time.Millisecond)), rows[0].Count, nil
}

func (s *ManufacturingOrderStore) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	result, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
