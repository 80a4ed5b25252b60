package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"mrp-api-server/internal/models"
	"mrp-api-server/internal/store"
)

type WorkOrderStore struct {
	coll *mongo.Collection
}

func (s *WorkOrderStore) Insert(ctx context.Context, wo *models.WorkOrder) (string, error) {
	result, err := s.coll.InsertOne(ctx, wo)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", store.ErrDuplicate
		}
		return "", err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		wo.ID = oid
	}
	return wo.ID.Hex(), nil
}

func (s *WorkOrderStore) GetByID(ctx context.Context, id string) (*models.WorkOrder, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var wo models.WorkOrder
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&wo); err != nil {
		return nil, mapFindErr(err)
	}
	return &wo, nil
}

func (s *WorkOrderStore) GetAll(ctx context.Context) ([]models.WorkOrder, error) {
	opts := options.Find().SetSort(bson.D{{Key: "mo_id", Value: 1}, {Key: "sequence", Value: 1}})
	cursor, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orders []models.WorkOrder
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *WorkOrderStore) GetByMO(ctx context.Context, moID string) ([]models.WorkOrder, error) {
	opts := options.Find().SetSort(bson.D{{Key: "sequence", Value: 1}})
	cursor, err := s.coll.Find(ctx, bson.M{"mo_id": moID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orders []models.WorkOrder
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *WorkOrderStore) GetByStatus(ctx context.Context, status models.WOStatus) ([]models.WorkOrder, error) {
	cursor, err := s.coll.Find(ctx, bson.M{"status": status})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orders []models.WorkOrder
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateStatusIf is the conditional swap guaranteeing at most one winner when
// an operator PATCH and the sweeper race for the same work order.
func (s *WorkOrderStore) UpdateStatusIf(ctx context.Context, id string, from, to models.WOStatus) (bool, error) {
	oid, err := parseID(id)
	if err != nil {
		return false, err
	}
	result, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": oid, "status": from},
		bson.M{"$set": bson.M{"status": to}},
	)
	if err != nil {
		return false, err
	}
	return result.MatchedCount == 1, nil
}

func (s *WorkOrderStore) SetStatus(ctx context.Context, id string, status models.WOStatus) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	result, err := s.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *WorkOrderStore) DeleteByMO(ctx context.Context, moID string) error {
	_, err := s.coll.DeleteMany(ctx, bson.M{"mo_id": moID})
	return err
}
