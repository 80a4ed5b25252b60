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

type WorkCentreStore struct {
	coll *mongo.Collection
}

func (s *WorkCentreStore) Insert(ctx context.Context, wc *models.WorkCentre) (string, error) {
	result, err := s.coll.InsertOne(ctx, wc)
	if err != nil {
		return "", err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		wc.ID = oid
	}
	return wc.ID.Hex(), nil
}

func (s *WorkCentreStore) GetByID(ctx context.Context, id string) (*models.WorkCentre, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var wc models.WorkCentre
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&wc); err != nil {
		return nil, mapFindErr(err)
	}
	return &wc, nil
}

func (s *WorkCentreStore) GetByOperation(ctx context.Context, operation string) (*models.WorkCentre, error) {
	var wc models.WorkCentre
	if err := s.coll.FindOne(ctx, bson.M{"operation": operation}).Decode(&wc); err != nil {
		return nil, mapFindErr(err)
	}
	return &wc, nil
}

func (s *WorkCentreStore) GetAll(ctx context.Context) ([]models.WorkCentre, error) {
	cursor, err := s.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var centres []models.WorkCentre
	if err := cursor.All(ctx, &centres); err != nil {
		return nil, err
	}
	return centres, nil
}

func (s *WorkCentreStore) Update(ctx context.Context, id string, wc *models.WorkCentre) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	result, err := s.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"name":          wc.Name,
		"operation":     wc.Operation,
		"description":   wc.Description,
		"cost_per_hour": wc.CostPerHour,
		"updatedAt":     time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *WorkCentreStore) Delete(ctx context.Context, id string) error {
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
