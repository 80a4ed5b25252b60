package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"mrp-api-server/internal/models"
	"mrp-api-server/internal/store"
)

type BOMStore struct {
	coll *mongo.Collection
}

func (s *BOMStore) Insert(ctx context.Context, b *models.BillOfMaterials) (string, error) {
	result, err := s.coll.InsertOne(ctx, b)
	if err != nil {
		return "", err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		b.ID = oid
	}
	return b.ID.Hex(), nil
}

func (s *BOMStore) GetByID(ctx context.Context, id string) (*models.BillOfMaterials, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var b models.BillOfMaterials
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&b); err != nil {
		return nil, mapFindErr(err)
	}
	return &b, nil
}

func (s *BOMStore) GetByFinishedProduct(ctx context.Context, productID string) (*models.BillOfMaterials, error) {
	var b models.BillOfMaterials
	if err := s.coll.FindOne(ctx, bson.M{"finishedProductId": productID}).Decode(&b); err != nil {
		return nil, mapFindErr(err)
	}
	return &b, nil
}

func (s *BOMStore) GetAll(ctx context.Context) ([]models.BillOfMaterials, error) {
	cursor, err := s.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var boms []models.BillOfMaterials
	if err := cursor.All(ctx, &boms); err != nil {
		return nil, err
	}
	return boms, nil
}

func (s *BOMStore) Delete(ctx context.Context, id string) error {
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
