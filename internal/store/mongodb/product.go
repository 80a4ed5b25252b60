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

type ProductStore struct {
	coll *mongo.Collection
}

// caseInsensitive is the collation used for the unique product-name lookup.
var caseInsensitive = &options.Collation{Locale: "en", Strength: 2}

func (s *ProductStore) Insert(ctx context.Context, p *models.Product) (string, error) {
	result, err := s.coll.InsertOne(ctx, p)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", store.ErrDuplicate
		}
		return "", err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		p.ID = oid
	}
	return p.ID.Hex(), nil
}

func (s *ProductStore) GetByID(ctx context.Context, id string) (*models.Product, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var p models.Product
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&p); err != nil {
		return nil, mapFindErr(err)
	}
	return &p, nil
}

func (s *ProductStore) GetByName(ctx context.Context, name string) (*models.Product, error) {
	var p models.Product
	opts := options.FindOne().SetCollation(caseInsensitive)
	if err := s.coll.FindOne(ctx, bson.M{"name": name}, opts).Decode(&p); err != nil {
		return nil, mapFindErr(err)
	}
	return &p, nil
}

func (s *ProductStore) GetAll(ctx context.Context) ([]models.Product, error) {
	cursor, err := s.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *ProductStore) Delete(ctx context.Context, id string) error {
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
