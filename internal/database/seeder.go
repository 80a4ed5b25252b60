package database

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"mrp-api-server/internal/auth"
	"mrp-api-server/internal/models"
)

// EnsureIndexes creates the indexes the lifecycle relies on:
//   - unique case-insensitive product names
//   - unique (mo_id, sequence) so no two work orders share a position
//   - unique (manufacturing_order_id, product_id) on the ledger, the
//     backstop against double-posting a completion
//   - unique user emails
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("products").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "name", Value: 1}},
		Options: options.Index().
			SetUnique(true).
			SetCollation(&options.Collation{Locale: "en", Strength: 2}),
	})
	if err != nil {
		return err
	}

	_, err = db.Collection("work_orders").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "mo_id", Value: 1}, {Key: "sequence", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = db.Collection("stock_ledger").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "manufacturing_order_id", Value: 1}, {Key: "product_id", Value: 1}},
		Options: options.Index().
			SetUnique(true).
			SetPartialFilterExpression(bson.M{"manufacturing_order_id": bson.M{"$exists": true}}),
	})
	if err != nil {
		return err
	}

	_, err = db.Collection("users").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// SeedAdmin creates the bootstrap admin account if it does not exist yet.
func SeedAdmin(ctx context.Context, db *mongo.Database, log *zap.Logger) error {
	userCollection := db.Collection("users")
	adminEmail := "admin@example.com"

	count, err := userCollection.CountDocuments(ctx, bson.M{"email": adminEmail})
	if err != nil {
		return err
	}

	if count > 0 {
		log.Info("admin account already exists, seeding skipped")
		return nil
	}

	log.Info("admin account not found, seeding")
	hashedPassword, err := auth.HashPassword("adminpassword")
	if err != nil {
		return err
	}

	admin := models.User{
		Email:    adminEmail,
		Name:     "Administrator",
		Password: hashedPassword,
		Role:     "admin",
		Status:   "active",
	}

	if _, err := userCollection.InsertOne(ctx, admin); err != nil {
		return err
	}

	log.Info("admin account seeded", zap.String("email", adminEmail))
	return nil
}
