// Package mongodb implements the store interfaces on top of the official
// MongoDB driver. One Stores value owns all collection handles; it is built
// once at startup and injected everywhere (no package-level client).
package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"mrp-api-server/internal/store"
)

type Stores struct {
	Products    *ProductStore
	BOMs        *BOMStore
	WorkCentres *WorkCentreStore
	MOs         *ManufacturingOrderStore
	WOs         *WorkOrderStore
	Ledger      *LedgerStore
	Users       *UserStore
}

// New builds the full store set over one database handle.
func New(db *mongo.Database) *Stores {
	return &Stores{
		Products:    &ProductStore{coll: db.Collection("products")},
		BOMs:        &BOMStore{coll: db.Collection("boms")},
		WorkCentres: &WorkCentreStore{coll: db.Collection("work_centres")},
		MOs:         &ManufacturingOrderStore{coll: db.Collection("manufacturing_orders")},
		WOs:         &WorkOrderStore{coll: db.Collection("work_orders")},
		Ledger: &LedgerStore{
			coll:   db.Collection("stock_ledger"),
			moColl: db.Collection("manufacturing_orders"),
			client: db.Client(),
		},
		Users: &UserStore{coll: db.Collection("users")},
	}
}

// Connect opens a client and verifies the connection with a ping.
func Connect(ctx context.Context, uri, dbName string) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, nil, err
	}
	return client, client.Database(dbName), nil
}

// parseID converts a hex string to an ObjectID, mapping malformed input to
// store.ErrInvalidID so callers do not see driver details.
func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, store.ErrInvalidID
	}
	return oid, nil
}

// mapFindErr normalizes the driver's not-found sentinel.
func mapFindErr(err error) error {
	if err == mongo.ErrNoDocuments {
		return store.ErrNotFound
	}
	return err
}
