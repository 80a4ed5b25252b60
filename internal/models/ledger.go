package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StockLedgerEntry is one immutable signed inventory movement. Entries are
// append-only; corrections are made with new offsetting entries, never by
// amending an existing one. The current stock level of a product is the sum
// of its entries' QuantityChange.
type StockLedgerEntry struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProductID            string             `bson:"product_id" json:"product_id"`
	QuantityChange       int                `bson:"quantity_change" json:"quantity_change"`
	Reason               string             `bson:"reason" json:"reason"`
	ManufacturingOrderID string             `bson:"manufacturing_order_id,omitempty" json:"manufacturing_order_id,omitempty"`
	Timestamp            time.Time          `bson:"timestamp" json:"timestamp"`
}

// StockLevel is the derived availability of one product.
type StockLevel struct {
	ProductID    string `bson:"product_id" json:"product_id"`
	CurrentStock int    `bson:"current_stock" json:"current_stock"`
}
