package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BOMComponent is one raw-material line of a bill of materials.
type BOMComponent struct {
	ProductID string `bson:"productId" json:"productId"`
	Quantity  int    `bson:"quantity" json:"quantity"`
}

// BOMOperation is one sequenced manufacturing step. Duration is in minutes.
type BOMOperation struct {
	Name     string `bson:"name" json:"name"`
	Duration int    `bson:"duration" json:"duration"`
}

type BillOfMaterials struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FinishedProductID string             `bson:"finishedProductId" json:"finishedProductId"`
	Components        []BOMComponent     `bson:"components" json:"components"`
	Operations        []BOMOperation     `bson:"operations" json:"operations"`
	Recipe            string             `bson:"recipe,omitempty" json:"recipe,omitempty"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// BOMSnapshot is the copy of a BOM frozen into a manufacturing order at
// creation time. The live BOM is never consulted again after that point.
type BOMSnapshot struct {
	ProductID  string         `bson:"product_id" json:"product_id"`
	Components []BOMComponent `bson:"components" json:"components"`
	Operations []BOMOperation `bson:"operations" json:"operations"`
}
