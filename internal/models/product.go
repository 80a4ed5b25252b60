package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductType is the closed set of product categories the planner knows about.
type ProductType string

const (
	ProductTypeRawMaterial  ProductType = "RawMaterial"
	ProductTypeFinishedGood ProductType = "FinishedGood"
)

// Valid reports whether t is one of the known product types.
func (t ProductType) Valid() bool {
	return t == ProductTypeRawMaterial || t == ProductTypeFinishedGood
}

type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"` // unique, case-insensitive
	Type        ProductType        `bson:"type" json:"type"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
