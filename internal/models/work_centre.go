package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkCentre is a station capable of performing one named operation.
// BOM operations are matched to work centres by exact name equality on
// the Operation field.
type WorkCentre struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Operation   string             `bson:"operation" json:"operation"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	CostPerHour float64            `bson:"cost_per_hour" json:"cost_per_hour"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
