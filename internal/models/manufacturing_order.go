package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MOStatus is the closed set of manufacturing-order states.
type MOStatus string

const (
	MOStatusPlanned    MOStatus = "planned"
	MOStatusInProgress MOStatus = "in_progress"
	MOStatusDone       MOStatus = "done"
	MOStatusCancelled  MOStatus = "cancelled"
)

// Valid reports whether s is a known manufacturing-order status.
func (s MOStatus) Valid() bool {
	switch s {
	case MOStatusPlanned, MOStatusInProgress, MOStatusDone, MOStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether s permits no further transitions.
func (s MOStatus) Terminal() bool {
	return s == MOStatusDone || s == MOStatusCancelled
}

type ManufacturingOrder struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProductID         string             `bson:"product_id" json:"product_id"`
	QuantityToProduce int                `bson:"quantity_to_produce" json:"quantity_to_produce"`
	Status            MOStatus           `bson:"status" json:"status"`
	BOMSnapshot       BOMSnapshot        `bson:"bom_snapshot" json:"bom_snapshot"`
	IsStalled         bool               `bson:"is_stalled" json:"is_stalled"`
	CreatedAt         time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time          `bson:"updated_at" json:"updated_at"`
	CompletedAt       *time.Time         `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
}
