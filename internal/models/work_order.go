package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WOStatus is the closed set of work-order states. "processing" is the
// claim marker the automation sweeper uses while it simulates work.
type WOStatus string

const (
	WOStatusPending    WOStatus = "pending"
	WOStatusInProgress WOStatus = "in_progress"
	WOStatusProcessing WOStatus = "processing"
	WOStatusPaused     WOStatus = "paused"
	WOStatusDone       WOStatus = "done"
)

// Valid reports whether s is a known work-order status.
func (s WOStatus) Valid() bool {
	switch s {
	case WOStatusPending, WOStatusInProgress, WOStatusProcessing, WOStatusPaused, WOStatusDone:
		return true
	}
	return false
}

// WorkOrder is one sequenced operation step within a manufacturing order.
// The batch of work orders for an MO is created once, mirroring the BOM
// snapshot's operations; sequence numbers are never reassigned.
type WorkOrder struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MOID          string             `bson:"mo_id" json:"mo_id"`
	OperationName string             `bson:"operation_name" json:"operation_name"`
	WorkCentreID  string             `bson:"work_center_id" json:"work_center_id"`
	Sequence      int                `bson:"sequence" json:"sequence"`
	Status        WOStatus           `bson:"status" json:"status"`
}
