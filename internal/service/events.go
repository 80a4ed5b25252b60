package service

import "time"

// Websocket topics the services publish on.
const (
	TopicMOStatus = "mo_status"
	TopicWOStatus = "wo_status"
)

// Event is the payload broadcast to websocket clients when an order changes
// state. PreviousStatus is set only for transitions, not for creations.
type Event struct {
	Event          string    `json:"event"`
	MOID           string    `json:"mo_id,omitempty"`
	WorkOrderID    string    `json:"work_order_id,omitempty"`
	PreviousStatus string    `json:"previous_status,omitempty"`
	Status         string    `json:"status,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

const (
	EventMOStarted     = "manufacturing_order_started"
	EventMOCompleted   = "manufacturing_order_completed"
	EventMOCancelled   = "manufacturing_order_cancelled"
	EventMOStalled     = "manufacturing_order_stalled"
	EventWOAutoStarted = "work_order_auto_started"
	EventWOStatus      = "work_order_status_changed"
)

// Notifier fans service events out to connected clients. Implementations must
// not block the caller; delivery is best-effort.
type Notifier interface {
	Publish(topic string, ev Event)
}

// NopNotifier discards events. Used when no hub is wired, e.g. in tests.
type NopNotifier struct{}

func (NopNotifier) Publish(string, Event) {}
