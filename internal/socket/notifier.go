package socket

import "mrp-api-server/internal/service"

// Notifier adapts the hub to the service layer's event sink.
type Notifier struct {
	Hub *Hub
}

func (n Notifier) Publish(topic string, ev service.Event) {
	n.Hub.Publish(topic, ev)
}
