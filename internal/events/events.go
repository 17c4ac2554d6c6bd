package events

import (
	"time"

	"github.com/alfajarsadiq/admincontrol/pkg/models"
)

// One topic per lifecycle fact. Messages are keyed by order id so all events
// for an order land on the same partition, in order.
const (
	OrderCreatedTopic    = "order.created"
	OrderDispatchedTopic = "order.dispatched"
	OrderDeliveredTopic  = "order.delivered"
	OrderDeletedTopic    = "order.deleted"
)

type OrderCreatedEvent struct {
	OrderID      string    `json:"order_id"`
	Salesperson  string    `json:"salesperson"`
	CompanyName  string    `json:"company_name"`
	DeliveryDate string    `json:"delivery_date"`
	ItemCount    int       `json:"item_count"`
	CreatedAt    time.Time `json:"created_at"`
	EventTime    time.Time `json:"event_time"`
}

type StatusChangedEvent struct {
	OrderID     string        `json:"order_id"`
	From        models.Status `json:"from"`
	To          models.Status `json:"to"`
	Salesperson string        `json:"salesperson"`
	DriverName  string        `json:"driver_name,omitempty"`
	VehicleName string        `json:"vehicle_name,omitempty"`
	EventTime   time.Time     `json:"event_time"`
}

type OrderDeletedEvent struct {
	OrderID   string    `json:"order_id"`
	EventTime time.Time `json:"event_time"`
}

// statusTopic maps a reached status to its topic.
func statusTopic(to models.Status) string {
	switch to {
	case models.StatusDispatched:
		return OrderDispatchedTopic
	case models.StatusDelivered:
		return OrderDeliveredTopic
	}
	return ""
}
