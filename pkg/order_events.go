package pkg

import "time"

const (
	// OrdersTopic groups lifecycle events emitted by the order engine.
	OrdersTopic = "orders.lifecycle"
	// KitchenTicketsTopic delivers kitchen ticket creation and progress events.
	KitchenTicketsTopic = "kitchen.tickets"

	EventOrderCreated          = "order.created"
	EventOrderItemsAdded       = "order.items.added"
	EventOrderPaymentCompleted = "order.payment.completed"
	EventOrderCancelled        = "order.cancelled"

	EventKitchenTicketCreated       = "kitchen.ticket.created"
	EventKitchenTicketStatusChanged = "kitchen.ticket.status_changed"
)

// OrderEvent represents an order lifecycle event published to NATS. It is
// consumed by the websocket relay and by reporting consumers.
type OrderEvent struct {
	EventType     string    `json:"event_type"`
	OccurredAt    time.Time `json:"occurred_at"`
	ShopID        string    `json:"shop_id"`
	OrderID       string    `json:"order_id"`
	OrderType     string    `json:"order_type"`
	Status        string    `json:"status"`
	Total         float64   `json:"total"`
	PaymentMethod string    `json:"payment_method,omitempty"`

	// Denormalized data for display
	TableID     string `json:"table_id,omitempty"`
	TableNumber string `json:"table_number,omitempty"`
	ItemCount   int    `json:"item_count,omitempty"`
}

// TicketEvent represents a kitchen ticket event published to NATS.
type TicketEvent struct {
	EventType      string    `json:"event_type"`
	OccurredAt     time.Time `json:"occurred_at"`
	ShopID         string    `json:"shop_id"`
	TicketID       string    `json:"ticket_id"`
	TicketNumber   int       `json:"ticket_number"`
	OrderID        string    `json:"order_id"`
	Status         string    `json:"status"`
	PreviousStatus string    `json:"previous_status,omitempty"`
	Priority       string    `json:"priority,omitempty"`

	TableNumber string `json:"table_number,omitempty"`
}
