package order

import "github.com/google/uuid"

type OrderCreateRequest struct {
	OrderType  string             `json:"order_type"`
	TableID    *uuid.UUID         `json:"table_id,omitempty"`
	GuestCount int                `json:"guest_count,omitempty"`
	Notes      string             `json:"notes,omitempty"`
	Priority   string             `json:"priority,omitempty"`
	Items      []OrderItemRequest `json:"items"`
}

type OrderItemRequest struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Notes     string    `json:"notes,omitempty"`
}

type AddItemsRequest struct {
	Items []OrderItemRequest `json:"items"`
}

type CompletePaymentRequest struct {
	PaymentMethod string `json:"payment_method"`
}

type TicketStatusRequest struct {
	Status string `json:"status"`
}
