package order

import (
	"time"

	aqm "github.com/appetiteclub/apt"
	"github.com/google/uuid"
)

const (
	ItemStatusPending   = "pending"
	ItemStatusPreparing = "preparing"
	ItemStatusReady     = "ready"
	ItemStatusServed    = "served"
)

type OrderItem struct {
	ID              uuid.UUID  `json:"id" bson:"_id"`
	OrderID         uuid.UUID  `json:"order_id" bson:"order_id"`
	ProductID       uuid.UUID  `json:"product_id" bson:"product_id"`
	Name            string     `json:"name" bson:"name"`
	Quantity        int        `json:"quantity" bson:"quantity"`
	Price           float64    `json:"price" bson:"price"`
	RequiresKitchen bool       `json:"requires_kitchen" bson:"requires_kitchen"`
	Status          string     `json:"status" bson:"status"`
	Notes           string     `json:"notes,omitempty" bson:"notes,omitempty"`
	ServedAt        *time.Time `json:"served_at,omitempty" bson:"served_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at" bson:"created_at"`
	CreatedBy       string     `json:"created_by" bson:"created_by"`
	UpdatedAt       time.Time  `json:"updated_at" bson:"updated_at"`
	UpdatedBy       string     `json:"updated_by" bson:"updated_by"`
}

func (oi *OrderItem) GetID() uuid.UUID {
	return oi.ID
}

func (oi *OrderItem) ResourceType() string {
	return "order-item"
}

func (oi *OrderItem) SetID(id uuid.UUID) {
	oi.ID = id
}

func NewOrderItem() *OrderItem {
	return &OrderItem{
		ID:     aqm.GenerateNewID(),
		Status: ItemStatusPending,
	}
}

func (oi *OrderItem) EnsureID() {
	if oi.ID == uuid.Nil {
		oi.ID = aqm.GenerateNewID()
	}
}

func (oi *OrderItem) BeforeCreate() {
	oi.EnsureID()
	oi.CreatedAt = time.Now()
	oi.UpdatedAt = time.Now()
}

func (oi *OrderItem) BeforeUpdate() {
	oi.UpdatedAt = time.Now()
}

// Subtotal is the line total for the item.
func (oi *OrderItem) Subtotal() float64 {
	return oi.Price * float64(oi.Quantity)
}

func (oi *OrderItem) MarkAsPreparing() {
	oi.Status = ItemStatusPreparing
	oi.UpdatedAt = time.Now()
}

func (oi *OrderItem) MarkAsReady() {
	oi.Status = ItemStatusReady
	oi.UpdatedAt = time.Now()
}

func (oi *OrderItem) MarkAsServed() {
	now := time.Now()
	oi.Status = ItemStatusServed
	oi.ServedAt = &now
	oi.UpdatedAt = now
}
