package order

import (
	"time"

	aqm "github.com/appetiteclub/apt"
	"github.com/google/uuid"
)

const (
	TypeDineIn   = "dine_in"
	TypeTakeout  = "takeout"
	TypeDelivery = "delivery"
)

const (
	StatusPending   = "pending"
	StatusPreparing = "preparing"
	StatusReady     = "ready"
	StatusServed    = "served"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

type Order struct {
	ID            uuid.UUID  `json:"id" bson:"_id"`
	ShopID        uuid.UUID  `json:"shop_id" bson:"shop_id"`
	TableID       *uuid.UUID `json:"table_id,omitempty" bson:"table_id,omitempty"`
	TableNumber   string     `json:"table_number,omitempty" bson:"table_number,omitempty"`
	OrderType     string     `json:"order_type" bson:"order_type"`
	Status        string     `json:"status" bson:"status"`
	// Open mirrors the non-terminal statuses so the store can enforce one open
	// dine-in order per table with a partial unique index. Keep it in sync
	// through the status setters.
	Open          bool       `json:"open" bson:"open"`
	GuestCount    int        `json:"guest_count,omitempty" bson:"guest_count,omitempty"`
	Total         float64    `json:"total" bson:"total"`
	PaymentMethod string     `json:"payment_method,omitempty" bson:"payment_method,omitempty"`
	Notes         string     `json:"notes,omitempty" bson:"notes,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty" bson:"completed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at" bson:"created_at"`
	CreatedBy     string     `json:"created_by" bson:"created_by"`
	UpdatedAt     time.Time  `json:"updated_at" bson:"updated_at"`
	UpdatedBy     string     `json:"updated_by" bson:"updated_by"`
}

func (o *Order) GetID() uuid.UUID {
	return o.ID
}

func (o *Order) ResourceType() string {
	return "order"
}

func (o *Order) SetID(id uuid.UUID) {
	o.ID = id
}

func NewOrder() *Order {
	return &Order{
		ID:        aqm.GenerateNewID(),
		OrderType: TypeDineIn,
		Status:    StatusPending,
		Open:      true,
	}
}

func (o *Order) EnsureID() {
	if o.ID == uuid.Nil {
		o.ID = aqm.GenerateNewID()
	}
}

func (o *Order) BeforeCreate() {
	o.EnsureID()
	o.CreatedAt = time.Now()
	o.UpdatedAt = time.Now()
}

func (o *Order) BeforeUpdate() {
	o.UpdatedAt = time.Now()
}

// Terminal reports whether the order can no longer change.
func (o *Order) Terminal() bool {
	return o.Status == StatusCompleted || o.Status == StatusCancelled
}

// DineIn reports whether the order is bound to a table.
func (o *Order) DineIn() bool {
	return o.OrderType == TypeDineIn
}

func (o *Order) MarkAsPreparing() {
	o.Status = StatusPreparing
	o.Open = true
	o.UpdatedAt = time.Now()
}

func (o *Order) MarkAsReady() {
	o.Status = StatusReady
	o.Open = true
	o.UpdatedAt = time.Now()
}

func (o *Order) MarkAsServed() {
	o.Status = StatusServed
	o.Open = true
	o.UpdatedAt = time.Now()
}

func (o *Order) Complete(paymentMethod string) {
	now := time.Now()
	o.Status = StatusCompleted
	o.Open = false
	o.PaymentMethod = paymentMethod
	o.CompletedAt = &now
	o.UpdatedAt = now
}

func (o *Order) Cancel() {
	o.Status = StatusCancelled
	o.Open = false
	o.UpdatedAt = time.Now()
}
