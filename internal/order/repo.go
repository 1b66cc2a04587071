package order

import (
	"context"

	"github.com/google/uuid"
)

type OrderRepo interface {
	// Create persists a new order. For open dine-in orders the store enforces
	// at most one per table and returns ErrOpenOrderExists when a concurrent
	// create won the race.
	Create(ctx context.Context, order *Order) error
	Get(ctx context.Context, id uuid.UUID) (*Order, error)
	List(ctx context.Context, shopID uuid.UUID) ([]*Order, error)
	ListByTable(ctx context.Context, tableID uuid.UUID) ([]*Order, error)
	ListByStatus(ctx context.Context, shopID uuid.UUID, status string) ([]*Order, error)
	// FindOpenByTable returns the open dine-in order bound to the table, or
	// nil when there is none.
	FindOpenByTable(ctx context.Context, tableID uuid.UUID) (*Order, error)
	// CountOpenByTable counts open orders bound to the table, excluding the
	// given order id (uuid.Nil excludes nothing).
	CountOpenByTable(ctx context.Context, tableID, excludeOrderID uuid.UUID) (int, error)
	Save(ctx context.Context, order *Order) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type OrderItemRepo interface {
	Create(ctx context.Context, item *OrderItem) error
	Get(ctx context.Context, id uuid.UUID) (*OrderItem, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*OrderItem, error)
	Save(ctx context.Context, item *OrderItem) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type TicketRepo interface {
	Create(ctx context.Context, ticket *Ticket) error
	Get(ctx context.Context, id uuid.UUID) (*Ticket, error)
	List(ctx context.Context, shopID uuid.UUID) ([]*Ticket, error)
	ListByStatus(ctx context.Context, shopID uuid.UUID, status string) ([]*Ticket, error)
	// FindByOrder returns the order's ticket, or nil when the order never
	// needed the kitchen.
	FindByOrder(ctx context.Context, orderID uuid.UUID) (*Ticket, error)
	// NextTicketNumber hands out the next display number for the shop.
	NextTicketNumber(ctx context.Context, shopID uuid.UUID) (int, error)
	Save(ctx context.Context, ticket *Ticket) error
	Delete(ctx context.Context, id uuid.UUID) error
}
