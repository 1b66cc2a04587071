package tables

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type TableRepo interface {
	Create(ctx context.Context, table *Table) error
	Get(ctx context.Context, id uuid.UUID) (*Table, error)
	GetByNumber(ctx context.Context, shopID uuid.UUID, number string) (*Table, error)
	List(ctx context.Context, shopID uuid.UUID) ([]*Table, error)
	ListByStatus(ctx context.Context, shopID uuid.UUID, status string) ([]*Table, error)
	Save(ctx context.Context, table *Table) error
	// SaveStatusIf updates the table status only when the stored status still
	// matches expected. It reports whether the update was applied.
	SaveStatusIf(ctx context.Context, id uuid.UUID, expected, next string) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ReservationRepo interface {
	Create(ctx context.Context, reservation *Reservation) error
	Get(ctx context.Context, id uuid.UUID) (*Reservation, error)
	List(ctx context.Context, shopID uuid.UUID) ([]*Reservation, error)
	ListByStatus(ctx context.Context, shopID uuid.UUID, status string) ([]*Reservation, error)
	ListByTable(ctx context.Context, tableID uuid.UUID) ([]*Reservation, error)
	// ListByWindow returns reservations for the shop whose reserved time falls
	// inside [from, to], both ends inclusive to match the conflict scan's
	// inclusive window. Used by the assignment optimizer.
	ListByWindow(ctx context.Context, shopID uuid.UUID, from, to time.Time) ([]*Reservation, error)
	Save(ctx context.Context, reservation *Reservation) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// OrderCounter is the state machine's read-side view of the order store. The
// concrete implementation lives in the mongo package; the indirection keeps
// table logic free of order internals.
type OrderCounter interface {
	// CountOpenByTable counts non-terminal orders bound to the table,
	// excluding the given order id (uuid.Nil excludes nothing).
	CountOpenByTable(ctx context.Context, tableID, excludeOrderID uuid.UUID) (int, error)
}
