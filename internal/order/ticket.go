package order

import (
	"time"

	aqm "github.com/appetiteclub/apt"
	"github.com/google/uuid"
)

const (
	TicketStatusNew       = "new"
	TicketStatusPreparing = "preparing"
	TicketStatusReady     = "ready"
	TicketStatusServed    = "served"
)

const (
	TicketPriorityNormal = "normal"
	TicketPriorityRush   = "rush"
)

// ticketStatusRank orders the ticket statuses; transitions only move forward.
var ticketStatusRank = map[string]int{
	TicketStatusNew:       0,
	TicketStatusPreparing: 1,
	TicketStatusReady:     2,
	TicketStatusServed:    3,
}

// Ticket is the kitchen's work unit for an order. An order has at most one;
// items added to the order later fall under the same ticket.
type Ticket struct {
	ID                  uuid.UUID  `json:"id" bson:"_id"`
	ShopID              uuid.UUID  `json:"shop_id" bson:"shop_id"`
	OrderID             uuid.UUID  `json:"order_id" bson:"order_id"`
	TicketNumber        int        `json:"ticket_number" bson:"ticket_number"`
	Status              string     `json:"status" bson:"status"`
	Priority            string     `json:"priority" bson:"priority"`
	EstimatedCompletion *time.Time `json:"estimated_completion,omitempty" bson:"estimated_completion,omitempty"`
	CompletedAt         *time.Time `json:"completed_at,omitempty" bson:"completed_at,omitempty"`

	// Denormalized for kitchen display.
	TableNumber string `json:"table_number,omitempty" bson:"table_number,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	CreatedBy string    `json:"created_by" bson:"created_by"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
	UpdatedBy string    `json:"updated_by" bson:"updated_by"`
}

func (t *Ticket) GetID() uuid.UUID {
	return t.ID
}

func (t *Ticket) ResourceType() string {
	return "kitchen-ticket"
}

func (t *Ticket) SetID(id uuid.UUID) {
	t.ID = id
}

func NewTicket() *Ticket {
	return &Ticket{
		ID:       aqm.GenerateNewID(),
		Status:   TicketStatusNew,
		Priority: TicketPriorityNormal,
	}
}

func (t *Ticket) EnsureID() {
	if t.ID == uuid.Nil {
		t.ID = aqm.GenerateNewID()
	}
}

func (t *Ticket) BeforeCreate() {
	t.EnsureID()
	t.CreatedAt = time.Now()
	t.UpdatedAt = time.Now()
}

func (t *Ticket) BeforeUpdate() {
	t.UpdatedAt = time.Now()
}

// CanAdvanceTo reports whether the ticket may move to the given status.
// Kitchen progress never runs backwards.
func (t *Ticket) CanAdvanceTo(status string) bool {
	next, ok := ticketStatusRank[status]
	if !ok {
		return false
	}
	return next > ticketStatusRank[t.Status]
}

func (t *Ticket) MarkAsPreparing() {
	t.Status = TicketStatusPreparing
	t.UpdatedAt = time.Now()
}

func (t *Ticket) MarkAsReady() {
	t.Status = TicketStatusReady
	t.UpdatedAt = time.Now()
}

func (t *Ticket) MarkAsServed() {
	now := time.Now()
	t.Status = TicketStatusServed
	t.CompletedAt = &now
	t.UpdatedAt = now
}
