package tables

import (
	"time"

	aqm "github.com/appetiteclub/apt"
	"github.com/google/uuid"
)

const (
	StatusAvailable = "available"
	StatusOccupied  = "occupied"
	StatusReserved  = "reserved"
	StatusCleaning  = "cleaning"
)

type Table struct {
	ID       uuid.UUID `json:"id" bson:"_id"`
	ShopID   uuid.UUID `json:"shop_id" bson:"shop_id"`
	Number   string    `json:"number" bson:"number"`
	Capacity int       `json:"capacity" bson:"capacity"`
	Section  string    `json:"section,omitempty" bson:"section,omitempty"`
	Status   string    `json:"status" bson:"status"`
	// Position is nil until the table has been explicitly placed; callers fall
	// back to the floor plan's default grid slot.
	Position  *Position `json:"position,omitempty" bson:"position,omitempty"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	CreatedBy string    `json:"created_by" bson:"created_by"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
	UpdatedBy string    `json:"updated_by" bson:"updated_by"`
}

type Position struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

func (t *Table) GetID() uuid.UUID {
	return t.ID
}

func (t *Table) ResourceType() string {
	return "table"
}

func (t *Table) SetID(id uuid.UUID) {
	t.ID = id
}

func NewTable() *Table {
	return &Table{
		ID:     aqm.GenerateNewID(),
		Status: StatusAvailable,
	}
}

func (t *Table) EnsureID() {
	if t.ID == uuid.Nil {
		t.ID = aqm.GenerateNewID()
	}
}

func (t *Table) BeforeCreate() {
	t.EnsureID()
	t.CreatedAt = time.Now()
	t.UpdatedAt = time.Now()
}

func (t *Table) BeforeUpdate() {
	t.UpdatedAt = time.Now()
}

func (t *Table) Place(x, y float64) {
	t.Position = &Position{X: x, Y: y}
	t.UpdatedAt = time.Now()
}
