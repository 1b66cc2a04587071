package tables

import (
	"time"

	aqm "github.com/appetiteclub/apt"
	"github.com/google/uuid"
)

const (
	ReservationWaiting   = "waiting"
	ReservationNotified  = "notified"
	ReservationSeated    = "seated"
	ReservationCancelled = "cancelled"
	ReservationNoShow    = "no_show"
)

// Reservation covers booked parties and walk-ins alike. A waitlist entry is a
// reservation with status "waiting" whose ReservedFor holds the arrival time.
type Reservation struct {
	ID           uuid.UUID  `json:"id" bson:"_id"`
	ShopID       uuid.UUID  `json:"shop_id" bson:"shop_id"`
	TableID      *uuid.UUID `json:"table_id,omitempty" bson:"table_id,omitempty"`
	CustomerName string     `json:"customer_name" bson:"customer_name"`
	CustomerPhone string    `json:"customer_phone" bson:"customer_phone"`
	PartySize    int        `json:"party_size" bson:"party_size"`
	ReservedFor  time.Time  `json:"reservation_time" bson:"reserved_for"`
	Status       string     `json:"status" bson:"status"`
	SpecialInstructions string `json:"special_instructions,omitempty" bson:"special_instructions,omitempty"`
	CreatedAt    time.Time  `json:"created_at" bson:"created_at"`
	CreatedBy    string     `json:"created_by" bson:"created_by"`
	UpdatedAt    time.Time  `json:"updated_at" bson:"updated_at"`
	UpdatedBy    string     `json:"updated_by" bson:"updated_by"`
}

func (r *Reservation) GetID() uuid.UUID {
	return r.ID
}

func (r *Reservation) ResourceType() string {
	return "reservation"
}

func (r *Reservation) SetID(id uuid.UUID) {
	r.ID = id
}

func NewReservation() *Reservation {
	return &Reservation{
		ID:     aqm.GenerateNewID(),
		Status: ReservationWaiting,
	}
}

func (r *Reservation) EnsureID() {
	if r.ID == uuid.Nil {
		r.ID = aqm.GenerateNewID()
	}
}

func (r *Reservation) BeforeCreate() {
	r.EnsureID()
	r.CreatedAt = time.Now()
	r.UpdatedAt = time.Now()
}

func (r *Reservation) BeforeUpdate() {
	r.UpdatedAt = time.Now()
}

// Terminal reports whether the reservation has reached an end state.
func (r *Reservation) Terminal() bool {
	switch r.Status {
	case ReservationSeated, ReservationCancelled, ReservationNoShow:
		return true
	}
	return false
}

func (r *Reservation) MarkAsNotified() {
	r.Status = ReservationNotified
	r.UpdatedAt = time.Now()
}

func (r *Reservation) MarkAsSeated() {
	r.Status = ReservationSeated
	r.UpdatedAt = time.Now()
}

func (r *Reservation) Cancel() {
	r.Status = ReservationCancelled
	r.UpdatedAt = time.Now()
}

func (r *Reservation) MarkAsNoShow() {
	r.Status = ReservationNoShow
	r.UpdatedAt = time.Now()
}

// ElapsedWait returns how long a waitlisted party has been waiting as of now.
// It is zero for reservations that are not on the waitlist.
func (r *Reservation) ElapsedWait(now time.Time) time.Duration {
	if r.Status != ReservationWaiting && r.Status != ReservationNotified {
		return 0
	}
	if r.ReservedFor.After(now) {
		return 0
	}
	return now.Sub(r.ReservedFor)
}
