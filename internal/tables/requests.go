package tables

import (
	"time"

	"github.com/google/uuid"
)

type TableCreateRequest struct {
	Number   string    `json:"number"`
	Capacity int       `json:"capacity"`
	Section  string    `json:"section,omitempty"`
	Position *Position `json:"position,omitempty"`
}

type TableUpdateRequest struct {
	Number   string `json:"number,omitempty"`
	Capacity int    `json:"capacity,omitempty"`
	Section  string `json:"section,omitempty"`
	Status   string `json:"status,omitempty"`
}

// TablePositionRequest carries a drag-and-drop target. Bounds are optional;
// the default canvas applies when omitted.
type TablePositionRequest struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Bounds *Bounds `json:"bounds,omitempty"`
}

type ReservationCreateRequest struct {
	TableID             *uuid.UUID `json:"table_id,omitempty"`
	CustomerName        string     `json:"customer_name"`
	CustomerPhone       string     `json:"customer_phone"`
	PartySize           int        `json:"party_size"`
	ReservationTime     time.Time  `json:"reservation_time"`
	SpecialInstructions string     `json:"special_instructions,omitempty"`
	// Waitlist marks a walk-in; the reservation time defaults to arrival.
	Waitlist bool `json:"waitlist,omitempty"`
}

type ReservationUpdateRequest struct {
	TableID             *uuid.UUID `json:"table_id,omitempty"`
	CustomerName        string     `json:"customer_name,omitempty"`
	CustomerPhone       string     `json:"customer_phone,omitempty"`
	PartySize           int        `json:"party_size,omitempty"`
	ReservationTime     *time.Time `json:"reservation_time,omitempty"`
	Status              string     `json:"status,omitempty"`
	SpecialInstructions string     `json:"special_instructions,omitempty"`
}

type SuggestionRequest struct {
	PartySize        int        `json:"party_size"`
	ReservationTime  *time.Time `json:"reservation_time,omitempty"`
	PreferredSection string     `json:"preferred_section,omitempty"`
}
