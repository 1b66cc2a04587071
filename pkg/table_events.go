package pkg

import "time"

const (
	// TableStatusTopic delivers authoritative status changes for tables.
	TableStatusTopic = "tables.status"
	// TablePlacementTopic delivers accepted floor-plan position changes.
	TablePlacementTopic = "tables.placement"

	// EventTableStatusChanged identifies a table status change event payload.
	EventTableStatusChanged = "table.status.changed"
	// EventTablePositionChanged identifies a committed table position payload.
	EventTablePositionChanged = "table.position.changed"
)

// TableStatusEvent captures the minimal information downstream consumers need
// to reason about a table's availability.
type TableStatusEvent struct {
	EventType      string    `json:"event_type"`
	ShopID         string    `json:"shop_id"`
	TableID        string    `json:"table_id"`
	Status         string    `json:"status"`
	PreviousStatus string    `json:"previous_status,omitempty"`
	Reason         string    `json:"reason,omitempty"`
	Source         string    `json:"source,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// TablePositionEvent announces a committed floor-plan position so connected
// canvases can reconcile against the authoritative layout.
type TablePositionEvent struct {
	EventType  string    `json:"event_type"`
	ShopID     string    `json:"shop_id"`
	TableID    string    `json:"table_id"`
	X          float64   `json:"x"`
	Y          float64   `json:"y"`
	Source     string    `json:"source,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
