package order

import (
	"testing"
)

func TestTicketCanAdvanceTo(t *testing.T) {
	tests := []struct {
		name     string
		current  string
		next     string
		expected bool
	}{
		{"newToPreparing", TicketStatusNew, TicketStatusPreparing, true},
		{"newToServedSkipsAhead", TicketStatusNew, TicketStatusServed, true},
		{"preparingToReady", TicketStatusPreparing, TicketStatusReady, true},
		{"readyToServed", TicketStatusReady, TicketStatusServed, true},
		{"readyBackToPreparing", TicketStatusReady, TicketStatusPreparing, false},
		{"servedBackToReady", TicketStatusServed, TicketStatusReady, false},
		{"preparingToPreparing", TicketStatusPreparing, TicketStatusPreparing, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ticket := NewTicket()
			ticket.Status = tt.current
			if got := ticket.CanAdvanceTo(tt.next); got != tt.expected {
				t.Errorf("CanAdvanceTo(%q) from %q = %v, want %v", tt.next, tt.current, got, tt.expected)
			}
		})
	}
}

func TestTicketMarkAsServed(t *testing.T) {
	ticket := NewTicket()
	ticket.BeforeCreate()

	ticket.MarkAsServed()

	if ticket.Status != TicketStatusServed {
		t.Errorf("status = %q, want %q", ticket.Status, TicketStatusServed)
	}
	if ticket.CompletedAt == nil {
		t.Error("served ticket should record completion time")
	}
}
