package tables

import (
	"context"
	"fmt"

	aqm "github.com/appetiteclub/apt"
	"github.com/google/uuid"
)

// legalTransitions enumerates the allowed status edges for a table. Direct
// status updates (staff PATCHes) are validated against this table; the bind
// and release paths below drive the same edges programmatically.
var legalTransitions = map[string][]string{
	StatusAvailable: {StatusOccupied, StatusReserved},
	StatusOccupied:  {StatusCleaning, StatusAvailable},
	StatusReserved:  {StatusOccupied, StatusAvailable},
	StatusCleaning:  {StatusAvailable},
}

// CanTransition reports whether moving a table from one status to another is a
// legal edge. Same-status moves are allowed as no-ops.
func CanTransition(from, to string) bool {
	if from == to {
		return true
	}
	for _, next := range legalTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// StateMachine is the single writer of table status. Order lifecycle and
// reservation updates route through it; nothing else mutates Table.Status.
type StateMachine struct {
	tableRepo TableRepo
	orders    OrderCounter
	logger    aqm.Logger
}

func NewStateMachine(tableRepo TableRepo, orders OrderCounter, logger aqm.Logger) *StateMachine {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &StateMachine{
		tableRepo: tableRepo,
		orders:    orders,
		logger:    logger,
	}
}

// ApplyOrderBound marks the table occupied because a non-terminal order now
// references it. A missing table is a logged no-op: tables can be deleted out
// of band and that must not fail the order operation.
func (m *StateMachine) ApplyOrderBound(ctx context.Context, tableID uuid.UUID) error {
	table, err := m.tableRepo.Get(ctx, tableID)
	if err != nil {
		return fmt.Errorf("cannot load table %s: %w", tableID, err)
	}
	if table == nil {
		m.logger.Info("order bound to missing table, skipping status update", "table_id", tableID.String())
		return nil
	}
	if table.Status == StatusOccupied {
		return nil
	}

	applied, err := m.tableRepo.SaveStatusIf(ctx, tableID, table.Status, StatusOccupied)
	if err != nil {
		return fmt.Errorf("cannot occupy table %s: %w", tableID, err)
	}
	if !applied {
		// Raced with another writer; the table is already transitioning.
		// Re-read and settle on occupied if something else won with a
		// different status.
		current, err := m.tableRepo.Get(ctx, tableID)
		if err != nil || current == nil || current.Status == StatusOccupied {
			return err
		}
		_, err = m.tableRepo.SaveStatusIf(ctx, tableID, current.Status, StatusOccupied)
		return err
	}
	return nil
}

// ApplyOrderReleased recomputes the table status after an order reaches a
// terminal state. The releasing order is excluded from the count so the
// decision does not depend on whether its own status write is visible yet.
// If any other open order still references the table it stays occupied;
// completing one of several tickets must not prematurely free the table.
func (m *StateMachine) ApplyOrderReleased(ctx context.Context, tableID, releasedOrderID uuid.UUID) error {
	table, err := m.tableRepo.Get(ctx, tableID)
	if err != nil {
		return fmt.Errorf("cannot load table %s: %w", tableID, err)
	}
	if table == nil {
		m.logger.Info("order released for missing table, skipping status update", "table_id", tableID.String())
		return nil
	}

	remaining, err := m.orders.CountOpenByTable(ctx, tableID, releasedOrderID)
	if err != nil {
		return fmt.Errorf("cannot count open orders for table %s: %w", tableID, err)
	}
	if remaining > 0 {
		return nil
	}

	if table.Status != StatusOccupied {
		return nil
	}

	// Conditional on the status we read: a concurrent release that already
	// freed the table, or a concurrent bind that re-occupied it, makes this
	// a no-op instead of a lost update.
	if _, err := m.tableRepo.SaveStatusIf(ctx, tableID, StatusOccupied, StatusAvailable); err != nil {
		return fmt.Errorf("cannot release table %s: %w", tableID, err)
	}
	return nil
}

// ApplyPartySeated occupies a table when a reservation or waitlist party sits
// down. Same edge as an order binding; the order that follows finds the table
// already occupied.
func (m *StateMachine) ApplyPartySeated(ctx context.Context, tableID uuid.UUID) error {
	return m.ApplyOrderBound(ctx, tableID)
}

// ApplyReservationHold moves an available table to reserved.
func (m *StateMachine) ApplyReservationHold(ctx context.Context, tableID uuid.UUID) error {
	table, err := m.tableRepo.Get(ctx, tableID)
	if err != nil {
		return fmt.Errorf("cannot load table %s: %w", tableID, err)
	}
	if table == nil {
		m.logger.Info("reservation holds missing table, skipping status update", "table_id", tableID.String())
		return nil
	}
	if table.Status != StatusAvailable {
		return fmt.Errorf("table %s cannot be reserved while %s", table.Number, table.Status)
	}
	if _, err := m.tableRepo.SaveStatusIf(ctx, tableID, StatusAvailable, StatusReserved); err != nil {
		return fmt.Errorf("cannot reserve table %s: %w", tableID, err)
	}
	return nil
}

// ApplyReservationReleased frees a reserved table after a cancellation or
// no-show. Only the reserved status is touched; an occupied table keeps its
// status and the release falls to the order path.
func (m *StateMachine) ApplyReservationReleased(ctx context.Context, tableID uuid.UUID) error {
	table, err := m.tableRepo.Get(ctx, tableID)
	if err != nil {
		return fmt.Errorf("cannot load table %s: %w", tableID, err)
	}
	if table == nil {
		m.logger.Info("reservation released for missing table, skipping status update", "table_id", tableID.String())
		return nil
	}
	if table.Status != StatusReserved {
		return nil
	}
	if _, err := m.tableRepo.SaveStatusIf(ctx, tableID, StatusReserved, StatusAvailable); err != nil {
		return fmt.Errorf("cannot free reserved table %s: %w", tableID, err)
	}
	return nil
}
