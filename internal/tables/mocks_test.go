package tables

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MockPublisher is a mock implementation of events.Publisher for testing
type MockPublisher struct {
	mu          sync.Mutex
	Published   []PublishedEvent
	PublishFunc func(ctx context.Context, topic string, msg []byte) error
}

type PublishedEvent struct {
	Topic string
	Msg   []byte
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, msg []byte) error {
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, topic, msg)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Published = append(m.Published, PublishedEvent{Topic: topic, Msg: msg})
	return nil
}

// MockTableRepo is a mock implementation of TableRepo for testing
type MockTableRepo struct {
	mu     sync.RWMutex
	tables map[uuid.UUID]*Table

	CreateFunc       func(ctx context.Context, table *Table) error
	GetFunc          func(ctx context.Context, id uuid.UUID) (*Table, error)
	SaveFunc         func(ctx context.Context, table *Table) error
	SaveStatusIfFunc func(ctx context.Context, id uuid.UUID, expected, next string) (bool, error)
	DeleteFunc       func(ctx context.Context, id uuid.UUID) error
}

func NewMockTableRepo() *MockTableRepo {
	return &MockTableRepo{
		tables: make(map[uuid.UUID]*Table),
	}
}

func (m *MockTableRepo) Create(ctx context.Context, table *Table) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, table)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[table.ID] = table
	return nil
}

func (m *MockTableRepo) Get(ctx context.Context, id uuid.UUID) (*Table, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	table, ok := m.tables[id]
	if !ok {
		return nil, fmt.Errorf("table not found")
	}
	return table, nil
}

func (m *MockTableRepo) GetByNumber(ctx context.Context, shopID uuid.UUID, number string) (*Table, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.tables {
		if t.ShopID == shopID && t.Number == number {
			return t, nil
		}
	}
	return nil, fmt.Errorf("table not found")
}

func (m *MockTableRepo) List(ctx context.Context, shopID uuid.UUID) ([]*Table, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*Table
	for _, t := range m.tables {
		if t.ShopID == shopID {
			result = append(result, t)
		}
	}
	return result, nil
}

func (m *MockTableRepo) ListByStatus(ctx context.Context, shopID uuid.UUID, status string) ([]*Table, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*Table
	for _, t := range m.tables {
		if t.ShopID == shopID && t.Status == status {
			result = append(result, t)
		}
	}
	return result, nil
}

func (m *MockTableRepo) Save(ctx context.Context, table *Table) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, table)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[table.ID] = table
	return nil
}

func (m *MockTableRepo) SaveStatusIf(ctx context.Context, id uuid.UUID, expected, next string) (bool, error) {
	if m.SaveStatusIfFunc != nil {
		return m.SaveStatusIfFunc(ctx, id, expected, next)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	table, ok := m.tables[id]
	if !ok || table.Status != expected {
		return false, nil
	}
	table.Status = next
	table.UpdatedAt = time.Now()
	return true, nil
}

func (m *MockTableRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tables, id)
	return nil
}

// MockReservationRepo is a mock implementation of ReservationRepo for testing
type MockReservationRepo struct {
	mu           sync.RWMutex
	reservations map[uuid.UUID]*Reservation

	CreateFunc func(ctx context.Context, reservation *Reservation) error
	GetFunc    func(ctx context.Context, id uuid.UUID) (*Reservation, error)
	SaveFunc   func(ctx context.Context, reservation *Reservation) error
	DeleteFunc func(ctx context.Context, id uuid.UUID) error
}

func NewMockReservationRepo() *MockReservationRepo {
	return &MockReservationRepo{
		reservations: make(map[uuid.UUID]*Reservation),
	}
}

func (m *MockReservationRepo) Create(ctx context.Context, reservation *Reservation) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, reservation)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reservations[reservation.ID] = reservation
	return nil
}

func (m *MockReservationRepo) Get(ctx context.Context, id uuid.UUID) (*Reservation, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	reservation, ok := m.reservations[id]
	if !ok {
		return nil, fmt.Errorf("reservation not found")
	}
	return reservation, nil
}

func (m *MockReservationRepo) List(ctx context.Context, shopID uuid.UUID) ([]*Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*Reservation
	for _, r := range m.reservations {
		if r.ShopID == shopID {
			result = append(result, r)
		}
	}
	return result, nil
}

func (m *MockReservationRepo) ListByStatus(ctx context.Context, shopID uuid.UUID, status string) ([]*Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*Reservation
	for _, r := range m.reservations {
		if r.ShopID == shopID && r.Status == status {
			result = append(result, r)
		}
	}
	return result, nil
}

func (m *MockReservationRepo) ListByTable(ctx context.Context, tableID uuid.UUID) ([]*Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*Reservation
	for _, r := range m.reservations {
		if r.TableID != nil && *r.TableID == tableID {
			result = append(result, r)
		}
	}
	return result, nil
}

func (m *MockReservationRepo) ListByWindow(ctx context.Context, shopID uuid.UUID, from, to time.Time) ([]*Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*Reservation
	for _, r := range m.reservations {
		if r.ShopID != shopID {
			continue
		}
		if r.ReservedFor.Before(from) || r.ReservedFor.After(to) {
			continue
		}
		result = append(result, r)
	}
	return result, nil
}

func (m *MockReservationRepo) Save(ctx context.Context, reservation *Reservation) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, reservation)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reservations[reservation.ID] = reservation
	return nil
}

func (m *MockReservationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.reservations, id)
	return nil
}

// MockOrderCounter is a mock implementation of OrderCounter for testing
type MockOrderCounter struct {
	CountOpenByTableFunc func(ctx context.Context, tableID, excludeOrderID uuid.UUID) (int, error)
}

func NewMockOrderCounter() *MockOrderCounter {
	return &MockOrderCounter{}
}

func (m *MockOrderCounter) CountOpenByTable(ctx context.Context, tableID, excludeOrderID uuid.UUID) (int, error) {
	if m.CountOpenByTableFunc != nil {
		return m.CountOpenByTableFunc(ctx, tableID, excludeOrderID)
	}
	return 0, nil
}
