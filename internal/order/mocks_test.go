package order

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/maitreclub/maitre/internal/tables"
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

// MockOrderRepo is a mock implementation of OrderRepo for testing
type MockOrderRepo struct {
	mu     sync.RWMutex
	orders map[uuid.UUID]*Order

	CreateFunc func(ctx context.Context, order *Order) error
	GetFunc    func(ctx context.Context, id uuid.UUID) (*Order, error)
	SaveFunc   func(ctx context.Context, order *Order) error
	DeleteFunc func(ctx context.Context, id uuid.UUID) error
}

func NewMockOrderRepo() *MockOrderRepo {
	return &MockOrderRepo{
		orders: make(map[uuid.UUID]*Order),
	}
}

func (m *MockOrderRepo) Create(ctx context.Context, order *Order) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, order)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if order.Open && order.DineIn() && order.TableID != nil {
		for _, o := range m.orders {
			if o.Open && o.DineIn() && o.TableID != nil && *o.TableID == *order.TableID {
				return ErrOpenOrderExists
			}
		}
	}
	m.orders[order.ID] = order
	return nil
}

func (m *MockOrderRepo) Get(ctx context.Context, id uuid.UUID) (*Order, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	order, ok := m.orders[id]
	if !ok {
		return nil, fmt.Errorf("order not found")
	}
	return order, nil
}

func (m *MockOrderRepo) List(ctx context.Context, shopID uuid.UUID) ([]*Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*Order
	for _, o := range m.orders {
		if o.ShopID == shopID {
			result = append(result, o)
		}
	}
	return result, nil
}

func (m *MockOrderRepo) ListByTable(ctx context.Context, tableID uuid.UUID) ([]*Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*Order
	for _, o := range m.orders {
		if o.TableID != nil && *o.TableID == tableID {
			result = append(result, o)
		}
	}
	return result, nil
}

func (m *MockOrderRepo) ListByStatus(ctx context.Context, shopID uuid.UUID, status string) ([]*Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*Order
	for _, o := range m.orders {
		if o.ShopID == shopID && o.Status == status {
			result = append(result, o)
		}
	}
	return result, nil
}

func (m *MockOrderRepo) FindOpenByTable(ctx context.Context, tableID uuid.UUID) (*Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, o := range m.orders {
		if o.Open && o.DineIn() && o.TableID != nil && *o.TableID == tableID {
			return o, nil
		}
	}
	return nil, nil
}

func (m *MockOrderRepo) CountOpenByTable(ctx context.Context, tableID, excludeOrderID uuid.UUID) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, o := range m.orders {
		if o.ID == excludeOrderID {
			continue
		}
		if o.Open && o.TableID != nil && *o.TableID == tableID {
			count++
		}
	}
	return count, nil
}

func (m *MockOrderRepo) Save(ctx context.Context, order *Order) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, order)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[order.ID] = order
	return nil
}

func (m *MockOrderRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.orders, id)
	return nil
}

// MockOrderItemRepo is a mock implementation of OrderItemRepo for testing
type MockOrderItemRepo struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*OrderItem

	CreateFunc func(ctx context.Context, item *OrderItem) error
	SaveFunc   func(ctx context.Context, item *OrderItem) error
	DeleteFunc func(ctx context.Context, id uuid.UUID) error
}

func NewMockOrderItemRepo() *MockOrderItemRepo {
	return &MockOrderItemRepo{
		items: make(map[uuid.UUID]*OrderItem),
	}
}

func (m *MockOrderItemRepo) Create(ctx context.Context, item *OrderItem) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, item)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[item.ID] = item
	return nil
}

func (m *MockOrderItemRepo) Get(ctx context.Context, id uuid.UUID) (*OrderItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	item, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("order item not found")
	}
	return item, nil
}

func (m *MockOrderItemRepo) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*OrderItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*OrderItem
	for _, item := range m.items {
		if item.OrderID == orderID {
			result = append(result, item)
		}
	}
	return result, nil
}

func (m *MockOrderItemRepo) Save(ctx context.Context, item *OrderItem) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, item)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[item.ID] = item
	return nil
}

func (m *MockOrderItemRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, id)
	return nil
}

// MockTicketRepo is a mock implementation of TicketRepo for testing
type MockTicketRepo struct {
	mu      sync.RWMutex
	tickets map[uuid.UUID]*Ticket
	nextNum int

	CreateFunc func(ctx context.Context, ticket *Ticket) error
	SaveFunc   func(ctx context.Context, ticket *Ticket) error
	DeleteFunc func(ctx context.Context, id uuid.UUID) error
}

func NewMockTicketRepo() *MockTicketRepo {
	return &MockTicketRepo{
		tickets: make(map[uuid.UUID]*Ticket),
	}
}

func (m *MockTicketRepo) Create(ctx context.Context, ticket *Ticket) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, ticket)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tickets[ticket.ID] = ticket
	return nil
}

func (m *MockTicketRepo) Get(ctx context.Context, id uuid.UUID) (*Ticket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ticket, ok := m.tickets[id]
	if !ok {
		return nil, fmt.Errorf("ticket not found")
	}
	return ticket, nil
}

func (m *MockTicketRepo) List(ctx context.Context, shopID uuid.UUID) ([]*Ticket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*Ticket
	for _, t := range m.tickets {
		if t.ShopID == shopID {
			result = append(result, t)
		}
	}
	return result, nil
}

func (m *MockTicketRepo) ListByStatus(ctx context.Context, shopID uuid.UUID, status string) ([]*Ticket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*Ticket
	for _, t := range m.tickets {
		if t.ShopID == shopID && t.Status == status {
			result = append(result, t)
		}
	}
	return result, nil
}

func (m *MockTicketRepo) FindByOrder(ctx context.Context, orderID uuid.UUID) (*Ticket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.tickets {
		if t.OrderID == orderID {
			return t, nil
		}
	}
	return nil, nil
}

func (m *MockTicketRepo) NextTicketNumber(ctx context.Context, shopID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextNum++
	return m.nextNum, nil
}

func (m *MockTicketRepo) Save(ctx context.Context, ticket *Ticket) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, ticket)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tickets[ticket.ID] = ticket
	return nil
}

func (m *MockTicketRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tickets, id)
	return nil
}

// MockTableRepo is a map-backed implementation of tables.TableRepo for the
// state machine used in handler tests.
type MockTableRepo struct {
	mu     sync.RWMutex
	tables map[uuid.UUID]*tables.Table
}

func NewMockTableRepo() *MockTableRepo {
	return &MockTableRepo{
		tables: make(map[uuid.UUID]*tables.Table),
	}
}

func (m *MockTableRepo) Create(ctx context.Context, table *tables.Table) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[table.ID] = table
	return nil
}

func (m *MockTableRepo) Get(ctx context.Context, id uuid.UUID) (*tables.Table, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	table, ok := m.tables[id]
	if !ok {
		return nil, fmt.Errorf("table not found")
	}
	return table, nil
}

func (m *MockTableRepo) GetByNumber(ctx context.Context, shopID uuid.UUID, number string) (*tables.Table, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.tables {
		if t.ShopID == shopID && t.Number == number {
			return t, nil
		}
	}
	return nil, fmt.Errorf("table not found")
}

func (m *MockTableRepo) List(ctx context.Context, shopID uuid.UUID) ([]*tables.Table, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*tables.Table
	for _, t := range m.tables {
		if t.ShopID == shopID {
			result = append(result, t)
		}
	}
	return result, nil
}

func (m *MockTableRepo) ListByStatus(ctx context.Context, shopID uuid.UUID, status string) ([]*tables.Table, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*tables.Table
	for _, t := range m.tables {
		if t.ShopID == shopID && t.Status == status {
			result = append(result, t)
		}
	}
	return result, nil
}

func (m *MockTableRepo) Save(ctx context.Context, table *tables.Table) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[table.ID] = table
	return nil
}

func (m *MockTableRepo) SaveStatusIf(ctx context.Context, id uuid.UUID, expected, next string) (bool, error) {
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
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tables, id)
	return nil
}
