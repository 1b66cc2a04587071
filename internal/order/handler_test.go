package order

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	aqm "github.com/appetiteclub/apt"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/maitreclub/maitre/internal/tables"
	"github.com/maitreclub/maitre/pkg"
)

type testEnv struct {
	handler    *Handler
	orderRepo  *MockOrderRepo
	itemRepo   *MockOrderItemRepo
	ticketRepo *MockTicketRepo
	tableRepo  *MockTableRepo
	products   *ProductCache
	publisher  *MockPublisher
}

func newTestEnv() *testEnv {
	orderRepo := NewMockOrderRepo()
	itemRepo := NewMockOrderItemRepo()
	ticketRepo := NewMockTicketRepo()
	tableRepo := NewMockTableRepo()
	products := NewProductCache(nil, nil)
	publisher := NewMockPublisher()

	deps := HandlerDeps{
		OrderRepo:  orderRepo,
		ItemRepo:   itemRepo,
		TicketRepo: ticketRepo,
		TableRepo:  tableRepo,
		Machine:    tables.NewStateMachine(tableRepo, orderRepo, nil),
		Products:   products,
		Publisher:  publisher,
	}

	return &testEnv{
		handler:    NewHandler(deps, aqm.NewConfig(), nil),
		orderRepo:  orderRepo,
		itemRepo:   itemRepo,
		ticketRepo: ticketRepo,
		tableRepo:  tableRepo,
		products:   products,
		publisher:  publisher,
	}
}

func (e *testEnv) seedTable(shopID uuid.UUID, number, status string) *tables.Table {
	table := tables.NewTable()
	table.ShopID = shopID
	table.Number = number
	table.Capacity = 4
	table.Status = status
	table.BeforeCreate()
	_ = e.tableRepo.Create(context.Background(), table)
	return table
}

func (e *testEnv) seedProduct(name string, price float64, kitchen bool) ProductInfo {
	info := ProductInfo{
		ID:              uuid.New(),
		Name:            name,
		Price:           price,
		RequiresKitchen: kitchen,
	}
	e.products.Set(info)
	return info
}

func (e *testEnv) publishedTopics() []string {
	topics := make([]string, 0, len(e.publisher.Published))
	for _, p := range e.publisher.Published {
		topics = append(topics, p.Topic)
	}
	return topics
}

func shopRequest(method, target string, shopID uuid.UUID, body []byte) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	req.Header.Set(ShopIDHeader, shopID.String())
	return req
}

func withIDParam(req *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func decodeOrderView(t *testing.T, body []byte) orderView {
	t.Helper()
	var resp struct {
		Data orderView `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("cannot decode order response: %v", err)
	}
	return resp.Data
}

func TestNewHandler(t *testing.T) {
	h := NewHandler(HandlerDeps{}, aqm.NewConfig(), nil)

	if h == nil {
		t.Fatal("NewHandler() returned nil")
	}
	if h.logger == nil {
		t.Error("NewHandler() should set noop logger when nil")
	}
}

func TestHandlerCreateOrderDineIn(t *testing.T) {
	env := newTestEnv()
	shopID := uuid.New()
	table := env.seedTable(shopID, "5", tables.StatusAvailable)

	dish := env.seedProduct("Risotto", 18.5, true)
	drink := env.seedProduct("Sparkling water", 3.0, false)

	req := OrderCreateRequest{
		TableID:    &table.ID,
		GuestCount: 2,
		Items: []OrderItemRequest{
			{ProductID: dish.ID, Quantity: 2},
			{ProductID: drink.ID, Quantity: 1},
		},
	}
	body, _ := json.Marshal(req)

	w := httptest.NewRecorder()
	env.handler.CreateOrder(w, shopRequest(http.MethodPost, "/orders", shopID, body))

	if w.Code != http.StatusCreated {
		t.Fatalf("CreateOrder() status = %d, want %d: %s", w.Code, http.StatusCreated, w.Body.String())
	}

	view := decodeOrderView(t, w.Body.Bytes())
	if view.OrderType != TypeDineIn {
		t.Errorf("order type = %q, want %q", view.OrderType, TypeDineIn)
	}
	if view.Total != 2*18.5+3.0 {
		t.Errorf("total = %v, want %v", view.Total, 2*18.5+3.0)
	}
	if len(view.Items) != 2 {
		t.Fatalf("got %d items, want 2", len(view.Items))
	}
	if view.Ticket == nil {
		t.Fatal("kitchen-required item did not open a ticket")
	}
	if view.Ticket.TicketNumber != 1 {
		t.Errorf("ticket number = %d, want 1", view.Ticket.TicketNumber)
	}

	for _, item := range view.Items {
		if item.ProductID == drink.ID && item.Status != ItemStatusServed {
			t.Errorf("non-kitchen item status = %q, want %q", item.Status, ItemStatusServed)
		}
		if item.ProductID == dish.ID && item.Status != ItemStatusPending {
			t.Errorf("kitchen item status = %q, want %q", item.Status, ItemStatusPending)
		}
	}

	boundTable, _ := env.tableRepo.Get(context.Background(), table.ID)
	if boundTable.Status != tables.StatusOccupied {
		t.Errorf("table status = %q, want %q", boundTable.Status, tables.StatusOccupied)
	}

	topics := env.publishedTopics()
	wantTopics := map[string]bool{pkg.OrdersTopic: false, pkg.KitchenTicketsTopic: false}
	for _, topic := range topics {
		wantTopics[topic] = true
	}
	for topic, seen := range wantTopics {
		if !seen {
			t.Errorf("no event published to %q", topic)
		}
	}
}

func TestHandlerCreateOrderTakeout(t *testing.T) {
	env := newTestEnv()
	shopID := uuid.New()
	dish := env.seedProduct("Pad thai", 12.0, true)

	body := []byte(`{"order_type":"takeout","items":[{"product_id":"` + dish.ID.String() + `","quantity":1}]}`)

	w := httptest.NewRecorder()
	env.handler.CreateOrder(w, shopRequest(http.MethodPost, "/orders", shopID, body))

	if w.Code != http.StatusCreated {
		t.Fatalf("CreateOrder() status = %d, want %d: %s", w.Code, http.StatusCreated, w.Body.String())
	}

	view := decodeOrderView(t, w.Body.Bytes())
	if view.TableID != nil {
		t.Errorf("takeout order got table %s", view.TableID)
	}
	if view.Ticket == nil {
		t.Error("takeout kitchen order did not open a ticket")
	}
}

func TestHandlerCreateOrderValidation(t *testing.T) {
	shopID := uuid.New()

	tests := []struct {
		name           string
		body           string
		expectedStatus int
	}{
		{
			name:           "dineInWithoutTable",
			body:           `{"items":[{"product_id":"` + uuid.New().String() + `","quantity":1}]}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "noItems",
			body:           `{"order_type":"takeout","items":[]}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "zeroQuantity",
			body:           `{"order_type":"takeout","items":[{"product_id":"` + uuid.New().String() + `","quantity":0}]}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknownOrderType",
			body:           `{"order_type":"drive_through","items":[{"product_id":"` + uuid.New().String() + `","quantity":1}]}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "emptyBody",
			body:           "",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()

			w := httptest.NewRecorder()
			env.handler.CreateOrder(w, shopRequest(http.MethodPost, "/orders", shopID, []byte(tt.body)))

			if w.Code != tt.expectedStatus {
				t.Errorf("CreateOrder() status = %d, want %d", w.Code, tt.expectedStatus)
			}
		})
	}
}

func TestHandlerCreateOrderMissingTable(t *testing.T) {
	env := newTestEnv()
	shopID := uuid.New()
	dish := env.seedProduct("Soup", 6.0, true)

	missing := uuid.New()
	body := []byte(`{"table_id":"` + missing.String() + `","items":[{"product_id":"` + dish.ID.String() + `","quantity":1}]}`)

	w := httptest.NewRecorder()
	env.handler.CreateOrder(w, shopRequest(http.MethodPost, "/orders", shopID, body))

	if w.Code != http.StatusNotFound {
		t.Errorf("CreateOrder() status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestHandlerCreateOrderCatalogUnavailable(t *testing.T) {
	env := newTestEnv()
	shopID := uuid.New()
	table := env.seedTable(shopID, "5", tables.StatusAvailable)

	// Product is not cached and there is no catalog client to fall back to.
	body := []byte(`{"table_id":"` + table.ID.String() + `","items":[{"product_id":"` + uuid.New().String() + `","quantity":1}]}`)

	w := httptest.NewRecorder()
	env.handler.CreateOrder(w, shopRequest(http.MethodPost, "/orders", shopID, body))

	if w.Code != http.StatusBadGateway {
		t.Errorf("CreateOrder() status = %d, want %d", w.Code, http.StatusBadGateway)
	}
}

func TestHandlerCreateOrderMergesIntoOpenOrder(t *testing.T) {
	env := newTestEnv()
	shopID := uuid.New()
	table := env.seedTable(shopID, "5", tables.StatusOccupied)
	dish := env.seedProduct("Risotto", 18.5, true)

	existing := NewOrder()
	existing.ShopID = shopID
	existing.TableID = &table.ID
	existing.TableNumber = table.Number
	existing.BeforeCreate()
	_ = env.orderRepo.Create(context.Background(), existing)

	body := []byte(`{"table_id":"` + table.ID.String() + `","items":[{"product_id":"` + dish.ID.String() + `","quantity":1}]}`)

	w := httptest.NewRecorder()
	env.handler.CreateOrder(w, shopRequest(http.MethodPost, "/orders", shopID, body))

	if w.Code != http.StatusOK {
		t.Fatalf("CreateOrder() status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
	}

	view := decodeOrderView(t, w.Body.Bytes())
	if view.ID != existing.ID {
		t.Errorf("merged into order %s, want existing %s", view.ID, existing.ID)
	}

	all, _ := env.orderRepo.List(context.Background(), shopID)
	if len(all) != 1 {
		t.Errorf("got %d orders for the table, want 1", len(all))
	}
}

func TestHandlerCreateOrderDuplicateRace(t *testing.T) {
	env := newTestEnv()
	shopID := uuid.New()
	table := env.seedTable(shopID, "5", tables.StatusAvailable)
	dish := env.seedProduct("Risotto", 18.5, true)

	winner := NewOrder()
	winner.ShopID = shopID
	winner.TableID = &table.ID
	winner.BeforeCreate()

	// The open-order check sees nothing, then the unique index rejects the
	// insert because a concurrent request landed first.
	calls := 0
	env.orderRepo.CreateFunc = func(ctx context.Context, o *Order) error {
		calls++
		env.orderRepo.CreateFunc = nil
		_ = env.orderRepo.Create(ctx, winner)
		return ErrOpenOrderExists
	}

	body := []byte(`{"table_id":"` + table.ID.String() + `","items":[{"product_id":"` + dish.ID.String() + `","quantity":1}]}`)

	w := httptest.NewRecorder()
	env.handler.CreateOrder(w, shopRequest(http.MethodPost, "/orders", shopID, body))

	if w.Code != http.StatusOK {
		t.Fatalf("CreateOrder() status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
	}
	if calls != 1 {
		t.Fatalf("Create was called %d times, want 1", calls)
	}

	view := decodeOrderView(t, w.Body.Bytes())
	if view.ID != winner.ID {
		t.Errorf("merged into order %s, want race winner %s", view.ID, winner.ID)
	}
}

func TestHandlerCreateOrderDuplicateRaceWinnerGone(t *testing.T) {
	env := newTestEnv()
	shopID := uuid.New()
	table := env.seedTable(shopID, "5", tables.StatusAvailable)
	dish := env.seedProduct("Risotto", 18.5, true)

	env.orderRepo.CreateFunc = func(ctx context.Context, o *Order) error {
		return ErrOpenOrderExists
	}

	body := []byte(`{"table_id":"` + table.ID.String() + `","items":[{"product_id":"` + dish.ID.String() + `","quantity":1}]}`)

	w := httptest.NewRecorder()
	env.handler.CreateOrder(w, shopRequest(http.MethodPost, "/orders", shopID, body))

	if w.Code != http.StatusConflict {
		t.Errorf("CreateOrder() status = %d, want %d", w.Code, http.StatusConflict)
	}
}

func TestHandlerAddItems(t *testing.T) {
	env := newTestEnv()
	shopID := uuid.New()
	table := env.seedTable(shopID, "5", tables.StatusOccupied)
	drink := env.seedProduct("Lemonade", 4.0, false)
	dish := env.seedProduct("Burger", 11.0, true)

	order := NewOrder()
	order.ShopID = shopID
	order.TableID = &table.ID
	order.BeforeCreate()
	_ = env.orderRepo.Create(context.Background(), order)

	// First round: only a drink, no ticket.
	body := []byte(`{"items":[{"product_id":"` + drink.ID.String() + `","quantity":2}]}`)
	w := httptest.NewRecorder()
	env.handler.AddItems(w, withIDParam(shopRequest(http.MethodPost, "/orders/"+order.ID.String()+"/items", shopID, body), order.ID.String()))

	if w.Code != http.StatusOK {
		t.Fatalf("AddItems() status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
	}
	view := decodeOrderView(t, w.Body.Bytes())
	if view.Ticket != nil {
		t.Error("drink-only order opened a kitchen ticket")
	}
	if view.Total != 8.0 {
		t.Errorf("total = %v, want 8.0", view.Total)
	}

	// Second round: first kitchen item opens the ticket.
	body = []byte(`{"items":[{"product_id":"` + dish.ID.String() + `","quantity":1}]}`)
	w = httptest.NewRecorder()
	env.handler.AddItems(w, withIDParam(shopRequest(http.MethodPost, "/orders/"+order.ID.String()+"/items", shopID, body), order.ID.String()))

	if w.Code != http.StatusOK {
		t.Fatalf("AddItems() status = %d, want %d", w.Code, http.StatusOK)
	}
	view = decodeOrderView(t, w.Body.Bytes())
	if view.Ticket == nil {
		t.Fatal("kitchen item did not open a ticket")
	}
	if view.Total != 19.0 {
		t.Errorf("total = %v, want 19.0", view.Total)
	}

	// Third round: the existing ticket is reused.
	body = []byte(`{"items":[{"product_id":"` + dish.ID.String() + `","quantity":1}]}`)
	w = httptest.NewRecorder()
	env.handler.AddItems(w, withIDParam(shopRequest(http.MethodPost, "/orders/"+order.ID.String()+"/items", shopID, body), order.ID.String()))

	if w.Code != http.StatusOK {
		t.Fatalf("AddItems() status = %d, want %d", w.Code, http.StatusOK)
	}
	all, _ := env.ticketRepo.List(context.Background(), shopID)
	if len(all) != 1 {
		t.Errorf("order has %d tickets, want 1", len(all))
	}
}

func TestHandlerAddItemsFinalizedOrder(t *testing.T) {
	env := newTestEnv()
	shopID := uuid.New()
	drink := env.seedProduct("Lemonade", 4.0, false)

	order := NewOrder()
	order.ShopID = shopID
	order.OrderType = TypeTakeout
	order.BeforeCreate()
	order.Complete("cash")
	_ = env.orderRepo.Create(context.Background(), order)

	body := []byte(`{"items":[{"product_id":"` + drink.ID.String() + `","quantity":1}]}`)
	w := httptest.NewRecorder()
	env.handler.AddItems(w, withIDParam(shopRequest(http.MethodPost, "/orders/"+order.ID.String()+"/items", shopID, body), order.ID.String()))

	if w.Code != http.StatusBadRequest {
		t.Errorf("AddItems() on finalized order status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestHandlerCompletePayment(t *testing.T) {
	env := newTestEnv()
	shopID := uuid.New()
	table := env.seedTable(shopID, "5", tables.StatusOccupied)

	order := NewOrder()
	order.ShopID = shopID
	order.TableID = &table.ID
	order.Total = 22.5
	order.BeforeCreate()
	_ = env.orderRepo.Create(context.Background(), order)

	body := []byte(`{"payment_method":"card"}`)
	w := httptest.NewRecorder()
	env.handler.CompletePayment(w, withIDParam(shopRequest(http.MethodPost, "/orders/"+order.ID.String()+"/payment", shopID, body), order.ID.String()))

	if w.Code != http.StatusOK {
		t.Fatalf("CompletePayment() status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
	}

	stored, _ := env.orderRepo.Get(context.Background(), order.ID)
	if stored.Status != StatusCompleted {
		t.Errorf("order status = %q, want %q", stored.Status, StatusCompleted)
	}
	if stored.Open {
		t.Error("completed order still marked open")
	}
	if stored.PaymentMethod != "card" {
		t.Errorf("payment method = %q, want %q", stored.PaymentMethod, "card")
	}
	if stored.CompletedAt == nil {
		t.Error("completed order has no completion time")
	}

	freed, _ := env.tableRepo.Get(context.Background(), table.ID)
	if freed.Status != tables.StatusAvailable {
		t.Errorf("table status = %q, want %q", freed.Status, tables.StatusAvailable)
	}
}

func TestHandlerCompletePaymentIdempotence(t *testing.T) {
	env := newTestEnv()
	shopID := uuid.New()
	table := env.seedTable(shopID, "5", tables.StatusOccupied)

	order := NewOrder()
	order.ShopID = shopID
	order.TableID = &table.ID
	order.BeforeCreate()
	_ = env.orderRepo.Create(context.Background(), order)

	body := []byte(`{"payment_method":"card"}`)
	w := httptest.NewRecorder()
	env.handler.CompletePayment(w, withIDParam(shopRequest(http.MethodPost, "/orders/"+order.ID.String()+"/payment", shopID, body), order.ID.String()))
	if w.Code != http.StatusOK {
		t.Fatalf("first CompletePayment() status = %d, want %d", w.Code, http.StatusOK)
	}

	// Another party was seated in the meantime. A replayed payment must not
	// free their table.
	seated, _ := env.tableRepo.Get(context.Background(), table.ID)
	seated.Status = tables.StatusOccupied
	_ = env.tableRepo.Save(context.Background(), seated)

	w = httptest.NewRecorder()
	env.handler.CompletePayment(w, withIDParam(shopRequest(http.MethodPost, "/orders/"+order.ID.String()+"/payment", shopID, body), order.ID.String()))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("second CompletePayment() status = %d, want %d", w.Code, http.StatusBadRequest)
	}

	still, _ := env.tableRepo.Get(context.Background(), table.ID)
	if still.Status != tables.StatusOccupied {
		t.Errorf("replayed payment freed the table, status = %q", still.Status)
	}
}

func TestHandlerCompletePaymentKeepsTableWithOtherOpenOrders(t *testing.T) {
	env := newTestEnv()
	shopID := uuid.New()
	table := env.seedTable(shopID, "5", tables.StatusOccupied)

	paying := NewOrder()
	paying.ShopID = shopID
	paying.TableID = &table.ID
	paying.BeforeCreate()
	_ = env.orderRepo.Save(context.Background(), paying)

	// A second open order still references the table.
	other := NewOrder()
	other.ShopID = shopID
	other.TableID = &table.ID
	other.BeforeCreate()
	_ = env.orderRepo.Save(context.Background(), other)

	body := []byte(`{"payment_method":"cash"}`)
	w := httptest.NewRecorder()
	env.handler.CompletePayment(w, withIDParam(shopRequest(http.MethodPost, "/orders/"+paying.ID.String()+"/payment", shopID, body), paying.ID.String()))

	if w.Code != http.StatusOK {
		t.Fatalf("CompletePayment() status = %d, want %d", w.Code, http.StatusOK)
	}

	still, _ := env.tableRepo.Get(context.Background(), table.ID)
	if still.Status != tables.StatusOccupied {
		t.Errorf("table status = %q, want %q while another order is open", still.Status, tables.StatusOccupied)
	}
}

func TestHandlerCancelOrder(t *testing.T) {
	env := newTestEnv()
	shopID := uuid.New()
	table := env.seedTable(shopID, "5", tables.StatusOccupied)

	order := NewOrder()
	order.ShopID = shopID
	order.TableID = &table.ID
	order.BeforeCreate()
	_ = env.orderRepo.Create(context.Background(), order)

	w := httptest.NewRecorder()
	env.handler.CancelOrder(w, withIDParam(shopRequest(http.MethodPost, "/orders/"+order.ID.String()+"/cancel", shopID, nil), order.ID.String()))

	if w.Code != http.StatusOK {
		t.Fatalf("CancelOrder() status = %d, want %d", w.Code, http.StatusOK)
	}

	stored, _ := env.orderRepo.Get(context.Background(), order.ID)
	if stored.Status != StatusCancelled {
		t.Errorf("order status = %q, want %q", stored.Status, StatusCancelled)
	}

	freed, _ := env.tableRepo.Get(context.Background(), table.ID)
	if freed.Status != tables.StatusAvailable {
		t.Errorf("table status = %q, want %q", freed.Status, tables.StatusAvailable)
	}
}

func TestHandlerDeleteOrder(t *testing.T) {
	env := newTestEnv()
	shopID := uuid.New()
	table := env.seedTable(shopID, "5", tables.StatusOccupied)
	dish := env.seedProduct("Ramen", 13.0, true)

	order := NewOrder()
	order.ShopID = shopID
	order.TableID = &table.ID
	order.BeforeCreate()
	_ = env.orderRepo.Create(context.Background(), order)

	item := NewOrderItem()
	item.OrderID = order.ID
	item.ProductID = dish.ID
	item.Quantity = 1
	item.BeforeCreate()
	_ = env.itemRepo.Create(context.Background(), item)

	ticket := NewTicket()
	ticket.ShopID = shopID
	ticket.OrderID = order.ID
	ticket.BeforeCreate()
	_ = env.ticketRepo.Create(context.Background(), ticket)

	w := httptest.NewRecorder()
	env.handler.DeleteOrder(w, withIDParam(shopRequest(http.MethodDelete, "/orders/"+order.ID.String(), shopID, nil), order.ID.String()))

	if w.Code != http.StatusNoContent {
		t.Fatalf("DeleteOrder() status = %d, want %d", w.Code, http.StatusNoContent)
	}

	if _, err := env.orderRepo.Get(context.Background(), order.ID); err == nil {
		t.Error("order survived deletion")
	}
	items, _ := env.itemRepo.ListByOrder(context.Background(), order.ID)
	if len(items) != 0 {
		t.Error("order items survived deletion")
	}
	if ticket, _ := env.ticketRepo.FindByOrder(context.Background(), order.ID); ticket != nil {
		t.Error("ticket survived deletion")
	}

	freed, _ := env.tableRepo.Get(context.Background(), table.ID)
	if freed.Status != tables.StatusAvailable {
		t.Errorf("table status = %q, want %q", freed.Status, tables.StatusAvailable)
	}
}

func TestHandlerUpdateTicketStatus(t *testing.T) {
	env := newTestEnv()
	shopID := uuid.New()

	order := NewOrder()
	order.ShopID = shopID
	order.OrderType = TypeTakeout
	order.BeforeCreate()
	_ = env.orderRepo.Create(context.Background(), order)

	ticket := NewTicket()
	ticket.ShopID = shopID
	ticket.OrderID = order.ID
	ticket.TicketNumber = 7
	ticket.BeforeCreate()
	_ = env.ticketRepo.Create(context.Background(), ticket)

	advance := func(status string) *httptest.ResponseRecorder {
		body, _ := json.Marshal(TicketStatusRequest{Status: status})
		w := httptest.NewRecorder()
		env.handler.UpdateTicketStatus(w, withIDParam(shopRequest(http.MethodPatch, "/kitchen/tickets/"+ticket.ID.String()+"/status", shopID, body), ticket.ID.String()))
		return w
	}

	if w := advance(TicketStatusPreparing); w.Code != http.StatusOK {
		t.Fatalf("advance to preparing status = %d, want %d", w.Code, http.StatusOK)
	}
	syncedOrder, _ := env.orderRepo.Get(context.Background(), order.ID)
	if syncedOrder.Status != StatusPreparing {
		t.Errorf("order status = %q, want %q", syncedOrder.Status, StatusPreparing)
	}

	if w := advance(TicketStatusReady); w.Code != http.StatusOK {
		t.Fatalf("advance to ready status = %d, want %d", w.Code, http.StatusOK)
	}

	// Backwards is rejected.
	if w := advance(TicketStatusPreparing); w.Code != http.StatusConflict {
		t.Errorf("backwards move status = %d, want %d", w.Code, http.StatusConflict)
	}

	if w := advance(TicketStatusServed); w.Code != http.StatusOK {
		t.Fatalf("advance to served status = %d, want %d", w.Code, http.StatusOK)
	}

	stored, _ := env.ticketRepo.Get(context.Background(), ticket.ID)
	if stored.CompletedAt == nil {
		t.Error("served ticket has no completion time")
	}
	syncedOrder, _ = env.orderRepo.Get(context.Background(), order.ID)
	if syncedOrder.Status != StatusServed {
		t.Errorf("order status = %q, want %q", syncedOrder.Status, StatusServed)
	}
}

func TestHandlerUpdateTicketStatusServesKitchenItems(t *testing.T) {
	env := newTestEnv()
	shopID := uuid.New()

	order := NewOrder()
	order.ShopID = shopID
	order.OrderType = TypeTakeout
	order.BeforeCreate()
	_ = env.orderRepo.Create(context.Background(), order)

	kitchenItem := NewOrderItem()
	kitchenItem.OrderID = order.ID
	kitchenItem.RequiresKitchen = true
	kitchenItem.Quantity = 1
	kitchenItem.BeforeCreate()
	_ = env.itemRepo.Create(context.Background(), kitchenItem)

	ticket := NewTicket()
	ticket.ShopID = shopID
	ticket.OrderID = order.ID
	ticket.BeforeCreate()
	_ = env.ticketRepo.Create(context.Background(), ticket)

	body, _ := json.Marshal(TicketStatusRequest{Status: TicketStatusServed})
	w := httptest.NewRecorder()
	env.handler.UpdateTicketStatus(w, withIDParam(shopRequest(http.MethodPatch, "/kitchen/tickets/"+ticket.ID.String()+"/status", shopID, body), ticket.ID.String()))

	if w.Code != http.StatusOK {
		t.Fatalf("UpdateTicketStatus() status = %d, want %d", w.Code, http.StatusOK)
	}

	items, _ := env.itemRepo.ListByOrder(context.Background(), order.ID)
	if len(items) != 1 || items[0].Status != ItemStatusServed {
		t.Errorf("kitchen item was not marked served when the ticket was")
	}
}

func TestHandlerListTickets(t *testing.T) {
	env := newTestEnv()
	shopID := uuid.New()

	newTicket := NewTicket()
	newTicket.ShopID = shopID
	newTicket.OrderID = uuid.New()
	newTicket.BeforeCreate()
	_ = env.ticketRepo.Create(context.Background(), newTicket)

	ready := NewTicket()
	ready.ShopID = shopID
	ready.OrderID = uuid.New()
	ready.BeforeCreate()
	ready.MarkAsReady()
	_ = env.ticketRepo.Create(context.Background(), ready)

	w := httptest.NewRecorder()
	env.handler.ListTickets(w, shopRequest(http.MethodGet, "/kitchen/tickets?status=ready", shopID, nil))

	if w.Code != http.StatusOK {
		t.Fatalf("ListTickets() status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp struct {
		Data []Ticket `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("cannot decode ticket list: %v", err)
	}
	if len(resp.Data) != 1 {
		t.Fatalf("got %d tickets, want 1", len(resp.Data))
	}
	if resp.Data[0].ID != ready.ID {
		t.Errorf("listed ticket %s, want ready ticket %s", resp.Data[0].ID, ready.ID)
	}
}
