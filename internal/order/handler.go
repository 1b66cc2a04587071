package order

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	aqm "github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/events"
	"github.com/appetiteclub/apt/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/maitreclub/maitre/internal/tables"
	"github.com/maitreclub/maitre/pkg"
)

const MaxBodyBytes = 1 << 20

// defaultPrepEstimate is the flat kitchen estimate attached to new tickets.
const defaultPrepEstimate = 20 * time.Minute

const ShopIDHeader = "X-Shop-ID"

type Handler struct {
	orderRepo  OrderRepo
	itemRepo   OrderItemRepo
	ticketRepo TicketRepo
	tableRepo  tables.TableRepo
	machine    *tables.StateMachine
	products   *ProductCache
	publisher  events.Publisher
	logger     aqm.Logger
	config     *aqm.Config
	tlm        *telemetry.HTTP
}

type HandlerDeps struct {
	OrderRepo  OrderRepo
	ItemRepo   OrderItemRepo
	TicketRepo TicketRepo
	TableRepo  tables.TableRepo
	Machine    *tables.StateMachine
	Products   *ProductCache
	Publisher  events.Publisher
}

func NewHandler(hd HandlerDeps, config *aqm.Config, logger aqm.Logger) *Handler {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Handler{
		orderRepo:  hd.OrderRepo,
		itemRepo:   hd.ItemRepo,
		ticketRepo: hd.TicketRepo,
		tableRepo:  hd.TableRepo,
		machine:    hd.Machine,
		products:   hd.Products,
		publisher:  hd.Publisher,
		logger:     logger,
		config:     config,
		tlm:        telemetry.NewHTTP(),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Post("/", h.CreateOrder)
		r.Get("/", h.ListOrders)
		r.Get("/{id}", h.GetOrder)
		r.Post("/{id}/items", h.AddItems)
		r.Post("/{id}/payment", h.CompletePayment)
		r.Post("/{id}/cancel", h.CancelOrder)
		r.Delete("/{id}", h.DeleteOrder)
	})

	r.Route("/kitchen/tickets", func(r chi.Router) {
		r.Get("/", h.ListTickets)
		r.Get("/{id}", h.GetTicket)
		r.Patch("/{id}/status", h.UpdateTicketStatus)
	})
}

// orderView is the composite the UI works with: the order plus its items and
// kitchen ticket, if any.
type orderView struct {
	*Order
	Items  []*OrderItem `json:"items"`
	Ticket *Ticket      `json:"ticket,omitempty"`
}

// Order Handlers

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.CreateOrder")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	shopID, ok := h.parseShopID(w, r, log)
	if !ok {
		return
	}

	req, ok := h.decodeOrderCreatePayload(w, r, log)
	if !ok {
		return
	}

	validationErrors := ValidateOrderCreate(ctx, req)
	if len(validationErrors) > 0 {
		log.Debug("validation failed", "errors", validationErrors)
		aqm.RespondError(w, http.StatusBadRequest, strings.Join(validationErrors, "; "))
		return
	}

	orderType := req.OrderType
	if orderType == "" {
		orderType = TypeDineIn
	}

	var table *tables.Table
	if orderType == TypeDineIn {
		var err error
		table, err = h.tableRepo.Get(ctx, *req.TableID)
		if err != nil || table == nil || table.ShopID != shopID {
			aqm.RespondError(w, http.StatusNotFound, "Table not found")
			return
		}

		// A table with an open order gets the new items merged in rather
		// than a second parallel order.
		existing, err := h.orderRepo.FindOpenByTable(ctx, table.ID)
		if err != nil {
			log.Error("cannot check open orders for table", "error", err, "table_id", table.ID.String())
			aqm.RespondError(w, http.StatusInternalServerError, "Could not create order")
			return
		}
		if existing != nil {
			h.mergeIntoOrder(w, r, existing, req.Items, log)
			return
		}
	}

	resolved, ok := h.resolveItems(w, ctx, req.Items, log)
	if !ok {
		return
	}

	order := NewOrder()
	order.ShopID = shopID
	order.OrderType = orderType
	order.GuestCount = req.GuestCount
	order.Notes = req.Notes
	if table != nil {
		order.TableID = &table.ID
		order.TableNumber = table.Number
	}
	order.BeforeCreate()

	items := buildItems(order.ID, resolved)
	order.Total = itemsTotal(items)

	if err := h.orderRepo.Create(ctx, order); err != nil {
		if errors.Is(err, ErrOpenOrderExists) && table != nil {
			// Lost the unique-index race: another request opened the order
			// for this table first. Merge into the winner.
			winner, findErr := h.orderRepo.FindOpenByTable(ctx, table.ID)
			if findErr == nil && winner != nil {
				h.mergeIntoOrder(w, r, winner, req.Items, log)
				return
			}
			aqm.RespondError(w, http.StatusConflict, "Another order is being opened for this table, retry")
			return
		}
		log.Error("cannot create order", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not create order")
		return
	}

	for _, item := range items {
		if err := h.itemRepo.Create(ctx, item); err != nil {
			log.Error("cannot create order item", "error", err, "order_id", order.ID.String())
			aqm.RespondError(w, http.StatusInternalServerError, "Could not create order items")
			return
		}
	}

	var ticket *Ticket
	if needsKitchen(items) {
		var err error
		ticket, err = h.openTicket(ctx, order, req.Priority)
		if err != nil {
			log.Error("cannot open kitchen ticket", "error", err, "order_id", order.ID.String())
			aqm.RespondError(w, http.StatusInternalServerError, "Could not open kitchen ticket")
			return
		}
	}

	if order.TableID != nil {
		if err := h.machine.ApplyOrderBound(ctx, *order.TableID); err != nil {
			log.Error("cannot mark table occupied", "error", err, "table_id", order.TableID.String())
		}
	}

	h.publishOrderEvent(ctx, order, len(items), pkg.EventOrderCreated)
	if ticket != nil {
		h.publishTicketEvent(ctx, ticket, "", pkg.EventKitchenTicketCreated)
	}

	view := orderView{Order: order, Items: items, Ticket: ticket}
	links := aqm.RESTfulLinksFor(order)
	w.WriteHeader(http.StatusCreated)
	aqm.RespondSuccess(w, view, links...)
}

// mergeIntoOrder adds the requested items to an already open order and
// responds with the merged view.
func (h *Handler) mergeIntoOrder(w http.ResponseWriter, r *http.Request, order *Order, itemReqs []OrderItemRequest, log aqm.Logger) {
	ctx := r.Context()

	items, ticket, ok := h.appendItems(w, ctx, order, itemReqs, log)
	if !ok {
		return
	}

	h.publishOrderEvent(ctx, order, len(items), pkg.EventOrderItemsAdded)

	view := orderView{Order: order, Items: items, Ticket: ticket}
	links := aqm.RESTfulLinksFor(order)
	aqm.RespondSuccess(w, view, links...)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetOrder")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	shopID, ok := h.parseShopID(w, r, log)
	if !ok {
		return
	}

	order, ok := h.loadOrder(w, r, log, shopID)
	if !ok {
		return
	}

	items, err := h.itemRepo.ListByOrder(ctx, order.ID)
	if err != nil {
		log.Error("cannot load order items", "error", err, "order_id", order.ID.String())
		aqm.RespondError(w, http.StatusInternalServerError, "Could not load order items")
		return
	}

	ticket, err := h.ticketRepo.FindByOrder(ctx, order.ID)
	if err != nil {
		log.Error("cannot load kitchen ticket", "error", err, "order_id", order.ID.String())
		aqm.RespondError(w, http.StatusInternalServerError, "Could not load kitchen ticket")
		return
	}

	view := orderView{Order: order, Items: items, Ticket: ticket}
	links := aqm.RESTfulLinksFor(order)
	aqm.RespondSuccess(w, view, links...)
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListOrders")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	shopID, ok := h.parseShopID(w, r, log)
	if !ok {
		return
	}

	query := r.URL.Query()
	status := query.Get("status")
	tableIDStr := query.Get("table_id")

	var orders []*Order
	var err error

	switch {
	case tableIDStr != "":
		tableID, parseErr := uuid.Parse(tableIDStr)
		if parseErr != nil {
			aqm.RespondError(w, http.StatusBadRequest, "Invalid table_id parameter")
			return
		}
		orders, err = h.orderRepo.ListByTable(ctx, tableID)
	case status != "":
		orders, err = h.orderRepo.ListByStatus(ctx, shopID, status)
	default:
		orders, err = h.orderRepo.List(ctx, shopID)
	}

	if err != nil {
		log.Error("error retrieving orders", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not retrieve orders")
		return
	}

	aqm.RespondCollection(w, orders, "order")
}

func (h *Handler) AddItems(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.AddItems")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	shopID, ok := h.parseShopID(w, r, log)
	if !ok {
		return
	}

	order, ok := h.loadOrder(w, r, log, shopID)
	if !ok {
		return
	}

	if order.Terminal() {
		aqm.RespondError(w, http.StatusBadRequest, "Order is already finalized")
		return
	}

	req, ok := h.decodeAddItemsPayload(w, r, log)
	if !ok {
		return
	}

	validationErrors := ValidateAddItems(ctx, req)
	if len(validationErrors) > 0 {
		log.Debug("validation failed", "errors", validationErrors)
		aqm.RespondError(w, http.StatusBadRequest, strings.Join(validationErrors, "; "))
		return
	}

	items, ticket, ok := h.appendItems(w, ctx, order, req.Items, log)
	if !ok {
		return
	}

	h.publishOrderEvent(ctx, order, len(items), pkg.EventOrderItemsAdded)

	view := orderView{Order: order, Items: items, Ticket: ticket}
	links := aqm.RESTfulLinksFor(order)
	aqm.RespondSuccess(w, view, links...)
}

// appendItems resolves, prices and persists new items for the order,
// recomputes the total, and opens the kitchen ticket when the first
// kitchen-required item arrives. An existing ticket is reused: an order never
// gets a second one.
func (h *Handler) appendItems(w http.ResponseWriter, ctx context.Context, order *Order, itemReqs []OrderItemRequest, log aqm.Logger) ([]*OrderItem, *Ticket, bool) {
	resolved, ok := h.resolveItems(w, ctx, itemReqs, log)
	if !ok {
		return nil, nil, false
	}

	newItems := buildItems(order.ID, resolved)
	for _, item := range newItems {
		if err := h.itemRepo.Create(ctx, item); err != nil {
			log.Error("cannot create order item", "error", err, "order_id", order.ID.String())
			aqm.RespondError(w, http.StatusInternalServerError, "Could not create order items")
			return nil, nil, false
		}
	}

	items, err := h.itemRepo.ListByOrder(ctx, order.ID)
	if err != nil {
		log.Error("cannot load order items", "error", err, "order_id", order.ID.String())
		aqm.RespondError(w, http.StatusInternalServerError, "Could not load order items")
		return nil, nil, false
	}

	order.Total = itemsTotal(items)
	order.BeforeUpdate()
	if err := h.orderRepo.Save(ctx, order); err != nil {
		log.Error("cannot update order total", "error", err, "order_id", order.ID.String())
		aqm.RespondError(w, http.StatusInternalServerError, "Could not update order")
		return nil, nil, false
	}

	ticket, err := h.ticketRepo.FindByOrder(ctx, order.ID)
	if err != nil {
		log.Error("cannot load kitchen ticket", "error", err, "order_id", order.ID.String())
		aqm.RespondError(w, http.StatusInternalServerError, "Could not load kitchen ticket")
		return nil, nil, false
	}

	if ticket == nil && needsKitchen(newItems) {
		ticket, err = h.openTicket(ctx, order, "")
		if err != nil {
			log.Error("cannot open kitchen ticket", "error", err, "order_id", order.ID.String())
			aqm.RespondError(w, http.StatusInternalServerError, "Could not open kitchen ticket")
			return nil, nil, false
		}
		h.publishTicketEvent(ctx, ticket, "", pkg.EventKitchenTicketCreated)
	}

	return items, ticket, true
}

func (h *Handler) CompletePayment(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.CompletePayment")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	shopID, ok := h.parseShopID(w, r, log)
	if !ok {
		return
	}

	order, ok := h.loadOrder(w, r, log, shopID)
	if !ok {
		return
	}

	if order.Terminal() {
		aqm.RespondError(w, http.StatusBadRequest, "Order is already finalized")
		return
	}

	req, ok := h.decodeCompletePaymentPayload(w, r, log)
	if !ok {
		return
	}

	validationErrors := ValidateCompletePayment(ctx, req)
	if len(validationErrors) > 0 {
		log.Debug("validation failed", "errors", validationErrors)
		aqm.RespondError(w, http.StatusBadRequest, strings.Join(validationErrors, "; "))
		return
	}

	order.Complete(req.PaymentMethod)
	if err := h.orderRepo.Save(ctx, order); err != nil {
		log.Error("cannot complete order", "error", err, "order_id", order.ID.String())
		aqm.RespondError(w, http.StatusInternalServerError, "Could not complete order")
		return
	}

	h.releaseTable(ctx, order, log)
	h.publishOrderEvent(ctx, order, 0, pkg.EventOrderPaymentCompleted)

	links := aqm.RESTfulLinksFor(order)
	aqm.RespondSuccess(w, order, links...)
}

func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.CancelOrder")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	shopID, ok := h.parseShopID(w, r, log)
	if !ok {
		return
	}

	order, ok := h.loadOrder(w, r, log, shopID)
	if !ok {
		return
	}

	if order.Terminal() {
		aqm.RespondError(w, http.StatusBadRequest, "Order is already finalized")
		return
	}

	order.Cancel()
	if err := h.orderRepo.Save(ctx, order); err != nil {
		log.Error("cannot cancel order", "error", err, "order_id", order.ID.String())
		aqm.RespondError(w, http.StatusInternalServerError, "Could not cancel order")
		return
	}

	h.releaseTable(ctx, order, log)
	h.publishOrderEvent(ctx, order, 0, pkg.EventOrderCancelled)

	links := aqm.RESTfulLinksFor(order)
	aqm.RespondSuccess(w, order, links...)
}

func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.DeleteOrder")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	shopID, ok := h.parseShopID(w, r, log)
	if !ok {
		return
	}

	order, ok := h.loadOrder(w, r, log, shopID)
	if !ok {
		return
	}

	// Deleting an open order frees its table the same way cancelling does.
	if !order.Terminal() {
		h.releaseTable(ctx, order, log)
	}

	items, err := h.itemRepo.ListByOrder(ctx, order.ID)
	if err == nil {
		for _, item := range items {
			if err := h.itemRepo.Delete(ctx, item.ID); err != nil {
				log.Error("cannot delete order item", "error", err, "item_id", item.ID.String())
			}
		}
	}

	if ticket, err := h.ticketRepo.FindByOrder(ctx, order.ID); err == nil && ticket != nil {
		if err := h.ticketRepo.Delete(ctx, ticket.ID); err != nil {
			log.Error("cannot delete kitchen ticket", "error", err, "ticket_id", ticket.ID.String())
		}
	}

	if err := h.orderRepo.Delete(ctx, order.ID); err != nil {
		log.Error("cannot delete order", "error", err, "order_id", order.ID.String())
		aqm.RespondError(w, http.StatusInternalServerError, "Could not delete order")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Kitchen ticket Handlers

func (h *Handler) ListTickets(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListTickets")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	shopID, ok := h.parseShopID(w, r, log)
	if !ok {
		return
	}

	status := r.URL.Query().Get("status")

	var tickets []*Ticket
	var err error

	if status != "" {
		tickets, err = h.ticketRepo.ListByStatus(ctx, shopID, status)
	} else {
		tickets, err = h.ticketRepo.List(ctx, shopID)
	}

	if err != nil {
		log.Error("error retrieving tickets", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not retrieve tickets")
		return
	}

	aqm.RespondCollection(w, tickets, "kitchen-ticket")
}

func (h *Handler) GetTicket(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetTicket")
	defer finish()

	log := h.log(r)

	shopID, ok := h.parseShopID(w, r, log)
	if !ok {
		return
	}

	ticket, ok := h.loadTicket(w, r, log, shopID)
	if !ok {
		return
	}

	links := aqm.RESTfulLinksFor(ticket)
	aqm.RespondSuccess(w, ticket, links...)
}

func (h *Handler) UpdateTicketStatus(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.UpdateTicketStatus")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	shopID, ok := h.parseShopID(w, r, log)
	if !ok {
		return
	}

	ticket, ok := h.loadTicket(w, r, log, shopID)
	if !ok {
		return
	}

	req, ok := h.decodeTicketStatusPayload(w, r, log)
	if !ok {
		return
	}

	if !ValidateTicketStatus(req.Status) {
		aqm.RespondError(w, http.StatusBadRequest, "Invalid ticket status")
		return
	}

	if !ticket.CanAdvanceTo(req.Status) {
		aqm.RespondError(w, http.StatusConflict, "Ticket status cannot move backwards")
		return
	}

	previousStatus := ticket.Status
	switch req.Status {
	case TicketStatusPreparing:
		ticket.MarkAsPreparing()
	case TicketStatusReady:
		ticket.MarkAsReady()
	case TicketStatusServed:
		ticket.MarkAsServed()
	}

	if err := h.ticketRepo.Save(ctx, ticket); err != nil {
		log.Error("cannot update ticket", "error", err, "ticket_id", ticket.ID.String())
		aqm.RespondError(w, http.StatusInternalServerError, "Could not update ticket")
		return
	}

	h.syncOrderWithTicket(ctx, ticket, log)
	h.publishTicketEvent(ctx, ticket, previousStatus, pkg.EventKitchenTicketStatusChanged)

	links := aqm.RESTfulLinksFor(ticket)
	aqm.RespondSuccess(w, ticket, links...)
}

// syncOrderWithTicket keeps the order and its kitchen items in step with the
// kitchen's progress.
func (h *Handler) syncOrderWithTicket(ctx context.Context, ticket *Ticket, log aqm.Logger) {
	order, err := h.orderRepo.Get(ctx, ticket.OrderID)
	if err != nil || order == nil || order.Terminal() {
		return
	}

	switch ticket.Status {
	case TicketStatusPreparing:
		order.MarkAsPreparing()
	case TicketStatusReady:
		order.MarkAsReady()
	case TicketStatusServed:
		order.MarkAsServed()
	default:
		return
	}

	if err := h.orderRepo.Save(ctx, order); err != nil {
		log.Error("cannot sync order with ticket", "error", err, "order_id", order.ID.String())
		return
	}

	if ticket.Status != TicketStatusServed {
		return
	}

	items, err := h.itemRepo.ListByOrder(ctx, order.ID)
	if err != nil {
		return
	}
	for _, item := range items {
		if !item.RequiresKitchen || item.Status == ItemStatusServed {
			continue
		}
		item.MarkAsServed()
		if err := h.itemRepo.Save(ctx, item); err != nil {
			log.Error("cannot mark item served", "error", err, "item_id", item.ID.String())
		}
	}
}

// Helpers

type resolvedItem struct {
	req  OrderItemRequest
	info ProductInfo
}

// resolveItems prices every requested item through the catalog cache. An
// unknown or unreachable product aborts the whole batch.
func (h *Handler) resolveItems(w http.ResponseWriter, ctx context.Context, itemReqs []OrderItemRequest, log aqm.Logger) ([]resolvedItem, bool) {
	resolved := make([]resolvedItem, 0, len(itemReqs))
	for _, req := range itemReqs {
		info, err := h.products.Ensure(ctx, req.ProductID)
		if err != nil {
			if errors.Is(err, ErrValidation) || errors.Is(err, ErrNotFound) {
				aqm.RespondError(w, http.StatusBadRequest, "Unknown product "+req.ProductID.String())
				return nil, false
			}
			log.Error("cannot resolve product", "error", err, "product_id", req.ProductID.String())
			aqm.RespondError(w, http.StatusBadGateway, "Product catalog unavailable")
			return nil, false
		}
		resolved = append(resolved, resolvedItem{req: req, info: info})
	}
	return resolved, true
}

func buildItems(orderID uuid.UUID, resolved []resolvedItem) []*OrderItem {
	items := make([]*OrderItem, 0, len(resolved))
	for _, ri := range resolved {
		item := NewOrderItem()
		item.OrderID = orderID
		item.ProductID = ri.info.ID
		item.Name = ri.info.Name
		item.Quantity = ri.req.Quantity
		item.Price = ri.info.Price
		item.RequiresKitchen = ri.info.RequiresKitchen
		item.Notes = ri.req.Notes
		item.BeforeCreate()
		if !ri.info.RequiresKitchen {
			// Drinks and other pass-through items never visit the kitchen.
			item.MarkAsServed()
		}
		items = append(items, item)
	}
	return items
}

func itemsTotal(items []*OrderItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Subtotal()
	}
	return total
}

func needsKitchen(items []*OrderItem) bool {
	for _, item := range items {
		if item.RequiresKitchen {
			return true
		}
	}
	return false
}

func (h *Handler) openTicket(ctx context.Context, order *Order, priority string) (*Ticket, error) {
	number, err := h.ticketRepo.NextTicketNumber(ctx, order.ShopID)
	if err != nil {
		return nil, err
	}

	if priority == "" {
		priority = TicketPriorityNormal
	}

	eta := time.Now().Add(defaultPrepEstimate)

	ticket := NewTicket()
	ticket.ShopID = order.ShopID
	ticket.OrderID = order.ID
	ticket.TicketNumber = number
	ticket.Priority = priority
	ticket.EstimatedCompletion = &eta
	ticket.TableNumber = order.TableNumber
	ticket.BeforeCreate()

	if err := h.ticketRepo.Create(ctx, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

func (h *Handler) releaseTable(ctx context.Context, order *Order, log aqm.Logger) {
	if order.TableID == nil {
		return
	}
	if err := h.machine.ApplyOrderReleased(ctx, *order.TableID, order.ID); err != nil {
		log.Error("cannot release table", "error", err, "table_id", order.TableID.String(), "order_id", order.ID.String())
	}
}

func (h *Handler) log(r *http.Request) aqm.Logger {
	return h.logger.With("request_id", r.Context().Value("request_id"))
}

func (h *Handler) parseShopID(w http.ResponseWriter, r *http.Request, log aqm.Logger) (uuid.UUID, bool) {
	raw := r.Header.Get(ShopIDHeader)
	if raw == "" {
		log.Debug("missing shop id header")
		aqm.RespondError(w, http.StatusBadRequest, "Missing "+ShopIDHeader+" header")
		return uuid.Nil, false
	}

	shopID, err := uuid.Parse(raw)
	if err != nil {
		log.Debug("invalid shop id header", "shop_id", raw, "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Invalid "+ShopIDHeader+" header")
		return uuid.Nil, false
	}

	return shopID, true
}

func (h *Handler) parseIDParam(w http.ResponseWriter, r *http.Request, log aqm.Logger) (uuid.UUID, bool) {
	idStr := chi.URLParam(r, "id")
	if idStr == "" {
		log.Debug("missing id parameter")
		aqm.RespondError(w, http.StatusBadRequest, "Missing id parameter")
		return uuid.Nil, false
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		log.Debug("invalid id parameter", "id", idStr, "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Invalid id parameter")
		return uuid.Nil, false
	}

	return id, true
}

func (h *Handler) loadOrder(w http.ResponseWriter, r *http.Request, log aqm.Logger, shopID uuid.UUID) (*Order, bool) {
	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return nil, false
	}

	order, err := h.orderRepo.Get(r.Context(), id)
	if err != nil {
		log.Error("error loading order", "error", err, "id", id.String())
		aqm.RespondError(w, http.StatusNotFound, "Order not found")
		return nil, false
	}

	if order == nil || order.ShopID != shopID {
		aqm.RespondError(w, http.StatusNotFound, "Order not found")
		return nil, false
	}

	return order, true
}

func (h *Handler) loadTicket(w http.ResponseWriter, r *http.Request, log aqm.Logger, shopID uuid.UUID) (*Ticket, bool) {
	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return nil, false
	}

	ticket, err := h.ticketRepo.Get(r.Context(), id)
	if err != nil {
		log.Error("error loading ticket", "error", err, "id", id.String())
		aqm.RespondError(w, http.StatusNotFound, "Ticket not found")
		return nil, false
	}

	if ticket == nil || ticket.ShopID != shopID {
		aqm.RespondError(w, http.StatusNotFound, "Ticket not found")
		return nil, false
	}

	return ticket, true
}

// Event publishing

func (h *Handler) publishOrderEvent(ctx context.Context, order *Order, itemCount int, eventType string) {
	if h.publisher == nil || order == nil {
		return
	}

	event := pkg.OrderEvent{
		EventType:     eventType,
		OccurredAt:    time.Now().UTC(),
		ShopID:        order.ShopID.String(),
		OrderID:       order.ID.String(),
		OrderType:     order.OrderType,
		Status:        order.Status,
		Total:         order.Total,
		PaymentMethod: order.PaymentMethod,
		TableNumber:   order.TableNumber,
		ItemCount:     itemCount,
	}
	if order.TableID != nil {
		event.TableID = order.TableID.String()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("cannot marshal order event", "error", err, "order_id", order.ID.String())
		return
	}

	if err := h.publisher.Publish(ctx, pkg.OrdersTopic, payload); err != nil {
		h.logger.Error("cannot publish order event", "error", err, "order_id", order.ID.String())
	}
}

func (h *Handler) publishTicketEvent(ctx context.Context, ticket *Ticket, previousStatus, eventType string) {
	if h.publisher == nil || ticket == nil {
		return
	}

	event := pkg.TicketEvent{
		EventType:      eventType,
		OccurredAt:     time.Now().UTC(),
		ShopID:         ticket.ShopID.String(),
		TicketID:       ticket.ID.String(),
		TicketNumber:   ticket.TicketNumber,
		OrderID:        ticket.OrderID.String(),
		Status:         ticket.Status,
		PreviousStatus: previousStatus,
		Priority:       ticket.Priority,
		TableNumber:    ticket.TableNumber,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("cannot marshal ticket event", "error", err, "ticket_id", ticket.ID.String())
		return
	}

	if err := h.publisher.Publish(ctx, pkg.KitchenTicketsTopic, payload); err != nil {
		h.logger.Error("cannot publish ticket event", "error", err, "ticket_id", ticket.ID.String())
	}
}

// Payload decoding

func (h *Handler) decodeOrderCreatePayload(w http.ResponseWriter, r *http.Request, log aqm.Logger) (OrderCreateRequest, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Debug("error reading request body", "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Could not read request body")
		return OrderCreateRequest{}, false
	}

	if len(strings.TrimSpace(string(body))) == 0 {
		aqm.RespondError(w, http.StatusBadRequest, "Request body is empty")
		return OrderCreateRequest{}, false
	}

	var req OrderCreateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		log.Debug("error decoding JSON", "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Invalid JSON payload")
		return OrderCreateRequest{}, false
	}

	return req, true
}

func (h *Handler) decodeAddItemsPayload(w http.ResponseWriter, r *http.Request, log aqm.Logger) (AddItemsRequest, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Debug("error reading request body", "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Could not read request body")
		return AddItemsRequest{}, false
	}

	var req AddItemsRequest
	if err := json.Unmarshal(body, &req); err != nil {
		log.Debug("error decoding JSON", "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Invalid JSON payload")
		return AddItemsRequest{}, false
	}

	return req, true
}

func (h *Handler) decodeCompletePaymentPayload(w http.ResponseWriter, r *http.Request, log aqm.Logger) (CompletePaymentRequest, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Debug("error reading request body", "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Could not read request body")
		return CompletePaymentRequest{}, false
	}

	var req CompletePaymentRequest
	if err := json.Unmarshal(body, &req); err != nil {
		log.Debug("error decoding JSON", "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Invalid JSON payload")
		return CompletePaymentRequest{}, false
	}

	return req, true
}

func (h *Handler) decodeTicketStatusPayload(w http.ResponseWriter, r *http.Request, log aqm.Logger) (TicketStatusRequest, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Debug("error reading request body", "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Could not read request body")
		return TicketStatusRequest{}, false
	}

	var req TicketStatusRequest
	if err := json.Unmarshal(body, &req); err != nil {
		log.Debug("error decoding JSON", "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Invalid JSON payload")
		return TicketStatusRequest{}, false
	}

	return req, true
}
