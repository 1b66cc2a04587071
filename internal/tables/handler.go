package tables

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	aqm "github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/events"
	"github.com/appetiteclub/apt/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/maitreclub/maitre/pkg"
)

const MaxBodyBytes = 1 << 20

const tableEventSource = "coordination-engine"

// ShopIDHeader carries the acting shop on every request. The engine treats it
// as an explicit parameter rather than ambient state so concurrent requests
// for different shops never bleed into each other.
const ShopIDHeader = "X-Shop-ID"

type Handler struct {
	tableRepo       TableRepo
	reservationRepo ReservationRepo
	machine         *StateMachine
	floorPlan       *FloorPlan
	suggester       *Suggester
	publisher       events.Publisher
	logger          aqm.Logger
	config          *aqm.Config
	tlm             *telemetry.HTTP
}

type HandlerDeps struct {
	TableRepo       TableRepo
	ReservationRepo ReservationRepo
	Machine         *StateMachine
	FloorPlan       *FloorPlan
	Suggester       *Suggester
	Publisher       events.Publisher
}

func NewHandler(hd HandlerDeps, config *aqm.Config, logger aqm.Logger) *Handler {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Handler{
		tableRepo:       hd.TableRepo,
		reservationRepo: hd.ReservationRepo,
		machine:         hd.Machine,
		floorPlan:       hd.FloorPlan,
		suggester:       hd.Suggester,
		publisher:       hd.Publisher,
		logger:          logger,
		config:          config,
		tlm:             telemetry.NewHTTP(),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/tables", func(r chi.Router) {
		r.Post("/", h.CreateTable)
		r.Get("/", h.ListTables)
		r.Get("/suggestions", h.SuggestTables)
		r.Get("/{id}", h.GetTable)
		r.Patch("/{id}", h.UpdateTable)
		r.Patch("/{id}/position", h.MoveTable)
		r.Delete("/{id}", h.DeleteTable)
	})

	r.Get("/floor-plan", h.GetFloorPlan)

	r.Route("/reservations", func(r chi.Router) {
		r.Post("/", h.CreateReservation)
		r.Get("/", h.ListReservations)
		r.Get("/waitlist", h.ListWaitlist)
		r.Get("/{id}", h.GetReservation)
		r.Patch("/{id}", h.UpdateReservation)
		r.Delete("/{id}", h.DeleteReservation)
	})
}

// Table Handlers

func (h *Handler) CreateTable(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.CreateTable")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	shopID, ok := h.parseShopID(w, r, log)
	if !ok {
		return
	}

	req, ok := h.decodeTableCreatePayload(w, r, log)
	if !ok {
		return
	}

	validationErrors := ValidateTableCreate(ctx, req)
	if len(validationErrors) > 0 {
		log.Debug("validation failed", "errors", validationErrors)
		aqm.RespondError(w, http.StatusBadRequest, strings.Join(validationErrors, "; "))
		return
	}

	if existing, err := h.tableRepo.GetByNumber(ctx, shopID, req.Number); err == nil && existing != nil {
		aqm.RespondError(w, http.StatusConflict, "Table number already in use")
		return
	}

	table := NewTable()
	table.ShopID = shopID
	table.Number = req.Number
	table.Capacity = req.Capacity
	table.Section = req.Section
	table.BeforeCreate()

	if req.Position != nil {
		accepted, err := h.floorPlan.Resolve(ctx, shopID, req.Position.X, req.Position.Y, table.ID, DefaultBounds)
		if err != nil {
			log.Error("cannot resolve table position", "error", err)
			aqm.RespondError(w, http.StatusInternalServerError, "Could not place table")
			return
		}
		table.Position = &accepted
	}

	if err := h.tableRepo.Create(ctx, table); err != nil {
		log.Error("cannot create table", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not create table")
		return
	}

	h.publishTableStatusChanged(ctx, table, "", "table.created")

	links := aqm.RESTfulLinksFor(table)
	w.WriteHeader(http.StatusCreated)
	aqm.RespondSuccess(w, table, links...)
}

func (h *Handler) GetTable(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetTable")
	defer finish()

	log := h.log(r)

	shopID, ok := h.parseShopID(w, r, log)
	if !ok {
		return
	}

	table, ok := h.loadTable(w, r, log, shopID)
	if !ok {
		return
	}

	links := aqm.RESTfulLinksFor(table)
	aqm.RespondSuccess(w, table, links...)
}

func (h *Handler) ListTables(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListTables")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	shopID, ok := h.parseShopID(w, r, log)
	if !ok {
		return
	}

	status := r.URL.Query().Get("status")

	var tables []*Table
	var err error

	if status != "" {
		tables, err = h.tableRepo.ListByStatus(ctx, shopID, status)
	} else {
		tables, err = h.tableRepo.List(ctx, shopID)
	}

	if err != nil {
		log.Error("error retrieving tables", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not retrieve tables")
		return
	}

	aqm.RespondCollection(w, tables, "table")
}

func (h *Handler) UpdateTable(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.UpdateTable")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	shopID, ok := h.parseShopID(w, r, log)
	if !ok {
		return
	}

	table, ok := h.loadTable(w, r, log, shopID)
	if !ok {
		return
	}

	req, ok := h.decodeTableUpdatePayload(w, r, log)
	if !ok {
		return
	}

	validationErrors := ValidateTableUpdate(ctx, table.ID, req)
	if len(validationErrors) > 0 {
		log.Debug("validation failed", "errors", validationErrors)
		aqm.RespondError(w, http.StatusBadRequest, strings.Join(validationErrors, "; "))
		return
	}

	previousStatus := table.Status
	statusChanged := false
	otherChanged := false

	if req.Number != "" && req.Number != table.Number {
		table.Number = req.Number
		otherChanged = true
	}
	if req.Capacity > 0 && req.Capacity != table.Capacity {
		table.Capacity = req.Capacity
		otherChanged = true
	}
	if req.Section != "" && req.Section != table.Section {
		table.Section = req.Section
		otherChanged = true
	}
	if req.Status != "" && req.Status != table.Status {
		if !CanTransition(table.Status, req.Status) {
			aqm.RespondError(w, http.StatusConflict, "Illegal status transition")
			return
		}
		statusChanged = true
	}

	table.BeforeUpdate()

	if otherChanged {
		if err := h.tableRepo.Save(ctx, table); err != nil {
			log.Error("cannot update table", "error", err)
			aqm.RespondError(w, http.StatusInternalServerError, "Could not update table")
			return
		}
	}

	if statusChanged {
		// The status flip goes through a compare-and-set so a concurrent
		// transition is surfaced instead of clobbered.
		applied, err := h.tableRepo.SaveStatusIf(ctx, table.ID, previousStatus, req.Status)
		if err != nil {
			log.Error("cannot update table status", "error", err)
			aqm.RespondError(w, http.StatusInternalServerError, "Could not update table")
			return
		}
		if !applied {
			aqm.RespondError(w, http.StatusConflict, "Table status changed concurrently")
			return
		}
		table.Status = req.Status
		h.publishTableStatusChanged(ctx, table, previousStatus, "table.updated")
	}

	links := aqm.RESTfulLinksFor(table)
	aqm.RespondSuccess(w, table, links...)
}

// MoveTable accepts a drag-and-drop target and commits the nearest free
// position through the floor plan engine.
func (h *Handler) MoveTable(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.MoveTable")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	shopID, ok := h.parseShopID(w, r, log)
	if !ok {
		return
	}

	table, ok := h.loadTable(w, r, log, shopID)
	if !ok {
		return
	}

	req, ok := h.decodeTablePositionPayload(w, r, log)
	if !ok {
		return
	}

	bounds := DefaultBounds
	if req.Bounds != nil {
		bounds = *req.Bounds
	}

	accepted, err := h.floorPlan.CommitPosition(ctx, table, req.X, req.Y, bounds)
	if err != nil {
		log.Error("cannot commit table position", "error", err, "table_id", table.ID.String())
		aqm.RespondError(w, http.StatusInternalServerError, "Could not move table")
		return
	}

	h.publishTablePositionChanged(ctx, table, accepted)

	links := aqm.RESTfulLinksFor(table)
	aqm.RespondSuccess(w, table, links...)
}

func (h *Handler) DeleteTable(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.DeleteTable")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	shopID, ok := h.parseShopID(w, r, log)
	if !ok {
		return
	}

	table, ok := h.loadTable(w, r, log, shopID)
	if !ok {
		return
	}

	if err := h.tableRepo.Delete(ctx, table.ID); err != nil {
		log.Error("cannot delete table", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not delete table")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetFloorPlan returns every table with its effective canvas position,
// resolving default grid slots for tables that were never explicitly placed.
func (h *Handler) GetFloorPlan(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetFloorPlan")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	shopID, ok := h.parseShopID(w, r, log)
	if !ok {
		return
	}

	tables, err := h.tableRepo.List(ctx, shopID)
	if err != nil {
		log.Error("error retrieving floor plan", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not retrieve floor plan")
		return
	}

	type placedTable struct {
		*Table
		Effective Position `json:"effective_position"`
	}

	placed := make([]placedTable, 0, len(tables))
	for i, t := range tables {
		placed = append(placed, placedTable{Table: t, Effective: EffectivePosition(t, i)})
	}

	aqm.RespondCollection(w, placed, "floor-plan")
}

// SuggestTables ranks candidate tables for a party.
func (h *Handler) SuggestTables(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.SuggestTables")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	shopID, ok := h.parseShopID(w, r, log)
	if !ok {
		return
	}

	req, ok := h.parseSuggestionQuery(w, r, log)
	if !ok {
		return
	}

	validationErrors := ValidateSuggestionRequest(req)
	if len(validationErrors) > 0 {
		log.Debug("validation failed", "errors", validationErrors)
		aqm.RespondError(w, http.StatusBadRequest, strings.Join(validationErrors, "; "))
		return
	}

	result, err := h.suggester.Suggest(ctx, shopID, Criteria{
		PartySize:        req.PartySize,
		ReservationTime:  req.ReservationTime,
		PreferredSection: req.PreferredSection,
	})
	if err != nil {
		log.Error("cannot rank tables", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not rank tables")
		return
	}

	aqm.RespondSuccess(w, result)
}

// Reservation Handlers

func (h *Handler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.CreateReservation")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	shopID, ok := h.parseShopID(w, r, log)
	if !ok {
		return
	}

	req, ok := h.decodeReservationCreatePayload(w, r, log)
	if !ok {
		return
	}

	validationErrors := ValidateReservationCreate(ctx, req)
	if len(validationErrors) > 0 {
		log.Debug("validation failed", "errors", validationErrors)
		aqm.RespondError(w, http.StatusBadRequest, strings.Join(validationErrors, "; "))
		return
	}

	reservation := NewReservation()
	reservation.ShopID = shopID
	reservation.TableID = req.TableID
	reservation.CustomerName = req.CustomerName
	reservation.CustomerPhone = req.CustomerPhone
	reservation.PartySize = req.PartySize
	reservation.ReservedFor = req.ReservationTime
	reservation.SpecialInstructions = req.SpecialInstructions
	if req.Waitlist && reservation.ReservedFor.IsZero() {
		reservation.ReservedFor = time.Now()
	}
	reservation.BeforeCreate()

	if req.TableID != nil && !req.Waitlist {
		if err := h.machine.ApplyReservationHold(ctx, *req.TableID); err != nil {
			log.Info("cannot hold table for reservation", "error", err, "table_id", req.TableID.String())
			aqm.RespondError(w, http.StatusConflict, err.Error())
			return
		}
	}

	if err := h.reservationRepo.Create(ctx, reservation); err != nil {
		log.Error("cannot create reservation", "error", err)
		if req.TableID != nil && !req.Waitlist {
			// The hold was taken above; give the table back so a failed
			// write does not strand it in reserved.
			if relErr := h.machine.ApplyReservationReleased(ctx, *req.TableID); relErr != nil {
				log.Error("cannot release reservation hold", "error", relErr, "table_id", req.TableID.String())
			}
		}
		aqm.RespondError(w, http.StatusInternalServerError, "Could not create reservation")
		return
	}

	if req.TableID != nil && !req.Waitlist {
		h.publishTableStatusForID(ctx, *req.TableID, "reservation.created")
	}

	links := aqm.RESTfulLinksFor(reservation)
	w.WriteHeader(http.StatusCreated)
	aqm.RespondSuccess(w, reservation, links...)
}

func (h *Handler) GetReservation(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetReservation")
	defer finish()

	log := h.log(r)

	shopID, ok := h.parseShopID(w, r, log)
	if !ok {
		return
	}

	reservation, ok := h.loadReservation(w, r, log, shopID)
	if !ok {
		return
	}

	links := aqm.RESTfulLinksFor(reservation)
	aqm.RespondSuccess(w, reservation, links...)
}

func (h *Handler) ListReservations(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListReservations")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	shopID, ok := h.parseShopID(w, r, log)
	if !ok {
		return
	}

	status := r.URL.Query().Get("status")

	var reservations []*Reservation
	var err error

	if status != "" {
		reservations, err = h.reservationRepo.ListByStatus(ctx, shopID, status)
	} else {
		reservations, err = h.reservationRepo.List(ctx, shopID)
	}

	if err != nil {
		log.Error("error retrieving reservations", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not retrieve reservations")
		return
	}

	aqm.RespondCollection(w, reservations, "reservation")
}

// ListWaitlist returns waiting walk-ins with their elapsed wait, longest
// waiting first.
func (h *Handler) ListWaitlist(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListWaitlist")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	shopID, ok := h.parseShopID(w, r, log)
	if !ok {
		return
	}

	waiting, err := h.reservationRepo.ListByStatus(ctx, shopID, ReservationWaiting)
	if err != nil {
		log.Error("error retrieving waitlist", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not retrieve waitlist")
		return
	}

	type waitlistEntry struct {
		*Reservation
		WaitingFor string `json:"waiting_for"`
	}

	now := time.Now()
	entries := make([]waitlistEntry, 0, len(waiting))
	for _, res := range waiting {
		entries = append(entries, waitlistEntry{
			Reservation: res,
			WaitingFor:  res.ElapsedWait(now).Round(time.Minute).String(),
		})
	}

	aqm.RespondCollection(w, entries, "waitlist")
}

func (h *Handler) UpdateReservation(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.UpdateReservation")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	shopID, ok := h.parseShopID(w, r, log)
	if !ok {
		return
	}

	reservation, ok := h.loadReservation(w, r, log, shopID)
	if !ok {
		return
	}

	req, ok := h.decodeReservationUpdatePayload(w, r, log)
	if !ok {
		return
	}

	if req.Status != "" && !ValidateReservationStatus(req.Status) {
		aqm.RespondError(w, http.StatusBadRequest, "Invalid reservation status")
		return
	}

	if reservation.Terminal() && req.Status != "" {
		aqm.RespondError(w, http.StatusBadRequest, "Reservation already finalized")
		return
	}

	if req.TableID != nil {
		reservation.TableID = req.TableID
	}
	if req.CustomerName != "" {
		reservation.CustomerName = req.CustomerName
	}
	if req.CustomerPhone != "" {
		reservation.CustomerPhone = req.CustomerPhone
	}
	if req.PartySize > 0 {
		reservation.PartySize = req.PartySize
	}
	if req.ReservationTime != nil {
		reservation.ReservedFor = *req.ReservationTime
	}
	if req.SpecialInstructions != "" {
		reservation.SpecialInstructions = req.SpecialInstructions
	}

	statusChanged := req.Status != "" && req.Status != reservation.Status
	if statusChanged {
		applyReservationStatus(reservation, req.Status)
	}

	reservation.BeforeUpdate()

	if err := h.reservationRepo.Save(ctx, reservation); err != nil {
		log.Error("cannot update reservation", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not update reservation")
		return
	}

	if statusChanged {
		h.syncTableWithReservation(ctx, reservation, log)
	}

	links := aqm.RESTfulLinksFor(reservation)
	aqm.RespondSuccess(w, reservation, links...)
}

// applyReservationStatus mutates the reservation only. The table side runs
// after the reservation has been persisted so a failed write never leaves
// the table transitioned while the reservation stays behind.
func applyReservationStatus(reservation *Reservation, status string) {
	switch status {
	case ReservationSeated:
		reservation.MarkAsSeated()
	case ReservationCancelled:
		reservation.Cancel()
	case ReservationNoShow:
		reservation.MarkAsNoShow()
	case ReservationNotified:
		reservation.MarkAsNotified()
	default:
		reservation.Status = status
		reservation.UpdatedAt = time.Now()
	}
}

// syncTableWithReservation is the reservation-side entry into the table
// state machine: seating occupies the reservation's table, cancellation and
// no-show free a held one. The reservation is already saved at this point,
// so a table that cannot follow is logged rather than failing the request.
func (h *Handler) syncTableWithReservation(ctx context.Context, reservation *Reservation, log aqm.Logger) {
	if reservation.TableID == nil {
		return
	}
	tableID := *reservation.TableID

	switch reservation.Status {
	case ReservationSeated:
		if err := h.machine.ApplyPartySeated(ctx, tableID); err != nil {
			log.Error("cannot occupy table for seated reservation", "error", err, "table_id", tableID.String())
			return
		}
		h.publishTableStatusForID(ctx, tableID, "reservation.seated")
	case ReservationCancelled:
		if err := h.machine.ApplyReservationReleased(ctx, tableID); err != nil {
			log.Error("cannot free table for cancelled reservation", "error", err, "table_id", tableID.String())
			return
		}
		h.publishTableStatusForID(ctx, tableID, "reservation.cancelled")
	case ReservationNoShow:
		if err := h.machine.ApplyReservationReleased(ctx, tableID); err != nil {
			log.Error("cannot free table for no-show reservation", "error", err, "table_id", tableID.String())
			return
		}
		h.publishTableStatusForID(ctx, tableID, "reservation.no_show")
	}
}

func (h *Handler) DeleteReservation(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.DeleteReservation")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	shopID, ok := h.parseShopID(w, r, log)
	if !ok {
		return
	}

	reservation, ok := h.loadReservation(w, r, log, shopID)
	if !ok {
		return
	}

	if reservation.TableID != nil && !reservation.Terminal() {
		if err := h.machine.ApplyReservationReleased(ctx, *reservation.TableID); err != nil {
			log.Info("cannot free table for deleted reservation", "error", err, "table_id", reservation.TableID.String())
		}
	}

	if err := h.reservationRepo.Delete(ctx, reservation.ID); err != nil {
		log.Error("cannot delete reservation", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not delete reservation")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Event publishing

func (h *Handler) publishTableStatusChanged(ctx context.Context, table *Table, previousStatus, reason string) {
	if h.publisher == nil || table == nil {
		return
	}

	event := pkg.TableStatusEvent{
		EventType:      pkg.EventTableStatusChanged,
		ShopID:         table.ShopID.String(),
		TableID:        table.ID.String(),
		Status:         table.Status,
		PreviousStatus: previousStatus,
		Reason:         reason,
		Source:         tableEventSource,
		OccurredAt:     time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("cannot marshal table status event", "error", err, "table_id", table.ID.String())
		return
	}

	if err := h.publisher.Publish(ctx, pkg.TableStatusTopic, payload); err != nil {
		h.logger.Error("cannot publish table status event", "error", err, "table_id", table.ID.String())
	}
}

func (h *Handler) publishTableStatusForID(ctx context.Context, tableID uuid.UUID, reason string) {
	table, err := h.tableRepo.Get(ctx, tableID)
	if err != nil || table == nil {
		return
	}
	h.publishTableStatusChanged(ctx, table, "", reason)
}

func (h *Handler) publishTablePositionChanged(ctx context.Context, table *Table, accepted Position) {
	if h.publisher == nil || table == nil {
		return
	}

	event := pkg.TablePositionEvent{
		EventType:  pkg.EventTablePositionChanged,
		ShopID:     table.ShopID.String(),
		TableID:    table.ID.String(),
		X:          accepted.X,
		Y:          accepted.Y,
		Source:     tableEventSource,
		OccurredAt: time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("cannot marshal table position event", "error", err, "table_id", table.ID.String())
		return
	}

	if err := h.publisher.Publish(ctx, pkg.TablePlacementTopic, payload); err != nil {
		h.logger.Error("cannot publish table position event", "error", err, "table_id", table.ID.String())
	}
}

// Helper methods

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

func (h *Handler) loadTable(w http.ResponseWriter, r *http.Request, log aqm.Logger, shopID uuid.UUID) (*Table, bool) {
	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return nil, false
	}

	table, err := h.tableRepo.Get(r.Context(), id)
	if err != nil {
		log.Error("error loading table", "error", err, "id", id.String())
		aqm.RespondError(w, http.StatusNotFound, "Table not found")
		return nil, false
	}

	if table == nil || table.ShopID != shopID {
		aqm.RespondError(w, http.StatusNotFound, "Table not found")
		return nil, false
	}

	return table, true
}

func (h *Handler) loadReservation(w http.ResponseWriter, r *http.Request, log aqm.Logger, shopID uuid.UUID) (*Reservation, bool) {
	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return nil, false
	}

	reservation, err := h.reservationRepo.Get(r.Context(), id)
	if err != nil {
		log.Error("error loading reservation", "error", err, "id", id.String())
		aqm.RespondError(w, http.StatusNotFound, "Reservation not found")
		return nil, false
	}

	if reservation == nil || reservation.ShopID != shopID {
		aqm.RespondError(w, http.StatusNotFound, "Reservation not found")
		return nil, false
	}

	return reservation, true
}

func (h *Handler) parseSuggestionQuery(w http.ResponseWriter, r *http.Request, log aqm.Logger) (SuggestionRequest, bool) {
	var req SuggestionRequest

	q := r.URL.Query()
	if raw := q.Get("party_size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			log.Debug("invalid party size", "party_size", raw)
			aqm.RespondError(w, http.StatusBadRequest, "Invalid party_size")
			return req, false
		}
		req.PartySize = size
	}
	if raw := q.Get("reservation_time"); raw != "" {
		at, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			log.Debug("invalid reservation time", "reservation_time", raw)
			aqm.RespondError(w, http.StatusBadRequest, "Invalid reservation_time, use RFC3339")
			return req, false
		}
		req.ReservationTime = &at
	}
	req.PreferredSection = q.Get("section")

	return req, true
}

func (h *Handler) decodeTableCreatePayload(w http.ResponseWriter, r *http.Request, log aqm.Logger) (TableCreateRequest, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Debug("error reading request body", "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Could not read request body")
		return TableCreateRequest{}, false
	}

	if len(strings.TrimSpace(string(body))) == 0 {
		aqm.RespondError(w, http.StatusBadRequest, "Request body is empty")
		return TableCreateRequest{}, false
	}

	var req TableCreateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		log.Debug("error decoding JSON", "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Invalid JSON payload")
		return TableCreateRequest{}, false
	}

	return req, true
}

func (h *Handler) decodeTableUpdatePayload(w http.ResponseWriter, r *http.Request, log aqm.Logger) (TableUpdateRequest, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Debug("error reading request body", "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Could not read request body")
		return TableUpdateRequest{}, false
	}

	var req TableUpdateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		log.Debug("error decoding JSON", "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Invalid JSON payload")
		return TableUpdateRequest{}, false
	}

	return req, true
}

func (h *Handler) decodeTablePositionPayload(w http.ResponseWriter, r *http.Request, log aqm.Logger) (TablePositionRequest, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Debug("error reading request body", "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Could not read request body")
		return TablePositionRequest{}, false
	}

	var req TablePositionRequest
	if err := json.Unmarshal(body, &req); err != nil {
		log.Debug("error decoding JSON", "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Invalid JSON payload")
		return TablePositionRequest{}, false
	}

	return req, true
}

func (h *Handler) decodeReservationCreatePayload(w http.ResponseWriter, r *http.Request, log aqm.Logger) (ReservationCreateRequest, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Debug("error reading request body", "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Could not read request body")
		return ReservationCreateRequest{}, false
	}

	if len(strings.TrimSpace(string(body))) == 0 {
		aqm.RespondError(w, http.StatusBadRequest, "Request body is empty")
		return ReservationCreateRequest{}, false
	}

	var req ReservationCreateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		log.Debug("error decoding JSON", "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Invalid JSON payload")
		return ReservationCreateRequest{}, false
	}

	return req, true
}

func (h *Handler) decodeReservationUpdatePayload(w http.ResponseWriter, r *http.Request, log aqm.Logger) (ReservationUpdateRequest, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Debug("error reading request body", "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Could not read request body")
		return ReservationUpdateRequest{}, false
	}

	var req ReservationUpdateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		log.Debug("error decoding JSON", "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Invalid JSON payload")
		return ReservationUpdateRequest{}, false
	}

	return req, true
}
