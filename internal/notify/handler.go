package notify

import (
	"net/http"

	aqm "github.com/appetiteclub/apt"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// ShopIDHeader scopes a websocket subscription to one shop.
const ShopIDHeader = "X-Shop-ID"

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// POS terminals connect from their own origins.
		return true
	},
}

// Handler upgrades connections and attaches them to the hub.
type Handler struct {
	hub    *Hub
	logger aqm.Logger
}

func NewHandler(hub *Hub, logger aqm.Logger) *Handler {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Handler{hub: hub, logger: logger}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws", h.Serve)
}

// Serve upgrades the request to a websocket and streams the shop's events
// until either side closes the connection.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	shopID := r.Header.Get(ShopIDHeader)
	if shopID == "" {
		// Browser websocket clients cannot set headers during the handshake.
		shopID = r.URL.Query().Get("shop_id")
	}
	if _, err := uuid.Parse(shopID); err != nil {
		aqm.RespondError(w, http.StatusBadRequest, "Invalid or missing shop ID")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	client := newClient(h.hub, conn, shopID)
	h.hub.register(client)

	go client.writePump()
	go client.readPump()
}
