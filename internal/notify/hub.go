package notify

import (
	"sync"
	"time"

	aqm "github.com/appetiteclub/apt"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 4 * 1024
	sendBuffer     = 256
)

// Hub fans events out to the websocket clients of each shop. Clients only
// ever see events for the shop they connected for.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
	logger  aqm.Logger
}

func NewHub(logger aqm.Logger) *Hub {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
		logger:  logger,
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	shop := h.clients[c.shopID]
	if shop == nil {
		shop = make(map[*Client]struct{})
		h.clients[c.shopID] = shop
	}
	shop[c] = struct{}{}
	h.logger.Debug("websocket client connected", "shop_id", c.shopID, "clients", len(shop))
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	shop, ok := h.clients[c.shopID]
	if !ok {
		return
	}
	if _, ok := shop[c]; !ok {
		return
	}
	delete(shop, c)
	close(c.send)
	if len(shop) == 0 {
		delete(h.clients, c.shopID)
	}
	h.logger.Debug("websocket client disconnected", "shop_id", c.shopID)
}

// Broadcast delivers the payload to every client of the shop. Slow clients
// get dropped rather than blocking the rest of the fanout.
func (h *Hub) Broadcast(shopID string, payload []byte) {
	h.mu.RLock()
	var stalled []*Client
	for c := range h.clients[shopID] {
		select {
		case c.send <- payload:
		default:
			stalled = append(stalled, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range stalled {
		h.logger.Info("dropping stalled websocket client", "shop_id", shopID)
		h.unregister(c)
	}
}

// ClientCount reports the number of connected clients for the shop.
func (h *Hub) ClientCount(shopID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[shopID])
}

// Client is a single websocket connection bound to one shop.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	shopID string
	send   chan []byte
}

func newClient(hub *Hub, conn *websocket.Conn, shopID string) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		shopID: shopID,
		send:   make(chan []byte, sendBuffer),
	}
}

// readPump drains inbound frames to keep the connection's control handlers
// running. The stream is one-way, incoming payloads are ignored.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Debug("websocket read failed", "error", err, "shop_id", c.shopID)
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
