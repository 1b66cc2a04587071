package notify

import (
	"context"
	"encoding/json"
	"fmt"

	aqm "github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/events"

	"github.com/maitreclub/maitre/pkg"
)

// Frame is the envelope delivered to websocket clients. Payload carries the
// original event exactly as it was published.
type Frame struct {
	Topic   string          `json:"topic"`
	Payload json.RawMessage `json:"payload"`
}

// Relay subscribes to the engine's event topics and forwards every event to
// the websocket hub of the shop it belongs to.
type Relay struct {
	subscriber events.Subscriber
	hub        *Hub
	logger     aqm.Logger
}

func NewRelay(sub events.Subscriber, hub *Hub, logger aqm.Logger) *Relay {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Relay{
		subscriber: sub,
		hub:        hub,
		logger:     logger,
	}
}

func (r *Relay) Start(ctx context.Context) error {
	if r.subscriber == nil {
		return fmt.Errorf("event relay not configured")
	}

	topics := []string{
		pkg.TableStatusTopic,
		pkg.TablePlacementTopic,
		pkg.OrdersTopic,
		pkg.KitchenTicketsTopic,
	}

	for _, topic := range topics {
		topic := topic
		r.logger.Info("starting websocket relay", "topic", topic)
		if err := r.subscriber.Subscribe(ctx, topic, func(ctx context.Context, msg []byte) error {
			return r.forward(topic, msg)
		}); err != nil {
			return fmt.Errorf("cannot subscribe to %s: %w", topic, err)
		}
	}
	return nil
}

// forward routes one published event to the clients of its shop. Events
// without a shop id are dropped, there is no global channel.
func (r *Relay) forward(topic string, msg []byte) error {
	var envelope struct {
		ShopID string `json:"shop_id"`
	}
	if err := json.Unmarshal(msg, &envelope); err != nil {
		r.logger.Info("invalid event payload", "topic", topic, "error", err)
		return nil
	}
	if envelope.ShopID == "" {
		r.logger.Info("event without shop id", "topic", topic)
		return nil
	}

	frame, err := json.Marshal(Frame{Topic: topic, Payload: msg})
	if err != nil {
		r.logger.Error("cannot encode websocket frame", "topic", topic, "error", err)
		return nil
	}

	r.hub.Broadcast(envelope.ShopID, frame)
	return nil
}
