package mongo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/maitreclub/maitre/internal/order"
)

type TicketRepo struct {
	collection *mongo.Collection
	counters   *mongo.Collection
}

func NewTicketRepo(db *mongo.Database) *TicketRepo {
	return &TicketRepo{
		collection: db.Collection("kitchen_tickets"),
		counters:   db.Collection("counters"),
	}
}

func (r *TicketRepo) Create(ctx context.Context, ticket *order.Ticket) error {
	if ticket == nil {
		return fmt.Errorf("ticket is nil")
	}

	if _, err := r.collection.InsertOne(ctx, ticket); err != nil {
		return fmt.Errorf("cannot create ticket: %w", err)
	}

	return nil
}

func (r *TicketRepo) Get(ctx context.Context, id uuid.UUID) (*order.Ticket, error) {
	var ticket order.Ticket
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&ticket)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot get ticket: %w", err)
	}
	return &ticket, nil
}

func (r *TicketRepo) List(ctx context.Context, shopID uuid.UUID) ([]*order.Ticket, error) {
	return r.find(ctx, bson.M{"shop_id": shopID})
}

func (r *TicketRepo) ListByStatus(ctx context.Context, shopID uuid.UUID, status string) ([]*order.Ticket, error) {
	return r.find(ctx, bson.M{"shop_id": shopID, "status": status})
}

func (r *TicketRepo) FindByOrder(ctx context.Context, orderID uuid.UUID) (*order.Ticket, error) {
	var ticket order.Ticket
	err := r.collection.FindOne(ctx, bson.M{"order_id": orderID}).Decode(&ticket)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot find ticket for order: %w", err)
	}
	return &ticket, nil
}

// NextTicketNumber draws from a per-shop atomic counter so expo printouts get
// short sequential numbers even under concurrent order creation.
func (r *TicketRepo) NextTicketNumber(ctx context.Context, shopID uuid.UUID) (int, error) {
	filter := bson.M{"_id": "tickets:" + shopID.String()}
	update := bson.M{"$inc": bson.M{"value": 1}}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var counter struct {
		Value int `bson:"value"`
	}
	if err := r.counters.FindOneAndUpdate(ctx, filter, update, opts).Decode(&counter); err != nil {
		return 0, fmt.Errorf("cannot allocate ticket number: %w", err)
	}
	return counter.Value, nil
}

func (r *TicketRepo) find(ctx context.Context, filter bson.M) ([]*order.Ticket, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("cannot list tickets: %w", err)
	}
	defer cursor.Close(ctx)

	var result []*order.Ticket
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("cannot decode tickets: %w", err)
	}

	return result, nil
}

func (r *TicketRepo) Save(ctx context.Context, ticket *order.Ticket) error {
	if ticket == nil {
		return fmt.Errorf("ticket is nil")
	}

	filter := bson.M{"_id": ticket.ID}
	update := bson.M{"$set": ticket}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("cannot update ticket: %w", err)
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("ticket not found")
	}

	return nil
}

func (r *TicketRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("cannot delete ticket: %w", err)
	}

	if result.DeletedCount == 0 {
		return fmt.Errorf("ticket not found")
	}

	return nil
}
