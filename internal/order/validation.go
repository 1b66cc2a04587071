package order

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

func ValidateOrderCreate(ctx context.Context, req OrderCreateRequest) []string {
	var errors []string

	switch req.OrderType {
	case "", TypeDineIn, TypeTakeout, TypeDelivery:
	default:
		errors = append(errors, "invalid order_type")
	}

	orderType := req.OrderType
	if orderType == "" {
		orderType = TypeDineIn
	}
	if orderType == TypeDineIn && (req.TableID == nil || *req.TableID == uuid.Nil) {
		errors = append(errors, "table_id is required for dine_in orders")
	}

	if len(req.Items) == 0 {
		errors = append(errors, "at least one item is required")
	}
	errors = append(errors, validateItems(req.Items)...)

	if req.Priority != "" && req.Priority != TicketPriorityNormal && req.Priority != TicketPriorityRush {
		errors = append(errors, "invalid priority")
	}

	return errors
}

func ValidateAddItems(ctx context.Context, req AddItemsRequest) []string {
	var errors []string

	if len(req.Items) == 0 {
		errors = append(errors, "at least one item is required")
	}
	errors = append(errors, validateItems(req.Items)...)

	return errors
}

func validateItems(items []OrderItemRequest) []string {
	var errors []string

	for _, item := range items {
		if item.ProductID == uuid.Nil {
			errors = append(errors, "product_id is required")
		}
		if item.Quantity <= 0 {
			errors = append(errors, "quantity must be greater than 0")
		}
	}

	return errors
}

func ValidateCompletePayment(ctx context.Context, req CompletePaymentRequest) []string {
	var errors []string

	if strings.TrimSpace(req.PaymentMethod) == "" {
		errors = append(errors, "payment_method is required")
	}

	return errors
}

func ValidateTicketStatus(status string) bool {
	switch status {
	case TicketStatusNew, TicketStatusPreparing, TicketStatusReady, TicketStatusServed:
		return true
	}
	return false
}
