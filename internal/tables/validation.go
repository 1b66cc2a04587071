package tables

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

func ValidateTableCreate(ctx context.Context, req TableCreateRequest) []string {
	var errors []string

	if strings.TrimSpace(req.Number) == "" {
		errors = append(errors, "number is required")
	}

	if req.Capacity <= 0 {
		errors = append(errors, "capacity must be greater than 0")
	}

	return errors
}

func ValidateTableUpdate(ctx context.Context, id uuid.UUID, req TableUpdateRequest) []string {
	var errors []string

	if id == uuid.Nil {
		errors = append(errors, "invalid table id")
	}

	if req.Capacity < 0 {
		errors = append(errors, "capacity must be greater than 0")
	}

	if req.Status != "" {
		validStatuses := []string{StatusAvailable, StatusOccupied, StatusReserved, StatusCleaning}
		valid := false
		for _, s := range validStatuses {
			if req.Status == s {
				valid = true
				break
			}
		}
		if !valid {
			errors = append(errors, "invalid status")
		}
	}

	return errors
}

func ValidateReservationCreate(ctx context.Context, req ReservationCreateRequest) []string {
	var errors []string

	if req.PartySize <= 0 {
		errors = append(errors, "party_size must be greater than 0")
	}

	if strings.TrimSpace(req.CustomerName) == "" {
		errors = append(errors, "customer_name is required")
	}

	if !req.Waitlist && req.ReservationTime.IsZero() {
		errors = append(errors, "reservation_time is required")
	}

	return errors
}

func ValidateReservationStatus(status string) bool {
	switch status {
	case ReservationWaiting, ReservationNotified, ReservationSeated, ReservationCancelled, ReservationNoShow:
		return true
	}
	return false
}

func ValidateSuggestionRequest(req SuggestionRequest) []string {
	var errors []string

	if req.PartySize <= 0 {
		errors = append(errors, "party_size must be greater than 0")
	}

	return errors
}
