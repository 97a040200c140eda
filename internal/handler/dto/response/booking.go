package response

import (
	"time"

	"tourbook/internal/usecase/commands"
	"tourbook/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/shopspring/decimal"
)

type BookingResponse struct {
	ID              uuid.UUID       `json:"id"`
	BookingNumber   string          `json:"booking_number"`
	DestinationID   uuid.UUID       `json:"destination_id"`
	DestinationName string          `json:"destination_name"`
	UserID          *uuid.UUID      `json:"user_id,omitempty"`
	StartDate       time.Time       `json:"start_date"`
	EndDate         *time.Time      `json:"end_date,omitempty"`
	Participants    int             `json:"participants"`
	TotalPrice      decimal.Decimal `json:"total_price"`
	PaymentMethod   string          `json:"payment_method,omitempty"`
	PaymentID       *string         `json:"payment_id,omitempty"`
	Status          string          `json:"status"`
	PaymentStatus   string          `json:"payment_status"`
	CustomerName    string          `json:"customer_name"`
	CustomerPhone   string          `json:"customer_phone"`
	Notes           string          `json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func FromBookingView(view *queries.BookingView) *BookingResponse {
	var resp BookingResponse
	_ = copier.Copy(&resp, view)
	return &resp
}

type BookingListResponse struct {
	ID              uuid.UUID       `json:"id"`
	BookingNumber   string          `json:"booking_number"`
	DestinationID   uuid.UUID       `json:"destination_id"`
	DestinationName string          `json:"destination_name"`
	StartDate       time.Time       `json:"start_date"`
	Participants    int             `json:"participants"`
	TotalPrice      decimal.Decimal `json:"total_price"`
	Status          string          `json:"status"`
	PaymentStatus   string          `json:"payment_status"`
	CustomerName    string          `json:"customer_name"`
	CreatedAt       time.Time       `json:"created_at"`
}

func FromBookingListItem(item *queries.BookingListItem) *BookingListResponse {
	var resp BookingListResponse
	_ = copier.Copy(&resp, item)
	return &resp
}

type SweepResponse struct {
	Processed    int                   `json:"processed"`
	Cancelled    int                   `json:"cancelled"`
	Errors       []commands.SweepError `json:"errors"`
	BeforeCutoff bool                  `json:"before_cutoff"`
}

func FromSweepResult(result *commands.SweepResult) *SweepResponse {
	return &SweepResponse{
		Processed:    result.Processed,
		Cancelled:    result.Cancelled,
		Errors:       result.Errors,
		BeforeCutoff: result.BeforeCutoff,
	}
}
