package request

import (
	"time"

	"tourbook/internal/usecase/commands"

	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

type CreateBookingRequest struct {
	DestinationID uuid.UUID `json:"destination_id" binding:"required"`
	Participants  int       `json:"participants" binding:"required,min=1"`
	StartDate     string    `json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate       *string   `json:"end_date,omitempty" binding:"omitempty,datetime=2006-01-02"`
	CustomerName  string    `json:"customer_name" binding:"required,max=120"`
	CustomerPhone string    `json:"customer_phone" binding:"required,max=32"`
	Notes         string    `json:"notes" binding:"max=2000"`
}

func (r CreateBookingRequest) ToParams(userID *uuid.UUID) (commands.CreateBookingParams, error) {
	startDate, err := time.Parse(dateLayout, r.StartDate)
	if err != nil {
		return commands.CreateBookingParams{}, err
	}

	var endDate *time.Time
	if r.EndDate != nil {
		parsed, err := time.Parse(dateLayout, *r.EndDate)
		if err != nil {
			return commands.CreateBookingParams{}, err
		}
		endDate = &parsed
	}

	return commands.CreateBookingParams{
		DestinationID: r.DestinationID,
		UserID:        userID,
		StartDate:     startDate,
		EndDate:       endDate,
		Participants:  r.Participants,
		CustomerName:  r.CustomerName,
		CustomerPhone: r.CustomerPhone,
		Notes:         r.Notes,
	}, nil
}

// TransitionRequest is the closed transition vocabulary: one axis, one
// target value. Arbitrary partial updates are not representable.
type TransitionRequest struct {
	Field string `json:"field" binding:"required,oneof=status payment_status"`
	Value string `json:"value" binding:"required,max=32"`
}

type PaymentCallbackRequest struct {
	PaymentID     string `json:"payment_id" binding:"required,max=128"`
	PaymentMethod string `json:"payment_method" binding:"required,max=64"`
}

type AppendNoteRequest struct {
	Note string `json:"note" binding:"required,max=2000"`
}

type SweepRequest struct {
	AsOf *time.Time `json:"as_of,omitempty"`
}
