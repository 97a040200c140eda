//go:build unit || e2e

package builder

import (
	"time"

	dombooking "tourbook/internal/domain/booking"
	reqdto "tourbook/internal/handler/dto/request"
	"tourbook/internal/usecase/commands"
	"tourbook/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BookingBuilder struct {
	ID              uuid.UUID
	Number          string
	DestinationID   uuid.UUID
	DestinationName string
	UserID          *uuid.UUID
	StartDate       time.Time
	EndDate         *time.Time
	Participants    int
	TotalPrice      decimal.Decimal
	PaymentMethod   string
	PaymentID       *string
	Status          dombooking.Status
	PaymentStatus   dombooking.PaymentStatus
	CustomerName    string
	CustomerPhone   string
	Notes           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func NewBookingBuilder() *BookingBuilder {
	now := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	owner := uuid.New()
	return &BookingBuilder{
		ID:              uuid.New(),
		Number:          "TRB-20260830-K7KQ2M",
		DestinationID:   uuid.New(),
		DestinationName: "Bromo Sunrise Tour",
		UserID:          &owner,
		StartDate:       time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC),
		Participants:    2,
		TotalPrice:      decimal.NewFromInt(1100000),
		Status:          dombooking.StatusPending,
		PaymentStatus:   dombooking.PaymentUnpaid,
		CustomerName:    "Siti Rahma",
		CustomerPhone:   "+62-812-0000-1111",
		Notes:           "",
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func (b *BookingBuilder) With(mutate func(*BookingBuilder)) *BookingBuilder {
	mutate(b)
	return b
}

// Build methods
func (b *BookingBuilder) BuildDomain() (*dombooking.Booking, error) {
	return dombooking.NewBooking(
		b.Number,
		b.DestinationID,
		b.UserID,
		b.StartDate,
		b.EndDate,
		b.Participants,
		b.TotalPrice,
		b.CustomerName,
		b.CustomerPhone,
		b.Notes,
		b.CreatedAt,
	)
}

// BuildReconstructed rehydrates a booking in an arbitrary lifecycle state,
// bypassing creation-time validation the way the repository does.
func (b *BookingBuilder) BuildReconstructed() *dombooking.Booking {
	return dombooking.ReconstructBooking(
		b.ID,
		b.Number,
		b.DestinationID,
		b.UserID,
		b.StartDate,
		b.EndDate,
		b.Participants,
		b.TotalPrice,
		b.PaymentMethod,
		b.PaymentID,
		b.Status,
		b.PaymentStatus,
		b.CustomerName,
		b.CustomerPhone,
		b.Notes,
		b.CreatedAt,
		b.UpdatedAt,
	)
}

func (b *BookingBuilder) BuildViewQuery() *queries.BookingView {
	return &queries.BookingView{
		ID:              b.ID,
		BookingNumber:   b.Number,
		DestinationID:   b.DestinationID,
		DestinationName: b.DestinationName,
		UserID:          b.UserID,
		StartDate:       b.StartDate,
		EndDate:         b.EndDate,
		Participants:    b.Participants,
		TotalPrice:      b.TotalPrice,
		PaymentMethod:   b.PaymentMethod,
		PaymentID:       b.PaymentID,
		Status:          b.Status.String(),
		PaymentStatus:   b.PaymentStatus.String(),
		CustomerName:    b.CustomerName,
		CustomerPhone:   b.CustomerPhone,
		Notes:           b.Notes,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

func (b *BookingBuilder) BuildListItemQuery() *queries.BookingListItem {
	return &queries.BookingListItem{
		ID:              b.ID,
		BookingNumber:   b.Number,
		DestinationID:   b.DestinationID,
		DestinationName: b.DestinationName,
		StartDate:       b.StartDate,
		Participants:    b.Participants,
		TotalPrice:      b.TotalPrice,
		Status:          b.Status.String(),
		PaymentStatus:   b.PaymentStatus.String(),
		CustomerName:    b.CustomerName,
		CreatedAt:       b.CreatedAt,
	}
}

func (b *BookingBuilder) BuildCreateRequestDTO() reqdto.CreateBookingRequest {
	var endDate *string
	if b.EndDate != nil {
		s := b.EndDate.Format("2006-01-02")
		endDate = &s
	}
	return reqdto.CreateBookingRequest{
		DestinationID: b.DestinationID,
		Participants:  b.Participants,
		StartDate:     b.StartDate.Format("2006-01-02"),
		EndDate:       endDate,
		CustomerName:  b.CustomerName,
		CustomerPhone: b.CustomerPhone,
		Notes:         b.Notes,
	}
}

func (b *BookingBuilder) BuildSnapshot() *commands.DestinationSnapshot {
	return &commands.DestinationSnapshot{
		ID:        b.DestinationID,
		Name:      b.DestinationName,
		UnitPrice: decimal.NewFromInt(550000),
		Capacity:  30,
	}
}
