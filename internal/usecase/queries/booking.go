package queries

import (
	"context"
	"time"

	"tourbook/internal/infra"
	"tourbook/internal/pkg/errs"
	"tourbook/internal/usecase/authz"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Read models (DTO for read side)
type BookingView struct {
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

type BookingListItem struct {
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

type BookingFilter struct {
	OwnerID *uuid.UUID
	Status  *string
	Search  string
	Limit   int32
}

//go:generate mockgen -source=booking.go -destination=../../../tests/mock/queries/booking.go -package=queriesmock

type BookingReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*BookingView, error)
	List(ctx context.Context, filter BookingFilter) ([]*BookingListItem, error)
}

type BookingQueries interface {
	GetByID(ctx context.Context, actor authz.Actor, id uuid.UUID) (*BookingView, error)
	List(ctx context.Context, actor authz.Actor, filter BookingFilter) ([]*BookingListItem, error)
}

type bookingQueriesImpl struct {
	store BookingReadStore
}

func NewBookingQueries(store BookingReadStore) BookingQueries {
	return &bookingQueriesImpl{store: store}
}

// GetByID applies the same visibility rule as the write side: a booking the
// caller may not see reads as NotFound, never Forbidden.
func (q *bookingQueriesImpl) GetByID(ctx context.Context, actor authz.Actor, id uuid.UUID) (*BookingView, error) {
	view, err := q.store.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.ErrBookingNotFound
		}
		return nil, errs.Mark(err, errs.ErrStoreUnavailable)
	}

	// Authenticated customers only see their own bookings; anonymous callers
	// hold the unguessable booking id as their capability (guest status page).
	if actor.Role == authz.RoleCustomer {
		if actor.UserID == nil || view.UserID == nil || *view.UserID != *actor.UserID {
			return nil, errs.ErrBookingNotFound
		}
	}
	return view, nil
}

// List constrains non-admin callers to their own bookings regardless of the
// requested filter.
func (q *bookingQueriesImpl) List(ctx context.Context, actor authz.Actor, filter BookingFilter) ([]*BookingListItem, error) {
	if !actor.IsAdmin() {
		if actor.UserID == nil {
			return []*BookingListItem{}, nil
		}
		filter.OwnerID = actor.UserID
	}
	if filter.Limit <= 0 {
		filter.Limit = 100
	}

	items, err := q.store.List(ctx, filter)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrStoreUnavailable)
	}
	return items, nil
}
