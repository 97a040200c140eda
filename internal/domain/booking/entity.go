package booking

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidParticipants = errors.New("participants must be at least 1")
	ErrNegativePrice       = errors.New("price cannot be negative")
	ErrMissingStartDate    = errors.New("start date is required")
	ErrInvalidDateRange    = errors.New("end date must not be before start date")
	ErrMissingContact      = errors.New("customer name and phone are required")
)

// Booking is a customer's reservation for a dated tour. It carries two
// independent lifecycle axes: Status (operational) and PaymentStatus
// (financial). Both move only forward along their transition tables and are
// mutated exclusively through the lifecycle coordinator's compare-and-set
// path.
type Booking struct {
	id            uuid.UUID
	number        string
	destinationID uuid.UUID
	userID        *uuid.UUID
	startDate     time.Time
	endDate       *time.Time
	participants  int
	totalPrice    decimal.Decimal
	paymentMethod string
	paymentID     *string
	status        Status
	paymentStatus PaymentStatus
	customerName  string
	customerPhone string
	notes         string
	createdAt     time.Time
	updatedAt     time.Time
}

func NewBooking(
	number string,
	destinationID uuid.UUID,
	userID *uuid.UUID,
	startDate time.Time,
	endDate *time.Time,
	participants int,
	totalPrice decimal.Decimal,
	customerName string,
	customerPhone string,
	notes string,
	now time.Time,
) (*Booking, error) {
	if participants < 1 {
		return nil, ErrInvalidParticipants
	}
	if totalPrice.IsNegative() {
		return nil, ErrNegativePrice
	}
	if startDate.IsZero() {
		return nil, ErrMissingStartDate
	}
	if endDate != nil && endDate.Before(startDate) {
		return nil, ErrInvalidDateRange
	}
	if customerName == "" || customerPhone == "" {
		return nil, ErrMissingContact
	}

	return &Booking{
		id:            uuid.New(),
		number:        number,
		destinationID: destinationID,
		userID:        userID,
		startDate:     startDate,
		endDate:       endDate,
		participants:  participants,
		totalPrice:    totalPrice,
		status:        StatusPending,
		paymentStatus: PaymentUnpaid,
		customerName:  customerName,
		customerPhone: customerPhone,
		notes:         notes,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

func ReconstructBooking(
	id uuid.UUID,
	number string,
	destinationID uuid.UUID,
	userID *uuid.UUID,
	startDate time.Time,
	endDate *time.Time,
	participants int,
	totalPrice decimal.Decimal,
	paymentMethod string,
	paymentID *string,
	status Status,
	paymentStatus PaymentStatus,
	customerName, customerPhone, notes string,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:            id,
		number:        number,
		destinationID: destinationID,
		userID:        userID,
		startDate:     startDate,
		endDate:       endDate,
		participants:  participants,
		totalPrice:    totalPrice,
		paymentMethod: paymentMethod,
		paymentID:     paymentID,
		status:        status,
		paymentStatus: paymentStatus,
		customerName:  customerName,
		customerPhone: customerPhone,
		notes:         notes,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

// IsOwnedBy reports whether the booking belongs to the given account. Guest
// bookings have no owner and are never owned by an authenticated caller.
func (b *Booking) IsOwnedBy(userID uuid.UUID) bool {
	return b.userID != nil && *b.userID == userID
}

func (b *Booking) IsTerminal() bool {
	return b.status.IsTerminal()
}

// EligibleForExpiry reports whether the automatic sweep should cancel this
// booking as of the given day: still pending, still unpaid, and departing
// that same calendar day in the operator's timezone.
func (b *Booking) EligibleForExpiry(day time.Time, loc *time.Location) bool {
	if b.status != StatusPending || b.paymentStatus != PaymentUnpaid {
		return false
	}
	y1, m1, d1 := b.startDate.In(loc).Date()
	y2, m2, d2 := day.In(loc).Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

func (b *Booking) ID() uuid.UUID               { return b.id }
func (b *Booking) Number() string              { return b.number }
func (b *Booking) DestinationID() uuid.UUID    { return b.destinationID }
func (b *Booking) UserID() *uuid.UUID          { return b.userID }
func (b *Booking) StartDate() time.Time        { return b.startDate }
func (b *Booking) EndDate() *time.Time         { return b.endDate }
func (b *Booking) Participants() int           { return b.participants }
func (b *Booking) TotalPrice() decimal.Decimal { return b.totalPrice }
func (b *Booking) PaymentMethod() string       { return b.paymentMethod }
func (b *Booking) PaymentID() *string          { return b.paymentID }
func (b *Booking) Status() Status              { return b.status }
func (b *Booking) PaymentStatus() PaymentStatus {
	return b.paymentStatus
}
func (b *Booking) CustomerName() string  { return b.customerName }
func (b *Booking) CustomerPhone() string { return b.customerPhone }
func (b *Booking) Notes() string         { return b.notes }
func (b *Booking) CreatedAt() time.Time  { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time  { return b.updatedAt }
