package commands

import (
	"context"
	"time"

	"tourbook/internal/domain/booking"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Write-side snapshot keeps the command layer off the read-side query types.
type DestinationSnapshot struct {
	ID        uuid.UUID
	Name      string
	UnitPrice decimal.Decimal
	Capacity  int
}

//go:generate mockgen -source=ports.go -destination=../../../tests/mock/commands/ports.go -package=commandsmock

// BookingRepository is the durable reservation store. UpdateStatus,
// UpdatePaymentStatus and RecordPayment are conditional writes: they succeed
// only while the stored value still equals the expected one, and report
// KindStaleState otherwise. Nothing outside this interface may write either
// lifecycle axis.
type BookingRepository interface {
	Insert(ctx context.Context, b *booking.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error)
	FindExpiryCandidates(ctx context.Context, day time.Time, loc *time.Location) ([]*booking.Booking, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, expected, next booking.Status, touchedAt time.Time) error
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, expected, next booking.PaymentStatus, touchedAt time.Time) error
	RecordPayment(ctx context.Context, id uuid.UUID, paymentID, paymentMethod string, touchedAt time.Time) error
	AppendNote(ctx context.Context, id uuid.UUID, note string, touchedAt time.Time) error
}

type DestinationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*DestinationSnapshot, error)
}
