package booking

import (
	"time"

	"tourbook/internal/domain/destination"
	"tourbook/internal/pkg/clock"

	"github.com/google/uuid"
)

type Factory struct {
	Clock           clock.Clock
	PriceCalculator PriceCalculator
	Numbers         NumberGenerator
}

func NewFactory(clock clock.Clock, priceCalculator PriceCalculator, numbers NumberGenerator) *Factory {
	return &Factory{
		Clock:           clock,
		PriceCalculator: priceCalculator,
		Numbers:         numbers,
	}
}

// CreateBooking snapshots the destination's current unit price into the new
// booking. Every booking starts pending/unpaid.
func (f *Factory) CreateBooking(
	dest *destination.Destination,
	userID *uuid.UUID,
	startDate time.Time,
	endDate *time.Time,
	participants int,
	customerName, customerPhone, notes string,
) (*Booking, error) {
	now := f.Clock.Now()

	total, err := f.PriceCalculator.TotalPrice(dest.UnitPrice(), participants)
	if err != nil {
		return nil, err
	}

	return NewBooking(
		f.Numbers.Next(now),
		dest.ID(),
		userID,
		startDate,
		endDate,
		participants,
		total,
		customerName,
		customerPhone,
		notes,
		now,
	)
}
