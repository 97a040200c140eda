package booking

import (
	"github.com/shopspring/decimal"
)

// PriceCalculator derives a booking total from the destination's unit price
// at booking time. The total is snapshotted onto the booking and never
// recomputed, so later catalog price changes leave existing bookings alone.
type PriceCalculator interface {
	TotalPrice(unitPrice decimal.Decimal, participants int) (decimal.Decimal, error)
}

type StandardPriceCalculator struct{}

func NewStandardPriceCalculator() *StandardPriceCalculator {
	return &StandardPriceCalculator{}
}

func (pc *StandardPriceCalculator) TotalPrice(unitPrice decimal.Decimal, participants int) (decimal.Decimal, error) {
	if participants < 1 {
		return decimal.Zero, ErrInvalidParticipants
	}
	if unitPrice.IsNegative() {
		return decimal.Zero, ErrNegativePrice
	}
	return unitPrice.Mul(decimal.NewFromInt(int64(participants))), nil
}
