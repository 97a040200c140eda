// Package destination models the catalog item a booking references. The core
// only reads it: identity, current unit price, and a capacity hint. The
// catalog itself is owned elsewhere.
package destination

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrNegativeUnitPrice = errors.New("unit price cannot be negative")

type Destination struct {
	id        uuid.UUID
	name      string
	unitPrice decimal.Decimal
	capacity  int
}

func NewDestination(id uuid.UUID, name string, unitPrice decimal.Decimal, capacity int) (*Destination, error) {
	if unitPrice.IsNegative() {
		return nil, ErrNegativeUnitPrice
	}
	return &Destination{
		id:        id,
		name:      name,
		unitPrice: unitPrice,
		capacity:  capacity,
	}, nil
}

func (d *Destination) ID() uuid.UUID              { return d.id }
func (d *Destination) Name() string               { return d.name }
func (d *Destination) UnitPrice() decimal.Decimal { return d.unitPrice }

// Capacity is advisory only; no admission control is enforced against it.
func (d *Destination) Capacity() int { return d.capacity }
