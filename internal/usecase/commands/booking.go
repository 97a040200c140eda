package commands

import (
	"context"
	"fmt"
	"time"

	"tourbook/internal/domain/booking"
	"tourbook/internal/domain/destination"
	"tourbook/internal/infra"
	"tourbook/internal/pkg/clock"
	"tourbook/internal/pkg/errs"
	"tourbook/internal/usecase/authz"

	"github.com/google/uuid"
)

// TransitionError carries the structured detail of a rejected transition:
// the axis, the stored value at decision time, and the requested target.
// Admins see it verbatim; customers get the coarse outcome.
type TransitionError struct {
	Axis   authz.Axis
	From   string
	To     string
	Reason string
}

func (e *TransitionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("illegal %s transition %s -> %s: %s", e.Axis, e.From, e.To, e.Reason)
	}
	return fmt.Sprintf("illegal %s transition %s -> %s", e.Axis, e.From, e.To)
}

type CreateBookingParams struct {
	DestinationID uuid.UUID
	UserID        *uuid.UUID
	StartDate     time.Time
	EndDate       *time.Time
	Participants  int
	CustomerName  string
	CustomerPhone string
	Notes         string
}

//go:generate mockgen -source=booking.go -destination=../../../tests/mock/commands/booking.go -package=commandsmock

type BookingCommands interface {
	Create(ctx context.Context, params CreateBookingParams) (*booking.Booking, error)
	RequestTransition(ctx context.Context, actor authz.Actor, id uuid.UUID, axis authz.Axis, target string) (*booking.Booking, error)
	RecordPayment(ctx context.Context, actor authz.Actor, id uuid.UUID, paymentID, paymentMethod string) (*booking.Booking, error)
	AppendNote(ctx context.Context, actor authz.Actor, id uuid.UUID, note string) (*booking.Booking, error)
}

type bookingCommandsImpl struct {
	bookingRepo     BookingRepository
	destinationRepo DestinationRepository
	factory         *booking.Factory
	gate            *authz.Gate
	clock           clock.Clock
}

func NewBookingCommands(
	bookingRepo BookingRepository,
	destinationRepo DestinationRepository,
	factory *booking.Factory,
	gate *authz.Gate,
	clock clock.Clock,
) BookingCommands {
	return &bookingCommandsImpl{
		bookingRepo:     bookingRepo,
		destinationRepo: destinationRepo,
		factory:         factory,
		gate:            gate,
		clock:           clock,
	}
}

func (c *bookingCommandsImpl) Create(ctx context.Context, params CreateBookingParams) (*booking.Booking, error) {
	snap, err := c.destinationRepo.FindByID(ctx, params.DestinationID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.ErrDestinationNotFound
		}
		return nil, errs.Mark(err, errs.ErrStoreUnavailable)
	}

	dest, err := destination.NewDestination(snap.ID, snap.Name, snap.UnitPrice, snap.Capacity)
	if err != nil {
		return nil, errs.Wrap(err, "invalid destination snapshot")
	}

	// A booking-number collision gets exactly one regeneration before the
	// error surfaces, to bound retry storms on a misbehaving generator.
	for attempt := 0; ; attempt++ {
		entity, err := c.newBooking(dest, params)
		if err != nil {
			return nil, err
		}

		err = c.bookingRepo.Insert(ctx, entity)
		if err == nil {
			return entity, nil
		}
		if infra.IsKind(err, infra.KindDuplicateKey) {
			if attempt == 0 {
				continue
			}
			return nil, errs.Mark(err, errs.ErrDuplicateBookingNumber)
		}
		return nil, errs.Mark(err, errs.ErrStoreUnavailable)
	}
}

func (c *bookingCommandsImpl) newBooking(dest *destination.Destination, params CreateBookingParams) (*booking.Booking, error) {
	entity, err := c.factory.CreateBooking(
		dest,
		params.UserID,
		params.StartDate,
		params.EndDate,
		params.Participants,
		params.CustomerName,
		params.CustomerPhone,
		params.Notes,
	)
	if err != nil {
		if errs.Is(err, booking.ErrInvalidParticipants) {
			return nil, errs.Mark(err, errs.ErrInvalidQuantity)
		}
		return nil, err
	}
	return entity, nil
}

// RequestTransition is the single mutation path for both lifecycle axes.
// Legality is always judged against the value currently stored, not the one
// the caller believes is current, and the write itself is conditional on
// that same value; a lost race surfaces as ErrConflict, a non-edge as
// ErrIllegalTransition. Exactly one of two concurrent requests for the same
// source state can win.
func (c *bookingCommandsImpl) RequestTransition(
	ctx context.Context,
	actor authz.Actor,
	id uuid.UUID,
	axis authz.Axis,
	target string,
) (*booking.Booking, error) {
	current, err := c.loadForActor(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	switch axis {
	case authz.AxisStatus:
		err = c.transitionStatus(ctx, actor, current, target)
	case authz.AxisPayment:
		err = c.transitionPayment(ctx, actor, current, target)
	default:
		return nil, errs.Newf("unknown transition axis: %s", axis)
	}
	if err != nil {
		return nil, err
	}

	updated, err := c.bookingRepo.FindByID(ctx, id)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrStoreUnavailable)
	}
	return updated, nil
}

func (c *bookingCommandsImpl) transitionStatus(ctx context.Context, actor authz.Actor, b *booking.Booking, target string) error {
	from := b.Status()

	to, err := booking.ParseStatus(target)
	if err != nil {
		return illegal(authz.AxisStatus, from.String(), target, "unknown status")
	}
	if !c.gate.Allows(actor.Role, authz.AxisStatus, from.String(), to.String()) {
		return errs.ErrForbidden
	}
	if !from.CanTransitionTo(to) {
		return illegal(authz.AxisStatus, from.String(), to.String(), "")
	}
	// Cross-axis rule: the operational axis may not advance toward paid or
	// confirmed while the money has not arrived.
	if booking.RequiresPayment(to) && b.PaymentStatus() != booking.PaymentPaid {
		return illegal(authz.AxisStatus, from.String(), to.String(), "payment not collected")
	}

	if err := c.bookingRepo.UpdateStatus(ctx, b.ID(), from, to, c.clock.Now()); err != nil {
		if infra.IsKind(err, infra.KindStaleState) {
			return errs.Mark(err, errs.ErrConflict)
		}
		return errs.Mark(err, errs.ErrStoreUnavailable)
	}
	return nil
}

func (c *bookingCommandsImpl) transitionPayment(ctx context.Context, actor authz.Actor, b *booking.Booking, target string) error {
	from := b.PaymentStatus()

	to, err := booking.ParsePaymentStatus(target)
	if err != nil {
		return illegal(authz.AxisPayment, from.String(), target, "unknown payment status")
	}
	if !c.gate.Allows(actor.Role, authz.AxisPayment, from.String(), to.String()) {
		return errs.ErrForbidden
	}
	if !from.CanTransitionTo(to) {
		return illegal(authz.AxisPayment, from.String(), to.String(), "")
	}

	if err := c.bookingRepo.UpdatePaymentStatus(ctx, b.ID(), from, to, c.clock.Now()); err != nil {
		if infra.IsKind(err, infra.KindStaleState) {
			return errs.Mark(err, errs.ErrConflict)
		}
		return errs.Mark(err, errs.ErrStoreUnavailable)
	}
	return nil
}

// RecordPayment is the payment-simulation callback: it drives the
// unpaid -> paid payment transition and stores the provider reference in the
// same conditional write.
func (c *bookingCommandsImpl) RecordPayment(
	ctx context.Context,
	actor authz.Actor,
	id uuid.UUID,
	paymentID, paymentMethod string,
) (*booking.Booking, error) {
	current, err := c.loadForActor(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	from := current.PaymentStatus()
	if !c.gate.Allows(actor.Role, authz.AxisPayment, from.String(), booking.PaymentPaid.String()) {
		return nil, errs.ErrForbidden
	}
	if !from.CanTransitionTo(booking.PaymentPaid) {
		return nil, illegal(authz.AxisPayment, from.String(), booking.PaymentPaid.String(), "")
	}

	if err := c.bookingRepo.RecordPayment(ctx, id, paymentID, paymentMethod, c.clock.Now()); err != nil {
		if infra.IsKind(err, infra.KindStaleState) {
			return nil, errs.Mark(err, errs.ErrConflict)
		}
		return nil, errs.Mark(err, errs.ErrStoreUnavailable)
	}

	updated, err := c.bookingRepo.FindByID(ctx, id)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrStoreUnavailable)
	}
	return updated, nil
}

// AppendNote adds a narrative line to the booking. Terminal bookings accept
// note appends; only their lifecycle axes are frozen.
func (c *bookingCommandsImpl) AppendNote(ctx context.Context, actor authz.Actor, id uuid.UUID, note string) (*booking.Booking, error) {
	if actor.Role != authz.RoleAdmin && actor.Role != authz.RoleSystem {
		return nil, errs.ErrForbidden
	}

	if err := c.bookingRepo.AppendNote(ctx, id, note, c.clock.Now()); err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.ErrBookingNotFound
		}
		return nil, errs.Mark(err, errs.ErrStoreUnavailable)
	}

	updated, err := c.bookingRepo.FindByID(ctx, id)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrStoreUnavailable)
	}
	return updated, nil
}

// loadForActor fetches the booking and applies the visibility rule: callers
// restricted to their own bookings get NotFound for anything else, never
// Forbidden, so denials do not leak existence.
func (c *bookingCommandsImpl) loadForActor(ctx context.Context, actor authz.Actor, id uuid.UUID) (*booking.Booking, error) {
	b, err := c.bookingRepo.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.ErrBookingNotFound
		}
		return nil, errs.Mark(err, errs.ErrStoreUnavailable)
	}

	if c.gate.RequiresOwnership(actor.Role) {
		if actor.UserID == nil || !b.IsOwnedBy(*actor.UserID) {
			return nil, errs.ErrBookingNotFound
		}
	}
	return b, nil
}

func illegal(axis authz.Axis, from, to, reason string) error {
	return errs.Mark(&TransitionError{Axis: axis, From: from, To: to, Reason: reason}, errs.ErrIllegalTransition)
}
