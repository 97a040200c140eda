// Package authz holds the single policy table deciding which caller role may
// request which lifecycle transition. Identity lookup is a collaborator; the
// policy lives here.
package authz

import (
	"tourbook/internal/domain/booking"
)

type Role string

const (
	RoleAnonymous Role = "anonymous"
	RoleCustomer  Role = "customer"
	RoleAdmin     Role = "admin"
	// RoleSystem is the implicit role of the expiry sweeper.
	RoleSystem Role = "system"
)

func (r Role) String() string {
	return string(r)
}

func ParseRole(s string) Role {
	switch Role(s) {
	case RoleCustomer, RoleAdmin, RoleSystem:
		return Role(s)
	default:
		return RoleAnonymous
	}
}

// Axis names which booking field a transition targets.
type Axis string

const (
	AxisStatus  Axis = "status"
	AxisPayment Axis = "payment_status"
)

func ParseAxis(s string) (Axis, bool) {
	switch Axis(s) {
	case AxisStatus, AxisPayment:
		return Axis(s), true
	default:
		return "", false
	}
}

type edge struct {
	from, to string
}

// Non-admin roles get an explicit allow-list. Customers may abandon their own
// pending booking and report a payment as the unpaid->paid / pending->paid
// pair; the cross-axis rule in the coordinator keeps the status half inert
// until the payment half has landed. The sweeper may only cancel pending
// bookings. Admins may request any edge the state machine itself admits.
var rolePolicy = map[Role]map[Axis][]edge{
	RoleAnonymous: {
		AxisStatus: {
			{from: booking.StatusPending.String(), to: booking.StatusCancelled.String()},
			{from: booking.StatusPending.String(), to: booking.StatusPaid.String()},
		},
		AxisPayment: {{from: booking.PaymentUnpaid.String(), to: booking.PaymentPaid.String()}},
	},
	RoleCustomer: {
		AxisStatus: {
			{from: booking.StatusPending.String(), to: booking.StatusCancelled.String()},
			{from: booking.StatusPending.String(), to: booking.StatusPaid.String()},
		},
		AxisPayment: {{from: booking.PaymentUnpaid.String(), to: booking.PaymentPaid.String()}},
	},
	RoleSystem: {
		AxisStatus: {{from: booking.StatusPending.String(), to: booking.StatusCancelled.String()}},
	},
}

type Gate struct{}

func NewGate() *Gate {
	return &Gate{}
}

// Allows reports whether the role may request the transition (from, to) on
// the given axis. It is a pure policy check; legality of the edge against
// the stored state belongs to the coordinator.
func (g *Gate) Allows(role Role, axis Axis, from, to string) bool {
	if role == RoleAdmin {
		return true
	}
	edges, ok := rolePolicy[role]
	if !ok {
		return false
	}
	for _, e := range edges[axis] {
		if e.from == from && e.to == to {
			return true
		}
	}
	return false
}

// RequiresOwnership reports whether the role may only act on bookings it
// owns. Anonymous callers act by booking-id capability (guest checkout has
// no account to tie a booking to); admins and the sweeper act on any
// booking.
func (g *Gate) RequiresOwnership(role Role) bool {
	return role == RoleCustomer
}
