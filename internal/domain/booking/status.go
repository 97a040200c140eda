package booking

import "fmt"

// Status is the operational lifecycle axis of a booking.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// statusTransitions defines the state machine for the operational axis.
var statusTransitions = map[Status][]Status{
	StatusPending:   {StatusPaid, StatusCancelled},
	StatusPaid:      {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
	StatusCompleted: {},
	StatusCancelled: {},
}

func (s Status) IsValid() bool {
	_, exists := statusTransitions[s]
	return exists
}

func (s Status) CanTransitionTo(target Status) bool {
	allowed, exists := statusTransitions[s]
	if !exists {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are possible.
func (s Status) IsTerminal() bool {
	allowed, exists := statusTransitions[s]
	if !exists {
		return true
	}
	return len(allowed) == 0
}

func (s Status) String() string {
	return string(s)
}

func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid booking status: %s", s)
	}
	return status, nil
}

// PaymentStatus is the financial lifecycle axis, independent of Status.
type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// A refund of money never collected is not representable: unpaid
// transitions only to paid.
var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentUnpaid:   {PaymentPaid},
	PaymentPaid:     {PaymentRefunded},
	PaymentRefunded: {},
}

func (p PaymentStatus) IsValid() bool {
	_, exists := paymentTransitions[p]
	return exists
}

func (p PaymentStatus) CanTransitionTo(target PaymentStatus) bool {
	allowed, exists := paymentTransitions[p]
	if !exists {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

func (p PaymentStatus) IsTerminal() bool {
	allowed, exists := paymentTransitions[p]
	if !exists {
		return true
	}
	return len(allowed) == 0
}

func (p PaymentStatus) String() string {
	return string(p)
}

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	status := PaymentStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid payment status: %s", s)
	}
	return status, nil
}

// RequiresPayment reports whether the operational target state may only be
// entered once payment has been collected. Cancellation is always exempt:
// a cancellation after payment leaves payment_status for the refund flow.
func RequiresPayment(target Status) bool {
	return target == StatusPaid || target == StatusConfirmed
}
