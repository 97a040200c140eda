//go:build unit

package authz_test

import (
	"testing"

	"tourbook/internal/usecase/authz"

	"github.com/stretchr/testify/assert"
)

func TestGateAllows(t *testing.T) {
	gate := authz.NewGate()

	type policyCase struct {
		name  string
		role  authz.Role
		axis  authz.Axis
		from  string
		to    string
		allow bool
	}

	cases := []policyCase{
		// Customers and anonymous callers share the self-service surface.
		{name: "customer cancels pending", role: authz.RoleCustomer, axis: authz.AxisStatus, from: "pending", to: "cancelled", allow: true},
		{name: "customer reports payment", role: authz.RoleCustomer, axis: authz.AxisPayment, from: "unpaid", to: "paid", allow: true},
		{name: "customer advances status after payment", role: authz.RoleCustomer, axis: authz.AxisStatus, from: "pending", to: "paid", allow: true},
		{name: "customer cannot confirm", role: authz.RoleCustomer, axis: authz.AxisStatus, from: "paid", to: "confirmed", allow: false},
		{name: "customer cannot complete", role: authz.RoleCustomer, axis: authz.AxisStatus, from: "confirmed", to: "completed", allow: false},
		{name: "customer cannot cancel after payment", role: authz.RoleCustomer, axis: authz.AxisStatus, from: "paid", to: "cancelled", allow: false},
		{name: "customer cannot refund", role: authz.RoleCustomer, axis: authz.AxisPayment, from: "paid", to: "refunded", allow: false},

		{name: "guest cancels pending", role: authz.RoleAnonymous, axis: authz.AxisStatus, from: "pending", to: "cancelled", allow: true},
		{name: "guest reports payment", role: authz.RoleAnonymous, axis: authz.AxisPayment, from: "unpaid", to: "paid", allow: true},
		{name: "guest advances status after payment", role: authz.RoleAnonymous, axis: authz.AxisStatus, from: "pending", to: "paid", allow: true},
		{name: "guest cannot refund", role: authz.RoleAnonymous, axis: authz.AxisPayment, from: "paid", to: "refunded", allow: false},

		// Admins may request any edge; legality is the coordinator's problem.
		{name: "admin confirms", role: authz.RoleAdmin, axis: authz.AxisStatus, from: "paid", to: "confirmed", allow: true},
		{name: "admin refunds", role: authz.RoleAdmin, axis: authz.AxisPayment, from: "paid", to: "refunded", allow: true},
		{name: "admin may request a non-edge", role: authz.RoleAdmin, axis: authz.AxisStatus, from: "completed", to: "pending", allow: true},

		// The sweeper only cancels pending bookings.
		{name: "system cancels pending", role: authz.RoleSystem, axis: authz.AxisStatus, from: "pending", to: "cancelled", allow: true},
		{name: "system cannot cancel paid", role: authz.RoleSystem, axis: authz.AxisStatus, from: "paid", to: "cancelled", allow: false},
		{name: "system cannot touch payment axis", role: authz.RoleSystem, axis: authz.AxisPayment, from: "unpaid", to: "paid", allow: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.allow, gate.Allows(tc.role, tc.axis, tc.from, tc.to))
		})
	}
}

func TestGateRequiresOwnership(t *testing.T) {
	gate := authz.NewGate()

	assert.True(t, gate.RequiresOwnership(authz.RoleCustomer))
	// Anonymous callers act by booking-id capability.
	assert.False(t, gate.RequiresOwnership(authz.RoleAnonymous))
	assert.False(t, gate.RequiresOwnership(authz.RoleAdmin))
	assert.False(t, gate.RequiresOwnership(authz.RoleSystem))
}

func TestParseRole(t *testing.T) {
	assert.Equal(t, authz.RoleAdmin, authz.ParseRole("admin"))
	assert.Equal(t, authz.RoleCustomer, authz.ParseRole("customer"))
	assert.Equal(t, authz.RoleSystem, authz.ParseRole("system"))
	assert.Equal(t, authz.RoleAnonymous, authz.ParseRole(""))
	assert.Equal(t, authz.RoleAnonymous, authz.ParseRole("superuser"))
}

func TestParseAxis(t *testing.T) {
	axis, ok := authz.ParseAxis("status")
	assert.True(t, ok)
	assert.Equal(t, authz.AxisStatus, axis)

	axis, ok = authz.ParseAxis("payment_status")
	assert.True(t, ok)
	assert.Equal(t, authz.AxisPayment, axis)

	_, ok = authz.ParseAxis("notes")
	assert.False(t, ok)
}
