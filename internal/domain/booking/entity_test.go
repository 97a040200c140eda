//go:build unit

package booking_test

import (
	"testing"
	"time"

	"tourbook/internal/domain/booking"
	"tourbook/tests/common/builder"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testCase struct {
	name   string
	mutate func(*builder.BookingBuilder)
	errIs  error
}

func runCases(t *testing.T, cases []testCase) {
	t.Helper()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := builder.NewBookingBuilder()
			if tc.mutate != nil {
				tc.mutate(b)
			}
			actual, err := b.BuildDomain()
			if tc.errIs != nil {
				assert.ErrorIs(t, err, tc.errIs)
				assert.Nil(t, actual)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, actual)
		})
	}
}

func TestBooking(t *testing.T) {
	t.Run("basic success case", func(t *testing.T) {
		actual, err := builder.NewBookingBuilder().BuildDomain()
		require.NoError(t, err)
		require.NotNil(t, actual)

		assert.NotEqual(t, uuid.Nil, actual.ID())
		assert.Equal(t, booking.StatusPending, actual.Status())
		assert.Equal(t, booking.PaymentUnpaid, actual.PaymentStatus())
		assert.Equal(t, actual.CreatedAt(), actual.UpdatedAt())
		assert.True(t, actual.TotalPrice().Equal(decimal.NewFromInt(1100000)))
		assert.Empty(t, actual.PaymentMethod())
		assert.Nil(t, actual.PaymentID())
	})

	t.Run("participants validation", func(t *testing.T) {
		runCases(t, []testCase{
			{
				name:   "minimum valid participants",
				mutate: func(b *builder.BookingBuilder) { b.Participants = 1 },
			},
			{
				name:   "zero participants",
				mutate: func(b *builder.BookingBuilder) { b.Participants = 0 },
				errIs:  booking.ErrInvalidParticipants,
			},
			{
				name:   "negative participants",
				mutate: func(b *builder.BookingBuilder) { b.Participants = -1 },
				errIs:  booking.ErrInvalidParticipants,
			},
		})
	})

	t.Run("price validation", func(t *testing.T) {
		runCases(t, []testCase{
			{
				name:   "zero total price",
				mutate: func(b *builder.BookingBuilder) { b.TotalPrice = decimal.Zero },
			},
			{
				name:   "negative total price",
				mutate: func(b *builder.BookingBuilder) { b.TotalPrice = decimal.NewFromInt(-1) },
				errIs:  booking.ErrNegativePrice,
			},
		})
	})

	t.Run("date validation", func(t *testing.T) {
		runCases(t, []testCase{
			{
				name:   "missing start date",
				mutate: func(b *builder.BookingBuilder) { b.StartDate = time.Time{} },
				errIs:  booking.ErrMissingStartDate,
			},
			{
				name: "end date equal to start date",
				mutate: func(b *builder.BookingBuilder) {
					end := b.StartDate
					b.EndDate = &end
				},
			},
			{
				name: "end date before start date",
				mutate: func(b *builder.BookingBuilder) {
					end := b.StartDate.AddDate(0, 0, -1)
					b.EndDate = &end
				},
				errIs: booking.ErrInvalidDateRange,
			},
		})
	})

	t.Run("contact validation", func(t *testing.T) {
		runCases(t, []testCase{
			{
				name:   "missing customer name",
				mutate: func(b *builder.BookingBuilder) { b.CustomerName = "" },
				errIs:  booking.ErrMissingContact,
			},
			{
				name:   "missing customer phone",
				mutate: func(b *builder.BookingBuilder) { b.CustomerPhone = "" },
				errIs:  booking.ErrMissingContact,
			},
		})
	})
}

func TestBookingOwnership(t *testing.T) {
	owner := uuid.New()

	t.Run("owned by its user", func(t *testing.T) {
		b := builder.NewBookingBuilder().With(func(b *builder.BookingBuilder) { b.UserID = &owner }).BuildReconstructed()
		assert.True(t, b.IsOwnedBy(owner))
		assert.False(t, b.IsOwnedBy(uuid.New()))
	})

	t.Run("guest booking has no owner", func(t *testing.T) {
		b := builder.NewBookingBuilder().With(func(b *builder.BookingBuilder) { b.UserID = nil }).BuildReconstructed()
		assert.False(t, b.IsOwnedBy(owner))
	})
}

func TestEligibleForExpiry(t *testing.T) {
	jakarta, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)

	departure := time.Date(2026, 9, 5, 0, 0, 0, 0, jakarta)
	sameDay := time.Date(2026, 9, 5, 18, 30, 0, 0, jakarta)

	build := func(mutate func(*builder.BookingBuilder)) *booking.Booking {
		b := builder.NewBookingBuilder()
		b.StartDate = departure
		if mutate != nil {
			mutate(b)
		}
		return b.BuildReconstructed()
	}

	t.Run("pending unpaid departing today", func(t *testing.T) {
		assert.True(t, build(nil).EligibleForExpiry(sameDay, jakarta))
	})

	t.Run("already paid", func(t *testing.T) {
		b := build(func(b *builder.BookingBuilder) { b.PaymentStatus = booking.PaymentPaid })
		assert.False(t, b.EligibleForExpiry(sameDay, jakarta))
	})

	t.Run("already cancelled", func(t *testing.T) {
		b := build(func(b *builder.BookingBuilder) { b.Status = booking.StatusCancelled })
		assert.False(t, b.EligibleForExpiry(sameDay, jakarta))
	})

	t.Run("departing tomorrow", func(t *testing.T) {
		b := build(func(b *builder.BookingBuilder) { b.StartDate = departure.AddDate(0, 0, 1) })
		assert.False(t, b.EligibleForExpiry(sameDay, jakarta))
	})

	t.Run("day boundary follows operator timezone", func(t *testing.T) {
		// 2026-09-04T22:00Z is already 2026-09-05 05:00 in Jakarta
		utcEvening := time.Date(2026, 9, 4, 22, 0, 0, 0, time.UTC)
		assert.True(t, build(nil).EligibleForExpiry(utcEvening, jakarta))
	})
}
