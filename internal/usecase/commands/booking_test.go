//go:build unit

package commands_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"tourbook/internal/domain/booking"
	"tourbook/internal/infra"
	"tourbook/internal/pkg/clock"
	"tourbook/internal/pkg/errs"
	"tourbook/internal/usecase/authz"
	"tourbook/internal/usecase/commands"
	"tourbook/tests/common/builder"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBookingRepo is an in-memory BookingRepository with the same
// compare-and-set contract as the SQL implementation: a conditional update
// that matches nothing reports KindStaleState.
type fakeBookingRepo struct {
	mu       sync.Mutex
	byID     map[uuid.UUID]*booking.Booking
	byNumber map[string]uuid.UUID

	// invoked between the caller's read and the conditional write, to
	// simulate a concurrent actor winning the race
	beforeUpdateStatus  func()
	beforeUpdatePayment func()

	pendingStatusFailures int
}

// failNextUpdateStatus makes the next conditional status write fail as a
// plain store error rather than a stale match.
func (r *fakeBookingRepo) failNextUpdateStatus() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pendingStatusFailures++
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{
		byID:     make(map[uuid.UUID]*booking.Booking),
		byNumber: make(map[string]uuid.UUID),
	}
}

func (r *fakeBookingRepo) Insert(_ context.Context, b *booking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byNumber[b.Number()]; taken {
		return infra.WrapRepoErr("booking number already exists", nil, infra.KindDuplicateKey)
	}
	r.byID[b.ID()] = b
	r.byNumber[b.Number()] = b.ID()
	return nil
}

func (r *fakeBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*booking.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.byID[id]
	if !ok {
		return nil, infra.WrapRepoErr("booking not found", nil, infra.KindNotFound)
	}
	return b, nil
}

func (r *fakeBookingRepo) FindExpiryCandidates(_ context.Context, day time.Time, loc *time.Location) ([]*booking.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*booking.Booking
	for _, b := range r.byID {
		if b.EligibleForExpiry(day, loc) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) UpdateStatus(_ context.Context, id uuid.UUID, expected, next booking.Status, touchedAt time.Time) error {
	if r.beforeUpdateStatus != nil {
		r.beforeUpdateStatus()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pendingStatusFailures > 0 {
		r.pendingStatusFailures--
		return infra.WrapRepoErr("connection reset by peer", nil)
	}
	b, ok := r.byID[id]
	if !ok || b.Status() != expected {
		return infra.WrapRepoErr("status moved since read", nil, infra.KindStaleState)
	}
	r.byID[id] = r.mutate(b, func(bb *builder.BookingBuilder) {
		bb.Status = next
		bb.UpdatedAt = touchedAt
	})
	return nil
}

func (r *fakeBookingRepo) UpdatePaymentStatus(_ context.Context, id uuid.UUID, expected, next booking.PaymentStatus, touchedAt time.Time) error {
	if r.beforeUpdatePayment != nil {
		r.beforeUpdatePayment()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.byID[id]
	if !ok || b.PaymentStatus() != expected {
		return infra.WrapRepoErr("payment status moved since read", nil, infra.KindStaleState)
	}
	r.byID[id] = r.mutate(b, func(bb *builder.BookingBuilder) {
		bb.PaymentStatus = next
		bb.UpdatedAt = touchedAt
	})
	return nil
}

func (r *fakeBookingRepo) RecordPayment(_ context.Context, id uuid.UUID, paymentID, paymentMethod string, touchedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.byID[id]
	if !ok || b.PaymentStatus() != booking.PaymentUnpaid {
		return infra.WrapRepoErr("payment already recorded", nil, infra.KindStaleState)
	}
	r.byID[id] = r.mutate(b, func(bb *builder.BookingBuilder) {
		bb.PaymentStatus = booking.PaymentPaid
		bb.PaymentID = &paymentID
		bb.PaymentMethod = paymentMethod
		bb.UpdatedAt = touchedAt
	})
	return nil
}

func (r *fakeBookingRepo) AppendNote(_ context.Context, id uuid.UUID, note string, touchedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.byID[id]
	if !ok {
		return infra.WrapRepoErr("booking not found", nil, infra.KindNotFound)
	}
	r.byID[id] = r.mutate(b, func(bb *builder.BookingBuilder) {
		if bb.Notes == "" {
			bb.Notes = note
		} else {
			bb.Notes = bb.Notes + "\n" + note
		}
		bb.UpdatedAt = touchedAt
	})
	return nil
}

// mutate rebuilds the stored booking with the given fields changed, the way
// an UPDATE would. Caller holds the lock.
func (r *fakeBookingRepo) mutate(b *booking.Booking, change func(*builder.BookingBuilder)) *booking.Booking {
	bb := &builder.BookingBuilder{
		ID:            b.ID(),
		Number:        b.Number(),
		DestinationID: b.DestinationID(),
		UserID:        b.UserID(),
		StartDate:     b.StartDate(),
		EndDate:       b.EndDate(),
		Participants:  b.Participants(),
		TotalPrice:    b.TotalPrice(),
		PaymentMethod: b.PaymentMethod(),
		PaymentID:     b.PaymentID(),
		Status:        b.Status(),
		PaymentStatus: b.PaymentStatus(),
		CustomerName:  b.CustomerName(),
		CustomerPhone: b.CustomerPhone(),
		Notes:         b.Notes(),
		CreatedAt:     b.CreatedAt(),
		UpdatedAt:     b.UpdatedAt(),
	}
	change(bb)
	return bb.BuildReconstructed()
}

func (r *fakeBookingRepo) seed(b *booking.Booking) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[b.ID()] = b
	r.byNumber[b.Number()] = b.ID()
}

type fakeDestinationRepo struct {
	byID map[uuid.UUID]*commands.DestinationSnapshot
}

func newFakeDestinationRepo(snaps ...*commands.DestinationSnapshot) *fakeDestinationRepo {
	r := &fakeDestinationRepo{byID: make(map[uuid.UUID]*commands.DestinationSnapshot)}
	for _, s := range snaps {
		r.byID[s.ID] = s
	}
	return r
}

func (r *fakeDestinationRepo) FindByID(_ context.Context, id uuid.UUID) (*commands.DestinationSnapshot, error) {
	s, ok := r.byID[id]
	if !ok {
		return nil, infra.WrapRepoErr("destination not found", nil, infra.KindNotFound)
	}
	return s, nil
}

// stubNumbers hands out a fixed sequence and repeats the last entry.
type stubNumbers struct {
	sequence []string
	calls    int
}

func (g *stubNumbers) Next(time.Time) string {
	i := g.calls
	if i >= len(g.sequence) {
		i = len(g.sequence) - 1
	}
	g.calls++
	return g.sequence[i]
}

type commandsFixture struct {
	repo     *fakeBookingRepo
	dests    *fakeDestinationRepo
	clock    *clock.MockClock
	numbers  *stubNumbers
	commands commands.BookingCommands
}

func newCommandsFixture(t *testing.T, snaps ...*commands.DestinationSnapshot) *commandsFixture {
	t.Helper()
	repo := newFakeBookingRepo()
	dests := newFakeDestinationRepo(snaps...)
	mockClock := clock.NewMockClock(time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC))
	numbers := &stubNumbers{sequence: []string{"TRB-20260830-AAAAAA", "TRB-20260830-BBBBBB"}}
	factory := booking.NewFactory(mockClock, booking.NewStandardPriceCalculator(), numbers)
	return &commandsFixture{
		repo:     repo,
		dests:    dests,
		clock:    mockClock,
		numbers:  numbers,
		commands: commands.NewBookingCommands(repo, dests, factory, authz.NewGate(), mockClock),
	}
}

func createParams(snap *commands.DestinationSnapshot, userID *uuid.UUID) commands.CreateBookingParams {
	return commands.CreateBookingParams{
		DestinationID: snap.ID,
		UserID:        userID,
		StartDate:     time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC),
		Participants:  2,
		CustomerName:  "Siti Rahma",
		CustomerPhone: "+62-812-0000-1111",
	}
}

func TestBookingCommandsCreate(t *testing.T) {
	ctx := context.Background()
	snap := builder.NewBookingBuilder().BuildSnapshot()

	t.Run("creates pending unpaid booking with snapshotted price", func(t *testing.T) {
		f := newCommandsFixture(t, snap)
		owner := uuid.New()

		created, err := f.commands.Create(ctx, createParams(snap, &owner))
		require.NoError(t, err)

		assert.Equal(t, booking.StatusPending, created.Status())
		assert.Equal(t, booking.PaymentUnpaid, created.PaymentStatus())
		assert.Equal(t, "TRB-20260830-AAAAAA", created.Number())
		assert.True(t, created.TotalPrice().Equal(decimal.NewFromInt(1100000)), "550000 x 2 participants")
		assert.True(t, created.IsOwnedBy(owner))

		stored, err := f.repo.FindByID(ctx, created.ID())
		require.NoError(t, err)
		assert.Equal(t, created.ID(), stored.ID())
	})

	t.Run("total price survives a later catalog price change", func(t *testing.T) {
		ownSnap := builder.NewBookingBuilder().BuildSnapshot()
		f := newCommandsFixture(t, ownSnap)

		created, err := f.commands.Create(ctx, createParams(ownSnap, nil))
		require.NoError(t, err)

		ownSnap.UnitPrice = decimal.NewFromInt(990000)

		stored, err := f.repo.FindByID(ctx, created.ID())
		require.NoError(t, err)
		assert.True(t, stored.TotalPrice().Equal(decimal.NewFromInt(1100000)),
			"price was fixed at creation time")
	})

	t.Run("guest booking has no owner", func(t *testing.T) {
		f := newCommandsFixture(t, snap)

		created, err := f.commands.Create(ctx, createParams(snap, nil))
		require.NoError(t, err)
		assert.Nil(t, created.UserID())
	})

	t.Run("unknown destination", func(t *testing.T) {
		f := newCommandsFixture(t, snap)
		params := createParams(snap, nil)
		params.DestinationID = uuid.New()

		_, err := f.commands.Create(ctx, params)
		assert.ErrorIs(t, err, errs.ErrDestinationNotFound)
	})

	t.Run("invalid participants", func(t *testing.T) {
		f := newCommandsFixture(t, snap)
		params := createParams(snap, nil)
		params.Participants = 0

		_, err := f.commands.Create(ctx, params)
		assert.True(t, errs.Is(err, errs.ErrInvalidQuantity))
	})

	t.Run("number collision retries once and succeeds", func(t *testing.T) {
		f := newCommandsFixture(t, snap)
		taken := builder.NewBookingBuilder().With(func(b *builder.BookingBuilder) {
			b.Number = "TRB-20260830-AAAAAA"
		}).BuildReconstructed()
		f.repo.seed(taken)

		created, err := f.commands.Create(ctx, createParams(snap, nil))
		require.NoError(t, err)
		assert.Equal(t, "TRB-20260830-BBBBBB", created.Number())
		assert.Equal(t, 2, f.numbers.calls)
	})

	t.Run("persistent collision surfaces after one retry", func(t *testing.T) {
		f := newCommandsFixture(t, snap)
		f.numbers.sequence = []string{"TRB-20260830-AAAAAA"}
		taken := builder.NewBookingBuilder().With(func(b *builder.BookingBuilder) {
			b.Number = "TRB-20260830-AAAAAA"
		}).BuildReconstructed()
		f.repo.seed(taken)

		_, err := f.commands.Create(ctx, createParams(snap, nil))
		assert.True(t, errs.Is(err, errs.ErrDuplicateBookingNumber))
		assert.Equal(t, 2, f.numbers.calls)
	})
}

func TestBookingCommandsRequestTransition(t *testing.T) {
	ctx := context.Background()
	admin := authz.Actor{Role: authz.RoleAdmin}

	seedPending := func(f *commandsFixture, mutate func(*builder.BookingBuilder)) *booking.Booking {
		b := builder.NewBookingBuilder()
		if mutate != nil {
			mutate(b)
		}
		stored := b.BuildReconstructed()
		f.repo.seed(stored)
		return stored
	}

	t.Run("full lifecycle drives both axes forward", func(t *testing.T) {
		f := newCommandsFixture(t)
		b := seedPending(f, nil)

		updated, err := f.commands.RequestTransition(ctx, authz.Anonymous(), b.ID(), authz.AxisPayment, "paid")
		require.NoError(t, err)
		assert.Equal(t, booking.PaymentPaid, updated.PaymentStatus())
		assert.Equal(t, booking.StatusPending, updated.Status(), "payment axis leaves status alone")

		updated, err = f.commands.RequestTransition(ctx, admin, b.ID(), authz.AxisStatus, "paid")
		require.NoError(t, err)
		assert.Equal(t, booking.StatusPaid, updated.Status())

		updated, err = f.commands.RequestTransition(ctx, admin, b.ID(), authz.AxisStatus, "confirmed")
		require.NoError(t, err)
		assert.Equal(t, booking.StatusConfirmed, updated.Status())

		updated, err = f.commands.RequestTransition(ctx, admin, b.ID(), authz.AxisStatus, "completed")
		require.NoError(t, err)
		assert.Equal(t, booking.StatusCompleted, updated.Status())
		assert.True(t, updated.IsTerminal())
	})

	t.Run("customer drives the payment pair unaided", func(t *testing.T) {
		f := newCommandsFixture(t)
		owner := uuid.New()
		b := seedPending(f, func(bb *builder.BookingBuilder) { bb.UserID = &owner })

		customer := authz.Actor{Role: authz.RoleCustomer, UserID: &owner}
		updated, err := f.commands.RequestTransition(ctx, customer, b.ID(), authz.AxisPayment, "paid")
		require.NoError(t, err)
		assert.Equal(t, booking.PaymentPaid, updated.PaymentStatus())

		updated, err = f.commands.RequestTransition(ctx, customer, b.ID(), authz.AxisStatus, "paid")
		require.NoError(t, err)
		assert.Equal(t, booking.StatusPaid, updated.Status())
	})

	t.Run("status cannot reach paid while unpaid", func(t *testing.T) {
		f := newCommandsFixture(t)
		b := seedPending(f, nil)

		_, err := f.commands.RequestTransition(ctx, admin, b.ID(), authz.AxisStatus, "paid")
		require.True(t, errs.Is(err, errs.ErrIllegalTransition))

		var tErr *commands.TransitionError
		require.True(t, errs.As(err, &tErr))
		assert.Equal(t, authz.AxisStatus, tErr.Axis)
		assert.Equal(t, "pending", tErr.From)
		assert.Equal(t, "paid", tErr.To)
		assert.Equal(t, "payment not collected", tErr.Reason)
	})

	t.Run("status cannot reach paid after refund", func(t *testing.T) {
		f := newCommandsFixture(t)
		b := seedPending(f, func(bb *builder.BookingBuilder) {
			bb.PaymentStatus = booking.PaymentRefunded
		})

		_, err := f.commands.RequestTransition(ctx, admin, b.ID(), authz.AxisStatus, "paid")
		require.True(t, errs.Is(err, errs.ErrIllegalTransition))

		var tErr *commands.TransitionError
		require.True(t, errs.As(err, &tErr))
		assert.Equal(t, "payment not collected", tErr.Reason)
	})

	t.Run("non-edge is rejected with stored and requested state", func(t *testing.T) {
		f := newCommandsFixture(t)
		b := seedPending(f, nil)

		_, err := f.commands.RequestTransition(ctx, admin, b.ID(), authz.AxisStatus, "completed")
		require.True(t, errs.Is(err, errs.ErrIllegalTransition))

		var tErr *commands.TransitionError
		require.True(t, errs.As(err, &tErr))
		assert.Equal(t, "pending", tErr.From)
		assert.Equal(t, "completed", tErr.To)
	})

	t.Run("unknown target value", func(t *testing.T) {
		f := newCommandsFixture(t)
		b := seedPending(f, nil)

		_, err := f.commands.RequestTransition(ctx, admin, b.ID(), authz.AxisStatus, "shipped")
		assert.True(t, errs.Is(err, errs.ErrIllegalTransition))
	})

	t.Run("customer may not confirm", func(t *testing.T) {
		f := newCommandsFixture(t)
		owner := uuid.New()
		b := seedPending(f, func(bb *builder.BookingBuilder) {
			bb.UserID = &owner
			bb.Status = booking.StatusPaid
			bb.PaymentStatus = booking.PaymentPaid
		})

		customer := authz.Actor{Role: authz.RoleCustomer, UserID: &owner}
		_, err := f.commands.RequestTransition(ctx, customer, b.ID(), authz.AxisStatus, "confirmed")
		assert.ErrorIs(t, err, errs.ErrForbidden)
	})

	t.Run("customer sees foreign booking as not found", func(t *testing.T) {
		f := newCommandsFixture(t)
		owner := uuid.New()
		b := seedPending(f, func(bb *builder.BookingBuilder) { bb.UserID = &owner })

		stranger := uuid.New()
		customer := authz.Actor{Role: authz.RoleCustomer, UserID: &stranger}
		_, err := f.commands.RequestTransition(ctx, customer, b.ID(), authz.AxisStatus, "cancelled")
		assert.ErrorIs(t, err, errs.ErrBookingNotFound)
		assert.NotErrorIs(t, err, errs.ErrForbidden)
	})

	t.Run("anonymous caller acts by booking id", func(t *testing.T) {
		f := newCommandsFixture(t)
		owner := uuid.New()
		b := seedPending(f, func(bb *builder.BookingBuilder) { bb.UserID = &owner })

		updated, err := f.commands.RequestTransition(ctx, authz.Anonymous(), b.ID(), authz.AxisStatus, "cancelled")
		require.NoError(t, err)
		assert.Equal(t, booking.StatusCancelled, updated.Status())
	})

	t.Run("repeat of a won transition is illegal, not conflicting", func(t *testing.T) {
		f := newCommandsFixture(t)
		b := seedPending(f, nil)

		_, err := f.commands.RequestTransition(ctx, admin, b.ID(), authz.AxisStatus, "cancelled")
		require.NoError(t, err)

		_, err = f.commands.RequestTransition(ctx, admin, b.ID(), authz.AxisStatus, "cancelled")
		assert.True(t, errs.Is(err, errs.ErrIllegalTransition))
		assert.False(t, errs.Is(err, errs.ErrConflict))
	})

	t.Run("lost race surfaces as conflict", func(t *testing.T) {
		f := newCommandsFixture(t)
		b := seedPending(f, nil)

		f.repo.beforeUpdateStatus = func() {
			hook := f.repo.beforeUpdateStatus
			f.repo.beforeUpdateStatus = nil
			defer func() { f.repo.beforeUpdateStatus = hook }()
			// concurrent admin cancels between our read and our write
			_, err := f.commands.RequestTransition(ctx, admin, b.ID(), authz.AxisStatus, "cancelled")
			require.NoError(t, err)
		}

		_, err := f.commands.RequestTransition(ctx, authz.Anonymous(), b.ID(), authz.AxisPayment, "paid")
		require.NoError(t, err, "payment axis is untouched by the racing cancel")

		_, err = f.commands.RequestTransition(ctx, admin, b.ID(), authz.AxisStatus, "cancelled")
		assert.True(t, errs.Is(err, errs.ErrConflict))
	})
}

func TestBookingCommandsRecordPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("stores provider reference and flips payment status", func(t *testing.T) {
		f := newCommandsFixture(t)
		b := builder.NewBookingBuilder().BuildReconstructed()
		f.repo.seed(b)

		updated, err := f.commands.RecordPayment(ctx, authz.Anonymous(), b.ID(), "pay_8839", "bank_transfer")
		require.NoError(t, err)

		assert.Equal(t, booking.PaymentPaid, updated.PaymentStatus())
		require.NotNil(t, updated.PaymentID())
		assert.Equal(t, "pay_8839", *updated.PaymentID())
		assert.Equal(t, "bank_transfer", updated.PaymentMethod())
	})

	t.Run("second callback is rejected", func(t *testing.T) {
		f := newCommandsFixture(t)
		b := builder.NewBookingBuilder().BuildReconstructed()
		f.repo.seed(b)

		_, err := f.commands.RecordPayment(ctx, authz.Anonymous(), b.ID(), "pay_1", "bank_transfer")
		require.NoError(t, err)

		_, err = f.commands.RecordPayment(ctx, authz.Anonymous(), b.ID(), "pay_2", "bank_transfer")
		assert.ErrorIs(t, err, errs.ErrIllegalTransition)
	})

	t.Run("unknown booking", func(t *testing.T) {
		f := newCommandsFixture(t)
		_, err := f.commands.RecordPayment(ctx, authz.Anonymous(), uuid.New(), "pay_1", "bank_transfer")
		assert.ErrorIs(t, err, errs.ErrBookingNotFound)
	})
}

func TestBookingCommandsAppendNote(t *testing.T) {
	ctx := context.Background()
	admin := authz.Actor{Role: authz.RoleAdmin}

	t.Run("admin appends to terminal booking", func(t *testing.T) {
		f := newCommandsFixture(t)
		b := builder.NewBookingBuilder().With(func(bb *builder.BookingBuilder) {
			bb.Status = booking.StatusCancelled
			bb.Notes = "called customer"
		}).BuildReconstructed()
		f.repo.seed(b)

		updated, err := f.commands.AppendNote(ctx, admin, b.ID(), "refund wired manually")
		require.NoError(t, err)
		assert.Equal(t, "called customer\nrefund wired manually", updated.Notes())
	})

	t.Run("customer may not append", func(t *testing.T) {
		f := newCommandsFixture(t)
		owner := uuid.New()
		b := builder.NewBookingBuilder().With(func(bb *builder.BookingBuilder) { bb.UserID = &owner }).BuildReconstructed()
		f.repo.seed(b)

		customer := authz.Actor{Role: authz.RoleCustomer, UserID: &owner}
		_, err := f.commands.AppendNote(ctx, customer, b.ID(), "note")
		assert.ErrorIs(t, err, errs.ErrForbidden)
	})

	t.Run("unknown booking", func(t *testing.T) {
		f := newCommandsFixture(t)
		_, err := f.commands.AppendNote(ctx, admin, uuid.New(), "note")
		assert.ErrorIs(t, err, errs.ErrBookingNotFound)
	})
}
